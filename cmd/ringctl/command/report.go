package command

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cli/browser"
	"github.com/spf13/cobra"

	"github.com/kimm528/ringfitmanager/reports"
)

const (
	formatXlsx = "xlsx"
	formatHtml = "html"
)

var reportParams = struct {
	UserId    string
	From      string
	To        string
	Format    string
	OutputDir string
	Open      bool
}{}

var reportCmd = &cobra.Command{
	Use:   "report <userId>",
	Args:  cobra.ExactArgs(1),
	Short: "Export a health report",
	Long:  "The report command writes the health report of a user as a workbook or a printable page",
	RunE: func(cmd *cobra.Command, args []string) error {
		reportParams.UserId = args[0]
		if reportParams.Format != formatXlsx && reportParams.Format != formatHtml {
			return fmt.Errorf("unsupported format %q", reportParams.Format)
		}
		return Run(exportReport)
	},
}

func exportReport(reportsService reports.Service) error {
	ctx := context.Background()
	from, err := parseDate(reportParams.From)
	if err != nil {
		return err
	}
	to, err := parseDate(reportParams.To)
	if err != nil {
		return err
	}
	period, err := reports.NewPeriod(from, to, time.Now())
	if err != nil {
		return err
	}

	report, err := reportsService.HealthReport(ctx, reportParams.UserId, period)
	if err != nil {
		return err
	}

	buf := &bytes.Buffer{}
	if reportParams.Format == formatHtml {
		err = reports.HealthPage(report).Render(ctx, buf)
	} else {
		err = reports.WriteHealthWorkbook(buf, report)
	}
	if err != nil {
		return err
	}

	path := filepath.Join(reportParams.OutputDir, reports.ReportFilename(report, reportParams.Format))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("unable to write report: %w", err)
	}
	fmt.Println(styleSuccess.Render("Report written to " + path))

	if reportParams.Open {
		return browser.OpenFile(path)
	}
	return nil
}

func init() {
	reportCmd.Flags().StringVar(&reportParams.From, "from", "", "First day of the report (YYYY-MM-DD), defaults to a week ago")
	reportCmd.Flags().StringVar(&reportParams.To, "to", "", "Day after the last day of the report (YYYY-MM-DD), defaults to now")
	reportCmd.Flags().StringVarP(&reportParams.Format, "format", "f", formatXlsx, "Report format (xlsx or html)")
	reportCmd.Flags().StringVarP(&reportParams.OutputDir, "output-dir", "o", ".", "Directory the report is written to")
	reportCmd.Flags().BoolVar(&reportParams.Open, "open", false, "Open the report once written")

	rootCmd.AddCommand(reportCmd)
}
