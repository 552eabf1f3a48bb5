package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kimm528/ringfitmanager/health"
	"github.com/kimm528/ringfitmanager/monitoring"
)

var dashboardParams = struct {
	MinStatus string
	Search    string
	Room      string
}{}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Args:  cobra.NoArgs,
	Short: "Print the dashboard",
	Long:  "The dashboard command evaluates every user and prints their cards, worst status first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(printDashboard)
	},
}

func printDashboard(monitoringService monitoring.Service) error {
	filter := monitoring.DashboardFilter{}
	if dashboardParams.MinStatus != "" {
		status, err := health.ParseStatus(dashboardParams.MinStatus)
		if err != nil {
			return err
		}
		filter.MinStatus = &status
	}
	if dashboardParams.Search != "" {
		filter.Search = &dashboardParams.Search
	}
	if dashboardParams.Room != "" {
		filter.Room = &dashboardParams.Room
	}

	cards, err := monitoringService.Dashboard(context.Background(), filter)
	if err != nil {
		return err
	}

	fmt.Println(styleHeader.Render(fmt.Sprintf("%d users", len(cards))))
	for _, card := range cards {
		fmt.Println(formatCard(card))
	}
	return nil
}

func formatCard(card monitoring.Card) string {
	line := fmt.Sprintf("%s %-20s room %-8s", renderStatus(card.Evaluation.Overall), card.User.Name, orEmpty(card.User.Room))

	var alerting []string
	for _, metric := range health.Metrics {
		if status := card.Evaluation.Statuses[metric]; status.Alerting() {
			alerting = append(alerting, fmt.Sprintf("%s=%s", metric, status))
		}
	}
	if len(alerting) > 0 {
		line += " " + strings.Join(alerting, " ")
	}
	if card.Device == nil {
		line += " " + styleDim.Render("no device")
	}
	if card.Error != "" {
		line += " " + styleError.Render(card.Error)
	}
	return line
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardParams.MinStatus, "min-status", "", "Only show users at or above the status (normal, warning, danger)")
	dashboardCmd.Flags().StringVarP(&dashboardParams.Search, "search", "s", "", "Search users by name")
	dashboardCmd.Flags().StringVar(&dashboardParams.Room, "room", "", "Only show users of the room")

	rootCmd.AddCommand(dashboardCmd)
}
