package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kimm528/ringfitmanager/reports"
)

func (h *Handler) GetUserReport(ec echo.Context, userId UserId, params GetUserReportParams) error {
	ctx := ec.Request().Context()
	period, err := reports.NewPeriod(params.From, params.To, time.Now())
	if err != nil {
		return err
	}

	report, err := h.reports.HealthReport(ctx, userId, period)
	if err != nil {
		return err
	}

	format := ReportFormatXlsx
	if params.Format != nil {
		format = *params.Format
	}

	buf := &bytes.Buffer{}
	switch format {
	case ReportFormatHtml:
		if err := reports.HealthPage(report).Render(ctx, buf); err != nil {
			return fmt.Errorf("unable to render health report: %w", err)
		}
		return ec.Blob(http.StatusOK, ContentTypeHtml, buf.Bytes())
	default:
		if err := reports.WriteHealthWorkbook(buf, report); err != nil {
			return err
		}
		return attachment(ec, reports.ReportFilename(report, string(ReportFormatXlsx)), buf.Bytes())
	}
}

func (h *Handler) GetRosterAudit(ec echo.Context) error {
	audit, err := h.reports.RosterAudit(ec.Request().Context())
	if err != nil {
		return err
	}

	buf := &bytes.Buffer{}
	if err := reports.WriteRosterWorkbook(buf, audit); err != nil {
		return err
	}
	filename := fmt.Sprintf("roster-%s.xlsx", audit.GeneratedTime.Format("20060102"))
	return attachment(ec, filename, buf.Bytes())
}

func attachment(ec echo.Context, filename string, body []byte) error {
	ec.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ec.Blob(http.StatusOK, ContentTypeXlsx, body)
}
