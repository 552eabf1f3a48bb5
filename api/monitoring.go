package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kimm528/ringfitmanager/errors"
	"github.com/kimm528/ringfitmanager/health"
	"github.com/kimm528/ringfitmanager/monitoring"
	"github.com/kimm528/ringfitmanager/outbox"
)

const defaultAlertsLimit = 50

func (h *Handler) GetUserEvaluation(ec echo.Context, userId UserId, params GetUserEvaluationParams) error {
	ctx := ec.Request().Context()

	var card *monitoring.Card
	var err error
	if params.Refresh != nil && *params.Refresh {
		card, err = h.monitoring.Refresh(ctx, userId)
	} else {
		card, err = h.monitoring.Evaluate(ctx, userId)
	}
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, NewCardDto(*card))
}

func (h *Handler) GetDashboard(ec echo.Context, params GetDashboardParams) error {
	ctx := ec.Request().Context()
	filter := monitoring.DashboardFilter{
		Search: emptyToNil(params.Search),
		Room:   emptyToNil(params.Room),
	}
	if params.MinStatus != nil {
		status, err := health.ParseStatus(*params.MinStatus)
		if err != nil {
			return fmt.Errorf("%w: %w", errors.BadRequest, err)
		}
		filter.MinStatus = &status
	}

	cards, err := h.monitoring.Dashboard(ctx, filter)
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, NewDashboardDto(cards))
}

func (h *Handler) ListAlerts(ec echo.Context, params ListAlertsParams) error {
	limit := defaultAlertsLimit
	if params.Limit != nil {
		limit = min(*params.Limit, maxPageSize)
	}

	events, err := h.outbox.List(ec.Request().Context(), outbox.EventTypeHealthAlert, limit)
	if err != nil {
		return err
	}

	alerts := make([]Alert, 0, len(events))
	for _, e := range events {
		alert, err := NewAlertDto(e)
		if err != nil {
			h.logger.Warnw("skipping undecodable alert", "eventId", e.EventId, "error", err)
			continue
		}
		alerts = append(alerts, alert)
	}

	return ec.JSON(http.StatusOK, alerts)
}

func (h *Handler) GetDefaultProfile(ec echo.Context) error {
	return ec.JSON(http.StatusOK, h.defaults)
}
