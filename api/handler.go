package api

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/kimm528/ringfitmanager/auth"
	"github.com/kimm528/ringfitmanager/deletions"
	"github.com/kimm528/ringfitmanager/devices"
	"github.com/kimm528/ringfitmanager/health"
	"github.com/kimm528/ringfitmanager/monitoring"
	"github.com/kimm528/ringfitmanager/outbox"
	"github.com/kimm528/ringfitmanager/reports"
	"github.com/kimm528/ringfitmanager/users"
)

type Handler struct {
	users      users.Service
	devices    devices.Service
	monitoring monitoring.Service
	reports    reports.Service
	outbox     outbox.Repository
	login      auth.LoginService
	defaults   health.Profile
	logger     *zap.SugaredLogger
}

var _ ServerInterface = &Handler{}

type Params struct {
	fx.In

	Users      users.Service
	Devices    devices.Service
	Monitoring monitoring.Service
	Reports    reports.Service
	Outbox     outbox.Repository
	Login      auth.LoginService
	Defaults   health.Profile
	Logger     *zap.SugaredLogger
}

func NewHandler(p Params) *Handler {
	return &Handler{
		users:      p.Users,
		devices:    p.Devices,
		monitoring: p.Monitoring,
		reports:    p.Reports,
		outbox:     p.Outbox,
		login:      p.Login,
		defaults:   p.Defaults,
		logger:     p.Logger,
	}
}

// deletionMetadata records the administrator removing a document.
func deletionMetadata(ec echo.Context) deletions.Metadata {
	metadata := deletions.Metadata{}
	if a := auth.GetAuthData(ec.Request().Context()); a != nil {
		metadata.DeletedBy = &a.SubjectId
	}
	return metadata
}
