package api

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

//go:embed openapi.yaml
var openapiDocument []byte

// GetSwagger returns the parsed OpenAPI document served by this package.
func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	swagger, err := loader.LoadFromData(openapiDocument)
	if err != nil {
		return nil, fmt.Errorf("unable to load openapi document: %w", err)
	}
	if err := swagger.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return swagger, nil
}

type ServerInterface interface {
	// (POST /v1/auth/login)
	Login(ctx echo.Context) error
	// (GET /v1/users)
	ListUsers(ctx echo.Context, params ListUsersParams) error
	// (POST /v1/users)
	CreateUser(ctx echo.Context) error
	// (GET /v1/users/{userId})
	GetUser(ctx echo.Context, userId UserId) error
	// (PUT /v1/users/{userId})
	UpdateUser(ctx echo.Context, userId UserId) error
	// (DELETE /v1/users/{userId})
	DeleteUser(ctx echo.Context, userId UserId) error
	// (PATCH /v1/users/{userId}/thresholds)
	UpdateUserThresholds(ctx echo.Context, userId UserId) error
	// (DELETE /v1/users/{userId}/thresholds)
	ResetUserThresholds(ctx echo.Context, userId UserId) error
	// (PATCH /v1/users/{userId}/goals)
	UpdateUserGoals(ctx echo.Context, userId UserId) error
	// (DELETE /v1/users/{userId}/goals)
	ResetUserGoals(ctx echo.Context, userId UserId) error
	// (GET /v1/users/{userId}/evaluation)
	GetUserEvaluation(ctx echo.Context, userId UserId, params GetUserEvaluationParams) error
	// (GET /v1/users/{userId}/report)
	GetUserReport(ctx echo.Context, userId UserId, params GetUserReportParams) error
	// (GET /v1/devices)
	ListDevices(ctx echo.Context, params ListDevicesParams) error
	// (POST /v1/devices)
	CreateDevice(ctx echo.Context) error
	// (POST /v1/devices/sync)
	SyncDevices(ctx echo.Context) error
	// (GET /v1/devices/{deviceId})
	GetDevice(ctx echo.Context, deviceId DeviceId) error
	// (DELETE /v1/devices/{deviceId})
	DeleteDevice(ctx echo.Context, deviceId DeviceId) error
	// (PUT /v1/devices/{deviceId}/assignment)
	AssignDevice(ctx echo.Context, deviceId DeviceId) error
	// (DELETE /v1/devices/{deviceId}/assignment)
	UnassignDevice(ctx echo.Context, deviceId DeviceId) error
	// (GET /v1/dashboard)
	GetDashboard(ctx echo.Context, params GetDashboardParams) error
	// (GET /v1/alerts)
	ListAlerts(ctx echo.Context, params ListAlertsParams) error
	// (GET /v1/reports/roster)
	GetRosterAudit(ctx echo.Context) error
	// (GET /v1/profile/default)
	GetDefaultProfile(ctx echo.Context) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func bindPathParameter(ctx echo.Context, name string, dest *string) error {
	err := runtime.BindStyledParameterWithOptions("simple", name, ctx.Param(name), dest, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}
	return nil
}

func bindQueryParameter(ctx echo.Context, name string, dest interface{}) error {
	if err := runtime.BindQueryParameter("form", true, false, name, ctx.QueryParams(), dest); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}
	return nil
}

func (w *ServerInterfaceWrapper) Login(ctx echo.Context) error {
	return w.Handler.Login(ctx)
}

func (w *ServerInterfaceWrapper) ListUsers(ctx echo.Context) error {
	var params ListUsersParams
	for name, dest := range map[string]interface{}{
		"search": &params.Search,
		"room":   &params.Room,
		"offset": &params.Offset,
		"limit":  &params.Limit,
	} {
		if err := bindQueryParameter(ctx, name, dest); err != nil {
			return err
		}
	}
	return w.Handler.ListUsers(ctx, params)
}

func (w *ServerInterfaceWrapper) CreateUser(ctx echo.Context) error {
	return w.Handler.CreateUser(ctx)
}

func (w *ServerInterfaceWrapper) withUserId(handler func(echo.Context, UserId) error) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var userId UserId
		if err := bindPathParameter(ctx, "userId", &userId); err != nil {
			return err
		}
		return handler(ctx, userId)
	}
}

func (w *ServerInterfaceWrapper) withDeviceId(handler func(echo.Context, DeviceId) error) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var deviceId DeviceId
		if err := bindPathParameter(ctx, "deviceId", &deviceId); err != nil {
			return err
		}
		return handler(ctx, deviceId)
	}
}

func (w *ServerInterfaceWrapper) GetUserEvaluation(ctx echo.Context) error {
	var userId UserId
	if err := bindPathParameter(ctx, "userId", &userId); err != nil {
		return err
	}
	var params GetUserEvaluationParams
	if err := bindQueryParameter(ctx, "refresh", &params.Refresh); err != nil {
		return err
	}
	return w.Handler.GetUserEvaluation(ctx, userId, params)
}

func (w *ServerInterfaceWrapper) GetUserReport(ctx echo.Context) error {
	var userId UserId
	if err := bindPathParameter(ctx, "userId", &userId); err != nil {
		return err
	}
	var params GetUserReportParams
	for name, dest := range map[string]interface{}{
		"from":   &params.From,
		"to":     &params.To,
		"format": &params.Format,
	} {
		if err := bindQueryParameter(ctx, name, dest); err != nil {
			return err
		}
	}
	return w.Handler.GetUserReport(ctx, userId, params)
}

func (w *ServerInterfaceWrapper) ListDevices(ctx echo.Context) error {
	var params ListDevicesParams
	for name, dest := range map[string]interface{}{
		"assigned": &params.Assigned,
		"offset":   &params.Offset,
		"limit":    &params.Limit,
	} {
		if err := bindQueryParameter(ctx, name, dest); err != nil {
			return err
		}
	}
	return w.Handler.ListDevices(ctx, params)
}

func (w *ServerInterfaceWrapper) GetDashboard(ctx echo.Context) error {
	var params GetDashboardParams
	for name, dest := range map[string]interface{}{
		"minStatus": &params.MinStatus,
		"search":    &params.Search,
		"room":      &params.Room,
	} {
		if err := bindQueryParameter(ctx, name, dest); err != nil {
			return err
		}
	}
	return w.Handler.GetDashboard(ctx, params)
}

func (w *ServerInterfaceWrapper) ListAlerts(ctx echo.Context) error {
	var params ListAlertsParams
	if err := bindQueryParameter(ctx, "limit", &params.Limit); err != nil {
		return err
	}
	return w.Handler.ListAlerts(ctx, params)
}

// EchoRouter is satisfied by *echo.Echo and *echo.Group.
type EchoRouter interface {
	DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

func RegisterHandlers(router EchoRouter, si ServerInterface) {
	w := &ServerInterfaceWrapper{Handler: si}

	router.POST("/v1/auth/login", w.Login)

	router.GET("/v1/users", w.ListUsers)
	router.POST("/v1/users", w.CreateUser)
	router.GET("/v1/users/:userId", w.withUserId(si.GetUser))
	router.PUT("/v1/users/:userId", w.withUserId(si.UpdateUser))
	router.DELETE("/v1/users/:userId", w.withUserId(si.DeleteUser))
	router.PATCH("/v1/users/:userId/thresholds", w.withUserId(si.UpdateUserThresholds))
	router.DELETE("/v1/users/:userId/thresholds", w.withUserId(si.ResetUserThresholds))
	router.PATCH("/v1/users/:userId/goals", w.withUserId(si.UpdateUserGoals))
	router.DELETE("/v1/users/:userId/goals", w.withUserId(si.ResetUserGoals))
	router.GET("/v1/users/:userId/evaluation", w.GetUserEvaluation)
	router.GET("/v1/users/:userId/report", w.GetUserReport)

	router.GET("/v1/devices", w.ListDevices)
	router.POST("/v1/devices", si.CreateDevice)
	router.POST("/v1/devices/sync", si.SyncDevices)
	router.GET("/v1/devices/:deviceId", w.withDeviceId(si.GetDevice))
	router.DELETE("/v1/devices/:deviceId", w.withDeviceId(si.DeleteDevice))
	router.PUT("/v1/devices/:deviceId/assignment", w.withDeviceId(si.AssignDevice))
	router.DELETE("/v1/devices/:deviceId/assignment", w.withDeviceId(si.UnassignDevice))

	router.GET("/v1/dashboard", w.GetDashboard)
	router.GET("/v1/alerts", w.ListAlerts)
	router.GET("/v1/reports/roster", si.GetRosterAudit)
	router.GET("/v1/profile/default", si.GetDefaultProfile)
}
