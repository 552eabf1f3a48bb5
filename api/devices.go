package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kimm528/ringfitmanager/devices"
)

func (h *Handler) ListDevices(ec echo.Context, params ListDevicesParams) error {
	ctx := ec.Request().Context()
	filter := devices.Filter{Assigned: params.Assigned}

	result, err := h.devices.List(ctx, &filter, pagination(params.Offset, params.Limit))
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, Devices{Devices: NewDevicesDto(result.Devices), TotalCount: result.TotalCount})
}

func (h *Handler) CreateDevice(ec echo.Context) error {
	ctx := ec.Request().Context()
	dto := DeviceInput{}
	if err := ec.Bind(&dto); err != nil {
		return err
	}

	device, err := h.devices.Create(ctx, NewDevice(dto))
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, NewDeviceDto(device))
}

func (h *Handler) SyncDevices(ec echo.Context) error {
	result, err := h.devices.Sync(ec.Request().Context())
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, NewSyncResultDto(result))
}

func (h *Handler) GetDevice(ec echo.Context, deviceId DeviceId) error {
	device, err := h.devices.Get(ec.Request().Context(), deviceId)
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, NewDeviceDto(device))
}

func (h *Handler) DeleteDevice(ec echo.Context, deviceId DeviceId) error {
	if err := h.devices.Delete(ec.Request().Context(), deviceId, deletionMetadata(ec)); err != nil {
		return err
	}

	return ec.NoContent(http.StatusNoContent)
}

func (h *Handler) AssignDevice(ec echo.Context, deviceId DeviceId) error {
	ctx := ec.Request().Context()
	dto := Assignment{}
	if err := ec.Bind(&dto); err != nil {
		return err
	}

	device, err := h.devices.Assign(ctx, deviceId, dto.UserId)
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, NewDeviceDto(device))
}

func (h *Handler) UnassignDevice(ec echo.Context, deviceId DeviceId) error {
	device, err := h.devices.Unassign(ec.Request().Context(), deviceId)
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, NewDeviceDto(device))
}
