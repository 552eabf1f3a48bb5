package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (h *Handler) Login(ec echo.Context) error {
	ctx := ec.Request().Context()
	dto := LoginRequest{}
	if err := ec.Bind(&dto); err != nil {
		return err
	}

	session, err := h.login.Login(ctx, dto.Id, dto.Password)
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, NewSessionDto(session))
}
