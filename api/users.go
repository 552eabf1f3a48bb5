package api

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kimm528/ringfitmanager/errors"
	"github.com/kimm528/ringfitmanager/users"
)

func (h *Handler) ListUsers(ec echo.Context, params ListUsersParams) error {
	ctx := ec.Request().Context()
	filter := users.Filter{
		Search: emptyToNil(params.Search),
		Room:   emptyToNil(params.Room),
	}

	result, err := h.users.List(ctx, &filter, pagination(params.Offset, params.Limit))
	if err != nil {
		return err
	}

	dtos := make([]User, 0, len(result.Users))
	for _, u := range result.Users {
		dtos = append(dtos, NewUserDto(u, h.users.Profile(u)))
	}
	return ec.JSON(http.StatusOK, Users{Users: dtos, TotalCount: result.TotalCount})
}

func (h *Handler) CreateUser(ec echo.Context) error {
	ctx := ec.Request().Context()
	dto := UserInput{}
	if err := ec.Bind(&dto); err != nil {
		return err
	}

	user, err := h.users.Create(ctx, NewUser(dto))
	if err != nil {
		return err
	}

	return h.userResponse(ec, user)
}

func (h *Handler) GetUser(ec echo.Context, userId UserId) error {
	user, err := h.users.Get(ec.Request().Context(), userId)
	if err != nil {
		return err
	}

	return h.userResponse(ec, user)
}

func (h *Handler) UpdateUser(ec echo.Context, userId UserId) error {
	ctx := ec.Request().Context()
	dto := UserInput{}
	if err := ec.Bind(&dto); err != nil {
		return err
	}

	user, err := h.users.Update(ctx, userId, NewUser(dto))
	if err != nil {
		return err
	}

	return h.userResponse(ec, user)
}

func (h *Handler) DeleteUser(ec echo.Context, userId UserId) error {
	if err := h.users.Delete(ec.Request().Context(), userId, deletionMetadata(ec)); err != nil {
		return err
	}

	return ec.NoContent(http.StatusNoContent)
}

func (h *Handler) UpdateUserThresholds(ec echo.Context, userId UserId) error {
	patch, err := readPatch(ec)
	if err != nil {
		return err
	}

	user, err := h.users.UpdateThresholds(ec.Request().Context(), userId, patch)
	if err != nil {
		return err
	}

	return h.userResponse(ec, user)
}

func (h *Handler) ResetUserThresholds(ec echo.Context, userId UserId) error {
	user, err := h.users.ResetThresholds(ec.Request().Context(), userId)
	if err != nil {
		return err
	}

	return h.userResponse(ec, user)
}

func (h *Handler) UpdateUserGoals(ec echo.Context, userId UserId) error {
	patch, err := readPatch(ec)
	if err != nil {
		return err
	}

	user, err := h.users.UpdateGoals(ec.Request().Context(), userId, patch)
	if err != nil {
		return err
	}

	return h.userResponse(ec, user)
}

func (h *Handler) ResetUserGoals(ec echo.Context, userId UserId) error {
	user, err := h.users.ResetGoals(ec.Request().Context(), userId)
	if err != nil {
		return err
	}

	return h.userResponse(ec, user)
}

func (h *Handler) userResponse(ec echo.Context, user *users.User) error {
	return ec.JSON(http.StatusOK, NewUserDto(user, h.users.Profile(user)))
}

// readPatch returns the raw merge document. The request validator already
// checked that it is a json object.
func readPatch(ec echo.Context) ([]byte, error) {
	body, err := io.ReadAll(ec.Request().Body)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errors.BadRequest
	}
	return body, nil
}
