package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.list_users")

	users, err := h.Svc.List(ctx, callerFrom(c))
	if err != nil {
		return fail(l, "list_users", err)
	}
	return respond(c, http.StatusOK, users)
}

func (h *UserHTTP) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get_user")

	id, ok := pathID(c)
	if !ok {
		return badRequest(l, "get_user", "invalid user id", nil)
	}

	user, err := h.Svc.Get(ctx, callerFrom(c), id)
	if err != nil {
		return fail(l, "get_user", err)
	}
	return respond(c, http.StatusOK, user)
}

func (h *UserHTTP) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.create_user")

	var req transport.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_user", "invalid request body", err)
	}

	user, err := h.Svc.Create(ctx, callerFrom(c), req)
	if err != nil {
		return fail(l, "create_user", err)
	}

	l.Info("create_user_success", "user_id", user.ID)
	return respond(c, http.StatusCreated, user)
}

func (h *UserHTTP) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update_user")

	id, ok := pathID(c)
	if !ok {
		return badRequest(l, "update_user", "invalid user id", nil)
	}

	var req transport.PatchUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_user", "invalid request body", err)
	}

	user, err := h.Svc.Update(ctx, callerFrom(c), id, req)
	if err != nil {
		return fail(l, "update_user", err)
	}

	l.Info("update_user_success", "user_id", user.ID)
	return respond(c, http.StatusOK, user)
}

func (h *UserHTTP) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete_user")

	id, ok := pathID(c)
	if !ok {
		return badRequest(l, "delete_user", "invalid user id", nil)
	}

	if err := h.Svc.Delete(ctx, callerFrom(c), id); err != nil {
		return fail(l, "delete_user", err)
	}

	l.Info("delete_user_success", "user_id", id)
	return respond(c, http.StatusOK, map[string]uint{"id": id})
}
