package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type StatusHTTP struct {
	Svc *service.StatusService
}

func (h *StatusHTTP) ListStatuses(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "status.list_statuses")

	statuses, err := h.Svc.List(ctx)
	if err != nil {
		return fail(l, "list_statuses", err)
	}
	return respond(c, http.StatusOK, statuses)
}

func (h *StatusHTTP) GetStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "status.get_status")

	id, ok := pathID(c)
	if !ok {
		return badRequest(l, "get_status", "invalid status id", nil)
	}

	st, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(l, "get_status", err)
	}
	return respond(c, http.StatusOK, st)
}

func (h *StatusHTTP) CreateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "status.create_status")

	var req transport.StatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_status", "invalid request body", err)
	}

	st, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(l, "create_status", err)
	}

	l.Info("create_status_success", "status_id", st.ID)
	return respond(c, http.StatusCreated, st)
}

func (h *StatusHTTP) RenameStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "status.rename_status")

	id, ok := pathID(c)
	if !ok {
		return badRequest(l, "rename_status", "invalid status id", nil)
	}

	var req transport.StatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "rename_status", "invalid request body", err)
	}

	st, err := h.Svc.Rename(ctx, id, req)
	if err != nil {
		return fail(l, "rename_status", err)
	}

	l.Info("rename_status_success", "status_id", st.ID)
	return respond(c, http.StatusOK, st)
}

func (h *StatusHTTP) DeleteStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "status.delete_status")

	id, ok := pathID(c)
	if !ok {
		return badRequest(l, "delete_status", "invalid status id", nil)
	}

	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(l, "delete_status", err)
	}

	l.Info("delete_status_success", "status_id", id)
	return respond(c, http.StatusOK, map[string]uint{"id": id})
}
