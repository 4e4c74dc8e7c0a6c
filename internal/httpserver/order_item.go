package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type OrderItemHTTP struct {
	Svc *service.OrderItemService
}

func (h *OrderItemHTTP) ListItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_item.list_items")

	items, err := h.Svc.List(ctx)
	if err != nil {
		return fail(l, "list_items", err)
	}
	return respond(c, http.StatusOK, items)
}

func (h *OrderItemHTTP) GetItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_item.get_item")

	id, ok := pathID(c)
	if !ok {
		return badRequest(l, "get_item", "invalid item id", nil)
	}

	item, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(l, "get_item", err)
	}
	return respond(c, http.StatusOK, item)
}

func (h *OrderItemHTTP) CreateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_item.create_item")

	var req transport.CreateOrderItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_item", "invalid request body", err)
	}

	item, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(l, "create_item", err)
	}

	l.Info("create_item_success", "item_id", item.ID, "order_id", item.OrderID)
	return respond(c, http.StatusCreated, item)
}

func (h *OrderItemHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_item.update_item")

	id, ok := pathID(c)
	if !ok {
		return badRequest(l, "update_item", "invalid item id", nil)
	}

	var req transport.PatchOrderItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_item", "invalid request body", err)
	}

	item, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		return fail(l, "update_item", err)
	}

	l.Info("update_item_success", "item_id", item.ID)
	return respond(c, http.StatusOK, item)
}

func (h *OrderItemHTTP) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_item.delete_item")

	id, ok := pathID(c)
	if !ok {
		return badRequest(l, "delete_item", "invalid item id", nil)
	}

	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(l, "delete_item", err)
	}

	l.Info("delete_item_success", "item_id", id)
	return respond(c, http.StatusOK, map[string]uint{"id": id})
}
