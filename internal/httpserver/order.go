package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/export"
	"github.com/Skotchmaster/storefront/internal/feed"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
	Hub *feed.Hub
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders")

	orders, err := h.Svc.List(ctx, callerFrom(c))
	if err != nil {
		return fail(l, "list_orders", err)
	}
	return respond(c, http.StatusOK, orders)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	id, ok := pathID(c)
	if !ok {
		return badRequest(l, "get_order", "invalid order id", nil)
	}

	order, err := h.Svc.Get(ctx, callerFrom(c), id)
	if err != nil {
		return fail(l, "get_order", err)
	}
	return respond(c, http.StatusOK, order)
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_order", "invalid request body", err)
	}

	order, err := h.Svc.Create(ctx, callerFrom(c), req)
	if err != nil {
		return fail(l, "create_order", err)
	}

	l.Info("create_order_success", "order_id", order.ID, "items", len(order.Items))
	return respond(c, http.StatusCreated, order)
}

func (h *OrderHTTP) UpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_order")

	id, ok := pathID(c)
	if !ok {
		return badRequest(l, "update_order", "invalid order id", nil)
	}

	var req transport.UpdateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_order", "invalid request body", err)
	}

	order, err := h.Svc.Update(ctx, callerFrom(c), id, req)
	if err != nil {
		return fail(l, "update_order", err)
	}

	l.Info("update_order_success", "order_id", order.ID)
	return respond(c, http.StatusOK, order)
}

func (h *OrderHTTP) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel_order")

	id, ok := pathID(c)
	if !ok {
		return badRequest(l, "cancel_order", "invalid order id", nil)
	}

	order, err := h.Svc.Cancel(ctx, callerFrom(c), id)
	if err != nil {
		return fail(l, "cancel_order", err)
	}

	l.Info("cancel_order_success", "order_id", order.ID)
	return respond(c, http.StatusOK, order)
}

func (h *OrderHTTP) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.delete_order")

	id, ok := pathID(c)
	if !ok {
		return badRequest(l, "delete_order", "invalid order id", nil)
	}

	res, err := h.Svc.Delete(ctx, callerFrom(c), id)
	if err != nil {
		return fail(l, "delete_order", err)
	}

	l.Info("delete_order_success", "order_id", res.ID, "removed_items", len(res.RemovedItems))
	return respond(c, http.StatusOK, res)
}

func (h *OrderHTTP) ExportOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.export_orders")

	orders, err := h.Svc.List(ctx, callerFrom(c))
	if err != nil {
		return fail(l, "export_orders", err)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, export.ContentType)
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders.xlsx"`)
	res.WriteHeader(http.StatusOK)
	if err := export.WriteOrders(res, orders); err != nil {
		l.Error("export_orders_error", "status", http.StatusInternalServerError, "reason", "write workbook", "error", err)
		return err
	}

	l.Info("export_orders_success", "orders", len(orders))
	return nil
}

func (h *OrderHTTP) Feed(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.feed")

	if h.Hub == nil {
		l.Error("feed_error", "status", http.StatusServiceUnavailable, "reason", "feed not configured")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "order feed unavailable")
	}
	// the upgrader writes its own error response
	if err := h.Hub.ServeWS(c.Response(), c.Request()); err != nil {
		l.Warn("feed_error", "reason", "upgrade failed", "error", err)
	}
	return nil
}
