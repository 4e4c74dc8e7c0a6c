package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type OrderService struct {
	Repo     *repo.GormRepo
	Statuses *StatusResolver
	Events   events.Publisher
}

func (s *OrderService) Create(ctx context.Context, caller Caller, req transport.CreateOrderRequest) (*models.Order, error) {
	if caller.UserID == 0 {
		return nil, fmt.Errorf("%w: caller has no user id", ErrUnauthorized)
	}
	if !req.TotalPrice.IsPositive() || len(req.OrderItems) == 0 {
		return nil, fmt.Errorf("%w: total price and at least one order item are required", ErrValidation)
	}

	items := make([]models.OrderItem, 0, len(req.OrderItems))
	for _, it := range req.OrderItems {
		if it.ProductID == 0 || it.Quantity <= 0 || !it.Price.IsPositive() {
			return nil, fmt.Errorf("%w: each order item requires product_id, quantity, and price", ErrValidation)
		}
		items = append(items, models.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	ref := req.StatusID
	if ref == nil {
		ref = req.StatusName
	}
	statusID, err := s.Statuses.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if statusID == 0 {
		if statusID, err = s.Statuses.ResolveDefaultPending(ctx); err != nil {
			return nil, err
		}
	}

	order := &models.Order{
		UserID:     caller.UserID,
		TotalPrice: req.TotalPrice,
	}
	if statusID != 0 {
		order.StatusID = &statusID
	} else {
		logging.FromContext(ctx).Warn("create_order_without_status", "user_id", caller.UserID, "reason", "no default status configured")
	}

	if err := s.Repo.CreateOrderWithItems(ctx, order, items); err != nil {
		return nil, dependency("create order", err)
	}

	enriched, err := s.enrichOne(ctx, *order)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.TopicOrders, idKey(enriched.ID), map[string]any{
		"type":    "order_created",
		"orderID": enriched.ID,
		"userID":  enriched.UserID,
		"order":   enriched,
	})
	return enriched, nil
}

// List returns every order to admins and only the caller's own orders to
// everyone else, newest first.
func (s *OrderService) List(ctx context.Context, caller Caller) ([]models.Order, error) {
	var owner *uint
	if !caller.IsAdmin() {
		owner = &caller.UserID
	}

	orders, err := s.Repo.ListOrders(ctx, owner)
	if err != nil {
		return nil, dependency("list orders", err)
	}
	return s.Enrich(ctx, orders)
}

func (s *OrderService) Get(ctx context.Context, caller Caller, id uint) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && order.UserID != caller.UserID {
		return nil, fmt.Errorf("%w: order %d belongs to another user", ErrForbidden, id)
	}
	return s.enrichOne(ctx, *order)
}

func (s *OrderService) Update(ctx context.Context, caller Caller, id uint, req transport.UpdateOrderRequest) (*models.Order, error) {
	if !caller.IsAdmin() {
		return nil, fmt.Errorf("%w: admin privileges are required", ErrForbidden)
	}

	fields := map[string]any{}

	if req.StatusID != nil || req.StatusName != nil {
		ref := req.StatusID
		if ref == nil {
			ref = req.StatusName
		}
		statusID, err := s.Statuses.Resolve(ctx, ref)
		if err != nil {
			return nil, err
		}
		if statusID == 0 {
			return nil, fmt.Errorf("%w: invalid status", ErrValidation)
		}
		fields["status_id"] = statusID
	}

	if req.TotalPrice != nil {
		if req.TotalPrice.IsNegative() {
			return nil, fmt.Errorf("%w: total_price must be a non-negative number", ErrValidation)
		}
		fields["total_price"] = *req.TotalPrice
	}

	if req.UserID != nil {
		if *req.UserID == 0 {
			return nil, fmt.Errorf("%w: user_id must be positive", ErrValidation)
		}
		fields["user_id"] = *req.UserID
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields provided for update", ErrValidation)
	}

	updated, err := s.Repo.UpdateOrder(ctx, id, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
		}
		return nil, dependency("update order", err)
	}

	enriched, err := s.enrichOne(ctx, *updated)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.TopicOrders, idKey(id), map[string]any{
		"type":    "order_updated",
		"orderID": id,
		"userID":  enriched.UserID,
		"order":   enriched,
	})
	return enriched, nil
}

// Cancel moves the caller's own order to the cancelled status. Cancelling
// an order that is already cancelled returns it untouched.
func (s *OrderService) Cancel(ctx context.Context, caller Caller, id uint) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != caller.UserID {
		return nil, fmt.Errorf("%w: order %d belongs to another user", ErrForbidden, id)
	}

	cancelledID, err := s.Statuses.ResolveCancelled(ctx)
	if err != nil {
		return nil, err
	}
	if cancelledID == 0 {
		return nil, fmt.Errorf("%w: cancellation status not configured", ErrConfiguration)
	}

	if order.StatusID != nil && *order.StatusID == cancelledID {
		return s.enrichOne(ctx, *order)
	}

	updated, err := s.Repo.UpdateOrder(ctx, id, map[string]any{"status_id": cancelledID})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
		}
		return nil, dependency("cancel order", err)
	}

	enriched, err := s.enrichOne(ctx, *updated)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.TopicOrders, idKey(id), map[string]any{
		"type":    "order_cancelled",
		"orderID": id,
		"userID":  enriched.UserID,
		"order":   enriched,
	})
	return enriched, nil
}

// Delete removes the order's items and then the order. Items left behind
// by a missing order are still removed, and ErrNotFound is reported.
func (s *OrderService) Delete(ctx context.Context, caller Caller, id uint) (*transport.DeleteOrderResponse, error) {
	if !caller.IsAdmin() {
		return nil, fmt.Errorf("%w: admin privileges are required", ErrForbidden)
	}

	removed, err := s.Repo.DeleteOrderWithItems(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if len(removed) > 0 {
				logging.FromContext(ctx).Warn("delete_order_orphaned_items", "order_id", id, "removed", len(removed))
			}
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
		}
		return nil, dependency("delete order", err)
	}

	resp := &transport.DeleteOrderResponse{ID: id, RemovedItems: make([]transport.RemovedItem, 0, len(removed))}
	for _, itemID := range removed {
		resp.RemovedItems = append(resp.RemovedItems, transport.RemovedItem{ID: itemID})
	}

	publish(ctx, s.Events, events.TopicOrders, idKey(id), map[string]any{
		"type":         "order_deleted",
		"orderID":      id,
		"removedItems": resp.RemovedItems,
	})
	return resp, nil
}

// Enrich attaches each order's items, and each item's product, using a
// single batch query. Every returned order has a non-nil Items slice.
func (s *OrderService) Enrich(ctx context.Context, orders []models.Order) ([]models.Order, error) {
	if len(orders) == 0 {
		return []models.Order{}, nil
	}

	ids := make([]uint, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	items, err := s.Repo.ItemsForOrders(ctx, ids)
	if err != nil {
		return nil, dependency("fetch order items", err)
	}

	byOrder := make(map[uint][]models.OrderItem, len(orders))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}

	out := make([]models.Order, len(orders))
	for i, o := range orders {
		o.Items = byOrder[o.ID]
		if o.Items == nil {
			o.Items = []models.OrderItem{}
		}
		out[i] = o
	}
	return out, nil
}

func (s *OrderService) enrichOne(ctx context.Context, order models.Order) (*models.Order, error) {
	out, err := s.Enrich(ctx, []models.Order{order})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *OrderService) load(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
		}
		return nil, dependency("get order", err)
	}
	return order, nil
}

func idKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
