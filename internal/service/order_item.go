package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

// OrderItemService is direct admin editing of order lines.
type OrderItemService struct {
	Repo *repo.GormRepo
}

func (s *OrderItemService) List(ctx context.Context) ([]models.OrderItem, error) {
	items, err := s.Repo.ListOrderItems(ctx)
	if err != nil {
		return nil, dependency("list order items", err)
	}
	return items, nil
}

func (s *OrderItemService) Get(ctx context.Context, id uint) (*models.OrderItem, error) {
	item, err := s.Repo.GetOrderItem(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order item %d", ErrNotFound, id)
		}
		return nil, dependency("get order item", err)
	}
	return item, nil
}

func (s *OrderItemService) Create(ctx context.Context, req transport.CreateOrderItemRequest) (*models.OrderItem, error) {
	if req.OrderID == 0 || req.ProductID == 0 || req.Quantity == 0 || req.Price == nil {
		return nil, fmt.Errorf("%w: order_id, product_id, quantity, and price are required", ErrValidation)
	}
	if req.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than zero", ErrValidation)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must be a non-negative number", ErrValidation)
	}

	item := &models.OrderItem{
		OrderID:   req.OrderID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Price:     *req.Price,
	}
	if err := s.Repo.CreateOrderItem(ctx, item); err != nil {
		return nil, dependency("create order item", err)
	}
	return s.Get(ctx, item.ID)
}

func (s *OrderItemService) Update(ctx context.Context, id uint, req transport.PatchOrderItemRequest) (*models.OrderItem, error) {
	fields := map[string]any{}
	if req.OrderID != nil {
		if *req.OrderID == 0 {
			return nil, fmt.Errorf("%w: order_id must be positive", ErrValidation)
		}
		fields["order_id"] = *req.OrderID
	}
	if req.ProductID != nil {
		if *req.ProductID == 0 {
			return nil, fmt.Errorf("%w: product_id must be positive", ErrValidation)
		}
		fields["product_id"] = *req.ProductID
	}
	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be greater than zero", ErrValidation)
		}
		fields["quantity"] = *req.Quantity
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price must be a non-negative number", ErrValidation)
		}
		fields["price"] = *req.Price
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields provided for update", ErrValidation)
	}

	item, err := s.Repo.UpdateOrderItem(ctx, id, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order item %d", ErrNotFound, id)
		}
		return nil, dependency("update order item", err)
	}
	return item, nil
}

func (s *OrderItemService) Delete(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteOrderItem(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: order item %d", ErrNotFound, id)
		}
		return dependency("delete order item", err)
	}
	return nil
}
