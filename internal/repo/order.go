package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

// CreateOrderWithItems writes the order row and its items in one
// transaction; nothing is kept if any insert fails.
func (r *GormRepo) CreateOrderWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
			return err
		}
		return nil
	})
}

// ListOrders returns every order when userID is nil, otherwise only that
// user's orders. Newest first.
func (r *GormRepo) ListOrders(ctx context.Context, userID *uint) ([]models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}

	var orders []models.Order
	if err := q.Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ItemsForOrders loads the items of all given orders in a single query,
// with each item's product attached when it still exists.
func (r *GormRepo) ItemsForOrders(ctx context.Context, orderIDs []uint) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.DB.WithContext(ctx).
		Preload("Product").
		Where("order_id IN ?", orderIDs).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) UpdateOrder(ctx context.Context, id uint, fields map[string]any) (*models.Order, error) {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetOrder(ctx, id)
}

// DeleteOrderWithItems removes the items first, then the order. When the
// order row does not exist the item deletion still commits and
// gorm.ErrRecordNotFound is returned alongside the removed item ids.
func (r *GormRepo) DeleteOrderWithItems(ctx context.Context, id uint) ([]uint, error) {
	var removed []uint
	missing := false

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.OrderItem{}).Where("order_id = ?", id).Order("id ASC").Pluck("id", &removed).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Order{}, id)
		if res.Error != nil {
			return res.Error
		}
		missing = res.RowsAffected == 0
		return nil
	})
	if err != nil {
		return nil, err
	}
	if removed == nil {
		removed = []uint{}
	}
	if missing {
		return removed, gorm.ErrRecordNotFound
	}
	return removed, nil
}
