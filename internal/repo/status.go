package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) ListStatuses(ctx context.Context) ([]models.OrderStatus, error) {
	var statuses []models.OrderStatus
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}

func (r *GormRepo) GetStatus(ctx context.Context, id uint) (*models.OrderStatus, error) {
	var status models.OrderStatus
	if err := r.DB.WithContext(ctx).First(&status, id).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

// FindStatusByName matches case-insensitively; the lowest id wins when
// several rows share a name.
func (r *GormRepo) FindStatusByName(ctx context.Context, name string) (*models.OrderStatus, error) {
	var status models.OrderStatus
	err := r.DB.WithContext(ctx).
		Where("LOWER(status_name) = LOWER(?)", name).
		Order("id ASC").
		First(&status).Error
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *GormRepo) CreateStatus(ctx context.Context, status *models.OrderStatus) error {
	return r.DB.WithContext(ctx).Create(status).Error
}

func (r *GormRepo) RenameStatus(ctx context.Context, id uint, name string) (*models.OrderStatus, error) {
	res := r.DB.WithContext(ctx).Model(&models.OrderStatus{}).Where("id = ?", id).Update("status_name", name)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetStatus(ctx, id)
}

func (r *GormRepo) DeleteStatus(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.OrderStatus{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
