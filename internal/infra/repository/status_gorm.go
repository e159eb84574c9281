package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type StatusGormRepository struct {
	db *gorm.DB
}

func NewStatusGormRepository(db *gorm.DB) *StatusGormRepository {
	return &StatusGormRepository{db: db}
}

func (r *StatusGormRepository) Create(ctx context.Context, ev model.StatusEvent) error {
	return r.db.WithContext(ctx).Create(&ev).Error
}

func (r *StatusGormRepository) CreateBulk(ctx context.Context, events []model.StatusEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&events).Error
}

func (r *StatusGormRepository) ListByOrderID(ctx context.Context, orderID string) ([]model.StatusEvent, error) {
	var items []model.StatusEvent
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.StatusEvent{}, err
	}
	return items, nil
}

func (r *StatusGormRepository) MarkCompleted(ctx context.Context, statusID string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.StatusEvent{}).
		Where("id = ? AND is_completed = false", statusID).
		Updates(map[string]interface{}{
			"is_completed": true,
			"completed_at": at,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *StatusGormRepository) DeleteByOrderID(ctx context.Context, orderID string) error {
	return r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&model.StatusEvent{}).Error
}
