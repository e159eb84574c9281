package repository

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type NotificationGormRepository struct {
	db *gorm.DB
}

func NewNotificationGormRepository(db *gorm.DB) *NotificationGormRepository {
	return &NotificationGormRepository{db: db}
}

func (r *NotificationGormRepository) Create(ctx context.Context, msg model.NotificationMessage) error {
	return r.db.WithContext(ctx).Create(&msg).Error
}

func (r *NotificationGormRepository) ListByRecipient(ctx context.Context, email string) ([]model.NotificationMessage, error) {
	var items []model.NotificationMessage
	err := r.db.WithContext(ctx).
		Where("recipient_email = ?", email).
		Order("id desc").
		Find(&items).Error
	if err != nil {
		return []model.NotificationMessage{}, err
	}
	return items, nil
}

// 受信者の未読を全部既読にする。対象0件でもエラーにしない。
func (r *NotificationGormRepository) MarkAllRead(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).Model(&model.NotificationMessage{}).
		Where("recipient_email = ? AND is_read = false", email).
		Update("is_read", true).Error
}

func (r *NotificationGormRepository) CountUnread(ctx context.Context, email string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.NotificationMessage{}).
		Where("recipient_email = ? AND is_read = false", email).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

var _ repo.NotificationRepository = (*NotificationGormRepository)(nil)
