package repository

import (
	"context"

	"app/internal/domain/model"
)

type NotificationRepository interface {
	Create(ctx context.Context, msg model.NotificationMessage) error
	//新しい順
	ListByRecipient(ctx context.Context, email string) ([]model.NotificationMessage, error)
	//受信者単位で一括既読化
	MarkAllRead(ctx context.Context, email string) error
	CountUnread(ctx context.Context, email string) (int64, error)
}
