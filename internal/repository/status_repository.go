package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

type StatusRepository interface {
	Create(ctx context.Context, ev model.StatusEvent) error
	//注文コミット時の3件のプレースホルダをまとめて作る
	CreateBulk(ctx context.Context, events []model.StatusEvent) error
	ListByOrderID(ctx context.Context, orderID string) ([]model.StatusEvent, error)
	//完了フラグを立ててタイムスタンプを記録する
	MarkCompleted(ctx context.Context, statusID string, at time.Time) error
	DeleteByOrderID(ctx context.Context, orderID string) error
}
