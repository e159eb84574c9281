package repository

import (
	"context"

	"app/internal/domain/model"
)

type ProductRepository interface {
	Create(ctx context.Context, p model.Product) error
	FindByID(ctx context.Context, productID string) (model.Product, error)
	//フォルダパスから所属する印刷ジョブを引く（バンドルの認可で使う）
	FindByFolderPath(ctx context.Context, folderPath string) (model.Product, error)
	ListByOrderID(ctx context.Context, orderID string) ([]model.Product, error)
	CountByOrderID(ctx context.Context, orderID string) (int64, error)
	DeleteByID(ctx context.Context, productID string) error
	DeleteByOrderID(ctx context.Context, orderID string) error
}
