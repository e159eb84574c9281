package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page          int
	Limit         int
	PaymentStatus string
	CustomerEmail string
	From          *time.Time
	To            *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID string) (model.Order, error)

	//顧客のオープンカートを取得（無ければErrNotFound）
	FindOpenByEmail(ctx context.Context, email string) (model.Order, error)
	//同上だがFOR UPDATEで行ロックを取る。トランザクション内で使う。
	FindOpenByEmailForUpdate(ctx context.Context, email string) (model.Order, error)

	Create(ctx context.Context, order model.Order) error

	//カート確定。オープンカートにだけ効く。
	Commit(ctx context.Context, orderID string, opt model.ShippingOption, note string, deadline *time.Time, committedAt time.Time) error

	UpdatePaymentStatus(ctx context.Context, orderID string, status model.PaymentStatus) error
	//振込控えのキーを保存しつつ支払いステータスを更新する
	UpdateReceipt(ctx context.Context, orderID string, receiptKey string, status model.PaymentStatus) error
	UpdateTrackingNumber(ctx context.Context, orderID string, trackingNumber string) error

	ListByEmail(ctx context.Context, email string) ([]model.Order, error)
	//スタッフ用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)

	Delete(ctx context.Context, orderID string) error
}
