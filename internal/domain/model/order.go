package model

import "time"

type PaymentStatus string

const (
	PaymentStatusNotApproved PaymentStatus = "NOT_APPROVED"
	PaymentStatusPending     PaymentStatus = "PENDING"
	PaymentStatusApproved    PaymentStatus = "APPROVED"
	PaymentStatusCanceled    PaymentStatus = "CANCELED"
)

type ShippingOption string

const (
	ShippingOptionDelivery ShippingOption = "DELIVERY"
	ShippingOptionPickup   ShippingOption = "PICKUP"
)

// 注文。CommittedAtがnullの間は「オープンカート」。
// 1顧客につきオープンカートは最大1つ。部分ユニークインデックスで
// DB側でも保証する（同時addToCartの負けた側はINSERTが失敗する）。
type Order struct {
	ID              string         `gorm:"type:varchar(20);primaryKey" json:"id"`
	CustomerEmail   string         `gorm:"type:varchar(255);not null;index;index:uniq_open_cart,unique,where:committed_at IS NULL" json:"customer_email"`
	ShippingOption  ShippingOption `gorm:"type:varchar(20)" json:"shipping_option"`
	PaymentStatus   PaymentStatus  `gorm:"type:varchar(20);not null;index" json:"payment_status"`
	CommittedAt     *time.Time     `gorm:"index" json:"committed_at"`
	ReceivedAt      time.Time      `gorm:"not null" json:"received_at"`
	PaymentDeadline *time.Time     `json:"payment_deadline"`
	Note            string         `gorm:"type:text" json:"note"`
	TrackingNumber  string         `gorm:"type:varchar(100)" json:"tracking_number"`
	ReceiptKey      string         `gorm:"type:varchar(255)" json:"-"`
}

// オープンカートかどうか
func (o Order) IsOpen() bool {
	return o.CommittedAt == nil
}
