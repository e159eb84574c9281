package model

import "time"

// 通知メッセージ。注文への弱参照（注文が消えても履歴として残る）。
// 更新されるのはIsReadだけ。
type NotificationMessage struct {
	ID             string    `gorm:"type:varchar(20);primaryKey" json:"id"`
	RecipientEmail string    `gorm:"type:varchar(255);not null;index" json:"recipient_email"`
	OrderID        string    `gorm:"type:varchar(20);not null" json:"order_id"`
	Body           string    `gorm:"type:text;not null" json:"body"`
	IsRead         bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}
