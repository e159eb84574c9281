package model

import "time"

// スタッフ操作の種類
type AuditAction string

const (
	//ステータスを1つ進めた操作。
	AuditActionAdvanceStatus AuditAction = "ADVANCE_STATUS"
	//支払いを承認した操作。
	AuditActionApprovePayment AuditAction = "APPROVE_PAYMENT"
	//注文をキャンセルした操作。
	AuditActionCancelOrder AuditAction = "CANCEL_ORDER"
)

// 監査ログ（スタッフ操作ログ）。
// 「誰が」「どの注文を」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したスタッフのユーザーID。
	ActorUserID int64 `gorm:"not null;index" json:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	//対象の注文ID。
	OrderID string `gorm:"type:varchar(20);not null;index" json:"order_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
