package model

import "time"

type StatusName string

const (
	StatusReceiveOrder   StatusName = "RECEIVE_ORDER"
	StatusOrderCompleted StatusName = "ORDER_COMPLETED"
	StatusShipped        StatusName = "SHIPPED"
	//キャンセル番兵。完了したら以後の進行を全部止める。
	StatusCanceled StatusName = "CANCELED"
)

// 進行の固定順。CANCELEDは順序外。
var statusRank = map[StatusName]int{
	StatusReceiveOrder:   1,
	StatusOrderCompleted: 2,
	StatusShipped:        3,
}

// 固定順での位置。CANCELEDや未知の名前は0。
func (s StatusName) Rank() int {
	return statusRank[s]
}

// 注文のステータス行。注文コミット時に3件（未完了）がまとめて作られる。
type StatusEvent struct {
	ID          string     `gorm:"type:varchar(20);primaryKey" json:"id"`
	OrderID     string     `gorm:"type:varchar(20);not null;index" json:"order_id"`
	Name        StatusName `gorm:"type:varchar(30);not null" json:"name"`
	IsCompleted bool       `gorm:"not null;default:false" json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
}

// クライアントに見せる合成ステータス
const (
	CompositePaymentNotApproved = "PaymentNotApproved"
	CompositePaymentPending     = "PaymentPending"
	CompositeCanceled           = "Canceled"
	CompositeWaitingForProcess  = "WaitingForProcess"
)

var compositeNames = map[StatusName]string{
	StatusReceiveOrder:   "ReceiveOrder",
	StatusOrderCompleted: "OrderCompleted",
	StatusShipped:        "Shipped",
}

// CompositeStatus は支払い状態と最新の完了ステータスから
// 外向きのステータス文字列を1つに合成する。
func CompositeStatus(o Order, events []StatusEvent) string {
	if o.PaymentStatus == PaymentStatusCanceled {
		return CompositeCanceled
	}

	var latest *StatusEvent
	for i := range events {
		ev := events[i]
		if !ev.IsCompleted {
			continue
		}
		if ev.Name == StatusCanceled {
			return CompositeCanceled
		}
		if latest == nil || ev.Name.Rank() > latest.Name.Rank() {
			latest = &events[i]
		}
	}

	switch o.PaymentStatus {
	case PaymentStatusNotApproved:
		return CompositePaymentNotApproved
	case PaymentStatusPending:
		return CompositePaymentPending
	}

	//APPROVED以降
	if latest == nil {
		return CompositeWaitingForProcess
	}
	return compositeNames[latest.Name]
}
