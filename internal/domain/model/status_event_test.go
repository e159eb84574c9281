package model_test

import (
	"testing"
	"time"

	"app/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

func events(completed ...model.StatusName) []model.StatusEvent {
	now := time.Now()
	all := []model.StatusName{
		model.StatusReceiveOrder,
		model.StatusOrderCompleted,
		model.StatusShipped,
	}
	out := make([]model.StatusEvent, 0, len(all))
	for i, name := range all {
		ev := model.StatusEvent{ID: "stt0000" + string(rune('1'+i)), OrderID: "ord00001", Name: name}
		for _, c := range completed {
			if c == name {
				ev.IsCompleted = true
				ev.CompletedAt = &now
			}
		}
		out = append(out, ev)
	}
	return out
}

// 支払い状態と最新の完了ステータスから外向きの1語に合成される
func TestCompositeStatus(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name   string
		order  model.Order
		events []model.StatusEvent
		want   string
	}{
		{
			name:   "not approved overrides progress",
			order:  model.Order{PaymentStatus: model.PaymentStatusNotApproved},
			events: events(model.StatusReceiveOrder),
			want:   model.CompositePaymentNotApproved,
		},
		{
			name:   "pending overrides progress",
			order:  model.Order{PaymentStatus: model.PaymentStatusPending},
			events: events(model.StatusReceiveOrder, model.StatusOrderCompleted),
			want:   model.CompositePaymentPending,
		},
		{
			name:   "approved with nothing completed",
			order:  model.Order{PaymentStatus: model.PaymentStatusApproved},
			events: events(),
			want:   model.CompositeWaitingForProcess,
		},
		{
			name:   "approved with receive order completed",
			order:  model.Order{PaymentStatus: model.PaymentStatusApproved},
			events: events(model.StatusReceiveOrder),
			want:   "ReceiveOrder",
		},
		{
			name:   "latest completed wins",
			order:  model.Order{PaymentStatus: model.PaymentStatusApproved},
			events: events(model.StatusReceiveOrder, model.StatusOrderCompleted),
			want:   "OrderCompleted",
		},
		{
			name:   "all completed",
			order:  model.Order{PaymentStatus: model.PaymentStatusApproved},
			events: events(model.StatusReceiveOrder, model.StatusOrderCompleted, model.StatusShipped),
			want:   "Shipped",
		},
		{
			name:  "canceled payment wins over everything",
			order: model.Order{PaymentStatus: model.PaymentStatusCanceled},
			events: append(events(model.StatusReceiveOrder), model.StatusEvent{
				Name: model.StatusShipped, IsCompleted: true, CompletedAt: &now,
			}),
			want: model.CompositeCanceled,
		},
		{
			name:  "completed canceled event wins",
			order: model.Order{PaymentStatus: model.PaymentStatusApproved},
			events: append(events(model.StatusReceiveOrder), model.StatusEvent{
				Name: model.StatusCanceled, IsCompleted: true, CompletedAt: &now,
			}),
			want: model.CompositeCanceled,
		},
		{
			name:  "incomplete canceled event does not cancel",
			order: model.Order{PaymentStatus: model.PaymentStatusApproved},
			events: append(events(model.StatusReceiveOrder), model.StatusEvent{
				Name: model.StatusCanceled,
			}),
			want: "ReceiveOrder",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, model.CompositeStatus(tc.order, tc.events))
		})
	}
}

func TestStatusNameRank(t *testing.T) {
	assert.Equal(t, 1, model.StatusReceiveOrder.Rank())
	assert.Equal(t, 2, model.StatusOrderCompleted.Rank())
	assert.Equal(t, 3, model.StatusShipped.Rank())
	// CANCELEDと未知の名前は順序外
	assert.Equal(t, 0, model.StatusCanceled.Rank())
	assert.Equal(t, 0, model.StatusName("UNKNOWN").Rank())
}

func TestOrderIsOpen(t *testing.T) {
	assert.True(t, model.Order{}.IsOpen())

	now := time.Now()
	assert.False(t, model.Order{CommittedAt: &now}.IsOpen())
}
