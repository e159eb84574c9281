package usecase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/labstack/gommon/log"
)

type NotificationKind string

const (
	KindPaymentConfirmed NotificationKind = "PAYMENT_CONFIRMED"
	KindStatusAdvanced   NotificationKind = "STATUS_ADVANCED"
)

// ステータス名→文面の固定テーブル
var statusMessages = map[model.StatusName]string{
	model.StatusReceiveOrder:   "your order has been received and is now being processed",
	model.StatusOrderCompleted: "your prints are finished",
	model.StatusShipped:        "your order has been shipped / is ready for pickup",
}

// MessageBody は通知の文面をkindと新ステータス名から決定的に組み立てる。
// 知らないステータス名は汎用文面に落とす。
func MessageBody(orderID string, kind NotificationKind, detail string) string {
	switch kind {
	case KindPaymentConfirmed:
		return fmt.Sprintf("Order %s: your payment has been confirmed.", orderID)
	case KindStatusAdvanced:
		if m, ok := statusMessages[model.StatusName(detail)]; ok {
			return fmt.Sprintf("Order %s: %s.", orderID, m)
		}
		return fmt.Sprintf("Order %s: status has been updated to: %s.", orderID, detail)
	}
	return fmt.Sprintf("Order %s has been updated.", orderID)
}

type NotificationOutput struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	Body      string    `json:"body"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type NotificationUsecase struct {
	notifRepo repo.NotificationRepository
	seqRepo   repo.SequenceRepository
}

func NewNotificationUsecase(notifRepo repo.NotificationRepository, seqRepo repo.SequenceRepository) *NotificationUsecase {
	return &NotificationUsecase{notifRepo: notifRepo, seqRepo: seqRepo}
}

// Notify は通知メッセージを1件採番して永続化する。
// 呼び出し側（状態遷移）はこの失敗をロールバック理由にしてはいけない。
func (u *NotificationUsecase) Notify(ctx context.Context, orderID string, recipientEmail string, kind NotificationKind, detail string) (string, error) {
	if recipientEmail == "" {
		return "", fmt.Errorf("notify: empty recipient for order %s", orderID)
	}

	msgID, err := u.seqRepo.Next(ctx, repo.SeqMessage)
	if err != nil {
		return "", fmt.Errorf("notify: id allocation failed: %w", err)
	}

	msg := model.NotificationMessage{
		ID:             msgID,
		RecipientEmail: recipientEmail,
		OrderID:        orderID,
		Body:           MessageBody(orderID, kind, detail),
		CreatedAt:      time.Now(),
	}
	if err := u.notifRepo.Create(ctx, msg); err != nil {
		return "", fmt.Errorf("notify: create failed: %w", err)
	}

	return msgID, nil
}

func (u *NotificationUsecase) List(ctx context.Context, email string) ([]NotificationOutput, error) {
	if email == "" {
		return []NotificationOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	msgs, err := u.notifRepo.ListByRecipient(ctx, email)
	if err != nil {
		log.Errorf("notifications: list failed: recipient=%s: %v", email, err)
		return []NotificationOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]NotificationOutput, 0, len(msgs))
	for _, m := range msgs {
		outs = append(outs, NotificationOutput{
			ID:        m.ID,
			OrderID:   m.OrderID,
			Body:      m.Body,
			IsRead:    m.IsRead,
			CreatedAt: m.CreatedAt,
		})
	}
	return outs, nil
}

func (u *NotificationUsecase) MarkAllRead(ctx context.Context, email string) error {
	if email == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if err := u.notifRepo.MarkAllRead(ctx, email); err != nil {
		log.Errorf("notifications: mark all read failed: recipient=%s: %v", email, err)
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *NotificationUsecase) UnreadCount(ctx context.Context, email string) (int64, error) {
	if email == "" {
		return 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	count, err := u.notifRepo.CountUnread(ctx, email)
	if err != nil {
		log.Errorf("notifications: unread count failed: recipient=%s: %v", email, err)
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return count, nil
}
