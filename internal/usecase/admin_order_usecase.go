package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/labstack/gommon/log"
)

// 状態遷移の完了後に通知を書く約束。
// 通知の失敗は遷移を巻き戻さない。
type Notifier interface {
	Notify(ctx context.Context, orderID string, recipientEmail string, kind NotificationKind, detail string) (string, error)
}

// AdminOrderUsecase はスタッフによる支払い承認・ステータス進行・
// キャンセルを担当する。
type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	auditRepo repo.AuditLogRepository
	notifier  Notifier
}

func NewAdminOrderUsecase(tx repo.TransactionManager, auditRepo repo.AuditLogRepository, notifier Notifier) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, auditRepo: auditRepo, notifier: notifier}
}

// AdvanceStatus は固定順で次の未完了ステータスを1つ完了させる。
// キャンセル済み注文には一切効かない。
func (u *AdminOrderUsecase) AdvanceStatus(ctx context.Context, staffID int64, orderID string) ([]StatusOutput, error) {
	if staffID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var completedName model.StatusName
	var recipient string
	var outs []StatusOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.PaymentStatus == model.PaymentStatusCanceled {
			return NewHTTPError(http.StatusConflict, "Cannot update: canceled")
		}

		events, err := r.Statuses().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//CANCELEDが完了していたら以後の進行は禁止
		for _, ev := range events {
			if ev.Name == model.StatusCanceled && ev.IsCompleted {
				return NewHTTPError(http.StatusConflict, "Cannot update: canceled")
			}
		}

		//固定順で最初の未完了を選ぶ（CANCELEDは対象外）
		var next *model.StatusEvent
		for i := range events {
			ev := events[i]
			if ev.IsCompleted || ev.Name.Rank() == 0 {
				continue
			}
			if next == nil || ev.Name.Rank() < next.Name.Rank() {
				next = &events[i]
			}
		}
		if next == nil {
			return NewHTTPError(http.StatusBadRequest, "No status found")
		}

		now := time.Now()
		if err := r.Statuses().MarkCompleted(ctx, next.ID, now); err != nil {
			if err == repo.ErrNotFound {
				//並行更新に先を越された
				return NewHTTPError(http.StatusConflict, "conflict")
			}
			log.Errorf("advance status: mark completed failed: order=%s status=%s: %v", orderID, next.ID, err)
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := u.writeAudit(ctx, staffID, model.AuditActionAdvanceStatus, orderID,
			string(next.Name)+":incomplete", string(next.Name)+":completed"); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		completedName = next.Name
		recipient = o.CustomerEmail

		//更新後の一覧を返す
		refreshed, err := r.Statuses().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		outs = make([]StatusOutput, 0, len(refreshed))
		for _, ev := range refreshed {
			outs = append(outs, StatusOutput{
				ID:          ev.ID,
				Name:        string(ev.Name),
				IsCompleted: ev.IsCompleted,
				CompletedAt: ev.CompletedAt,
			})
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	//通知はコミット後。失敗してもログだけ残して遷移は成立させる。
	if _, nerr := u.notifier.Notify(ctx, orderID, recipient, KindStatusAdvanced, string(completedName)); nerr != nil {
		log.Errorf("advance status: notify failed: order=%s status=%s: %v", orderID, completedName, nerr)
	}

	return outs, nil
}

// ApprovePayment は支払いをAPPROVEDにする。キャンセル済みには効かない。
// すでにAPPROVEDなら何もしない（200）。
func (u *AdminOrderUsecase) ApprovePayment(ctx context.Context, staffID int64, orderID string) error {
	if staffID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var recipient string
	alreadyApproved := false

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.PaymentStatus == model.PaymentStatusCanceled {
			return NewHTTPError(http.StatusConflict, "Cannot update: canceled")
		}
		if o.PaymentStatus == model.PaymentStatusApproved {
			alreadyApproved = true
			return nil
		}

		if err := r.Orders().UpdatePaymentStatus(ctx, orderID, model.PaymentStatusApproved); err != nil {
			log.Errorf("approve payment: update failed: order=%s: %v", orderID, err)
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := u.writeAudit(ctx, staffID, model.AuditActionApprovePayment, orderID,
			string(o.PaymentStatus), string(model.PaymentStatusApproved)); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		recipient = o.CustomerEmail
		return nil
	})

	if err != nil {
		return err
	}
	if alreadyApproved {
		return nil
	}

	if _, nerr := u.notifier.Notify(ctx, orderID, recipient, KindPaymentConfirmed, ""); nerr != nil {
		log.Errorf("approve payment: notify failed: order=%s: %v", orderID, nerr)
	}
	return nil
}

// Cancel は注文を終端状態にする。二度と戻せない。
// 支払いをCANCELEDにし、CANCELEDステータスを完了状態で残す。
func (u *AdminOrderUsecase) Cancel(ctx context.Context, staffID int64, orderID string) error {
	if staffID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		//すでにキャンセル済みなら何もしない
		if o.PaymentStatus == model.PaymentStatusCanceled {
			return nil
		}

		if err := r.Orders().UpdatePaymentStatus(ctx, orderID, model.PaymentStatusCanceled); err != nil {
			log.Errorf("cancel order: update failed: order=%s: %v", orderID, err)
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		events, err := r.Statuses().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		now := time.Now()
		var canceled *model.StatusEvent
		for i := range events {
			if events[i].Name == model.StatusCanceled {
				canceled = &events[i]
				break
			}
		}

		if canceled == nil {
			statusID, err := r.Sequences().Next(ctx, repo.SeqStatus)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			ev := model.StatusEvent{
				ID:          statusID,
				OrderID:     orderID,
				Name:        model.StatusCanceled,
				IsCompleted: true,
				CompletedAt: &now,
			}
			if err := r.Statuses().Create(ctx, ev); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		} else if !canceled.IsCompleted {
			if err := r.Statuses().MarkCompleted(ctx, canceled.ID, now); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		return u.writeAuditOr500(ctx, staffID, model.AuditActionCancelOrder, orderID,
			string(o.PaymentStatus), string(model.PaymentStatusCanceled))
	})
}

// スタッフ用の注文一覧。合成ステータス込みで返す。
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) ([]OrderOutput, int64, error) {
	if f.Page < 1 {
		return []OrderOutput{}, 0, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return []OrderOutput{}, 0, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	var outs []OrderOutput
	var total int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, n, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		total = n

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			out, err := buildOrderOutput(ctx, r, o)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, out)
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, 0, err
	}
	return outs, total, nil
}

func (u *AdminOrderUsecase) writeAudit(ctx context.Context, staffID int64, action model.AuditAction, orderID string, before string, after string) error {
	return u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID: staffID,
		Action:      action,
		OrderID:     orderID,
		BeforeJSON:  `{"state":"` + before + `"}`,
		AfterJSON:   `{"state":"` + after + `"}`,
		CreatedAt:   time.Now(),
	})
}

func (u *AdminOrderUsecase) writeAuditOr500(ctx context.Context, staffID int64, action model.AuditAction, orderID string, before string, after string) error {
	if err := u.writeAudit(ctx, staffID, action, orderID, before, after); err != nil {
		log.Errorf("audit log write failed: order=%s action=%s: %v", orderID, action, err)
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
