package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/labstack/gommon/log"
)

type OrderUsecase struct {
	tx    repo.TransactionManager
	store repo.ObjectStore
}

func NewOrderUsecase(tx repo.TransactionManager, store repo.ObjectStore) *OrderUsecase {
	return &OrderUsecase{tx: tx, store: store}
}

type CommitCartInput struct {
	ShippingOption  string
	Note            string
	PaymentDeadline *time.Time
}

type CommitCartOutput struct {
	OrderID string `json:"order_id"`
}

type StatusOutput struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
}

type OrderOutput struct {
	ID              string              `json:"id"`
	CustomerEmail   string              `json:"customer_email"`
	Status          string              `json:"status"`
	PaymentStatus   string              `json:"payment_status"`
	ShippingOption  string              `json:"shipping_option"`
	CommittedAt     *time.Time          `json:"committed_at"`
	ReceivedAt      time.Time           `json:"received_at"`
	PaymentDeadline *time.Time          `json:"payment_deadline"`
	Note            string              `json:"note"`
	TrackingNumber  string              `json:"tracking_number"`
	Total           int64               `json:"total"`
	Products        []CartProductOutput `json:"products"`
	StatusEvents    []StatusOutput      `json:"status_events"`
}

// CommitCart はオープンカートを注文として確定する。
// 配送方法・メモ・支払期限を保存してcommitted_atを打つ。通知は出さない。
func (u *OrderUsecase) CommitCart(ctx context.Context, email string, orderID string, in CommitCartInput) (CommitCartOutput, error) {
	if email == "" {
		return CommitCartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID == "" {
		return CommitCartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	opt := model.ShippingOption(strings.ToUpper(strings.TrimSpace(in.ShippingOption)))
	switch opt {
	case model.ShippingOptionDelivery, model.ShippingOptionPickup:
		// OK
	default:
		return CommitCartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid shipping_option")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//他人のカートは確定できない
		if o.CustomerEmail != email {
			return NewHTTPError(http.StatusForbidden, "forbidden")
		}
		if !o.IsOpen() {
			return NewHTTPError(http.StatusBadRequest, "already committed")
		}

		//空のカートは確定できない
		count, err := r.Products().CountByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if count == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}

		if err := r.Orders().Commit(ctx, orderID, opt, in.Note, in.PaymentDeadline, time.Now()); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, "already committed")
			}
			log.Errorf("commit cart: update failed: order=%s: %v", orderID, err)
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})

	if err != nil {
		return CommitCartOutput{}, err
	}
	return CommitCartOutput{OrderID: orderID}, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, email string) ([]OrderOutput, error) {
	if email == "" {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListByEmail(ctx, email)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

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
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, email string, orderID string) (OrderOutput, error) {
	if email == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		//他人の注文は「存在しない扱い」にする
		if o.CustomerEmail != email {
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		out, err = buildOrderOutput(ctx, r, o)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// DeleteProduct は印刷ジョブを1件消す。最後の1件を消したら
// 注文とステータス行ごと消す（カスケード）。
func (u *OrderUsecase) DeleteProduct(ctx context.Context, email string, isStaff bool, orderID string, productID string) error {
	if email == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID == "" || productID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var folderPath string

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !isStaff && o.CustomerEmail != email {
			return NewHTTPError(http.StatusForbidden, "forbidden")
		}

		p, err := r.Products().FindByID(ctx, productID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if p.OrderID != orderID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		if err := r.Products().DeleteByID(ctx, productID); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		folderPath = p.FolderPath

		remaining, err := r.Products().CountByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if remaining == 0 {
			//最後の1件だったので注文ごと消す
			if err := r.Statuses().DeleteByOrderID(ctx, orderID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if err := r.Orders().Delete(ctx, orderID); err != nil && err != repo.ErrNotFound {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}
		return nil
	})

	if err != nil {
		return err
	}

	//アップロード済みファイルの掃除。失敗しても削除自体は成立している。
	u.cleanupFolder(ctx, folderPath)
	return nil
}

// MarkPaymentPending は振込控えの提出を受けて支払いをPENDINGにする。
func (u *OrderUsecase) MarkPaymentPending(ctx context.Context, email string, orderID string, receiptKey string) error {
	if email == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID == "" || receiptKey == "" {
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
		if o.CustomerEmail != email {
			return NewHTTPError(http.StatusForbidden, "forbidden")
		}
		if o.IsOpen() {
			return NewHTTPError(http.StatusBadRequest, "order not committed")
		}
		if o.PaymentStatus == model.PaymentStatusCanceled {
			return NewHTTPError(http.StatusConflict, "Cannot update: canceled")
		}
		if o.PaymentStatus == model.PaymentStatusApproved {
			return NewHTTPError(http.StatusConflict, "already approved")
		}

		if err := r.Orders().UpdateReceipt(ctx, orderID, receiptKey, model.PaymentStatusPending); err != nil {
			log.Errorf("mark payment pending: update failed: order=%s: %v", orderID, err)
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}

func (u *OrderUsecase) cleanupFolder(ctx context.Context, folderPath string) {
	if folderPath == "" {
		return
	}

	infos, err := u.store.List(ctx, folderPath)
	if err != nil {
		log.Warnf("delete product: folder listing failed: folder=%s: %v", folderPath, err)
		return
	}
	for _, info := range infos {
		if err := u.store.Delete(ctx, info.Key); err != nil {
			log.Warnf("delete product: object delete failed: key=%s: %v", info.Key, err)
		}
	}
}

func buildOrderOutput(ctx context.Context, r repo.TxRepos, o model.Order) (OrderOutput, error) {
	products, err := r.Products().ListByOrderID(ctx, o.ID)
	if err != nil {
		return OrderOutput{}, err
	}
	events, err := r.Statuses().ListByOrderID(ctx, o.ID)
	if err != nil {
		return OrderOutput{}, err
	}
	return toOrderOutput(o, products, events), nil
}

func toOrderOutput(o model.Order, products []model.Product, events []model.StatusEvent) OrderOutput {
	outProducts := make([]CartProductOutput, 0, len(products))
	var total int64 = 0
	for _, p := range products {
		outProducts = append(outProducts, CartProductOutput{
			ID:          p.ID,
			AlbumName:   p.AlbumName,
			Size:        p.Size,
			PaperType:   p.PaperType,
			PrintFormat: p.PrintFormat,
			Quantity:    p.Quantity,
			UnitPrice:   p.UnitPrice,
			LineTotal:   p.LineTotal(),
			FolderPath:  p.FolderPath,
		})
		total += p.LineTotal()
	}

	outEvents := make([]StatusOutput, 0, len(events))
	for _, ev := range events {
		outEvents = append(outEvents, StatusOutput{
			ID:          ev.ID,
			Name:        string(ev.Name),
			IsCompleted: ev.IsCompleted,
			CompletedAt: ev.CompletedAt,
		})
	}

	return OrderOutput{
		ID:              o.ID,
		CustomerEmail:   o.CustomerEmail,
		Status:          model.CompositeStatus(o, events),
		PaymentStatus:   string(o.PaymentStatus),
		ShippingOption:  string(o.ShippingOption),
		CommittedAt:     o.CommittedAt,
		ReceivedAt:      o.ReceivedAt,
		PaymentDeadline: o.PaymentDeadline,
		Note:            o.Note,
		TrackingNumber:  o.TrackingNumber,
		Total:           total,
		Products:        outProducts,
		StatusEvents:    outEvents,
	}
}
