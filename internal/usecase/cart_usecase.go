package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/labstack/gommon/log"
)

// CartUsecase はオープンカートへの商品追加を担当する。
// オープンカート＝committed_atがnullの注文。顧客ごとに最大1つ。
type CartUsecase struct {
	tx repo.TransactionManager
}

func NewCartUsecase(tx repo.TransactionManager) *CartUsecase {
	return &CartUsecase{tx: tx}
}

// 追加する印刷ジョブの指定
type ProductSpec struct {
	AlbumName   string
	Size        string
	PaperType   string
	PrintFormat string
	Quantity    int64
	UnitPrice   int64
}

type AddToCartOutput struct {
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
}

type CartProductOutput struct {
	ID          string `json:"id"`
	AlbumName   string `json:"album_name"`
	Size        string `json:"size"`
	PaperType   string `json:"paper_type"`
	PrintFormat string `json:"print_format"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	LineTotal   int64  `json:"line_total"`
	FolderPath  string `json:"folder_path"`
}

type CartOutput struct {
	OrderID  string              `json:"order_id"`
	Status   string              `json:"status"`
	Products []CartProductOutput `json:"products"`
	Total    int64               `json:"total"`
}

// 印刷ジョブのアップロード先プレフィックス
func ProductFolderPath(productID string) string {
	return "products/" + productID + "/"
}

// AddToCart はオープンカートを探して（無ければ作って）商品を1件ぶら下げる。
// コミット前に何回呼んでも注文は1つのまま。
func (u *CartUsecase) AddToCart(ctx context.Context, email string, spec ProductSpec) (AddToCartOutput, error) {
	if email == "" {
		return AddToCartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if spec.AlbumName == "" || spec.Size == "" || spec.PaperType == "" || spec.PrintFormat == "" {
		return AddToCartOutput{}, NewHTTPError(http.StatusBadRequest, "missing product fields")
	}
	if spec.Quantity < 1 {
		return AddToCartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}
	if spec.UnitPrice < 0 {
		return AddToCartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid unit_price")
	}

	var out AddToCartOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//行ロック付きでオープンカートを探す。同時addToCartの二重作成防止。
		order, err := r.Orders().FindOpenByEmailForUpdate(ctx, email)
		if err == repo.ErrNotFound {
			order, err = createOpenCart(ctx, r, email)
		}
		if err != nil {
			log.Errorf("add to cart: open cart lookup failed: customer=%s: %v", email, err)
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		productID, err := r.Sequences().Next(ctx, repo.SeqProduct)
		if err != nil {
			log.Errorf("add to cart: product id allocation failed: order=%s: %v", order.ID, err)
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		p := model.Product{
			ID:          productID,
			OrderID:     order.ID,
			AlbumName:   spec.AlbumName,
			Size:        spec.Size,
			PaperType:   spec.PaperType,
			PrintFormat: spec.PrintFormat,
			Quantity:    spec.Quantity,
			UnitPrice:   spec.UnitPrice,
			FolderPath:  ProductFolderPath(productID),
			CreatedAt:   time.Now(),
		}
		if err := r.Products().Create(ctx, p); err != nil {
			log.Errorf("add to cart: product create failed: order=%s product=%s: %v", order.ID, productID, err)
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = AddToCartOutput{OrderID: order.ID, ProductID: productID}
		return nil
	})

	if err != nil {
		return AddToCartOutput{}, err
	}
	return out, nil
}

// GetCart はオープンカートの中身を返す。無ければ空のまま返す。
func (u *CartUsecase) GetCart(ctx context.Context, email string) (CartOutput, error) {
	if email == "" {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	out := CartOutput{Products: []CartProductOutput{}}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindOpenByEmail(ctx, email)
		if err == repo.ErrNotFound {
			return nil
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		products, err := r.Products().ListByOrderID(ctx, order.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		events, err := r.Statuses().ListByOrderID(ctx, order.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out.OrderID = order.ID
		out.Status = model.CompositeStatus(order, events)
		for _, p := range products {
			out.Products = append(out.Products, CartProductOutput{
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
			out.Total += p.LineTotal()
		}
		return nil
	})

	if err != nil {
		return CartOutput{}, err
	}
	return out, nil
}

// 注文＋3件のステータスプレースホルダを同一トランザクションで作る。
func createOpenCart(ctx context.Context, r repo.TxRepos, email string) (model.Order, error) {
	orderID, err := r.Sequences().Next(ctx, repo.SeqOrder)
	if err != nil {
		return model.Order{}, err
	}

	order := model.Order{
		ID:            orderID,
		CustomerEmail: email,
		PaymentStatus: model.PaymentStatusNotApproved,
		ReceivedAt:    time.Now(),
	}
	if err := r.Orders().Create(ctx, order); err != nil {
		//同時作成に負けた場合はロックを取り直して既存を使う
		existing, rerr := r.Orders().FindOpenByEmailForUpdate(ctx, email)
		if rerr == nil {
			return existing, nil
		}
		return model.Order{}, err
	}

	//ReceiveOrder → OrderCompleted → Shipped の固定順で未完了を3件
	names := []model.StatusName{
		model.StatusReceiveOrder,
		model.StatusOrderCompleted,
		model.StatusShipped,
	}
	events := make([]model.StatusEvent, 0, len(names))
	for _, name := range names {
		statusID, err := r.Sequences().Next(ctx, repo.SeqStatus)
		if err != nil {
			return model.Order{}, err
		}
		events = append(events, model.StatusEvent{
			ID:      statusID,
			OrderID: orderID,
			Name:    name,
		})
	}
	if err := r.Statuses().CreateBulk(ctx, events); err != nil {
		return model.Order{}, err
	}

	return order, nil
}
