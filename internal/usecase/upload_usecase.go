package usecase

import (
	"context"
	"io"
	"net/http"
	"path"
	"strings"

	repo "app/internal/repository"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

// UploadUsecase は印刷ジョブのフォルダへのファイル投入と
// 振込控えの保存を担当する。
type UploadUsecase struct {
	orders   repo.OrderRepository
	products repo.ProductRepository
	store    repo.ObjectStore
}

func NewUploadUsecase(orders repo.OrderRepository, products repo.ProductRepository, store repo.ObjectStore) *UploadUsecase {
	return &UploadUsecase{orders: orders, products: products, store: store}
}

// PutProductFile は products/<productID>/<filename> にオブジェクトを置く。
func (u *UploadUsecase) PutProductFile(ctx context.Context, email string, isStaff bool, productID string, filename string, r io.Reader, size int64, contentType string) error {
	if email == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	//パス区切りを含むファイル名は受けない
	base := path.Base(filename)
	if base == "" || base == "." || base == "/" || strings.ContainsAny(filename, `/\`) {
		return NewHTTPError(http.StatusBadRequest, "invalid filename")
	}

	p, err := u.products.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	o, err := u.orders.FindByID(ctx, p.OrderID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !isStaff && o.CustomerEmail != email {
		return NewHTTPError(http.StatusForbidden, "forbidden")
	}

	key := p.FolderPath + base
	if err := u.store.Put(ctx, key, r, size, contentType); err != nil {
		log.Errorf("upload: put failed: key=%s: %v", key, err)
		return NewHTTPError(http.StatusInternalServerError, "storage error")
	}
	return nil
}

// PutReceipt は振込控えを receipts/ 配下に保存してキーを返す。
// ファイル名の衝突を避けるためキーはUUIDで振る。
func (u *UploadUsecase) PutReceipt(ctx context.Context, email string, filename string, r io.Reader, size int64, contentType string) (string, error) {
	if email == "" {
		return "", NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	key := "receipts/" + uuid.NewString() + strings.ToLower(path.Ext(filename))
	if err := u.store.Put(ctx, key, r, size, contentType); err != nil {
		log.Errorf("upload: receipt put failed: key=%s: %v", key, err)
		return "", NewHTTPError(http.StatusInternalServerError, "storage error")
	}
	return key, nil
}
