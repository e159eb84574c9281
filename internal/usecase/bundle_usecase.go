package usecase

import (
	"context"
	"io"
	"net/http"
	"path"
	"strings"

	repo "app/internal/repository"

	"github.com/klauspost/compress/zip"
	"github.com/labstack/gommon/log"
)

// BundleUsecase はフォルダ配下のアップロード済みファイルを
// 1本のzipストリームに束ねる。全体をメモリに載せない。
type BundleUsecase struct {
	orders   repo.OrderRepository
	products repo.ProductRepository
	store    repo.ObjectStore
}

func NewBundleUsecase(orders repo.OrderRepository, products repo.ProductRepository, store repo.ObjectStore) *BundleUsecase {
	return &BundleUsecase{orders: orders, products: products, store: store}
}

// Content-Disposition用のファイル名（"products/prd00001/" → "prd00001.zip"）
func BundleFilename(folderPath string) string {
	return path.Base(strings.TrimSuffix(folderPath, "/")) + ".zip"
}

// Download はフォルダを所有チェックしてからwへzipを書き出す。
// 途中でオブジェクトの読み出しに失敗したらそこで打ち切り、
// zipのトレーラは書かない（壊れた200を正しい200に見せない）。
func (u *BundleUsecase) Download(ctx context.Context, email string, isStaff bool, folderPath string, w io.Writer) error {
	if email == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	folderPath = strings.TrimSpace(folderPath)
	if folderPath == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid folder")
	}
	if !strings.HasSuffix(folderPath, "/") {
		folderPath += "/"
	}

	//フォルダ→印刷ジョブ→注文とたどって所有者を出す
	p, err := u.products.FindByFolderPath(ctx, folderPath)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		log.Errorf("bundle: product lookup failed: folder=%s: %v", folderPath, err)
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	o, err := u.orders.FindByID(ctx, p.OrderID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		log.Errorf("bundle: order lookup failed: order=%s: %v", p.OrderID, err)
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//スタッフか所有者だけ
	if !isStaff && o.CustomerEmail != email {
		return NewHTTPError(http.StatusForbidden, "forbidden")
	}

	infos, err := u.store.List(ctx, folderPath)
	if err != nil {
		log.Errorf("bundle: object listing failed: folder=%s: %v", folderPath, err)
		return NewHTTPError(http.StatusInternalServerError, "storage error")
	}
	if len(infos) == 0 {
		return NewHTTPError(http.StatusNotFound, "empty folder")
	}

	zw := zip.NewWriter(w)
	for _, info := range infos {
		//クライアント切断で残りの読み出しをやめる
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := u.appendEntry(ctx, zw, folderPath, info.Key); err != nil {
			log.Errorf("bundle: append failed: key=%s: %v", info.Key, err)
			return err
		}
	}

	//全エントリを書き終えてからトレーラ
	return zw.Close()
}

func (u *BundleUsecase) appendEntry(ctx context.Context, zw *zip.Writer, prefix string, key string) error {
	rc, err := u.store.Get(ctx, key)
	if err != nil {
		return err
	}
	defer rc.Close()

	fw, err := zw.Create(strings.TrimPrefix(key, prefix))
	if err != nil {
		return err
	}

	_, err = io.Copy(fw, rc)
	return err
}
