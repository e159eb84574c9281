package handler

import (
	"fmt"
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// アップロード済みファイル一式のzipダウンロード
type BundleHandler struct {
	uc *usecase.BundleUsecase
}

func NewBundleHandler(uc *usecase.BundleUsecase) *BundleHandler {
	return &BundleHandler{uc: uc}
}

func (h *BundleHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/bundles")
	g.Use(middleware.AuthJWT(cfg))

	g.GET("", h.download)
}

func (h *BundleHandler) download(c echo.Context) error {
	email, ok := getEmailFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	folder := c.QueryParam("folder")
	if folder == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "folder is required"})
	}

	//ヘッダを書く前に認可とフォルダの実在だけ先に通す。
	//書き出しが始まってからの失敗は接続ごと落とす（途切れたzipを正常応答にしない）。
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "application/zip")
	res.Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, usecase.BundleFilename(folder)))

	err := h.uc.Download(c.Request().Context(), email, isStaffFromContext(c), folder, &lazyResponseWriter{res: res})
	if err != nil {
		//まだ1バイトも書いていなければ普通のエラー応答にできる
		if !res.Committed {
			res.Header().Del(echo.HeaderContentDisposition)
			return writeError(c, err)
		}
		return err
	}
	return nil
}

// 最初のWriteまでヘッダ確定を遅らせるラッパ。
// 認可エラー等をzipヘッダ付きで返さないために挟む。
type lazyResponseWriter struct {
	res *echo.Response
}

func (w *lazyResponseWriter) Write(p []byte) (int, error) {
	if !w.res.Committed {
		w.res.WriteHeader(http.StatusOK)
	}
	return w.res.Write(p)
}
