package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// multipartでのファイル投入（印刷用データと振込控え）
type UploadHandler struct {
	uploadUC *usecase.UploadUsecase
	orderUC  *usecase.OrderUsecase
}

func NewUploadHandler(uploadUC *usecase.UploadUsecase, orderUC *usecase.OrderUsecase) *UploadHandler {
	return &UploadHandler{uploadUC: uploadUC, orderUC: orderUC}
}

// 1リクエストあたりの上限（32MB）
const maxUploadBytes = 32 << 20

func (h *UploadHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("/:id/products/:pid/files", h.putProductFile)
	g.POST("/:id/receipt", h.putReceipt)
}

func (h *UploadHandler) putProductFile(c echo.Context) error {
	email, ok := getEmailFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file is required"})
	}
	if fh.Size > maxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "file too large"})
	}

	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid file"})
	}
	defer src.Close()

	err = h.uploadUC.PutProductFile(
		c.Request().Context(),
		email,
		isStaffFromContext(c),
		c.Param("pid"),
		fh.Filename,
		src,
		fh.Size,
		fh.Header.Get("Content-Type"),
	)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "uploaded"})
}

// 振込控えを保存して支払いをPENDINGにする
func (h *UploadHandler) putReceipt(c echo.Context) error {
	email, ok := getEmailFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file is required"})
	}
	if fh.Size > maxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "file too large"})
	}

	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid file"})
	}
	defer src.Close()

	key, err := h.uploadUC.PutReceipt(
		c.Request().Context(),
		email,
		fh.Filename,
		src,
		fh.Size,
		fh.Header.Get("Content-Type"),
	)
	if err != nil {
		return writeError(c, err)
	}

	if err := h.orderUC.MarkPaymentPending(c.Request().Context(), email, c.Param("id"), key); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "receipt submitted"})
}
