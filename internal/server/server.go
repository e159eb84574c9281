package server

import (
	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
)

// Handlers はルート登録に必要なhandler一式。
type Handlers struct {
	Auth         *handler.AuthHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	Upload       *handler.UploadHandler
	Bundle       *handler.BundleHandler
	Notification *handler.NotificationHandler
	AdminOrder   *handler.AdminOrderHandler
}

func Start(addr string, cfg config.Config, h Handlers) error {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()

	h.Auth.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e, cfg)
	h.Order.RegisterRoutes(e, cfg)
	h.Upload.RegisterRoutes(e, cfg)
	h.Bundle.RegisterRoutes(e, cfg)
	h.Notification.RegisterRoutes(e, cfg)
	h.AdminOrder.RegisterRoutes(e, cfg)

	return e.Start(addr)
}
