// Package router đăng ký route stream thông báo.
package router

import (
	"fmt"

	"consult_crm/internal/api/middleware"
	notificationhdl "consult_crm/internal/api/notification/handler"
	apirouter "consult_crm/internal/api/router"
	"consult_crm/internal/global"
	"consult_crm/internal/notification"

	"github.com/gofiber/fiber/v3"
)

// Register đăng ký /notifications/stream. Dispatcher dùng chung phải được đặt trước.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	d := notification.Default()
	if d == nil {
		return fmt.Errorf("notification dispatcher chưa được khởi tạo")
	}
	h, err := notificationhdl.NewNotificationHandler(d.Hub())
	if err != nil {
		return fmt.Errorf("tạo NotificationHandler: %w", err)
	}

	cfg := global.MongoDB_ServerConfig
	auth := middleware.AuthMiddleware(cfg.JwtSecret, cfg.AdminRoleName)

	r.RegisterRouteWithMiddleware(v1, "/notifications", "GET", "/stream", []fiber.Handler{auth}, h.HandleStream)
	r.RegisterRouteWithMiddleware(v1, "/admin/notifications", "GET", "/sessions", []fiber.Handler{auth, middleware.AdminOnly()}, h.HandleSessions)
	return nil
}
