// Package router đăng ký route chấm công.
package router

import (
	"fmt"

	attendancehdl "consult_crm/internal/api/attendance/handler"
	attendancesvc "consult_crm/internal/api/attendance/service"
	"consult_crm/internal/api/middleware"
	apirouter "consult_crm/internal/api/router"
	"consult_crm/internal/global"

	"github.com/gofiber/fiber/v3"
)

// Register đăng ký các route /attendance
func Register(v1 fiber.Router, r *apirouter.Router) error {
	svc, err := attendancesvc.NewAttendanceService()
	if err != nil {
		return fmt.Errorf("tạo AttendanceService: %w", err)
	}
	h, err := attendancehdl.NewAttendanceHandler(svc)
	if err != nil {
		return fmt.Errorf("tạo AttendanceHandler: %w", err)
	}

	cfg := global.MongoDB_ServerConfig
	authOnly := []fiber.Handler{middleware.AuthMiddleware(cfg.JwtSecret, cfg.AdminRoleName)}

	r.RegisterRouteWithMiddleware(v1, "/attendance", "POST", "/check-in", authOnly, h.HandleCheckIn)
	r.RegisterRouteWithMiddleware(v1, "/attendance", "POST", "/check-out", authOnly, h.HandleCheckOut)
	r.RegisterRouteWithMiddleware(v1, "/attendance", "POST", "/breaks/start", authOnly, h.HandleStartBreak)
	r.RegisterRouteWithMiddleware(v1, "/attendance", "POST", "/breaks/end", authOnly, h.HandleEndBreak)
	r.RegisterRouteWithMiddleware(v1, "/attendance", "GET", "/:user", authOnly, h.HandleStats)
	r.RegisterRouteWithMiddleware(v1, "/attendance", "GET", "/:user/breaks", authOnly, h.HandleListBreaks)
	return nil
}
