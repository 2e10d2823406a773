// Package router đăng ký route đọc audit xác minh.
package router

import (
	"fmt"

	clientsvc "consult_crm/internal/api/client/service"
	"consult_crm/internal/api/middleware"
	apirouter "consult_crm/internal/api/router"
	verihdl "consult_crm/internal/api/verification/handler"
	verisvc "consult_crm/internal/api/verification/service"
	"consult_crm/internal/global"

	"github.com/gofiber/fiber/v3"
)

// Register đăng ký GET /clients/:mou/verifications.
// Dùng chung prefix /clients nên middleware phải giống router client.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	verificationSvc, err := verisvc.NewVerificationService()
	if err != nil {
		return fmt.Errorf("tạo VerificationService: %w", err)
	}
	clientSvc, err := clientsvc.NewClientService(verificationSvc)
	if err != nil {
		return fmt.Errorf("tạo ClientService: %w", err)
	}
	h, err := verihdl.NewVerificationHandler(clientSvc, verificationSvc)
	if err != nil {
		return fmt.Errorf("tạo VerificationHandler: %w", err)
	}

	cfg := global.MongoDB_ServerConfig
	authOnly := []fiber.Handler{middleware.AuthMiddleware(cfg.JwtSecret, cfg.AdminRoleName)}
	r.RegisterRouteWithMiddleware(v1, "/clients", "GET", "/:mou/verifications", authOnly, h.HandleListByClient)
	return nil
}
