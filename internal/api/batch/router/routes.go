// Package router đăng ký route batch xoay vòng.
package router

import (
	"fmt"

	batchhdl "consult_crm/internal/api/batch/handler"
	batchsvc "consult_crm/internal/api/batch/service"
	clientsvc "consult_crm/internal/api/client/service"
	"consult_crm/internal/api/middleware"
	apirouter "consult_crm/internal/api/router"
	verisvc "consult_crm/internal/api/verification/service"
	"consult_crm/internal/global"

	"github.com/gofiber/fiber/v3"
)

// Register đăng ký các route /batches
func Register(v1 fiber.Router, r *apirouter.Router) error {
	verificationSvc, err := verisvc.NewVerificationService()
	if err != nil {
		return fmt.Errorf("tạo VerificationService: %w", err)
	}
	clientSvc, err := clientsvc.NewClientService(verificationSvc)
	if err != nil {
		return fmt.Errorf("tạo ClientService: %w", err)
	}
	batchSvc, err := batchsvc.NewBatchService(clientSvc)
	if err != nil {
		return fmt.Errorf("tạo BatchService: %w", err)
	}
	h, err := batchhdl.NewBatchHandler(batchSvc)
	if err != nil {
		return fmt.Errorf("tạo BatchHandler: %w", err)
	}

	cfg := global.MongoDB_ServerConfig
	authOnly := []fiber.Handler{middleware.AuthMiddleware(cfg.JwtSecret, cfg.AdminRoleName)}

	r.RegisterRouteWithMiddleware(v1, "/batches", "POST", "/:css/generate", authOnly, h.HandleGenerate)
	r.RegisterRouteWithMiddleware(v1, "/batches", "GET", "/:css", authOnly, h.HandleHistory)
	r.RegisterRouteWithMiddleware(v1, "/batches", "GET", "/:css/stats", authOnly, h.HandleStats)
	r.RegisterRouteWithMiddleware(v1, "/batches", "PATCH", "/:id/entries/:clientId", authOnly, h.HandleRecordMedium)
	return nil
}
