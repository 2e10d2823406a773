// Package router đăng ký các route thuộc domain hồ sơ khách: clients, deadlines.
package router

import (
	"fmt"

	clienthdl "consult_crm/internal/api/client/handler"
	clientsvc "consult_crm/internal/api/client/service"
	"consult_crm/internal/api/middleware"
	apirouter "consult_crm/internal/api/router"
	verisvc "consult_crm/internal/api/verification/service"
	"consult_crm/internal/global"

	"github.com/gofiber/fiber/v3"
)

// Register đăng ký tất cả route hồ sơ khách lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	verificationSvc, err := verisvc.NewVerificationService()
	if err != nil {
		return fmt.Errorf("tạo VerificationService: %w", err)
	}
	clientSvc, err := clientsvc.NewClientService(verificationSvc)
	if err != nil {
		return fmt.Errorf("tạo ClientService: %w", err)
	}
	h, err := clienthdl.NewClientHandler(clientSvc)
	if err != nil {
		return fmt.Errorf("tạo ClientHandler: %w", err)
	}

	cfg := global.MongoDB_ServerConfig
	auth := middleware.AuthMiddleware(cfg.JwtSecret, cfg.AdminRoleName)
	authOnly := []fiber.Handler{auth}
	adminOnly := []fiber.Handler{auth, middleware.AdminOnly()}

	// Hồ sơ khách
	r.RegisterRouteWithMiddleware(v1, "/clients", "POST", "/", authOnly, h.HandleCreate)
	r.RegisterRouteWithMiddleware(v1, "/clients", "GET", "/", authOnly, h.HandleList)
	r.RegisterRouteWithMiddleware(v1, "/clients", "GET", "/:mou", authOnly, h.HandleGetByMou)
	r.RegisterRouteWithMiddleware(v1, "/clients", "PATCH", "/:mou", authOnly, h.HandlePatch)

	// Comment, commitment, highlight, checklist, endorsement
	r.RegisterRouteWithMiddleware(v1, "/clients", "POST", "/:mou/comments", authOnly, h.HandleAddComment)
	r.RegisterRouteWithMiddleware(v1, "/clients", "POST", "/:mou/commitments", authOnly, h.HandleAddCommitment)
	r.RegisterRouteWithMiddleware(v1, "/clients", "PATCH", "/:mou/commitments/:id", authOnly, h.HandleSetCommitmentStatus)
	r.RegisterRouteWithMiddleware(v1, "/clients", "POST", "/:mou/highlights", authOnly, h.HandleAddHighlight)
	r.RegisterRouteWithMiddleware(v1, "/clients", "PATCH", "/:mou/highlights/:id", authOnly, h.HandleSetHighlightStatus)
	r.RegisterRouteWithMiddleware(v1, "/clients", "PUT", "/:mou/checklist", authOnly, h.HandleSetChecklist)
	r.RegisterRouteWithMiddleware(v1, "/clients", "POST", "/:mou/endorsements", authOnly, h.HandleAddEndorsement)

	// Deadline
	r.RegisterRouteWithMiddleware(v1, "/clients", "GET", "/:mou/deadlines", authOnly, h.HandleClientDeadlines)
	r.RegisterRouteWithMiddleware(v1, "/deadlines", "GET", "/", authOnly, h.HandleOwnerDeadlines)

	// Chỉ admin
	r.RegisterRouteWithMiddleware(v1, "/admin/clients", "POST", "/:mou/reassign", adminOnly, h.HandleReassign)
	r.RegisterRouteWithMiddleware(v1, "/admin/clients", "POST", "/:mou/commitments/:id/check", adminOnly, h.HandleAdminCheckCommitment)
	r.RegisterRouteWithMiddleware(v1, "/admin/clients", "POST", "/:mou/highlights/:id/check", adminOnly, h.HandleAdminCheckHighlight)

	return nil
}
