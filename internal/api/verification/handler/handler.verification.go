// Package verihdl - Handler đọc audit trail xác minh.
package verihdl

import (
	"context"
	"fmt"
	"strconv"

	basehdl "consult_crm/internal/api/base/handler"
	basesvc "consult_crm/internal/api/base/service"
	clientmodels "consult_crm/internal/api/client/models"
	verimodels "consult_crm/internal/api/verification/models"
	"consult_crm/internal/common"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClientFinder tìm hồ sơ khách theo MOU trong phạm vi quyền của actor
type ClientFinder interface {
	FindByMou(ctx context.Context, mou string, actor basesvc.Actor) (*clientmodels.Client, error)
}

// VerificationLister đọc audit theo khách
type VerificationLister interface {
	ListByClient(ctx context.Context, clientID primitive.ObjectID, limit int) ([]verimodels.Verification, error)
}

// VerificationHandler xử lý request audit xác minh
type VerificationHandler struct {
	Clients       ClientFinder
	Verifications VerificationLister
}

// NewVerificationHandler tạo VerificationHandler mới
func NewVerificationHandler(clients ClientFinder, verifications VerificationLister) (*VerificationHandler, error) {
	if clients == nil || verifications == nil {
		return nil, fmt.Errorf("client finder hoặc verification lister là nil")
	}
	return &VerificationHandler{Clients: clients, Verifications: verifications}, nil
}

// HandleListByClient xử lý GET /clients/:mou/verifications?limit=
func (h *VerificationHandler) HandleListByClient(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		limit := 0
		if s := c.Query("limit"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil || v < 0 {
				return basehdl.HandleResponse(c, nil, common.WithDetails(common.ErrInvalidFormat, "limit phải là số nguyên không âm"))
			}
			limit = v
		}
		client, err := h.Clients.FindByMou(c.Context(), c.Params("mou"), basehdl.CurrentActor(c))
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		rows, err := h.Verifications.ListByClient(c.Context(), client.ID, limit)
		if rows == nil && err == nil {
			rows = []verimodels.Verification{}
		}
		return basehdl.HandleResponse(c, rows, err)
	})
}
