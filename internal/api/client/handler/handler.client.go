// Package clienthdl - Handler hồ sơ khách.
package clienthdl

import (
	"fmt"
	"strconv"

	basehdl "consult_crm/internal/api/base/handler"
	clientdto "consult_crm/internal/api/client/dto"
	clientsvc "consult_crm/internal/api/client/service"
	"consult_crm/internal/common"

	"github.com/gofiber/fiber/v3"
)

// ClientHandler xử lý các request hồ sơ khách
type ClientHandler struct {
	ClientService *clientsvc.ClientService
}

// NewClientHandler tạo ClientHandler mới
func NewClientHandler(svc *clientsvc.ClientService) (*ClientHandler, error) {
	if svc == nil {
		return nil, fmt.Errorf("client service is nil")
	}
	return &ClientHandler{ClientService: svc}, nil
}

// HandleCreate xử lý POST /clients
func (h *ClientHandler) HandleCreate(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input clientdto.ClientCreateInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		client, err := h.ClientService.Create(c.Context(), &input, basehdl.CurrentActor(c))
		return basehdl.HandleResponseStatus(c, common.StatusCreated, client, err)
	})
}

// HandleGetByMou xử lý GET /clients/:mou
func (h *ClientHandler) HandleGetByMou(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		client, err := h.ClientService.FindByMou(c.Context(), c.Params("mou"), basehdl.CurrentActor(c))
		return basehdl.HandleResponse(c, client, err)
	})
}

// HandleList xử lý GET /clients?css=&flag=&status=&pinned=
func (h *ClientHandler) HandleList(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		filter := clientdto.ClientListFilter{
			CssValue: c.Query("css"),
			Flag:     c.Query("flag"),
			Status:   c.Query("status"),
		}
		if s := c.Query("pinned"); s != "" {
			v, err := strconv.ParseBool(s)
			if err != nil {
				return basehdl.HandleResponse(c, nil, common.WithDetails(common.ErrInvalidFormat, "pinned phải là true/false"))
			}
			filter.Pinned = &v
		}
		clients, err := h.ClientService.FindByOwner(c.Context(), filter, basehdl.CurrentActor(c))
		return basehdl.HandleResponse(c, clients, err)
	})
}

// HandlePatch xử lý PATCH /clients/:mou
func (h *ClientHandler) HandlePatch(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input clientdto.ClientPatchInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		client, err := h.ClientService.PatchFields(c.Context(), c.Params("mou"), &input, basehdl.CurrentActor(c))
		return basehdl.HandleResponse(c, client, err)
	})
}

// HandleReassign xử lý POST /admin/clients/:mou/reassign
func (h *ClientHandler) HandleReassign(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input clientdto.ReassignInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		client, err := h.ClientService.ReassignCss(c.Context(), c.Params("mou"), input.To, basehdl.CurrentActor(c))
		return basehdl.HandleResponse(c, client, err)
	})
}

// HandleAddComment xử lý POST /clients/:mou/comments
func (h *ClientHandler) HandleAddComment(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input clientdto.CommentInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		comment, err := h.ClientService.AddComment(c.Context(), c.Params("mou"), input.Text, basehdl.CurrentActor(c))
		return basehdl.HandleResponseStatus(c, common.StatusCreated, comment, err)
	})
}

// HandleAddCommitment xử lý POST /clients/:mou/commitments
func (h *ClientHandler) HandleAddCommitment(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input clientdto.CommitmentInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		cm, err := h.ClientService.AddCommitment(c.Context(), c.Params("mou"), &input, basehdl.CurrentActor(c))
		return basehdl.HandleResponseStatus(c, common.StatusCreated, cm, err)
	})
}

// HandleAddHighlight xử lý POST /clients/:mou/highlights
func (h *ClientHandler) HandleAddHighlight(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input clientdto.HighlightInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		hl, err := h.ClientService.AddCriticalHighlight(c.Context(), c.Params("mou"), &input, basehdl.CurrentActor(c))
		return basehdl.HandleResponseStatus(c, common.StatusCreated, hl, err)
	})
}

// HandleSetCommitmentStatus xử lý PATCH /clients/:mou/commitments/:id
func (h *ClientHandler) HandleSetCommitmentStatus(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input clientdto.CommitmentStatusInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		cm, err := h.ClientService.SetCommitmentStatus(c.Context(), c.Params("mou"), c.Params("id"), input.Status, basehdl.CurrentActor(c))
		return basehdl.HandleResponse(c, cm, err)
	})
}

// HandleSetHighlightStatus xử lý PATCH /clients/:mou/highlights/:id
func (h *ClientHandler) HandleSetHighlightStatus(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input clientdto.HighlightStatusInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		hl, err := h.ClientService.SetHighlightStatus(c.Context(), c.Params("mou"), c.Params("id"), input.Status, basehdl.CurrentActor(c))
		return basehdl.HandleResponse(c, hl, err)
	})
}

// HandleAdminCheckCommitment xử lý POST /admin/clients/:mou/commitments/:id/check
func (h *ClientHandler) HandleAdminCheckCommitment(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		cm, err := h.ClientService.AdminCheckCommitment(c.Context(), c.Params("mou"), c.Params("id"), basehdl.CurrentActor(c))
		return basehdl.HandleResponse(c, cm, err)
	})
}

// HandleAdminCheckHighlight xử lý POST /admin/clients/:mou/highlights/:id/check
func (h *ClientHandler) HandleAdminCheckHighlight(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		hl, err := h.ClientService.AdminCheckHighlight(c.Context(), c.Params("mou"), c.Params("id"), basehdl.CurrentActor(c))
		return basehdl.HandleResponse(c, hl, err)
	})
}

// HandleSetChecklist xử lý PUT /clients/:mou/checklist
func (h *ClientHandler) HandleSetChecklist(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input clientdto.ChecklistInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		client, err := h.ClientService.SetChecklistItem(c.Context(), c.Params("mou"), &input, basehdl.CurrentActor(c))
		return basehdl.HandleResponse(c, client, err)
	})
}

// HandleAddEndorsement xử lý POST /clients/:mou/endorsements
func (h *ClientHandler) HandleAddEndorsement(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input clientdto.EndorsementInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		client, err := h.ClientService.AddEndorsementSubmission(c.Context(), c.Params("mou"), &input, basehdl.CurrentActor(c))
		return basehdl.HandleResponseStatus(c, common.StatusCreated, client, err)
	})
}

// HandleClientDeadlines xử lý GET /clients/:mou/deadlines
func (h *ClientHandler) HandleClientDeadlines(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		summary, err := h.ClientService.Deadlines(c.Context(), c.Params("mou"), basehdl.CurrentActor(c))
		return basehdl.HandleResponse(c, summary, err)
	})
}

// HandleOwnerDeadlines xử lý GET /deadlines?css=
func (h *ClientHandler) HandleOwnerDeadlines(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		// Admin bỏ trống css = mọi khách; user thường luôn bị giới hạn về chính mình
		summary, err := h.ClientService.OwnerDeadlines(c.Context(), c.Query("css"), basehdl.CurrentActor(c))
		return basehdl.HandleResponse(c, summary, err)
	})
}
