// Package batchhdl - Handler sinh và đọc batch xoay vòng.
package batchhdl

import (
	"fmt"
	"strconv"

	batchdto "consult_crm/internal/api/batch/dto"
	batchmodels "consult_crm/internal/api/batch/models"
	batchsvc "consult_crm/internal/api/batch/service"
	basehdl "consult_crm/internal/api/base/handler"
	basesvc "consult_crm/internal/api/base/service"
	"consult_crm/internal/common"

	"github.com/gofiber/fiber/v3"
)

// BatchHandler xử lý các request batch
type BatchHandler struct {
	BatchService *batchsvc.BatchService
}

// NewBatchHandler tạo BatchHandler mới
func NewBatchHandler(svc *batchsvc.BatchService) (*BatchHandler, error) {
	if svc == nil {
		return nil, fmt.Errorf("batch service is nil")
	}
	return &BatchHandler{BatchService: svc}, nil
}

// kindQuery đọc ?kind=, mặc định routine
func kindQuery(c fiber.Ctx) string {
	return c.Query("kind", batchmodels.KindRoutine)
}

// HandleGenerate xử lý POST /batches/:css/generate?kind=
func (h *BatchHandler) HandleGenerate(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		result, err := h.BatchService.GenerateBatch(c.Context(), c.Params("css"), kindQuery(c), basehdl.CurrentActor(c))
		if err == nil && result.Empty {
			return basehdl.HandleResponse(c, result, nil)
		}
		return basehdl.HandleResponseStatus(c, common.StatusCreated, result, err)
	})
}

// HandleHistory xử lý GET /batches/:css?kind=&limit=
func (h *BatchHandler) HandleHistory(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		limit := 0
		if s := c.Query("limit"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return basehdl.HandleResponse(c, nil, common.WithDetails(common.ErrInvalidFormat, "limit phải là số nguyên"))
			}
			limit = v
		}
		batches, err := h.BatchService.History(c.Context(), c.Params("css"), kindQuery(c), limit, basehdl.CurrentActor(c))
		if batches == nil && err == nil {
			batches = []batchmodels.Batch{}
		}
		return basehdl.HandleResponse(c, batches, err)
	})
}

// HandleStats xử lý GET /batches/:css/stats?kind=
func (h *BatchHandler) HandleStats(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		stats, err := h.BatchService.Stats(c.Context(), c.Params("css"), kindQuery(c), basehdl.CurrentActor(c))
		return basehdl.HandleResponse(c, stats, err)
	})
}

// HandleRecordMedium xử lý PATCH /batches/:id/entries/:clientId
func (h *BatchHandler) HandleRecordMedium(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		batchID, err := basesvc.ParseObjectID(c.Params("id"))
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		clientID, err := basesvc.ParseObjectID(c.Params("clientId"))
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		var input batchdto.EntryMediumInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		batch, err := h.BatchService.RecordEntryMedium(c.Context(), batchID, clientID, input.Medium, basehdl.CurrentActor(c))
		return basehdl.HandleResponse(c, batch, err)
	})
}
