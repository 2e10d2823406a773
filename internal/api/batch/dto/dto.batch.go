package dto

import (
	batchmodels "consult_crm/internal/api/batch/models"
	"consult_crm/internal/rotation"
)

// BatchResult là kết quả sinh batch. Empty = true khi owner chưa có khách, Batch khi đó là nil.
type BatchResult struct {
	Batch       *batchmodels.Batch `json:"batch"`
	Stats       rotation.Stats     `json:"stats"`
	Empty       bool               `json:"empty"`
	ListChanged bool               `json:"listChanged"`
}

// EntryMediumInput ghi kênh liên hệ cho một khách trong batch
type EntryMediumInput struct {
	Medium string `json:"medium" validate:"required,not_blank,no_xss,max=50"`
}
