// Package models - Batch và BatchState thuộc domain xoay vòng khách (crm_batches, crm_batch_states).
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các loại batch. Mỗi loại có con trỏ riêng cho từng CSS user.
const (
	KindRoutine  = "routine"  // Toàn bộ khách của owner
	KindCritical = "critical" // Chỉ khách cờ đỏ
)

// ValidKind kiểm tra loại batch
func ValidKind(kind string) bool {
	return kind == KindRoutine || kind == KindCritical
}

// BatchState là con trỏ xoay vòng đã lưu của (cssValue, kind)
type BatchState struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	CssValue        string `json:"cssValue" bson:"cssValue" index:"compound:crm_batch_state_owner_kind_unique"`
	Kind            string `json:"kind" bson:"kind" index:"compound:crm_batch_state_owner_kind_unique"`
	LastBatchOffset int    `json:"lastBatchOffset" bson:"lastBatchOffset"` // Offset bắt đầu của batch kế tiếp
	CycleCount      int    `json:"cycleCount" bson:"cycleCount"`
	TotalBatches    int    `json:"totalBatches" bson:"totalBatches"`
	LastListSize    int    `json:"lastListSize" bson:"lastListSize"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// BatchEntry là một khách trong batch
type BatchEntry struct {
	ClientID     primitive.ObjectID `json:"clientId" bson:"clientId"`
	MouNumber    string             `json:"mouNumber" bson:"mouNumber"`
	CustomerName string             `json:"customerName" bson:"customerName"`
	Medium       string             `json:"medium,omitempty" bson:"medium,omitempty"` // Kênh liên hệ đã dùng
	ContactedAt  int64              `json:"contactedAt,omitempty" bson:"contactedAt,omitempty"`
}

// Batch là một lần sinh danh sách khách cần liên hệ
type Batch struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	CssValue    string       `json:"cssValue" bson:"cssValue" index:"compound:crm_batch_owner_kind_time"`
	Kind        string       `json:"kind" bson:"kind" index:"compound:crm_batch_owner_kind_time"`
	Entries     []BatchEntry `json:"entries" bson:"entries"`
	StartOffset int          `json:"startOffset" bson:"startOffset"`
	Cycle       int          `json:"cycle" bson:"cycle"`             // cycleCount sau khi sinh batch
	BatchNumber int          `json:"batchNumber" bson:"batchNumber"` // Thứ tự batch (1-based)
	ListChanged bool         `json:"listChanged" bson:"listChanged"`
	GeneratedAt int64        `json:"generatedAt" bson:"generatedAt" index:"compound:crm_batch_owner_kind_time"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
