// Package models - Verification thuộc domain xác minh commitment / critical highlight (crm_verifications).
// Mỗi lần đổi trạng thái hoặc admin check là một dòng mới, không cập nhật tại chỗ.
package models

import (
	"consult_crm/internal/common"
	"consult_crm/internal/tracker"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các hành động được ghi
const (
	ActionStatus     = "status"     // Owner đổi trạng thái
	ActionAdminCheck = "adminCheck" // Admin xác minh
)

// Verification là một dòng audit (crm_verifications)
type Verification struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	ClientID            primitive.ObjectID  `json:"clientId" bson:"clientId" index:"single:1,compound:crm_verification_client_time"`
	CommitmentID        *primitive.ObjectID `json:"commitmentId,omitempty" bson:"commitmentId,omitempty" index:"single:1,sparse"`
	CriticalHighlightID *primitive.ObjectID `json:"criticalHighlightId,omitempty" bson:"criticalHighlightId,omitempty" index:"single:1,sparse"`
	Status              string              `json:"status" bson:"status"`
	Action              string              `json:"action" bson:"action"`
	VerifiedBy          string              `json:"verifiedBy" bson:"verifiedBy"`
	UpdateTimestamp     int64               `json:"updateTimestamp" bson:"updateTimestamp" index:"compound:crm_verification_client_time"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
}

// Validate kiểm tra đúng một trong commitmentId / criticalHighlightId và status khớp loại mục
func (v *Verification) Validate() error {
	if v.ClientID.IsZero() {
		return common.WithDetails(common.ErrRequiredField, "clientId")
	}
	hasCommitment := v.CommitmentID != nil && !v.CommitmentID.IsZero()
	hasHighlight := v.CriticalHighlightID != nil && !v.CriticalHighlightID.IsZero()
	if hasCommitment == hasHighlight {
		return common.WithDetails(common.ErrInvalidInput, "cần đúng một trong commitmentId hoặc criticalHighlightId")
	}

	switch {
	case hasCommitment && (v.Status == tracker.StatusDone || v.Status == tracker.StatusNotDone):
	case hasHighlight && (v.Status == tracker.StatusCatered || v.Status == tracker.StatusNotCatered):
	default:
		return common.WithDetails(common.ErrInvalidInput, "status không khớp loại mục: "+v.Status)
	}

	if v.Action != ActionStatus && v.Action != ActionAdminCheck {
		return common.WithDetails(common.ErrInvalidInput, "action không hợp lệ: "+v.Action)
	}
	return nil
}
