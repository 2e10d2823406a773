// Package dto - DTO cho domain hồ sơ khách.
package dto

import "consult_crm/internal/tracker"

// ClientCreateInput dữ liệu tạo khách mới
type ClientCreateInput struct {
	MouNumber    string `json:"mouNumber" validate:"required,not_blank,max=64,no_xss"`
	CustomerName string `json:"customerName" validate:"required,not_blank,no_xss"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	Phone        string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Country      string `json:"country,omitempty" validate:"omitempty,no_xss"`
	CssValue     string `json:"cssValue,omitempty" validate:"omitempty,not_blank"` // Bỏ trống = người tạo
	Status       string `json:"status,omitempty" validate:"omitempty,no_xss,crm_client_status"`
	Flag         string `json:"flag,omitempty" validate:"omitempty,crm_flag"`
}

// ClientPatchInput dữ liệu cập nhật một phần.
// Version là token optimistic concurrency; bỏ trống thì ghi đè (last write wins).
type ClientPatchInput struct {
	Status  *string `json:"status,omitempty" validate:"omitempty,not_blank,no_xss,crm_client_status"`
	Stage   *string `json:"stage,omitempty" validate:"omitempty,no_xss"`
	Flag    *string `json:"flag,omitempty" validate:"omitempty,crm_flag"`
	Pinned  *bool   `json:"pinned,omitempty"`
	Medium  *string `json:"medium,omitempty" validate:"omitempty,no_xss"`
	Version *int64  `json:"version,omitempty" validate:"omitempty,min=0"`
}

// IsEmpty cho biết patch không có field nào
func (p *ClientPatchInput) IsEmpty() bool {
	return p.Status == nil && p.Stage == nil && p.Flag == nil && p.Pinned == nil && p.Medium == nil
}

// ClientListFilter bộ lọc danh sách khách của một CSS user
type ClientListFilter struct {
	CssValue string
	Flag     string
	Status   string
	Pinned   *bool
}

// ReassignInput đổi CSS owner
type ReassignInput struct {
	To string `json:"to" validate:"required,not_blank"`
}

// CommentInput thêm comment
type CommentInput struct {
	Text string `json:"text" validate:"required,not_blank,max=4000,no_xss"`
}

// CommitmentInput thêm commitment; Deadline là Unix milli
type CommitmentInput struct {
	Text     string `json:"text" validate:"required,not_blank,max=1000,no_xss"`
	Deadline int64  `json:"deadline" validate:"required,gt=0"`
}

// HighlightInput thêm critical highlight; Expiry là Unix milli
type HighlightInput struct {
	Category string `json:"category" validate:"required,not_blank,max=200,no_xss"`
	Expiry   int64  `json:"expiry" validate:"required,gt=0"`
}

// CommitmentStatusInput đổi trạng thái commitment
type CommitmentStatusInput struct {
	Status string `json:"status" validate:"required,crm_item_status,oneof='done' 'not done'"`
}

// HighlightStatusInput đổi trạng thái critical highlight
type HighlightStatusInput struct {
	Status string `json:"status" validate:"required,crm_item_status,oneof='catered' 'not catered'"`
}

// ChecklistInput đặt một mục checklist
type ChecklistInput struct {
	Name    string `json:"name" validate:"required,not_blank,max=200,no_xss"`
	Checked bool   `json:"checked"`
}

// EndorsementInput nộp hồ sơ endorsement
type EndorsementInput struct {
	Body      string `json:"body" validate:"required,not_blank,no_xss"`
	Reference string `json:"reference,omitempty" validate:"omitempty,no_xss"`
}

// DeadlineSummary là kết quả quét deadline của một hoặc nhiều khách
type DeadlineSummary struct {
	Remaining int               `json:"remaining"`
	Items     []tracker.Tracked `json:"items"`
}
