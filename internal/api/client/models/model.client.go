// Package models - Client thuộc domain hồ sơ khách (crm_clients).
package models

import (
	"consult_crm/internal/tracker"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các màu cờ ưu tiên
const (
	FlagRed    = "red"    // Khách critical
	FlagYellow = "yellow" // Không critical
	FlagGreen  = "green"  // Đã endorse
)

// Client lưu hồ sơ khách hàng (crm_clients). MOU number là khóa nghiệp vụ duy nhất.
type Client struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	MouNumber    string `json:"mouNumber" bson:"mouNumber" index:"unique"`
	CustomerName string `json:"customerName" bson:"customerName"`
	Email        string `json:"email,omitempty" bson:"email,omitempty"`
	Phone        string `json:"phone,omitempty" bson:"phone,omitempty"`
	Country      string `json:"country,omitempty" bson:"country,omitempty"`
	CssValue     string `json:"cssValue" bson:"cssValue" index:"single:1,compound:crm_client_css_created,compound:crm_client_css_flag"`
	Status       string `json:"status" bson:"status"`
	Stage        string `json:"stage,omitempty" bson:"stage,omitempty"`
	Flag         string `json:"flag" bson:"flag" index:"compound:crm_client_css_flag"`
	Pinned       bool   `json:"pinned" bson:"pinned"`
	Medium       string `json:"medium,omitempty" bson:"medium,omitempty"` // Kênh liên hệ gần nhất

	Comments               []Comment               `json:"comments" bson:"comments"`
	Commitments            []Commitment            `json:"commitments" bson:"commitments"`
	CriticalHighlights     []CriticalHighlight     `json:"criticalHighlights" bson:"criticalHighlights"`
	Checklist              []ChecklistItem         `json:"checklist" bson:"checklist"`
	EndorsementSubmissions []EndorsementSubmission `json:"endorsementSubmissions" bson:"endorsementSubmissions"`
	CssHistory             []CssChange             `json:"cssHistory" bson:"cssHistory"`
	StageHistory           []StageChange           `json:"stageHistory" bson:"stageHistory"`

	Version   int64 `json:"version" bson:"version"` // Tăng sau mỗi lần ghi, dùng cho optimistic concurrency
	CreatedAt int64 `json:"createdAt" bson:"createdAt" index:"single:1,compound:crm_client_css_created"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// Comment là ghi chú tự do của CSS user hoặc admin
type Comment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	Author    string             `json:"author" bson:"author"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt int64              `json:"createdAt" bson:"createdAt"`
}

// Commitment là việc đã hứa với khách, có deadline
type Commitment struct {
	ID             primitive.ObjectID `json:"id" bson:"_id"`
	Text           string             `json:"text" bson:"text"`
	Deadline       int64              `json:"deadline" bson:"deadline"`
	Status         string             `json:"status" bson:"status"` // done | not done
	CreatedBy      string             `json:"createdBy" bson:"createdBy"`
	CreatedAt      int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt      int64              `json:"updatedAt" bson:"updatedAt"`
	AdminChecked   bool               `json:"adminChecked" bson:"adminChecked"`
	AdminCheckedBy string             `json:"adminCheckedBy,omitempty" bson:"adminCheckedBy,omitempty"`
	AdminCheckedAt int64              `json:"adminCheckedAt,omitempty" bson:"adminCheckedAt,omitempty"`
}

// CriticalHighlight là mốc thời gian quan trọng của khách (ví dụ hạn hộ chiếu)
type CriticalHighlight struct {
	ID             primitive.ObjectID `json:"id" bson:"_id"`
	Category       string             `json:"category" bson:"category"`
	Expiry         int64              `json:"expiry" bson:"expiry"`
	Status         string             `json:"status" bson:"status"` // catered | not catered
	CreatedBy      string             `json:"createdBy" bson:"createdBy"`
	CreatedAt      int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt      int64              `json:"updatedAt" bson:"updatedAt"`
	AdminChecked   bool               `json:"adminChecked" bson:"adminChecked"`
	AdminCheckedBy string             `json:"adminCheckedBy,omitempty" bson:"adminCheckedBy,omitempty"`
	AdminCheckedAt int64              `json:"adminCheckedAt,omitempty" bson:"adminCheckedAt,omitempty"`
}

// ChecklistItem là một mục checklist có tên
type ChecklistItem struct {
	Name      string `json:"name" bson:"name"`
	Checked   bool   `json:"checked" bson:"checked"`
	UpdatedBy string `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
	UpdatedAt int64  `json:"updatedAt" bson:"updatedAt"`
}

// EndorsementSubmission là một lần nộp hồ sơ endorsement
type EndorsementSubmission struct {
	Body        string `json:"body" bson:"body"`
	Reference   string `json:"reference,omitempty" bson:"reference,omitempty"`
	SubmittedBy string `json:"submittedBy" bson:"submittedBy"`
	SubmittedAt int64  `json:"submittedAt" bson:"submittedAt"`
}

// CssChange ghi lại một lần đổi CSS owner
type CssChange struct {
	From      string `json:"from" bson:"from"`
	To        string `json:"to" bson:"to"`
	ChangedBy string `json:"changedBy" bson:"changedBy"`
	ChangedAt int64  `json:"changedAt" bson:"changedAt"`
}

// StageChange ghi lại một lần đổi status/stage
type StageChange struct {
	Field     string `json:"field" bson:"field"` // status | stage
	From      string `json:"from" bson:"from"`
	To        string `json:"to" bson:"to"`
	ChangedBy string `json:"changedBy" bson:"changedBy"`
	ChangedAt int64  `json:"changedAt" bson:"changedAt"`
}

// FindCommitment trả về commitment theo id
func (c *Client) FindCommitment(id primitive.ObjectID) (*Commitment, bool) {
	for i := range c.Commitments {
		if c.Commitments[i].ID == id {
			return &c.Commitments[i], true
		}
	}
	return nil, false
}

// FindHighlight trả về critical highlight theo id
func (c *Client) FindHighlight(id primitive.ObjectID) (*CriticalHighlight, bool) {
	for i := range c.CriticalHighlights {
		if c.CriticalHighlights[i].ID == id {
			return &c.CriticalHighlights[i], true
		}
	}
	return nil, false
}

// TrackerItems chuyển commitment và highlight thành mục theo dõi deadline
func (c *Client) TrackerItems() []tracker.Item {
	items := make([]tracker.Item, 0, len(c.Commitments)+len(c.CriticalHighlights))
	base := tracker.Item{
		ClientID:     c.ID.Hex(),
		MouNumber:    c.MouNumber,
		CustomerName: c.CustomerName,
		CssValue:     c.CssValue,
	}
	for _, cm := range c.Commitments {
		it := base
		it.Kind = tracker.KindCommitment
		it.ItemID = cm.ID.Hex()
		it.Name = cm.Text
		it.Deadline = unixMilli(cm.Deadline)
		it.Status = cm.Status
		items = append(items, it)
	}
	for _, h := range c.CriticalHighlights {
		it := base
		it.Kind = tracker.KindCriticalHighlight
		it.ItemID = h.ID.Hex()
		it.Name = h.Category
		it.Deadline = unixMilli(h.Expiry)
		it.Status = h.Status
		items = append(items, it)
	}
	return items
}
