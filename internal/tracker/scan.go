package tracker

import (
	"sort"
	"time"
)

// ItemKind phân biệt commitment và critical highlight
type ItemKind string

const (
	KindCommitment        ItemKind = "commitment"
	KindCriticalHighlight ItemKind = "criticalHighlight"
)

// Trạng thái hoàn tất của từng loại mục
const (
	StatusDone       = "done"
	StatusNotDone    = "not done"
	StatusCatered    = "catered"
	StatusNotCatered = "not catered"
)

// Item là một commitment hoặc critical highlight cần theo dõi
type Item struct {
	Kind         ItemKind  `json:"kind"`
	ItemID       string    `json:"itemId"`
	ClientID     string    `json:"clientId"`
	MouNumber    string    `json:"mouNumber"`
	CustomerName string    `json:"customerName"`
	CssValue     string    `json:"cssValue"`
	Name         string    `json:"itemName"` // Nội dung commitment hoặc category của highlight
	Deadline     time.Time `json:"deadline"` // Deadline của commitment hoặc expiry của highlight
	Status       string    `json:"status"`
}

// Open cho biết mục chưa hoàn tất
func (i Item) Open() bool {
	if i.Kind == KindCriticalHighlight {
		return i.Status != StatusCatered
	}
	return i.Status != StatusDone
}

// Key là khóa chống trùng phía người nhận (clientId + itemName)
func (i Item) Key() string {
	return i.ClientID + i.Name
}

// Tracked là một mục kèm phân loại deadline
type Tracked struct {
	Item
	Classification
}

// ScanClient phân loại mọi commitment và highlight đang mở của một khách.
// Kết quả sắp xếp theo deadline tăng dần.
func ScanClient(items []Item, now time.Time, threshold time.Duration) []Tracked {
	out := make([]Tracked, 0, len(items))
	for _, it := range items {
		if !it.Open() || it.Deadline.IsZero() {
			continue
		}
		out = append(out, Tracked{Item: it, Classification: Classify(it.Deadline, now, threshold)})
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Deadline.Before(out[b].Deadline)
	})
	return out
}

// RemainingCount đếm commitment chưa done và highlight chưa catered
func RemainingCount(items []Item) int {
	n := 0
	for _, it := range items {
		if it.Open() {
			n++
		}
	}
	return n
}
