// Package notification phát thông báo gần thời gian thực tới các session đang kết nối.
// Mỗi loại thông báo là một biến thể riêng của Event, tự kiểm tra trường bắt buộc.
package notification

import (
	"errors"
	"fmt"
	"time"
)

// Type là discriminator của thông báo
type Type string

const (
	TypeCommitment        Type = "commitment"
	TypeCriticalHighlight Type = "criticalHighlight"
	TypeBreakStarted      Type = "breakStarted"
	TypeCheckInStatus     Type = "checkInStatus"
)

// Tên event trên transport (SSE event name)
const (
	EventCommitment        = "commitmentNotification"
	EventCriticalHighlight = "criticalHighlightNotification"
	EventBreakUpdated      = "breakUpdated"
	EventCheckInStatus     = "checkInStatusUpdated"
)

// Trạng thái deadline đi kèm thông báo commitment / highlight
const (
	PhaseCreated     = "created"
	PhaseApproaching = "approaching"
	PhaseOverdue     = "overdue"
	PhaseStatus      = "statusChanged"
)

// ErrInvalidEvent được trả khi biến thể thiếu trường bắt buộc
var ErrInvalidEvent = errors.New("notification event không hợp lệ")

// Notification là object gửi tới người nhận
type Notification struct {
	Type         Type   `json:"type"`
	Event        string `json:"event"`
	Key          string `json:"key"` // clientId + itemName, dùng để chống trùng phía người nhận
	ClientID     string `json:"clientId,omitempty"`
	CustomerName string `json:"customerName,omitempty"`
	CssValue     string `json:"cssValue"`
	ItemName     string `json:"itemName,omitempty"`
	Message      string `json:"message"`
	Timestamp    int64  `json:"timestamp"` // Unix milli
}

// Event là một biến thể thông báo
type Event interface {
	Type() Type
	Validate() error
	build(now time.Time) Notification
}

// Build kiểm tra event và dựng Notification tại thời điểm now
func Build(ev Event, now time.Time) (Notification, error) {
	if ev == nil {
		return Notification{}, ErrInvalidEvent
	}
	if err := ev.Validate(); err != nil {
		return Notification{}, err
	}
	return ev.build(now), nil
}

func missing(t Type, field string) error {
	return fmt.Errorf("%w: %s thiếu %s", ErrInvalidEvent, t, field)
}

// CommitmentEvent: commitment mới, sắp đến hạn hoặc quá hạn
type CommitmentEvent struct {
	ClientID     string
	CustomerName string
	CssValue     string
	Text         string
	Deadline     int64  // Unix milli
	Phase        string // created | approaching | overdue | statusChanged
	Remaining    string // Khoảng thời gian đã tách, ví dụ "0d 0h 1m 0s"
	Status       string // Trạng thái mới, chỉ dùng với statusChanged
}

func (e CommitmentEvent) Type() Type { return TypeCommitment }

func (e CommitmentEvent) Validate() error {
	switch {
	case e.ClientID == "":
		return missing(e.Type(), "clientId")
	case e.CssValue == "":
		return missing(e.Type(), "cssValue")
	case e.Text == "":
		return missing(e.Type(), "text")
	}
	if e.Phase == PhaseStatus && e.Status == "" {
		return missing(e.Type(), "status")
	}
	return validPhase(e.Type(), e.Phase)
}

func (e CommitmentEvent) build(now time.Time) Notification {
	return Notification{
		Type:         e.Type(),
		Event:        EventCommitment,
		Key:          e.ClientID + e.Text,
		ClientID:     e.ClientID,
		CustomerName: e.CustomerName,
		CssValue:     e.CssValue,
		ItemName:     e.Text,
		Message:      phaseMessage("Commitment", e.CustomerName, e.Phase, e.Remaining, e.Status, e.Deadline),
		Timestamp:    now.UnixMilli(),
	}
}

// CriticalHighlightEvent: critical highlight mới, sắp hết hạn hoặc đã hết hạn
type CriticalHighlightEvent struct {
	ClientID     string
	CustomerName string
	CssValue     string
	Category     string
	Expiry       int64 // Unix milli
	Phase        string
	Remaining    string
	Status       string
}

func (e CriticalHighlightEvent) Type() Type { return TypeCriticalHighlight }

func (e CriticalHighlightEvent) Validate() error {
	switch {
	case e.ClientID == "":
		return missing(e.Type(), "clientId")
	case e.CssValue == "":
		return missing(e.Type(), "cssValue")
	case e.Category == "":
		return missing(e.Type(), "category")
	}
	if e.Phase == PhaseStatus && e.Status == "" {
		return missing(e.Type(), "status")
	}
	return validPhase(e.Type(), e.Phase)
}

func (e CriticalHighlightEvent) build(now time.Time) Notification {
	return Notification{
		Type:         e.Type(),
		Event:        EventCriticalHighlight,
		Key:          e.ClientID + e.Category,
		ClientID:     e.ClientID,
		CustomerName: e.CustomerName,
		CssValue:     e.CssValue,
		ItemName:     e.Category,
		Message:      phaseMessage("Critical highlight", e.CustomerName, e.Phase, e.Remaining, e.Status, e.Expiry),
		Timestamp:    now.UnixMilli(),
	}
}

// BreakStartedEvent: một CSS user bắt đầu nghỉ
type BreakStartedEvent struct {
	UserName  string
	Reason    string
	StartedAt int64
}

func (e BreakStartedEvent) Type() Type { return TypeBreakStarted }

func (e BreakStartedEvent) Validate() error {
	if e.UserName == "" {
		return missing(e.Type(), "userName")
	}
	return nil
}

func (e BreakStartedEvent) build(now time.Time) Notification {
	msg := fmt.Sprintf("%s đã bắt đầu nghỉ", e.UserName)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return Notification{
		Type:      e.Type(),
		Event:     EventBreakUpdated,
		Key:       e.UserName + "break",
		CssValue:  e.UserName,
		ItemName:  e.Reason,
		Message:   msg,
		Timestamp: now.UnixMilli(),
	}
}

// CheckInStatusEvent: check-in hoặc check-out
type CheckInStatusEvent struct {
	UserName string
	Status   string // checkedIn | checkedOut
	At       int64
}

const (
	CheckedIn  = "checkedIn"
	CheckedOut = "checkedOut"
)

func (e CheckInStatusEvent) Type() Type { return TypeCheckInStatus }

func (e CheckInStatusEvent) Validate() error {
	if e.UserName == "" {
		return missing(e.Type(), "userName")
	}
	if e.Status != CheckedIn && e.Status != CheckedOut {
		return fmt.Errorf("%w: status %q", ErrInvalidEvent, e.Status)
	}
	return nil
}

func (e CheckInStatusEvent) build(now time.Time) Notification {
	verb := "check-in"
	if e.Status == CheckedOut {
		verb = "check-out"
	}
	return Notification{
		Type:      e.Type(),
		Event:     EventCheckInStatus,
		Key:       e.UserName + e.Status,
		CssValue:  e.UserName,
		ItemName:  e.Status,
		Message:   fmt.Sprintf("%s đã %s", e.UserName, verb),
		Timestamp: now.UnixMilli(),
	}
}

func validPhase(t Type, phase string) error {
	switch phase {
	case PhaseCreated, PhaseApproaching, PhaseOverdue, PhaseStatus:
		return nil
	}
	return fmt.Errorf("%w: %s phase %q", ErrInvalidEvent, t, phase)
}

func phaseMessage(label, customer, phase, remaining, status string, deadline int64) string {
	due := time.UnixMilli(deadline).UTC().Format(time.RFC3339)
	switch phase {
	case PhaseApproaching:
		return fmt.Sprintf("%s của %s sắp đến hạn (%s, còn %s)", label, customer, due, remaining)
	case PhaseOverdue:
		return fmt.Sprintf("%s của %s đã quá hạn %s", label, customer, remaining)
	case PhaseStatus:
		return fmt.Sprintf("%s của %s chuyển sang %s", label, customer, status)
	default:
		return fmt.Sprintf("%s mới cho %s, hạn %s", label, customer, due)
	}
}
