// Package tracker phân loại deadline của commitment / critical highlight
// và tính các chỉ số thống kê (số mục còn mở, tỷ lệ chuyên cần).
package tracker

import (
	"fmt"
	"time"
)

// State là trạng thái của một deadline so với thời điểm hiện tại
type State string

const (
	StateUpcoming    State = "upcoming"
	StateApproaching State = "approaching"
	StateOverdue     State = "overdue"
)

// DefaultThreshold là ngưỡng "sắp đến hạn" mặc định
const DefaultThreshold = 120 * time.Second

// Magnitude là khoảng thời gian tách theo ngày/giờ/phút/giây để hiển thị
type Magnitude struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
}

// String trả về dạng rút gọn, ví dụ "1d 2h 3m 4s"
func (m Magnitude) String() string {
	return fmt.Sprintf("%dd %dh %dm %ds", m.Days, m.Hours, m.Minutes, m.Seconds)
}

// Classification là kết quả phân loại một deadline
type Classification struct {
	State     State     `json:"state"`
	Magnitude Magnitude `json:"magnitude"`
}

// Breakdown tách một khoảng thời gian (tính theo mili giây) thành ngày/giờ/phút/giây.
// Khoảng âm được lấy trị tuyệt đối.
func Breakdown(d time.Duration) Magnitude {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = -ms
	}
	return Magnitude{
		Days:    ms / (24 * 3600 * 1000),
		Hours:   (ms % (24 * 3600 * 1000)) / (3600 * 1000),
		Minutes: (ms % (3600 * 1000)) / (60 * 1000),
		Seconds: (ms % (60 * 1000)) / 1000,
	}
}

// Classify phân loại deadline tại thời điểm now.
// now >= deadline là overdue; approaching khi now thuộc [deadline-threshold, deadline).
func Classify(deadline, now time.Time, threshold time.Duration) Classification {
	if threshold < 0 {
		threshold = 0
	}
	diff := deadline.Sub(now)
	switch {
	case diff <= 0:
		return Classification{State: StateOverdue, Magnitude: Breakdown(now.Sub(deadline))}
	case diff <= threshold:
		return Classification{State: StateApproaching, Magnitude: Breakdown(diff)}
	default:
		return Classification{State: StateUpcoming, Magnitude: Breakdown(diff)}
	}
}
