package tracker

import (
	"math"
	"time"
)

// DayLayout là định dạng ngày dùng cho chấm công
const DayLayout = "2006-01-02"

// AttendanceStats là thống kê chuyên cần trên danh sách ngày được truy vấn
type AttendanceStats struct {
	TotalDays  int      `json:"totalDays"`
	Present    int      `json:"present"`
	Absent     int      `json:"absent"`
	Percentage float64  `json:"percentage"`
	AbsentDays []string `json:"absentDays"`
}

// Attendance tính present/absent trên đúng danh sách ngày truy vấn,
// ngày không có bản ghi check-in được tính là vắng.
func Attendance(dates []string, checkInDays []string) AttendanceStats {
	have := make(map[string]bool, len(checkInDays))
	for _, d := range checkInDays {
		have[d] = true
	}

	seen := make(map[string]bool, len(dates))
	stats := AttendanceStats{AbsentDays: []string{}}
	for _, d := range dates {
		if seen[d] {
			continue
		}
		seen[d] = true
		stats.TotalDays++
		if have[d] {
			stats.Present++
		} else {
			stats.AbsentDays = append(stats.AbsentDays, d)
		}
	}
	stats.Absent = stats.TotalDays - stats.Present
	if stats.TotalDays > 0 {
		stats.Percentage = math.Round(float64(stats.Present)/float64(stats.TotalDays)*100*100) / 100
	}
	return stats
}

// WorkingDays trả về các ngày thứ 2 đến thứ 6 trong [from, to]
func WorkingDays(from, to time.Time) []string {
	days := []string{}
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, from.Location())
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		days = append(days, d.Format(DayLayout))
	}
	return days
}
