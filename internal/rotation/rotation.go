// Package rotation chứa thuật toán xoay vòng danh sách khách theo trang cố định.
// Package thuần, không truy cập database; service batch lưu State và gọi Next.
package rotation

import (
	"fmt"
)

// WrapMode quyết định cách xử lý trang cuối của một vòng
type WrapMode string

const (
	// WrapFill: trang cuối được bù thêm từ đầu danh sách cho đủ N khách
	WrapFill WrapMode = "fill"
	// WrapShort: trang cuối ngắn hơn N, trang kế tiếp bắt đầu lại từ 0
	WrapShort WrapMode = "short"
)

// ParseWrapMode chuyển chuỗi cấu hình thành WrapMode
func ParseWrapMode(s string) (WrapMode, error) {
	switch WrapMode(s) {
	case WrapFill, WrapShort:
		return WrapMode(s), nil
	case "":
		return WrapFill, nil
	}
	return "", fmt.Errorf("wrap mode không hợp lệ: %q", s)
}

// State là con trỏ xoay vòng đã lưu của một (CSS user, loại batch)
type State struct {
	Offset       int // Vị trí bắt đầu của batch kế tiếp
	Cycle        int // Số lần đã quay về đầu danh sách
	TotalBatches int // Tổng số batch đã sinh
	LastListSize int // Kích thước danh sách ở lần sinh trước
}

// Stats là thống kê trả về cùng mỗi batch
type Stats struct {
	TotalClients       int `json:"totalClients"`
	CurrentBatchCount  int `json:"currentBatchCount"`
	NextBatchCount     int `json:"nextBatchCount"`
	RemainingUntilWrap int `json:"remainingUntilWrap"`
	CycleCount         int `json:"cycleCount"`
	TotalBatches       int `json:"totalBatches"`
}

// Page là kết quả một lần xoay
type Page struct {
	Indices     []int // Chỉ số các khách trong danh sách đã sắp xếp, theo thứ tự batch
	StartOffset int   // Offset thực tế bắt đầu (sau khi chuẩn hoá)
	Wrapped     bool  // Batch này chạm/qua cuối danh sách
	ListChanged bool  // Kích thước danh sách khác lần trước
	Empty       bool  // Không có khách nào
	Next        State // State mới cần lưu
	Stats       Stats
}

// Next tính batch kế tiếp cho danh sách có total phần tử.
// State không đổi khi danh sách rỗng.
func Next(total, pageSize int, mode WrapMode, st State) (Page, error) {
	if pageSize <= 0 {
		return Page{}, fmt.Errorf("page size phải > 0, nhận %d", pageSize)
	}
	if total <= 0 {
		return Page{
			Empty: true,
			Next:  st,
			Stats: Stats{CycleCount: st.Cycle, TotalBatches: st.TotalBatches},
		}, nil
	}

	offset := st.Offset
	if offset < 0 {
		offset = 0
	}
	changed := st.LastListSize > 0 && st.LastListSize != total
	if offset >= total {
		// Danh sách co lại: giữ vị trí tương đối, không tính là một vòng
		offset %= total
		changed = true
	}

	take := pageSize
	if take > total {
		take = total
	}
	if mode == WrapShort && offset+take > total {
		take = total - offset
	}

	indices := make([]int, take)
	for i := 0; i < take; i++ {
		indices[i] = (offset + i) % total
	}

	wrapped := offset+take >= total
	next := State{
		Offset:       (offset + take) % total,
		Cycle:        st.Cycle,
		TotalBatches: st.TotalBatches + 1,
		LastListSize: total,
	}
	if wrapped {
		next.Cycle++
	}

	return Page{
		Indices:     indices,
		StartOffset: offset,
		Wrapped:     wrapped,
		ListChanged: changed,
		Next:        next,
		Stats: Stats{
			TotalClients:       total,
			CurrentBatchCount:  take,
			NextBatchCount:     peekCount(total, pageSize, mode, next.Offset),
			RemainingUntilWrap: total - next.Offset,
			CycleCount:         next.Cycle,
			TotalBatches:       next.TotalBatches,
		},
	}, nil
}

// Preview trả về thống kê của state hiện tại mà không sinh batch
func Preview(total, pageSize int, mode WrapMode, st State) Stats {
	if total <= 0 || pageSize <= 0 {
		return Stats{CycleCount: st.Cycle, TotalBatches: st.TotalBatches}
	}
	offset := st.Offset
	if offset < 0 || offset >= total {
		offset = ((offset % total) + total) % total
	}
	return Stats{
		TotalClients:       total,
		NextBatchCount:     peekCount(total, pageSize, mode, offset),
		RemainingUntilWrap: total - offset,
		CycleCount:         st.Cycle,
		TotalBatches:       st.TotalBatches,
	}
}

// peekCount là số khách của batch bắt đầu tại offset
func peekCount(total, pageSize int, mode WrapMode, offset int) int {
	n := pageSize
	if n > total {
		n = total
	}
	if mode == WrapShort && offset+n > total {
		n = total - offset
	}
	return n
}
