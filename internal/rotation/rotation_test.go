package rotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(from, to int) []int {
	out := []int{}
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

// 45 khách, trang 20: [0:20], [20:40], rồi [40:45]+[0:15] và sang vòng 1
func TestNext_FillScenario(t *testing.T) {
	st := State{}

	p1, err := Next(45, 20, WrapFill, st)
	require.NoError(t, err)
	assert.Equal(t, seq(0, 20), p1.Indices)
	assert.Equal(t, 20, p1.Next.Offset)
	assert.Equal(t, 0, p1.Next.Cycle)
	assert.Equal(t, Stats{TotalClients: 45, CurrentBatchCount: 20, NextBatchCount: 20, RemainingUntilWrap: 25, CycleCount: 0, TotalBatches: 1}, p1.Stats)

	p2, err := Next(45, 20, WrapFill, p1.Next)
	require.NoError(t, err)
	assert.Equal(t, seq(20, 40), p2.Indices)
	assert.Equal(t, 40, p2.Next.Offset)

	p3, err := Next(45, 20, WrapFill, p2.Next)
	require.NoError(t, err)
	assert.Equal(t, append(seq(40, 45), seq(0, 15)...), p3.Indices)
	assert.True(t, p3.Wrapped)
	assert.Equal(t, 15, p3.Next.Offset)
	assert.Equal(t, 1, p3.Next.Cycle)
	assert.Equal(t, 3, p3.Stats.TotalBatches)
	assert.Equal(t, 30, p3.Stats.RemainingUntilWrap)
}

func TestNext_ShortModeReturnsToStart(t *testing.T) {
	for _, tc := range []struct{ total, size int }{{45, 20}, {40, 20}, {7, 3}, {1, 5}} {
		st := State{}
		calls := (tc.total + tc.size - 1) / tc.size
		seen := map[int]int{}
		for i := 0; i < calls; i++ {
			p, err := Next(tc.total, tc.size, WrapShort, st)
			require.NoError(t, err)
			for _, idx := range p.Indices {
				seen[idx]++
			}
			st = p.Next
		}
		assert.Equal(t, 0, st.Offset, "total=%d size=%d", tc.total, tc.size)
		assert.Equal(t, 1, st.Cycle, "total=%d size=%d", tc.total, tc.size)
		assert.Len(t, seen, tc.total)
		for idx, n := range seen {
			assert.Equal(t, 1, n, "khách %d xuất hiện %d lần", idx, n)
		}
	}
}

func TestNext_ShortModeLastPage(t *testing.T) {
	p, err := Next(45, 20, WrapShort, State{Offset: 40})
	require.NoError(t, err)
	assert.Equal(t, seq(40, 45), p.Indices)
	assert.Equal(t, 0, p.Next.Offset)
	assert.Equal(t, 1, p.Next.Cycle)
	assert.Equal(t, 20, p.Stats.NextBatchCount)
}

func TestNext_ListSmallerThanPage(t *testing.T) {
	p, err := Next(5, 20, WrapFill, State{})
	require.NoError(t, err)
	assert.Equal(t, seq(0, 5), p.Indices, "không lặp khách trong cùng một batch")
	assert.Equal(t, 0, p.Next.Offset)
	assert.Equal(t, 1, p.Next.Cycle)
}

func TestNext_EmptyList(t *testing.T) {
	st := State{Offset: 3, Cycle: 2, TotalBatches: 9, LastListSize: 10}
	p, err := Next(0, 20, WrapFill, st)
	require.NoError(t, err)
	assert.True(t, p.Empty)
	assert.Empty(t, p.Indices)
	assert.Equal(t, st, p.Next)
}

func TestNext_ListShrunk(t *testing.T) {
	p, err := Next(30, 20, WrapFill, State{Offset: 40, Cycle: 1, TotalBatches: 2, LastListSize: 45})
	require.NoError(t, err)
	assert.True(t, p.ListChanged)
	assert.Equal(t, 10, p.StartOffset)
	assert.Equal(t, seq(10, 30), p.Indices)
	assert.Equal(t, 2, p.Next.Cycle, "chạm cuối danh sách mới tính một vòng")
}

func TestNext_InvalidPageSize(t *testing.T) {
	_, err := Next(10, 0, WrapFill, State{})
	assert.Error(t, err)
}

func TestPreview(t *testing.T) {
	s := Preview(45, 20, WrapShort, State{Offset: 40, Cycle: 0, TotalBatches: 2})
	assert.Equal(t, 5, s.NextBatchCount)
	assert.Equal(t, 5, s.RemainingUntilWrap)
	assert.Equal(t, 0, s.CurrentBatchCount)
}

func TestParseWrapMode(t *testing.T) {
	m, err := ParseWrapMode("")
	require.NoError(t, err)
	assert.Equal(t, WrapFill, m)
	_, err = ParseWrapMode("loop")
	assert.Error(t, err)
}
