package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"consult_crm/internal/notification"
	"consult_crm/internal/tracker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	items []tracker.Item
	err   error
}

func (f *fakeSource) OpenItems(context.Context) ([]tracker.Item, error) {
	return f.items, f.err
}

type fakeMailer struct {
	sent [][]tracker.Tracked
}

func (m *fakeMailer) SendOverdueDigest(items []tracker.Tracked, _ time.Time) error {
	m.sent = append(m.sent, items)
	return nil
}

var deadline = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func newScanner(items []tracker.Item) (*DeadlineScanner, *fakeSource, *fakeMailer, *[]notification.Event) {
	source := &fakeSource{items: items}
	mailer := &fakeMailer{}
	w := NewDeadlineScanner(source, mailer, 2*time.Minute, time.Minute)
	var events []notification.Event
	w.emit = func(_ context.Context, ev notification.Event) { events = append(events, ev) }
	return w, source, mailer, &events
}

func TestScanOnce_ApproachingThenOverdueOnce(t *testing.T) {
	items := []tracker.Item{
		{Kind: tracker.KindCommitment, ItemID: "c1", ClientID: "x", CssValue: "amina", Name: "Gửi hồ sơ", Deadline: deadline, Status: tracker.StatusNotDone},
		{Kind: tracker.KindCriticalHighlight, ItemID: "h1", ClientID: "x", CssValue: "amina", Name: "Passport", Deadline: deadline.Add(24 * time.Hour), Status: tracker.StatusNotCatered},
	}
	w, _, mailer, events := newScanner(items)
	ctx := context.Background()

	w.now = func() time.Time { return deadline.Add(-time.Minute) }
	n, err := w.ScanOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "highlight còn xa nên chưa phát")
	ev, ok := (*events)[0].(notification.CommitmentEvent)
	require.True(t, ok)
	assert.Equal(t, notification.PhaseApproaching, ev.Phase)
	assert.Equal(t, "0d 0h 1m 0s", ev.Remaining)

	n, err = w.ScanOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "cùng trạng thái không phát lại")

	w.now = func() time.Time { return deadline.Add(time.Second) }
	n, err = w.ScanOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, notification.PhaseOverdue, (*events)[1].(notification.CommitmentEvent).Phase)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "c1", mailer.sent[0][0].ItemID)

	n, err = w.ScanOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, mailer.sent, 1, "email chỉ gửi cho mục mới quá hạn")
}

func TestScanOnce_HighlightEventAndForgetClosedItems(t *testing.T) {
	items := []tracker.Item{
		{Kind: tracker.KindCriticalHighlight, ItemID: "h1", ClientID: "x", CssValue: "amina", Name: "Visa", Deadline: deadline, Status: tracker.StatusNotCatered},
	}
	w, source, _, events := newScanner(items)
	w.now = func() time.Time { return deadline.Add(time.Hour) }
	ctx := context.Background()

	_, err := w.ScanOnce(ctx)
	require.NoError(t, err)
	ev, ok := (*events)[0].(notification.CriticalHighlightEvent)
	require.True(t, ok)
	assert.Equal(t, "Visa", ev.Category)
	assert.NoError(t, ev.Validate())

	source.items = nil
	_, err = w.ScanOnce(ctx)
	require.NoError(t, err)
	assert.Empty(t, w.seen)

	source.err = errors.New("mongo down")
	_, err = w.ScanOnce(ctx)
	assert.Error(t, err)
}

func TestStart_StopsOnCancel(t *testing.T) {
	w, _, _, _ := newScanner(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker không dừng khi ctx bị huỷ")
	}
}
