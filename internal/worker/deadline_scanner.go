package worker

import (
	"context"
	"time"

	"consult_crm/internal/logger"
	"consult_crm/internal/notification"
	"consult_crm/internal/tracker"
)

// OpenItemSource cung cấp các commitment / highlight chưa hoàn tất
type OpenItemSource interface {
	OpenItems(ctx context.Context) ([]tracker.Item, error)
}

// OverdueMailer gửi email tổng hợp mục quá hạn
type OverdueMailer interface {
	SendOverdueDigest(items []tracker.Tracked, now time.Time) error
}

// DeadlineScanner quét định kỳ các mục đang mở và phát thông báo approaching / overdue.
// Mỗi (mục, trạng thái) chỉ được phát một lần trong vòng đời process.
type DeadlineScanner struct {
	source    OpenItemSource
	mailer    OverdueMailer
	threshold time.Duration
	interval  time.Duration
	emit      func(ctx context.Context, ev notification.Event)
	now       func() time.Time
	seen      map[string]tracker.State
}

// NewDeadlineScanner tạo scanner. mailer có thể nil khi không cấu hình SMTP.
func NewDeadlineScanner(source OpenItemSource, mailer OverdueMailer, threshold, interval time.Duration) *DeadlineScanner {
	if interval < 10*time.Second {
		interval = time.Minute
	}
	return &DeadlineScanner{
		source:    source,
		mailer:    mailer,
		threshold: threshold,
		interval:  interval,
		emit:      notification.Emit,
		now:       time.Now,
		seen:      map[string]tracker.State{},
	}
}

// itemKey định danh một mục theo loại và id
func itemKey(it tracker.Item) string {
	return string(it.Kind) + ":" + it.ItemID
}

// event dựng biến thể thông báo tương ứng với loại mục
func event(t tracker.Tracked) notification.Event {
	phase := notification.PhaseApproaching
	if t.State == tracker.StateOverdue {
		phase = notification.PhaseOverdue
	}
	if t.Kind == tracker.KindCriticalHighlight {
		return notification.CriticalHighlightEvent{
			ClientID:     t.ClientID,
			CustomerName: t.CustomerName,
			CssValue:     t.CssValue,
			Category:     t.Name,
			Expiry:       t.Deadline.UnixMilli(),
			Phase:        phase,
			Remaining:    t.Magnitude.String(),
		}
	}
	return notification.CommitmentEvent{
		ClientID:     t.ClientID,
		CustomerName: t.CustomerName,
		CssValue:     t.CssValue,
		Text:         t.Name,
		Deadline:     t.Deadline.UnixMilli(),
		Phase:        phase,
		Remaining:    t.Magnitude.String(),
	}
}

// ScanOnce chạy một lượt quét, trả về số thông báo đã phát
func (w *DeadlineScanner) ScanOnce(ctx context.Context) (int, error) {
	items, err := w.source.OpenItems(ctx)
	if err != nil {
		return 0, err
	}
	now := w.now()

	current := make(map[string]bool, len(items))
	var newlyOverdue []tracker.Tracked
	emitted := 0
	for _, t := range tracker.ScanClient(items, now, w.threshold) {
		key := itemKey(t.Item)
		current[key] = true
		if t.State == tracker.StateUpcoming || w.seen[key] == t.State {
			continue
		}
		w.seen[key] = t.State
		w.emit(ctx, event(t))
		emitted++
		if t.State == tracker.StateOverdue {
			newlyOverdue = append(newlyOverdue, t)
		}
	}

	// Mục đã hoàn tất hoặc bị xoá thì quên đi để không giữ map vô hạn
	for key := range w.seen {
		if !current[key] {
			delete(w.seen, key)
		}
	}

	if w.mailer != nil && len(newlyOverdue) > 0 {
		if err := w.mailer.SendOverdueDigest(newlyOverdue, now); err != nil {
			logger.WithModule("worker").WithError(err).Warn("⏰ [DEADLINE] Gửi email tổng hợp quá hạn thất bại")
		}
	}
	return emitted, nil
}

// Start chạy vòng quét cho đến khi ctx bị huỷ. Panic trong một lượt không dừng worker.
func (w *DeadlineScanner) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval":  w.interval.String(),
		"threshold": w.threshold.String(),
	}).Info("⏰ [DEADLINE] Starting Deadline Scanner...")

	for {
		select {
		case <-ctx.Done():
			log.Info("⏰ [DEADLINE] Deadline Scanner stopped")
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(map[string]interface{}{
							"panic": r,
						}).Error("⏰ [DEADLINE] Panic khi quét deadline, sẽ tiếp tục ở lần chạy tiếp theo")
					}
				}()

				emitted, err := w.ScanOnce(ctx)
				if err != nil {
					log.WithError(err).Error("⏰ [DEADLINE] Quét deadline thất bại")
					return
				}
				if emitted > 0 {
					log.WithField("emitted", emitted).Info("⏰ [DEADLINE] Đã phát thông báo deadline")
				}
			}()
		}
	}
}
