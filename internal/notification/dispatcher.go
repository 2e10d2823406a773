package notification

import (
	"context"
	"sync/atomic"
	"time"

	"consult_crm/internal/logger"
	"consult_crm/internal/metrics"
)

// Publisher chuyển thông báo sang các instance khác (ví dụ Redis pub/sub)
type Publisher interface {
	Publish(ctx context.Context, n Notification) error
}

// Dispatcher dựng thông báo từ event và phát tới hub cục bộ và publisher (nếu có)
type Dispatcher struct {
	hub       *Hub
	publisher Publisher
	now       func() time.Time
}

// NewDispatcher tạo dispatcher. publisher có thể nil khi chạy một instance.
func NewDispatcher(hub *Hub, publisher Publisher) *Dispatcher {
	return &Dispatcher{hub: hub, publisher: publisher, now: time.Now}
}

// Hub trả về hub cục bộ
func (d *Dispatcher) Hub() *Hub {
	return d.hub
}

// Dispatch kiểm tra event rồi phát. Chỉ trả lỗi khi event không hợp lệ;
// lỗi publish chỉ được log vì việc giao thông báo là best-effort.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) (Notification, error) {
	n, err := Build(ev, d.now())
	if err != nil {
		return Notification{}, err
	}

	delivered := d.hub.Deliver(n)
	metrics.RecordNotification(string(n.Type))

	if d.publisher != nil {
		if err := d.publisher.Publish(ctx, n); err != nil {
			logger.WithModule("notification").WithError(err).WithField("type", n.Type).Warn("🔔 [NOTIFY] Publish sang instance khác thất bại")
		}
	}

	logger.WithModule("notification").WithFields(map[string]interface{}{
		"type":      n.Type,
		"cssValue":  n.CssValue,
		"delivered": delivered,
	}).Debug("🔔 [NOTIFY] Đã phát thông báo")
	return n, nil
}

var defaultDispatcher atomic.Pointer[Dispatcher]

// SetDefault đặt dispatcher dùng chung cho Emit
func SetDefault(d *Dispatcher) {
	defaultDispatcher.Store(d)
}

// Default trả về dispatcher dùng chung (nil nếu chưa đặt)
func Default() *Dispatcher {
	return defaultDispatcher.Load()
}

// Emit phát event qua dispatcher dùng chung.
// Không có dispatcher thì bỏ qua; event không hợp lệ được log.
func Emit(ctx context.Context, ev Event) {
	d := Default()
	if d == nil {
		return
	}
	if _, err := d.Dispatch(ctx, ev); err != nil {
		logger.WithModule("notification").WithError(err).Warn("🔔 [NOTIFY] Bỏ qua event không hợp lệ")
	}
}
