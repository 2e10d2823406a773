package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Số batch đã sinh theo loại (routine | critical)
	BatchesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_batches_generated_total",
			Help: "Total number of client batches generated",
		},
		[]string{"kind"},
	)

	// Số notification đã phát theo loại
	NotificationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_notifications_dispatched_total",
			Help: "Total number of notifications dispatched",
		},
		[]string{"type"},
	)

	// Số notification bị bỏ do buffer của session đầy
	NotificationsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_notifications_dropped_total",
			Help: "Notifications dropped because a session buffer was full",
		},
	)

	// Số session đang kết nối stream
	NotificationSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crm_notification_sessions",
			Help: "Number of connected notification sessions",
		},
	)

	// Thời gian xử lý HTTP request (giây)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crm_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)
)

// RecordHTTPRequest ghi thời gian xử lý một request
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordBatch tăng bộ đếm batch
func RecordBatch(kind string) {
	BatchesGenerated.WithLabelValues(kind).Inc()
}

// RecordNotification tăng bộ đếm notification đã phát
func RecordNotification(typ string) {
	NotificationsDispatched.WithLabelValues(typ).Inc()
}
