// Package notificationhdl - Stream thông báo qua Server-Sent Events.
package notificationhdl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	basehdl "consult_crm/internal/api/base/handler"
	basesvc "consult_crm/internal/api/base/service"
	"consult_crm/internal/logger"
	"consult_crm/internal/notification"

	"github.com/gofiber/fiber/v3"
)

// DefaultHeartbeat là chu kỳ gửi comment giữ kết nối
const DefaultHeartbeat = 25 * time.Second

// NotificationHandler đăng ký session vào hub và stream thông báo
type NotificationHandler struct {
	Hub       *notification.Hub
	Heartbeat time.Duration
}

// NewNotificationHandler tạo NotificationHandler mới
func NewNotificationHandler(hub *notification.Hub) (*NotificationHandler, error) {
	if hub == nil {
		return nil, fmt.Errorf("notification hub is nil")
	}
	return &NotificationHandler{Hub: hub, Heartbeat: DefaultHeartbeat}, nil
}

// writeEvent ghi một thông báo theo định dạng SSE
func writeEvent(w *bufio.Writer, n notification.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", n.Event, data); err != nil {
		return err
	}
	return w.Flush()
}

// HandleStream xử lý GET /notifications/stream.
// Session chỉ được đăng ký khi stream bắt đầu ghi, và bị huỷ khi ghi thất bại
// (client đã ngắt) hoặc hub đóng channel.
func (h *NotificationHandler) HandleStream(c fiber.Ctx) error {
	actor := basehdl.CurrentActor(c)

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	return c.SendStreamWriter(func(w *bufio.Writer) {
		h.stream(w, actor)
	})
}

// stream đăng ký session cho actor rồi ghi thông báo vào w cho tới khi kết thúc
func (h *NotificationHandler) stream(w *bufio.Writer, actor basesvc.Actor) {
	sess := h.Hub.Subscribe(actor.Name, actor.IsAdmin)
	log := logger.WithModule("notification").WithFields(map[string]interface{}{"session": sess.ID, "user": actor.Name})
	log.Info("🔔 [NOTIFY] Session kết nối")
	defer func() {
		h.Hub.Unsubscribe(sess.ID)
		log.Info("🔔 [NOTIFY] Session ngắt kết nối")
	}()

	heartbeat := h.Heartbeat
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}

	if _, err := fmt.Fprintf(w, "event: connected\ndata: {\"session\":%q}\n\n", sess.ID); err != nil {
		return
	}
	if err := w.Flush(); err != nil {
		return
	}

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()
	for {
		select {
		case n, ok := <-sess.C():
			if !ok {
				return
			}
			if err := writeEvent(w, n); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := w.WriteString(": ping\n\n"); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}
}

// HandleSessions xử lý GET /admin/notifications/sessions: số session đang kết nối
func (h *NotificationHandler) HandleSessions(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		return basehdl.HandleResponse(c, fiber.Map{"sessions": h.Hub.Count()}, nil)
	})
}
