package notification

import (
	"sync"

	"consult_crm/internal/metrics"

	"github.com/google/uuid"
)

// Session là một kết nối đang nhận thông báo
type Session struct {
	ID       string
	UserName string
	IsAdmin  bool
	ch       chan Notification
}

// C trả về channel nhận thông báo, bị đóng khi session huỷ đăng ký
func (s *Session) C() <-chan Notification {
	return s.ch
}

// accepts: admin nhận tất cả, user thường chỉ nhận thông báo của chính mình
func (s *Session) accepts(n Notification) bool {
	return s.IsAdmin || n.CssValue == s.UserName
}

// Hub giữ các session đang kết nối và phát thông báo theo bộ lọc
type Hub struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	bufferSize int
}

// NewHub tạo hub, mỗi session có buffer bufferSize thông báo
func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = 32
	}
	return &Hub{sessions: make(map[string]*Session), bufferSize: bufferSize}
}

// Subscribe đăng ký một session mới
func (h *Hub) Subscribe(userName string, isAdmin bool) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		UserName: userName,
		IsAdmin:  isAdmin,
		ch:       make(chan Notification, h.bufferSize),
	}
	h.mu.Lock()
	h.sessions[s.ID] = s
	n := len(h.sessions)
	h.mu.Unlock()
	metrics.NotificationSessions.Set(float64(n))
	return s
}

// Unsubscribe huỷ session và đóng channel của nó
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	s, ok := h.sessions[id]
	if ok {
		delete(h.sessions, id)
		close(s.ch)
	}
	n := len(h.sessions)
	h.mu.Unlock()
	metrics.NotificationSessions.Set(float64(n))
}

// Deliver gửi thông báo tới các session phù hợp, không chờ.
// Session có buffer đầy sẽ bị bỏ qua. Trả về số session đã nhận.
func (h *Hub) Deliver(n Notification) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, s := range h.sessions {
		if !s.accepts(n) {
			continue
		}
		select {
		case s.ch <- n:
			delivered++
		default:
			metrics.NotificationsDropped.Inc()
		}
	}
	return delivered
}

// Count trả về số session đang kết nối
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Close huỷ mọi session (dùng khi tắt server để các stream kết thúc)
func (h *Hub) Close() {
	h.mu.Lock()
	for id, s := range h.sessions {
		delete(h.sessions, id)
		close(s.ch)
	}
	h.mu.Unlock()
	metrics.NotificationSessions.Set(0)
}
