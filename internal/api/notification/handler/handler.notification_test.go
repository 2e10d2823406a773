package notificationhdl

import (
	"bufio"
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	basesvc "consult_crm/internal/api/base/service"
	"consult_crm/internal/notification"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteEvent(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	n := notification.Notification{Type: notification.TypeCommitment, Event: notification.EventCommitment, CssValue: "amina", Message: "hi"}

	require.NoError(t, writeEvent(w, n))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "event: commitmentNotification\ndata: {"))
	assert.Contains(t, out, `"cssValue":"amina"`)
	assert.True(t, strings.HasSuffix(out, "\n\n"))
}

func withUser(name string, admin bool) fiber.Handler {
	return func(c fiber.Ctx) error {
		c.Locals("user_name", name)
		c.Locals("is_admin", admin)
		return c.Next()
	}
}

func TestHandleStream_DeliversOwnNotifications(t *testing.T) {
	hub := notification.NewHub(8)
	h, err := NewNotificationHandler(hub)
	require.NoError(t, err)
	app := fiber.New()
	app.Get("/stream", withUser("amina", false), h.HandleStream)

	go func() {
		deadline := time.Now().Add(3 * time.Second)
		for hub.Count() == 0 && time.Now().Before(deadline) {
			time.Sleep(10 * time.Millisecond)
		}
		hub.Deliver(notification.Notification{Event: notification.EventCommitment, CssValue: "omar", Message: "not mine"})
		hub.Deliver(notification.Notification{Event: notification.EventCommitment, CssValue: "amina", Message: "mine"})
		time.Sleep(50 * time.Millisecond)
		hub.Close()
	}()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/stream", nil), fiber.TestConfig{Timeout: 5 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, "event: connected")
	assert.Contains(t, out, `"message":"mine"`)
	assert.NotContains(t, out, "not mine")
	assert.Equal(t, 0, hub.Count(), "session được huỷ khi stream kết thúc")
}

func TestHandleStream_SubscribesOnlyWhenStreamStarts(t *testing.T) {
	hub := notification.NewHub(8)
	h, err := NewNotificationHandler(hub)
	require.NoError(t, err)

	countAtReturn := -1
	app := fiber.New()
	app.Get("/stream", withUser("amina", false), func(c fiber.Ctx) error {
		err := h.HandleStream(c)
		countAtReturn = hub.Count()
		return err
	})

	go func() {
		deadline := time.Now().Add(3 * time.Second)
		for hub.Count() == 0 && time.Now().Before(deadline) {
			time.Sleep(10 * time.Millisecond)
		}
		hub.Close()
	}()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/stream", nil), fiber.TestConfig{Timeout: 5 * time.Second})
	require.NoError(t, err)
	_, err = io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, 0, countAtReturn, "handler trả về mà chưa đăng ký session")
	assert.Equal(t, 0, hub.Count())
}

func TestHandleStream_StopsWhenWriteFails(t *testing.T) {
	hub := notification.NewHub(8)
	h, err := NewNotificationHandler(hub)
	require.NoError(t, err)

	h.stream(bufio.NewWriterSize(failingWriter{}, 16), basesvc.Actor{Name: "amina"})
	assert.Equal(t, 0, hub.Count(), "ghi lỗi thì session bị huỷ")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestHandleSessions(t *testing.T) {
	hub := notification.NewHub(1)
	s := hub.Subscribe("amina", false)
	defer hub.Unsubscribe(s.ID)
	h, err := NewNotificationHandler(hub)
	require.NoError(t, err)
	app := fiber.New()
	app.Get("/sessions", h.HandleSessions)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/sessions", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"sessions":1`)

	_, err = NewNotificationHandler(nil)
	assert.Error(t, err)
}
