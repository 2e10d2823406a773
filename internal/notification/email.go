package notification

import (
	"fmt"
	"html"
	"strings"
	"time"

	"consult_crm/internal/tracker"

	"gopkg.in/gomail.v2"
)

// EmailChannel gửi email tổng hợp các mục quá hạn cho admin
type EmailChannel struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// NewEmailChannel tạo kênh email; trả nil nếu thiếu host, người gửi hoặc người nhận
func NewEmailChannel(host string, port int, username, password, from, to string) *EmailChannel {
	var recipients []string
	for _, r := range strings.Split(to, ",") {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	if host == "" || from == "" || len(recipients) == 0 {
		return nil
	}
	return &EmailChannel{Host: host, Port: port, Username: username, Password: password, From: from, To: recipients}
}

// RenderOverdueDigest dựng subject và nội dung HTML cho danh sách mục quá hạn
func RenderOverdueDigest(items []tracker.Tracked, now time.Time) (string, string) {
	subject := fmt.Sprintf("[CRM] %d mục quá hạn - %s", len(items), now.UTC().Format(tracker.DayLayout))

	var b strings.Builder
	b.WriteString("<table border='1' cellpadding='4' style='border-collapse:collapse'>")
	b.WriteString("<tr><th>MOU</th><th>Khách</th><th>CSS</th><th>Loại</th><th>Nội dung</th><th>Quá hạn</th></tr>")
	for _, it := range items {
		b.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
			html.EscapeString(it.MouNumber),
			html.EscapeString(it.CustomerName),
			html.EscapeString(it.CssValue),
			it.Kind,
			html.EscapeString(it.Name),
			it.Magnitude.String()))
	}
	b.WriteString("</table>")
	return subject, b.String()
}

// SendOverdueDigest gửi email tổng hợp; không làm gì khi danh sách rỗng
func (e *EmailChannel) SendOverdueDigest(items []tracker.Tracked, now time.Time) error {
	if e == nil || len(items) == 0 {
		return nil
	}
	subject, body := RenderOverdueDigest(items, now)

	msg := gomail.NewMessage()
	msg.SetHeader("From", e.From)
	msg.SetHeader("To", e.To...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	dialer := gomail.NewDialer(e.Host, e.Port, e.Username, e.Password)
	return dialer.DialAndSend(msg)
}
