package logger

import (
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// WithRequest trả về logger entry với request context từ Fiber
func WithRequest(c fiber.Ctx) *logrus.Entry {
	entry := GetAppLogger().WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
		"ip":     c.IP(),
	})

	// Request ID do middleware requestid set vào header
	requestID := c.Get("X-Request-ID")
	if requestID == "" {
		requestID = c.GetRespHeader("X-Request-ID")
	}
	if requestID != "" {
		entry = entry.WithField("request_id", requestID)
	}
	if user, ok := c.Locals("user_name").(string); ok && user != "" {
		entry = entry.WithField("user", user)
	}
	return entry
}

// WithModule trả về logger entry với module name (client, batch, notification, ...)
func WithModule(module string) *logrus.Entry {
	return GetAppLogger().WithField("module", module)
}

// Audit ghi một dòng audit cho thao tác ghi lên hồ sơ khách
func Audit(actor, action, mouNumber string, fields map[string]interface{}) {
	entry := GetAuditLogger().WithFields(logrus.Fields{
		"actor":  actor,
		"action": action,
		"mou":    mouNumber,
	})
	if len(fields) > 0 {
		entry = entry.WithFields(logrus.Fields(fields))
	}
	entry.Info("client mutation")
}
