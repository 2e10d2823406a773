package middleware

import (
	"strconv"
	"time"

	"consult_crm/internal/metrics"

	"github.com/gofiber/fiber/v3"
)

// RequestMetrics ghi thời gian xử lý theo route đã đăng ký (không theo path thực để tránh bùng nổ label)
func RequestMetrics() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := c.Route().Path
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Method(), path, strconv.Itoa(c.Response().StatusCode()), time.Since(start))
		return err
	}
}
