package middleware

import (
	"fmt"
	"strings"
	"time"

	"consult_crm/internal/common"
	"consult_crm/internal/logger"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// SessionClaims là dữ liệu trong JWT do hệ thống đăng nhập phát hành
type SessionClaims struct {
	UserName string `json:"userName"`
	Role     string `json:"role"`
	jwt.StandardClaims
}

// GenerateToken ký token HS256 cho user (dùng cho môi trường dev và test)
func GenerateToken(secret, userName, role string, ttl time.Duration) (string, error) {
	claims := SessionClaims{
		UserName: userName,
		Role:     role,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(ttl).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken kiểm tra chữ ký và hạn của token
func ParseToken(secret, tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, common.ErrTokenInvalid
	}
	if strings.TrimSpace(claims.UserName) == "" {
		return nil, common.ErrTokenInvalid
	}
	return claims, nil
}

// extractToken lấy token từ header Authorization hoặc query ?token= (EventSource không gửi được header)
func extractToken(c fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		if t := c.Query("token"); t != "" {
			return t, nil
		}
		return "", common.ErrTokenMissing
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", common.ErrTokenInvalid
	}
	return parts[1], nil
}

// AuthMiddleware xác thực session và gắn user_name, is_admin vào context
func AuthMiddleware(secret, adminRole string) fiber.Handler {
	return func(c fiber.Ctx) error {
		token, err := extractToken(c)
		if err != nil {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":   c.Path(),
				"method": c.Method(),
			}).Warn("❌ [AUTH] Missing or malformed Authorization header")
			return HandleErrorResponse(c, err)
		}

		claims, err := ParseToken(secret, token)
		if err != nil {
			logger.GetAppLogger().WithField("path", c.Path()).Warn("❌ [AUTH] Token không hợp lệ")
			return HandleErrorResponse(c, err)
		}

		c.Locals("user_name", claims.UserName)
		c.Locals("is_admin", claims.Role == adminRole)
		return c.Next()
	}
}

// AdminOnly chỉ cho phép session admin đi tiếp
func AdminOnly() fiber.Handler {
	return func(c fiber.Ctx) error {
		if isAdmin, _ := c.Locals("is_admin").(bool); !isAdmin {
			return HandleErrorResponse(c, common.ErrForbidden)
		}
		return c.Next()
	}
}
