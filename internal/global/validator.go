package global

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// InitValidator khởi tạo và đăng ký các custom validator
func InitValidator() {
	Validate = validator.New()

	_ = Validate.RegisterValidation("no_xss", validateNoXSS)
	_ = Validate.RegisterValidation("not_blank", validateNotBlank)
	_ = Validate.RegisterValidation("crm_flag", validateFlag)
	_ = Validate.RegisterValidation("crm_item_status", validateItemStatus)
	_ = Validate.RegisterValidation("crm_client_status", validateClientStatus)
}

// ValidateStruct validate struct bằng validator toàn cục (tự khởi tạo nếu chưa có)
func ValidateStruct(s interface{}) error {
	if Validate == nil {
		InitValidator()
	}
	return Validate.Struct(s)
}

// validateNoXSS kiểm tra XSS trong text tự do (comment, commitment, ...)
func validateNoXSS(fl validator.FieldLevel) bool {
	value := strings.ToLower(fl.Field().String())
	dangerousPatterns := []string{
		"<script",
		"javascript:",
		"onerror=",
		"onload=",
		"onclick=",
		"document.cookie",
		"<iframe",
		"<object",
		"<embed",
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(value, pattern) {
			return false
		}
	}
	return true
}

// validateNotBlank từ chối chuỗi chỉ gồm khoảng trắng
func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// validateFlag chỉ chấp nhận red | yellow | green
func validateFlag(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "red", "yellow", "green":
		return true
	}
	return false
}

// validateItemStatus chấp nhận trạng thái của commitment (done | not done)
// và critical highlight (catered | not catered)
func validateItemStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "done", "not done", "catered", "not catered":
		return true
	}
	return false
}

// DefaultClientStatus là status của khách mới tạo, luôn hợp lệ
const DefaultClientStatus = "new"

// ClientStatusAllowed kiểm tra label theo CLIENT_STATUS_LABELS; chưa cấu hình thì nhận mọi label
func ClientStatusAllowed(status string) bool {
	if status == DefaultClientStatus {
		return true
	}
	if MongoDB_ServerConfig == nil || strings.TrimSpace(MongoDB_ServerConfig.ClientStatusLabels) == "" {
		return true
	}
	for _, label := range strings.Split(MongoDB_ServerConfig.ClientStatusLabels, ",") {
		if strings.TrimSpace(label) == status {
			return true
		}
	}
	return false
}

func validateClientStatus(fl validator.FieldLevel) bool {
	return ClientStatusAllowed(fl.Field().String())
}
