package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng
type Configuration struct {
	Address               string `env:"ADDRESS" envDefault:"8080"`                 // Cổng server
	JwtSecret             string `env:"JWT_SECRET,required"`                       // Bí mật JWT (token do hệ thống đăng nhập phát hành)
	AdminRoleName         string `env:"ADMIN_ROLE_NAME" envDefault:"admin"`        // Tên role được coi là admin
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"`           // URL kết nối cơ sở dữ liệu
	MongoDB_DBName        string `env:"MONGODB_DBNAME,required"`                   // Tên cơ sở dữ liệu
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`               // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"` // Cho phép gửi credentials
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100"`           // Số request tối đa trong window
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`         // Thời gian window (giây)
	RateLimit_Enabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`      // Bật/tắt rate limiting

	// Nhãn status hợp lệ của khách theo thứ tự tiến trình (phân cách bởi dấu phẩy, bỏ trống = không giới hạn)
	ClientStatusLabels string `env:"CLIENT_STATUS_LABELS"`

	// Batch rotation
	BatchPageSize int    `env:"BATCH_PAGE_SIZE" envDefault:"20"`   // Số khách mỗi batch
	BatchWrapMode string `env:"BATCH_WRAP_MODE" envDefault:"fill"` // fill | short

	// Deadline tracking
	DeadlineNearThresholdSeconds int `env:"DEADLINE_NEAR_THRESHOLD_SECONDS" envDefault:"120"` // Ngưỡng "sắp đến hạn"
	DeadlineScanIntervalSeconds  int `env:"DEADLINE_SCAN_INTERVAL_SECONDS" envDefault:"60"`   // Chu kỳ quét deadline

	// Redis (optional) - phát notification giữa nhiều instance
	RedisAddr          string `env:"REDIS_ADDR"`
	RedisPassword      string `env:"REDIS_PASSWORD"`
	RedisDB            int    `env:"REDIS_DB" envDefault:"0"`
	RedisNotifyChannel string `env:"REDIS_NOTIFY_CHANNEL" envDefault:"crm:notifications"`

	// SMTP (optional) - gửi email tổng hợp các mục quá hạn
	SMTPHost      string `env:"SMTP_HOST"`
	SMTPPort      int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername  string `env:"SMTP_USERNAME"`
	SMTPPassword  string `env:"SMTP_PASSWORD"`
	SMTPFrom      string `env:"SMTP_FROM"`
	NotifyEmailTo string `env:"NOTIFY_EMAIL_TO"` // Danh sách email nhận, phân cách bởi dấu phẩy
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	// Mặc định sử dụng môi trường development
	goEnv := os.Getenv("GO_ENV")
	if goEnv == "" {
		goEnv = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Tìm thư mục config/env bằng cách đi lên thư mục cha
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, fmt.Sprintf("%s.env", goEnv))
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig đọc cấu hình từ file env (nếu có) rồi parse từ biến môi trường.
// Không có file env vẫn chạy được nếu các biến bắt buộc đã được set sẵn.
func NewConfig() (*Configuration, error) {
	if envPath := getEnvPath(); envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
			// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
			fmt.Printf("Không thể load file env tại %s: %v\n", envPath, err)
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("lỗi khi parse config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize kiểm tra và đặt lại các giá trị không hợp lệ
func (c *Configuration) normalize() error {
	if c.BatchPageSize <= 0 {
		return fmt.Errorf("BATCH_PAGE_SIZE phải > 0, nhận được %d", c.BatchPageSize)
	}
	switch c.BatchWrapMode {
	case "fill", "short":
	default:
		return fmt.Errorf("BATCH_WRAP_MODE không hợp lệ: %q (fill | short)", c.BatchWrapMode)
	}
	if c.DeadlineNearThresholdSeconds < 0 {
		c.DeadlineNearThresholdSeconds = 0
	}
	if c.DeadlineScanIntervalSeconds < 10 {
		c.DeadlineScanIntervalSeconds = 60
	}
	return nil
}
