package main

import (
	"context"
	"time"

	clientsvc "consult_crm/internal/api/client/service"
	verisvc "consult_crm/internal/api/verification/service"
	"consult_crm/internal/global"
	"consult_crm/internal/logger"
	"consult_crm/internal/notification"
	"consult_crm/internal/worker"

	"github.com/redis/go-redis/v9"
)

// sessionBuffer là số thông báo tối đa chờ gửi cho một session
const sessionBuffer = 64

// InitNotification tạo hub + dispatcher dùng chung, nối Redis bridge nếu có cấu hình
func InitNotification(ctx context.Context) (*notification.Dispatcher, *redis.Client) {
	cfg := global.MongoDB_ServerConfig
	log := logger.GetAppLogger()
	hub := notification.NewHub(sessionBuffer)

	var (
		publisher notification.Publisher
		client    *redis.Client
	)
	if cfg.RedisAddr != "" {
		client = notification.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.WithError(err).Error("🔔 [NOTIFY] Không kết nối được Redis, chỉ phát thông báo trong instance này")
			_ = client.Close()
			client = nil
		} else {
			bridge := notification.NewRedisBridge(client, cfg.RedisNotifyChannel)
			publisher = bridge
			goSafe("🔔 [NOTIFY] Redis bridge", func() {
				if err := bridge.Run(ctx, hub); err != nil {
					log.WithError(err).Error("🔔 [NOTIFY] Redis bridge dừng")
				}
			})
		}
	}

	d := notification.NewDispatcher(hub, publisher)
	notification.SetDefault(d)
	log.Info("🔔 [NOTIFY] Notification dispatcher initialized")
	return d, client
}

// InitWorkers chạy worker quét deadline
func InitWorkers(ctx context.Context) {
	cfg := global.MongoDB_ServerConfig
	log := logger.GetAppLogger()

	verificationSvc, err := verisvc.NewVerificationService()
	if err != nil {
		log.WithError(err).Error("⏰ [DEADLINE] Không tạo được VerificationService, bỏ qua deadline scanner")
		return
	}
	clientSvc, err := clientsvc.NewClientService(verificationSvc)
	if err != nil {
		log.WithError(err).Error("⏰ [DEADLINE] Không tạo được ClientService, bỏ qua deadline scanner")
		return
	}

	var mailer worker.OverdueMailer
	if ch := notification.NewEmailChannel(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, cfg.NotifyEmailTo); ch != nil {
		mailer = ch
	}

	scanner := worker.NewDeadlineScanner(
		clientSvc,
		mailer,
		clientSvc.Threshold(),
		time.Duration(cfg.DeadlineScanIntervalSeconds)*time.Second,
	)
	goSafe("⏰ [DEADLINE] Deadline scanner", func() { scanner.Start(ctx) })
}

// goSafe chạy fn trong goroutine riêng với recover
func goSafe(name string, fn func()) {
	log := logger.GetAppLogger()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(map[string]interface{}{
					"panic": r,
				}).Errorf("%s goroutine panic", name)
			}
		}()
		fn()
		log.Warnf("%s đã dừng", name)
	}()
}
