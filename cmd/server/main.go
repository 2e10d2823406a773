package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"consult_crm/internal/database"
	"consult_crm/internal/global"
	"consult_crm/internal/logger"

	"github.com/gofiber/fiber/v3"
)

// initLogger khởi tạo logger; cấu hình đọc từ biến môi trường LOG_*
func initLogger() {
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	logger.GetAppLogger().Info("Logger system initialized successfully")
}

// Hàm main
func main() {
	initLogger()
	InitGlobal()
	InitRegistry()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher, redisClient := InitNotification(ctx)
	InitWorkers(ctx)

	app := InitFiberApp()
	log := logger.GetAppLogger()

	go func() {
		<-ctx.Done()
		log.Info("Đang tắt server...")
		// Đóng mọi stream SSE để Shutdown không phải chờ
		dispatcher.Hub().Close()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("Shutdown Fiber thất bại")
		}
	}()

	address := ":" + global.MongoDB_ServerConfig.Address
	log.WithFields(map[string]interface{}{
		"address":  address,
		"protocol": "HTTP",
	}).Info("Starting server with HTTP")
	if err := app.Listen(address, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
		log.Errorf("Error in Fiber Listen: %v", err)
	}

	if redisClient != nil {
		_ = redisClient.Close()
	}
	_ = database.CloseInstance(global.MongoDB_Session)
	log.Info("Server đã dừng")
	logger.Close()
}
