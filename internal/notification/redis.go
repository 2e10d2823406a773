package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"consult_crm/internal/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// envelope là payload trên kênh Redis; Origin để instance bỏ qua tin của chính nó
type envelope struct {
	Origin       string       `json:"origin"`
	Notification Notification `json:"notification"`
}

// RedisBridge phát thông báo qua Redis pub/sub cho các instance khác
type RedisBridge struct {
	client  *redis.Client
	channel string
	origin  string
}

// NewRedisClient tạo client Redis từ địa chỉ, mật khẩu và DB
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewRedisBridge tạo bridge trên channel
func NewRedisBridge(client *redis.Client, channel string) *RedisBridge {
	return &RedisBridge{client: client, channel: channel, origin: uuid.NewString()}
}

// Publish gửi thông báo lên channel
func (b *RedisBridge) Publish(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(envelope{Origin: b.origin, Notification: n})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

// Run nhận thông báo từ các instance khác và giao cho hub cục bộ cho tới khi ctx bị huỷ
func (b *RedisBridge) Run(ctx context.Context, hub *Hub) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	log := logger.WithModule("notification").WithField("channel", b.channel)
	log.Info("🔔 [NOTIFY] Đã subscribe Redis channel")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if origin, n, err := b.decode(msg.Payload); err != nil {
				log.WithError(err).Warn("🔔 [NOTIFY] Payload Redis không hợp lệ")
			} else if origin != b.origin {
				hub.Deliver(n)
			}
		}
	}
}

func (b *RedisBridge) decode(payload string) (string, Notification, error) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return "", Notification{}, err
	}
	if env.Notification.Type == "" {
		return "", Notification{}, fmt.Errorf("thiếu type")
	}
	return env.Origin, env.Notification, nil
}
