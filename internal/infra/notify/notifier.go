package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/GYM-ClassService/pkg/logger"
)

const publishTimeout = 2 * time.Second

// Notifier шлюз уведомлений. Публикация fire-and-forget:
// сбой доставки не влияет на результат операции бронирования.
type Notifier interface {
	Publish(ctx context.Context, event Event)
}

// RedisNotifier публикует события в Redis канал
type RedisNotifier struct {
	client  redis.UniversalClient
	channel string
	log     *logger.Logger
}

// NewRedisNotifier создает новый notifier поверх Redis Pub/Sub
func NewRedisNotifier(client redis.UniversalClient, channel string, log *logger.Logger) *RedisNotifier {
	return &RedisNotifier{
		client:  client,
		channel: channel,
		log:     log,
	}
}

// Publish публикует событие в канал
// Ошибки сериализации и доставки только логируются
func (n *RedisNotifier) Publish(ctx context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		n.log.Error("notify: failed to marshal event %s: %v", event.Type, err)
		return
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := n.client.Publish(publishCtx, n.channel, payload).Err(); err != nil {
		n.log.Error("notify: failed to publish event %s for member %d: %v", event.Type, event.MemberID, err)
		return
	}

	n.log.Debug("notify: published event %s for member %d", event.Type, event.MemberID)
}

// NoopNotifier заглушка для окружений без настроенного Redis
type NoopNotifier struct{}

// NewNoopNotifier создает notifier, который ничего не публикует
func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

// Publish ничего не делает
func (n *NoopNotifier) Publish(_ context.Context, _ Event) {}
