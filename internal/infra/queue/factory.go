package queue

import (
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"peer-insights/internal/domain"
)

// Open возвращает очередь выгрузок выбранного бэкенда и функцию её закрытия.
func Open(backend string, client *redis.Client, rabbitURL, key string) (domain.ExportQueue, func() error, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "redis":
		if client == nil {
			return nil, nil, fmt.Errorf("redis queue: client is not configured")
		}
		return NewRedisExportQueue(client, key), func() error { return nil }, nil
	case "rabbitmq", "amqp":
		q, err := NewRabbitExportQueue(rabbitURL, key)
		if err != nil {
			return nil, nil, err
		}
		return q, q.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown export backend %q", backend)
}
