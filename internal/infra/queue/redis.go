package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"peer-insights/internal/domain"
	"peer-insights/internal/infra/metrics"
)

const processingSuffix = ":processing"

// RedisExportQueue реализует очередь выгрузок на базе Redis lists.
// Полученная задача лежит в списке обработки до подтверждения.
type RedisExportQueue struct {
	client *redis.Client
	key    string
}

var _ domain.ExportQueue = (*RedisExportQueue)(nil)

// NewRedisExportQueue создаёт очередь по указанному ключу.
func NewRedisExportQueue(client *redis.Client, key string) *RedisExportQueue {
	return &RedisExportQueue{client: client, key: key}
}

// Enqueue публикует задачу в очередь.
func (q *RedisExportQueue) Enqueue(ctx context.Context, job domain.ExportJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	start := time.Now()
	err = q.client.LPush(ctx, q.key, payload).Err()
	metrics.ObserveNetworkRequest("redis", "lpush", q.key, start, err)
	if err != nil {
		return fmt.Errorf("push job: %w", err)
	}
	return nil
}

// Receive блокирующе читает задачу и переносит её в список обработки.
func (q *RedisExportQueue) Receive(ctx context.Context) (domain.ExportJob, domain.ExportAckFunc, error) {
	processing := q.key + processingSuffix
	for {
		if err := ctx.Err(); err != nil {
			return domain.ExportJob{}, nil, err
		}

		raw, err := q.client.BRPopLPush(ctx, q.key, processing, time.Second).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				if ctx.Err() != nil {
					return domain.ExportJob{}, nil, ctx.Err()
				}
				continue
			}
			if errors.Is(err, redis.Nil) {
				continue
			}
			return domain.ExportJob{}, nil, err
		}

		var job domain.ExportJob
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			// битую задачу повторять бессмысленно
			_ = q.client.LRem(context.Background(), processing, 1, raw).Err()
			return domain.ExportJob{}, nil, fmt.Errorf("decode job: %w", err)
		}
		ack := func(success bool) error {
			bg := context.Background()
			if err := q.client.LRem(bg, processing, 1, raw).Err(); err != nil {
				return fmt.Errorf("ack job: %w", err)
			}
			if success {
				return nil
			}
			if err := q.client.LPush(bg, q.key, raw).Err(); err != nil {
				return fmt.Errorf("requeue job: %w", err)
			}
			return nil
		}
		return job, ack, nil
	}
}

// Requeue возвращает в очередь задачи, оставшиеся в списке обработки после падения воркера.
func (q *RedisExportQueue) Requeue(ctx context.Context) (int, error) {
	processing := q.key + processingSuffix
	moved := 0
	for {
		err := q.client.RPopLPush(ctx, processing, q.key).Err()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, err
		}
		moved++
	}
}
