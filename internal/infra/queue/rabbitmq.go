package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"peer-insights/internal/domain"
	"peer-insights/internal/infra/metrics"
)

// RabbitExportQueue реализует очередь выгрузок поверх AMQP 0-9-1.
type RabbitExportQueue struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string

	mu         sync.Mutex
	deliveries <-chan amqp.Delivery
}

var _ domain.ExportQueue = (*RabbitExportQueue)(nil)

// NewRabbitExportQueue подключается к брокеру и объявляет устойчивую очередь.
func NewRabbitExportQueue(amqpURL, queue string) (*RabbitExportQueue, error) {
	if amqpURL == "" {
		return nil, errors.New("amqp url is empty")
	}
	if queue == "" {
		return nil, errors.New("queue name is empty")
	}
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}
	return &RabbitExportQueue{conn: conn, ch: ch, queue: queue}, nil
}

// Enqueue публикует задачу в очередь.
func (q *RabbitExportQueue) Enqueue(ctx context.Context, job domain.ExportJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	start := time.Now()
	err = q.ch.PublishWithContext(ctx, "", q.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID,
		Timestamp:    job.GeneratedAt,
		Body:         payload,
	})
	metrics.ObserveNetworkRequest("rabbitmq", "publish", q.queue, start, err)
	if err != nil {
		return fmt.Errorf("publish job: %w", err)
	}
	return nil
}

// Receive блокирующе читает задачу. Подтверждение выполняется через возвращённую функцию.
func (q *RabbitExportQueue) Receive(ctx context.Context) (domain.ExportJob, domain.ExportAckFunc, error) {
	deliveries, err := q.consume()
	if err != nil {
		return domain.ExportJob{}, nil, err
	}
	select {
	case <-ctx.Done():
		return domain.ExportJob{}, nil, ctx.Err()
	case d, ok := <-deliveries:
		if !ok {
			return domain.ExportJob{}, nil, errors.New("rabbitmq: delivery channel closed")
		}
		job, err := decodeDelivery(d.Body)
		if err != nil {
			_ = d.Nack(false, false)
			return domain.ExportJob{}, nil, err
		}
		ack := func(success bool) error {
			if success {
				return d.Ack(false)
			}
			return d.Nack(false, true)
		}
		return job, ack, nil
	}
}

func (q *RabbitExportQueue) consume() (<-chan amqp.Delivery, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.deliveries != nil {
		return q.deliveries, nil
	}
	deliveries, err := q.ch.Consume(q.queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume: %w", err)
	}
	q.deliveries = deliveries
	return deliveries, nil
}

// Close закрывает канал и соединение.
func (q *RabbitExportQueue) Close() error {
	return errors.Join(q.ch.Close(), q.conn.Close())
}

func decodeDelivery(body []byte) (domain.ExportJob, error) {
	var job domain.ExportJob
	if err := json.Unmarshal(body, &job); err != nil {
		return domain.ExportJob{}, fmt.Errorf("decode job: %w", err)
	}
	if job.ID == "" {
		return domain.ExportJob{}, errors.New("decode job: empty job_id")
	}
	return job, nil
}
