package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peer-insights/internal/domain"
)

func newTestQueue(t *testing.T) (*RedisExportQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisExportQueue(client, "exports"), mr
}

func sampleJob() domain.ExportJob {
	return domain.ExportJob{
		ID:          "job-1",
		Range:       "7d",
		Title:       "Peer Support Analytics Report",
		Body:        "Metric,Value\nTotal Posts,3\n",
		GeneratedAt: time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC),
		Cause:       domain.ExportCauseManual,
	}
}

func TestRedisQueueAck(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, sampleJob()))

	job, ack, err := q.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleJob(), job)

	list, err := mr.List("exports" + processingSuffix)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, ack(true))
	assert.False(t, mr.Exists("exports"+processingSuffix))
	assert.False(t, mr.Exists("exports"))
}

func TestRedisQueueNackRequeues(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, sampleJob()))

	_, ack, err := q.Receive(ctx)
	require.NoError(t, err)
	require.NoError(t, ack(false))

	list, err := mr.List("exports")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	job, _, err := q.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)
}

func TestRedisQueueRequeueProcessing(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, sampleJob()))
	_, _, err := q.Receive(ctx)
	require.NoError(t, err)

	moved, err := q.Requeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)
}

func TestRedisQueueReceiveHonoursContext(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := q.Receive(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodeDelivery(t *testing.T) {
	job, err := decodeDelivery([]byte(`{"job_id":"a","range":"30d","cause":"scheduled"}`))
	require.NoError(t, err)
	assert.Equal(t, "a", job.ID)
	assert.Equal(t, domain.ExportCauseScheduled, job.Cause)

	_, err = decodeDelivery([]byte(`{"range":"30d"}`))
	assert.Error(t, err)
	_, err = decodeDelivery([]byte(`not json`))
	assert.Error(t, err)
}

func TestOpenBackends(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	q, closeFn, err := Open("redis", client, "", "exports")
	require.NoError(t, err)
	assert.IsType(t, &RedisExportQueue{}, q)
	assert.NoError(t, closeFn())

	_, _, err = Open("redis", nil, "", "exports")
	assert.Error(t, err)

	_, _, err = Open("kafka", client, "", "exports")
	assert.Error(t, err)

	_, _, err = Open("rabbitmq", nil, "", "exports")
	assert.Error(t, err)
}
