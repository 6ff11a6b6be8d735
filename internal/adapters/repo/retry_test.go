package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(t *testing.T) {
	t.Helper()
	prevInitial, prevMax := retryInitial, retryMaxDelay
	retryInitial, retryMaxDelay = time.Millisecond, 2*time.Millisecond
	t.Cleanup(func() { retryInitial, retryMaxDelay = prevInitial, prevMax })
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, isRetryable(nil))
	assert.True(t, isRetryable(&pgconn.PgError{Code: "40001"}))
	assert.True(t, isRetryable(&pgconn.PgError{Code: "57P01"}))
	assert.False(t, isRetryable(&pgconn.PgError{Code: "42601"}))
	assert.True(t, isRetryable(errors.New("read: connection reset by peer")))
	assert.False(t, isRetryable(errors.New("invalid input syntax")))
}

func TestWithRetryRecovers(t *testing.T) {
	fastRetry(t)
	calls := 0
	got, err := withRetry(context.Background(), func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, &pgconn.PgError{Code: "40P01"}
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)
}

func TestWithRetryStopsOnPermanent(t *testing.T) {
	fastRetry(t)
	calls := 0
	syntax := &pgconn.PgError{Code: "42601"}
	_, err := withRetry(context.Background(), func(context.Context) (int, error) {
		calls++
		return 0, syntax
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, syntax)
	assert.Equal(t, 1, calls)
}

func TestWithRetryGivesUp(t *testing.T) {
	fastRetry(t)
	calls := 0
	_, err := withRetry(context.Background(), func(context.Context) (int, error) {
		calls++
		return 0, &pgconn.PgError{Code: "08006"}
	})
	require.Error(t, err)
	assert.Equal(t, int(retryMaxRetries)+1, calls)
}

func TestWithRetryKeepsContextCause(t *testing.T) {
	fastRetry(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	conn := &pgconn.PgError{Code: "08006"}
	_, err := withRetry(ctx, func(context.Context) (int, error) {
		cancel()
		return 0, conn
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, conn)
}
