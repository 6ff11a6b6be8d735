package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	retryMaxElapsed = 15 * time.Second
	retryInitial    = 200 * time.Millisecond
	retryMaxDelay   = 3 * time.Second
	retryMaxRetries = uint64(3)
)

// isRetryable сообщает, имеет ли смысл повторить запрос.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "08000", "08003", "08006", "08001", "08004",
			"40001", "40P01",
			"53300",
			"57P01", "57P02", "57P03":
			return true
		}
		return false
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection reset by peer") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection refused")
}

// withRetry выполняет запрос с экспоненциальной задержкой между попытками.
func withRetry[T any](ctx context.Context, op func(context.Context) (T, error)) (T, error) {
	var result T
	var lastErr error

	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(retryMaxElapsed),
		backoff.WithInitialInterval(retryInitial),
		backoff.WithMaxInterval(retryMaxDelay),
	), retryMaxRetries)

	err := backoff.Retry(func() error {
		var err error
		result, err = op(ctx)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return backoff.Permanent(err)
		}
		lastErr = err
		return err
	}, backoff.WithContext(b, ctx))
	if err != nil {
		if lastErr != nil && !errors.Is(err, lastErr) {
			return result, fmt.Errorf("query failed after retries: %w", errors.Join(err, lastErr))
		}
		return result, err
	}
	return result, nil
}
