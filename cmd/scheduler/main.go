package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"peer-insights/internal/adapters/repo"
	"peer-insights/internal/domain"
	"peer-insights/internal/infra/cache"
	"peer-insights/internal/infra/config"
	"peer-insights/internal/infra/db"
	applog "peer-insights/internal/infra/log"
	"peer-insights/internal/infra/metrics"
	"peer-insights/internal/infra/queue"
	"peer-insights/internal/usecase/dashboard"
)

const exportLockTTL = 36 * time.Hour

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv, "scheduler")

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(ctx, logger, cfg.MetricsAddr)

	pool, err := db.Connect(ctx, cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("scheduler: нет подключения к БД")
	}
	defer pool.Close()

	if cfg.RedisAddr == "" {
		logger.Fatal().Msg("scheduler: REDIS_ADDR обязателен")
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer client.Close()

	exports, closeQueue, err := queue.Open(cfg.Export.Backend, client, cfg.RabbitURL, cfg.Export.QueueKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("scheduler: очередь выгрузок недоступна")
	}
	defer closeQueue()

	weekly, err := domain.ParseDateRange(cfg.Export.WeeklyRange, "", "", cfg.Location())
	if err != nil {
		logger.Fatal().Err(err).Msg("scheduler: некорректный WEEKLY_EXPORT_RANGE")
	}

	loc := cfg.Location()
	svc := dashboard.NewService(repo.NewPostgres(pool), exports, logger.With().Str("component", "dashboard").Logger(), dashboard.Options{
		Location:         loc,
		TriageLimit:      cfg.Limits.TriageTopN,
		ReplyConcurrency: cfg.Limits.ReplyConcurrency,
	})
	locks := cache.NewRedis(client, "peer-insights:")

	tick := func(now time.Time) {
		if err := svc.RefreshAll(ctx, weekly); err != nil {
			logger.Error().Err(err).Msg("scheduler: часть представлений не обновлена")
		}
		key := "export:" + weekly.Key() + ":" + now.In(loc).Format("2006-01-02")
		err := locks.Once(ctx, key, exportLockTTL, func() error {
			_, err := svc.ExportAnalytics(ctx, weekly, domain.ExportCauseScheduled)
			return err
		})
		if err != nil {
			logger.Error().Err(err).Str("key", key).Msg("scheduler: не удалось поставить выгрузку")
		}
	}

	interval := cfg.RefreshInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	tick(time.Now())
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("scheduler: остановлен")
			return
		case now := <-ticker.C:
			tick(now)
		}
	}
}
