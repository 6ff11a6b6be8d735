package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"peer-insights/internal/adapters/httpapi"
	"peer-insights/internal/adapters/repo"
	"peer-insights/internal/domain"
	"peer-insights/internal/infra/config"
	"peer-insights/internal/infra/db"
	httpinfra "peer-insights/internal/infra/http"
	applog "peer-insights/internal/infra/log"
	"peer-insights/internal/infra/metrics"
	"peer-insights/internal/infra/queue"
	"peer-insights/internal/usecase/dashboard"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv, "api")

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(ctx, logger, cfg.MetricsAddr)

	pool, err := db.Connect(ctx, cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: нет подключения к БД")
	}
	defer pool.Close()

	var exports domain.ExportQueue
	if cfg.RedisAddr != "" || cfg.RabbitURL != "" {
		var client *redis.Client
		if cfg.RedisAddr != "" {
			client = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
			defer client.Close()
		}
		q, closeQueue, err := queue.Open(cfg.Export.Backend, client, cfg.RabbitURL, cfg.Export.QueueKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("api: очередь выгрузок недоступна")
		}
		defer closeQueue()
		exports = q
	} else {
		logger.Warn().Msg("api: очередь выгрузок не настроена, выгрузка отключена")
	}

	loc := cfg.Location()
	svc := dashboard.NewService(repo.NewPostgres(pool), exports, logger.With().Str("component", "dashboard").Logger(), dashboard.Options{
		Location:         loc,
		TriageLimit:      cfg.Limits.TriageTopN,
		ReplyConcurrency: cfg.Limits.ReplyConcurrency,
	})

	server := httpinfra.NewServer(logger, 60*time.Second)
	httpapi.NewHandler(svc, loc, logger).Register(server.Router)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("api: ошибка остановки сервера")
		}
	}()

	if err := server.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		logger.Fatal().Err(err).Msg("api: сервер остановлен")
	}
}
