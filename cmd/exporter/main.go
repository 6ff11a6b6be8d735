package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"peer-insights/internal/adapters/telegram"
	"peer-insights/internal/infra/config"
	applog "peer-insights/internal/infra/log"
	"peer-insights/internal/infra/metrics"
	"peer-insights/internal/infra/queue"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv, "exporter")

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(ctx, logger, cfg.MetricsAddr)

	if cfg.Telegram.Token == "" || cfg.Telegram.AdminChatID == 0 {
		logger.Fatal().Msg("exporter: TG_BOT_TOKEN и TG_ADMIN_CHAT_ID обязательны")
	}
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("exporter: не удалось создать бота")
	}
	sender := telegram.NewReportSender(botAPI, cfg.Telegram.AdminChatID, logger.With().Str("component", "telegram").Logger())

	var client *redis.Client
	if cfg.RedisAddr != "" {
		client = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
	}
	exports, closeQueue, err := queue.Open(cfg.Export.Backend, client, cfg.RabbitURL, cfg.Export.QueueKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("exporter: очередь выгрузок недоступна")
	}
	defer closeQueue()

	if rq, ok := exports.(*queue.RedisExportQueue); ok {
		if moved, err := rq.Requeue(ctx); err != nil {
			logger.Warn().Err(err).Msg("exporter: не удалось вернуть незавершённые задачи")
		} else if moved > 0 {
			logger.Info().Int("jobs", moved).Msg("exporter: незавершённые задачи возвращены в очередь")
		}
	}

	logger.Info().Str("backend", cfg.Export.Backend).Msg("exporter: ожидание задач")
	for {
		job, ack, err := exports.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				logger.Info().Msg("exporter: остановлен")
				return
			}
			logger.Error().Err(err).Msg("exporter: ошибка чтения очереди")
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		sendErr := sender.Send(ctx, job)
		metrics.IncExport(cfg.Export.Backend, sendErr)
		if sendErr != nil {
			logger.Error().Err(sendErr).Str("job_id", job.ID).Msg("exporter: не удалось отправить отчёт")
		}
		if err := ack(sendErr == nil); err != nil {
			logger.Error().Err(err).Str("job_id", job.ID).Msg("exporter: не удалось подтвердить задачу")
		}
		if sendErr != nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
		}
	}
}
