package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	TZ          string `envconfig:"TZ" default:"Africa/Harare"`
	Port        int    `envconfig:"PORT" default:"8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr string `envconfig:"REDIS_ADDR"`
	RabbitURL string `envconfig:"RABBITMQ_URL"`

	Telegram struct {
		Token       string `envconfig:"TG_BOT_TOKEN"`
		AdminChatID int64  `envconfig:"TG_ADMIN_CHAT_ID"`
	} `envconfig:""`

	Limits struct {
		TriageTopN       int `envconfig:"TRIAGE_TOP_N" default:"5"`
		ReplyConcurrency int `envconfig:"REPLY_FETCH_CONCURRENCY" default:"8"`
	} `envconfig:""`

	Export struct {
		Backend     string `envconfig:"EXPORT_BACKEND" default:"redis"`
		QueueKey    string `envconfig:"EXPORT_QUEUE_KEY" default:"analytics_exports"`
		WeeklyRange string `envconfig:"WEEKLY_EXPORT_RANGE" default:"7d"`
	} `envconfig:""`

	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"1m"`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}

// Location возвращает часовой пояс для границ дней. Некорректный TZ даёт UTC.
func (c AppConfig) Location() *time.Location {
	if c.TZ == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.TZ)
	if err != nil {
		return time.UTC
	}
	return loc
}
