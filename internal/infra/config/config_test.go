package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REFRESH_INTERVAL", "30s")
	cfg := Load()
	if cfg.Limits.TriageTopN != 5 {
		t.Fatalf("ожидали 5 элементов в панели, получили %d", cfg.Limits.TriageTopN)
	}
	if cfg.RefreshInterval != 30*time.Second {
		t.Fatalf("ожидали 30s, получили %s", cfg.RefreshInterval)
	}
	if cfg.Export.Backend != "redis" {
		t.Fatalf("ожидали redis по умолчанию, получили %s", cfg.Export.Backend)
	}
}

func TestLocationFallback(t *testing.T) {
	cfg := AppConfig{TZ: "Mars/Olympus"}
	if cfg.Location() != time.UTC {
		t.Fatalf("ожидали UTC для неизвестного пояса")
	}
}
