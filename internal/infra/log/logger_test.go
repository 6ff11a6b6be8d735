package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "prod", "api")
	logger.Debug().Msg("скрыто")
	logger.Info().Msg("видно")
	out := buf.String()
	if strings.Contains(out, "скрыто") {
		t.Fatalf("debug не должен попадать в лог вне dev")
	}
	if !strings.Contains(out, `"service":"api"`) {
		t.Fatalf("ожидали поле service, получили %s", out)
	}

	buf.Reset()
	dev := newLogger(&buf, "dev", "")
	dev.Debug().Msg("отладка")
	if !strings.Contains(buf.String(), "отладка") {
		t.Fatalf("в dev ожидали debug-уровень")
	}
}
