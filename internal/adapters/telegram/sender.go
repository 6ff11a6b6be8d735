package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"peer-insights/internal/domain"
	"peer-insights/internal/infra/metrics"
)

// botAPI — часть *tgbotapi.BotAPI, нужная отправителю.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// ReportSender отправляет отчёты аналитики в чат администраторов.
type ReportSender struct {
	bot    botAPI
	chatID int64
	log    zerolog.Logger
}

var _ domain.ReportSender = (*ReportSender)(nil)

// NewReportSender создаёт отправителя для чата chatID.
func NewReportSender(bot botAPI, chatID int64, logger zerolog.Logger) *ReportSender {
	return &ReportSender{bot: bot, chatID: chatID, log: logger}
}

// Send отправляет отчёт текстом по частям и текстовым приложением.
func (s *ReportSender) Send(ctx context.Context, job domain.ExportJob) error {
	parts := splitLines(job.Body, messageLimit)
	for i, part := range parts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.send("send_message", tgbotapi.NewMessage(s.chatID, part)); err != nil {
			return fmt.Errorf("send part %d/%d: %w", i+1, len(parts), err)
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(s.chatID, tgbotapi.FileBytes{
		Name:  attachmentName(job),
		Bytes: []byte(job.Body),
	})
	doc.Caption = job.Title + " (текстовый отчёт, таблицы через запятую)"
	if err := s.send("send_document", doc); err != nil {
		return fmt.Errorf("send attachment: %w", err)
	}
	s.log.Info().Str("job_id", job.ID).Int("parts", len(parts)).Msg("отчёт отправлен")
	return nil
}

func (s *ReportSender) send(op string, c tgbotapi.Chattable) error {
	start := time.Now()
	_, err := s.bot.Send(c)
	metrics.ObserveNetworkRequest("telegram", op, "admin_chat", start, err)
	return err
}

func attachmentName(job domain.ExportJob) string {
	rng := strings.NewReplacer(":", "_", " ", "", "-", "").Replace(job.Range)
	if rng == "" {
		rng = "report"
	}
	return fmt.Sprintf("peer-analytics-%s-%s.txt", rng, job.GeneratedAt.Format("20060102"))
}
