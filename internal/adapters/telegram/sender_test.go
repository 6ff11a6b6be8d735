package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peer-insights/internal/domain"
)

type fakeBot struct {
	sent   []tgbotapi.Chattable
	failAt int
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.sent = append(b.sent, c)
	if b.failAt > 0 && len(b.sent) == b.failAt {
		return tgbotapi.Message{}, errors.New("telegram unavailable")
	}
	return tgbotapi.Message{MessageID: len(b.sent)}, nil
}

func exportJob(body string) domain.ExportJob {
	return domain.ExportJob{
		ID:          "job-1",
		Range:       "7d",
		Title:       "Peer Support Analytics Report",
		Body:        body,
		GeneratedAt: time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC),
	}
}

func TestReportSenderSendsTextAndAttachment(t *testing.T) {
	bot := &fakeBot{}
	s := NewReportSender(bot, -100500, zerolog.Nop())
	require.NoError(t, s.Send(context.Background(), exportJob("Metric,Value\nTotal Posts,3\n")))

	require.Len(t, bot.sent, 2)
	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(-100500), msg.ChatID)
	assert.Equal(t, "Metric,Value\nTotal Posts,3", msg.Text)

	doc, ok := bot.sent[1].(tgbotapi.DocumentConfig)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(doc.Caption, "Peer Support Analytics Report"))
	file, ok := doc.File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.Equal(t, "peer-analytics-7d-20260520.txt", file.Name)
}

func TestReportSenderSplitsLongReport(t *testing.T) {
	bot := &fakeBot{}
	s := NewReportSender(bot, 1, zerolog.Nop())
	body := strings.Repeat(strings.Repeat("x", 99)+"\n", 100)
	require.NoError(t, s.Send(context.Background(), exportJob(body)))
	assert.Len(t, bot.sent, 4)
}

func TestReportSenderStopsOnError(t *testing.T) {
	bot := &fakeBot{failAt: 1}
	s := NewReportSender(bot, 1, zerolog.Nop())
	err := s.Send(context.Background(), exportJob("Metric,Value\n"))
	require.Error(t, err)
	assert.Len(t, bot.sent, 1)
}

func TestAttachmentNameCustomRange(t *testing.T) {
	job := exportJob("")
	job.Range = "custom:2026-05-01 - 2026-05-10"
	assert.Equal(t, "peer-analytics-custom_2026050120260510-20260520.txt", attachmentName(job))
}
