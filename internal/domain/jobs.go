package domain

import (
	"context"
	"time"
)

// ExportCause описывает источник выгрузки отчёта.
type ExportCause string

const (
	// ExportCauseManual — администратор запросил выгрузку вручную.
	ExportCauseManual ExportCause = "manual"
	// ExportCauseScheduled — выгрузка запланирована по расписанию.
	ExportCauseScheduled ExportCause = "scheduled"
)

// ExportJob содержит готовый отчёт аналитики для передачи механизму рассылки.
type ExportJob struct {
	ID          string      `json:"job_id"`
	Range       string      `json:"range"`
	Title       string      `json:"title"`
	Body        string      `json:"body"`
	GeneratedAt time.Time   `json:"generated_at"`
	Cause       ExportCause `json:"cause"`
}

// ExportQueue описывает очередь выгрузок.
type ExportQueue interface {
	Enqueue(ctx context.Context, job ExportJob) error
	Receive(ctx context.Context) (ExportJob, ExportAckFunc, error)
}

// ExportAckFunc подтверждает успешную обработку или запрашивает повтор доставки задачи.
type ExportAckFunc func(success bool) error

// ReportSender доставляет отчёт получателю.
type ReportSender interface {
	Send(ctx context.Context, job ExportJob) error
}
