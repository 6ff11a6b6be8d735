package triage

import (
	"sort"

	"peer-insights/internal/domain"
)

// DefaultLimit — размер панелей разбора по умолчанию.
const DefaultLimit = 5

// TopEscalatedPosts возвращает n постов с наибольшим уровнем эскалации.
func TopEscalatedPosts(posts []domain.Post, n int) []domain.Post {
	out := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		if p.EscalationLevel.Escalated() {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EscalationLevel.Rank() > out[j].EscalationLevel.Rank()
	})
	return truncate(out, n)
}

// PendingReports возвращает n самых свежих необработанных жалоб.
func PendingReports(reports []domain.Report, n int) []domain.Report {
	out := make([]domain.Report, 0, len(reports))
	for _, r := range reports {
		if r.Status == domain.ReportPending {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return truncate(out, n)
}

// PendingSessions возвращает n ожидающих сессий: сначала срочные, внутри приоритета самые давние.
func PendingSessions(sessions []domain.SupportSession, n int) []domain.SupportSession {
	out := make([]domain.SupportSession, 0, len(sessions))
	for _, s := range sessions {
		if s.Status == domain.SessionPending {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if pi, pj := out[i].Priority.Rank(), out[j].Priority.Rank(); pi != pj {
			return pi > pj
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return truncate(out, n)
}

func truncate[T any](items []T, n int) []T {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}

// Board — содержимое панелей разбора.
type Board struct {
	Escalations []domain.Post           `json:"escalations"`
	Reports     []domain.Report         `json:"reports"`
	Sessions    []domain.SupportSession `json:"sessions"`
}

// BuildBoard собирает все панели разбора с одинаковым лимитом.
func BuildBoard(posts []domain.Post, reports []domain.Report, sessions []domain.SupportSession, n int) Board {
	return Board{
		Escalations: TopEscalatedPosts(posts, n),
		Reports:     PendingReports(reports, n),
		Sessions:    PendingSessions(sessions, n),
	}
}
