package analytics

import (
	"fmt"
	"time"

	"peer-insights/internal/domain"
)

// Input — снимок записей для аналитики администратора.
type Input struct {
	Posts       []domain.Post
	Replies     []domain.Reply
	Escalations []domain.Escalation
	Users       []domain.User
}

// Window возвращает границы периода. Фиксированные периоды начинаются с начала дня
// now−N дней и заканчиваются концом текущего дня, all — от начала эпохи до now.
func Window(r domain.DateRange, now time.Time, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = now.Location()
	}
	local := now.In(loc)
	switch r.Kind {
	case domain.Range7Days, domain.Range30Days, domain.Range90Days:
		return startOfDay(local.AddDate(0, 0, -r.Days())), endOfDay(local), nil
	case domain.RangeAll:
		return time.Unix(0, 0).In(loc), local, nil
	case domain.RangeCustom:
		if r.Start.IsZero() || r.End.IsZero() {
			return time.Time{}, time.Time{}, domain.ErrInvalidCustomRange
		}
		start, end := startOfDay(r.Start.In(loc)), endOfDay(r.End.In(loc))
		if end.Before(start) {
			return time.Time{}, time.Time{}, domain.ErrInvalidCustomRange
		}
		return start, end, nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", domain.ErrUnknownDateRange, string(r.Kind))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

func within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// Compute считает сводку за период. Категория поста вне перечня даёт ошибку.
func Compute(in Input, r domain.DateRange, now time.Time, loc *time.Location) (domain.Analytics, error) {
	start, end, err := Window(r, now, loc)
	if err != nil {
		return domain.Analytics{}, err
	}
	a := domain.Analytics{Start: start, End: end, PostsByCategory: domain.NewCategoryCounts()}

	var windowed []domain.Post
	for _, p := range in.Posts {
		if !within(p.CreatedAt, start, end) {
			continue
		}
		if err := a.PostsByCategory.Add(p.Category); err != nil {
			return domain.Analytics{}, fmt.Errorf("пост %s: %w", p.ID, err)
		}
		windowed = append(windowed, p)
	}
	a.TotalPosts = len(windowed)

	for _, e := range in.Escalations {
		if within(e.CreatedAt, start, end) {
			a.EscalationCount++
		}
	}

	// Верхняя граница периода к активности не применяется.
	for _, u := range in.Users {
		if !u.LastActiveOrEpoch().Before(start) {
			a.ActiveUsers++
		}
	}

	a.ResponseTime = averageFirstResponse(windowed, in.Replies)
	return a, nil
}

func averageFirstResponse(posts []domain.Post, replies []domain.Reply) float64 {
	if len(posts) == 0 || len(replies) == 0 {
		return 0
	}
	first := make(map[string]time.Time, len(posts))
	for _, r := range replies {
		if at, ok := first[r.PostID]; !ok || r.CreatedAt.Before(at) {
			first[r.PostID] = r.CreatedAt
		}
	}
	var (
		total float64
		count int
	)
	for _, p := range posts {
		at, ok := first[p.ID]
		if !ok || at.Before(p.CreatedAt) {
			continue
		}
		total += at.Sub(p.CreatedAt).Minutes()
		count++
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}
