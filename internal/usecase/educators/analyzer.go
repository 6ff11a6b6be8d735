package educators

import (
	"fmt"
	"math"
	"sort"
	"time"

	"peer-insights/internal/domain"
)

const (
	// ResponseSLA — максимальная задержка ответа, при которой он считается своевременным.
	ResponseSLA = 24 * time.Hour
	// ActiveWindow — насколько давно волонтёр должен был появиться, чтобы считаться активным.
	ActiveWindow = 24 * time.Hour
	// LoadWindow — окно подсчёта недавних ответов для нагрузки.
	LoadWindow = 7 * 24 * time.Hour

	highLoadResponses   = 20
	mediumLoadResponses = 10
)

// Input — снимок записей для карточек волонтёров.
type Input struct {
	Sessions []domain.SupportSession
	Replies  []domain.Reply
	Posts    []domain.Post
	// Activity — журналы активности по ID пользователя.
	Activity map[string][]domain.ActivityLog
}

// Analyze считает карточку эффективности одного волонтёра.
func Analyze(educator domain.User, in Input, now time.Time) domain.PeerEducatorActivity {
	return analyze(educator, indexPosts(in.Posts), in, now)
}

func indexPosts(posts []domain.Post) map[string]domain.Post {
	idx := make(map[string]domain.Post, len(posts))
	for _, p := range posts {
		idx[p.ID] = p
	}
	return idx
}

func analyze(educator domain.User, posts map[string]domain.Post, in Input, now time.Time) domain.PeerEducatorActivity {
	lastActive := educator.LastActiveOrEpoch()
	a := domain.PeerEducatorActivity{
		User:       educator,
		UserID:     educator.ID,
		Pseudonym:  educator.Pseudonym,
		Role:       educator.Role,
		LastActive: lastActive,
		IsActive:   now.Sub(lastActive) < ActiveWindow,
	}

	threads := make(map[string]struct{})
	recentSince := now.Add(-LoadWindow)
	for _, r := range in.Replies {
		if !r.IsFromVolunteer || r.AuthorID != educator.ID {
			continue
		}
		a.TotalResponses++
		threads[r.PostID] = struct{}{}
		if r.IsHelpful > 0 {
			a.HelpfulResponses++
		}
		if !r.CreatedAt.Before(recentSince) {
			a.RecentResponses++
		}

		post, ok := posts[r.PostID]
		if !ok {
			continue
		}
		delay := r.CreatedAt.Sub(post.CreatedAt)
		a.TotalResponseTime += delay.Hours()
		a.ResponseCount++
		if delay <= ResponseSLA {
			a.OnTimeResponses++
		} else {
			a.LateResponses++
		}
	}

	a.ActiveThreads = len(threads)
	a.QualityScore = percent(a.HelpfulResponses, a.TotalResponses)
	a.OnTimeRate = percent(a.OnTimeResponses, a.ResponseCount)
	if a.ResponseCount > 0 {
		a.AverageResponseTime = a.TotalResponseTime / float64(a.ResponseCount)
	}
	a.ResponseLoad = classifyLoad(a.RecentResponses)

	for _, s := range in.Sessions {
		if !s.AssignedTo(educator.ID) {
			continue
		}
		a.AssignedSessions++
		switch s.Status {
		case domain.SessionActive:
			a.ActiveSessions++
		case domain.SessionResolved:
			a.ResolvedSessions++
		}
	}
	for _, rec := range in.Activity[educator.ID] {
		if rec.UserID != "" && rec.UserID != educator.ID {
			continue
		}
		if rec.DurationMinutes > 0 {
			a.ActivityMinutes += rec.DurationMinutes
		}
	}
	return a
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func classifyLoad(recent int) domain.ResponseLoad {
	switch {
	case recent >= highLoadResponses:
		return domain.ResponseLoadHigh
	case recent >= mediumLoadResponses:
		return domain.ResponseLoadMedium
	}
	return domain.ResponseLoadLow
}

// Roster считает карточки всех волонтёров, сортирует и фильтрует их.
func Roster(users []domain.User, in Input, sortMode domain.EducatorSort, filter domain.EducatorFilter, now time.Time) ([]domain.PeerEducatorActivity, error) {
	posts := indexPosts(in.Posts)
	out := make([]domain.PeerEducatorActivity, 0)
	for _, u := range users {
		if !u.IsPeerEducator() {
			continue
		}
		out = append(out, analyze(u, posts, in, now))
	}
	if err := Sort(out, sortMode); err != nil {
		return nil, err
	}
	return Filter(out, filter)
}

// Sort упорядочивает карточки на месте. При равенстве сохраняется исходный порядок.
func Sort(items []domain.PeerEducatorActivity, mode domain.EducatorSort) error {
	var less func(i, j int) bool
	switch mode {
	case domain.SortByActivity:
		less = func(i, j int) bool {
			if items[i].IsActive != items[j].IsActive {
				return items[i].IsActive
			}
			return items[i].LastActive.After(items[j].LastActive)
		}
	case domain.SortByResponses:
		less = func(i, j int) bool { return items[i].TotalResponses > items[j].TotalResponses }
	case domain.SortByQuality:
		less = func(i, j int) bool { return items[i].QualityScore > items[j].QualityScore }
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownSortMode, string(mode))
	}
	sort.SliceStable(items, less)
	return nil
}

// Filter оставляет карточки, подходящие под фильтр.
func Filter(items []domain.PeerEducatorActivity, filter domain.EducatorFilter) ([]domain.PeerEducatorActivity, error) {
	var keep func(domain.PeerEducatorActivity) bool
	switch filter {
	case domain.FilterAll:
		return items, nil
	case domain.FilterActive:
		keep = func(a domain.PeerEducatorActivity) bool { return a.IsActive }
	case domain.FilterInactive:
		keep = func(a domain.PeerEducatorActivity) bool { return !a.IsActive }
	case domain.FilterHighLoad:
		keep = func(a domain.PeerEducatorActivity) bool { return a.ResponseLoad == domain.ResponseLoadHigh }
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownFilterMode, string(filter))
	}
	out := make([]domain.PeerEducatorActivity, 0, len(items))
	for _, a := range items {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out, nil
}
