package leaderboard

import (
	"fmt"
	"sort"
	"time"

	"peer-insights/internal/domain"
)

// ExpertThreshold — минимальное число ответов в одной категории для рейтинга экспертов.
const ExpertThreshold = 20

const anonymousPseudonym = "Anonymous"

// Input — снимок записей, из которых строится рейтинг.
type Input struct {
	Posts   []domain.Post
	Replies []domain.Reply
	Users   []domain.User
	Badges  []domain.BadgeAward
	Streaks []domain.StreakRecord
}

// Build строит рейтинг по категории за окно. Позиции идут по убыванию значения,
// при равенстве сохраняется порядок первого появления пользователя во входных данных.
func Build(category domain.LeaderboardCategory, window domain.TimeWindow, in Input, now time.Time) ([]domain.LeaderboardEntry, error) {
	in, err := FilterWindow(in, window, now)
	if err != nil {
		return nil, err
	}

	var t *tally
	switch category {
	case domain.LeaderboardHelpful:
		t = helpful(in)
	case domain.LeaderboardEngaged:
		t = engaged(in)
	case domain.LeaderboardStreaks:
		t = streaks(in)
	case domain.LeaderboardBadges:
		t = badges(in)
	case domain.LeaderboardCategoryExpert:
		t, err = categoryExperts(in)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownLeaderboardCategory, string(category))
	}
	return t.ranked(), nil
}

// FilterWindow отбрасывает посты, ответы и значки старше начала окна.
// Серии не привязаны ко времени и проходят без изменений.
func FilterWindow(in Input, window domain.TimeWindow, now time.Time) (Input, error) {
	switch window {
	case domain.WindowAllTime, "":
		return in, nil
	case domain.WindowWeekly, domain.WindowMonthly:
	default:
		return Input{}, fmt.Errorf("%w: %q", domain.ErrUnknownWindow, string(window))
	}
	since := window.Since(now)
	out := Input{Users: in.Users, Streaks: in.Streaks}
	for _, p := range in.Posts {
		if !p.CreatedAt.Before(since) {
			out.Posts = append(out.Posts, p)
		}
	}
	for _, r := range in.Replies {
		if !r.CreatedAt.Before(since) {
			out.Replies = append(out.Replies, r)
		}
	}
	for _, b := range in.Badges {
		if !b.AwardedAt.Before(since) {
			out.Badges = append(out.Badges, b)
		}
	}
	return out, nil
}

func helpful(in Input) *tally {
	t := newTally()
	for _, r := range in.Replies {
		if r.IsHelpful <= 0 {
			continue
		}
		t.add(r.AuthorID, r.AuthorPseudonym, r.IsHelpful)
	}
	return t
}

func engaged(in Input) *tally {
	t := newTally()
	for _, p := range in.Posts {
		t.add(p.AuthorID, p.AuthorPseudonym, 1)
	}
	for _, r := range in.Replies {
		t.add(r.AuthorID, r.AuthorPseudonym, 1)
	}
	return t
}

func streaks(in Input) *tally {
	longest := make(map[string]int, len(in.Streaks))
	for _, s := range in.Streaks {
		if s.LongestStreak > longest[s.UserID] {
			longest[s.UserID] = s.LongestStreak
		}
	}
	t := newTally()
	for _, u := range in.Users {
		if n := longest[u.ID]; n > 0 {
			t.set(u.ID, u.Pseudonym, n)
		}
	}
	return t
}

func badges(in Input) *tally {
	pseudonyms := make(map[string]string, len(in.Users))
	for _, u := range in.Users {
		pseudonyms[u.ID] = u.Pseudonym
	}
	t := newTally()
	for _, b := range in.Badges {
		name, ok := pseudonyms[b.UserID]
		if !ok || name == "" {
			name = anonymousPseudonym
		}
		t.add(b.UserID, name, 1)
	}
	return t
}

func categoryExperts(in Input) (*tally, error) {
	posts := make(map[string]domain.Post, len(in.Posts))
	for _, p := range in.Posts {
		posts[p.ID] = p
	}

	type expert struct {
		pseudonym string
		counts    domain.CategoryCounts
	}
	var order []string
	perUser := make(map[string]*expert)
	for _, r := range in.Replies {
		post, ok := posts[r.PostID]
		if !ok {
			continue
		}
		e, ok := perUser[r.AuthorID]
		if !ok {
			e = &expert{pseudonym: r.AuthorPseudonym, counts: domain.NewCategoryCounts()}
			perUser[r.AuthorID] = e
			order = append(order, r.AuthorID)
		}
		if err := e.counts.Add(post.Category); err != nil {
			return nil, fmt.Errorf("пост %s: %w", post.ID, err)
		}
	}

	t := newTally()
	for _, userID := range order {
		e := perUser[userID]
		top, n, ok := e.counts.Top()
		if !ok || n < ExpertThreshold {
			continue
		}
		t.set(userID, e.pseudonym, n)
		t.entries[userID].Category = top
	}
	return t, nil
}

// tally накапливает значения по пользователям в порядке первого появления.
type tally struct {
	order   []string
	entries map[string]*domain.LeaderboardEntry
}

func newTally() *tally {
	return &tally{entries: make(map[string]*domain.LeaderboardEntry)}
}

func (t *tally) entry(userID, pseudonym string) *domain.LeaderboardEntry {
	e, ok := t.entries[userID]
	if !ok {
		e = &domain.LeaderboardEntry{UserID: userID, Pseudonym: pseudonym}
		t.entries[userID] = e
		t.order = append(t.order, userID)
	}
	if e.Pseudonym == "" {
		e.Pseudonym = pseudonym
	}
	return e
}

func (t *tally) add(userID, pseudonym string, delta int) {
	t.entry(userID, pseudonym).Value += delta
}

func (t *tally) set(userID, pseudonym string, value int) {
	t.entry(userID, pseudonym).Value = value
}

func (t *tally) ranked() []domain.LeaderboardEntry {
	out := make([]domain.LeaderboardEntry, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.entries[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// UserRank ищет позицию пользователя. false означает, что пользователь вне рейтинга.
func UserRank(entries []domain.LeaderboardEntry, userID string) (int, bool) {
	for _, e := range entries {
		if e.UserID == userID {
			return e.Rank, true
		}
	}
	return 0, false
}

// Summary — рейтинг вместе с позицией запросившего пользователя.
type Summary struct {
	Category     domain.LeaderboardCategory `json:"category"`
	Window       domain.TimeWindow          `json:"window"`
	Entries      []domain.LeaderboardEntry  `json:"entries"`
	Participants int                        `json:"participants"`
	// UserRank пуст, если пользователь не попал в рейтинг.
	UserRank *int `json:"user_rank,omitempty"`
}

// Summarize собирает сводку для пользователя userID. Пустой userID не ищется.
func Summarize(category domain.LeaderboardCategory, window domain.TimeWindow, entries []domain.LeaderboardEntry, userID string) Summary {
	s := Summary{Category: category, Window: window, Entries: entries, Participants: len(entries)}
	if userID == "" {
		return s
	}
	if rank, ok := UserRank(entries, userID); ok {
		s.UserRank = &rank
	}
	return s
}
