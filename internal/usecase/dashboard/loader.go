package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"peer-insights/internal/domain"
	"peer-insights/internal/infra/metrics"
)

// fetch выполняет загрузку и учитывает ошибку в метрике источника.
func fetch[T any](ctx context.Context, source string, fn func(context.Context) (T, error)) (T, error) {
	v, err := fn(ctx)
	if err != nil {
		// отмена из-за ошибки соседнего источника не считается ошибкой этого источника
		if !errors.Is(err, context.Canceled) || ctx.Err() == nil {
			metrics.IncFetchError(source)
		}
		return v, fmt.Errorf("load %s: %w", source, err)
	}
	return v, nil
}

// loadReplies загружает ответы на все посты с ограниченным параллелизмом.
// Результат склеивается в порядке постов.
func (s *Service) loadReplies(ctx context.Context, posts []domain.Post) ([]domain.Reply, error) {
	perPost := make([][]domain.Reply, len(posts))
	p := pool.New().WithContext(ctx).WithCancelOnError().WithMaxGoroutines(s.replyConcurrency)
	for i, post := range posts {
		p.Go(func(ctx context.Context) error {
			replies, err := fetch(ctx, "replies", func(ctx context.Context) ([]domain.Reply, error) {
				return s.store.ListReplies(ctx, post.ID)
			})
			if err != nil {
				return err
			}
			perPost[i] = replies
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	total := 0
	for _, r := range perPost {
		total += len(r)
	}
	out := make([]domain.Reply, 0, total)
	for _, r := range perPost {
		out = append(out, r...)
	}
	return out, nil
}

// loadPostsWithReplies загружает посты, затем ответы на них.
func (s *Service) loadPostsWithReplies(ctx context.Context) ([]domain.Post, []domain.Reply, error) {
	posts, err := fetch(ctx, "posts", func(ctx context.Context) ([]domain.Post, error) {
		return s.store.ListPosts(ctx, domain.PostFilter{})
	})
	if err != nil {
		return nil, nil, err
	}
	replies, err := s.loadReplies(ctx, posts)
	if err != nil {
		return nil, nil, err
	}
	return posts, replies, nil
}

type leaderboardData struct {
	posts   []domain.Post
	replies []domain.Reply
	users   []domain.User
	badges  []domain.BadgeAward
	streaks []domain.StreakRecord
}

func (s *Service) loadLeaderboard(ctx context.Context) (leaderboardData, error) {
	var (
		data leaderboardData
		mu   sync.Mutex
	)
	p := pool.New().WithContext(ctx).WithCancelOnError()

	p.Go(func(ctx context.Context) error {
		posts, replies, err := s.loadPostsWithReplies(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		data.posts, data.replies = posts, replies
		mu.Unlock()
		return nil
	})

	p.Go(func(ctx context.Context) error {
		users, err := fetch(ctx, "users", s.store.ListUsers)
		if err != nil {
			return err
		}
		mu.Lock()
		data.users = users
		mu.Unlock()
		return nil
	})

	p.Go(func(ctx context.Context) error {
		badges, err := fetch(ctx, "badge_awards", s.store.ListBadgeAwards)
		if err != nil {
			return err
		}
		mu.Lock()
		data.badges = badges
		mu.Unlock()
		return nil
	})

	p.Go(func(ctx context.Context) error {
		streaks, err := fetch(ctx, "streaks", s.store.ListStreaks)
		if err != nil {
			return err
		}
		mu.Lock()
		data.streaks = streaks
		mu.Unlock()
		return nil
	})

	if err := p.Wait(); err != nil {
		return leaderboardData{}, err
	}
	return data, nil
}

type educatorData struct {
	users    []domain.User
	posts    []domain.Post
	replies  []domain.Reply
	sessions []domain.SupportSession
	activity map[string][]domain.ActivityLog
}

func (s *Service) loadEducators(ctx context.Context) (educatorData, error) {
	var (
		data educatorData
		mu   sync.Mutex
	)
	p := pool.New().WithContext(ctx).WithCancelOnError()

	p.Go(func(ctx context.Context) error {
		posts, replies, err := s.loadPostsWithReplies(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		data.posts, data.replies = posts, replies
		mu.Unlock()
		return nil
	})

	p.Go(func(ctx context.Context) error {
		sessions, err := fetch(ctx, "support_sessions", func(ctx context.Context) ([]domain.SupportSession, error) {
			return s.store.ListSessions(ctx, "")
		})
		if err != nil {
			return err
		}
		mu.Lock()
		data.sessions = sessions
		mu.Unlock()
		return nil
	})

	p.Go(func(ctx context.Context) error {
		users, err := fetch(ctx, "users", s.store.ListUsers)
		if err != nil {
			return err
		}
		activity, err := s.loadActivity(ctx, users)
		if err != nil {
			return err
		}
		mu.Lock()
		data.users, data.activity = users, activity
		mu.Unlock()
		return nil
	})

	if err := p.Wait(); err != nil {
		return educatorData{}, err
	}
	return data, nil
}

// loadActivity загружает журналы активности только для волонтёров.
func (s *Service) loadActivity(ctx context.Context, users []domain.User) (map[string][]domain.ActivityLog, error) {
	var (
		out = make(map[string][]domain.ActivityLog)
		mu  sync.Mutex
	)
	p := pool.New().WithContext(ctx).WithCancelOnError().WithMaxGoroutines(s.replyConcurrency)
	for _, u := range users {
		if !u.IsPeerEducator() {
			continue
		}
		p.Go(func(ctx context.Context) error {
			logs, err := fetch(ctx, "activity_logs", func(ctx context.Context) ([]domain.ActivityLog, error) {
				return s.store.ListActivityLogs(ctx, u.ID)
			})
			if err != nil {
				return err
			}
			mu.Lock()
			out[u.ID] = logs
			mu.Unlock()
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type triageData struct {
	posts    []domain.Post
	reports  []domain.Report
	sessions []domain.SupportSession
}

func (s *Service) loadTriage(ctx context.Context) (triageData, error) {
	var (
		data triageData
		mu   sync.Mutex
	)
	p := pool.New().WithContext(ctx).WithCancelOnError()

	p.Go(func(ctx context.Context) error {
		posts, err := fetch(ctx, "posts", func(ctx context.Context) ([]domain.Post, error) {
			return s.store.ListPosts(ctx, domain.PostFilter{})
		})
		if err != nil {
			return err
		}
		mu.Lock()
		data.posts = posts
		mu.Unlock()
		return nil
	})

	p.Go(func(ctx context.Context) error {
		reports, err := fetch(ctx, "reports", s.store.ListReports)
		if err != nil {
			return err
		}
		mu.Lock()
		data.reports = reports
		mu.Unlock()
		return nil
	})

	p.Go(func(ctx context.Context) error {
		sessions, err := fetch(ctx, "support_sessions", func(ctx context.Context) ([]domain.SupportSession, error) {
			return s.store.ListSessions(ctx, domain.SessionPending)
		})
		if err != nil {
			return err
		}
		mu.Lock()
		data.sessions = sessions
		mu.Unlock()
		return nil
	})

	if err := p.Wait(); err != nil {
		return triageData{}, err
	}
	return data, nil
}

type analyticsData struct {
	posts       []domain.Post
	replies     []domain.Reply
	escalations []domain.Escalation
	users       []domain.User
}

func (s *Service) loadAnalytics(ctx context.Context) (analyticsData, error) {
	var (
		data analyticsData
		mu   sync.Mutex
	)
	p := pool.New().WithContext(ctx).WithCancelOnError()

	p.Go(func(ctx context.Context) error {
		posts, replies, err := s.loadPostsWithReplies(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		data.posts, data.replies = posts, replies
		mu.Unlock()
		return nil
	})

	p.Go(func(ctx context.Context) error {
		escalations, err := fetch(ctx, "escalations", s.store.ListEscalations)
		if err != nil {
			return err
		}
		mu.Lock()
		data.escalations = escalations
		mu.Unlock()
		return nil
	})

	p.Go(func(ctx context.Context) error {
		users, err := fetch(ctx, "users", s.store.ListUsers)
		if err != nil {
			return err
		}
		mu.Lock()
		data.users = users
		mu.Unlock()
		return nil
	})

	if err := p.Wait(); err != nil {
		return analyticsData{}, err
	}
	return data, nil
}
