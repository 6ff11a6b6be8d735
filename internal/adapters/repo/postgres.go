package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"peer-insights/internal/domain"
	"peer-insights/internal/infra/metrics"
)

// Postgres реализует репозитории на основе pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ domain.Store = (*Postgres)(nil)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtxWithParent(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), 5*time.Second)
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// queryAll выполняет запрос с повторами и собирает строки через scan.
func queryAll[T any](ctx context.Context, p *Postgres, target, sql string, scan pgx.RowToFunc[T], args ...any) ([]T, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	items, err := withRetry(ctx, func(ctx context.Context) ([]T, error) {
		rows, err := p.pool.Query(ctx, sql, args...)
		if err != nil {
			return nil, err
		}
		return pgx.CollectRows(rows, scan)
	})
	metrics.ObserveNetworkRequest("postgres", "select", target, start, err)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", target, err)
	}
	return items, nil
}

// ListPosts возвращает посты, опционально только выбранной категории.
func (p *Postgres) ListPosts(ctx context.Context, filter domain.PostFilter) ([]domain.Post, error) {
	const base = `SELECT id, author_id, COALESCE(author_pseudonym, ''), category, COALESCE(escalation_level, ''), created_at FROM posts`
	sql, args := base+` ORDER BY created_at DESC`, []any(nil)
	if filter.Category != "" {
		sql, args = base+` WHERE category = $1 ORDER BY created_at DESC`, []any{string(filter.Category)}
	}
	return queryAll(ctx, p, "posts", sql, func(row pgx.CollectableRow) (domain.Post, error) {
		var (
			post          domain.Post
			category, lvl string
		)
		if err := row.Scan(&post.ID, &post.AuthorID, &post.AuthorPseudonym, &category, &lvl, &post.CreatedAt); err != nil {
			return domain.Post{}, err
		}
		var err error
		if post.Category, err = domain.ParseCategory(category); err != nil {
			return domain.Post{}, fmt.Errorf("post %s: %w", post.ID, err)
		}
		if post.EscalationLevel, err = domain.ParseSeverity(lvl); err != nil {
			return domain.Post{}, fmt.Errorf("post %s: %w", post.ID, err)
		}
		return post, nil
	}, args...)
}

// ListReplies возвращает ответы на пост в порядке создания.
func (p *Postgres) ListReplies(ctx context.Context, postID string) ([]domain.Reply, error) {
	const sql = `SELECT id, post_id, author_id, COALESCE(author_pseudonym, ''), COALESCE(is_helpful, 0), COALESCE(is_from_volunteer, false), created_at
FROM replies WHERE post_id = $1 ORDER BY created_at`
	return queryAll(ctx, p, "replies", sql, func(row pgx.CollectableRow) (domain.Reply, error) {
		var r domain.Reply
		err := row.Scan(&r.ID, &r.PostID, &r.AuthorID, &r.AuthorPseudonym, &r.IsHelpful, &r.IsFromVolunteer, &r.CreatedAt)
		return r, err
	}, postID)
}

// ListUsers возвращает всех участников.
func (p *Postgres) ListUsers(ctx context.Context) ([]domain.User, error) {
	const sql = `SELECT id, COALESCE(pseudonym, ''), COALESCE(role, ''), last_active FROM users ORDER BY id`
	return queryAll(ctx, p, "users", sql, func(row pgx.CollectableRow) (domain.User, error) {
		var (
			u          domain.User
			role       string
			lastActive *time.Time
		)
		if err := row.Scan(&u.ID, &u.Pseudonym, &role, &lastActive); err != nil {
			return domain.User{}, err
		}
		u.Role = domain.UserRole(role)
		if lastActive != nil {
			u.LastActive = *lastActive
		}
		return u, nil
	})
}

// ListSessions возвращает сессии поддержки. Пустой статус означает все сессии.
func (p *Postgres) ListSessions(ctx context.Context, status domain.SessionStatus) ([]domain.SupportSession, error) {
	const base = `SELECT id, COALESCE(student_pseudonym, ''), educator_id, category, COALESCE(priority, ''), status, created_at FROM support_sessions`
	sql, args := base+` ORDER BY created_at`, []any(nil)
	if status != "" {
		sql, args = base+` WHERE status = $1 ORDER BY created_at`, []any{string(status)}
	}
	return queryAll(ctx, p, "support_sessions", sql, func(row pgx.CollectableRow) (domain.SupportSession, error) {
		var (
			s                          domain.SupportSession
			category, priority, status string
		)
		if err := row.Scan(&s.ID, &s.StudentPseudonym, &s.EducatorID, &category, &priority, &status, &s.CreatedAt); err != nil {
			return domain.SupportSession{}, err
		}
		var err error
		if s.Category, err = domain.ParseCategory(category); err != nil {
			return domain.SupportSession{}, fmt.Errorf("session %s: %w", s.ID, err)
		}
		if s.Priority, err = domain.ParsePriority(priority); err != nil {
			return domain.SupportSession{}, fmt.Errorf("session %s: %w", s.ID, err)
		}
		s.Status = domain.SessionStatus(status)
		return s, nil
	}, args...)
}

// ListActivityLogs возвращает журнал активности пользователя.
func (p *Postgres) ListActivityLogs(ctx context.Context, userID string) ([]domain.ActivityLog, error) {
	const sql = `SELECT id, user_id, COALESCE(activity_type, ''), COALESCE(duration_minutes, 0), date
FROM activity_logs WHERE user_id = $1 ORDER BY date`
	return queryAll(ctx, p, "activity_logs", sql, func(row pgx.CollectableRow) (domain.ActivityLog, error) {
		var a domain.ActivityLog
		err := row.Scan(&a.ID, &a.UserID, &a.ActivityType, &a.DurationMinutes, &a.Date)
		return a, err
	}, userID)
}

// ListReports возвращает жалобы.
func (p *Postgres) ListReports(ctx context.Context) ([]domain.Report, error) {
	const sql = `SELECT id, COALESCE(target_type, ''), COALESCE(target_id, ''), COALESCE(reason, ''), status, created_at
FROM reports ORDER BY created_at`
	return queryAll(ctx, p, "reports", sql, func(row pgx.CollectableRow) (domain.Report, error) {
		var (
			r      domain.Report
			status string
		)
		if err := row.Scan(&r.ID, &r.TargetType, &r.TargetID, &r.Reason, &status, &r.CreatedAt); err != nil {
			return domain.Report{}, err
		}
		r.Status = domain.ReportStatus(status)
		return r, nil
	})
}

// ListEscalations возвращает эскалации.
func (p *Postgres) ListEscalations(ctx context.Context) ([]domain.Escalation, error) {
	const sql = `SELECT id, post_id, COALESCE(level, ''), COALESCE(status, ''), created_at FROM escalations ORDER BY created_at`
	return queryAll(ctx, p, "escalations", sql, func(row pgx.CollectableRow) (domain.Escalation, error) {
		var (
			e   domain.Escalation
			lvl string
		)
		if err := row.Scan(&e.ID, &e.PostID, &lvl, &e.Status, &e.CreatedAt); err != nil {
			return domain.Escalation{}, err
		}
		var err error
		if e.Level, err = domain.ParseSeverity(lvl); err != nil {
			return domain.Escalation{}, fmt.Errorf("escalation %s: %w", e.ID, err)
		}
		return e, nil
	})
}

// ListBadgeAwards возвращает выданные значки.
func (p *Postgres) ListBadgeAwards(ctx context.Context) ([]domain.BadgeAward, error) {
	const sql = `SELECT id, user_id, badge_id, awarded_at FROM badge_awards ORDER BY awarded_at`
	return queryAll(ctx, p, "badge_awards", sql, func(row pgx.CollectableRow) (domain.BadgeAward, error) {
		var b domain.BadgeAward
		err := row.Scan(&b.ID, &b.UserID, &b.BadgeID, &b.AwardedAt)
		return b, err
	})
}

// ListStreaks возвращает серии активности.
func (p *Postgres) ListStreaks(ctx context.Context) ([]domain.StreakRecord, error) {
	const sql = `SELECT id, user_id, COALESCE(current_streak, 0), COALESCE(longest_streak, 0), updated_at FROM streaks ORDER BY user_id`
	return queryAll(ctx, p, "streaks", sql, func(row pgx.CollectableRow) (domain.StreakRecord, error) {
		var s domain.StreakRecord
		err := row.Scan(&s.ID, &s.UserID, &s.CurrentStreak, &s.LongestStreak, &s.UpdatedAt)
		return s, err
	})
}
