package domain

import (
	"context"
	"time"
)

// PostFilter сужает выборку постов.
type PostFilter struct {
	Category Category
}

// PostRepo отдаёт посты.
type PostRepo interface {
	ListPosts(ctx context.Context, filter PostFilter) ([]Post, error)
}

// ReplyRepo отдаёт ответы на конкретный пост.
type ReplyRepo interface {
	ListReplies(ctx context.Context, postID string) ([]Reply, error)
}

// UserRepo отдаёт участников сообщества.
type UserRepo interface {
	ListUsers(ctx context.Context) ([]User, error)
}

// SessionRepo отдаёт сессии поддержки. Пустой статус означает все сессии.
type SessionRepo interface {
	ListSessions(ctx context.Context, status SessionStatus) ([]SupportSession, error)
}

// ActivityRepo отдаёт журнал активности пользователя.
type ActivityRepo interface {
	ListActivityLogs(ctx context.Context, userID string) ([]ActivityLog, error)
}

// ReportRepo отдаёт жалобы.
type ReportRepo interface {
	ListReports(ctx context.Context) ([]Report, error)
}

// EscalationRepo отдаёт эскалации.
type EscalationRepo interface {
	ListEscalations(ctx context.Context) ([]Escalation, error)
}

// BadgeRepo отдаёт выданные значки.
type BadgeRepo interface {
	ListBadgeAwards(ctx context.Context) ([]BadgeAward, error)
}

// StreakRepo отдаёт серии активности.
type StreakRepo interface {
	ListStreaks(ctx context.Context) ([]StreakRecord, error)
}

// Store объединяет все источники записей.
type Store interface {
	PostRepo
	ReplyRepo
	UserRepo
	SessionRepo
	ActivityRepo
	ReportRepo
	EscalationRepo
	BadgeRepo
	StreakRepo
}

// Cache используется для простых TTL-хранилищ.
type Cache interface {
	Once(ctx context.Context, key string, ttl time.Duration, fn func() error) error
}
