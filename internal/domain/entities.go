package domain

import "time"

// Post описывает обращение студента в сообществе.
type Post struct {
	ID              string    `json:"id"`
	AuthorID        string    `json:"author_id"`
	AuthorPseudonym string    `json:"author_pseudonym"`
	Category        Category  `json:"category"`
	EscalationLevel Severity  `json:"escalation_level"`
	CreatedAt       time.Time `json:"created_at"`
}

// Reply описывает ответ на пост.
type Reply struct {
	ID              string
	PostID          string
	AuthorID        string
	AuthorPseudonym string
	// IsHelpful хранит число голосов «полезно», а не флаг.
	IsHelpful       int
	IsFromVolunteer bool
	CreatedAt       time.Time
}

// User описывает участника сообщества.
type User struct {
	ID         string
	Pseudonym  string
	Role       UserRole
	LastActive time.Time
}

// LastActiveOrEpoch возвращает время последней активности, пустое значение считается началом эпохи.
func (u User) LastActiveOrEpoch() time.Time {
	if u.LastActive.IsZero() {
		return time.Unix(0, 0).UTC()
	}
	return u.LastActive
}

// SupportSession описывает запрос студента на сессию поддержки.
type SupportSession struct {
	ID               string        `json:"id"`
	StudentPseudonym string        `json:"student_pseudonym"`
	EducatorID       *string       `json:"educator_id,omitempty"`
	Category         Category      `json:"category"`
	Priority         Priority      `json:"priority"`
	Status           SessionStatus `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
}

// AssignedTo сообщает, закреплена ли сессия за пользователем.
func (s SupportSession) AssignedTo(userID string) bool {
	return s.EducatorID != nil && *s.EducatorID == userID
}

// ActivityLog описывает запись о волонтёрской активности.
type ActivityLog struct {
	ID              string
	UserID          string
	ActivityType    string
	DurationMinutes int
	Date            time.Time
}

// Report описывает жалобу на контент.
type Report struct {
	ID         string       `json:"id"`
	TargetType string       `json:"target_type"`
	TargetID   string       `json:"target_id"`
	Reason     string       `json:"reason"`
	Status     ReportStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
}

// Escalation описывает эскалацию поста.
type Escalation struct {
	ID        string
	PostID    string
	Level     Severity
	Status    string
	CreatedAt time.Time
}

// BadgeAward описывает выданный пользователю значок.
type BadgeAward struct {
	ID        string
	UserID    string
	BadgeID   string
	AwardedAt time.Time
}

// StreakRecord хранит серию ежедневной активности пользователя.
type StreakRecord struct {
	ID            string
	UserID        string
	CurrentStreak int
	LongestStreak int
	UpdatedAt     time.Time
}

// LeaderboardEntry — позиция пользователя в рейтинге.
type LeaderboardEntry struct {
	UserID    string   `json:"user_id"`
	Pseudonym string   `json:"pseudonym"`
	Value     int      `json:"value"`
	Rank      int      `json:"rank"`
	Category  Category `json:"category,omitempty"`
}

// PeerEducatorActivity — карточка эффективности волонтёра.
type PeerEducatorActivity struct {
	User                User         `json:"-"`
	UserID              string       `json:"user_id"`
	Pseudonym           string       `json:"pseudonym"`
	Role                UserRole     `json:"role"`
	LastActive          time.Time    `json:"last_active"`
	IsActive            bool         `json:"is_active"`
	TotalResponses      int          `json:"total_responses"`
	HelpfulResponses    int          `json:"helpful_responses"`
	QualityScore        int          `json:"quality_score"`
	ResponseCount       int          `json:"response_count"`
	TotalResponseTime   float64      `json:"total_response_time_hours"`
	AverageResponseTime float64      `json:"average_response_time_hours"`
	OnTimeResponses     int          `json:"on_time_responses"`
	LateResponses       int          `json:"late_responses"`
	OnTimeRate          int          `json:"on_time_rate"`
	ActiveThreads       int          `json:"active_threads"`
	RecentResponses     int          `json:"recent_responses"`
	ResponseLoad        ResponseLoad `json:"response_load"`
	AssignedSessions    int          `json:"assigned_sessions"`
	ActiveSessions      int          `json:"active_sessions"`
	ResolvedSessions    int          `json:"resolved_sessions"`
	ActivityMinutes     int          `json:"activity_minutes"`
}

// Analytics — сводка администратора за выбранный период.
type Analytics struct {
	Start           time.Time      `json:"start"`
	End             time.Time      `json:"end"`
	TotalPosts      int            `json:"total_posts"`
	EscalationCount int            `json:"escalation_count"`
	ActiveUsers     int            `json:"active_users"`
	PostsByCategory CategoryCounts `json:"posts_by_category"`
	// ResponseTime — среднее число минут до первого ответа.
	ResponseTime float64 `json:"response_time"`
}

// Insights содержит производные строки для панели администратора.
type Insights struct {
	TopConcern        string `json:"top_concern"`
	CommunityResponse string `json:"community_response"`
	EscalationRate    string `json:"escalation_rate"`
}
