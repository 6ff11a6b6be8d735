package domain

import "strings"

// UserRole описывает роль участника сообщества.
type UserRole string

const (
	UserRoleStudent               UserRole = "student"
	UserRolePeerEducator          UserRole = "peer-educator"
	UserRolePeerEducatorExecutive UserRole = "peer-educator-executive"
	UserRoleModerator             UserRole = "moderator"
	UserRoleCounselor             UserRole = "counselor"
	UserRoleLifeCoach             UserRole = "life-coach"
	UserRoleAdmin                 UserRole = "admin"
)

// RoleProfile описывает, какие панели учитывают роль.
type RoleProfile struct {
	Role UserRole
	Name string
	// PeerEducator — роль входит в список волонтёров для карточек эффективности.
	PeerEducator bool
	// Staff — роль видит очередь модерации.
	Staff bool
}

var roleProfiles = map[UserRole]RoleProfile{
	UserRoleStudent: {
		Role: UserRoleStudent,
		Name: "Student",
	},
	UserRolePeerEducator: {
		Role:         UserRolePeerEducator,
		Name:         "Peer Educator",
		PeerEducator: true,
	},
	UserRolePeerEducatorExecutive: {
		Role:         UserRolePeerEducatorExecutive,
		Name:         "Peer Educator Executive",
		PeerEducator: true,
		Staff:        true,
	},
	UserRoleModerator: {
		Role:  UserRoleModerator,
		Name:  "Moderator",
		Staff: true,
	},
	UserRoleCounselor: {
		Role:  UserRoleCounselor,
		Name:  "Counselor",
		Staff: true,
	},
	UserRoleLifeCoach: {
		Role:  UserRoleLifeCoach,
		Name:  "Life Coach",
		Staff: true,
	},
	UserRoleAdmin: {
		Role:  UserRoleAdmin,
		Name:  "Admin",
		Staff: true,
	},
}

// ProfileForRole возвращает профиль роли. Неизвестная роль считается студентом.
func ProfileForRole(role UserRole) RoleProfile {
	if profile, ok := roleProfiles[UserRole(strings.ToLower(strings.TrimSpace(string(role))))]; ok {
		return profile
	}
	return roleProfiles[UserRoleStudent]
}

// Profile возвращает профиль роли пользователя.
func (u User) Profile() RoleProfile {
	return ProfileForRole(u.Role)
}

// IsPeerEducator сообщает, входит ли пользователь в список волонтёров.
func (u User) IsPeerEducator() bool {
	return u.Profile().PeerEducator
}

// SessionStatus — состояние сессии поддержки.
type SessionStatus string

const (
	SessionPending  SessionStatus = "pending"
	SessionActive   SessionStatus = "active"
	SessionResolved SessionStatus = "resolved"
)

// ReportStatus — состояние жалобы.
type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportReviewed  ReportStatus = "reviewed"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

// ResponseLoad — нагрузка волонтёра по числу недавних ответов.
type ResponseLoad string

const (
	ResponseLoadLow    ResponseLoad = "low"
	ResponseLoadMedium ResponseLoad = "medium"
	ResponseLoadHigh   ResponseLoad = "high"
)
