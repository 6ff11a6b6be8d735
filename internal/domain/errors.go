package domain

import "errors"

var (
	// ErrUnknownCategory возвращается для категории вне закрытого перечня.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrUnknownSeverity возвращается для неизвестного уровня эскалации.
	ErrUnknownSeverity = errors.New("unknown severity")
	// ErrUnknownPriority возвращается для неизвестного приоритета сессии.
	ErrUnknownPriority = errors.New("unknown priority")
	// ErrUnknownLeaderboardCategory возвращается для неизвестного типа рейтинга.
	ErrUnknownLeaderboardCategory = errors.New("unknown leaderboard category")
	// ErrUnknownWindow возвращается для неизвестного окна рейтинга.
	ErrUnknownWindow = errors.New("unknown time window")
	// ErrUnknownDateRange возвращается для неизвестного периода аналитики.
	ErrUnknownDateRange = errors.New("unknown date range")
	// ErrInvalidCustomRange возвращается, если у произвольного периода нет границ или начало позже конца.
	ErrInvalidCustomRange = errors.New("invalid custom date range")
	// ErrUnknownSortMode возвращается для неизвестного режима сортировки волонтёров.
	ErrUnknownSortMode = errors.New("unknown sort mode")
	// ErrUnknownFilterMode возвращается для неизвестного фильтра волонтёров.
	ErrUnknownFilterMode = errors.New("unknown filter mode")
	// ErrNoSnapshot возвращается, если представление ещё ни разу не было посчитано.
	ErrNoSnapshot = errors.New("no snapshot computed yet")
)
