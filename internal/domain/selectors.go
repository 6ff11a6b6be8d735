package domain

import (
	"fmt"
	"strings"
	"time"
)

// LeaderboardCategory — тип рейтинга.
type LeaderboardCategory string

const (
	LeaderboardHelpful        LeaderboardCategory = "helpful"
	LeaderboardEngaged        LeaderboardCategory = "engaged"
	LeaderboardStreaks        LeaderboardCategory = "streaks"
	LeaderboardBadges         LeaderboardCategory = "badges"
	LeaderboardCategoryExpert LeaderboardCategory = "category-expert"
)

// ParseLeaderboardCategory разбирает тип рейтинга.
func ParseLeaderboardCategory(raw string) (LeaderboardCategory, error) {
	switch c := LeaderboardCategory(strings.ToLower(strings.TrimSpace(raw))); c {
	case LeaderboardHelpful, LeaderboardEngaged, LeaderboardStreaks, LeaderboardBadges, LeaderboardCategoryExpert:
		return c, nil
	case "":
		return LeaderboardHelpful, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLeaderboardCategory, raw)
}

// TimeWindow — окно рейтинга.
type TimeWindow string

const (
	WindowAllTime TimeWindow = "all-time"
	WindowMonthly TimeWindow = "monthly"
	WindowWeekly  TimeWindow = "weekly"
)

// ParseTimeWindow разбирает окно рейтинга. Пустое значение — за всё время.
func ParseTimeWindow(raw string) (TimeWindow, error) {
	switch w := TimeWindow(strings.ToLower(strings.TrimSpace(raw))); w {
	case WindowAllTime, WindowMonthly, WindowWeekly:
		return w, nil
	case "":
		return WindowAllTime, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownWindow, raw)
}

// Since возвращает нижнюю границу окна. Нулевое время означает отсутствие границы.
func (w TimeWindow) Since(now time.Time) time.Time {
	switch w {
	case WindowWeekly:
		return now.AddDate(0, 0, -7)
	case WindowMonthly:
		return now.AddDate(0, 0, -30)
	}
	return time.Time{}
}

// EducatorSort — режим сортировки списка волонтёров.
type EducatorSort string

const (
	SortByActivity  EducatorSort = "activity"
	SortByResponses EducatorSort = "responses"
	SortByQuality   EducatorSort = "quality"
)

// ParseEducatorSort разбирает режим сортировки.
func ParseEducatorSort(raw string) (EducatorSort, error) {
	switch s := EducatorSort(strings.ToLower(strings.TrimSpace(raw))); s {
	case SortByActivity, SortByResponses, SortByQuality:
		return s, nil
	case "":
		return SortByActivity, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSortMode, raw)
}

// EducatorFilter — фильтр списка волонтёров.
type EducatorFilter string

const (
	FilterAll      EducatorFilter = "all"
	FilterActive   EducatorFilter = "active"
	FilterInactive EducatorFilter = "inactive"
	FilterHighLoad EducatorFilter = "high-load"
)

// ParseEducatorFilter разбирает фильтр.
func ParseEducatorFilter(raw string) (EducatorFilter, error) {
	switch f := EducatorFilter(strings.ToLower(strings.TrimSpace(raw))); f {
	case FilterAll, FilterActive, FilterInactive, FilterHighLoad:
		return f, nil
	case "":
		return FilterAll, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFilterMode, raw)
}

// DateRangeKind — вид периода аналитики.
type DateRangeKind string

const (
	Range7Days  DateRangeKind = "7d"
	Range30Days DateRangeKind = "30d"
	Range90Days DateRangeKind = "90d"
	RangeAll    DateRangeKind = "all"
	RangeCustom DateRangeKind = "custom"
)

// DateRange — выбранный период аналитики. Start и End заполняются только для custom.
type DateRange struct {
	Kind  DateRangeKind
	Start time.Time
	End   time.Time
}

// ParseDateRange разбирает период. Для custom ожидаются даты в формате 2006-01-02 в loc.
func ParseDateRange(kind, start, end string, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	switch k := DateRangeKind(strings.ToLower(strings.TrimSpace(kind))); k {
	case Range7Days, Range30Days, Range90Days, RangeAll:
		return DateRange{Kind: k}, nil
	case "":
		return DateRange{Kind: Range7Days}, nil
	case RangeCustom:
		from, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(start), loc)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: start: %v", ErrInvalidCustomRange, err)
		}
		to, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(end), loc)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: end: %v", ErrInvalidCustomRange, err)
		}
		if to.Before(from) {
			return DateRange{}, fmt.Errorf("%w: end before start", ErrInvalidCustomRange)
		}
		return DateRange{Kind: RangeCustom, Start: from, End: to}, nil
	}
	return DateRange{}, fmt.Errorf("%w: %q", ErrUnknownDateRange, kind)
}

// Days возвращает длину фиксированного периода в днях, 0 для all и custom.
func (r DateRange) Days() int {
	switch r.Kind {
	case Range7Days:
		return 7
	case Range30Days:
		return 30
	case Range90Days:
		return 90
	}
	return 0
}

// Label возвращает подпись периода для отчёта.
func (r DateRange) Label() string {
	switch r.Kind {
	case RangeAll:
		return "All time"
	case RangeCustom:
		return r.Start.Format("2006-01-02") + " - " + r.End.Format("2006-01-02")
	}
	return fmt.Sprintf("Last %d days", r.Days())
}

// Key возвращает ключ периода для кэшей представлений.
func (r DateRange) Key() string {
	if r.Kind == RangeCustom {
		return string(r.Kind) + ":" + r.Label()
	}
	return string(r.Kind)
}
