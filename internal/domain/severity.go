package domain

import (
	"fmt"
	"strings"
)

// Severity — уровень эскалации поста. Порядок констант задаёт полный порядок уровней.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityNone:     "none",
	SeverityLow:      "low",
	SeverityMedium:   "medium",
	SeverityHigh:     "high",
	SeverityCritical: "critical",
}

// severityRanks — веса для сортировки очереди эскалаций.
var severityRanks = map[Severity]int{
	SeverityNone:     0,
	SeverityLow:      2,
	SeverityMedium:   3,
	SeverityHigh:     4,
	SeverityCritical: 5,
}

// ParseSeverity разбирает строковое значение уровня.
func ParseSeverity(raw string) (Severity, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return SeverityNone, nil
	}
	for s, name := range severityNames {
		if name == value {
			return s, nil
		}
	}
	return SeverityNone, fmt.Errorf("%w: %q", ErrUnknownSeverity, raw)
}

// Rank возвращает вес уровня для сортировки.
func (s Severity) Rank() int {
	return severityRanks[s]
}

// Escalated сообщает, требует ли пост повышенного внимания.
func (s Severity) Escalated() bool {
	return s > SeverityNone
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// MarshalText реализует encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText реализует encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Priority — приоритет сессии поддержки.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityNormal
	PriorityUrgent
)

var priorityNames = map[Priority]string{
	PriorityLow:    "low",
	PriorityNormal: "normal",
	PriorityUrgent: "urgent",
}

// ParsePriority разбирает строковое значение приоритета. Пустая строка считается normal.
func ParsePriority(raw string) (Priority, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return PriorityNormal, nil
	}
	for p, name := range priorityNames {
		if name == value {
			return p, nil
		}
	}
	return PriorityNormal, fmt.Errorf("%w: %q", ErrUnknownPriority, raw)
}

// Rank возвращает вес приоритета для сортировки.
func (p Priority) Rank() int {
	if _, ok := priorityNames[p]; !ok {
		return 0
	}
	return int(p)
}

func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

// MarshalText реализует encoding.TextMarshaler.
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText реализует encoding.TextUnmarshaler.
func (p *Priority) UnmarshalText(text []byte) error {
	parsed, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
