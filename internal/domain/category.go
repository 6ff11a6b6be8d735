package domain

import (
	"fmt"
	"strings"
)

// Category — тема обращения. Перечень закрыт.
type Category string

const (
	CategoryMentalHealth   Category = "mental-health"
	CategorySubstanceAbuse Category = "substance-abuse"
	CategorySexualHealth   Category = "sexual-health"
	CategorySTIsHIV        Category = "stis-hiv"
	CategoryFamilyHome     Category = "family-home"
	CategoryAcademic       Category = "academic"
	CategoryRelationships  Category = "relationships"
	CategoryGeneral        Category = "general"
)

// Categories перечисляет категории в порядке объявления. Этот порядок разрешает ничьи.
var Categories = []Category{
	CategoryMentalHealth,
	CategorySubstanceAbuse,
	CategorySexualHealth,
	CategorySTIsHIV,
	CategoryFamilyHome,
	CategoryAcademic,
	CategoryRelationships,
	CategoryGeneral,
}

var categoryIndex = func() map[Category]int {
	idx := make(map[Category]int, len(Categories))
	for i, c := range Categories {
		idx[c] = i
	}
	return idx
}()

// ParseCategory проверяет, что категория входит в перечень.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, raw)
	}
	return c, nil
}

// Valid сообщает, входит ли категория в перечень.
func (c Category) Valid() bool {
	_, ok := categoryIndex[c]
	return ok
}

// Order возвращает позицию категории в перечне, -1 для неизвестной.
func (c Category) Order() int {
	if i, ok := categoryIndex[c]; ok {
		return i
	}
	return -1
}

// CategoryCounts — счётчики по категориям. Неизвестная категория не создаёт новую корзину.
type CategoryCounts map[Category]int

// NewCategoryCounts создаёт счётчики с нулями по всем категориям.
func NewCategoryCounts() CategoryCounts {
	counts := make(CategoryCounts, len(Categories))
	for _, c := range Categories {
		counts[c] = 0
	}
	return counts
}

// Add увеличивает счётчик категории.
func (cc CategoryCounts) Add(c Category) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, string(c))
	}
	cc[c]++
	return nil
}

// CategoryCount — пара категория/количество.
type CategoryCount struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
}

// NonZero возвращает ненулевые счётчики в порядке перечня.
func (cc CategoryCounts) NonZero() []CategoryCount {
	out := make([]CategoryCount, 0, len(cc))
	for _, c := range Categories {
		if n := cc[c]; n > 0 {
			out = append(out, CategoryCount{Category: c, Count: n})
		}
	}
	return out
}

// Top возвращает категорию с максимальным счётчиком. При равенстве побеждает более ранняя в перечне.
func (cc CategoryCounts) Top() (Category, int, bool) {
	var (
		best  Category
		count int
		found bool
	)
	for _, c := range Categories {
		n := cc[c]
		if n > count {
			best, count, found = c, n, true
		}
	}
	return best, count, found
}
