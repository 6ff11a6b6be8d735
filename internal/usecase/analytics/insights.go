package analytics

import (
	"fmt"

	"peer-insights/internal/domain"
)

const noConcern = "None"

// DeriveInsights строит текстовые выводы по сводке.
func DeriveInsights(a domain.Analytics) domain.Insights {
	return domain.Insights{
		TopConcern:        TopConcern(a.PostsByCategory),
		CommunityResponse: ClassifyResponse(a.ResponseTime),
		EscalationRate:    EscalationRate(a.EscalationCount, a.TotalPosts),
	}
}

// TopConcern возвращает самую частую категорию.
func TopConcern(counts domain.CategoryCounts) string {
	top, _, ok := counts.Top()
	if !ok {
		return noConcern
	}
	return string(top)
}

// ClassifyResponse переводит среднее время ответа в минутах в оценку.
func ClassifyResponse(minutes float64) string {
	switch {
	case minutes < 30:
		return "Very Fast"
	case minutes < 60:
		return "Fast"
	}
	return "Average"
}

// EscalationRate возвращает долю эскалаций с одним знаком после запятой.
func EscalationRate(escalations, posts int) string {
	if posts == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", float64(escalations)/float64(posts)*100)
}
