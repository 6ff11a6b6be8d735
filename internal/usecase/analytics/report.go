package analytics

import (
	"fmt"
	"strings"
	"time"

	"peer-insights/internal/domain"
)

// ReportTitle — заголовок выгрузки.
const ReportTitle = "Peer Support Analytics Report"

const generatedLayout = "2006-01-02 15:04:05"

// FormatReport формирует плоский построчный отчёт для передачи механизму рассылки.
func FormatReport(a domain.Analytics, ins domain.Insights, r domain.DateRange, generatedAt time.Time) string {
	var b strings.Builder
	b.WriteString(ReportTitle + "\n")
	b.WriteString("Date Range: " + r.Label() + "\n")
	b.WriteString("Generated: " + generatedAt.Format(generatedLayout) + "\n")

	rows := [][2]string{
		{"Total Posts", fmt.Sprint(a.TotalPosts)},
		{"Escalations", fmt.Sprint(a.EscalationCount)},
		{"Active Users", fmt.Sprint(a.ActiveUsers)},
		{"Average Response Time", fmt.Sprintf("%.0f min", a.ResponseTime)},
		{"Community Response", ins.CommunityResponse},
		{"Escalation Rate", ins.EscalationRate},
		{"Top Concern", ins.TopConcern},
	}
	b.WriteString("Metric,Value\n")
	for _, row := range rows {
		b.WriteString(row[0] + "," + row[1] + "\n")
	}

	b.WriteString("\n")
	b.WriteString("Category,Posts\n")
	for _, c := range a.PostsByCategory.NonZero() {
		b.WriteString(fmt.Sprintf("%s,%d\n", c.Category, c.Count))
	}
	return b.String()
}
