package plan_wizard

import (
	"sort"

	"github.com/yearplan/yearplan/pkg/calendar_math"
	"github.com/yearplan/yearplan/pkg/stats"
)

// Summarize reduces the plan to the counts rendered in the review report.
func Summarize(plan Plan) stats.StatsSummary {
	categories := make([]int, 0, len(plan.Statistics.ByCategory))
	for categoryId := range plan.Statistics.ByCategory {
		categories = append(categories, categoryId)
	}
	sort.Ints(categories)

	var months []stats.MonthlyStats
	monthIdx := make(map[calendar_math.Month]int)
	if !plan.Window.IsZero() {
		for _, month := range calendar_math.MonthsBetween(plan.Window.Start, plan.Window.End) {
			monthIdx[month] = len(months)
			months = append(months, stats.MonthlyStats{Month: month, Categories: map[int]int{}})
		}
	}
	for _, event := range plan.Events {
		month := calendar_math.Month{Year: event.Date.Year(), Month: event.Date.Month()}
		idx, ok := monthIdx[month]
		if !ok {
			monthIdx[month] = len(months)
			idx = len(months)
			months = append(months, stats.MonthlyStats{Month: month, Categories: map[int]int{}})
		}
		months[idx].Categories[*event.CategoryId]++
		months[idx].Total++
	}

	sources := make([]stats.SourceStats, 0, len(Sources))
	for _, source := range Sources {
		sources = append(sources, stats.SourceStats{Source: string(source), Count: plan.Statistics.BySource[source]})
	}

	return stats.StatsSummary{
		StartDate:         plan.Window.Start,
		EndDate:           plan.Window.End,
		Categories:        categories,
		Months:            months,
		TotalByCategory:   plan.Statistics.ByCategory,
		Sources:           sources,
		Total:             plan.Statistics.Total,
		Mandatory:         plan.Statistics.Mandatory,
		Uncategorized:     plan.Statistics.Uncategorized,
		UnplacedMandatory: plan.Statistics.UnplacedMandatory,
	}
}
