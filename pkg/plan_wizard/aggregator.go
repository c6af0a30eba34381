package plan_wizard

import (
	"sort"
)

// Plan is the merged, reviewable result of the three draft streams.
type Plan struct {
	Window Window
	// Events is ordered by date; events of the same day keep the order recurring, template, manual.
	Events []DraftEvent
	// Uncategorized drafts cannot be committed and are kept out of Events.
	Uncategorized []DraftEvent
	// OutOfWindow drafts are dated outside the operating year and are kept out of Events.
	OutOfWindow            []DraftEvent
	UnplacedMandatory      []MandatoryPlacement
	UnplacedMandatoryCount int
	Statistics             Statistics
}

// HasWarnings reports whether the operator should look at the plan again before committing. Warnings
// never block a commit.
func (p Plan) HasWarnings() bool {
	return p.UnplacedMandatoryCount > 0 || len(p.Uncategorized) > 0 || len(p.OutOfWindow) > 0
}

type Statistics struct {
	Total             int
	Mandatory         int
	ByCategory        map[int]int
	BySource          map[Source]int
	Uncategorized     int
	UnplacedMandatory int
}

// Aggregate merges recurring drafts, placed mandatory templates and manual drafts into one plan.
// Drafts sharing a key, and a mandatory template placed twice, appear once.
func Aggregate(window Window, recurring []DraftEvent, placements []MandatoryPlacement, manual []DraftEvent) Plan {
	merged := make([]DraftEvent, 0, len(recurring)+len(placements)+len(manual))
	merged = append(merged, recurring...)

	plan := Plan{Window: window}
	for _, placement := range placements {
		draft, ok := placement.Draft()
		if !ok {
			plan.UnplacedMandatory = append(plan.UnplacedMandatory, placement)
			continue
		}
		merged = append(merged, draft)
	}
	plan.UnplacedMandatoryCount = len(plan.UnplacedMandatory)
	merged = append(merged, manual...)

	merged = removeDuplicates(merged)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date.Before(merged[j].Date)
	})

	plan.Events = make([]DraftEvent, 0, len(merged))
	for _, draft := range merged {
		switch {
		case !draft.HasCategory():
			plan.Uncategorized = append(plan.Uncategorized, draft)
		case !window.IsZero() && !window.Contains(draft.Date):
			plan.OutOfWindow = append(plan.OutOfWindow, draft)
		default:
			plan.Events = append(plan.Events, draft)
		}
	}
	plan.Statistics = computeStatistics(plan)
	return plan
}

func removeDuplicates(drafts []DraftEvent) []DraftEvent {
	seenKeys := make(map[string]bool, len(drafts))
	seenTemplates := make(map[int]bool)
	result := make([]DraftEvent, 0, len(drafts))
	for _, draft := range drafts {
		if draft.Key != "" {
			if seenKeys[draft.Key] {
				continue
			}
			seenKeys[draft.Key] = true
		}
		if draft.Source == SourceTemplate && draft.TemplateId != nil {
			if seenTemplates[*draft.TemplateId] {
				continue
			}
			seenTemplates[*draft.TemplateId] = true
		}
		result = append(result, draft)
	}
	return result
}

func computeStatistics(plan Plan) Statistics {
	stats := Statistics{
		Total:             len(plan.Events),
		ByCategory:        make(map[int]int),
		BySource:          make(map[Source]int, len(Sources)),
		Uncategorized:     len(plan.Uncategorized),
		UnplacedMandatory: plan.UnplacedMandatoryCount,
	}
	for _, source := range Sources {
		stats.BySource[source] = 0
	}
	for _, event := range plan.Events {
		stats.ByCategory[*event.CategoryId]++
		stats.BySource[event.Source]++
		if event.IsMandatory {
			stats.Mandatory++
		}
	}
	return stats
}
