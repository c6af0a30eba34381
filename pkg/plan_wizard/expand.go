package plan_wizard

import (
	"fmt"

	"github.com/yearplan/yearplan/pkg/event_template"
	"github.com/yearplan/yearplan/pkg/recurring_rule"
)

// ExpandRules turns each rule into one draft per date it fires on within the window. Drafts are
// grouped by rule in the order the rules are given, dates ascending within a rule. A rule listed twice
// is expanded once.
func ExpandRules(rules []recurring_rule.RecurringRule, window Window, keys KeyGenerator) ([]DraftEvent, error) {
	drafts := make([]DraftEvent, 0)
	seen := make(map[int]bool, len(rules))
	for _, rule := range rules {
		if rule.Id != 0 {
			if seen[rule.Id] {
				continue
			}
			seen[rule.Id] = true
		}
		dates, err := recurring_rule.Expand(rule, window.Start, window.End)
		if err != nil {
			return nil, fmt.Errorf("failed to expand rule %d: %w", rule.Id, err)
		}
		for _, date := range dates {
			ruleId := rule.Id
			drafts = append(drafts, DraftEvent{
				Key:             keys(),
				Date:            date,
				Title:           rule.Title(),
				Description:     rule.Description,
				CategoryId:      rule.CategoryId,
				RecurringRuleId: &ruleId,
				Source:          SourceRecurring,
			})
		}
	}
	return drafts, nil
}

// SuggestPlacements creates one placement per active mandatory template, pre-placed on the suggested
// date when one exists. Templates without a usable month stay unplaced.
func SuggestPlacements(
	templates []event_template.EventTemplate,
	window Window,
	suggester event_template.PlacementSuggester,
	keys KeyGenerator,
) []MandatoryPlacement {
	placements := make([]MandatoryPlacement, 0)
	for _, template := range templates {
		if !template.IsMandatory || !template.IsActive {
			continue
		}
		placement := MandatoryPlacement{Key: keys(), Template: template}
		if date, ok := suggester.SuggestFor(template, window.Start, window.End); ok {
			placement.Date = &date
			placement.IsPlaced = true
		}
		placements = append(placements, placement)
	}
	return placements
}
