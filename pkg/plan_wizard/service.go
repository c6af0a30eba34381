package plan_wizard

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/yearplan/yearplan/internal/utils"
	"github.com/yearplan/yearplan/pkg/event_template"
	"github.com/yearplan/yearplan/pkg/organization"
	"github.com/yearplan/yearplan/pkg/recurring_rule"
)

var ErrUnknownRule = errors.New("unknown recurring rule")

type Service interface {
	DefaultWindow() Window
	ExpandRules(ctx context.Context, window Window, ruleIds []int) ([]DraftEvent, error)
	SuggestPlacements(ctx context.Context, window Window) ([]MandatoryPlacement, error)
	Review(ctx context.Context, input ReviewInput) (Plan, error)
}

// PlacementChoice is the operator's decision on one mandatory template. A nil Date leaves it unplaced.
type PlacementChoice struct {
	Key        string
	TemplateId int
	Date       *time.Time
}

// ReviewInput is the client-held wizard state sent back for review.
type ReviewInput struct {
	Window     Window
	Recurring  []DraftEvent
	Placements []PlacementChoice
	Manual     []DraftEvent
}

type ServiceImpl struct {
	rules          recurring_rule.Reader
	templates      event_template.Reader
	clock          utils.Clock
	yearStartMonth time.Month
	suggester      event_template.PlacementSuggester
	keys           KeyGenerator
}

func NewService(
	rules recurring_rule.Reader,
	templates event_template.Reader,
	clock utils.Clock,
	yearStartMonth time.Month,
) *ServiceImpl {
	suggester := event_template.NewPlacementSuggester(yearStartMonth)
	return &ServiceImpl{
		rules:          rules,
		templates:      templates,
		clock:          clock,
		yearStartMonth: yearStartMonth,
		suggester:      suggester,
		keys:           UUIDKeys,
	}
}

// WithKeys replaces the draft key generator.
func (s *ServiceImpl) WithKeys(keys KeyGenerator) *ServiceImpl {
	s.keys = keys
	return s
}

func (s *ServiceImpl) DefaultWindow() Window {
	return DefaultWindow(utils.Today(s.clock), s.yearStartMonth)
}

// ExpandRules expands the active rules with the given ids, in the given order. With no ids every active
// rule of the organization is expanded.
func (s *ServiceImpl) ExpandRules(ctx context.Context, window Window, ruleIds []int) ([]DraftEvent, error) {
	organizationId, err := organization.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current organization: %w", err)
	}
	rules, err := s.rules.ListRecurringRules(ctx, organizationId, true)
	if err != nil {
		return nil, err
	}
	selected, err := selectRules(rules, ruleIds)
	if err != nil {
		return nil, err
	}

	session, err := NewSession(s.keys).ApplyWindow(window)
	if err != nil {
		return nil, err
	}
	session, err = session.ApplyRules(selected)
	if err != nil {
		return nil, err
	}
	log.Debugf("Expanded %d rules into %d drafts for organization %d", len(selected), len(session.recurring), organizationId)
	return session.Recurring(), nil
}

func selectRules(rules []recurring_rule.RecurringRule, ruleIds []int) ([]recurring_rule.RecurringRule, error) {
	if len(ruleIds) == 0 {
		return rules, nil
	}
	byId := make(map[int]recurring_rule.RecurringRule, len(rules))
	for _, rule := range rules {
		byId[rule.Id] = rule
	}
	selected := make([]recurring_rule.RecurringRule, 0, len(ruleIds))
	for _, id := range ruleIds {
		rule, ok := byId[id]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownRule, id)
		}
		selected = append(selected, rule)
	}
	return selected, nil
}

func (s *ServiceImpl) SuggestPlacements(ctx context.Context, window Window) ([]MandatoryPlacement, error) {
	organizationId, err := organization.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current organization: %w", err)
	}
	templates, err := s.templates.ListEventTemplates(ctx, organizationId, true)
	if err != nil {
		return nil, err
	}

	session, err := NewSession(s.keys).ApplyWindow(window)
	if err != nil {
		return nil, err
	}
	session, err = session.ApplyTemplates(templates, s.suggester)
	if err != nil {
		return nil, err
	}
	return session.Placements(), nil
}

func (s *ServiceImpl) Review(ctx context.Context, input ReviewInput) (Plan, error) {
	organizationId, err := organization.CurrentId(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("failed to get current organization: %w", err)
	}

	var placements []MandatoryPlacement
	if len(input.Placements) > 0 {
		templates, err := s.templates.ListEventTemplates(ctx, organizationId, false)
		if err != nil {
			return Plan{}, err
		}
		byId := make(map[int]event_template.EventTemplate, len(templates))
		for _, template := range templates {
			byId[template.Id] = template
		}
		for _, choice := range input.Placements {
			template, ok := byId[choice.TemplateId]
			if !ok {
				return Plan{}, fmt.Errorf("%w: template %d", ErrUnknownPlacement, choice.TemplateId)
			}
			placements = append(placements, MandatoryPlacement{
				Key:      choice.Key,
				Template: template,
				Date:     choice.Date,
				IsPlaced: choice.Date != nil,
			})
		}
	}

	session, err := Resume(s.keys, input.Window, input.Recurring, placements, input.Manual)
	if err != nil {
		return Plan{}, err
	}
	plan := session.Review()
	if plan.HasWarnings() {
		log.Debugf("Plan of organization %d has %d unplaced mandatory, %d uncategorized and %d out of window drafts",
			organizationId, plan.UnplacedMandatoryCount, len(plan.Uncategorized), len(plan.OutOfWindow))
	}
	return plan, nil
}
