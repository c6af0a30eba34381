package plan_wizard

import (
	"fmt"
	"slices"
	"time"

	"github.com/yearplan/yearplan/pkg/calendar_math"
	"github.com/yearplan/yearplan/pkg/event_template"
	"github.com/yearplan/yearplan/pkg/recurring_rule"
)

// Session is the state of one planning wizard run. It is a value: every transition returns a new
// Session and leaves the receiver untouched, so abandoning a session has no side effects.
type Session struct {
	keys       KeyGenerator
	window     Window
	recurring  []DraftEvent
	placements []MandatoryPlacement
	manual     []DraftEvent
}

func NewSession(keys KeyGenerator) Session {
	if keys == nil {
		keys = UUIDKeys
	}
	return Session{keys: keys}
}

// Resume rebuilds a session from state held by the client. Drafts are validated and normalised the
// same way the transitions do it.
func Resume(
	keys KeyGenerator,
	window Window,
	recurring []DraftEvent,
	placements []MandatoryPlacement,
	manual []DraftEvent,
) (Session, error) {
	session, err := NewSession(keys).ApplyWindow(window)
	if err != nil {
		return Session{}, err
	}
	for _, draft := range recurring {
		draft.Source = SourceRecurring
		normalized, err := session.normalize(draft)
		if err != nil {
			return Session{}, err
		}
		session.recurring = append(session.recurring, normalized)
	}
	for _, placement := range placements {
		if placement.Key == "" {
			placement.Key = session.keys()
		}
		if placement.Date != nil {
			date := calendar_math.Truncate(*placement.Date)
			placement.Date = &date
		}
		session.placements = append(session.placements, placement)
	}
	for _, draft := range manual {
		if session, err = session.AddManual(draft); err != nil {
			return Session{}, err
		}
	}
	return session, nil
}

func (s Session) Window() Window {
	return s.window
}

func (s Session) Recurring() []DraftEvent {
	return slices.Clone(s.recurring)
}

func (s Session) Placements() []MandatoryPlacement {
	return slices.Clone(s.placements)
}

func (s Session) Manual() []DraftEvent {
	return slices.Clone(s.manual)
}

// ApplyWindow sets the operating year being planned. Recurring drafts and placements computed for a
// previous window are dropped; manual drafts are kept.
func (s Session) ApplyWindow(window Window) (Session, error) {
	window, err := NewWindow(window.Start, window.End)
	if err != nil {
		return Session{}, err
	}
	next := s.clone()
	if !next.window.Start.Equal(window.Start) || !next.window.End.Equal(window.End) {
		next.recurring = nil
		next.placements = nil
	}
	next.window = window
	return next, nil
}

// ApplyRules replaces the recurring drafts with the expansion of rules over the session window.
func (s Session) ApplyRules(rules []recurring_rule.RecurringRule) (Session, error) {
	if s.window.IsZero() {
		return Session{}, fmt.Errorf("%w: window is not set", ErrInvalidWindow)
	}
	drafts, err := ExpandRules(rules, s.window, s.keys)
	if err != nil {
		return Session{}, err
	}
	next := s.clone()
	next.recurring = drafts
	return next, nil
}

// ApplyTemplates replaces the mandatory placements with fresh suggestions for templates.
func (s Session) ApplyTemplates(templates []event_template.EventTemplate, suggester event_template.PlacementSuggester) (Session, error) {
	if s.window.IsZero() {
		return Session{}, fmt.Errorf("%w: window is not set", ErrInvalidWindow)
	}
	next := s.clone()
	next.placements = SuggestPlacements(templates, s.window, suggester, s.keys)
	return next, nil
}

// PlaceMandatory confirms, moves or (with a nil date) unplaces the mandatory placement with the given key.
func (s Session) PlaceMandatory(key string, date *time.Time) (Session, error) {
	idx := slices.IndexFunc(s.placements, func(p MandatoryPlacement) bool { return p.Key == key })
	if idx < 0 {
		return Session{}, fmt.Errorf("%w: %s", ErrUnknownPlacement, key)
	}
	next := s.clone()
	placement := next.placements[idx]
	if date == nil {
		placement.Date = nil
		placement.IsPlaced = false
	} else {
		day := calendar_math.Truncate(*date)
		if !s.window.Contains(day) {
			return Session{}, fmt.Errorf("%w: %s is outside the planned year", ErrInvalidDraft, day.Format(time.DateOnly))
		}
		placement.Date = &day
		placement.IsPlaced = true
	}
	next.placements[idx] = placement
	return next, nil
}

// AddManual adds an operator-entered draft. A key is assigned when the draft has none.
func (s Session) AddManual(draft DraftEvent) (Session, error) {
	draft.Source = SourceManual
	draft.RecurringRuleId = nil
	draft.TemplateId = nil
	normalized, err := s.normalize(draft)
	if err != nil {
		return Session{}, err
	}
	next := s.clone()
	if idx := slices.IndexFunc(next.manual, func(d DraftEvent) bool { return d.Key == normalized.Key }); idx >= 0 {
		next.manual[idx] = normalized
	} else {
		next.manual = append(next.manual, normalized)
	}
	return next, nil
}

func (s Session) RemoveManual(key string) (Session, error) {
	idx := slices.IndexFunc(s.manual, func(d DraftEvent) bool { return d.Key == key })
	if idx < 0 {
		return Session{}, fmt.Errorf("%w: %s", ErrUnknownDraft, key)
	}
	next := s.clone()
	next.manual = slices.Delete(next.manual, idx, idx+1)
	return next, nil
}

// Review merges the session's drafts into a plan.
func (s Session) Review() Plan {
	return Aggregate(s.window, s.recurring, s.placements, s.manual)
}

// ToCommit returns the drafts that would be persisted by committing the session.
func (s Session) ToCommit() []DraftEvent {
	return s.Review().Events
}

func (s Session) normalize(draft DraftEvent) (DraftEvent, error) {
	if err := ValidateDraft(draft); err != nil {
		return DraftEvent{}, err
	}
	if draft.Key == "" {
		draft.Key = s.keys()
	}
	draft.Date = calendar_math.Truncate(draft.Date)
	if draft.EndDate != nil {
		endDate := calendar_math.Truncate(*draft.EndDate)
		draft.EndDate = &endDate
	}
	return draft, nil
}

func (s Session) clone() Session {
	return Session{
		keys:       s.keys,
		window:     s.window,
		recurring:  slices.Clone(s.recurring),
		placements: slices.Clone(s.placements),
		manual:     slices.Clone(s.manual),
	}
}
