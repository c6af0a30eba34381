package plan_wizard

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yearplan/yearplan/internal/validation"
	"github.com/yearplan/yearplan/pkg/calendar_math"
	"github.com/yearplan/yearplan/pkg/event_template"
)

var ErrInvalidDraft = errors.New("invalid draft event")
var ErrInvalidWindow = errors.New("invalid planning window")
var ErrUnknownPlacement = errors.New("unknown mandatory placement")
var ErrUnknownDraft = errors.New("unknown draft event")

// Source tells which stream a draft event was produced by.
type Source string

const (
	SourceRecurring Source = "RECURRING"
	SourceTemplate  Source = "TEMPLATE"
	SourceManual    Source = "MANUAL"
)

// Sources lists the sources in the order their drafts are merged.
var Sources = []Source{SourceRecurring, SourceTemplate, SourceManual}

// KeyGenerator produces draft keys that are unique within one wizard session.
type KeyGenerator func() string

func UUIDKeys() string {
	return uuid.NewString()
}

// SequentialKeys returns a generator yielding prefix-1, prefix-2, ... Useful where keys must be
// predictable.
func SequentialKeys(prefix string) KeyGenerator {
	next := 0
	return func() string {
		next++
		return fmt.Sprintf("%s-%d", prefix, next)
	}
}

// DraftEvent is a prospective event of the plan. It only lives in the wizard session.
type DraftEvent struct {
	Key             string
	Date            time.Time
	EndDate         *time.Time
	Title           string `validate:"required,max=200"`
	Description     string
	CategoryId      *int
	TemplateId      *int
	RecurringRuleId *int
	IsMandatory     bool
	InvitationText  *string
	Source          Source `validate:"oneof=RECURRING TEMPLATE MANUAL"`
}

// HasCategory reports whether the draft can be committed.
func (d DraftEvent) HasCategory() bool {
	return d.CategoryId != nil && *d.CategoryId > 0
}

// ValidateDraft checks the fields an operator can get wrong when entering a draft by hand.
func ValidateDraft(draft DraftEvent) error {
	if err := validation.Struct(draft); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDraft, err)
	}
	if draft.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidDraft)
	}
	if draft.EndDate != nil && draft.EndDate.Before(draft.Date) {
		return fmt.Errorf("%w: end date %s is before date %s", ErrInvalidDraft,
			draft.EndDate.Format(time.DateOnly), draft.Date.Format(time.DateOnly))
	}
	return nil
}

// Window is the operating year being planned, both ends inclusive.
type Window struct {
	Start time.Time
	End   time.Time
}

func NewWindow(start, end time.Time) (Window, error) {
	window := Window{Start: calendar_math.Truncate(start), End: calendar_math.Truncate(end)}
	if !window.End.After(window.Start) {
		return Window{}, fmt.Errorf("%w: end %s must be after start %s", ErrInvalidWindow,
			window.End.Format(time.DateOnly), window.Start.Format(time.DateOnly))
	}
	return window, nil
}

func (w Window) Contains(d time.Time) bool {
	return calendar_math.InRange(d, w.Start, w.End)
}

func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// DefaultWindow proposes the next operating year: from the first day of the next yearStartMonth
// through the day before the one after it. A year that starts today is proposed as is.
func DefaultWindow(today time.Time, yearStartMonth time.Month) Window {
	today = calendar_math.Truncate(today)
	start := calendar_math.Date(today.Year(), yearStartMonth, 1)
	if start.Before(today) {
		start = start.AddDate(1, 0, 0)
	}
	return Window{Start: start, End: start.AddDate(1, 0, -1)}
}

// MandatoryPlacement pairs a mandatory template with the date chosen for it, if any.
type MandatoryPlacement struct {
	Key      string
	Template event_template.EventTemplate
	Date     *time.Time
	IsPlaced bool
}

// Placed reports whether the placement resolves into a draft.
func (p MandatoryPlacement) Placed() bool {
	return p.IsPlaced && p.Date != nil
}

// Draft resolves the placement into a template draft. The second return value is false while the
// template is unplaced.
func (p MandatoryPlacement) Draft() (DraftEvent, bool) {
	if !p.Placed() {
		return DraftEvent{}, false
	}
	templateId := p.Template.Id
	draft := DraftEvent{
		Key:            p.Key,
		Date:           calendar_math.Truncate(*p.Date),
		Title:          p.Template.Name,
		Description:    p.Template.Description,
		CategoryId:     p.Template.CategoryId,
		TemplateId:     &templateId,
		IsMandatory:    true,
		InvitationText: p.Template.DefaultInvitationText,
		Source:         SourceTemplate,
	}
	if days := spannedDays(p.Template.DefaultDuration); days > 1 {
		endDate := calendar_math.AddDays(draft.Date, days-1)
		draft.EndDate = &endDate
	}
	return draft, true
}

func spannedDays(duration time.Duration) int {
	const day = 24 * time.Hour
	if duration <= day {
		return 1
	}
	days := int(duration / day)
	if duration%day != 0 {
		days++
	}
	return days
}
