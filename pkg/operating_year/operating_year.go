package operating_year

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yearplan/yearplan/pkg/plan_wizard"
)

// ErrValidation is the parent of every error refusing a request before anything is written.
var ErrValidation = errors.New("validation failed")

var ErrInvalidWindow = fmt.Errorf("%w: invalid year window", ErrValidation)
var ErrEventOutsideWindow = fmt.Errorf("%w: event outside the year window", ErrValidation)
var ErrInvalidRequest = fmt.Errorf("%w: invalid request", ErrValidation)
var ErrDuplicateYearName = fmt.Errorf("%w: year name already used", ErrValidation)

var ErrPersistence = errors.New("could not persist the operating year")
var ErrYearNotFound = errors.New("operating year not found")
var ErrEventNotFound = errors.New("event not found")
var ErrInvalidTransition = errors.New("invalid status transition")
var ErrYearNotDraft = errors.New("operating year is not a draft")
var ErrYearArchived = errors.New("operating year is archived")
var ErrAlreadyPublished = errors.New("event already published")
var ErrEventCancelled = errors.New("event is cancelled")

type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusPlanning Status = "PLANNING"
	StatusActive   Status = "ACTIVE"
	StatusArchived Status = "ARCHIVED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPlanning, StatusActive, StatusArchived:
		return true
	}
	return false
}

// CanTransitionTo reports whether a year may move from s to next. The lifecycle only moves forward
// (DRAFT, PLANNING, ACTIVE, ARCHIVED), except that an archived year may be activated again.
// Staying in the same status is always allowed.
func (s Status) CanTransitionTo(next Status) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	switch s {
	case StatusDraft:
		return true
	case StatusPlanning:
		return next == StatusActive || next == StatusArchived
	case StatusActive:
		return next == StatusArchived
	case StatusArchived:
		return next == StatusActive
	}
	return false
}

type EventStatus string

const (
	EventPlanned   EventStatus = "PLANNED"
	EventConfirmed EventStatus = "CONFIRMED"
	EventCancelled EventStatus = "CANCELLED"
)

func (s EventStatus) Valid() bool {
	return s == EventPlanned || s == EventConfirmed || s == EventCancelled
}

// OperatingYear is one planning cycle of an organization. Both StartDate and EndDate are days of the
// year.
type OperatingYear struct {
	Id             int
	OrganizationId int
	Name           string
	StartDate      time.Time
	EndDate        time.Time
	Status         Status
	CreatedAt      time.Time
}

func (y OperatingYear) Contains(date time.Time) bool {
	return !date.Before(y.StartDate) && !date.After(y.EndDate)
}

// Event is a committed event of an operating year.
type Event struct {
	Id               int
	YearId           int
	Date             time.Time
	EndDate          *time.Time
	Title            string
	Description      string
	CategoryId       int
	TemplateId       *int
	RecurringRuleId  *int
	IsMandatory      bool
	InvitationText   *string
	Source           plan_wizard.Source
	Status           EventStatus
	PublishedEventId *uuid.UUID
}

func (e Event) IsPublished() bool {
	return e.PublishedEventId != nil
}

// CommitRequest carries an approved plan. Events are the reviewed drafts.
type CommitRequest struct {
	Name      string `validate:"required,max=200"`
	StartDate time.Time
	EndDate   time.Time
	SetActive bool
	Events    []plan_wizard.DraftEvent
}

// eventFromDraft builds the event committed for a categorized draft.
func eventFromDraft(draft plan_wizard.DraftEvent) Event {
	source := draft.Source
	if source == "" {
		source = plan_wizard.SourceManual
	}
	return Event{
		Date:            draft.Date,
		EndDate:         draft.EndDate,
		Title:           draft.Title,
		Description:     draft.Description,
		CategoryId:      *draft.CategoryId,
		TemplateId:      draft.TemplateId,
		RecurringRuleId: draft.RecurringRuleId,
		IsMandatory:     draft.IsMandatory,
		InvitationText:  draft.InvitationText,
		Source:          source,
		Status:          EventPlanned,
	}
}
