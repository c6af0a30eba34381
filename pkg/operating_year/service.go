package operating_year

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/yearplan/yearplan/internal/event_bus"
	"github.com/yearplan/yearplan/internal/validation"
	"github.com/yearplan/yearplan/pkg/calendar_math"
	"github.com/yearplan/yearplan/pkg/organization"
	"github.com/yearplan/yearplan/pkg/plan_wizard"
)

type Service interface {
	// CommitPlan persists a reviewed plan as a new operating year, all or nothing.
	CommitPlan(ctx context.Context, request CommitRequest) (int, error)
	CreateDraftYear(ctx context.Context, name string, startDate, endDate time.Time) (OperatingYear, error)
	ListYears(ctx context.Context) ([]OperatingYear, error)
	GetYear(ctx context.Context, yearId int) (OperatingYear, error)
	ChangeStatus(ctx context.Context, yearId int, status Status) (OperatingYear, error)
	DeleteYear(ctx context.Context, yearId int) error
	ListEvents(ctx context.Context, yearId int) ([]Event, error)
	UpdateEventStatus(ctx context.Context, yearId int, eventId int, status EventStatus) (Event, error)
	DeleteEvent(ctx context.Context, yearId int, eventId int) error
	// PublishEvent promotes the event into the organization's live calendar and returns the id it got
	// there. An event is published at most once.
	PublishEvent(ctx context.Context, yearId int, eventId int) (uuid.UUID, error)
}

type ServiceImpl struct {
	repo     Repository
	eventBus *event_bus.EventBus
	newId    func() uuid.UUID
}

func NewService(repo Repository, eventBus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, eventBus: eventBus, newId: uuid.New}
}

func (s *ServiceImpl) CommitPlan(ctx context.Context, request CommitRequest) (int, error) {
	organizationId, err := organization.CurrentId(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get current organization: %w", err)
	}

	year, err := newYear(request.Name, request.StartDate, request.EndDate)
	if err != nil {
		return 0, err
	}
	if request.SetActive {
		year.Status = StatusActive
	} else {
		year.Status = StatusPlanning
	}
	events, dropped, err := eventsToCommit(year, request.Events)
	if err != nil {
		return 0, err
	}
	if dropped > 0 {
		log.Warnf("Dropping %d uncategorized drafts from the plan of %q (organization %d)", dropped, year.Name, organizationId)
	}

	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		if err := repo.LockOrganization(ctx, organizationId); err != nil {
			return err
		}
		if request.SetActive {
			archived, err := repo.ArchiveActiveYears(ctx, organizationId, 0)
			if err != nil {
				return err
			}
			if archived > 0 {
				log.Infof("Archived %d active years of organization %d", archived, organizationId)
			}
		}
		year, err = repo.CreateYear(ctx, organizationId, year)
		if err != nil {
			return err
		}
		_, err = repo.CreateEvents(ctx, year.Id, events)
		return err
	})
	if err != nil {
		return 0, persistenceError(err)
	}
	log.Infof("Committed operating year %d %q with %d events (organization %d, status %s)",
		year.Id, year.Name, len(events), organizationId, year.Status)
	return year.Id, nil
}

// newYear validates the name and window of a year to create.
func newYear(name string, startDate, endDate time.Time) (OperatingYear, error) {
	year := OperatingYear{
		Name:      strings.TrimSpace(name),
		StartDate: calendar_math.Truncate(startDate),
		EndDate:   calendar_math.Truncate(endDate),
	}
	if err := validation.Struct(CommitRequest{Name: year.Name}); err != nil {
		return OperatingYear{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if startDate.IsZero() || endDate.IsZero() {
		return OperatingYear{}, fmt.Errorf("%w: start and end dates are required", ErrInvalidWindow)
	}
	if !year.EndDate.After(year.StartDate) {
		return OperatingYear{}, fmt.Errorf("%w: end %s must be after start %s", ErrInvalidWindow,
			year.EndDate.Format(time.DateOnly), year.StartDate.Format(time.DateOnly))
	}
	return year, nil
}

// eventsToCommit turns the drafts into events of year. Drafts without category are dropped and
// counted; every other draft must be valid and lie within the year.
func eventsToCommit(year OperatingYear, drafts []plan_wizard.DraftEvent) ([]Event, int, error) {
	events := make([]Event, 0, len(drafts))
	dropped := 0
	for _, draft := range drafts {
		if !draft.HasCategory() {
			dropped++
			continue
		}
		if draft.Source == "" {
			draft.Source = plan_wizard.SourceManual
		}
		if err := plan_wizard.ValidateDraft(draft); err != nil {
			return nil, 0, fmt.Errorf("%w: %q: %w", ErrInvalidRequest, draft.Title, err)
		}
		draft.Date = calendar_math.Truncate(draft.Date)
		if !year.Contains(draft.Date) {
			return nil, 0, fmt.Errorf("%w: %q on %s is outside %s..%s", ErrEventOutsideWindow, draft.Title,
				draft.Date.Format(time.DateOnly), year.StartDate.Format(time.DateOnly), year.EndDate.Format(time.DateOnly))
		}
		if draft.EndDate != nil {
			endDate := calendar_math.Truncate(*draft.EndDate)
			if !year.Contains(endDate) {
				return nil, 0, fmt.Errorf("%w: %q ends on %s, after the year ends on %s", ErrEventOutsideWindow,
					draft.Title, endDate.Format(time.DateOnly), year.EndDate.Format(time.DateOnly))
			}
			draft.EndDate = &endDate
		}
		events = append(events, eventFromDraft(draft))
	}
	return events, dropped, nil
}

// persistenceError keeps validation and domain errors as they are and reports everything else as a
// persistence failure.
func persistenceError(err error) error {
	for _, known := range []error{
		ErrValidation,
		ErrYearNotFound,
		ErrEventNotFound,
		ErrInvalidTransition,
		ErrYearNotDraft,
		ErrYearArchived,
		ErrAlreadyPublished,
		ErrEventCancelled,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}

func (s *ServiceImpl) CreateDraftYear(ctx context.Context, name string, startDate, endDate time.Time) (OperatingYear, error) {
	organizationId, err := organization.CurrentId(ctx)
	if err != nil {
		return OperatingYear{}, fmt.Errorf("failed to get current organization: %w", err)
	}
	year, err := newYear(name, startDate, endDate)
	if err != nil {
		return OperatingYear{}, err
	}
	year.Status = StatusDraft
	year, err = s.repo.CreateYear(ctx, organizationId, year)
	if err != nil {
		return OperatingYear{}, persistenceError(err)
	}
	return year, nil
}

func (s *ServiceImpl) ListYears(ctx context.Context) ([]OperatingYear, error) {
	organizationId, err := organization.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current organization: %w", err)
	}
	return s.repo.ListYears(ctx, organizationId)
}

func (s *ServiceImpl) GetYear(ctx context.Context, yearId int) (OperatingYear, error) {
	organizationId, err := organization.CurrentId(ctx)
	if err != nil {
		return OperatingYear{}, fmt.Errorf("failed to get current organization: %w", err)
	}
	return s.repo.GetYear(ctx, organizationId, yearId)
}

// ChangeStatus moves the year to status. Activating a year archives the organization's other active
// year in the same transaction.
func (s *ServiceImpl) ChangeStatus(ctx context.Context, yearId int, status Status) (OperatingYear, error) {
	organizationId, err := organization.CurrentId(ctx)
	if err != nil {
		return OperatingYear{}, fmt.Errorf("failed to get current organization: %w", err)
	}
	if !status.Valid() {
		return OperatingYear{}, fmt.Errorf("%w: unknown status %q", ErrInvalidRequest, status)
	}

	var updated OperatingYear
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		if err := repo.LockOrganization(ctx, organizationId); err != nil {
			return err
		}
		year, err := repo.GetYear(ctx, organizationId, yearId)
		if err != nil {
			return err
		}
		if year.Status == status {
			updated = year
			return nil
		}
		if !year.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, year.Status, status)
		}
		if status == StatusActive {
			if _, err := repo.ArchiveActiveYears(ctx, organizationId, yearId); err != nil {
				return err
			}
		}
		if err := repo.UpdateYearStatus(ctx, organizationId, yearId, status); err != nil {
			return err
		}
		year.Status = status
		updated = year
		return nil
	})
	if err != nil {
		return OperatingYear{}, persistenceError(err)
	}
	return updated, nil
}

// DeleteYear deletes a DRAFT year together with its events.
func (s *ServiceImpl) DeleteYear(ctx context.Context, yearId int) error {
	organizationId, err := organization.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current organization: %w", err)
	}
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		if err := repo.LockOrganization(ctx, organizationId); err != nil {
			return err
		}
		year, err := repo.GetYear(ctx, organizationId, yearId)
		if err != nil {
			return err
		}
		if year.Status != StatusDraft {
			return fmt.Errorf("%w: %q is %s", ErrYearNotDraft, year.Name, year.Status)
		}
		return repo.DeleteYear(ctx, organizationId, yearId)
	})
	if err != nil {
		return persistenceError(err)
	}
	return nil
}

func (s *ServiceImpl) ListEvents(ctx context.Context, yearId int) ([]Event, error) {
	organizationId, err := organization.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current organization: %w", err)
	}
	if _, err := s.repo.GetYear(ctx, organizationId, yearId); err != nil {
		return nil, err
	}
	return s.repo.ListEvents(ctx, organizationId, yearId)
}

func (s *ServiceImpl) UpdateEventStatus(ctx context.Context, yearId int, eventId int, status EventStatus) (Event, error) {
	if !status.Valid() {
		return Event{}, fmt.Errorf("%w: unknown event status %q", ErrInvalidRequest, status)
	}
	var updated Event
	err := s.withMutableEvent(ctx, yearId, eventId, func(repo Repository, organizationId int, event Event) error {
		if err := repo.UpdateEventStatus(ctx, organizationId, eventId, status); err != nil {
			return err
		}
		event.Status = status
		updated = event
		return nil
	})
	if err != nil {
		return Event{}, err
	}
	return updated, nil
}

func (s *ServiceImpl) DeleteEvent(ctx context.Context, yearId int, eventId int) error {
	return s.withMutableEvent(ctx, yearId, eventId, func(repo Repository, organizationId int, event Event) error {
		return repo.DeleteEvent(ctx, organizationId, eventId)
	})
}

func (s *ServiceImpl) PublishEvent(ctx context.Context, yearId int, eventId int) (uuid.UUID, error) {
	var publishedEventId uuid.UUID
	err := s.withMutableEvent(ctx, yearId, eventId, func(repo Repository, organizationId int, event Event) error {
		if event.IsPublished() {
			return fmt.Errorf("%w: event %d is published as %s", ErrAlreadyPublished, eventId, event.PublishedEventId)
		}
		if event.Status == EventCancelled {
			return fmt.Errorf("%w: event %d", ErrEventCancelled, eventId)
		}
		publishedEventId = s.newId()
		if err := repo.SetPublishedEventId(ctx, organizationId, eventId, publishedEventId); err != nil {
			return err
		}
		return s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.OperatingYearEventPublishedType,
			event_bus.OperatingYearEventPublished{
				PublishedEventId: publishedEventId,
				OrganizationId:   organizationId,
				YearId:           yearId,
				EventId:          eventId,
				Title:            event.Title,
				Description:      event.Description,
				Date:             event.Date,
				EndDate:          event.EndDate,
				CategoryId:       event.CategoryId,
				InvitationText:   event.InvitationText,
			}))
	})
	if err != nil {
		return uuid.Nil, err
	}
	log.Infof("Published event %d of year %d as %s", eventId, yearId, publishedEventId)
	return publishedEventId, nil
}

// withMutableEvent runs fn in a transaction holding the event's row lock, after checking that the
// event's year is not archived.
func (s *ServiceImpl) withMutableEvent(
	ctx context.Context,
	yearId int,
	eventId int,
	fn func(repo Repository, organizationId int, event Event) error,
) error {
	organizationId, err := organization.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current organization: %w", err)
	}
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		year, err := repo.GetYear(ctx, organizationId, yearId)
		if err != nil {
			return err
		}
		if year.Status == StatusArchived {
			return fmt.Errorf("%w: %q", ErrYearArchived, year.Name)
		}
		event, err := repo.GetEventForUpdate(ctx, organizationId, yearId, eventId)
		if err != nil {
			return err
		}
		return fn(repo, organizationId, event)
	})
	if err != nil {
		return persistenceError(err)
	}
	return nil
}
