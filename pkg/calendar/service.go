package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/yearplan/yearplan/internal/event_bus"
	"github.com/yearplan/yearplan/pkg/calendar_math"
	"github.com/yearplan/yearplan/pkg/organization"
)

type Service interface {
	GetEvents(ctx context.Context, from, to time.Time) ([]Event, error)
	GetEvent(ctx context.Context, uid uuid.UUID) (Event, error)
}

type ServiceImpl struct {
	repo Repository
}

// NewService creates the calendar and subscribes it to published operating year events.
func NewService(repo Repository, eventBus *event_bus.EventBus) *ServiceImpl {
	s := &ServiceImpl{repo: repo}
	event_bus.SubscribeTyped(eventBus, event_bus.OperatingYearEventPublishedType,
		func(e event_bus.EventT[event_bus.OperatingYearEventPublished]) error {
			return s.handlePublished(e.Context(), e.Data)
		})
	return s
}

func (s *ServiceImpl) handlePublished(ctx context.Context, published event_bus.OperatingYearEventPublished) error {
	event := Event{
		UID:            published.PublishedEventId,
		OrganizationId: published.OrganizationId,
		SourceEventId:  published.EventId,
		Title:          published.Title,
		Description:    published.Description,
		Date:           calendar_math.Truncate(published.Date),
		CategoryId:     published.CategoryId,
		InvitationText: published.InvitationText,
	}
	if published.EndDate != nil {
		endDate := calendar_math.Truncate(*published.EndDate)
		event.EndDate = &endDate
	}
	if _, err := s.repo.StoreEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to store published event %d: %w", published.EventId, err)
	}
	log.Debugf("Calendar entry %s created for event %d of organization %d",
		event.UID, published.EventId, published.OrganizationId)
	return nil
}

func (s *ServiceImpl) GetEvents(ctx context.Context, from, to time.Time) ([]Event, error) {
	organizationId, err := organization.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current organization: %w", err)
	}
	from, to = calendar_math.Truncate(from), calendar_math.Truncate(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: %s is before %s", ErrInvalidRange, to.Format(time.DateOnly), from.Format(time.DateOnly))
	}
	return s.repo.GetEvents(ctx, organizationId, from, to)
}

func (s *ServiceImpl) GetEvent(ctx context.Context, uid uuid.UUID) (Event, error) {
	organizationId, err := organization.CurrentId(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current organization: %w", err)
	}
	return s.repo.GetEvent(ctx, organizationId, uid)
}
