package operating_year

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var errSecondActiveYear = errors.New("duplicate key value violates unique constraint \"operating_year_single_active_idx\"")

// RepositoryStub keeps years and events in memory. A failing transaction restores the state it started
// with, and the same constraints as the database schema are enforced.
type RepositoryStub struct {
	txMu        sync.Mutex
	mu          sync.Mutex
	years       map[int]OperatingYear
	events      map[int]Event
	nextYearId  int
	nextEventId int
	failures    map[string]error
	// Locks records every organization lock taken.
	Locks []int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		years:       make(map[int]OperatingYear),
		events:      make(map[int]Event),
		nextYearId:  1,
		nextEventId: 1,
		failures:    make(map[string]error),
	}
}

// FailOn makes the named repository method return err until Cleanup is called.
func (r *RepositoryStub) FailOn(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[method] = err
}

func (r *RepositoryStub) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.years = make(map[int]OperatingYear)
	r.events = make(map[int]Event)
	r.nextYearId = 1
	r.nextEventId = 1
	r.failures = make(map[string]error)
	r.Locks = nil
}

func (r *RepositoryStub) failure(method string) error {
	return r.failures[method]
}

func (r *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.Lock()
	if err := r.failure("WithTransaction"); err != nil {
		r.mu.Unlock()
		return err
	}
	originalYears := make(map[int]OperatingYear, len(r.years))
	for k, v := range r.years {
		originalYears[k] = v
	}
	originalEvents := make(map[int]Event, len(r.events))
	for k, v := range r.events {
		originalEvents[k] = v
	}
	originalNextYearId, originalNextEventId := r.nextYearId, r.nextEventId
	r.mu.Unlock()

	err := fn(r)

	if err != nil {
		r.mu.Lock()
		r.years = originalYears
		r.events = originalEvents
		r.nextYearId, r.nextEventId = originalNextYearId, originalNextEventId
		r.mu.Unlock()
	}
	return err
}

func (r *RepositoryStub) LockOrganization(ctx context.Context, organizationId int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("LockOrganization"); err != nil {
		return err
	}
	r.Locks = append(r.Locks, organizationId)
	return nil
}

func (r *RepositoryStub) ArchiveActiveYears(ctx context.Context, organizationId int, exceptYearId int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("ArchiveActiveYears"); err != nil {
		return 0, err
	}
	archived := 0
	for id, year := range r.years {
		if year.OrganizationId == organizationId && year.Status == StatusActive && id != exceptYearId {
			year.Status = StatusArchived
			r.years[id] = year
			archived++
		}
	}
	return archived, nil
}

func (r *RepositoryStub) CreateYear(ctx context.Context, organizationId int, year OperatingYear) (OperatingYear, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("CreateYear"); err != nil {
		return OperatingYear{}, err
	}
	for _, existing := range r.years {
		if existing.OrganizationId != organizationId {
			continue
		}
		if existing.Name == year.Name {
			return OperatingYear{}, fmt.Errorf("%w: %q", ErrDuplicateYearName, year.Name)
		}
		if year.Status == StatusActive && existing.Status == StatusActive {
			return OperatingYear{}, errSecondActiveYear
		}
	}
	year.Id = r.nextYearId
	year.OrganizationId = organizationId
	year.CreatedAt = time.Now()
	r.nextYearId++
	r.years[year.Id] = year
	return year, nil
}

func (r *RepositoryStub) CreateEvents(ctx context.Context, yearId int, events []Event) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("CreateEvents"); err != nil {
		return 0, err
	}
	if _, ok := r.years[yearId]; !ok {
		return 0, ErrYearNotFound
	}
	for _, event := range events {
		if event.CategoryId <= 0 {
			return 0, errors.New("null value in column \"category_id\" violates not-null constraint")
		}
		event.Id = r.nextEventId
		event.YearId = yearId
		r.nextEventId++
		r.events[event.Id] = event
	}
	return len(events), nil
}

func (r *RepositoryStub) GetYear(ctx context.Context, organizationId int, yearId int) (OperatingYear, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("GetYear"); err != nil {
		return OperatingYear{}, err
	}
	year, ok := r.years[yearId]
	if !ok || year.OrganizationId != organizationId {
		return OperatingYear{}, ErrYearNotFound
	}
	return year, nil
}

func (r *RepositoryStub) ListYears(ctx context.Context, organizationId int) ([]OperatingYear, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("ListYears"); err != nil {
		return nil, err
	}
	years := make([]OperatingYear, 0)
	for _, year := range r.years {
		if year.OrganizationId == organizationId {
			years = append(years, year)
		}
	}
	sort.Slice(years, func(i, j int) bool {
		if !years[i].StartDate.Equal(years[j].StartDate) {
			return years[i].StartDate.After(years[j].StartDate)
		}
		return years[i].Id > years[j].Id
	})
	return years, nil
}

func (r *RepositoryStub) UpdateYearStatus(ctx context.Context, organizationId int, yearId int, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("UpdateYearStatus"); err != nil {
		return err
	}
	year, ok := r.years[yearId]
	if !ok || year.OrganizationId != organizationId {
		return ErrYearNotFound
	}
	if status == StatusActive {
		for id, existing := range r.years {
			if id != yearId && existing.OrganizationId == organizationId && existing.Status == StatusActive {
				return errSecondActiveYear
			}
		}
	}
	year.Status = status
	r.years[yearId] = year
	return nil
}

func (r *RepositoryStub) DeleteYear(ctx context.Context, organizationId int, yearId int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("DeleteYear"); err != nil {
		return err
	}
	year, ok := r.years[yearId]
	if !ok || year.OrganizationId != organizationId {
		return ErrYearNotFound
	}
	delete(r.years, yearId)
	for id, event := range r.events {
		if event.YearId == yearId {
			delete(r.events, id)
		}
	}
	return nil
}

func (r *RepositoryStub) ListEvents(ctx context.Context, organizationId int, yearId int) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("ListEvents"); err != nil {
		return nil, err
	}
	events := make([]Event, 0)
	year, ok := r.years[yearId]
	if !ok || year.OrganizationId != organizationId {
		return events, nil
	}
	for _, event := range r.events {
		if event.YearId == yearId {
			events = append(events, event)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].Id < events[j].Id
	})
	return events, nil
}

func (r *RepositoryStub) GetEventForUpdate(ctx context.Context, organizationId int, yearId int, eventId int) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("GetEventForUpdate"); err != nil {
		return Event{}, err
	}
	event, ok := r.findEvent(organizationId, eventId)
	if !ok || event.YearId != yearId {
		return Event{}, ErrEventNotFound
	}
	return event, nil
}

func (r *RepositoryStub) UpdateEventStatus(ctx context.Context, organizationId int, eventId int, status EventStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("UpdateEventStatus"); err != nil {
		return err
	}
	event, ok := r.findEvent(organizationId, eventId)
	if !ok {
		return ErrEventNotFound
	}
	event.Status = status
	r.events[eventId] = event
	return nil
}

func (r *RepositoryStub) SetPublishedEventId(ctx context.Context, organizationId int, eventId int, publishedEventId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("SetPublishedEventId"); err != nil {
		return err
	}
	event, ok := r.findEvent(organizationId, eventId)
	if !ok {
		return ErrEventNotFound
	}
	event.PublishedEventId = &publishedEventId
	r.events[eventId] = event
	return nil
}

func (r *RepositoryStub) DeleteEvent(ctx context.Context, organizationId int, eventId int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("DeleteEvent"); err != nil {
		return err
	}
	if _, ok := r.findEvent(organizationId, eventId); !ok {
		return ErrEventNotFound
	}
	delete(r.events, eventId)
	return nil
}

func (r *RepositoryStub) findEvent(organizationId int, eventId int) (Event, bool) {
	event, ok := r.events[eventId]
	if !ok {
		return Event{}, false
	}
	year, ok := r.years[event.YearId]
	if !ok || year.OrganizationId != organizationId {
		return Event{}, false
	}
	return event, true
}
