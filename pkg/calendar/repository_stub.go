package calendar

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type RepositoryStub struct {
	mu     sync.Mutex
	events map[uuid.UUID]Event
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{events: make(map[uuid.UUID]Event)}
}

func (r *RepositoryStub) StoreEvent(ctx context.Context, event Event) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for uid, existing := range r.events {
		if existing.SourceEventId == event.SourceEventId {
			delete(r.events, uid)
		}
	}
	event.PublishedAt = time.Now()
	r.events[event.UID] = event
	return event, nil
}

func (r *RepositoryStub) GetEvent(ctx context.Context, organizationId int, uid uuid.UUID) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[uid]
	if !ok || event.OrganizationId != organizationId {
		return Event{}, ErrEventNotFound
	}
	return event, nil
}

func (r *RepositoryStub) GetEvents(ctx context.Context, organizationId int, from, to time.Time) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]Event, 0)
	for _, event := range r.events {
		if event.OrganizationId != organizationId {
			continue
		}
		if event.Date.After(to) || event.LastDate().Before(from) {
			continue
		}
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].Title < events[j].Title
	})
	return events, nil
}

func (r *RepositoryStub) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = make(map[uuid.UUID]Event)
}
