package calendar

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrEventNotFound = errors.New("calendar event not found")
var ErrInvalidRange = errors.New("invalid date range")

// Event is an entry of the organization's live calendar, created when a planned event is published.
type Event struct {
	UID            uuid.UUID
	OrganizationId int
	// SourceEventId is the operating year event the entry was published from.
	SourceEventId  int
	Title          string
	Description    string
	Date           time.Time
	EndDate        *time.Time
	CategoryId     int
	InvitationText *string
	PublishedAt    time.Time
}

// LastDate is the last day the event occupies.
func (e Event) LastDate() time.Time {
	if e.EndDate != nil {
		return *e.EndDate
	}
	return e.Date
}
