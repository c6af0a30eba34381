package event_bus

import (
	"time"

	"github.com/google/uuid"
)

const OperatingYearEventPublishedType EventType = "operating_year.event.published"

// OperatingYearEventPublished is sent while an event of an operating year is being promoted into the
// organization's live calendar. It is published inside the publishing transaction; a failing handler
// rolls the publication back.
type OperatingYearEventPublished struct {
	PublishedEventId uuid.UUID
	OrganizationId   int
	YearId           int
	EventId          int
	Title            string
	Description      string
	Date             time.Time
	// EndDate is the last day of a multi-day event, nil for a single-day one.
	EndDate        *time.Time
	CategoryId     int
	InvitationText *string
}
