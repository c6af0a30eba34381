package calendar

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/yearplan/yearplan/internal/rest"
	"github.com/yearplan/yearplan/pkg/organization"
)

type EventDTO struct {
	UID            string  `json:"uid"`
	SourceEventId  int     `json:"sourceEventId"`
	Title          string  `json:"title"`
	Description    string  `json:"description,omitempty"`
	Date           string  `json:"date"`
	EndDate        *string `json:"endDate,omitempty"`
	CategoryId     int     `json:"categoryId"`
	InvitationText *string `json:"invitationText,omitempty"`
	PublishedAt    string  `json:"publishedAt"`
}

type Handler struct {
	calendar Service
}

func NewHandler(s Service) *Handler {
	return &Handler{s}
}

// GetEvents godoc
// @Summary List live calendar events
// @Description Get the published events overlapping the given range
// @Tags Calendar
// @Produce json
// @Param from query string true "First day (YYYY-MM-DD)"
// @Param to query string true "Last day (YYYY-MM-DD)"
// @Success 200 {array} EventDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/calendar/event [get]
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	from, err := time.Parse(time.DateOnly, r.URL.Query().Get("from"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, rest.ErrorResponse{
			Error:   "Invalid from (date) format",
			Details: "'from' must be in YYYY-MM-DD format",
		})
		return
	}
	to, err := time.Parse(time.DateOnly, r.URL.Query().Get("to"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, rest.ErrorResponse{
			Error:   "Invalid to (date) format",
			Details: "'to' must be in YYYY-MM-DD format",
		})
		return
	}

	events, err := h.calendar.GetEvents(r.Context(), from, to)
	if err != nil {
		handleError(w, err)
		return
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, eventToDTO(e))
	}
	log.Tracef("Calendar events returned: %d", len(dtos))
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// GetEvent godoc
// @Summary Get a live calendar event
// @Tags Calendar
// @Produce json
// @Param eventUid path string true "Calendar event UID"
// @Success 200 {object} EventDTO
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/calendar/event/{eventUid} [get]
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	uid, err := uuid.Parse(mux.Vars(r)["eventUid"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, rest.ErrorResponse{Error: "Invalid event uid", Details: err.Error()})
		return
	}
	event, err := h.calendar.GetEvent(r.Context(), uid)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, eventToDTO(event))
}

func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, organization.ErrNoOrganization):
		rest.WriteError(w, http.StatusForbidden, rest.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrInvalidRange):
		rest.WriteError(w, http.StatusBadRequest, rest.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrEventNotFound):
		rest.WriteError(w, http.StatusNotFound, rest.ErrorResponse{Error: err.Error()})
	default:
		log.Errorf("calendar request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, rest.ErrorResponse{Error: "Internal error", Details: err.Error()})
	}
}

func eventToDTO(e Event) EventDTO {
	dto := EventDTO{
		UID:            e.UID.String(),
		SourceEventId:  e.SourceEventId,
		Title:          e.Title,
		Description:    e.Description,
		Date:           e.Date.Format(time.DateOnly),
		CategoryId:     e.CategoryId,
		InvitationText: e.InvitationText,
		PublishedAt:    e.PublishedAt.UTC().Format(time.RFC3339),
	}
	if e.EndDate != nil {
		endDate := e.EndDate.Format(time.DateOnly)
		dto.EndDate = &endDate
	}
	return dto
}
