package operating_year

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/yearplan/yearplan/internal/rest"
	"github.com/yearplan/yearplan/internal/validation"
	"github.com/yearplan/yearplan/pkg/organization"
	"github.com/yearplan/yearplan/pkg/plan_wizard"
)

type YearDTO struct {
	Id        int    `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Status    string `json:"status"`
}

type EventDTO struct {
	Id               int     `json:"id"`
	YearId           int     `json:"yearId"`
	Date             string  `json:"date"`
	EndDate          *string `json:"endDate,omitempty"`
	Title            string  `json:"title"`
	Description      string  `json:"description,omitempty"`
	CategoryId       int     `json:"categoryId"`
	TemplateId       *int    `json:"templateId,omitempty"`
	RecurringRuleId  *int    `json:"recurringRuleId,omitempty"`
	IsMandatory      bool    `json:"isMandatory"`
	InvitationText   *string `json:"invitationText,omitempty"`
	Source           string  `json:"source"`
	Status           string  `json:"status"`
	PublishedEventId *string `json:"publishedEventId,omitempty"`
}

type CommitRequestDTO struct {
	Name      string                 `json:"name"`
	StartDate string                 `json:"startDate"`
	EndDate   string                 `json:"endDate"`
	SetActive bool                   `json:"setActive"`
	Events    []plan_wizard.DraftDTO `json:"events"`
}

type DraftYearRequestDTO struct {
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type CommitResponseDTO struct {
	YearId int `json:"yearId"`
}

type StatusRequestDTO struct {
	Status string `json:"status"`
}

type PublishResponseDTO struct {
	PublishedEventId string `json:"publishedEventId"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

// ListYears godoc
// @Summary List operating years
// @Description Get the operating years of the current organization, most recent first
// @Tags OperatingYear
// @Produce json
// @Success 200 {array} YearDTO
// @Failure 403 {object} rest.ErrorResponse
// @Router /api/year [get]
func (h *Handler) ListYears(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing operating years")
	years, err := h.service.ListYears(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	dtos := make([]YearDTO, 0, len(years))
	for _, year := range years {
		dtos = append(dtos, YearToDTO(year))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// CommitPlan godoc
// @Summary Commit a plan
// @Description Create an operating year with the reviewed events in one transaction
// @Tags OperatingYear
// @Accept json
// @Produce json
// @Param plan body CommitRequestDTO true "Reviewed plan"
// @Success 201 {object} CommitResponseDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 409 {object} rest.ErrorResponse "Year name already used"
// @Failure 500 {object} rest.ErrorResponse
// @Router /api/year [post]
func (h *Handler) CommitPlan(w http.ResponseWriter, r *http.Request) {
	var requestDTO CommitRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&requestDTO); err != nil {
		writeInvalidBody(w, err)
		return
	}
	log.Debugf("Committing plan %q with %d events", requestDTO.Name, len(requestDTO.Events))
	request, err := DTOToCommitRequest(requestDTO)
	if err != nil {
		handleError(w, err)
		return
	}

	yearId, err := h.service.CommitPlan(r.Context(), request)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, CommitResponseDTO{YearId: yearId})
}

// CreateDraftYear godoc
// @Summary Create an empty draft year
// @Tags OperatingYear
// @Accept json
// @Produce json
// @Param year body DraftYearRequestDTO true "Year"
// @Success 201 {object} YearDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 409 {object} rest.ErrorResponse
// @Router /api/year/draft [post]
func (h *Handler) CreateDraftYear(w http.ResponseWriter, r *http.Request) {
	var requestDTO DraftYearRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&requestDTO); err != nil {
		writeInvalidBody(w, err)
		return
	}
	startDate, endDate, err := parseWindow(requestDTO.StartDate, requestDTO.EndDate)
	if err != nil {
		handleError(w, err)
		return
	}
	year, err := h.service.CreateDraftYear(r.Context(), requestDTO.Name, startDate, endDate)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, YearToDTO(year))
}

// GetYear godoc
// @Summary Get an operating year
// @Tags OperatingYear
// @Produce json
// @Param yearId path int true "Operating year ID"
// @Success 200 {object} YearDTO
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/year/{yearId} [get]
func (h *Handler) GetYear(w http.ResponseWriter, r *http.Request) {
	yearId, ok := pathId(w, r, "yearId")
	if !ok {
		return
	}
	year, err := h.service.GetYear(r.Context(), yearId)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, YearToDTO(year))
}

// ChangeStatus godoc
// @Summary Change the status of an operating year
// @Description Activating a year archives the organization's current active year
// @Tags OperatingYear
// @Accept json
// @Produce json
// @Param yearId path int true "Operating year ID"
// @Param status body StatusRequestDTO true "New status"
// @Success 200 {object} YearDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Failure 409 {object} rest.ErrorResponse "Transition not allowed"
// @Router /api/year/{yearId}/status [put]
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	yearId, ok := pathId(w, r, "yearId")
	if !ok {
		return
	}
	var requestDTO StatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&requestDTO); err != nil {
		writeInvalidBody(w, err)
		return
	}
	year, err := h.service.ChangeStatus(r.Context(), yearId, Status(requestDTO.Status))
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, YearToDTO(year))
}

// DeleteYear godoc
// @Summary Delete a draft year
// @Tags OperatingYear
// @Param yearId path int true "Operating year ID"
// @Success 204 "No Content"
// @Failure 404 {object} rest.ErrorResponse
// @Failure 409 {object} rest.ErrorResponse "Year is not a draft"
// @Router /api/year/{yearId} [delete]
func (h *Handler) DeleteYear(w http.ResponseWriter, r *http.Request) {
	yearId, ok := pathId(w, r, "yearId")
	if !ok {
		return
	}
	if err := h.service.DeleteYear(r.Context(), yearId); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEvents godoc
// @Summary List the events of an operating year
// @Tags OperatingYear
// @Produce json
// @Param yearId path int true "Operating year ID"
// @Success 200 {array} EventDTO
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/year/{yearId}/event [get]
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	yearId, ok := pathId(w, r, "yearId")
	if !ok {
		return
	}
	events, err := h.service.ListEvents(r.Context(), yearId)
	if err != nil {
		handleError(w, err)
		return
	}
	dtos := make([]EventDTO, 0, len(events))
	for _, event := range events {
		dtos = append(dtos, EventToDTO(event))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// UpdateEventStatus godoc
// @Summary Change the status of an event
// @Tags OperatingYear
// @Accept json
// @Produce json
// @Param yearId path int true "Operating year ID"
// @Param eventId path int true "Event ID"
// @Param status body StatusRequestDTO true "PLANNED, CONFIRMED or CANCELLED"
// @Success 200 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Failure 409 {object} rest.ErrorResponse "Year is archived"
// @Router /api/year/{yearId}/event/{eventId}/status [put]
func (h *Handler) UpdateEventStatus(w http.ResponseWriter, r *http.Request) {
	yearId, ok := pathId(w, r, "yearId")
	if !ok {
		return
	}
	eventId, ok := pathId(w, r, "eventId")
	if !ok {
		return
	}
	var requestDTO StatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&requestDTO); err != nil {
		writeInvalidBody(w, err)
		return
	}
	event, err := h.service.UpdateEventStatus(r.Context(), yearId, eventId, EventStatus(requestDTO.Status))
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, EventToDTO(event))
}

// DeleteEvent godoc
// @Summary Delete an event
// @Tags OperatingYear
// @Param yearId path int true "Operating year ID"
// @Param eventId path int true "Event ID"
// @Success 204 "No Content"
// @Failure 404 {object} rest.ErrorResponse
// @Failure 409 {object} rest.ErrorResponse "Year is archived"
// @Router /api/year/{yearId}/event/{eventId} [delete]
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	yearId, ok := pathId(w, r, "yearId")
	if !ok {
		return
	}
	eventId, ok := pathId(w, r, "eventId")
	if !ok {
		return
	}
	if err := h.service.DeleteEvent(r.Context(), yearId, eventId); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PublishEvent godoc
// @Summary Publish an event
// @Description Promote the event into the organization's live calendar
// @Tags OperatingYear
// @Produce json
// @Param yearId path int true "Operating year ID"
// @Param eventId path int true "Event ID"
// @Success 201 {object} PublishResponseDTO
// @Failure 404 {object} rest.ErrorResponse
// @Failure 409 {object} rest.ErrorResponse "Already published"
// @Router /api/year/{yearId}/event/{eventId}/publish [post]
func (h *Handler) PublishEvent(w http.ResponseWriter, r *http.Request) {
	yearId, ok := pathId(w, r, "yearId")
	if !ok {
		return
	}
	eventId, ok := pathId(w, r, "eventId")
	if !ok {
		return
	}
	publishedEventId, err := h.service.PublishEvent(r.Context(), yearId, eventId)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, PublishResponseDTO{PublishedEventId: publishedEventId.String()})
}

func pathId(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, rest.ErrorResponse{
			Error:   "Invalid " + name,
			Details: err.Error(),
		})
		return 0, false
	}
	return id, true
}

func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, organization.ErrNoOrganization):
		rest.WriteError(w, http.StatusForbidden, rest.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrDuplicateYearName):
		rest.WriteError(w, http.StatusConflict, rest.ErrorResponse{Error: "Year name already used", Details: err.Error()})
	case errors.Is(err, ErrValidation):
		response := rest.ErrorResponse{Error: "Invalid plan", Details: err.Error()}
		if fields, ok := validation.Fields(err); ok {
			response.Fields = fields
		}
		rest.WriteError(w, http.StatusBadRequest, response)
	case errors.Is(err, ErrYearNotFound), errors.Is(err, ErrEventNotFound):
		rest.WriteError(w, http.StatusNotFound, rest.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrAlreadyPublished),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrYearNotDraft),
		errors.Is(err, ErrYearArchived),
		errors.Is(err, ErrEventCancelled):
		rest.WriteError(w, http.StatusConflict, rest.ErrorResponse{Error: err.Error()})
	default:
		log.Errorf("request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, rest.ErrorResponse{Error: "Internal error", Details: err.Error()})
	}
}

func writeInvalidBody(w http.ResponseWriter, err error) {
	rest.WriteError(w, http.StatusBadRequest, rest.ErrorResponse{
		Error:   "Invalid request body",
		Details: err.Error(),
	})
}

func parseWindow(start, end string) (time.Time, time.Time, error) {
	startDate, err := plan_wizard.ParseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Join(ErrInvalidWindow, err)
	}
	endDate, err := plan_wizard.ParseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Join(ErrInvalidWindow, err)
	}
	return startDate, endDate, nil
}

func DTOToCommitRequest(dto CommitRequestDTO) (CommitRequest, error) {
	startDate, endDate, err := parseWindow(dto.StartDate, dto.EndDate)
	if err != nil {
		return CommitRequest{}, err
	}
	events, err := plan_wizard.DraftsFromDTO(dto.Events)
	if err != nil {
		return CommitRequest{}, errors.Join(ErrInvalidRequest, err)
	}
	return CommitRequest{
		Name:      dto.Name,
		StartDate: startDate,
		EndDate:   endDate,
		SetActive: dto.SetActive,
		Events:    events,
	}, nil
}

func YearToDTO(year OperatingYear) YearDTO {
	return YearDTO{
		Id:        year.Id,
		Name:      year.Name,
		StartDate: year.StartDate.Format(time.DateOnly),
		EndDate:   year.EndDate.Format(time.DateOnly),
		Status:    string(year.Status),
	}
}

func EventToDTO(event Event) EventDTO {
	dto := EventDTO{
		Id:              event.Id,
		YearId:          event.YearId,
		Date:            event.Date.Format(time.DateOnly),
		Title:           event.Title,
		Description:     event.Description,
		CategoryId:      event.CategoryId,
		TemplateId:      event.TemplateId,
		RecurringRuleId: event.RecurringRuleId,
		IsMandatory:     event.IsMandatory,
		InvitationText:  event.InvitationText,
		Source:          string(event.Source),
		Status:          string(event.Status),
	}
	if event.EndDate != nil {
		endDate := event.EndDate.Format(time.DateOnly)
		dto.EndDate = &endDate
	}
	if event.PublishedEventId != nil {
		publishedEventId := event.PublishedEventId.String()
		dto.PublishedEventId = &publishedEventId
	}
	return dto
}
