package plan_wizard

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/yearplan/yearplan/internal/rest"
	"github.com/yearplan/yearplan/internal/validation"
	"github.com/yearplan/yearplan/pkg/event_template"
	"github.com/yearplan/yearplan/pkg/organization"
	"github.com/yearplan/yearplan/pkg/stats"
)

type WindowDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type DraftDTO struct {
	Key             string  `json:"key"`
	Date            string  `json:"date"`
	EndDate         *string `json:"endDate,omitempty"`
	Title           string  `json:"title"`
	Description     string  `json:"description,omitempty"`
	CategoryId      *int    `json:"categoryId,omitempty"`
	TemplateId      *int    `json:"templateId,omitempty"`
	RecurringRuleId *int    `json:"recurringRuleId,omitempty"`
	IsMandatory     bool    `json:"isMandatory"`
	InvitationText  *string `json:"invitationText,omitempty"`
	Source          string  `json:"source"`
}

type PlacementDTO struct {
	Key      string                     `json:"key"`
	Template event_template.TemplateDTO `json:"template"`
	Date     *string                    `json:"date,omitempty"`
	IsPlaced bool                       `json:"isPlaced"`
}

type PlacementChoiceDTO struct {
	Key        string  `json:"key"`
	TemplateId int     `json:"templateId"`
	Date       *string `json:"date,omitempty"`
}

type ExpandRequestDTO struct {
	Window  WindowDTO `json:"window"`
	RuleIds []int     `json:"ruleIds,omitempty"`
}

type SuggestionsRequestDTO struct {
	Window WindowDTO `json:"window"`
}

type ReviewRequestDTO struct {
	Window     WindowDTO            `json:"window"`
	Recurring  []DraftDTO           `json:"recurring"`
	Placements []PlacementChoiceDTO `json:"placements"`
	Manual     []DraftDTO           `json:"manual"`
}

type StatisticsDTO struct {
	Total             int            `json:"total"`
	Mandatory         int            `json:"mandatory"`
	ByCategory        map[string]int `json:"byCategory"`
	BySource          map[string]int `json:"bySource"`
	Uncategorized     int            `json:"uncategorized"`
	UnplacedMandatory int            `json:"unplacedMandatory"`
}

type PlanDTO struct {
	Window                 WindowDTO      `json:"window"`
	Events                 []DraftDTO     `json:"events"`
	Uncategorized          []DraftDTO     `json:"uncategorized"`
	OutOfWindow            []DraftDTO     `json:"outOfWindow"`
	UnplacedMandatory      []PlacementDTO `json:"unplacedMandatory"`
	UnplacedMandatoryCount int            `json:"unplacedMandatoryCount"`
	Statistics             StatisticsDTO  `json:"statistics"`
}

type Handler struct {
	service          Service
	csvStatsRenderer stats.StatsRenderer
}

func NewHandler(service Service, csvStatsRenderer stats.StatsRenderer) *Handler {
	return &Handler{service, csvStatsRenderer}
}

// GetDefaultWindow godoc
// @Summary Propose the next operating year
// @Description Get the window of the next operating year, starting at the configured first month
// @Tags Wizard
// @Produce json
// @Success 200 {object} WindowDTO
// @Router /api/wizard/window [get]
func (h *Handler) GetDefaultWindow(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, WindowToDTO(h.service.DefaultWindow()))
}

// ExpandRules godoc
// @Summary Expand recurring rules
// @Description Generate draft events from the selected active rules within the window
// @Tags Wizard
// @Accept json
// @Produce json
// @Param request body ExpandRequestDTO true "Window and rule ids"
// @Success 200 {array} DraftDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/wizard/expand [post]
func (h *Handler) ExpandRules(w http.ResponseWriter, r *http.Request) {
	var request ExpandRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeInvalidBody(w, err)
		return
	}
	window, err := WindowFromDTO(request.Window)
	if err != nil {
		handleError(w, err)
		return
	}
	log.Debugf("Expanding rules %v within %s", request.RuleIds, request.Window)

	drafts, err := h.service.ExpandRules(r.Context(), window, request.RuleIds)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, DraftsToDTO(drafts))
}

// SuggestPlacements godoc
// @Summary Suggest mandatory template placements
// @Description Propose a date for every active mandatory template within the window
// @Tags Wizard
// @Accept json
// @Produce json
// @Param request body SuggestionsRequestDTO true "Window"
// @Success 200 {array} PlacementDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/wizard/suggestions [post]
func (h *Handler) SuggestPlacements(w http.ResponseWriter, r *http.Request) {
	var request SuggestionsRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeInvalidBody(w, err)
		return
	}
	window, err := WindowFromDTO(request.Window)
	if err != nil {
		handleError(w, err)
		return
	}

	placements, err := h.service.SuggestPlacements(r.Context(), window)
	if err != nil {
		handleError(w, err)
		return
	}
	dtos := make([]PlacementDTO, 0, len(placements))
	for _, placement := range placements {
		dtos = append(dtos, PlacementToDTO(placement))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// Review godoc
// @Summary Review the plan
// @Description Merge recurring, mandatory and manual drafts into the plan of the year
// @Tags Wizard
// @Accept json
// @Produce json
// @Produce text/csv
// @Param format query string false "csv to download the statistics"
// @Param request body ReviewRequestDTO true "Wizard state"
// @Success 200 {object} PlanDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/wizard/review [post]
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	var request ReviewRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeInvalidBody(w, err)
		return
	}
	input, err := reviewInputFromDTO(request)
	if err != nil {
		handleError(w, err)
		return
	}

	plan, err := h.service.Review(r.Context(), input)
	if err != nil {
		handleError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" || r.Header.Get("Accept") == "text/csv" {
		csv, err := h.csvStatsRenderer.RenderStats(Summarize(plan))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(csv)); err != nil {
			log.Errorf("failed to write plan statistics: %v", err)
		}
		return
	}
	rest.WriteJSON(w, http.StatusOK, PlanToDTO(plan))
}

func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, organization.ErrNoOrganization):
		rest.WriteError(w, http.StatusForbidden, rest.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrInvalidWindow),
		errors.Is(err, ErrInvalidDraft),
		errors.Is(err, ErrUnknownRule),
		errors.Is(err, ErrUnknownPlacement),
		errors.Is(err, ErrUnknownDraft):
		response := rest.ErrorResponse{Error: "Invalid plan", Details: err.Error()}
		if fields, ok := validation.Fields(err); ok {
			response.Fields = fields
		}
		rest.WriteError(w, http.StatusBadRequest, response)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeInvalidBody(w http.ResponseWriter, err error) {
	rest.WriteError(w, http.StatusBadRequest, rest.ErrorResponse{
		Error:   "Invalid request body",
		Details: err.Error(),
	})
}

func (w WindowDTO) String() string {
	return w.Start + ".." + w.End
}

func WindowToDTO(window Window) WindowDTO {
	return WindowDTO{
		Start: window.Start.Format(time.DateOnly),
		End:   window.End.Format(time.DateOnly),
	}
}

func WindowFromDTO(dto WindowDTO) (Window, error) {
	start, err := ParseDate(dto.Start)
	if err != nil {
		return Window{}, fmt.Errorf("%w: start: %w", ErrInvalidWindow, err)
	}
	end, err := ParseDate(dto.End)
	if err != nil {
		return Window{}, fmt.Errorf("%w: end: %w", ErrInvalidWindow, err)
	}
	return NewWindow(start, end)
}

// ParseDate parses a date in the YYYY-MM-DD form used by every date field of the API.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, value, time.UTC)
}

func formatOptionalDate(date *time.Time) *string {
	if date == nil {
		return nil
	}
	formatted := date.Format(time.DateOnly)
	return &formatted
}

func parseOptionalDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	date, err := ParseDate(*value)
	if err != nil {
		return nil, err
	}
	return &date, nil
}

func DraftToDTO(draft DraftEvent) DraftDTO {
	return DraftDTO{
		Key:             draft.Key,
		Date:            draft.Date.Format(time.DateOnly),
		EndDate:         formatOptionalDate(draft.EndDate),
		Title:           draft.Title,
		Description:     draft.Description,
		CategoryId:      draft.CategoryId,
		TemplateId:      draft.TemplateId,
		RecurringRuleId: draft.RecurringRuleId,
		IsMandatory:     draft.IsMandatory,
		InvitationText:  draft.InvitationText,
		Source:          string(draft.Source),
	}
}

func DraftsToDTO(drafts []DraftEvent) []DraftDTO {
	dtos := make([]DraftDTO, 0, len(drafts))
	for _, draft := range drafts {
		dtos = append(dtos, DraftToDTO(draft))
	}
	return dtos
}

// DraftFromDTO converts a draft sent by the client. Dates that cannot be parsed are reported as
// ErrInvalidDraft.
func DraftFromDTO(dto DraftDTO) (DraftEvent, error) {
	date, err := ParseDate(dto.Date)
	if err != nil {
		return DraftEvent{}, fmt.Errorf("%w: draft %q: date: %w", ErrInvalidDraft, dto.Key, err)
	}
	endDate, err := parseOptionalDate(dto.EndDate)
	if err != nil {
		return DraftEvent{}, fmt.Errorf("%w: draft %q: end date: %w", ErrInvalidDraft, dto.Key, err)
	}
	return DraftEvent{
		Key:             dto.Key,
		Date:            date,
		EndDate:         endDate,
		Title:           dto.Title,
		Description:     dto.Description,
		CategoryId:      dto.CategoryId,
		TemplateId:      dto.TemplateId,
		RecurringRuleId: dto.RecurringRuleId,
		IsMandatory:     dto.IsMandatory,
		InvitationText:  dto.InvitationText,
		Source:          Source(dto.Source),
	}, nil
}

func DraftsFromDTO(dtos []DraftDTO) ([]DraftEvent, error) {
	drafts := make([]DraftEvent, 0, len(dtos))
	for _, dto := range dtos {
		draft, err := DraftFromDTO(dto)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

func PlacementToDTO(placement MandatoryPlacement) PlacementDTO {
	return PlacementDTO{
		Key:      placement.Key,
		Template: event_template.TemplateToDTO(placement.Template),
		Date:     formatOptionalDate(placement.Date),
		IsPlaced: placement.Placed(),
	}
}

func reviewInputFromDTO(dto ReviewRequestDTO) (ReviewInput, error) {
	window, err := WindowFromDTO(dto.Window)
	if err != nil {
		return ReviewInput{}, err
	}
	recurring, err := DraftsFromDTO(dto.Recurring)
	if err != nil {
		return ReviewInput{}, err
	}
	manual, err := DraftsFromDTO(dto.Manual)
	if err != nil {
		return ReviewInput{}, err
	}
	choices := make([]PlacementChoice, 0, len(dto.Placements))
	for _, choiceDTO := range dto.Placements {
		date, err := parseOptionalDate(choiceDTO.Date)
		if err != nil {
			return ReviewInput{}, fmt.Errorf("%w: placement %q: date: %w", ErrInvalidDraft, choiceDTO.Key, err)
		}
		choices = append(choices, PlacementChoice{Key: choiceDTO.Key, TemplateId: choiceDTO.TemplateId, Date: date})
	}
	return ReviewInput{Window: window, Recurring: recurring, Placements: choices, Manual: manual}, nil
}

func PlanToDTO(plan Plan) PlanDTO {
	unplaced := make([]PlacementDTO, 0, len(plan.UnplacedMandatory))
	for _, placement := range plan.UnplacedMandatory {
		unplaced = append(unplaced, PlacementToDTO(placement))
	}
	byCategory := make(map[string]int, len(plan.Statistics.ByCategory))
	for categoryId, count := range plan.Statistics.ByCategory {
		byCategory[strconv.Itoa(categoryId)] = count
	}
	bySource := make(map[string]int, len(plan.Statistics.BySource))
	for source, count := range plan.Statistics.BySource {
		bySource[string(source)] = count
	}
	return PlanDTO{
		Window:                 WindowToDTO(plan.Window),
		Events:                 DraftsToDTO(plan.Events),
		Uncategorized:          DraftsToDTO(plan.Uncategorized),
		OutOfWindow:            DraftsToDTO(plan.OutOfWindow),
		UnplacedMandatory:      unplaced,
		UnplacedMandatoryCount: plan.UnplacedMandatoryCount,
		Statistics: StatisticsDTO{
			Total:             plan.Statistics.Total,
			Mandatory:         plan.Statistics.Mandatory,
			ByCategory:        byCategory,
			BySource:          bySource,
			Uncategorized:     plan.Statistics.Uncategorized,
			UnplacedMandatory: plan.Statistics.UnplacedMandatory,
		},
	}
}
