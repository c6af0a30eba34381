package recurring_rule

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/yearplan/yearplan/internal/rest"
	"github.com/yearplan/yearplan/pkg/organization"
)

type RuleDTO struct {
	Id           int    `json:"id"`
	Name         string `json:"name"`
	Frequency    string `json:"frequency"`
	DayOfWeek    int    `json:"dayOfWeek"`
	WeekOfMonth  *int   `json:"weekOfMonth,omitempty"`
	CategoryId   *int   `json:"categoryId,omitempty"`
	DefaultTitle string `json:"defaultTitle,omitempty"`
	Description  string `json:"description,omitempty"`
	IsActive     bool   `json:"isActive"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

// ListRules godoc
// @Summary List recurring rules
// @Description Get the recurring rules of the current organization
// @Tags RecurringRule
// @Produce json
// @Param activeOnly query bool false "Only active rules"
// @Success 200 {array} RuleDTO
// @Failure 403 {object} rest.ErrorResponse
// @Router /api/rule [get]
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing recurring rules")
	activeOnly := r.URL.Query().Get("activeOnly") == "true"
	rules, err := h.service.ListRules(r.Context(), activeOnly)
	if err != nil {
		if errors.Is(err, organization.ErrNoOrganization) {
			rest.WriteError(w, http.StatusForbidden, rest.ErrorResponse{Error: err.Error()})
			return
		}
		log.Errorf("failed to list recurring rules: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, rest.ErrorResponse{Error: "Internal error", Details: err.Error()})
		return
	}

	dtos := make([]RuleDTO, 0, len(rules))
	for _, rule := range rules {
		dtos = append(dtos, RuleToDTO(rule))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func RuleToDTO(rule RecurringRule) RuleDTO {
	return RuleDTO{
		Id:           rule.Id,
		Name:         rule.Name,
		Frequency:    string(rule.Frequency),
		DayOfWeek:    int(rule.DayOfWeek),
		WeekOfMonth:  rule.WeekOfMonth,
		CategoryId:   rule.CategoryId,
		DefaultTitle: rule.DefaultTitle,
		Description:  rule.Description,
		IsActive:     rule.IsActive,
	}
}
