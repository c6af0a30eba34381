package event_template

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/yearplan/yearplan/internal/rest"
	"github.com/yearplan/yearplan/pkg/organization"
)

type TemplateDTO struct {
	Id                    int     `json:"id"`
	Name                  string  `json:"name"`
	CategoryId            *int    `json:"categoryId,omitempty"`
	DefaultDuration       int     `json:"defaultDuration"`
	DefaultInvitationText *string `json:"defaultInvitationText,omitempty"`
	Description           string  `json:"description,omitempty"`
	IsMandatory           bool    `json:"isMandatory"`
	DefaultMonth          *int    `json:"defaultMonth,omitempty"`
	IsActive              bool    `json:"isActive"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

// ListTemplates godoc
// @Summary List event templates
// @Description Get the event templates of the current organization
// @Tags EventTemplate
// @Produce json
// @Param activeOnly query bool false "Only active templates"
// @Success 200 {array} TemplateDTO
// @Failure 403 {object} rest.ErrorResponse
// @Router /api/template [get]
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing event templates")
	activeOnly := r.URL.Query().Get("activeOnly") == "true"
	templates, err := h.service.ListTemplates(r.Context(), activeOnly)
	if err != nil {
		if errors.Is(err, organization.ErrNoOrganization) {
			rest.WriteError(w, http.StatusForbidden, rest.ErrorResponse{Error: err.Error()})
			return
		}
		log.Errorf("failed to list event templates: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, rest.ErrorResponse{Error: "Internal error", Details: err.Error()})
		return
	}

	dtos := make([]TemplateDTO, 0, len(templates))
	for _, template := range templates {
		dtos = append(dtos, TemplateToDTO(template))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// TemplateToDTO converts the template; DefaultDuration is expressed in minutes.
func TemplateToDTO(template EventTemplate) TemplateDTO {
	var defaultMonth *int
	if template.DefaultMonth != nil {
		month := int(*template.DefaultMonth)
		defaultMonth = &month
	}
	return TemplateDTO{
		Id:                    template.Id,
		Name:                  template.Name,
		CategoryId:            template.CategoryId,
		DefaultDuration:       int(template.DefaultDuration.Minutes()),
		DefaultInvitationText: template.DefaultInvitationText,
		Description:           template.Description,
		IsMandatory:           template.IsMandatory,
		DefaultMonth:          defaultMonth,
		IsActive:              template.IsActive,
	}
}
