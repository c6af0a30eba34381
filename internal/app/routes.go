package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Configuration read by the wizard
	r.HandleFunc("/api/rule", deps.RecurringRuleHandler.ListRules).Methods("GET")
	r.HandleFunc("/api/template", deps.EventTemplateHandler.ListTemplates).Methods("GET")

	// Plan wizard
	r.HandleFunc("/api/wizard/window", deps.PlanWizardHandler.GetDefaultWindow).Methods("GET")
	r.HandleFunc("/api/wizard/expand", deps.PlanWizardHandler.ExpandRules).Methods("POST")
	r.HandleFunc("/api/wizard/suggestions", deps.PlanWizardHandler.SuggestPlacements).Methods("POST")
	r.HandleFunc("/api/wizard/review", deps.PlanWizardHandler.Review).Methods("POST")

	// Operating years
	r.HandleFunc("/api/year", deps.OperatingYearHandler.ListYears).Methods("GET")
	r.HandleFunc("/api/year", deps.OperatingYearHandler.CommitPlan).Methods("POST")
	r.HandleFunc("/api/year/draft", deps.OperatingYearHandler.CreateDraftYear).Methods("POST")
	r.HandleFunc("/api/year/{yearId:[0-9]+}", deps.OperatingYearHandler.GetYear).Methods("GET")
	r.HandleFunc("/api/year/{yearId:[0-9]+}", deps.OperatingYearHandler.DeleteYear).Methods("DELETE")
	r.HandleFunc("/api/year/{yearId:[0-9]+}/status", deps.OperatingYearHandler.ChangeStatus).Methods("PUT")

	// Operating year events
	r.HandleFunc("/api/year/{yearId:[0-9]+}/event", deps.OperatingYearHandler.ListEvents).Methods("GET")
	r.HandleFunc("/api/year/{yearId:[0-9]+}/event/{eventId:[0-9]+}/status", deps.OperatingYearHandler.UpdateEventStatus).Methods("PUT")
	r.HandleFunc("/api/year/{yearId:[0-9]+}/event/{eventId:[0-9]+}", deps.OperatingYearHandler.DeleteEvent).Methods("DELETE")
	r.HandleFunc("/api/year/{yearId:[0-9]+}/event/{eventId:[0-9]+}/publish", deps.OperatingYearHandler.PublishEvent).Methods("POST")

	// Live calendar
	r.HandleFunc("/api/calendar/event", deps.CalendarHandler.GetEvents).Queries("from", "{from}", "to", "{to}").Methods("GET")
	r.HandleFunc("/api/calendar/event/{eventUid}", deps.CalendarHandler.GetEvent).Methods("GET")
}
