package app

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yearplan/yearplan/internal/config"
	"github.com/yearplan/yearplan/internal/event_bus"
	"github.com/yearplan/yearplan/internal/utils"
	"github.com/yearplan/yearplan/pkg/calendar"
	"github.com/yearplan/yearplan/pkg/event_template"
	"github.com/yearplan/yearplan/pkg/operating_year"
	"github.com/yearplan/yearplan/pkg/plan_wizard"
	"github.com/yearplan/yearplan/pkg/recurring_rule"
	"github.com/yearplan/yearplan/pkg/stats"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus

	RecurringRuleRepository *recurring_rule.RepositoryImpl
	RecurringRuleHandler    *recurring_rule.Handler

	EventTemplateRepository *event_template.RepositoryImpl
	EventTemplateHandler    *event_template.Handler

	CsvStatsRenderer  *stats.CsvStatsRendererImpl
	PlanWizardService *plan_wizard.ServiceImpl
	PlanWizardHandler *plan_wizard.Handler

	OperatingYearService *operating_year.ServiceImpl
	OperatingYearHandler *operating_year.Handler

	CalendarService *calendar.ServiceImpl
	CalendarHandler *calendar.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = utils.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()

	deps.RecurringRuleRepository = recurring_rule.NewRepository(db)
	deps.RecurringRuleHandler = recurring_rule.NewHandler(recurring_rule.NewService(deps.RecurringRuleRepository))

	deps.EventTemplateRepository = event_template.NewRepository(db)
	deps.EventTemplateHandler = event_template.NewHandler(event_template.NewService(deps.EventTemplateRepository))

	deps.CsvStatsRenderer = stats.NewCsvStatsRenderer()
	deps.PlanWizardService = plan_wizard.NewService(
		deps.RecurringRuleRepository,
		deps.EventTemplateRepository,
		deps.Clock,
		time.Month(cfg.Planning.YearStartMonth),
	)
	deps.PlanWizardHandler = plan_wizard.NewHandler(deps.PlanWizardService, deps.CsvStatsRenderer)

	// the calendar subscribes to publications, so it is built before anything publishes
	deps.CalendarService = calendar.NewService(calendar.NewRepository(db), deps.EventBus)
	deps.CalendarHandler = calendar.NewHandler(deps.CalendarService)

	deps.OperatingYearService = operating_year.NewService(operating_year.NewRepository(db), deps.EventBus)
	deps.OperatingYearHandler = operating_year.NewHandler(deps.OperatingYearService)

	return deps
}
