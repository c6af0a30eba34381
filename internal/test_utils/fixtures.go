package test_utils

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// TestOrganizationId is the organization the fixtures are created for unless stated otherwise.
const TestOrganizationId = 123

// InsertCategory creates an event category and returns its id.
func InsertCategory(t *testing.T, db *pgxpool.Pool, organizationId int, name string) int {
	var id int
	err := db.QueryRow(context.Background(),
		`INSERT INTO event_category (organization_id, name) VALUES ($1, $2) RETURNING id`,
		organizationId, name,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// RuleRow holds the columns of a recurring rule fixture.
type RuleRow struct {
	Name         string
	Frequency    string
	DayOfWeek    int
	WeekOfMonth  *int
	CategoryId   *int
	DefaultTitle string
	IsActive     bool
}

func InsertRecurringRule(t *testing.T, db *pgxpool.Pool, organizationId int, rule RuleRow) int {
	var id int
	err := db.QueryRow(context.Background(),
		`INSERT INTO recurring_rule (organization_id, name, frequency, day_of_week, week_of_month, category_id,
                            default_title, description, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, '', $8) RETURNING id`,
		organizationId, rule.Name, rule.Frequency, rule.DayOfWeek, rule.WeekOfMonth, rule.CategoryId,
		rule.DefaultTitle, rule.IsActive,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// TemplateRow holds the columns of an event template fixture.
type TemplateRow struct {
	Name                  string
	CategoryId            *int
	DefaultDurationMin    int
	DefaultInvitationText *string
	IsMandatory           bool
	DefaultMonth          *int
	IsActive              bool
}

func InsertEventTemplate(t *testing.T, db *pgxpool.Pool, organizationId int, template TemplateRow) int {
	var id int
	err := db.QueryRow(context.Background(),
		`INSERT INTO event_template (organization_id, name, category_id, default_duration_min,
                            default_invitation_text, description, is_mandatory, default_month, is_active)
		 VALUES ($1, $2, $3, $4, $5, '', $6, $7, $8) RETURNING id`,
		organizationId, template.Name, template.CategoryId, template.DefaultDurationMin,
		template.DefaultInvitationText, template.IsMandatory, template.DefaultMonth, template.IsActive,
	).Scan(&id)
	require.NoError(t, err)
	return id
}
