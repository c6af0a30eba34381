package recurring_rule

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Reader provides the rules an organization has configured. Rules are maintained elsewhere, the
// planner only reads them.
type Reader interface {
	ListRecurringRules(ctx context.Context, organizationId int, activeOnly bool) ([]RecurringRule, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) ListRecurringRules(ctx context.Context, organizationId int, activeOnly bool) ([]RecurringRule, error) {
	query := `SELECT
				r.id,
				r.name,
				r.frequency,
				r.day_of_week,
				r.week_of_month,
				r.category_id,
				r.default_title,
				r.description,
				r.is_active
			  FROM recurring_rule r
			  WHERE r.organization_id = $1 AND (r.is_active OR NOT $2)
			  ORDER BY r.name, r.id`
	rows, err := r.db.Query(ctx, query, organizationId, activeOnly)
	if err != nil {
		err := fmt.Errorf("could not query recurring rules: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	rules := make([]RecurringRule, 0)
	for rows.Next() {
		var (
			rule      RecurringRule
			frequency string
			dayOfWeek int
		)
		if err := rows.Scan(
			&rule.Id,
			&rule.Name,
			&frequency,
			&dayOfWeek,
			&rule.WeekOfMonth,
			&rule.CategoryId,
			&rule.DefaultTitle,
			&rule.Description,
			&rule.IsActive,
		); err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		rule.OrganizationId = organizationId
		rule.Frequency = Frequency(frequency)
		rule.DayOfWeek = time.Weekday(dayOfWeek)
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return rules, nil
}
