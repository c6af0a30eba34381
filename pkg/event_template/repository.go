package event_template

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Reader provides the event templates an organization has configured.
type Reader interface {
	ListEventTemplates(ctx context.Context, organizationId int, activeOnly bool) ([]EventTemplate, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) ListEventTemplates(ctx context.Context, organizationId int, activeOnly bool) ([]EventTemplate, error) {
	query := `SELECT
				t.id,
				t.name,
				t.category_id,
				t.default_duration_min,
				t.default_invitation_text,
				t.description,
				t.is_mandatory,
				t.default_month,
				t.is_active
			  FROM event_template t
			  WHERE t.organization_id = $1 AND (t.is_active OR NOT $2)
			  ORDER BY t.name, t.id`
	rows, err := r.db.Query(ctx, query, organizationId, activeOnly)
	if err != nil {
		err := fmt.Errorf("could not query event templates: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	templates := make([]EventTemplate, 0)
	for rows.Next() {
		var (
			template           EventTemplate
			defaultDurationMin int
			defaultMonth       *int
		)
		if err := rows.Scan(
			&template.Id,
			&template.Name,
			&template.CategoryId,
			&defaultDurationMin,
			&template.DefaultInvitationText,
			&template.Description,
			&template.IsMandatory,
			&defaultMonth,
			&template.IsActive,
		); err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		template.OrganizationId = organizationId
		template.DefaultDuration = time.Duration(defaultDurationMin) * time.Minute
		if defaultMonth != nil {
			month := time.Month(*defaultMonth)
			template.DefaultMonth = &month
		}
		templates = append(templates, template)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return templates, nil
}
