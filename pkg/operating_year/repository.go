package operating_year

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/yearplan/yearplan/internal/database"
	"github.com/yearplan/yearplan/pkg/plan_wizard"
)

const yearNameConstraint = "operating_year_organization_name_key"

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	// LockOrganization serialises writers touching the years of one organization until the running
	// transaction ends.
	LockOrganization(ctx context.Context, organizationId int) error
	// ArchiveActiveYears archives every ACTIVE year of the organization except exceptYearId.
	ArchiveActiveYears(ctx context.Context, organizationId int, exceptYearId int) (int, error)
	CreateYear(ctx context.Context, organizationId int, year OperatingYear) (OperatingYear, error)
	CreateEvents(ctx context.Context, yearId int, events []Event) (int, error)
	GetYear(ctx context.Context, organizationId int, yearId int) (OperatingYear, error)
	ListYears(ctx context.Context, organizationId int) ([]OperatingYear, error)
	UpdateYearStatus(ctx context.Context, organizationId int, yearId int, status Status) error
	DeleteYear(ctx context.Context, organizationId int, yearId int) error
	ListEvents(ctx context.Context, organizationId int, yearId int) ([]Event, error)
	// GetEventForUpdate reads the event and locks its row until the running transaction ends.
	GetEventForUpdate(ctx context.Context, organizationId int, yearId int, eventId int) (Event, error)
	UpdateEventStatus(ctx context.Context, organizationId int, eventId int, status EventStatus) error
	SetPublishedEventId(ctx context.Context, organizationId int, eventId int, publishedEventId uuid.UUID) error
	DeleteEvent(ctx context.Context, organizationId int, eventId int) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
	tx pgx.Tx
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) getQueryer() database.Queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *RepositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// no-op once committed
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	if err := fn(&RepositoryImpl{db: r.db, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) LockOrganization(ctx context.Context, organizationId int) error {
	if r.tx == nil {
		return errors.New("organization lock requires a transaction")
	}
	if _, err := r.tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", int64(organizationId)); err != nil {
		err := fmt.Errorf("could not lock organization %d: %w", organizationId, err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) ArchiveActiveYears(ctx context.Context, organizationId int, exceptYearId int) (int, error) {
	query := `UPDATE operating_year
			  SET status = 'ARCHIVED'
			  WHERE organization_id = $1 AND status = 'ACTIVE' AND id <> $2`
	result, err := r.getQueryer().Exec(ctx, query, organizationId, exceptYearId)
	if err != nil {
		err := fmt.Errorf("could not archive active years: %w", err)
		log.Error(err)
		return 0, err
	}
	return int(result.RowsAffected()), nil
}

func (r *RepositoryImpl) CreateYear(ctx context.Context, organizationId int, year OperatingYear) (OperatingYear, error) {
	query := `INSERT INTO operating_year (organization_id, name, start_date, end_date, status)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id, created_at`
	err := r.getQueryer().QueryRow(ctx, query,
		organizationId,
		year.Name,
		year.StartDate,
		year.EndDate,
		string(year.Status),
	).Scan(&year.Id, &year.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, yearNameConstraint) {
			return OperatingYear{}, fmt.Errorf("%w: %q", ErrDuplicateYearName, year.Name)
		}
		err := fmt.Errorf("could not create operating year: %w", err)
		log.Error(err)
		return OperatingYear{}, err
	}
	year.OrganizationId = organizationId
	return year, nil
}

var eventColumns = []string{
	"operating_year_id",
	"event_date",
	"end_date",
	"title",
	"description",
	"category_id",
	"template_id",
	"recurring_rule_id",
	"is_mandatory",
	"invitation_text",
	"source",
	"status",
}

// CreateEvents bulk inserts the events in the given order.
func (r *RepositoryImpl) CreateEvents(ctx context.Context, yearId int, events []Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	rows := pgx.CopyFromSlice(len(events), func(i int) ([]any, error) {
		event := events[i]
		return []any{
			yearId,
			event.Date,
			event.EndDate,
			event.Title,
			event.Description,
			event.CategoryId,
			event.TemplateId,
			event.RecurringRuleId,
			event.IsMandatory,
			event.InvitationText,
			string(event.Source),
			string(event.Status),
		}, nil
	})
	count, err := r.getQueryer().CopyFrom(ctx, pgx.Identifier{"year_event"}, eventColumns, rows)
	if err != nil {
		err := fmt.Errorf("could not create events: %w", err)
		log.Error(err)
		return 0, err
	}
	return int(count), nil
}

const yearColumns = `y.id, y.organization_id, y.name, y.start_date, y.end_date, y.status, y.created_at`

func scanYear(row pgx.Row) (OperatingYear, error) {
	var year OperatingYear
	var status string
	err := row.Scan(
		&year.Id,
		&year.OrganizationId,
		&year.Name,
		&year.StartDate,
		&year.EndDate,
		&status,
		&year.CreatedAt,
	)
	year.Status = Status(status)
	return year, err
}

func (r *RepositoryImpl) GetYear(ctx context.Context, organizationId int, yearId int) (OperatingYear, error) {
	query := `SELECT ` + yearColumns + `
			  FROM operating_year y
			  WHERE y.organization_id = $1 AND y.id = $2`
	year, err := scanYear(r.getQueryer().QueryRow(ctx, query, organizationId, yearId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OperatingYear{}, ErrYearNotFound
		}
		err := fmt.Errorf("could not get operating year: %w", err)
		log.Error(err)
		return OperatingYear{}, err
	}
	return year, nil
}

func (r *RepositoryImpl) ListYears(ctx context.Context, organizationId int) ([]OperatingYear, error) {
	query := `SELECT ` + yearColumns + `
			  FROM operating_year y
			  WHERE y.organization_id = $1
			  ORDER BY y.start_date DESC, y.id DESC`
	rows, err := r.getQueryer().Query(ctx, query, organizationId)
	if err != nil {
		err := fmt.Errorf("could not query operating years: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	years := make([]OperatingYear, 0)
	for rows.Next() {
		year, err := scanYear(rows)
		if err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		years = append(years, year)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return years, nil
}

func (r *RepositoryImpl) UpdateYearStatus(ctx context.Context, organizationId int, yearId int, status Status) error {
	query := `UPDATE operating_year SET status = $3 WHERE organization_id = $1 AND id = $2`
	result, err := r.getQueryer().Exec(ctx, query, organizationId, yearId, string(status))
	if err != nil {
		err := fmt.Errorf("could not update operating year status: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrYearNotFound
	}
	return nil
}

// DeleteYear removes the year; its events go with it.
func (r *RepositoryImpl) DeleteYear(ctx context.Context, organizationId int, yearId int) error {
	query := `DELETE FROM operating_year WHERE organization_id = $1 AND id = $2`
	result, err := r.getQueryer().Exec(ctx, query, organizationId, yearId)
	if err != nil {
		err := fmt.Errorf("could not delete operating year: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrYearNotFound
	}
	return nil
}

const eventColumnsSelect = `e.id, e.operating_year_id, e.event_date, e.end_date, e.title, e.description, e.category_id,
				e.template_id, e.recurring_rule_id, e.is_mandatory, e.invitation_text, e.source, e.status,
				e.published_event_id`

func scanEvent(row pgx.Row) (Event, error) {
	var (
		event     Event
		source    string
		status    string
		published pgtype.UUID
	)
	err := row.Scan(
		&event.Id,
		&event.YearId,
		&event.Date,
		&event.EndDate,
		&event.Title,
		&event.Description,
		&event.CategoryId,
		&event.TemplateId,
		&event.RecurringRuleId,
		&event.IsMandatory,
		&event.InvitationText,
		&source,
		&status,
		&published,
	)
	if err != nil {
		return Event{}, err
	}
	event.Source = plan_wizard.Source(source)
	event.Status = EventStatus(status)
	if published.Valid {
		id := uuid.UUID(published.Bytes)
		event.PublishedEventId = &id
	}
	return event, nil
}

func (r *RepositoryImpl) ListEvents(ctx context.Context, organizationId int, yearId int) ([]Event, error) {
	query := `SELECT ` + eventColumnsSelect + `
			  FROM year_event e
			  JOIN operating_year y ON y.id = e.operating_year_id
			  WHERE y.organization_id = $1 AND e.operating_year_id = $2
			  ORDER BY e.event_date, e.id`
	rows, err := r.getQueryer().Query(ctx, query, organizationId, yearId)
	if err != nil {
		err := fmt.Errorf("could not query events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return events, nil
}

func (r *RepositoryImpl) GetEventForUpdate(ctx context.Context, organizationId int, yearId int, eventId int) (Event, error) {
	query := `SELECT ` + eventColumnsSelect + `
			  FROM year_event e
			  JOIN operating_year y ON y.id = e.operating_year_id
			  WHERE y.organization_id = $1 AND e.operating_year_id = $2 AND e.id = $3
			  FOR UPDATE OF e`
	event, err := scanEvent(r.getQueryer().QueryRow(ctx, query, organizationId, yearId, eventId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, ErrEventNotFound
		}
		err := fmt.Errorf("could not get event: %w", err)
		log.Error(err)
		return Event{}, err
	}
	return event, nil
}

func (r *RepositoryImpl) UpdateEventStatus(ctx context.Context, organizationId int, eventId int, status EventStatus) error {
	query := `UPDATE year_event e SET status = $3
			  FROM operating_year y
			  WHERE y.id = e.operating_year_id AND y.organization_id = $1 AND e.id = $2`
	return r.updateEvent(ctx, query, organizationId, eventId, string(status))
}

func (r *RepositoryImpl) SetPublishedEventId(ctx context.Context, organizationId int, eventId int, publishedEventId uuid.UUID) error {
	query := `UPDATE year_event e SET published_event_id = $3
			  FROM operating_year y
			  WHERE y.id = e.operating_year_id AND y.organization_id = $1 AND e.id = $2`
	return r.updateEvent(ctx, query, organizationId, eventId, pgtype.UUID{Bytes: publishedEventId, Valid: true})
}

func (r *RepositoryImpl) DeleteEvent(ctx context.Context, organizationId int, eventId int) error {
	query := `DELETE FROM year_event e
			  USING operating_year y
			  WHERE y.id = e.operating_year_id AND y.organization_id = $1 AND e.id = $2`
	result, err := r.getQueryer().Exec(ctx, query, organizationId, eventId)
	if err != nil {
		err := fmt.Errorf("could not delete event: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *RepositoryImpl) updateEvent(ctx context.Context, query string, organizationId int, eventId int, value any) error {
	result, err := r.getQueryer().Exec(ctx, query, organizationId, eventId, value)
	if err != nil {
		err := fmt.Errorf("could not update event: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}
