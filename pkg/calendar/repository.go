package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// StoreEvent saves the entry. An entry published earlier from the same source event is replaced.
	StoreEvent(ctx context.Context, event Event) (Event, error)
	GetEvent(ctx context.Context, organizationId int, uid uuid.UUID) (Event, error)
	// GetEvents returns the entries overlapping from..to, both inclusive, ordered by date.
	GetEvents(ctx context.Context, organizationId int, from, to time.Time) ([]Event, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) StoreEvent(ctx context.Context, event Event) (Event, error) {
	query := `INSERT INTO calendar_event (uid, organization_id, source_event_id, title, description, event_date,
                            end_date, category_id, invitation_text)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  ON CONFLICT (source_event_id) DO UPDATE SET
			      uid = EXCLUDED.uid,
			      title = EXCLUDED.title,
			      description = EXCLUDED.description,
			      event_date = EXCLUDED.event_date,
			      end_date = EXCLUDED.end_date,
			      category_id = EXCLUDED.category_id,
			      invitation_text = EXCLUDED.invitation_text,
			      published_at = now()
			  WHERE calendar_event.organization_id = EXCLUDED.organization_id
			  RETURNING published_at`
	err := r.db.QueryRow(ctx, query,
		pgtype.UUID{Bytes: event.UID, Valid: true},
		event.OrganizationId,
		event.SourceEventId,
		event.Title,
		event.Description,
		event.Date,
		event.EndDate,
		event.CategoryId,
		event.InvitationText,
	).Scan(&event.PublishedAt)
	if err != nil {
		err := fmt.Errorf("could not store calendar event: %w", err)
		log.Error(err)
		return Event{}, err
	}
	return event, nil
}

const eventColumns = `uid, organization_id, source_event_id, title, description, event_date, end_date, category_id,
				invitation_text, published_at`

func scanEvent(row pgx.Row) (Event, error) {
	var event Event
	var uid pgtype.UUID
	err := row.Scan(
		&uid,
		&event.OrganizationId,
		&event.SourceEventId,
		&event.Title,
		&event.Description,
		&event.Date,
		&event.EndDate,
		&event.CategoryId,
		&event.InvitationText,
		&event.PublishedAt,
	)
	event.UID = uuid.UUID(uid.Bytes)
	return event, err
}

func (r *RepositoryImpl) GetEvent(ctx context.Context, organizationId int, uid uuid.UUID) (Event, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_event WHERE organization_id = $1 AND uid = $2`
	event, err := scanEvent(r.db.QueryRow(ctx, query, organizationId, pgtype.UUID{Bytes: uid, Valid: true}))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, ErrEventNotFound
		}
		err := fmt.Errorf("could not get calendar event: %w", err)
		log.Error(err)
		return Event{}, err
	}
	return event, nil
}

func (r *RepositoryImpl) GetEvents(ctx context.Context, organizationId int, from, to time.Time) ([]Event, error) {
	query := `SELECT ` + eventColumns + `
			  FROM calendar_event
			  WHERE organization_id = $1
			    AND event_date <= $3
			    AND COALESCE(end_date, event_date) >= $2
			  ORDER BY event_date, title`
	rows, err := r.db.Query(ctx, query, organizationId, from, to)
	if err != nil {
		err := fmt.Errorf("could not query calendar events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0, 10)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
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
