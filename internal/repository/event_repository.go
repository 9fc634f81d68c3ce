package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ego-calendar-api/internal/models"
)

const eventColumns = `id, user_id, title, description, start_time, end_time, all_day, location, type, created_at, updated_at`

// EventRepository provides database access for calendar events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new instance of EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// ListByUser returns every event owned by userID ordered by start time.
func (r *EventRepository) ListByUser(ctx context.Context, userID string) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE user_id = $1 ORDER BY start_time ASC`
	events := []models.Event{}
	if err := r.db.SelectContext(ctx, &events, query, userID); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// ListByRange returns the user's events overlapping [start, end].
func (r *EventRepository) ListByRange(ctx context.Context, userID string, start, end time.Time) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE user_id = $1 AND start_time <= $2 AND end_time >= $3 ORDER BY start_time ASC`
	events := []models.Event{}
	if err := r.db.SelectContext(ctx, &events, query, userID, end.UTC(), start.UTC()); err != nil {
		return nil, fmt.Errorf("list events by range: %w", err)
	}
	return events, nil
}

// FindByID returns an event by identifier.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 LIMIT 1`
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	return &event, nil
}

// Create inserts an event, assigning an ID and timestamps when unset.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now
	event.StartTime = event.StartTime.UTC()
	event.EndTime = event.EndTime.UTC()

	const query = `INSERT INTO events (id, user_id, title, description, start_time, end_time, all_day, location, type, created_at, updated_at) VALUES (:id, :user_id, :title, :description, :start_time, :end_time, :all_day, :location, :type, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields of an event. The last write wins.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now().UTC()
	event.StartTime = event.StartTime.UTC()
	event.EndTime = event.EndTime.UTC()

	const query = `UPDATE events SET title = :title, description = :description, start_time = :start_time, end_time = :end_time, all_day = :all_day, location = :location, type = :type, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, event)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return requireAffected(res)
}

// Delete removes an event. It returns sql.ErrNoRows when nothing was deleted.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
