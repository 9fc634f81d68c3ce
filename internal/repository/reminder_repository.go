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

const reminderColumns = `id, event_id, user_id, remind_at, method, sent_at, failed_at, created_at`

// ReminderRepository persists event reminders.
type ReminderRepository struct {
	db *sqlx.DB
}

// NewReminderRepository creates a new instance of ReminderRepository.
func NewReminderRepository(db *sqlx.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// Create inserts a reminder.
func (r *ReminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	if reminder.ID == "" {
		reminder.ID = uuid.NewString()
	}
	if reminder.CreatedAt.IsZero() {
		reminder.CreatedAt = time.Now().UTC()
	}
	reminder.RemindAt = reminder.RemindAt.UTC()
	const query = `INSERT INTO reminders (id, event_id, user_id, remind_at, method, sent_at, created_at) VALUES (:id, :event_id, :user_id, :remind_at, :method, :sent_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reminder); err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

// FindByID returns a reminder by identifier.
func (r *ReminderRepository) FindByID(ctx context.Context, id string) (*models.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE id = $1 LIMIT 1`
	var reminder models.Reminder
	if err := r.db.GetContext(ctx, &reminder, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find reminder: %w", err)
	}
	return &reminder, nil
}

// ListByUser returns the user's reminders ordered by remind_at.
func (r *ReminderRepository) ListByUser(ctx context.Context, userID string) ([]models.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE user_id = $1 ORDER BY remind_at ASC`
	reminders := []models.Reminder{}
	if err := r.db.SelectContext(ctx, &reminders, query, userID); err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return reminders, nil
}

// Update reschedules a reminder. Clearing SentAt and FailedAt makes it due again.
func (r *ReminderRepository) Update(ctx context.Context, reminder *models.Reminder) error {
	reminder.RemindAt = reminder.RemindAt.UTC()
	const query = `UPDATE reminders SET remind_at = :remind_at, method = :method, sent_at = :sent_at, failed_at = :failed_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, reminder)
	if err != nil {
		return fmt.Errorf("update reminder: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a reminder.
func (r *ReminderRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	return requireAffected(res)
}

// ListDue returns unsent, not failed reminders due at or before now, joined with the
// event and recipient details.
func (r *ReminderRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]models.DueReminder, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `SELECT r.id, r.event_id, r.user_id, r.remind_at, r.method, r.sent_at, r.created_at,
		e.title AS event_title, e.start_time AS event_start, u.email AS user_email, u.name AS user_name
		FROM reminders r
		JOIN events e ON e.id = r.event_id
		JOIN users u ON u.id = r.user_id
		WHERE r.sent_at IS NULL AND r.failed_at IS NULL AND r.remind_at <= $1
		ORDER BY r.remind_at ASC
		LIMIT $2`
	due := []models.DueReminder{}
	if err := r.db.SelectContext(ctx, &due, query, now.UTC(), limit); err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	return due, nil
}

// MarkSent records delivery so the reminder is not picked up again.
func (r *ReminderRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	const query = `UPDATE reminders SET sent_at = $2 WHERE id = $1 AND sent_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, id, sentAt.UTC()); err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	return nil
}

// MarkFailed parks a reminder whose delivery kept failing. It is not listed
// as due again until rescheduled.
func (r *ReminderRepository) MarkFailed(ctx context.Context, id string, failedAt time.Time, reason string) error {
	const query = `UPDATE reminders SET failed_at = $2, last_error = $3 WHERE id = $1 AND sent_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, id, failedAt.UTC(), reason); err != nil {
		return fmt.Errorf("mark reminder failed: %w", err)
	}
	return nil
}
