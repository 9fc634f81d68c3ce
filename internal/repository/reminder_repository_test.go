package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ego-calendar-api/internal/models"
)

func TestReminderListDue(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReminderRepository(db)

	now := time.Date(2024, 5, 10, 7, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "event_id", "user_id", "remind_at", "method", "sent_at", "created_at", "event_title", "event_start", "user_email", "user_name"}).
		AddRow("r1", "e1", "u1", now.Add(-time.Minute), "email", nil, now, "Standup", now.Add(15*time.Minute), "a@example.com", "A")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.sent_at IS NULL AND r.failed_at IS NULL AND r.remind_at <= $1")).
		WithArgs(now, 100).
		WillReturnRows(rows)

	due, err := repo.ListDue(context.Background(), now, 0)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "r1", due[0].ID)
	assert.Equal(t, "Standup", due[0].EventTitle)
	assert.Equal(t, "a@example.com", due[0].UserEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderMarkSent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReminderRepository(db)

	at := time.Date(2024, 5, 10, 7, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reminders SET sent_at = $2 WHERE id = $1 AND sent_at IS NULL")).
		WithArgs("r1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkSent(context.Background(), "r1", at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderMarkFailed(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReminderRepository(db)

	at := time.Date(2024, 5, 10, 7, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reminders SET failed_at = $2, last_error = $3 WHERE id = $1 AND sent_at IS NULL")).
		WithArgs("r1", at, "rejected").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkFailed(context.Background(), "r1", at, "rejected"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReminderRepository(db)

	mock.ExpectExec("INSERT INTO reminders").WillReturnResult(sqlmock.NewResult(1, 1))

	reminder := &models.Reminder{EventID: "e1", UserID: "u1", RemindAt: time.Now(), Method: models.ReminderMethodPush}
	require.NoError(t, repo.Create(context.Background(), reminder))
	assert.NotEmpty(t, reminder.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
