package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ego-calendar-api/internal/models"
)

func TestSettingsRepositoryFindByUserID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "timezone", "language", "created_at", "updated_at"}).
		AddRow("s1", "u1", "UTC", "ru", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM user_settings WHERE user_id = $1")).WithArgs("u1").WillReturnRows(rows)

	settings, err := repo.FindByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "UTC", settings.Timezone)

	mock.ExpectQuery(regexp.QuoteMeta("FROM user_settings")).WithArgs("u2").WillReturnError(sql.ErrNoRows)
	_, err = repo.FindByUserID(context.Background(), "u2")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	settings := &models.UserSettings{UserID: "u1", Timezone: "Europe/Moscow", Language: "en"}
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (user_id) DO UPDATE")).WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Upsert(context.Background(), settings))
	assert.NotEmpty(t, settings.ID)
	assert.Equal(t, settings.CreatedAt, settings.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
