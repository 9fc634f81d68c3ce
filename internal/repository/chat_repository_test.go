package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ego-calendar-api/internal/models"
)

func TestChatAppendIsTransactional(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewChatRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO chat_messages").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO chat_messages").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	user := &models.ChatMessage{UserID: "u1", Role: models.RoleUser, Content: "hi"}
	reply := &models.ChatMessage{UserID: "u1", Role: models.RoleAssistant, Content: "hello"}
	require.NoError(t, repo.Append(context.Background(), user, reply))
	assert.True(t, reply.CreatedAt.After(user.CreatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatAppendNothing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	require.NoError(t, NewChatRepository(db).Append(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsUpsert(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectExec("ON CONFLICT \\(user_id\\) DO UPDATE").WillReturnResult(sqlmock.NewResult(1, 1))

	settings := &models.UserSettings{UserID: "u1", Timezone: "Europe/Moscow", Language: "en"}
	require.NoError(t, repo.Upsert(context.Background(), settings))
	assert.NotEmpty(t, settings.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileUpdateMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectExec("UPDATE user_profiles").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.UserProfile{UserID: "u1"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
