package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
)

type fakeChatHistory struct {
	stored    []models.ChatMessage
	appended  []*models.ChatMessage
	appendErr error
	cleared   bool
}

func (f *fakeChatHistory) ListByUser(ctx context.Context, userID string) ([]models.ChatMessage, error) {
	return f.stored, nil
}

func (f *fakeChatHistory) Append(ctx context.Context, messages ...*models.ChatMessage) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, messages...)
	return nil
}

func (f *fakeChatHistory) DeleteByUser(ctx context.Context, userID string) error {
	f.cleared = true
	return nil
}

func newChatService(client *fakeChatClient, hist *fakeChatHistory, store *fakeEventStore) *ChatService {
	svc := NewChatService(client, NewHistoryCompressor(client, 50, 0, nil, nil), hist, store, msk, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 10, 6, 0, 0, 0, time.UTC) }
	return svc
}

func TestChatUsesStoredHistoryAndPersistsExchange(t *testing.T) {
	client := &fakeChatClient{replies: []string{"You have a meeting at 10."}}
	hist := &fakeChatHistory{stored: []models.ChatMessage{
		{Role: models.RoleUser, Content: "hello"},
		{Role: models.RoleLLM, Content: "hi"},
	}}
	store := &fakeEventStore{events: []models.Event{ev("a", "Standup", at(7))}}

	res, err := newChatService(client, hist, store).Chat(context.Background(), "u1", models.ChatRequest{Message: "what is today?"})
	require.NoError(t, err)
	assert.Equal(t, "You have a meeting at 10.", res.Response)
	assert.False(t, res.Compressed)

	require.Len(t, client.calls, 1)
	sent := client.calls[0]
	require.Len(t, sent, 4)
	assert.Equal(t, models.RoleSystem, sent[0].Role)
	assert.Contains(t, sent[0].Content, "May 10, 2024")
	assert.Contains(t, sent[0].Content, "Standup")
	assert.Equal(t, models.RoleAssistant, sent[2].Role)
	assert.Equal(t, "what is today?", sent[3].Content)

	require.Len(t, hist.appended, 2)
	assert.Equal(t, models.RoleUser, hist.appended[0].Role)
	assert.Equal(t, models.RoleAssistant, hist.appended[1].Role)
	assert.Equal(t, "u1", hist.appended[1].UserID)
}

func TestChatPrefersClientHistory(t *testing.T) {
	client := &fakeChatClient{replies: []string{"ok"}}
	hist := &fakeChatHistory{stored: history(10)}

	_, err := newChatService(client, hist, &fakeEventStore{}).Chat(context.Background(), "u1", models.ChatRequest{Message: "hi", History: []models.ChatMessage{}})
	require.NoError(t, err)
	assert.Len(t, client.calls[0], 2)
}

func TestChatCompressesLongHistory(t *testing.T) {
	client := &fakeChatClient{replies: []string{"summary", "answer"}}
	hist := &fakeChatHistory{stored: history(60)}

	res, err := newChatService(client, hist, &fakeEventStore{}).Chat(context.Background(), "u1", models.ChatRequest{Message: "hi"})
	require.NoError(t, err)
	assert.True(t, res.Compressed)
	require.Len(t, client.calls, 2)
	assert.Len(t, client.calls[1], 3)
}

func TestChatStorageFailureIsNotFatal(t *testing.T) {
	client := &fakeChatClient{replies: []string{"ok"}}
	hist := &fakeChatHistory{appendErr: errors.New("db down")}

	res, err := newChatService(client, hist, &fakeEventStore{}).Chat(context.Background(), "u1", models.ChatRequest{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Response)
}

func TestChatValidatesMessage(t *testing.T) {
	_, err := newChatService(&fakeChatClient{}, &fakeChatHistory{}, &fakeEventStore{}).Chat(context.Background(), "u1", models.ChatRequest{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestChatAddAndClearMessages(t *testing.T) {
	hist := &fakeChatHistory{}
	svc := newChatService(&fakeChatClient{}, hist, &fakeEventStore{})

	msg, err := svc.AddMessage(context.Background(), "u1", models.AddMessageRequest{Role: models.RoleLLM, Content: "noted"})
	require.NoError(t, err)
	assert.Equal(t, "u1", msg.UserID)

	_, err = svc.AddMessage(context.Background(), "u1", models.AddMessageRequest{Role: "robot", Content: "x"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	require.NoError(t, svc.ClearMessages(context.Background(), "u1"))
	assert.True(t, hist.cleared)
}
