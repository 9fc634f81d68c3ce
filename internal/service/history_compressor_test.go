package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	"github.com/noah-isme/ego-calendar-api/internal/prompt"
	"github.com/noah-isme/ego-calendar-api/pkg/llm"
)

type fakeChatClient struct {
	replies []string
	err     error
	calls   [][]llm.Message
}

func (f *fakeChatClient) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	f.calls = append(f.calls, messages)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", nil
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

func history(n int) []models.ChatMessage {
	out := make([]models.ChatMessage, 0, n)
	for i := 0; i < n; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleLLM
		}
		out = append(out, models.ChatMessage{Role: role, Content: fmt.Sprintf("turn %d", i)})
	}
	return out
}

func TestHistoryCompressorPassesShortHistoryThrough(t *testing.T) {
	client := &fakeChatClient{}
	c := NewHistoryCompressor(client, 50, 0, nil, nil)

	input := append(history(4), models.ChatMessage{Role: "", Content: "orphan"}, models.ChatMessage{Role: models.RoleUser, Content: "  "})
	out, compressed, err := c.Compress(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, compressed)
	assert.Empty(t, client.calls)
	require.Len(t, out, 4)
	assert.Equal(t, models.RoleUser, out[0].Role)
	assert.Equal(t, models.RoleAssistant, out[1].Role)
	assert.Equal(t, "turn 1", out[1].Content)
}

func TestHistoryCompressorSummarisesAtThreshold(t *testing.T) {
	client := &fakeChatClient{replies: []string{"user planned a trip"}}
	metrics := NewMetricsService()
	c := NewHistoryCompressor(client, 50, 0, metrics, nil)

	out, compressed, err := c.Compress(context.Background(), history(50))
	require.NoError(t, err)
	assert.True(t, compressed)
	require.Len(t, out, 1)
	assert.Equal(t, models.RoleSystem, out[0].Role)
	assert.Equal(t, prompt.CompressedHistoryPrefix+"user planned a trip", out[0].Content)

	require.Len(t, client.calls, 1)
	flattened := client.calls[0][len(client.calls[0])-1].Content
	assert.Contains(t, flattened, "user: turn 0")
	assert.Contains(t, flattened, "assistant: turn 49")
}

func TestHistoryCompressorTokenBudget(t *testing.T) {
	client := &fakeChatClient{replies: []string{"summary"}}
	c := NewHistoryCompressor(client, 50, 10, nil, nil)

	long := []models.ChatMessage{{Role: models.RoleUser, Content: strings.Repeat("calendar ", 200)}}
	_, compressed, err := c.Compress(context.Background(), long)
	require.NoError(t, err)
	assert.True(t, compressed)
}

func TestHistoryCompressorPropagatesUpstreamError(t *testing.T) {
	client := &fakeChatClient{err: errors.New("boom")}
	c := NewHistoryCompressor(client, 2, 0, nil, nil)

	_, _, err := c.Compress(context.Background(), history(3))
	require.Error(t, err)
}

func TestFlattenHistory(t *testing.T) {
	out := FlattenHistory([]llm.Message{{Role: "user", Content: "hi"}, {Role: "assistant", Content: "hello"}})
	assert.Equal(t, "user: hi\nassistant: hello", out)
}
