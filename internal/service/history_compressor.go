package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	"github.com/noah-isme/ego-calendar-api/internal/prompt"
	"github.com/noah-isme/ego-calendar-api/pkg/llm"
)

// DefaultCompressThreshold is the history length that triggers compression.
const DefaultCompressThreshold = 50

type chatClient interface {
	Chat(ctx context.Context, messages []llm.Message) (string, error)
}

// HistoryCompressor bounds the chat history sent to the model.
type HistoryCompressor struct {
	client      chatClient
	threshold   int
	tokenBudget int
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewHistoryCompressor constructs a HistoryCompressor. A tokenBudget of zero
// disables the token trigger.
func NewHistoryCompressor(client chatClient, threshold, tokenBudget int, metrics *MetricsService, logger *zap.Logger) *HistoryCompressor {
	if threshold <= 0 {
		threshold = DefaultCompressThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryCompressor{client: client, threshold: threshold, tokenBudget: tokenBudget, metrics: metrics, logger: logger}
}

// Compress returns the history to send. Long histories are replaced by a
// single system summary; shorter ones pass through with llm mapped to
// assistant and incomplete entries dropped.
func (c *HistoryCompressor) Compress(ctx context.Context, history []models.ChatMessage) ([]llm.Message, bool, error) {
	messages := NormaliseHistory(history)
	if !c.shouldCompress(len(history), messages) {
		return messages, false, nil
	}

	summary, err := c.client.Chat(ctx, prompt.Compress(FlattenHistory(messages)))
	if err != nil {
		return nil, false, err
	}
	c.metrics.RecordHistoryCompression()
	c.logger.Debug("chat history compressed", zap.Int("entries", len(history)), zap.Int("summary_chars", len(summary)))
	return []llm.Message{prompt.CompressedHistory(summary)}, true, nil
}

func (c *HistoryCompressor) shouldCompress(entries int, messages []llm.Message) bool {
	if entries >= c.threshold {
		return true
	}
	return c.tokenBudget > 0 && llm.CountMessageTokens(messages) > c.tokenBudget
}

// NormaliseHistory drops entries without role or content and maps the web
// client's llm role to assistant.
func NormaliseHistory(history []models.ChatMessage) []llm.Message {
	out := make([]llm.Message, 0, len(history))
	for _, m := range history {
		role := strings.TrimSpace(m.Role)
		if role == "" || strings.TrimSpace(m.Content) == "" {
			continue
		}
		if role == models.RoleLLM {
			role = models.RoleAssistant
		}
		out = append(out, llm.Message{Role: role, Content: m.Content})
	}
	return out
}

// FlattenHistory renders messages as "role: content" lines.
func FlattenHistory(messages []llm.Message) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, m.Role+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}
