package llm

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// perMessageOverhead approximates the role and separator tokens added per turn.
const perMessageOverhead = 4

func loadEncoding() *tiktoken.Tiktoken {
	encodingOnce.Do(func() {
		if enc, err := tiktoken.GetEncoding("cl100k_base"); err == nil {
			encoding = enc
		}
	})
	return encoding
}

// CountTokens counts text with cl100k_base, falling back to EstimateTokens
// when the encoding cannot be loaded.
func CountTokens(text string) int {
	if enc := loadEncoding(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return EstimateTokens(text)
}

// CountMessageTokens sums CountTokens over messages plus a per-turn overhead.
func CountMessageTokens(messages []Message) int {
	total := 0
	for _, m := range messages {
		total += CountTokens(m.Content) + perMessageOverhead
	}
	return total
}

// EstimateTokens returns max(runes/4, words), never zero for non-empty text.
func EstimateTokens(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	estimate := len([]rune(trimmed)) / 4
	if words := len(strings.Fields(trimmed)); estimate < words {
		estimate = words
	}
	if estimate == 0 {
		estimate = 1
	}
	return estimate
}
