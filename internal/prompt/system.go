package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	"github.com/noah-isme/ego-calendar-api/pkg/llm"
)

const intentSchema = `{
  "intent": "add" | "delete" | "update",
  "event": {
    "title": "...",
    "description": "...",
    "start_time": "...",
    "end_time": "...",
    "all_day": true | false,
    "location": "...",
    "type": "..."
  }
}
`

// System builds the assistant's system message for a calendar snapshot.
// timezone is optional and only adds a label line.
func System(today time.Time, calendar []models.CalendarEntry, timezone string) llm.Message {
	var b strings.Builder
	b.WriteString("You are a helpful assistant who answers questions about the user's calendar and general productivity tips and also just friend. ")
	b.WriteString("Always reply in the same language as the user's message: if the user writes in English, answer in English; if in Russian, answer in Russian. ")
	b.WriteString("You may answer any general questions, not only about the calendar. ")
	b.WriteString("If the user asks about their calendar, provide information about upcoming events, free time, and general productivity tips. ")
	b.WriteString("If the user wants to add, delete, or update a calendar event, respond ONLY with a valid JSON object in the following format:\n")
	b.WriteString(intentSchema)
	b.WriteString("If the user does not specify the event type, use '" + models.EventTypeOtherWork + "' by default. ")
	b.WriteString("Write start_time and end_time as ISO-8601 timestamps with a colon in the UTC offset, for example 2024-05-10T10:00:00+03:00, never +0300. ")
	b.WriteString("For normal answers (not related to calendar editing), reply in plain natural language with no special formatting, no escape characters, and no code or Markdown syntax, just clean human-readable text. ")
	b.WriteString("If the user's message is a greeting (like \"Hello\", \"Hi\", \"Привет\", etc.), respond in a friendly and natural way without mentioning the calendar or productivity, unless explicitly asked. ")
	b.WriteString("Base your answers on the provided calendar and general knowledge, but do not focus only on the calendar.\n")
	fmt.Fprintf(&b, "Today: %s\n", today.Format(DateLayout))
	if tz := strings.TrimSpace(timezone); tz != "" {
		fmt.Fprintf(&b, "User's timezone: %s\n", tz)
	}
	fmt.Fprintf(&b, "Here is the user's calendar:\n\n%s", FormatCalendar(calendar))
	return llm.Message{Role: models.RoleSystem, Content: b.String()}
}

// CompressInstruction is the system message used to summarise long histories.
const CompressInstruction = "Compress the following chat history into 3-6 sentences, preserving the gist of the dialogue:"

// CompressedHistoryPrefix labels the summary that replaces a long history.
const CompressedHistoryPrefix = "Chat history (compressed): "

// Compress builds the request that summarises a flattened history.
func Compress(flattened string) []llm.Message {
	return []llm.Message{
		{Role: models.RoleSystem, Content: CompressInstruction},
		{Role: models.RoleUser, Content: flattened},
	}
}

// CompressedHistory wraps a summary as the single replacement history entry.
func CompressedHistory(summary string) llm.Message {
	return llm.Message{Role: models.RoleSystem, Content: CompressedHistoryPrefix + summary}
}
