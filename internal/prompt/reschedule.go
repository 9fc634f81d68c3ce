package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	"github.com/noah-isme/ego-calendar-api/pkg/llm"
)

// RescheduleRequest is the user turn paired with the reschedule prompt.
const RescheduleRequest = "Please optimize my schedule for maximum productivity."

const rescheduleFormat = `[
  {
    "event": {
      "summary": "Event title",
      "start": "YYYY-MM-DDTHH:MM",
      "end": "YYYY-MM-DDTHH:MM",
      "location": "Event location"
    }
  },
  ...
]

`

// Reschedule builds the system message asking for a rearranged calendar.
func Reschedule(today time.Time, calendar []models.CalendarEntry) llm.Message {
	var b strings.Builder
	b.WriteString("Reschedule task between 6 am and 11 pm. ")
	b.WriteString("You are an expert time-management assistant. ")
	b.WriteString("Analyze the user's calendar and suggest a slightly more convenient or balanced schedule. ")
	b.WriteString("Do not focus only on maximum productivity. ")
	b.WriteString("All events from the original calendar must be preserved: you may only change their order or time, but do not remove or add events. ")
	b.WriteString("Give a short summary of your suggestion (1-2 sentences). ")
	b.WriteString("In your summary, clearly specify what exactly was changed (e.g., which events were moved or swapped). ")
	b.WriteString("Then return the new optimized calendar as a JSON array of events, using the following format:\n\n")
	b.WriteString(rescheduleFormat)
	b.WriteString("Only return the JSON, do not include anything else after it.\n")
	fmt.Fprintf(&b, "Today: %s\n", today.Format(DateLayout))
	fmt.Fprintf(&b, "User's calendar:\n\n%s", FormatCalendar(calendar))
	return llm.Message{Role: models.RoleSystem, Content: b.String()}
}
