// Package prompt renders the system messages sent to the language model.
// Every builder is a pure function of its inputs.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	"github.com/noah-isme/ego-calendar-api/pkg/timeutil"
)

const (
	DateLayout     = "January 02, 2006"
	DateTimeLayout = "January 02, 2006 03:04 PM"
	TimeLayout     = "03:04 PM"

	UntitledEvent   = "Untitled event"
	UnknownLocation = "Unknown location"
	EmptyCalendar   = "No calendar events available"
)

// EntryFromEvent converts a stored event into the compact calendar shape,
// rendering timestamps in loc.
func EntryFromEvent(ev models.Event, loc *time.Location) models.CalendarEntry {
	if loc == nil {
		loc = time.UTC
	}
	entry := models.CalendarEntry{Summary: ev.Title}
	if !ev.StartTime.IsZero() {
		entry.Start = ev.StartTime.In(loc).Format(time.RFC3339)
	}
	if !ev.EndTime.IsZero() {
		entry.End = ev.EndTime.In(loc).Format(time.RFC3339)
	}
	if ev.Location != nil {
		entry.Location = *ev.Location
	}
	return entry
}

// EntriesFromEvents maps EntryFromEvent over events.
func EntriesFromEvents(events []models.Event, loc *time.Location) []models.CalendarEntry {
	out := make([]models.CalendarEntry, 0, len(events))
	for _, ev := range events {
		out = append(out, EntryFromEvent(ev, loc))
	}
	return out
}

// FormatEvent renders one calendar line. It never fails; bad data degrades
// to a marker suffix.
func FormatEvent(e models.CalendarEntry) string {
	title := strings.TrimSpace(e.Summary)
	if title == "" {
		title = UntitledEvent
	}
	if strings.TrimSpace(e.Start) == "" || strings.TrimSpace(e.End) == "" {
		return fmt.Sprintf("- %s (incomplete event data)", title)
	}
	start, err := timeutil.ParseInZone(e.Start, time.UTC)
	if err != nil {
		return fmt.Sprintf("- %s (formatting error)", title)
	}
	end, err := timeutil.ParseInZone(e.End, time.UTC)
	if err != nil {
		return fmt.Sprintf("- %s (formatting error)", title)
	}
	location := strings.TrimSpace(e.Location)
	if location == "" {
		location = UnknownLocation
	}
	return fmt.Sprintf("- %s from %s to %s at %s", title, start.Format(DateTimeLayout), end.Format(TimeLayout), location)
}

// FormatCalendar renders the calendar block used by every prompt.
func FormatCalendar(entries []models.CalendarEntry) string {
	if len(entries) == 0 {
		return EmptyCalendar
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, FormatEvent(e))
	}
	return strings.Join(lines, "\n")
}
