// Package timeutil parses the loose timestamps produced by clients and models.
package timeutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultTimezone is used when no zone is configured.
const DefaultTimezone = "Europe/Moscow"

// ErrEmpty is returned for blank input.
var ErrEmpty = errors.New("empty timestamp")

var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05Z07",
	"2006-01-02T15:04:05 Z07:00",
	"2006-01-02T15:04:05 Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02 15:04:05Z07",
	"2006-01-02 15:04:05 Z07:00",
	"2006-01-02 15:04:05 Z0700",
	time.RFC1123Z,
}

// naiveLayouts include the calendar rendering shown to the model, which it
// may echo back verbatim.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"January 2, 2006 3:04 PM",
	"January 2, 2006 3:04PM",
	"January 2, 2006 15:04",
	"January 2 2006 3:04 PM",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006 15:04",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006 15:04",
	"02.01.2006 15:04",
	"02.01.2006",
	"2006/01/02 15:04",
}

// ResolveLocation loads name, falling back to DefaultTimezone and then to a
// fixed UTC+3 zone when the tz database is unavailable.
func ResolveLocation(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultTimezone
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	if loc, err := time.LoadLocation(DefaultTimezone); err == nil {
		return loc
	}
	return time.FixedZone("MSK", 3*60*60)
}

// Parse reads value as an ISO-8601 like or written-out timestamp. Values
// without an offset are interpreted in loc. The result is always in UTC.
func Parse(value string, loc *time.Location) (time.Time, error) {
	t, err := ParseInZone(value, loc)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// ParseInZone is Parse without the final UTC conversion, so the written
// offset (or loc for naive values) is preserved.
func ParseInZone(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrEmpty
	}
	value = strings.NewReplacer(" am", " AM", " pm", " PM").Replace(value)
	if loc == nil {
		loc = ResolveLocation("")
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}

// SameInstant compares two instants ignoring their zones.
func SameInstant(a, b time.Time) bool {
	return a.Equal(b)
}
