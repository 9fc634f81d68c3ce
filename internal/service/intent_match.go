package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	"github.com/noah-isme/ego-calendar-api/pkg/timeutil"
)

// Outcome tags the result of one matching step.
type Outcome string

const (
	// OutcomeContinue means the step did not decide and the next one runs.
	OutcomeContinue  Outcome = ""
	OutcomeMatched   Outcome = "matched"
	OutcomeAmbiguous Outcome = "ambiguous"
	OutcomeNotFound  Outcome = "not_found"
)

// Notes attached to matches that disregarded part of the query.
const (
	NoteTimeIgnored  = "time ignored"
	NoteTitleIgnored = "title ignored"
)

// MatchQuery identifies the event a delete or update refers to. Start is in UTC.
type MatchQuery struct {
	Title string
	Start time.Time
}

// MatchResult is the tagged outcome of a step or the whole cascade.
type MatchResult struct {
	Outcome Outcome
	Event   *models.Event
	Note    string
	Count   int
	Message string
}

// MatchStep inspects the candidates and either decides or continues.
type MatchStep func(q MatchQuery, candidates []models.Event) MatchResult

// MatchCascade lists the steps in the order they are tried.
var MatchCascade = []MatchStep{
	MatchExactTitleAndStart,
	MatchSimilarTitleAndStart,
	MatchSimilarTitle,
	MatchStartIgnoringTitle,
	MatchStartWithoutTitle,
}

// RunCascade runs MatchCascade and returns the first decisive result.
func RunCascade(q MatchQuery, candidates []models.Event) MatchResult {
	for _, step := range MatchCascade {
		if res := step(q, candidates); res.Outcome != OutcomeContinue {
			return res
		}
	}
	return MatchResult{Outcome: OutcomeNotFound}
}

func matched(event models.Event, note string) MatchResult {
	ev := event
	return MatchResult{Outcome: OutcomeMatched, Event: &ev, Note: note, Count: 1}
}

func normaliseTitle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func titlesSimilar(query, candidate string) bool {
	q, c := normaliseTitle(query), normaliseTitle(candidate)
	return strings.Contains(c, q) || strings.Contains(q, c)
}

func sameStart(event models.Event, start time.Time) bool {
	return !event.StartTime.IsZero() && timeutil.SameInstant(event.StartTime, start)
}

func filterByStart(events []models.Event, start time.Time) []models.Event {
	out := make([]models.Event, 0, len(events))
	for _, ev := range events {
		if sameStart(ev, start) {
			out = append(out, ev)
		}
	}
	return out
}

// MatchExactTitleAndStart matches a case-insensitive equal title at the same instant.
func MatchExactTitleAndStart(q MatchQuery, candidates []models.Event) MatchResult {
	if q.Title == "" {
		return MatchResult{}
	}
	want := normaliseTitle(q.Title)
	for _, ev := range candidates {
		if normaliseTitle(ev.Title) == want && sameStart(ev, q.Start) {
			return matched(ev, "")
		}
	}
	return MatchResult{}
}

// MatchSimilarTitleAndStart matches a substring title in either direction at the same instant.
func MatchSimilarTitleAndStart(q MatchQuery, candidates []models.Event) MatchResult {
	if q.Title == "" {
		return MatchResult{}
	}
	for _, ev := range candidates {
		if titlesSimilar(q.Title, ev.Title) && sameStart(ev, q.Start) {
			return matched(ev, "")
		}
	}
	return MatchResult{}
}

// MatchSimilarTitle ignores time when the title alone is unique, and uses
// time only to break ties between similar titles.
func MatchSimilarTitle(q MatchQuery, candidates []models.Event) MatchResult {
	if q.Title == "" {
		return MatchResult{}
	}
	similar := make([]models.Event, 0)
	for _, ev := range candidates {
		if titlesSimilar(q.Title, ev.Title) {
			similar = append(similar, ev)
		}
	}
	switch len(similar) {
	case 0:
		return MatchResult{}
	case 1:
		return matched(similar[0], NoteTimeIgnored)
	}
	if atStart := filterByStart(similar, q.Start); len(atStart) == 1 {
		return matched(atStart[0], "")
	}
	return MatchResult{
		Outcome: OutcomeAmbiguous,
		Count:   len(similar),
		Message: fmt.Sprintf("Multiple events found with similar titles. Found %d events. Please be more specific.", len(similar)),
	}
}

// MatchStartIgnoringTitle is the last resort for titled queries. It never continues.
func MatchStartIgnoringTitle(q MatchQuery, candidates []models.Event) MatchResult {
	if q.Title == "" {
		return MatchResult{}
	}
	if atStart := filterByStart(candidates, q.Start); len(atStart) == 1 {
		return matched(atStart[0], NoteTitleIgnored)
	}
	return MatchResult{Outcome: OutcomeNotFound}
}

// MatchStartWithoutTitle handles untitled queries by start instant alone.
func MatchStartWithoutTitle(q MatchQuery, candidates []models.Event) MatchResult {
	if q.Title != "" {
		return MatchResult{}
	}
	atStart := filterByStart(candidates, q.Start)
	switch len(atStart) {
	case 0:
		return MatchResult{Outcome: OutcomeNotFound}
	case 1:
		return matched(atStart[0], "")
	default:
		return MatchResult{
			Outcome: OutcomeAmbiguous,
			Count:   len(atStart),
			Message: "Multiple events found at this time. Please specify the title.",
		}
	}
}
