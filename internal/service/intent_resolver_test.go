package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
)

type fakeEventStore struct {
	events  []models.Event
	created []*models.Event
	updated []*models.Event
	deleted []string
	listErr error

	updateErr error
	deleteErr error
}

func (f *fakeEventStore) ListByUser(ctx context.Context, userID string) ([]models.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []models.Event{}
	for _, ev := range f.events {
		if ev.UserID == userID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeEventStore) Create(ctx context.Context, event *models.Event) error {
	event.ID = "new"
	f.created = append(f.created, event)
	return nil
}

func (f *fakeEventStore) Update(ctx context.Context, event *models.Event) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, event)
	return nil
}

func (f *fakeEventStore) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

var msk = time.FixedZone("MSK", 3*60*60)

func at(hour int) time.Time {
	return time.Date(2024, 5, 10, hour, 0, 0, 0, time.UTC)
}

func ev(id, title string, start time.Time) models.Event {
	return models.Event{ID: id, UserID: "u1", Title: title, StartTime: start, EndTime: start.Add(time.Hour), Type: models.EventTypeOther}
}

func strPtr(s string) *string { return &s }

func descriptor(title, start string) *models.EventDescriptor {
	d := &models.EventDescriptor{}
	if title != "" {
		d.Title = strPtr(title)
	}
	if start != "" {
		d.StartTime = strPtr(start)
	}
	return d
}

func newResolver(store *fakeEventStore) *IntentResolver {
	return NewIntentResolver(store, nil, nil, nil, IntentResolverConfig{Location: msk})
}

func assertAppError(t *testing.T, err error, sentinel *appErrors.Error, message string) *appErrors.Error {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel), "want %s got %v", sentinel.Code, err)
	appErr := appErrors.FromError(err)
	if message != "" {
		assert.Equal(t, message, appErr.Message)
	}
	return appErr
}

func TestResolveRequiresStartTime(t *testing.T) {
	for _, intent := range []string{models.IntentDelete, models.IntentUpdate, models.IntentAdd} {
		for _, d := range []*models.EventDescriptor{descriptor("Meeting", ""), {Title: strPtr("")}} {
			_, err := newResolver(&fakeEventStore{}).Resolve(context.Background(), "u1", models.Intent{Intent: intent, Event: d})
			assertAppError(t, err, appErrors.ErrValidation, "Missing required field: start_time")
		}
	}
}

func TestResolveRejectsUnparseableStart(t *testing.T) {
	_, err := newResolver(&fakeEventStore{}).Resolve(context.Background(), "u1", models.Intent{Intent: models.IntentDelete, Event: descriptor("x", "next friday")})
	assertAppError(t, err, appErrors.ErrValidation, "Invalid start_time format")
}

func TestCascadeExactTitleWinsOverSubstring(t *testing.T) {
	store := &fakeEventStore{events: []models.Event{ev("a", "Team Meeting", at(7)), ev("b", "meeting", at(7))}}

	res, err := newResolver(store).Resolve(context.Background(), "u1", models.Intent{Intent: models.IntentDelete, Event: descriptor("Meeting", "2024-05-10T10:00:00")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeleted, res.Status)
	assert.Equal(t, []string{"b"}, store.deleted)
}

func TestCascadeSubstringEitherDirectionAtSameStart(t *testing.T) {
	store := &fakeEventStore{events: []models.Event{ev("a", "Dentist", at(7)), ev("b", "Dentist", at(9))}}

	res, err := newResolver(store).Resolve(context.Background(), "u1", models.Intent{Intent: models.IntentDelete, Event: descriptor("dentist appointment", "2024-05-10T07:00:00Z")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeleted, res.Status)
	assert.Empty(t, res.Message)
	assert.Equal(t, []string{"a"}, store.deleted)
}

func TestCascadeUniqueTitleIgnoresTime(t *testing.T) {
	store := &fakeEventStore{events: []models.Event{ev("a", "Yoga class", at(5)), ev("b", "Lunch", at(7))}}

	res, err := newResolver(store).Resolve(context.Background(), "u1", models.Intent{Intent: models.IntentDelete, Event: descriptor("yoga", "2024-05-10T10:00:00+03:00")})
	require.NoError(t, err)
	assert.Equal(t, NoteTimeIgnored, res.Message)
	assert.Equal(t, []string{"a"}, store.deleted)
}

func TestCascadeSimilarTitlesDisambiguatedByStart(t *testing.T) {
	store := &fakeEventStore{events: []models.Event{ev("a", "Call mom", at(5)), ev("b", "Call dad", at(7)), ev("c", "Call team", at(9))}}

	res, err := newResolver(store).Resolve(context.Background(), "u1", models.Intent{Intent: models.IntentDelete, Event: descriptor("call", "2024-05-10T10:00:00")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeleted, res.Status)
	assert.Equal(t, []string{"b"}, store.deleted)
}

func TestCascadeSimilarTitlesAmbiguous(t *testing.T) {
	store := &fakeEventStore{events: []models.Event{ev("a", "Call mom", at(5)), ev("b", "Call dad", at(6)), ev("c", "Call team", at(9))}}

	_, err := newResolver(store).Resolve(context.Background(), "u1", models.Intent{Intent: models.IntentDelete, Event: descriptor("call", "2024-05-10T10:00:00")})
	appErr := assertAppError(t, err, appErrors.ErrAmbiguous, "Multiple events found with similar titles. Found 3 events. Please be more specific.")
	assert.Equal(t, map[string]int{"count": 3}, appErr.Details)
	assert.Empty(t, store.deleted)
}

func TestCascadeTitleMismatchFallsBackToStart(t *testing.T) {
	store := &fakeEventStore{events: []models.Event{ev("a", "Gym", at(7))}}

	res, err := newResolver(store).Resolve(context.Background(), "u1", models.Intent{Intent: models.IntentDelete, Event: descriptor("Swimming", "2024-05-10T10:00:00")})
	require.NoError(t, err)
	assert.Equal(t, NoteTitleIgnored, res.Message)
	assert.Equal(t, []string{"a"}, store.deleted)
}

func TestCascadeTitleMismatchTwoAtStartIsNotFound(t *testing.T) {
	store := &fakeEventStore{events: []models.Event{ev("a", "Gym", at(7)), ev("b", "Read", at(7))}}

	res, err := newResolver(store).Resolve(context.Background(), "u1", models.Intent{Intent: models.IntentDelete, Event: descriptor("Swimming", "2024-05-10T10:00:00")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotFound, res.Status)
	assert.Empty(t, store.deleted)
}

func TestCascadeWithoutTitle(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		store := &fakeEventStore{events: []models.Event{ev("a", "Gym", at(9))}}
		res, err := newResolver(store).Resolve(context.Background(), "u1", models.Intent{Intent: models.IntentDelete, Event: descriptor("", "2024-05-10T10:00:00")})
		require.NoError(t, err)
		assert.Equal(t, models.StatusNotFound, res.Status)
	})
	t.Run("one", func(t *testing.T) {
		store := &fakeEventStore{events: []models.Event{ev("a", "Gym", at(7))}}
		res, err := newResolver(store).Resolve(context.Background(), "u1", models.Intent{Intent: models.IntentDelete, Event: descriptor("", "2024-05-10T10:00:00")})
		require.NoError(t, err)
		assert.Equal(t, models.StatusDeleted, res.Status)
		assert.Equal(t, []string{"a"}, store.deleted)
	})
	t.Run("many", func(t *testing.T) {
		store := &fakeEventStore{events: []models.Event{ev("a", "Gym", at(7)), ev("b", "Read", at(7))}}
		_, err := newResolver(store).Resolve(context.Background(), "u1", models.Intent{Intent: models.IntentDelete, Event: &models.EventDescriptor{Title: strPtr("  "), StartTime: strPtr("2024-05-10T10:00:00")}})
		appErr := assertAppError(t, err, appErrors.ErrAmbiguous, "Multiple events found at this time. Please specify the title.")
		assert.Equal(t, map[string]int{"count": 2}, appErr.Details)
	})
}

func TestCascadeOnlyConsidersOwnEvents(t *testing.T) {
	other := ev("x", "Gym", at(7))
	other.UserID = "u2"
	store := &fakeEventStore{events: []models.Event{other}}

	res, err := newResolver(store).Resolve(context.Background(), "u1", models.Intent{Intent: models.IntentDelete, Event: descriptor("Gym", "2024-05-10T10:00:00")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotFound, res.Status)
}

func TestMatchStepsContinueWhenUndecided(t *testing.T) {
	q := MatchQuery{Title: "gym", Start: at(7)}
	candidates := []models.Event{ev("a", "Read", at(8))}

	assert.Equal(t, OutcomeContinue, MatchExactTitleAndStart(q, candidates).Outcome)
	assert.Equal(t, OutcomeContinue, MatchSimilarTitleAndStart(q, candidates).Outcome)
	assert.Equal(t, OutcomeContinue, MatchSimilarTitle(q, candidates).Outcome)
	assert.Equal(t, OutcomeNotFound, MatchStartIgnoringTitle(q, candidates).Outcome)
	assert.Equal(t, OutcomeContinue, MatchStartWithoutTitle(q, candidates).Outcome)
}

func TestAddDefaults(t *testing.T) {
	store := &fakeEventStore{}

	res, err := newResolver(store).Resolve(context.Background(), "u1", models.Intent{Intent: models.IntentAdd, Event: descriptor("", "2024-05-10T10:00:00")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusAdded, res.Status)
	require.Len(t, store.created, 1)
	created := store.created[0]
	assert.Equal(t, "Untitled event", created.Title)
	assert.Equal(t, models.EventTypeOtherWork, created.Type)
	assert.Equal(t, at(7), created.StartTime)
	assert.Equal(t, at(8), created.EndTime)
	assert.Equal(t, "u1", created.UserID)
}

func TestAddWithExplicitFields(t *testing.T) {
	store := &fakeEventStore{}
	allDay := models.FlexBool(true)
	d := descriptor("Focus block", "2024-05-10T09:00:00+03:00")
	d.EndTime = strPtr("2024-05-10T12:00:00+03:00")
	d.Type = strPtr("focus")
	d.AllDay = &allDay

	_, err := newResolver(store).Add(context.Background(), "u1", d)
	require.NoError(t, err)
	created := store.created[0]
	assert.Equal(t, at(6), created.StartTime)
	assert.Equal(t, at(9), created.EndTime)
	assert.Equal(t, "focus", created.Type)
	assert.True(t, created.AllDay)
}

func TestAddRejectsInvalidTypeAndEnd(t *testing.T) {
	d := descriptor("x", "2024-05-10T10:00:00")
	d.Type = strPtr("party")
	_, err := newResolver(&fakeEventStore{}).Add(context.Background(), "u1", d)
	assertAppError(t, err, appErrors.ErrValidation, "")

	d = descriptor("x", "2024-05-10T10:00:00")
	d.EndTime = strPtr("2024-05-10T09:00:00")
	_, err = newResolver(&fakeEventStore{}).Add(context.Background(), "u1", d)
	assertAppError(t, err, appErrors.ErrValidation, "end_time must not be before start_time")
}

func TestUpdateMovesMatchedEventKeepingDuration(t *testing.T) {
	store := &fakeEventStore{events: []models.Event{ev("a", "Piano lesson", at(5))}}
	d := descriptor("piano", "2024-05-10T13:00:00")
	d.Location = strPtr("Studio")

	res, err := newResolver(store).Resolve(context.Background(), "u1", models.Intent{Intent: models.IntentUpdate, Event: d})
	require.NoError(t, err)
	assert.Equal(t, models.StatusChanged, res.Status)
	assert.Equal(t, NoteTimeIgnored, res.Message)
	require.Len(t, store.updated, 1)
	updated := store.updated[0]
	assert.Equal(t, "piano", updated.Title)
	assert.Equal(t, at(10), updated.StartTime)
	assert.Equal(t, at(11), updated.EndTime)
	assert.Equal(t, "Studio", *updated.Location)
}

func TestResolveUnknownIntent(t *testing.T) {
	_, err := newResolver(&fakeEventStore{}).Resolve(context.Background(), "u1", models.Intent{Intent: "archive", Event: descriptor("x", "2024-05-10T10:00:00")})
	assertAppError(t, err, appErrors.ErrUnknownIntent, "Unknown intent: archive")
}

func TestResolveMissingEventIsInvalidResponse(t *testing.T) {
	_, err := newResolver(&fakeEventStore{}).Resolve(context.Background(), "u1", models.Intent{Intent: models.IntentAdd})
	assertAppError(t, err, appErrors.ErrInvalidResponse, "")
}

func TestResolveStoreFailure(t *testing.T) {
	store := &fakeEventStore{listErr: errors.New("db down")}
	_, err := newResolver(store).Resolve(context.Background(), "u1", models.Intent{Intent: models.IntentDelete, Event: descriptor("x", "2024-05-10T10:00:00")})
	assertAppError(t, err, appErrors.ErrInternal, "")
}

func TestCascadeStoredTitleInsideSuppliedIgnoresTime(t *testing.T) {
	store := &fakeEventStore{events: []models.Event{ev("a", "Meeting", at(5)), ev("b", "Lunch", at(7))}}

	res, err := newResolver(store).Resolve(context.Background(), "u1", models.Intent{Intent: models.IntentDelete, Event: descriptor("Team Meeting", "2024-05-10T10:00:00")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeleted, res.Status)
	assert.Equal(t, NoteTimeIgnored, res.Message)
	assert.Equal(t, []string{"a"}, store.deleted)
}

func TestUpdateSimilarTitlesAmbiguous(t *testing.T) {
	store := &fakeEventStore{events: []models.Event{ev("a", "Call mom", at(5)), ev("b", "Call dad", at(6))}}

	_, err := newResolver(store).Resolve(context.Background(), "u1", models.Intent{Intent: models.IntentUpdate, Event: descriptor("call", "2024-05-10T10:00:00")})
	appErr := assertAppError(t, err, appErrors.ErrAmbiguous, "Multiple events found with similar titles. Found 2 events. Please be more specific.")
	assert.Equal(t, map[string]int{"count": 2}, appErr.Details)
	assert.Empty(t, store.updated)
}

func TestResolveRowRemovedConcurrentlyIsNotFound(t *testing.T) {
	t.Run("delete", func(t *testing.T) {
		store := &fakeEventStore{events: []models.Event{ev("a", "Gym", at(7))}, deleteErr: sql.ErrNoRows}
		res, err := newResolver(store).Resolve(context.Background(), "u1", models.Intent{Intent: models.IntentDelete, Event: descriptor("Gym", "2024-05-10T10:00:00")})
		require.NoError(t, err)
		assert.Equal(t, models.StatusNotFound, res.Status)
	})
	t.Run("update", func(t *testing.T) {
		store := &fakeEventStore{events: []models.Event{ev("a", "Gym", at(7))}, updateErr: sql.ErrNoRows}
		res, err := newResolver(store).Resolve(context.Background(), "u1", models.Intent{Intent: models.IntentUpdate, Event: descriptor("Gym", "2024-05-10T11:00:00")})
		require.NoError(t, err)
		assert.Equal(t, models.StatusNotFound, res.Status)
	})
	t.Run("other delete failure", func(t *testing.T) {
		store := &fakeEventStore{events: []models.Event{ev("a", "Gym", at(7))}, deleteErr: errors.New("connection reset")}
		_, err := newResolver(store).Resolve(context.Background(), "u1", models.Intent{Intent: models.IntentDelete, Event: descriptor("Gym", "2024-05-10T10:00:00")})
		assertAppError(t, err, appErrors.ErrInternal, "failed to delete event")
	})
}

func TestResolveAcceptsCalendarRendering(t *testing.T) {
	store := &fakeEventStore{events: []models.Event{ev("a", "Gym", at(7))}}

	res, err := newResolver(store).Resolve(context.Background(), "u1", models.Intent{Intent: models.IntentDelete, Event: descriptor("Gym", "May 10, 2024 10:00 AM")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeleted, res.Status)
}

func TestResolveRecordsMetrics(t *testing.T) {
	metrics := NewMetricsService()
	store := &fakeEventStore{events: []models.Event{ev("a", "Gym", at(7))}}
	resolver := NewIntentResolver(store, nil, nil, metrics, IntentResolverConfig{Location: msk})

	_, err := resolver.Resolve(context.Background(), "u1", models.Intent{Intent: models.IntentDelete, Event: descriptor("Gym", "2024-05-10T10:00:00")})
	require.NoError(t, err)
	_, err = resolver.Resolve(context.Background(), "u1", models.Intent{Intent: "purge", Event: descriptor("Gym", "2024-05-10T10:00:00")})
	require.Error(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.intentOutcomes.WithLabelValues("unknown", "unknown_intent")))
	assert.Equal(t, 2, testutil.CollectAndCount(metrics.dbQueryDuration))
}
