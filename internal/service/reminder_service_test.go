package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
	"github.com/noah-isme/ego-calendar-api/pkg/jobs"
)

type fakeReminderRepo struct {
	mu        sync.Mutex
	reminders map[string]*models.Reminder
	due       []models.DueReminder
	sent      []string
	failed    map[string]string
	markErr   error
}

func newFakeReminderRepo() *fakeReminderRepo {
	return &fakeReminderRepo{reminders: map[string]*models.Reminder{}}
}

func (f *fakeReminderRepo) Create(ctx context.Context, reminder *models.Reminder) error {
	reminder.ID = "r" + reminder.EventID
	f.reminders[reminder.ID] = reminder
	return nil
}

func (f *fakeReminderRepo) FindByID(ctx context.Context, id string) (*models.Reminder, error) {
	if r, ok := f.reminders[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeReminderRepo) ListByUser(ctx context.Context, userID string) ([]models.Reminder, error) {
	out := []models.Reminder{}
	for _, r := range f.reminders {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReminderRepo) Update(ctx context.Context, reminder *models.Reminder) error {
	f.reminders[reminder.ID] = reminder
	return nil
}

func (f *fakeReminderRepo) Delete(ctx context.Context, id string) error {
	delete(f.reminders, id)
	return nil
}

func (f *fakeReminderRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]models.DueReminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.DueReminder(nil), f.due...), nil
}

func (f *fakeReminderRepo) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeReminderRepo) MarkFailed(ctx context.Context, id string, failedAt time.Time, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed == nil {
		f.failed = map[string]string{}
	}
	f.failed[id] = reason
	kept := f.due[:0]
	for _, r := range f.due {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	f.due = kept
	return nil
}

func (f *fakeReminderRepo) failedReason(id string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reason, ok := f.failed[id]
	return reason, ok
}

func (f *fakeReminderRepo) sentIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

type fakeEventFinder struct {
	events map[string]*models.Event
}

func (f *fakeEventFinder) FindByID(ctx context.Context, id string) (*models.Event, error) {
	if ev, ok := f.events[id]; ok {
		return ev, nil
	}
	return nil, sql.ErrNoRows
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeEmail) Configured() bool { return true }

func (f *fakeEmail) Send(ctx context.Context, to, subject, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to+"|"+subject)
	return nil
}

func newReminderService(repo *fakeReminderRepo) *ReminderService {
	events := &fakeEventFinder{events: map[string]*models.Event{
		"e1": {ID: "e1", UserID: "u1"},
		"e2": {ID: "e2", UserID: "u2"},
	}}
	return NewReminderService(repo, events, nil, nil)
}

func TestReminderCreateChecksEventOwnership(t *testing.T) {
	repo := newFakeReminderRepo()
	svc := newReminderService(repo)
	remindAt := time.Date(2024, 5, 10, 9, 0, 0, 0, msk)

	reminder, err := svc.Create(context.Background(), "u1", models.CreateReminderRequest{EventID: "e1", RemindAt: remindAt, Method: models.ReminderMethodEmail})
	require.NoError(t, err)
	assert.Equal(t, time.UTC, reminder.RemindAt.Location())
	assert.True(t, reminder.RemindAt.Equal(remindAt))

	_, err = svc.Create(context.Background(), "u1", models.CreateReminderRequest{EventID: "e2", RemindAt: remindAt, Method: models.ReminderMethodEmail})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Create(context.Background(), "u1", models.CreateReminderRequest{EventID: "e1", RemindAt: remindAt, Method: "sms"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestReminderUpdateClearsSentMarker(t *testing.T) {
	repo := newFakeReminderRepo()
	sent := time.Now()
	repo.reminders["r1"] = &models.Reminder{ID: "r1", UserID: "u1", EventID: "e1", Method: models.ReminderMethodPush, SentAt: &sent}
	svc := newReminderService(repo)

	later := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	updated, err := svc.Update(context.Background(), "u1", "r1", models.UpdateReminderRequest{RemindAt: &later})
	require.NoError(t, err)
	assert.Nil(t, updated.SentAt)

	_, err = svc.Update(context.Background(), "u2", "r1", models.UpdateReminderRequest{RemindAt: &later})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestReminderDeleteOwnedOnly(t *testing.T) {
	repo := newFakeReminderRepo()
	repo.reminders["r1"] = &models.Reminder{ID: "r1", UserID: "u1"}
	svc := newReminderService(repo)

	assert.True(t, errors.Is(svc.Delete(context.Background(), "u2", "r1"), appErrors.ErrNotFound))
	require.NoError(t, svc.Delete(context.Background(), "u1", "r1"))
	assert.Empty(t, repo.reminders)
}

func dueReminder(id, method string) models.DueReminder {
	return models.DueReminder{
		Reminder:   models.Reminder{ID: id, UserID: "u1", EventID: "e1", Method: method},
		EventTitle: "Standup",
		EventStart: time.Date(2024, 5, 10, 7, 0, 0, 0, time.UTC),
		UserEmail:  "user@example.com",
	}
}

func TestReminderDeliverSendsEmailAndMarksSent(t *testing.T) {
	repo := newFakeReminderRepo()
	email := &fakeEmail{}
	d := NewReminderDispatcher(repo, email, NewMetricsService(), ReminderDispatcherConfig{}, nil)

	require.NoError(t, d.Deliver(context.Background(), jobs.Job[models.DueReminder]{Payload: dueReminder("r1", models.ReminderMethodEmail)}))
	require.NoError(t, d.Deliver(context.Background(), jobs.Job[models.DueReminder]{Payload: dueReminder("r2", models.ReminderMethodPush)}))

	assert.Equal(t, []string{"user@example.com|Reminder: Standup"}, email.sent)
	assert.Equal(t, []string{"r1", "r2"}, repo.sentIDs())
}

func TestReminderDeliverFailureLeavesUnsent(t *testing.T) {
	repo := newFakeReminderRepo()
	d := NewReminderDispatcher(repo, &fakeEmail{err: errors.New("rejected")}, nil, ReminderDispatcherConfig{}, nil)

	err := d.Deliver(context.Background(), jobs.Job[models.DueReminder]{Payload: dueReminder("r1", models.ReminderMethodEmail)})
	require.Error(t, err)
	assert.Empty(t, repo.sentIDs())
}

func TestReminderDispatcherPollsAndDelivers(t *testing.T) {
	repo := newFakeReminderRepo()
	repo.due = []models.DueReminder{dueReminder("r1", models.ReminderMethodPush), dueReminder("r2", models.ReminderMethodPush)}
	d := NewReminderDispatcher(repo, nil, nil, ReminderDispatcherConfig{PollInterval: time.Hour, Workers: 2}, nil)

	d.Start(context.Background())
	defer d.Stop()

	require.Eventually(t, func() bool { return len(repo.sentIDs()) == 2 }, time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []string{"r1", "r2"}, repo.sentIDs())
}

func TestReminderDispatcherParksExhaustedReminder(t *testing.T) {
	repo := newFakeReminderRepo()
	repo.due = []models.DueReminder{dueReminder("r1", models.ReminderMethodEmail)}
	email := &fakeEmail{err: errors.New("rejected")}
	d := NewReminderDispatcher(repo, email, nil, ReminderDispatcherConfig{PollInterval: time.Hour, Workers: 1, Retries: 0}, nil)

	d.Start(context.Background())
	defer d.Stop()

	require.Eventually(t, func() bool {
		_, ok := repo.failedReason("r1")
		return ok
	}, time.Second, 10*time.Millisecond)
	reason, _ := repo.failedReason("r1")
	assert.Equal(t, "rejected", reason)

	enqueued, err := d.Poll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, enqueued)
	assert.Empty(t, repo.sentIDs())
}
