package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
)

type fakeEventRepo struct {
	fakeEventStore
	rangeStart, rangeEnd time.Time
}

func (f *fakeEventRepo) ListByRange(ctx context.Context, userID string, start, end time.Time) ([]models.Event, error) {
	f.rangeStart, f.rangeEnd = start, end
	return f.ListByUser(ctx, userID)
}

func (f *fakeEventRepo) FindByID(ctx context.Context, id string) (*models.Event, error) {
	for i := range f.events {
		if f.events[i].ID == id {
			ev := f.events[i]
			return &ev, nil
		}
	}
	return nil, sql.ErrNoRows
}

func newEventService() (*EventService, *fakeEventRepo) {
	repo := &fakeEventRepo{fakeEventStore: fakeEventStore{events: []models.Event{
		ev("e1", "Standup", at(7)),
		{ID: "e2", UserID: "u2", Title: "Other user", StartTime: at(8), EndTime: at(9)},
	}}}
	return NewEventService(repo, nil, nil), repo
}

func TestEventServiceCreateValidatesType(t *testing.T) {
	svc, repo := newEventService()
	req := models.CreateEventRequest{Title: "Gym", StartTime: at(18), EndTime: at(19), Type: "sport"}

	_, err := svc.Create(context.Background(), "u1", req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	req.Type = models.EventTypeOtherWork
	created, err := svc.Create(context.Background(), "u1", req)
	require.NoError(t, err)
	assert.Equal(t, "u1", created.UserID)
	assert.Len(t, repo.created, 1)
}

func TestEventServiceCreateRejectsInvertedRange(t *testing.T) {
	svc, _ := newEventService()

	_, err := svc.Create(context.Background(), "u1", models.CreateEventRequest{Title: "Gym", StartTime: at(19), EndTime: at(18), Type: models.EventTypeFocus})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestEventServiceUpdateShiftsEnd(t *testing.T) {
	svc, repo := newEventService()
	start := at(10)

	updated, err := svc.Update(context.Background(), "u1", "e1", models.UpdateEventRequest{StartTime: &start})
	require.NoError(t, err)
	assert.Equal(t, at(10), updated.StartTime)
	assert.Equal(t, at(11), updated.EndTime)
	require.Len(t, repo.updated, 1)
}

func TestEventServiceScopesToOwner(t *testing.T) {
	svc, repo := newEventService()

	_, err := svc.Get(context.Background(), "u1", "e2")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	err = svc.Delete(context.Background(), "u1", "e2")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Empty(t, repo.deleted)

	require.NoError(t, svc.Delete(context.Background(), "u1", "e1"))
	assert.Equal(t, []string{"e1"}, repo.deleted)
}

func TestEventServiceListByRange(t *testing.T) {
	svc, repo := newEventService()

	events, err := svc.ListByRange(context.Background(), "u1", models.EventRangeRequest{StartTime: at(6), EndTime: at(12)})
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, at(6), repo.rangeStart)

	_, err = svc.ListByRange(context.Background(), "u1", models.EventRangeRequest{StartTime: at(12), EndTime: at(6)})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
