package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ego-calendar-api/internal/models"
)

func TestParseRescheduleWrappedItems(t *testing.T) {
	reply := "Moved the gym session to the evening.\n[{\"event\": {\"summary\": \"Gym\", \"start\": \"2024-05-10T19:00\", \"end\": \"2024-05-10T20:00\", \"location\": \"Club\"}}]"

	res := ParseReschedule(reply)
	assert.Equal(t, "Moved the gym session to the evening.", res.Suggestion)
	require.Len(t, res.NewCalendar, 1)
	assert.Equal(t, models.CalendarEntry{Summary: "Gym", Start: "2024-05-10T19:00", End: "2024-05-10T20:00", Location: "Club"}, res.NewCalendar[0].Event)
}

func TestParseRescheduleWrapsFlatItems(t *testing.T) {
	res := ParseReschedule("Swapped two meetings.\n[{\"summary\": \"A\", \"start\": \"s\", \"end\": \"e\"}, {\"summary\": \"B\"}]")
	require.Len(t, res.NewCalendar, 2)
	assert.Equal(t, "B", res.NewCalendar[1].Event.Summary)
}

func TestParseRescheduleWithoutCalendar(t *testing.T) {
	res := ParseReschedule("Your schedule already looks balanced.")
	assert.Equal(t, "Your schedule already looks balanced.", res.Suggestion)
	assert.Nil(t, res.NewCalendar)
}

func TestRescheduleUsesStoredEventsWhenCalendarMissing(t *testing.T) {
	client := &fakeChatClient{replies: []string{"Nothing to change.\n[]"}}
	store := &fakeEventStore{events: []models.Event{ev("a", "Standup", at(7))}}
	svc := NewRescheduleService(client, newChatService(client, &fakeChatHistory{}, store), msk, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 10, 6, 0, 0, 0, time.UTC) }

	res, err := svc.Reschedule(context.Background(), "u1", models.RescheduleRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Nothing to change.", res.Suggestion)
	assert.Nil(t, res.NewCalendar)

	require.Len(t, client.calls, 1)
	assert.Contains(t, client.calls[0][0].Content, "Reschedule task between 6 am and 11 pm")
	assert.Contains(t, client.calls[0][0].Content, "Standup")
	assert.Contains(t, client.calls[0][0].Content, "May 10, 2024")
	assert.Equal(t, "Please optimize my schedule for maximum productivity.", client.calls[0][1].Content)
}
