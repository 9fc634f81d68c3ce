package models

import "time"

// Event types accepted by the store. "other work" is what the assistant emits by default.
const (
	EventTypeFocus     = "focus"
	EventTypeTasks     = "tasks"
	EventTypeTarget    = "target"
	EventTypeOther     = "other"
	EventTypeOtherWork = "other work"
)

// Event is a calendar entry owned by exactly one user.
type Event struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	AllDay      bool      `db:"all_day" json:"all_day"`
	Location    *string   `db:"location" json:"location,omitempty"`
	Type        string    `db:"type" json:"type"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CreateEventRequest is the explicit create payload.
type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,max=255"`
	Description *string   `json:"description"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required"`
	AllDay      bool      `json:"all_day"`
	Location    *string   `json:"location"`
	Type        string    `json:"type" validate:"required,oneof=focus tasks target other 'other work'"`
}

// UpdateEventRequest carries a partial event; nil fields are left untouched.
type UpdateEventRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=255"`
	Description *string    `json:"description"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	AllDay      *bool      `json:"all_day"`
	Location    *string    `json:"location"`
	Type        *string    `json:"type" validate:"omitempty,oneof=focus tasks target other 'other work'"`
}

// EventRangeRequest selects events overlapping [StartTime, EndTime].
type EventRangeRequest struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}
