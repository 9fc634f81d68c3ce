package models

import "time"

// Reminder delivery methods.
const (
	ReminderMethodEmail = "email"
	ReminderMethodPush  = "push"
)

// Reminder schedules a notification for an event.
type Reminder struct {
	ID        string     `db:"id" json:"id"`
	EventID   string     `db:"event_id" json:"event_id"`
	UserID    string     `db:"user_id" json:"user_id"`
	RemindAt  time.Time  `db:"remind_at" json:"remind_at"`
	Method    string     `db:"method" json:"method"`
	SentAt    *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	FailedAt  *time.Time `db:"failed_at" json:"failed_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// DueReminder joins a pending reminder with what is needed to deliver it.
type DueReminder struct {
	Reminder
	EventTitle string    `db:"event_title"`
	EventStart time.Time `db:"event_start"`
	UserEmail  string    `db:"user_email"`
	UserName   string    `db:"user_name"`
}

// CreateReminderRequest schedules a reminder.
type CreateReminderRequest struct {
	EventID  string    `json:"event_id" validate:"required"`
	RemindAt time.Time `json:"remind_at" validate:"required"`
	Method   string    `json:"method" validate:"required,oneof=email push"`
}

// UpdateReminderRequest reschedules a reminder.
type UpdateReminderRequest struct {
	RemindAt *time.Time `json:"remind_at"`
	Method   *string    `json:"method" validate:"omitempty,oneof=email push"`
}
