package models

import "time"

// UserSettings stores per-user locale preferences.
type UserSettings struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Timezone  string    `db:"timezone" json:"timezone"`
	Language  string    `db:"language" json:"language"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// UpsertSettingsRequest creates or patches settings.
type UpsertSettingsRequest struct {
	Timezone *string `json:"timezone"`
	Language *string `json:"language" validate:"omitempty,min=2,max=8"`
}
