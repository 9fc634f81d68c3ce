package models

import "time"

// UserProfile holds the personal details used for recommendations.
type UserProfile struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Name        string    `db:"name" json:"name"`
	Surname     string    `db:"surname" json:"surname"`
	Age         string    `db:"age" json:"age"`
	Sex         string    `db:"sex" json:"sex"`
	Description *string   `db:"description" json:"description,omitempty"`
	Hometown    string    `db:"hometown" json:"hometown"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CreateProfileRequest creates the caller's profile.
type CreateProfileRequest struct {
	Name        string  `json:"name" validate:"required"`
	Surname     string  `json:"surname" validate:"required"`
	Age         string  `json:"age" validate:"required"`
	Sex         string  `json:"sex" validate:"required"`
	Description *string `json:"description"`
	Hometown    string  `json:"hometown" validate:"required"`
}

// UpdateProfileRequest patches the caller's profile.
type UpdateProfileRequest struct {
	Name        *string `json:"name"`
	Surname     *string `json:"surname"`
	Age         *string `json:"age"`
	Sex         *string `json:"sex"`
	Description *string `json:"description"`
	Hometown    *string `json:"hometown"`
}

// ProfileWithWeather is the profile summary enriched with current weather.
type ProfileWithWeather struct {
	Age         string      `json:"age"`
	Sex         string      `json:"sex"`
	Description *string     `json:"description,omitempty"`
	Hometown    string      `json:"hometown"`
	Weather     interface{} `json:"weather"`
}
