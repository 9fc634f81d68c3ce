package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// AIInteraction records one assistant exchange for auditing and history.
type AIInteraction struct {
	ID           string         `db:"id" json:"id"`
	UserID       string         `db:"user_id" json:"user_id"`
	InputText    string         `db:"input_text" json:"input_text"`
	Intent       *string        `db:"intent" json:"intent,omitempty"`
	Entities     types.JSONText `db:"entities" json:"entities,omitempty"`
	ResponseText string         `db:"response_text" json:"response_text"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// InteractionFilter narrows the interaction history.
type InteractionFilter struct {
	UserID    string
	StartDate *time.Time
	EndDate   *time.Time
	Intent    string
	Page      int
	PageSize  int
}
