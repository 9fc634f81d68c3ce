package models

import "time"

// Chat roles. RoleLLM is the label the web client uses for assistant turns.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleLLM       = "llm"
)

// ChatMessage is one stored turn of a user's conversation.
type ChatMessage struct {
	ID        string    `db:"id" json:"id,omitempty"`
	UserID    string    `db:"user_id" json:"-"`
	Role      string    `db:"role" json:"role"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at,omitempty"`
}

// AddMessageRequest appends a turn to the stored history.
type AddMessageRequest struct {
	Role    string `json:"role" validate:"required,oneof=user assistant llm system"`
	Content string `json:"content" validate:"required"`
}

// ChatRequest is one user turn with optional client-held history.
type ChatRequest struct {
	Message string        `json:"message" validate:"required"`
	History []ChatMessage `json:"history"`
}

// ChatResponse wraps the assistant reply.
type ChatResponse struct {
	Response   string `json:"response"`
	Compressed bool   `json:"compressed"`
}
