package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Intent tags understood by the resolver.
const (
	IntentAdd    = "add"
	IntentDelete = "delete"
	IntentUpdate = "update"
)

// Interpret statuses returned to API clients.
const (
	StatusAdded           = "added"
	StatusDeleted         = "deleted"
	StatusChanged         = "changed"
	StatusNotFound        = "not_found"
	StatusInvalidResponse = "invalid_response"
	StatusReply           = "reply"
)

// Intent is a requested calendar mutation, either supplied by the client or
// parsed from a model reply.
type Intent struct {
	Intent string           `json:"intent"`
	Event  *EventDescriptor `json:"event"`
}

// EventDescriptor is an untrusted, partially filled event. Timestamps are kept
// as free text until they are normalised.
type EventDescriptor struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	StartTime   *string   `json:"start_time,omitempty"`
	EndTime     *string   `json:"end_time,omitempty"`
	AllDay      *FlexBool `json:"all_day,omitempty"`
	Location    *string   `json:"location,omitempty"`
	Type        *string   `json:"type,omitempty"`
}

// TitleValue returns the trimmed title or an empty string.
func (d *EventDescriptor) TitleValue() string {
	if d == nil || d.Title == nil {
		return ""
	}
	return strings.TrimSpace(*d.Title)
}

// FlexBool accepts true/false as JSON booleans, strings or numbers.
type FlexBool bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = false
		return nil
	}
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case bool:
		*b = FlexBool(v)
	case float64:
		*b = v != 0
	case string:
		if strings.TrimSpace(v) == "" {
			*b = false
			return nil
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid boolean %q", v)
		}
		*b = FlexBool(parsed)
	default:
		return fmt.Errorf("invalid boolean %s", string(data))
	}
	return nil
}

// InterpretRequest is the natural-language command sent by the client.
type InterpretRequest struct {
	Text     string `json:"text" validate:"required"`
	Location string `json:"location"`
}

// InterpretResult is the outcome of interpreting one command.
type InterpretResult struct {
	Status   string      `json:"status"`
	Event    *Event      `json:"event,omitempty"`
	Message  string      `json:"message,omitempty"`
	Response string      `json:"response,omitempty"`
	Data     interface{} `json:"data,omitempty"`
}
