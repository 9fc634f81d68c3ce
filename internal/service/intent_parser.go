package service

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
)

// ReplyKind classifies a model reply.
type ReplyKind int

const (
	ReplyText ReplyKind = iota
	ReplyIntent
)

// ParsedReply is a classified model reply.
type ParsedReply struct {
	Kind   ReplyKind
	Intent models.Intent
	Text   string
}

// ParseReply classifies raw as a calendar intent or plain prose. JSON that
// does not carry both intent and event is an invalid response.
func ParseReply(raw string) (ParsedReply, error) {
	text := strings.TrimSpace(raw)
	body := stripCodeFence(text)

	if strings.HasPrefix(body, "{") || strings.HasPrefix(body, "[") {
		payload, ok := decodeLenient(body)
		if !ok {
			return ParsedReply{}, invalidResponse(raw)
		}
		return intentFromPayload(payload, raw)
	}

	// Prose that embeds an intent object, e.g. "Sure! {...}".
	if start, end := strings.Index(body, "{"), strings.LastIndex(body, "}"); start >= 0 && end > start {
		if payload, ok := decodeLenient(body[start : end+1]); ok {
			if obj, isObj := payload.(map[string]interface{}); isObj {
				if _, hasIntent := obj["intent"]; hasIntent {
					return intentFromPayload(payload, raw)
				}
			}
		}
	}

	return ParsedReply{Kind: ReplyText, Text: text}, nil
}

// DecodeIntent parses a client supplied JSON intent. ok is false when text is
// not JSON at all.
func DecodeIntent(text string) (models.Intent, bool, error) {
	trimmed := strings.TrimSpace(text)
	var payload interface{}
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return models.Intent{}, false, nil
	}
	parsed, err := intentFromPayload(payload, text)
	if err != nil {
		return models.Intent{}, true, err
	}
	return parsed.Intent, true, nil
}

func intentFromPayload(payload interface{}, raw string) (ParsedReply, error) {
	obj, ok := payload.(map[string]interface{})
	if !ok {
		return ParsedReply{}, invalidResponse(payload)
	}
	tag, hasIntent := obj["intent"].(string)
	event, hasEvent := obj["event"].(map[string]interface{})
	if !hasIntent || !hasEvent {
		return ParsedReply{}, invalidResponse(payload)
	}

	encoded, err := json.Marshal(event)
	if err != nil {
		return ParsedReply{}, invalidResponse(payload)
	}
	var descriptor models.EventDescriptor
	if err := json.Unmarshal(encoded, &descriptor); err != nil {
		return ParsedReply{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event: "+err.Error())
	}
	return ParsedReply{Kind: ReplyIntent, Intent: models.Intent{Intent: strings.TrimSpace(tag), Event: &descriptor}}, nil
}

// decodeLenient parses JSON, repairing common model mistakes such as
// trailing commas or single quotes.
func decodeLenient(s string) (interface{}, bool) {
	var payload interface{}
	if !decodeLenientInto(s, &payload) {
		return nil, false
	}
	return payload, true
}

// decodeLenientInto unmarshals s into dest, repairing malformed JSON once.
func decodeLenientInto(s string, dest interface{}) bool {
	if err := json.Unmarshal([]byte(s), dest); err == nil {
		return true
	}
	repaired, err := jsonrepair.JSONRepair(s)
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(repaired), dest) == nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.Index(s, "\n"); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func invalidResponse(data interface{}) *appErrors.Error {
	err := appErrors.Clone(appErrors.ErrInvalidResponse, "Invalid response format")
	err.Details = data
	return err
}
