package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	"github.com/noah-isme/ego-calendar-api/internal/prompt"
	"github.com/noah-isme/ego-calendar-api/pkg/llm"
)

// RescheduleService asks the model for a rebalanced calendar. It never writes
// to the event store.
type RescheduleService struct {
	client chatClient
	chat   *ChatService
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

// NewRescheduleService constructs a RescheduleService.
func NewRescheduleService(client chatClient, chat *ChatService, loc *time.Location, logger *zap.Logger) *RescheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &RescheduleService{client: client, chat: chat, loc: loc, logger: logger, now: time.Now}
}

// Reschedule proposes a new arrangement of the supplied calendar, or of the
// user's stored events when none is supplied.
func (s *RescheduleService) Reschedule(ctx context.Context, userID string, req models.RescheduleRequest) (*models.RescheduleResponse, error) {
	calendar := req.Calendar
	if len(calendar) == 0 {
		stored, err := s.chat.Calendar(ctx, userID)
		if err != nil {
			return nil, err
		}
		calendar = stored
	}

	reply, err := s.client.Chat(ctx, []llm.Message{
		prompt.Reschedule(s.now().In(s.loc), calendar),
		{Role: models.RoleUser, Content: prompt.RescheduleRequest},
	})
	if err != nil {
		return nil, err
	}

	res := ParseReschedule(reply)
	if res.NewCalendar == nil {
		s.logger.Debug("reschedule reply carried no calendar", zap.String("user_id", userID))
	}
	return res, nil
}

// ParseReschedule splits a reply into its first-line summary and the JSON
// calendar that follows. Items may be wrapped in {"event": ...} or bare.
func ParseReschedule(reply string) *models.RescheduleResponse {
	reply = strings.TrimSpace(reply)
	res := &models.RescheduleResponse{Suggestion: reply}
	if nl := strings.Index(reply, "\n"); nl >= 0 {
		res.Suggestion = strings.TrimSpace(reply[:nl])
	}

	match := jsonArrayPattern.FindString(reply)
	if match == "" {
		return res
	}
	var raw []map[string]interface{}
	if !decodeLenientInto(match, &raw) || len(raw) == 0 {
		return res
	}

	wrapped := true
	if _, ok := raw[0]["event"]; !ok {
		wrapped = false
	}
	items := make([]models.RescheduleItem, 0, len(raw))
	for _, item := range raw {
		body := item
		if wrapped {
			inner, ok := item["event"].(map[string]interface{})
			if !ok {
				continue
			}
			body = inner
		}
		items = append(items, models.RescheduleItem{Event: entryFromMap(body)})
	}
	res.NewCalendar = items
	return res
}

func entryFromMap(m map[string]interface{}) models.CalendarEntry {
	str := func(key string) string {
		if v, ok := m[key].(string); ok {
			return v
		}
		return ""
	}
	return models.CalendarEntry{
		Summary:  str("summary"),
		Start:    str("start"),
		End:      str("end"),
		Location: str("location"),
	}
}
