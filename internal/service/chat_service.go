package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	"github.com/noah-isme/ego-calendar-api/internal/prompt"
	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
	"github.com/noah-isme/ego-calendar-api/pkg/llm"
)

type chatHistoryRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.ChatMessage, error)
	Append(ctx context.Context, messages ...*models.ChatMessage) error
	DeleteByUser(ctx context.Context, userID string) error
}

type eventLister interface {
	ListByUser(ctx context.Context, userID string) ([]models.Event, error)
}

// ChatService runs calendar-aware conversations with the language model.
type ChatService struct {
	client     chatClient
	compressor *HistoryCompressor
	history    chatHistoryRepository
	events     eventLister
	loc        *time.Location
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewChatService constructs a ChatService.
func NewChatService(client chatClient, compressor *HistoryCompressor, history chatHistoryRepository, events eventLister, loc *time.Location, validate *validator.Validate, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ChatService{client: client, compressor: compressor, history: history, events: events, loc: loc, validator: validate, logger: logger, now: time.Now}
}

// Chat answers one user message. Without client supplied history the stored
// history is used; the exchange is appended to the stored history.
func (s *ChatService) Chat(ctx context.Context, userID string, req models.ChatRequest) (*models.ChatResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "message is required")
	}

	calendar, err := s.Calendar(ctx, userID)
	if err != nil {
		return nil, err
	}

	history := req.History
	if history == nil {
		history, err = s.history.ListByUser(ctx, userID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load chat history")
		}
	}
	compressed, wasCompressed, err := s.compressor.Compress(ctx, history)
	if err != nil {
		return nil, err
	}

	messages := make([]llm.Message, 0, len(compressed)+2)
	messages = append(messages, prompt.System(s.today(), calendar, ""))
	messages = append(messages, compressed...)
	messages = append(messages, llm.Message{Role: models.RoleUser, Content: req.Message})

	reply, err := s.client.Chat(ctx, messages)
	if err != nil {
		return nil, err
	}

	if err := s.history.Append(ctx,
		&models.ChatMessage{UserID: userID, Role: models.RoleUser, Content: req.Message},
		&models.ChatMessage{UserID: userID, Role: models.RoleAssistant, Content: reply},
	); err != nil {
		s.logger.Warn("failed to store chat exchange", zap.String("user_id", userID), zap.Error(err))
	}

	return &models.ChatResponse{Response: reply, Compressed: wasCompressed}, nil
}

// Ask sends a single message against the user's calendar without history.
func (s *ChatService) Ask(ctx context.Context, calendar []models.CalendarEntry, timezone, message string) (string, error) {
	messages := []llm.Message{
		prompt.System(s.today(), calendar, timezone),
		{Role: models.RoleUser, Content: message},
	}
	return s.client.Chat(ctx, messages)
}

// Calendar returns the user's events in prompt form.
func (s *ChatService) Calendar(ctx context.Context, userID string) ([]models.CalendarEntry, error) {
	events, err := s.events.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load events")
	}
	return prompt.EntriesFromEvents(events, s.loc), nil
}

// Messages returns the stored history.
func (s *ChatService) Messages(ctx context.Context, userID string) ([]models.ChatMessage, error) {
	messages, err := s.history.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load chat history")
	}
	return messages, nil
}

// AddMessage appends one entry to the stored history.
func (s *ChatService) AddMessage(ctx context.Context, userID string, req models.AddMessageRequest) (*models.ChatMessage, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid chat message")
	}
	msg := &models.ChatMessage{UserID: userID, Role: req.Role, Content: req.Content}
	if err := s.history.Append(ctx, msg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store chat message")
	}
	return msg, nil
}

// ClearMessages deletes the stored history.
func (s *ChatService) ClearMessages(ctx context.Context, userID string) error {
	if err := s.history.DeleteByUser(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear chat history")
	}
	return nil
}

func (s *ChatService) today() time.Time {
	return s.now().In(s.loc)
}
