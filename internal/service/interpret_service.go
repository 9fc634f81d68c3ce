package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
)

type interactionRecorder interface {
	Create(ctx context.Context, interaction *models.AIInteraction) error
}

type profileFinder interface {
	FindByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
}

// InterpretService turns natural-language commands into calendar mutations.
type InterpretService struct {
	resolver     *IntentResolver
	chat         *ChatService
	geo          *GeoService
	profiles     profileFinder
	interactions interactionRecorder
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewInterpretService constructs an InterpretService.
func NewInterpretService(resolver *IntentResolver, chat *ChatService, geo *GeoService, profiles profileFinder, interactions interactionRecorder, validate *validator.Validate, logger *zap.Logger) *InterpretService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &InterpretService{resolver: resolver, chat: chat, geo: geo, profiles: profiles, interactions: interactions, validator: validate, logger: logger}
}

// Interpret handles one command. JSON intents are resolved directly; anything
// else goes through the language model first.
func (s *InterpretService) Interpret(ctx context.Context, userID string, req models.InterpretRequest) (result *models.InterpretResult, err error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "text is required")
	}

	var intent *models.Intent
	defer func() {
		s.record(ctx, userID, req.Text, intent, result, err)
	}()

	if direct, ok := directDelete(req.Text); ok {
		intent = &direct
		result, err = s.resolver.Resolve(ctx, userID, direct)
		return result, asBadRequest(err)
	}

	decoded, isJSON, decodeErr := DecodeIntent(req.Text)
	if isJSON {
		if decodeErr != nil {
			return nil, asBadRequest(decodeErr)
		}
		intent = &decoded
		result, err = s.resolver.Resolve(ctx, userID, decoded)
		return result, asBadRequest(err)
	}

	calendar, err := s.chat.Calendar(ctx, userID)
	if err != nil {
		return nil, err
	}
	location := s.resolveLocation(ctx, userID, req.Location)
	timezone := s.geo.Timezone(ctx, location)

	reply, err := s.chat.Ask(ctx, calendar, timezone.Timezone, req.Text)
	if err != nil {
		return nil, err
	}

	parsed, err := ParseReply(reply)
	if err != nil {
		if errors.Is(err, appErrors.ErrInvalidResponse) {
			return &models.InterpretResult{Status: models.StatusInvalidResponse, Data: appErrors.FromError(err).Details}, nil
		}
		return nil, asUnprocessable(err)
	}
	if parsed.Kind == ReplyText {
		return &models.InterpretResult{Status: models.StatusReply, Response: parsed.Text}, nil
	}

	intent = &parsed.Intent
	result, err = s.resolver.Resolve(ctx, userID, parsed.Intent)
	if err != nil {
		if errors.Is(err, appErrors.ErrInvalidResponse) {
			return &models.InterpretResult{Status: models.StatusInvalidResponse, Data: appErrors.FromError(err).Details}, nil
		}
		return nil, asUnprocessable(err)
	}
	return result, nil
}

// resolveLocation falls back to the profile hometown when the client sent no
// usable location.
func (s *InterpretService) resolveLocation(ctx context.Context, userID, location string) string {
	location = strings.TrimSpace(location)
	if location != "" && !strings.EqualFold(location, "UTC") {
		return location
	}
	if s.profiles == nil {
		return location
	}
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("failed to load profile for location", zap.String("user_id", userID), zap.Error(err))
		}
		return location
	}
	if strings.TrimSpace(profile.Hometown) == "" {
		return location
	}
	coords, err := s.geo.LocateCity(ctx, profile.Hometown)
	if err != nil {
		s.logger.Warn("failed to geocode hometown", zap.String("hometown", profile.Hometown), zap.Error(err))
		return location
	}
	return coords.String()
}

func (s *InterpretService) record(ctx context.Context, userID, input string, intent *models.Intent, result *models.InterpretResult, resultErr error) {
	if s.interactions == nil {
		return
	}
	entry := &models.AIInteraction{UserID: userID, InputText: input}
	if intent != nil {
		tag := intent.Intent
		entry.Intent = &tag
		if encoded, err := json.Marshal(intent.Event); err == nil {
			entry.Entities = types.JSONText(encoded)
		}
	}
	switch {
	case resultErr != nil:
		entry.ResponseText = resultErr.Error()
	case result != nil:
		if encoded, err := json.Marshal(result); err == nil {
			entry.ResponseText = string(encoded)
		}
	}
	if err := s.interactions.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record interaction", zap.String("user_id", userID), zap.Error(err))
	}
}

// directDelete recognises a JSON payload carrying an event in a text that
// mentions delete, regardless of its intent field.
func directDelete(text string) (models.Intent, bool) {
	if !strings.Contains(strings.ToLower(text), models.IntentDelete) {
		return models.Intent{}, false
	}
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &payload); err != nil {
		return models.Intent{}, false
	}
	if _, ok := payload["event"].(map[string]interface{}); !ok {
		return models.Intent{}, false
	}
	payload["intent"] = models.IntentDelete
	parsed, err := intentFromPayload(payload, text)
	if err != nil {
		return models.Intent{}, false
	}
	return parsed.Intent, true
}

// asBadRequest reports intent failures on client supplied JSON as 400.
// Ambiguity keeps its conflict status.
func asBadRequest(err error) error {
	return withStatus(err, http.StatusBadRequest, appErrors.ErrUnknownIntent, appErrors.ErrInvalidResponse)
}

// asUnprocessable reports failures caused by the model's output as 422.
func asUnprocessable(err error) error {
	return withStatus(err, http.StatusUnprocessableEntity, appErrors.ErrValidation)
}

func withStatus(err error, status int, kinds ...*appErrors.Error) error {
	if err == nil {
		return nil
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			clone := *appErrors.FromError(err)
			clone.Status = status
			return &clone
		}
	}
	return err
}
