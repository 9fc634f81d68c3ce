package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
)

// DefaultLanguage applies until the user picks one.
const DefaultLanguage = "en"

type settingsRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.UserSettings, error)
	Upsert(ctx context.Context, settings *models.UserSettings) error
}

// SettingsService stores per-user locale preferences.
type SettingsService struct {
	repo            settingsRepository
	defaultTimezone string
	validator       *validator.Validate
	logger          *zap.Logger
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(repo settingsRepository, defaultTimezone string, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SettingsService{repo: repo, defaultTimezone: defaultTimezone, validator: validate, logger: logger}
}

// Get returns stored settings, or defaults when none are stored yet.
func (s *SettingsService) Get(ctx context.Context, userID string) (*models.UserSettings, error) {
	settings, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.UserSettings{UserID: userID, Timezone: s.defaultTimezone, Language: DefaultLanguage}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	return settings, nil
}

// Upsert creates or patches the caller's settings.
func (s *SettingsService) Upsert(ctx context.Context, userID string, req models.UpsertSettingsRequest) (*models.UserSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid settings payload")
	}
	if req.Timezone != nil {
		tz := strings.TrimSpace(*req.Timezone)
		if _, err := time.LoadLocation(tz); tz == "" || err != nil {
			return nil, appErrors.Validation("unknown timezone: " + tz)
		}
		req.Timezone = &tz
	}

	settings, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Timezone != nil {
		settings.Timezone = *req.Timezone
	}
	if req.Language != nil {
		settings.Language = strings.TrimSpace(*req.Language)
	}
	if err := s.repo.Upsert(ctx, settings); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save settings")
	}
	return settings, nil
}
