package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
)

type reminderRepository interface {
	Create(ctx context.Context, reminder *models.Reminder) error
	FindByID(ctx context.Context, id string) (*models.Reminder, error)
	ListByUser(ctx context.Context, userID string) ([]models.Reminder, error)
	Update(ctx context.Context, reminder *models.Reminder) error
	Delete(ctx context.Context, id string) error
}

type eventFinder interface {
	FindByID(ctx context.Context, id string) (*models.Event, error)
}

// ReminderService manages reminders on the caller's events.
type ReminderService struct {
	repo      reminderRepository
	events    eventFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReminderService constructs a ReminderService.
func NewReminderService(repo reminderRepository, events eventFinder, validate *validator.Validate, logger *zap.Logger) *ReminderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ReminderService{repo: repo, events: events, validator: validate, logger: logger}
}

// List returns the caller's reminders.
func (s *ReminderService) List(ctx context.Context, userID string) ([]models.Reminder, error) {
	reminders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reminders")
	}
	return reminders, nil
}

// Get returns one reminder owned by the caller.
func (s *ReminderService) Get(ctx context.Context, userID, id string) (*models.Reminder, error) {
	reminder, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reminder not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reminder")
	}
	if reminder.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "reminder not found")
	}
	return reminder, nil
}

// Create schedules a reminder for one of the caller's events.
func (s *ReminderService) Create(ctx context.Context, userID string, req models.CreateReminderRequest) (*models.Reminder, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reminder payload")
	}
	if err := s.ensureEventOwned(ctx, userID, req.EventID); err != nil {
		return nil, err
	}
	reminder := &models.Reminder{
		EventID:  req.EventID,
		UserID:   userID,
		RemindAt: req.RemindAt.UTC(),
		Method:   req.Method,
	}
	if err := s.repo.Create(ctx, reminder); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create reminder")
	}
	s.logger.Info("reminder scheduled", zap.String("reminder_id", reminder.ID), zap.String("event_id", reminder.EventID), zap.Time("remind_at", reminder.RemindAt))
	return reminder, nil
}

// Update reschedules a reminder. A rescheduled reminder is delivered again.
func (s *ReminderService) Update(ctx context.Context, userID, id string, req models.UpdateReminderRequest) (*models.Reminder, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reminder payload")
	}
	reminder, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if req.RemindAt != nil {
		reminder.RemindAt = req.RemindAt.UTC()
		reminder.SentAt = nil
		reminder.FailedAt = nil
	}
	if req.Method != nil {
		reminder.Method = *req.Method
	}
	if err := s.repo.Update(ctx, reminder); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update reminder")
	}
	return reminder, nil
}

// Delete removes a reminder owned by the caller.
func (s *ReminderService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "reminder not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete reminder")
	}
	return nil
}

func (s *ReminderService) ensureEventOwned(ctx context.Context, userID, eventID string) error {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	if event.UserID != userID {
		return appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	return nil
}
