package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
)

type eventRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Event, error)
	ListByRange(ctx context.Context, userID string, start, end time.Time) ([]models.Event, error)
	FindByID(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
}

// EventService implements calendar event use cases scoped to the owning user.
type EventService struct {
	repo      eventRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEventService constructs an EventService.
func NewEventService(repo eventRepository, validate *validator.Validate, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EventService{repo: repo, validator: validate, logger: logger}
}

// List returns all of the user's events.
func (s *EventService) List(ctx context.Context, userID string) ([]models.Event, error) {
	events, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	return events, nil
}

// ListByRange returns the user's events overlapping the requested window.
func (s *EventService) ListByRange(ctx context.Context, userID string, req models.EventRangeRequest) ([]models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time range")
	}
	if req.EndTime.Before(req.StartTime) {
		return nil, appErrors.Validation("end_time must not be before start_time")
	}
	events, err := s.repo.ListByRange(ctx, userID, req.StartTime, req.EndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	return events, nil
}

// Get returns one of the user's events.
func (s *EventService) Get(ctx context.Context, userID, id string) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	if event.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	return event, nil
}

// Create validates and stores a new event.
func (s *EventService) Create(ctx context.Context, userID string, req models.CreateEventRequest) (*models.Event, error) {
	event, err := createEvent(ctx, s.repo, s.validator, userID, req)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("event created", zap.String("event_id", event.ID), zap.String("user_id", userID))
	return event, nil
}

type eventCreator interface {
	Create(ctx context.Context, event *models.Event) error
}

// createEvent is the single write path for new events. Validator and store
// failures both surface as validation errors carrying the cause.
func createEvent(ctx context.Context, store eventCreator, validate *validator.Validate, userID string, req models.CreateEventRequest) (*models.Event, error) {
	if err := validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if req.EndTime.Before(req.StartTime) {
		return nil, appErrors.Validation("end_time must not be before start_time")
	}
	event := &models.Event{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		AllDay:      req.AllDay,
		Location:    req.Location,
		Type:        req.Type,
	}
	if err := store.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	return event, nil
}

// Update applies a partial update to one of the user's events.
func (s *EventService) Update(ctx context.Context, userID, id string, req models.UpdateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	event, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	ApplyEventUpdate(event, req)
	if event.EndTime.Before(event.StartTime) {
		return nil, appErrors.Validation("end_time must not be before start_time")
	}
	if err := s.repo.Update(ctx, event); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	return event, nil
}

// Delete removes one of the user's events.
func (s *EventService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	return nil
}

// ApplyEventUpdate copies the non-nil fields of req onto event. When only the
// start moves, the end moves with it so the duration is kept.
func ApplyEventUpdate(event *models.Event, req models.UpdateEventRequest) {
	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = req.Description
	}
	if req.StartTime != nil {
		if req.EndTime == nil && !event.EndTime.IsZero() {
			event.EndTime = req.StartTime.Add(event.EndTime.Sub(event.StartTime))
		}
		event.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		event.EndTime = *req.EndTime
	}
	if req.AllDay != nil {
		event.AllDay = *req.AllDay
	}
	if req.Location != nil {
		event.Location = req.Location
	}
	if req.Type != nil {
		event.Type = *req.Type
	}
}
