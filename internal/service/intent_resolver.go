package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
	"github.com/noah-isme/ego-calendar-api/pkg/timeutil"
	"github.com/noah-isme/ego-calendar-api/pkg/tracing"
)

// DefaultEventDuration is applied when an added event has no end.
const DefaultEventDuration = time.Hour

const untitledEvent = "Untitled event"

type intentEventStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
}

// IntentResolverConfig tunes normalisation.
type IntentResolverConfig struct {
	Location    *time.Location
	DefaultType string
}

// IntentResolver turns a calendar intent into exactly one store mutation or a
// typed outcome.
type IntentResolver struct {
	store       intentEventStore
	validator   *validator.Validate
	logger      *zap.Logger
	metrics     *MetricsService
	loc         *time.Location
	defaultType string
}

// NewIntentResolver constructs an IntentResolver.
func NewIntentResolver(store intentEventStore, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, cfg IntentResolverConfig) *IntentResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.Location == nil {
		cfg.Location = timeutil.ResolveLocation("")
	}
	if cfg.DefaultType == "" {
		cfg.DefaultType = models.EventTypeOtherWork
	}
	return &IntentResolver{
		store:       store,
		validator:   validate,
		logger:      logger,
		metrics:     metrics,
		loc:         cfg.Location,
		defaultType: cfg.DefaultType,
	}
}

// Resolve dispatches intent to add, delete or update.
func (r *IntentResolver) Resolve(ctx context.Context, userID string, intent models.Intent) (result *models.InterpretResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "intent.resolve", attribute.String(tracing.AttrIntent, intent.Intent))
	defer func() {
		outcome := "error"
		if result != nil {
			outcome = result.Status
		} else if appErr := appErrors.FromError(err); appErr != nil {
			outcome = strings.ToLower(appErr.Code)
		}
		span.SetAttributes(attribute.String(tracing.AttrOutcome, outcome))
		tracing.End(span, err)
		r.metrics.RecordIntentOutcome(intent.Intent, outcome)
	}()

	if intent.Event == nil {
		invalid := appErrors.Clone(appErrors.ErrInvalidResponse, "Invalid response format")
		invalid.Details = intent
		return nil, invalid
	}

	switch intent.Intent {
	case models.IntentAdd:
		return r.Add(ctx, userID, intent.Event)
	case models.IntentDelete:
		return r.Delete(ctx, userID, intent.Event)
	case models.IntentUpdate:
		return r.Update(ctx, userID, intent.Event)
	default:
		return nil, appErrors.Clone(appErrors.ErrUnknownIntent, "Unknown intent: "+intent.Intent)
	}
}

// Add creates an event. Only start_time is required.
func (r *IntentResolver) Add(ctx context.Context, userID string, d *models.EventDescriptor) (*models.InterpretResult, error) {
	start, err := r.normaliseStart(d)
	if err != nil {
		return nil, err
	}
	end := start.Add(DefaultEventDuration)
	if d.EndTime != nil {
		parsed, err := timeutil.Parse(*d.EndTime, r.loc)
		if err != nil {
			return nil, appErrors.Validation("Invalid end_time format")
		}
		end = parsed
	}

	title := d.TitleValue()
	if title == "" {
		title = untitledEvent
	}
	eventType := r.defaultType
	if d.Type != nil && strings.TrimSpace(*d.Type) != "" {
		eventType = strings.TrimSpace(*d.Type)
	}
	req := models.CreateEventRequest{
		Title:       title,
		Description: d.Description,
		StartTime:   start,
		EndTime:     end,
		Location:    d.Location,
		Type:        eventType,
	}
	if d.AllDay != nil {
		req.AllDay = bool(*d.AllDay)
	}

	began := time.Now()
	event, err := createEvent(ctx, r.store, r.validator, userID, req)
	r.metrics.ObserveDBQuery("event_create", time.Since(began))
	if err != nil {
		return nil, err
	}
	r.logger.Info("intent event added", zap.String("user_id", userID), zap.String("event_id", event.ID))
	return &models.InterpretResult{Status: models.StatusAdded, Event: event}, nil
}

// Delete removes the single event the descriptor identifies.
func (r *IntentResolver) Delete(ctx context.Context, userID string, d *models.EventDescriptor) (*models.InterpretResult, error) {
	match, err := r.Match(ctx, userID, d)
	if err != nil {
		return nil, err
	}
	if res, err := r.terminal(match); res != nil || err != nil {
		return res, err
	}
	began := time.Now()
	err = r.store.Delete(ctx, match.Event.ID)
	r.metrics.ObserveDBQuery("event_delete", time.Since(began))
	if errors.Is(err, sql.ErrNoRows) {
		return &models.InterpretResult{Status: models.StatusNotFound}, nil
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	r.logger.Info("intent event deleted", zap.String("user_id", userID), zap.String("event_id", match.Event.ID), zap.String("note", match.Note))
	return &models.InterpretResult{Status: models.StatusDeleted, Event: match.Event, Message: match.Note}, nil
}

// Update applies the descriptor's fields to the single event it identifies.
func (r *IntentResolver) Update(ctx context.Context, userID string, d *models.EventDescriptor) (*models.InterpretResult, error) {
	match, err := r.Match(ctx, userID, d)
	if err != nil {
		return nil, err
	}
	if res, err := r.terminal(match); res != nil || err != nil {
		return res, err
	}

	patch, err := r.patchFromDescriptor(d)
	if err != nil {
		return nil, err
	}
	if err := r.validator.Struct(patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	event := match.Event
	ApplyEventUpdate(event, patch)
	if event.EndTime.Before(event.StartTime) {
		return nil, appErrors.Validation("end_time must not be before start_time")
	}
	began := time.Now()
	err = r.store.Update(ctx, event)
	r.metrics.ObserveDBQuery("event_update", time.Since(began))
	if errors.Is(err, sql.ErrNoRows) {
		return &models.InterpretResult{Status: models.StatusNotFound}, nil
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	r.logger.Info("intent event changed", zap.String("user_id", userID), zap.String("event_id", event.ID), zap.String("note", match.Note))
	return &models.InterpretResult{Status: models.StatusChanged, Event: event, Message: match.Note}, nil
}

// Match validates the descriptor and runs the cascade over the user's events.
func (r *IntentResolver) Match(ctx context.Context, userID string, d *models.EventDescriptor) (MatchResult, error) {
	start, err := r.normaliseStart(d)
	if err != nil {
		return MatchResult{}, err
	}
	began := time.Now()
	candidates, err := r.store.ListByUser(ctx, userID)
	r.metrics.ObserveDBQuery("events_by_user", time.Since(began))
	if err != nil {
		return MatchResult{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load events")
	}
	return RunCascade(MatchQuery{Title: d.TitleValue(), Start: start}, candidates), nil
}

// terminal converts non-matching outcomes into their results.
func (r *IntentResolver) terminal(match MatchResult) (*models.InterpretResult, error) {
	switch match.Outcome {
	case OutcomeMatched:
		return nil, nil
	case OutcomeAmbiguous:
		return nil, appErrors.Ambiguous(match.Message, match.Count)
	default:
		return &models.InterpretResult{Status: models.StatusNotFound}, nil
	}
}

func (r *IntentResolver) normaliseStart(d *models.EventDescriptor) (time.Time, error) {
	if d == nil || d.StartTime == nil {
		return time.Time{}, appErrors.Validation("Missing required field: start_time")
	}
	start, err := timeutil.Parse(*d.StartTime, r.loc)
	if err != nil {
		return time.Time{}, appErrors.Validation("Invalid start_time format")
	}
	return start, nil
}

func (r *IntentResolver) patchFromDescriptor(d *models.EventDescriptor) (models.UpdateEventRequest, error) {
	var patch models.UpdateEventRequest
	if title := d.TitleValue(); title != "" {
		patch.Title = &title
	}
	patch.Description = d.Description
	patch.Location = d.Location
	if d.Type != nil && strings.TrimSpace(*d.Type) != "" {
		t := strings.TrimSpace(*d.Type)
		patch.Type = &t
	}
	if d.AllDay != nil {
		v := bool(*d.AllDay)
		patch.AllDay = &v
	}
	start, err := r.normaliseStart(d)
	if err != nil {
		return patch, err
	}
	patch.StartTime = &start
	if d.EndTime != nil {
		end, err := timeutil.Parse(*d.EndTime, r.loc)
		if err != nil {
			return patch, appErrors.Validation("Invalid end_time format")
		}
		patch.EndTime = &end
	}
	return patch, nil
}
