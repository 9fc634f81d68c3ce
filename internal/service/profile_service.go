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

type profileRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
	Create(ctx context.Context, profile *models.UserProfile) error
	Update(ctx context.Context, profile *models.UserProfile) error
}

// ProfileService manages the personal profile used for recommendations.
type ProfileService struct {
	repo      profileRepository
	geo       *GeoService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfileService constructs a ProfileService.
func NewProfileService(repo profileRepository, geoSvc *GeoService, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProfileService{repo: repo, geo: geoSvc, validator: validate, logger: logger}
}

// Get returns the caller's profile.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return profile, nil
}

// Create stores the caller's profile. A user has at most one.
func (s *ProfileService) Create(ctx context.Context, userID string, req models.CreateProfileRequest) (*models.UserProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	if _, err := s.repo.FindByUserID(ctx, userID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "profile already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	profile := &models.UserProfile{
		UserID:      userID,
		Name:        req.Name,
		Surname:     req.Surname,
		Age:         req.Age,
		Sex:         req.Sex,
		Description: req.Description,
		Hometown:    req.Hometown,
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create profile")
	}
	return profile, nil
}

// Update patches the caller's profile.
func (s *ProfileService) Update(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.UserProfile, error) {
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		profile.Name = *req.Name
	}
	if req.Surname != nil {
		profile.Surname = *req.Surname
	}
	if req.Age != nil {
		profile.Age = *req.Age
	}
	if req.Sex != nil {
		profile.Sex = *req.Sex
	}
	if req.Description != nil {
		profile.Description = req.Description
	}
	if req.Hometown != nil {
		profile.Hometown = *req.Hometown
	}
	if err := s.repo.Update(ctx, profile); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	return profile, nil
}

// WithWeather returns the profile summary and the current weather in the
// hometown. Lookup failures are reported in place of the weather.
func (s *ProfileService) WithWeather(ctx context.Context, userID string) (*models.ProfileWithWeather, error) {
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &models.ProfileWithWeather{
		Age:         profile.Age,
		Sex:         profile.Sex,
		Description: profile.Description,
		Hometown:    profile.Hometown,
	}

	coords, err := s.geo.LocateCity(ctx, profile.Hometown)
	if err != nil {
		out.Weather = map[string]string{"error": err.Error()}
		return out, nil
	}
	report, err := s.geo.CurrentWeatherAt(ctx, coords)
	if err != nil {
		out.Weather = map[string]string{"error": err.Error()}
		return out, nil
	}
	out.Weather = report.CurrentWeather
	return out, nil
}
