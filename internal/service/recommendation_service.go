package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	"github.com/noah-isme/ego-calendar-api/internal/prompt"
	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
	"github.com/noah-isme/ego-calendar-api/pkg/geo"
	"github.com/noah-isme/ego-calendar-api/pkg/llm"
)

const (
	unknownWeather  = "unknown"
	maxPromptPlaces = 15
)

var (
	defaultRecommendRadii = []int{500, 1000, 2000, 5000}
	jsonArrayPattern      = regexp.MustCompile(`(?s)\[.*\]`)
)

// RecommendationConfig tunes the nearby place search.
type RecommendationConfig struct {
	Radii      []int
	Categories []string
}

// RecommendationService suggests places to visit around the user's hometown.
type RecommendationService struct {
	client     chatClient
	geo        *GeoService
	profiles   profileFinder
	radii      []int
	categories []string
	logger     *zap.Logger
	now        func() time.Time
}

// NewRecommendationService constructs a RecommendationService.
func NewRecommendationService(client chatClient, geoSvc *GeoService, profiles profileFinder, cfg RecommendationConfig, logger *zap.Logger) *RecommendationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	radii := cfg.Radii
	if len(radii) == 0 {
		radii = defaultRecommendRadii
	}
	categories := cfg.Categories
	if len(categories) == 0 {
		categories = geo.SupportedPlaceTypes()
	}
	return &RecommendationService{
		client:     client,
		geo:        geoSvc,
		profiles:   profiles,
		radii:      radii,
		categories: categories,
		logger:     logger,
		now:        time.Now,
	}
}

// Recommend gathers weather, local time and nearby places for the user's
// hometown and asks the model for three suggestions.
func (s *RecommendationService) Recommend(ctx context.Context, userID string) (*models.RecommendationResponse, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	coords, err := s.geo.LocateCity(ctx, profile.Hometown)
	if err != nil {
		return nil, err
	}

	rc := models.RecommendationContext{
		Age:      profile.Age,
		Gender:   profile.Sex,
		Hometown: profile.Hometown,
		Weather:  unknownWeather,
	}
	if profile.Description != nil {
		rc.Description = *profile.Description
	}
	rc.Latitude, _ = strconv.ParseFloat(coords.Lat, 64)
	rc.Longitude, _ = strconv.ParseFloat(coords.Lon, 64)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rc.Weather = s.weather(gctx, coords)
		return nil
	})
	g.Go(func() error {
		rc.Timezone, rc.LocalTime = s.localTime(gctx, coords)
		return nil
	})
	g.Go(func() error {
		rc.Places = s.places(gctx, coords)
		return nil
	})
	_ = g.Wait()

	reply, err := s.client.Chat(ctx, []llm.Message{
		prompt.Recommendation(s.now(), rc),
		{Role: models.RoleUser, Content: prompt.RecommendRequest},
	})
	if err != nil {
		return nil, err
	}

	recs, err := ParseRecommendations(reply)
	if err != nil {
		s.logger.Warn("unparseable recommendations", zap.String("user_id", userID), zap.String("reply", reply))
		return nil, err
	}
	return &models.RecommendationResponse{Recommendations: recs, Weather: rc.Weather, Timezone: rc.Timezone}, nil
}

func (s *RecommendationService) weather(ctx context.Context, coords geo.Coordinates) string {
	report, err := s.geo.CurrentWeatherAt(ctx, coords)
	if err != nil || report == nil || report.CurrentWeather == nil {
		if err != nil {
			s.logger.Debug("weather unavailable", zap.Error(err))
		}
		return unknownWeather
	}
	return FormatWeather(report.CurrentWeather)
}

func (s *RecommendationService) localTime(ctx context.Context, coords geo.Coordinates) (string, string) {
	info, err := s.geo.TimezoneAt(ctx, coords)
	if err != nil || info == nil || info.Timezone == "" {
		return "", ""
	}
	loc, err := time.LoadLocation(info.Timezone)
	if err != nil {
		loc = time.FixedZone(info.TimezoneAbbreviation, info.UTCOffsetSeconds)
	}
	return info.Timezone, s.now().In(loc).Format(prompt.TimeLayout)
}

// places widens the search radius until some category yields results.
func (s *RecommendationService) places(ctx context.Context, coords geo.Coordinates) []models.Place {
	for _, radius := range s.radii {
		results := make([][]models.Place, len(s.categories))
		g, gctx := errgroup.WithContext(ctx)
		for i, category := range s.categories {
			i, category := i, category
			g.Go(func() error {
				places, err := s.geo.NearbyPlacesAt(gctx, coords, category, radius)
				if err != nil {
					s.logger.Debug("place lookup failed", zap.String("category", category), zap.Int("radius", radius), zap.Error(err))
					return nil
				}
				results[i] = places
				return nil
			})
		}
		_ = g.Wait()

		var found []models.Place
		for _, places := range results {
			found = append(found, places...)
		}
		if len(found) > 0 {
			if len(found) > maxPromptPlaces {
				found = found[:maxPromptPlaces]
			}
			return found
		}
	}
	return nil
}

// FormatWeather renders current conditions for the prompt.
func FormatWeather(w *models.CurrentWeather) string {
	if w == nil {
		return unknownWeather
	}
	return fmt.Sprintf("%s°C, code %d", strconv.FormatFloat(w.Temperature, 'f', -1, 64), w.WeatherCode)
}

// ParseRecommendations extracts the JSON array from a model reply.
func ParseRecommendations(reply string) ([]models.Recommendation, error) {
	match := jsonArrayPattern.FindString(strings.TrimSpace(reply))
	if match == "" {
		return nil, appErrors.Validation("no valid JSON found")
	}
	var recs []models.Recommendation
	if !decodeLenientInto(match, &recs) {
		return nil, appErrors.Validation("no valid JSON found")
	}
	return recs, nil
}
