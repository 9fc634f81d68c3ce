package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	"github.com/noah-isme/ego-calendar-api/pkg/geo"
)

// Coordinates reported for the default timezone.
const (
	defaultTZLatitude  = 55.75
	defaultTZLongitude = 37.61
)

type geoClient interface {
	Forward(ctx context.Context, city string) (*models.GeocodeResult, error)
	Reverse(ctx context.Context, lat, lon string) (*models.ReverseGeocodeResult, error)
	CurrentWeather(ctx context.Context, coords geo.Coordinates) (*models.WeatherReport, error)
	Forecast(ctx context.Context, coords geo.Coordinates, date string) (*models.WeatherReport, error)
	Summary(ctx context.Context, coords geo.Coordinates) (*models.WeatherSummary, error)
	Timezone(ctx context.Context, coords geo.Coordinates) (*models.TimezoneInfo, error)
	NearbyPlaces(ctx context.Context, coords geo.Coordinates, placeType string, radius int) ([]models.Place, error)
}

// GeoService fronts the geocoding, weather and places providers with the
// shared cache.
type GeoService struct {
	client    geoClient
	cache     *CacheService
	ttl       time.Duration
	defaultTZ *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

// NewGeoService constructs a GeoService. cache may be nil.
func NewGeoService(client geoClient, cache *CacheService, ttl time.Duration, defaultTZ *time.Location, logger *zap.Logger) *GeoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultTZ == nil {
		defaultTZ = time.UTC
	}
	return &GeoService{client: client, cache: cache, ttl: ttl, defaultTZ: defaultTZ, logger: logger, now: time.Now}
}

func cacheKey(parts ...string) string {
	return "geo:" + strings.ToLower(strings.Join(parts, ":"))
}

// Forward geocodes a city name.
func (s *GeoService) Forward(ctx context.Context, city string) (*models.GeocodeResult, error) {
	city = strings.TrimSpace(city)
	res, _, err := Remember(ctx, s.cache, cacheKey("forward", city), s.ttl, func(ctx context.Context) (*models.GeocodeResult, error) {
		return s.client.Forward(ctx, city)
	})
	return res, err
}

// Reverse resolves the place at a coordinate.
func (s *GeoService) Reverse(ctx context.Context, lat, lon string) (*models.ReverseGeocodeResult, error) {
	coords, err := geo.ParseLocation(lat + "," + lon)
	if err != nil {
		return nil, err
	}
	res, _, err := Remember(ctx, s.cache, cacheKey("reverse", coords.String()), s.ttl, func(ctx context.Context) (*models.ReverseGeocodeResult, error) {
		return s.client.Reverse(ctx, coords.Lat, coords.Lon)
	})
	return res, err
}

// LocateCity returns the coordinates of a city.
func (s *GeoService) LocateCity(ctx context.Context, city string) (geo.Coordinates, error) {
	res, err := s.Forward(ctx, city)
	if err != nil {
		return geo.Coordinates{}, err
	}
	return geo.ParseLocation(res.Lat + "," + res.Lon)
}

// CurrentWeather returns current conditions for a "lat,lon" location.
func (s *GeoService) CurrentWeather(ctx context.Context, location string) (*models.WeatherReport, error) {
	coords, err := geo.ParseLocation(location)
	if err != nil {
		return nil, err
	}
	return s.CurrentWeatherAt(ctx, coords)
}

// CurrentWeatherAt is CurrentWeather for parsed coordinates.
func (s *GeoService) CurrentWeatherAt(ctx context.Context, coords geo.Coordinates) (*models.WeatherReport, error) {
	res, _, err := Remember(ctx, s.cache, cacheKey("weather", coords.String()), s.weatherTTL(), func(ctx context.Context) (*models.WeatherReport, error) {
		return s.client.CurrentWeather(ctx, coords)
	})
	return res, err
}

// Forecast returns the hourly forecast, optionally for a single date.
func (s *GeoService) Forecast(ctx context.Context, location, date string) (*models.WeatherReport, error) {
	coords, err := geo.ParseLocation(location)
	if err != nil {
		return nil, err
	}
	date = strings.TrimSpace(date)
	res, _, err := Remember(ctx, s.cache, cacheKey("forecast", coords.String(), date), s.weatherTTL(), func(ctx context.Context) (*models.WeatherReport, error) {
		return s.client.Forecast(ctx, coords, date)
	})
	return res, err
}

// Summary returns current weather plus the next hours.
func (s *GeoService) Summary(ctx context.Context, location string) (*models.WeatherSummary, error) {
	coords, err := geo.ParseLocation(location)
	if err != nil {
		return nil, err
	}
	return s.client.Summary(ctx, coords)
}

// Timezone resolves the timezone of location. Blank, "UTC" or unresolvable
// locations fall back to the configured default zone.
func (s *GeoService) Timezone(ctx context.Context, location string) *models.TimezoneInfo {
	trimmed := strings.TrimSpace(location)
	if trimmed == "" || strings.EqualFold(trimmed, "UTC") {
		return s.DefaultTimezone()
	}
	coords, err := geo.ParseLocation(trimmed)
	if err != nil {
		return s.DefaultTimezone()
	}
	info, err := s.TimezoneAt(ctx, coords)
	if err != nil {
		s.logger.Warn("timezone lookup failed, using default", zap.String("location", trimmed), zap.Error(err))
		return s.DefaultTimezone()
	}
	return info
}

// TimezoneAt looks up the timezone of a coordinate without falling back.
func (s *GeoService) TimezoneAt(ctx context.Context, coords geo.Coordinates) (*models.TimezoneInfo, error) {
	info, _, err := Remember(ctx, s.cache, cacheKey("timezone", coords.String()), s.ttl, func(ctx context.Context) (*models.TimezoneInfo, error) {
		return s.client.Timezone(ctx, coords)
	})
	return info, err
}

// DefaultTimezone describes the configured default zone.
func (s *GeoService) DefaultTimezone() *models.TimezoneInfo {
	abbr, offset := s.now().In(s.defaultTZ).Zone()
	return &models.TimezoneInfo{
		Latitude:             defaultTZLatitude,
		Longitude:            defaultTZLongitude,
		Timezone:             s.defaultTZ.String(),
		UTCOffsetSeconds:     offset,
		TimezoneAbbreviation: abbr,
	}
}

// NearbyPlaces lists places of placeType around a coordinate.
func (s *GeoService) NearbyPlaces(ctx context.Context, lat, lon, placeType string, radius int) ([]models.Place, error) {
	coords, err := geo.ParseLocation(lat + "," + lon)
	if err != nil {
		return nil, err
	}
	return s.NearbyPlacesAt(ctx, coords, placeType, radius)
}

// NearbyPlacesAt is NearbyPlaces for parsed coordinates.
func (s *GeoService) NearbyPlacesAt(ctx context.Context, coords geo.Coordinates, placeType string, radius int) ([]models.Place, error) {
	key := cacheKey("places", coords.String(), placeType, fmt.Sprint(radius))
	res, _, err := Remember(ctx, s.cache, key, s.ttl, func(ctx context.Context) ([]models.Place, error) {
		return s.client.NearbyPlaces(ctx, coords, placeType, radius)
	})
	return res, err
}

func (s *GeoService) weatherTTL() time.Duration {
	if s.ttl <= 0 || s.ttl > 10*time.Minute {
		return 10 * time.Minute
	}
	return s.ttl
}
