package handler

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
	"github.com/noah-isme/ego-calendar-api/pkg/response"
)

type geoService interface {
	Forward(ctx context.Context, city string) (*models.GeocodeResult, error)
	Reverse(ctx context.Context, lat, lon string) (*models.ReverseGeocodeResult, error)
	CurrentWeather(ctx context.Context, location string) (*models.WeatherReport, error)
	Forecast(ctx context.Context, location, date string) (*models.WeatherReport, error)
	Summary(ctx context.Context, location string) (*models.WeatherSummary, error)
	Timezone(ctx context.Context, location string) *models.TimezoneInfo
	NearbyPlaces(ctx context.Context, lat, lon, placeType string, radius int) ([]models.Place, error)
}

// GeoHandler proxies geocoding, weather and place lookups.
type GeoHandler struct {
	service geoService
}

// NewGeoHandler constructs a GeoHandler.
func NewGeoHandler(svc geoService) *GeoHandler {
	return &GeoHandler{service: svc}
}

// cleanQuery strips whitespace and quotes clients sometimes wrap values in.
func cleanQuery(c *gin.Context, key string) string {
	return strings.Trim(strings.TrimSpace(c.Query(key)), `"'`)
}

// Forward godoc
// @Summary Geocode a city
// @Tags Geo
// @Produce json
// @Param city query string true "City"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /geo/forward [get]
func (h *GeoHandler) Forward(c *gin.Context) {
	city := cleanQuery(c, "city")
	if city == "" {
		response.Error(c, appErrors.Validation("city is required"))
		return
	}
	res, err := h.service.Forward(c.Request.Context(), city)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, res)
}

// Geocode godoc
// @Summary Coordinates of a city
// @Tags Calendar
// @Produce json
// @Param city query string true "City"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /calendar/geocode [get]
func (h *GeoHandler) Geocode(c *gin.Context) {
	city := cleanQuery(c, "city")
	if city == "" {
		response.Error(c, appErrors.Validation("city is required"))
		return
	}
	res, err := h.service.Forward(c.Request.Context(), city)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, gin.H{"lat": res.Lat, "lon": res.Lon})
}

// Reverse godoc
// @Summary Reverse geocode a coordinate
// @Tags Geo
// @Produce json
// @Param lat query string true "Latitude"
// @Param lon query string true "Longitude"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /geo/reverse [get]
func (h *GeoHandler) Reverse(c *gin.Context) {
	res, err := h.service.Reverse(c.Request.Context(), cleanQuery(c, "lat"), cleanQuery(c, "lon"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, res)
}

// CurrentWeather godoc
// @Summary Current weather
// @Tags Weather
// @Produce json
// @Param location query string true "lat,lon"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /weather/current [get]
func (h *GeoHandler) CurrentWeather(c *gin.Context) {
	res, err := h.service.CurrentWeather(c.Request.Context(), cleanQuery(c, "location"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, res)
}

// Forecast godoc
// @Summary Hourly forecast
// @Tags Weather
// @Produce json
// @Param location query string true "lat,lon"
// @Param date query string false "YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /weather/forecast [get]
func (h *GeoHandler) Forecast(c *gin.Context) {
	res, err := h.service.Forecast(c.Request.Context(), cleanQuery(c, "location"), cleanQuery(c, "date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, res)
}

// Summary godoc
// @Summary Current weather and the next hours
// @Tags Weather
// @Produce json
// @Param location query string true "lat,lon"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /weather/summary [get]
func (h *GeoHandler) Summary(c *gin.Context) {
	res, err := h.service.Summary(c.Request.Context(), cleanQuery(c, "location"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, res)
}

// Timezone godoc
// @Summary Timezone of a location
// @Tags Geo
// @Produce json
// @Param location query string false "lat,lon"
// @Success 200 {object} response.Envelope
// @Router /timezone [get]
func (h *GeoHandler) Timezone(c *gin.Context) {
	respondOK(c, h.service.Timezone(c.Request.Context(), cleanQuery(c, "location")))
}

// Places godoc
// @Summary Nearby places
// @Tags Geo
// @Produce json
// @Param lat query string true "Latitude"
// @Param lon query string true "Longitude"
// @Param type query string true "cafe, park, library, restaurant, bar or supermarket"
// @Param radius query int false "Radius in metres"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /places/nearby [get]
func (h *GeoHandler) Places(c *gin.Context) {
	radius := 0
	if raw := cleanQuery(c, "radius"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.Error(c, appErrors.Validation("radius must be a positive integer"))
			return
		}
		radius = parsed
	}
	places, err := h.service.NearbyPlaces(c.Request.Context(), cleanQuery(c, "lat"), cleanQuery(c, "lon"), cleanQuery(c, "type"), radius)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOK(c, places)
}
