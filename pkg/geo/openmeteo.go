package geo

import (
	"context"
	"net/url"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
)

const (
	providerOpenMeteo = "open-meteo"
	hourlyVariables   = "temperature_2m,precipitation,weathercode,cloudcover,windspeed_10m"
	summaryHours      = 3
)

func coordParams(coords Coordinates) url.Values {
	params := url.Values{}
	params.Set("latitude", coords.Lat)
	params.Set("longitude", coords.Lon)
	return params
}

// CurrentWeather returns the Open-Meteo current_weather report.
func (c *Client) CurrentWeather(ctx context.Context, coords Coordinates) (*models.WeatherReport, error) {
	params := coordParams(coords)
	params.Set("current_weather", "true")

	var report models.WeatherReport
	if err := c.get(ctx, providerOpenMeteo, "current_weather", c.openMeteoURL, params, &report); err != nil {
		return nil, err
	}
	if report.CurrentWeather == nil {
		return nil, appErrors.Clone(appErrors.ErrUpstream, "weather data unavailable")
	}
	return &report, nil
}

// Forecast returns the hourly forecast, restricted to date (YYYY-MM-DD) when set.
func (c *Client) Forecast(ctx context.Context, coords Coordinates, date string) (*models.WeatherReport, error) {
	params := coordParams(coords)
	params.Set("hourly", hourlyVariables)
	if date != "" {
		params.Set("start_date", date)
		params.Set("end_date", date)
	}

	var report models.WeatherReport
	if err := c.get(ctx, providerOpenMeteo, "forecast", c.openMeteoURL, params, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Summary combines current weather with the next few forecast hours.
func (c *Client) Summary(ctx context.Context, coords Coordinates) (*models.WeatherSummary, error) {
	current, err := c.CurrentWeather(ctx, coords)
	if err != nil {
		return nil, err
	}
	forecast, err := c.Forecast(ctx, coords, "")
	if err != nil {
		return nil, err
	}
	return &models.WeatherSummary{Current: current.CurrentWeather, Forecast: FlattenHourly(forecast.Hourly, summaryHours)}, nil
}

// Timezone asks Open-Meteo to resolve the zone of a coordinate.
func (c *Client) Timezone(ctx context.Context, coords Coordinates) (*models.TimezoneInfo, error) {
	params := coordParams(coords)
	params.Set("timezone", "auto")
	params.Set("current_weather", "true")

	var report models.WeatherReport
	if err := c.get(ctx, providerOpenMeteo, "timezone", c.openMeteoURL, params, &report); err != nil {
		return nil, err
	}
	if report.Timezone == "" {
		return nil, appErrors.Clone(appErrors.ErrUpstream, "timezone unavailable")
	}
	return &models.TimezoneInfo{
		Latitude:             report.Latitude,
		Longitude:            report.Longitude,
		Timezone:             report.Timezone,
		UTCOffsetSeconds:     report.UTCOffsetSeconds,
		TimezoneAbbreviation: report.TimezoneAbbreviation,
	}, nil
}

// FlattenHourly turns the parallel hourly arrays into at most limit entries.
func FlattenHourly(h *models.HourlyForecast, limit int) []models.ForecastHour {
	if h == nil {
		return []models.ForecastHour{}
	}
	n := len(h.Time)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([]models.ForecastHour, 0, n)
	for i := 0; i < n; i++ {
		hour := models.ForecastHour{Time: h.Time[i]}
		if i < len(h.Temperature2m) {
			hour.Temperature = h.Temperature2m[i]
		}
		if i < len(h.Precipitation) {
			hour.Precipitation = h.Precipitation[i]
		}
		if i < len(h.WeatherCode) {
			hour.WeatherCode = h.WeatherCode[i]
		}
		if i < len(h.CloudCover) {
			hour.CloudCover = h.CloudCover[i]
		}
		if i < len(h.WindSpeed10m) {
			hour.WindSpeed = h.WindSpeed10m[i]
		}
		out = append(out, hour)
	}
	return out
}
