package geo

import (
	"context"
	"net/url"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
)

const providerNominatim = "nominatim"

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Address     struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		Country string `json:"country"`
	} `json:"address"`
}

// Forward resolves a city name to its best coordinate match.
func (c *Client) Forward(ctx context.Context, city string) (*models.GeocodeResult, error) {
	params := url.Values{}
	params.Set("q", city)
	params.Set("format", "json")
	params.Set("limit", "1")

	var hits []nominatimPlace
	if err := c.get(ctx, providerNominatim, "forward", c.nominatimURL+"/search", params, &hits); err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "City not found")
	}
	return &models.GeocodeResult{Lat: hits[0].Lat, Lon: hits[0].Lon, DisplayName: hits[0].DisplayName}, nil
}

// Reverse returns the city, country and display name at a coordinate.
func (c *Client) Reverse(ctx context.Context, lat, lon string) (*models.ReverseGeocodeResult, error) {
	params := url.Values{}
	params.Set("lat", lat)
	params.Set("lon", lon)
	params.Set("format", "json")

	var place nominatimPlace
	if err := c.get(ctx, providerNominatim, "reverse", c.nominatimURL+"/reverse", params, &place); err != nil {
		return nil, err
	}
	city := place.Address.City
	if city == "" {
		city = place.Address.Town
	}
	if city == "" {
		city = place.Address.Village
	}
	return &models.ReverseGeocodeResult{City: city, Country: place.Address.Country, DisplayName: place.DisplayName}, nil
}
