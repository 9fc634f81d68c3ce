package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
)

const providerOverpass = "overpass"

// DefaultRadius is used when NearbyPlaces is called without a radius.
const DefaultRadius = 1000

// PlaceTypes maps supported place types to their OSM tag filter.
var PlaceTypes = map[string]string{
	"cafe":        "amenity=cafe",
	"park":        "leisure=park",
	"library":     "amenity=library",
	"restaurant":  "amenity=restaurant",
	"bar":         "amenity=bar",
	"supermarket": "shop=supermarket",
}

// SupportedPlaceTypes lists PlaceTypes keys in stable order.
func SupportedPlaceTypes() []string {
	out := make([]string, 0, len(PlaceTypes))
	for k := range PlaceTypes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type overpassResponse struct {
	Elements []struct {
		Lat  float64           `json:"lat"`
		Lon  float64           `json:"lon"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

// BuildOverpassQuery renders the node query for tag around a point.
func BuildOverpassQuery(tag string, radius int, coords Coordinates) string {
	return fmt.Sprintf("[out:json][timeout:25];\nnode[%s](around:%d,%s,%s);\nout body;", tag, radius, coords.Lat, coords.Lon)
}

// NearbyPlaces lists nodes of placeType within radius metres.
func (c *Client) NearbyPlaces(ctx context.Context, coords Coordinates, placeType string, radius int) ([]models.Place, error) {
	tag, ok := PlaceTypes[placeType]
	if !ok {
		return nil, appErrors.Validation("Unsupported place type: " + placeType)
	}
	if radius <= 0 {
		radius = DefaultRadius
	}

	form := url.Values{}
	form.Set("data", BuildOverpassQuery(tag, radius, coords))
	req, err := http.NewRequest(http.MethodPost, c.overpassURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build overpass request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp overpassResponse
	if err := c.do(ctx, providerOverpass, "nearby", req, &resp); err != nil {
		return nil, err
	}

	places := make([]models.Place, 0, len(resp.Elements))
	for _, el := range resp.Elements {
		address := el.Tags["addr:full"]
		if address == "" {
			address = el.Tags["addr:street"]
		}
		places = append(places, models.Place{
			Name:    el.Tags["name"],
			Type:    placeType,
			Lat:     formatFloat(el.Lat),
			Lon:     formatFloat(el.Lon),
			Address: address,
		})
	}
	return places, nil
}
