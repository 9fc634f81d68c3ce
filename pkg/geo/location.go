package geo

import (
	"strconv"
	"strings"

	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
)

const quoteChars = `'"`

// Coordinates is a validated latitude/longitude pair kept in its textual form.
type Coordinates struct {
	Lat string
	Lon string
}

// String renders the pair as "lat,lon".
func (c Coordinates) String() string {
	return c.Lat + "," + c.Lon
}

// ParseLocation accepts "lat,lon" optionally wrapped in quotes.
func ParseLocation(location string) (Coordinates, error) {
	location = strings.Trim(strings.TrimSpace(location), quoteChars)
	parts := strings.Split(location, ",")
	if len(parts) != 2 {
		return Coordinates{}, appErrors.Validation("location must be coordinates in 'lat,lon' format")
	}
	lat := strings.Trim(strings.TrimSpace(parts[0]), quoteChars)
	lon := strings.Trim(strings.TrimSpace(parts[1]), quoteChars)
	if _, err := strconv.ParseFloat(lat, 64); err != nil {
		return Coordinates{}, appErrors.Validation("invalid latitude: " + lat)
	}
	if _, err := strconv.ParseFloat(lon, 64); err != nil {
		return Coordinates{}, appErrors.Validation("invalid longitude: " + lon)
	}
	return Coordinates{Lat: lat, Lon: lon}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
