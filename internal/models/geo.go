package models

// GeocodeResult is a forward geocoding hit.
type GeocodeResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// ReverseGeocodeResult describes the place at a coordinate.
type ReverseGeocodeResult struct {
	City        string `json:"city"`
	Country     string `json:"country"`
	DisplayName string `json:"display_name"`
}

// CurrentWeather mirrors the Open-Meteo current_weather block.
type CurrentWeather struct {
	Temperature   float64 `json:"temperature"`
	WindSpeed     float64 `json:"windspeed"`
	WindDirection float64 `json:"winddirection"`
	WeatherCode   int     `json:"weathercode"`
	IsDay         int     `json:"is_day"`
	Time          string  `json:"time"`
}

// WeatherReport is the Open-Meteo forecast envelope.
type WeatherReport struct {
	Latitude             float64         `json:"latitude"`
	Longitude            float64         `json:"longitude"`
	UTCOffsetSeconds     int             `json:"utc_offset_seconds"`
	Timezone             string          `json:"timezone"`
	TimezoneAbbreviation string          `json:"timezone_abbreviation"`
	CurrentWeather       *CurrentWeather `json:"current_weather,omitempty"`
	Hourly               *HourlyForecast `json:"hourly,omitempty"`
}

// HourlyForecast holds parallel arrays indexed by hour.
type HourlyForecast struct {
	Time          []string  `json:"time"`
	Temperature2m []float64 `json:"temperature_2m"`
	Precipitation []float64 `json:"precipitation"`
	WeatherCode   []int     `json:"weathercode"`
	CloudCover    []float64 `json:"cloudcover"`
	WindSpeed10m  []float64 `json:"windspeed_10m"`
}

// ForecastHour is one flattened hourly entry.
type ForecastHour struct {
	Time          string  `json:"time"`
	Temperature   float64 `json:"temperature"`
	Precipitation float64 `json:"precipitation"`
	WeatherCode   int     `json:"weathercode"`
	CloudCover    float64 `json:"cloudcover"`
	WindSpeed     float64 `json:"windspeed"`
}

// WeatherSummary is current weather plus the next few hours.
type WeatherSummary struct {
	Current  *CurrentWeather `json:"current"`
	Forecast []ForecastHour  `json:"forecast"`
}

// TimezoneInfo describes the UTC offset at a location.
type TimezoneInfo struct {
	Latitude             float64 `json:"latitude"`
	Longitude            float64 `json:"longitude"`
	Timezone             string  `json:"timezone"`
	UTCOffsetSeconds     int     `json:"utc_offset_seconds"`
	TimezoneAbbreviation string  `json:"timezone_abbreviation"`
}

// Place is a nearby point of interest.
type Place struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Lat     string `json:"lat"`
	Lon     string `json:"lon"`
	Address string `json:"address"`
}
