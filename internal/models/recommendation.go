package models

// Recommendation is one suggested place returned by the assistant.
type Recommendation struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Confidence  float64 `json:"confidence"`
}

// RecommendationContext is everything gathered before prompting.
type RecommendationContext struct {
	Age         string
	Gender      string
	Description string
	Hometown    string
	Latitude    float64
	Longitude   float64
	Weather     string
	LocalTime   string
	Timezone    string
	Places      []Place
}

// RecommendationResponse is returned to API clients.
type RecommendationResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
	Weather         string           `json:"weather"`
	Timezone        string           `json:"timezone,omitempty"`
}
