package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	"github.com/noah-isme/ego-calendar-api/pkg/llm"
)

// RecommendRequest is the user turn paired with the recommendation prompt.
const RecommendRequest = "Where would you recommend I go?"

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// Recommendation builds the system message asking for exactly three places.
func Recommendation(now time.Time, rc models.RecommendationContext) llm.Message {
	var b strings.Builder
	b.WriteString("You are a friendly and knowledgeable local guide. ")
	fmt.Fprintf(&b, "The user is currently in %s at coordinates %.4f, %.4f. ", orDefault(rc.Hometown, "Unknown city"), rc.Latitude, rc.Longitude)
	fmt.Fprintf(&b, "Today is %s, %s", now.Format("Monday"), now.Format(DateLayout))
	if rc.LocalTime != "" {
		fmt.Fprintf(&b, ", local time %s", rc.LocalTime)
	}
	if rc.Timezone != "" {
		fmt.Fprintf(&b, " (%s)", rc.Timezone)
	}
	fmt.Fprintf(&b, ", and the weather is: %s. ", orDefault(rc.Weather, "unknown"))
	fmt.Fprintf(&b, "About the user: age %s, gender %s. %s\n",
		orDefault(rc.Age, "unknown"), orDefault(rc.Gender, "unknown"), strings.TrimSpace(rc.Description))

	if len(rc.Places) > 0 {
		b.WriteString("Nearby places found on the map:\n")
		for _, p := range rc.Places {
			name := orDefault(p.Name, "Unnamed "+p.Type)
			fmt.Fprintf(&b, "- %s (%s) at %s, %s", name, p.Type, p.Lat, p.Lon)
			if p.Address != "" {
				fmt.Fprintf(&b, ", %s", p.Address)
			}
			b.WriteString("\n")
		}
	} else {
		b.WriteString("No nearby places were found on the map; use your general knowledge of the area.\n")
	}

	b.WriteString("Suggest exactly 3 interesting places to visit nearby. ")
	b.WriteString("Consider the weather, the day of the week, and the user's mood or interest. ")
	b.WriteString("Return ONLY a JSON array of exactly 3 objects with the fields ")
	b.WriteString(`"name" (string), "description" (string), "latitude" (number), "longitude" (number) and "confidence" (number from 0 to 10). `)
	b.WriteString("Do not add any text before or after the array.")
	return llm.Message{Role: models.RoleSystem, Content: b.String()}
}
