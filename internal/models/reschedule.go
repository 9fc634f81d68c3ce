package models

// CalendarEntry is the compact event shape exchanged with the assistant.
type CalendarEntry struct {
	Summary  string `json:"summary"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Location string `json:"location,omitempty"`
}

// RescheduleItem wraps one proposed event.
type RescheduleItem struct {
	Event CalendarEntry `json:"event"`
}

// RescheduleRequest optionally supplies the calendar to rearrange.
type RescheduleRequest struct {
	Calendar []CalendarEntry `json:"calendar"`
}

// RescheduleResponse is the assistant's proposal.
type RescheduleResponse struct {
	Suggestion  string           `json:"suggestion"`
	NewCalendar []RescheduleItem `json:"new_calendar"`
}
