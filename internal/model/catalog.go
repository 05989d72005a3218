package model

// Theme is an escape-room theme offered for booking. Name is unique.
type Theme struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
}

// TimeSlot is a bookable start time of day. StartAt uses the "15:04" layout
// and is unique across slots.
type TimeSlot struct {
	ID      uint64 `json:"id"`
	StartAt string `json:"start_at"`
}

// AvailableTime is a time slot annotated with whether the slot already holds
// a RESERVED booking for a given date and theme.
type AvailableTime struct {
	TimeSlot
	AlreadyBooked bool `json:"already_booked"`
}

// ThemePopularity is a theme with its booking count over a reporting window.
type ThemePopularity struct {
	Theme
	ReservationCount int64 `json:"reservation_count"`
}
