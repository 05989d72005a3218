package model

// Reservation statuses. At most one RESERVED booking exists per slot;
// any number of WAITING bookings may queue behind it.
const (
	StatusReserved = "RESERVED"
	StatusWaiting  = "WAITING"
)

// Slot identifies a bookable unit: a calendar date, a time slot and a theme.
// Date uses the "2006-01-02" layout.
type Slot struct {
	Date       string `json:"date"`
	TimeSlotID uint64 `json:"time_slot_id"`
	ThemeID    uint64 `json:"theme_id"`
}

// Reservation is a stored booking row. Lower IDs are older; the waiting
// queue is ordered by ID.
type Reservation struct {
	ID       uint64 `json:"id"`
	Slot     Slot   `json:"slot"`
	MemberID uint64 `json:"member_id"`
	Status   string `json:"status"`
}

// ReservationView is the joined projection returned to clients.
type ReservationView struct {
	ID         uint64 `json:"id"`
	Date       string `json:"date"`
	TimeSlotID uint64 `json:"time_slot_id"`
	StartAt    string `json:"start_at"`
	ThemeID    uint64 `json:"theme_id"`
	Theme      string `json:"theme"`
	MemberID   uint64 `json:"member_id"`
	MemberName string `json:"member_name"`
	Status     string `json:"status"`
}

// RankedReservation is a member's booking with its queue rank: 0 when
// RESERVED, otherwise 1 plus the number of older WAITING bookings on the
// same slot.
type RankedReservation struct {
	ReservationView
	Rank int64 `json:"rank"`
}
