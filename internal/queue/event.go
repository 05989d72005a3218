// Package queue defines the reservation events exchanged over RabbitMQ and
// the background consumer that records them.
package queue

// ReservationBookedEvent is published when a booking is created or a waiting
// booking is promoted into the freed slot. It carries enough context for
// downstream consumers to log or notify without touching the database.
type ReservationBookedEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	MemberID      uint64 `json:"member_id"`
	MemberName    string `json:"member_name"`
	Date          string `json:"date"`
	StartAt       string `json:"start_at"`
	Theme         string `json:"theme"`
	Status        string `json:"status"`
	Promoted      bool   `json:"promoted"`
	BookedAt      string `json:"booked_at"`
}
