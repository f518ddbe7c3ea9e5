package domain

import "time"

type BookingStatus string

const (
	BookingStatusCreated   BookingStatus = "CREATED"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type Booking struct {
	ID              int64          `json:"id"`
	Reference       string         `json:"reference"`
	UserID          int64          `json:"user_id"`
	FlightID        int64          `json:"flight_id"`
	SeatID          int64          `json:"seat_id"`
	TotalPriceCents int64          `json:"total_price_cents"`
	Status          BookingStatus  `json:"status"`
	Passenger       *PassengerData `json:"passenger,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Active is true while the booking still claims its seat.
func (b Booking) Active() bool {
	return b.Status == BookingStatusCreated || b.Status == BookingStatusConfirmed
}

// Expired reports whether an unpaid booking outlived its payment grace period.
func (b Booking) Expired(now time.Time, grace time.Duration) bool {
	return b.Status == BookingStatusCreated && now.After(b.CreatedAt.Add(grace))
}

// BookingDetails is a booking together with its seat as currently stored.
type BookingDetails struct {
	Booking        Booking `json:"booking"`
	Seat           Seat    `json:"seat"`
	Flight         Flight  `json:"flight"`
	SeatPriceCents int64   `json:"seat_price_cents"`
}
