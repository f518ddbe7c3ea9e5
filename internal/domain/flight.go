package domain

import (
	"strings"
	"time"
)

type FlightStatus string

const (
	FlightStatusScheduled FlightStatus = "SCHEDULED"
	FlightStatusBoarding  FlightStatus = "BOARDING"
	FlightStatusDeparted  FlightStatus = "DEPARTED"
	FlightStatusArrived   FlightStatus = "ARRIVED"
	FlightStatusDelayed   FlightStatus = "DELAYED"
	FlightStatusCancelled FlightStatus = "CANCELLED"
)

// ParseFlightStatus accepts the canonical names plus LANDED, an older alias of ARRIVED.
func ParseFlightStatus(s string) (FlightStatus, error) {
	switch v := FlightStatus(strings.ToUpper(strings.TrimSpace(s))); v {
	case FlightStatusScheduled, FlightStatusBoarding, FlightStatusDeparted,
		FlightStatusArrived, FlightStatusDelayed, FlightStatusCancelled:
		return v, nil
	case "LANDED":
		return FlightStatusArrived, nil
	default:
		return "", ErrInvalidFlightStatus
	}
}

type Flight struct {
	ID             int64        `json:"id"`
	FlightNumber   string       `json:"flight_number"`
	FromAirport    string       `json:"from_airport"`
	ToAirport      string       `json:"to_airport"`
	DepartureTime  time.Time    `json:"departure_time"`
	ArrivalTime    time.Time    `json:"arrival_time"`
	BasePriceCents int64        `json:"base_price_cents"`
	Status         FlightStatus `json:"status"`
	Gate           string       `json:"gate"`
	Terminal       string       `json:"terminal"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Bookable reports whether new bookings may be taken for the flight.
func (f Flight) Bookable() bool {
	switch f.Status {
	case FlightStatusCancelled, FlightStatusDeparted, FlightStatusArrived:
		return false
	}
	return true
}

// HasDeparted is true once the flight left the gate.
func (f Flight) HasDeparted() bool {
	return f.Status == FlightStatusDeparted || f.Status == FlightStatusArrived
}
