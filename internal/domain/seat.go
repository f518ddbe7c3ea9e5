package domain

import (
	"fmt"
	"math"
	"time"
)

type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "AVAILABLE"
	SeatStatusHeld      SeatStatus = "HELD"
	SeatStatusBooked    SeatStatus = "BOOKED"
)

type SeatClass string

const (
	SeatClassEconomy  SeatClass = "ECONOMY"
	SeatClassBusiness SeatClass = "BUSINESS"
)

type SeatCategory string

const (
	SeatCategoryStandard     SeatCategory = "STANDARD"
	SeatCategoryExtraLegroom SeatCategory = "EXTRA_LEGROOM"
)

type Seat struct {
	ID              int64        `json:"id"`
	FlightID        int64        `json:"flight_id"`
	Row             int          `json:"row"`
	Letter          string       `json:"letter"`
	Class           SeatClass    `json:"class"`
	Category        SeatCategory `json:"category"`
	PriceMultiplier float64      `json:"price_multiplier"`
	Status          SeatStatus   `json:"status"`
	HoldExpiresAt   *time.Time   `json:"hold_expires_at,omitempty"`
}

// Designator is the printed seat name, e.g. "12A".
func (s Seat) Designator() string {
	return fmt.Sprintf("%d%s", s.Row, s.Letter)
}

// HoldExpired is true for a HELD seat whose hold has lapsed or was never timed.
func (s Seat) HoldExpired(now time.Time) bool {
	if s.Status != SeatStatusHeld {
		return false
	}
	return s.HoldExpiresAt == nil || !s.HoldExpiresAt.After(now)
}

// PriceCents prices the seat against a flight base price, rounded to the nearest cent.
func (s Seat) PriceCents(baseCents int64) int64 {
	return int64(math.Round(float64(baseCents) * s.PriceMultiplier))
}
