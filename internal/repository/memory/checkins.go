package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/Domenick1991/seatflow/internal/repository"
)

type checkInRepo struct{ db *DB }

func (r checkInRepo) GetByBooking(ctx context.Context, bookingID int64) (*domain.CheckIn, error) {
	defer r.db.acquire(ctx)()
	for _, c := range r.db.data.checkIns {
		if c.BookingID == bookingID {
			return &c, nil
		}
	}
	return nil, nil
}

func (r checkInRepo) Create(ctx context.Context, checkIn *domain.CheckIn) error {
	defer r.db.acquire(ctx)()
	for _, c := range r.db.data.checkIns {
		if c.BookingID == checkIn.BookingID {
			return fmt.Errorf("create check-in: booking %d already checked in: %w", checkIn.BookingID, domain.ErrConcurrentUpdate)
		}
	}
	checkIn.ID = r.db.data.id()
	r.db.data.checkIns[checkIn.ID] = *checkIn
	return nil
}

func (r checkInRepo) forFlight(ctx context.Context, flightID int64, fn func(c *domain.CheckIn)) int64 {
	defer r.db.acquire(ctx)()
	var n int64
	for id, c := range r.db.data.checkIns {
		if b, ok := r.db.data.bookings[c.BookingID]; ok && b.FlightID == flightID {
			fn(&c)
			r.db.data.checkIns[id] = c
			n++
		}
	}
	return n
}

func (r checkInRepo) UpdateGateForFlight(ctx context.Context, flightID int64, gate string) (int64, error) {
	return r.forFlight(ctx, flightID, func(c *domain.CheckIn) { c.BoardingGate = gate }), nil
}

func (r checkInRepo) UpdateBoardingTimeForFlight(ctx context.Context, flightID int64, boardingTime time.Time) (int64, error) {
	return r.forFlight(ctx, flightID, func(c *domain.CheckIn) { c.BoardingTime = boardingTime }), nil
}

var _ repository.CheckInRepository = checkInRepo{}
