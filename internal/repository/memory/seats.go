package memory

import (
	"cmp"
	"context"
	"strings"
	"time"

	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/Domenick1991/seatflow/internal/repository"
)

type seatRepo struct{ db *DB }

func bySeatPosition(a, b domain.Seat) int {
	if c := cmp.Compare(a.Row, b.Row); c != 0 {
		return c
	}
	return strings.Compare(a.Letter, b.Letter)
}

func (r seatRepo) CreateBatch(ctx context.Context, seats []domain.Seat) error {
	defer r.db.acquire(ctx)()
	for i := range seats {
		seats[i].ID = r.db.data.id()
		r.db.data.seats[seats[i].ID] = seats[i]
	}
	return nil
}

func (r seatRepo) ListByFlight(ctx context.Context, flightID int64) ([]domain.Seat, error) {
	defer r.db.acquire(ctx)()
	return sortedValues(r.db.data.seats, func(s domain.Seat) bool {
		return s.FlightID == flightID
	}, bySeatPosition), nil
}

func (r seatRepo) Get(ctx context.Context, flightID, seatID int64) (*domain.Seat, error) {
	defer r.db.acquire(ctx)()
	s, ok := r.db.data.seats[seatID]
	if !ok || s.FlightID != flightID {
		return nil, domain.ErrSeatNotFound
	}
	return &s, nil
}

func (r seatRepo) GetForUpdate(ctx context.Context, flightID, seatID int64) (*domain.Seat, error) {
	return r.Get(ctx, flightID, seatID)
}

func (r seatRepo) UpdateState(ctx context.Context, seatID int64, status domain.SeatStatus, holdExpiresAt *time.Time) error {
	defer r.db.acquire(ctx)()
	s, ok := r.db.data.seats[seatID]
	if !ok {
		return domain.ErrSeatNotFound
	}
	s.Status = status
	s.HoldExpiresAt = nil
	if holdExpiresAt != nil {
		t := *holdExpiresAt
		s.HoldExpiresAt = &t
	}
	r.db.data.seats[seatID] = s
	return nil
}

func (r seatRepo) UpdatePricing(ctx context.Context, seatID int64, class domain.SeatClass, category domain.SeatCategory, multiplier float64) error {
	defer r.db.acquire(ctx)()
	s, ok := r.db.data.seats[seatID]
	if !ok {
		return domain.ErrSeatNotFound
	}
	s.Class, s.Category, s.PriceMultiplier = class, category, multiplier
	r.db.data.seats[seatID] = s
	return nil
}

func (r seatRepo) DeleteByFlight(ctx context.Context, flightID int64) error {
	defer r.db.acquire(ctx)()
	for _, b := range r.db.data.bookings {
		if b.FlightID == flightID {
			return domain.ErrFlightHasBookings
		}
	}
	for id, s := range r.db.data.seats {
		if s.FlightID == flightID {
			delete(r.db.data.seats, id)
		}
	}
	return nil
}

var _ repository.SeatRepository = seatRepo{}
