package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/Domenick1991/seatflow/internal/repository"
)

type bookingRepo struct{ db *DB }

func newestFirst(a, b domain.Booking) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

func copyBooking(b domain.Booking) domain.Booking {
	if b.Passenger != nil {
		p := *b.Passenger
		b.Passenger = &p
	}
	return b
}

func (r bookingRepo) list(keep func(domain.Booking) bool) []domain.Booking {
	out := sortedValues(r.db.data.bookings, keep, newestFirst)
	for i := range out {
		out[i] = copyBooking(out[i])
	}
	return out
}

func (r bookingRepo) Create(ctx context.Context, booking *domain.Booking) error {
	defer r.db.acquire(ctx)()
	for _, b := range r.db.data.bookings {
		if b.SeatID == booking.SeatID && b.Active() && booking.Active() {
			return domain.ErrSeatTaken
		}
	}
	booking.ID = r.db.data.id()
	booking.UpdatedAt = booking.CreatedAt
	r.db.data.bookings[booking.ID] = copyBooking(*booking)
	return nil
}

func (r bookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	defer r.db.acquire(ctx)()
	b, ok := r.db.data.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	b = copyBooking(b)
	return &b, nil
}

func (r bookingRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.GetByID(ctx, id)
}

func (r bookingRepo) FindActiveBySeat(ctx context.Context, seatID int64) (*domain.Booking, error) {
	defer r.db.acquire(ctx)()
	for _, b := range r.db.data.bookings {
		if b.SeatID == seatID && b.Active() {
			b = copyBooking(b)
			return &b, nil
		}
	}
	return nil, nil
}

func (r bookingRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	defer r.db.acquire(ctx)()
	return r.list(func(b domain.Booking) bool { return b.UserID == userID }), nil
}

func (r bookingRepo) ListAll(ctx context.Context) ([]domain.Booking, error) {
	defer r.db.acquire(ctx)()
	return r.list(nil), nil
}

func (r bookingRepo) ListExpiredCreated(ctx context.Context, createdBefore time.Time) ([]domain.Booking, error) {
	defer r.db.acquire(ctx)()
	return r.list(func(b domain.Booking) bool {
		return b.Status == domain.BookingStatusCreated && b.CreatedAt.Before(createdBefore)
	}), nil
}

func (r bookingRepo) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, now time.Time) error {
	defer r.db.acquire(ctx)()
	b, ok := r.db.data.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	b.Status = status
	b.UpdatedAt = now
	r.db.data.bookings[id] = b
	return nil
}

func (r bookingRepo) UpdateSeat(ctx context.Context, id, seatID, totalPriceCents int64, now time.Time) error {
	defer r.db.acquire(ctx)()
	b, ok := r.db.data.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	for _, other := range r.db.data.bookings {
		if other.ID != id && other.SeatID == seatID && other.Active() && b.Active() {
			return domain.ErrSeatTaken
		}
	}
	b.SeatID = seatID
	b.TotalPriceCents = totalPriceCents
	b.UpdatedAt = now
	r.db.data.bookings[id] = b
	return nil
}

func (r bookingRepo) PurgeCancelledBySeat(ctx context.Context, seatID int64) (int64, error) {
	defer r.db.acquire(ctx)()
	paid := map[int64]bool{}
	for _, p := range r.db.data.payments {
		paid[p.BookingID] = true
	}
	var n int64
	for id, b := range r.db.data.bookings {
		if b.SeatID == seatID && b.Status == domain.BookingStatusCancelled && !paid[id] {
			delete(r.db.data.bookings, id)
			n++
		}
	}
	return n, nil
}

func (r bookingRepo) CountByFlight(ctx context.Context, flightID int64) (int, error) {
	defer r.db.acquire(ctx)()
	n := 0
	for _, b := range r.db.data.bookings {
		if b.FlightID == flightID {
			n++
		}
	}
	return n, nil
}

func (r bookingRepo) ListConfirmedUserIDs(ctx context.Context, flightID int64) ([]int64, error) {
	defer r.db.acquire(ctx)()
	return r.distinct(func(b domain.Booking) (int64, bool) {
		return b.UserID, b.FlightID == flightID && b.Status == domain.BookingStatusConfirmed
	}), nil
}

func (r bookingRepo) ListFlightIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	defer r.db.acquire(ctx)()
	return r.distinct(func(b domain.Booking) (int64, bool) {
		return b.FlightID, b.UserID == userID && b.Active()
	}), nil
}

func (r bookingRepo) distinct(pick func(domain.Booking) (int64, bool)) []int64 {
	seen := map[int64]bool{}
	var ids []int64
	for _, b := range r.db.data.bookings {
		if id, ok := pick(b); ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

var _ repository.BookingRepository = bookingRepo{}
