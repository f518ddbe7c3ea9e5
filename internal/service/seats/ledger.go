// Package seats owns per-seat status and hold expiry.
//
// Holds are not swept by a timer. Every read resolves a lapsed hold before
// answering, so callers always observe an up to date status.
package seats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/seatflow/internal/clock"
	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/Domenick1991/seatflow/internal/repository"
	"go.uber.org/zap"
)

const (
	DefaultHoldTTL      = 10 * time.Minute
	DefaultPaymentGrace = 10 * time.Minute
)

type UseCase interface {
	HoldSeat(ctx context.Context, caller domain.Caller, flightID, seatID int64) (*Hold, error)
	ReleaseSeatHold(ctx context.Context, caller domain.Caller, flightID, seatID int64) error
	QuerySeatStatus(ctx context.Context, flightID, seatID int64) (*SeatView, error)
	ListSeats(ctx context.Context, flightID int64) ([]SeatView, error)
}

type Hold struct {
	FlightID  int64     `json:"flight_id"`
	SeatID    int64     `json:"seat_id"`
	Seat      string    `json:"seat"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SeatView is a seat priced against its flight.
type SeatView struct {
	domain.Seat
	Designator string `json:"designator"`
	PriceCents int64  `json:"price_cents"`
}

func NewSeatView(seat domain.Seat, flight domain.Flight) SeatView {
	return SeatView{Seat: seat, Designator: seat.Designator(), PriceCents: seat.PriceCents(flight.BasePriceCents)}
}

type Ledger struct {
	tx           repository.Transactor
	flights      repository.FlightRepository
	seats        repository.SeatRepository
	bookings     repository.BookingRepository
	clock        clock.Clock
	log          *zap.Logger
	holdTTL      time.Duration
	paymentGrace time.Duration
}

type Option func(*Ledger)

func WithHoldTTL(d time.Duration) Option {
	return func(l *Ledger) {
		if d > 0 {
			l.holdTTL = d
		}
	}
}

func WithPaymentGrace(d time.Duration) Option {
	return func(l *Ledger) {
		if d > 0 {
			l.paymentGrace = d
		}
	}
}

func NewLedger(store repository.Store, clk clock.Clock, log *zap.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		tx:           store.Tx,
		flights:      store.Flights,
		seats:        store.Seats,
		bookings:     store.Bookings,
		clock:        clk,
		log:          log.With(zap.String("service", "seats")),
		holdTTL:      DefaultHoldTTL,
		paymentGrace: DefaultPaymentGrace,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) HoldTTL() time.Duration      { return l.holdTTL }
func (l *Ledger) PaymentGrace() time.Duration { return l.paymentGrace }

// HoldSeat claims an AVAILABLE seat, or one whose hold lapsed with no live booking behind it.
func (l *Ledger) HoldSeat(ctx context.Context, caller domain.Caller, flightID, seatID int64) (*Hold, error) {
	var hold *Hold
	err := l.tx.WithTx(ctx, func(ctx context.Context) error {
		now := l.clock.Now()
		flight, err := l.flights.GetByID(ctx, flightID)
		if err != nil {
			return err
		}
		if !flight.Bookable() {
			return domain.ErrFlightNotBookable
		}

		seat, err := l.seats.GetForUpdate(ctx, flightID, seatID)
		if err != nil {
			return err
		}
		if err := l.Resolve(ctx, seat, now); err != nil {
			return err
		}
		if seat.Status != domain.SeatStatusAvailable {
			return domain.ErrSeatUnavailable
		}

		expires, err := l.Claim(ctx, seat.ID, now)
		if err != nil {
			return err
		}
		hold = &Hold{FlightID: flightID, SeatID: seat.ID, Seat: seat.Designator(), ExpiresAt: expires}
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.log.Info("seat held",
		zap.Int64("user_id", caller.UserID),
		zap.Int64("flight_id", flightID),
		zap.String("seat", hold.Seat),
		zap.Time("expires_at", hold.ExpiresAt))
	return hold, nil
}

// ReleaseSeatHold frees a HELD seat. A seat backed by a live booking must be released by cancelling the booking.
func (l *Ledger) ReleaseSeatHold(ctx context.Context, caller domain.Caller, flightID, seatID int64) error {
	return l.tx.WithTx(ctx, func(ctx context.Context) error {
		seat, err := l.seats.GetForUpdate(ctx, flightID, seatID)
		if err != nil {
			return err
		}
		if err := l.Resolve(ctx, seat, l.clock.Now()); err != nil {
			return err
		}

		switch seat.Status {
		case domain.SeatStatusAvailable:
			return nil
		case domain.SeatStatusBooked:
			return domain.ErrConflictingBooking
		}

		active, err := l.bookings.FindActiveBySeat(ctx, seat.ID)
		if err != nil {
			return err
		}
		if active != nil {
			return &domain.BookingConflictError{Err: domain.ErrConflictingBooking, BookingID: active.ID, Reference: active.Reference}
		}
		if err := l.Release(ctx, seat.ID); err != nil {
			return err
		}
		l.log.Info("seat hold released", zap.Int64("user_id", caller.UserID), zap.Int64("seat_id", seat.ID))
		return nil
	})
}

func (l *Ledger) QuerySeatStatus(ctx context.Context, flightID, seatID int64) (*SeatView, error) {
	var view *SeatView
	err := l.retryRead(ctx, func() error {
		return l.tx.WithTx(ctx, func(ctx context.Context) error {
			flight, err := l.flights.GetByID(ctx, flightID)
			if err != nil {
				return err
			}
			seat, err := l.seats.GetForUpdate(ctx, flightID, seatID)
			if err != nil {
				return err
			}
			if err := l.Resolve(ctx, seat, l.clock.Now()); err != nil {
				return err
			}
			v := NewSeatView(*seat, *flight)
			view = &v
			return nil
		})
	})
	return view, err
}

// ListSeats returns the flight's seat map, releasing lapsed holds first.
func (l *Ledger) ListSeats(ctx context.Context, flightID int64) ([]SeatView, error) {
	var views []SeatView
	err := l.retryRead(ctx, func() error {
		flight, err := l.flights.GetByID(ctx, flightID)
		if err != nil {
			return err
		}
		seats, err := l.seats.ListByFlight(ctx, flightID)
		if err != nil {
			return err
		}

		now := l.clock.Now()
		stale := make(map[int64]bool)
		for _, s := range seats {
			if s.HoldExpired(now) {
				stale[s.ID] = true
			}
		}
		if len(stale) > 0 {
			if err := l.tx.WithTx(ctx, func(ctx context.Context) error {
				for i := range seats {
					if !stale[seats[i].ID] {
						continue
					}
					locked, err := l.seats.GetForUpdate(ctx, flightID, seats[i].ID)
					if err != nil {
						return err
					}
					if err := l.Resolve(ctx, locked, now); err != nil {
						return err
					}
					seats[i] = *locked
				}
				return nil
			}); err != nil {
				return err
			}
			l.log.Debug("released lapsed holds", zap.Int64("flight_id", flightID), zap.Int("seats", len(stale)))
		}

		views = make([]SeatView, 0, len(seats))
		for _, s := range seats {
			views = append(views, NewSeatView(s, *flight))
		}
		return nil
	})
	return views, err
}

// retryRead runs a read path again once when it lost a write race while tidying holds.
func (l *Ledger) retryRead(ctx context.Context, fn func() error) error {
	err := fn()
	if errors.Is(err, domain.ErrConcurrentUpdate) && ctx.Err() == nil {
		l.log.Debug("retrying read after concurrent update", zap.Error(err))
		err = fn()
	}
	return err
}

// Resolve must run inside a transaction on a seat loaded for update. A HELD seat
// whose hold lapsed becomes AVAILABLE unless a live booking still backs it; an
// unpaid booking past its grace period is cancelled on the way. seat is updated in place.
func (l *Ledger) Resolve(ctx context.Context, seat *domain.Seat, now time.Time) error {
	if !seat.HoldExpired(now) {
		return nil
	}

	active, err := l.bookings.FindActiveBySeat(ctx, seat.ID)
	if err != nil {
		return err
	}
	if active != nil && active.Expired(now, l.paymentGrace) {
		if err := l.bookings.UpdateStatus(ctx, active.ID, domain.BookingStatusCancelled, now); err != nil {
			return fmt.Errorf("expire booking %s: %w", active.Reference, err)
		}
		l.log.Info("booking expired", zap.String("reference", active.Reference), zap.Int64("seat_id", seat.ID))
		active = nil
	}
	if active != nil {
		return nil
	}

	if err := l.Release(ctx, seat.ID); err != nil {
		return err
	}
	seat.Status = domain.SeatStatusAvailable
	seat.HoldExpiresAt = nil
	return nil
}

// Claim marks the seat HELD until now plus the hold TTL.
func (l *Ledger) Claim(ctx context.Context, seatID int64, now time.Time) (time.Time, error) {
	expires := now.Add(l.holdTTL)
	if err := l.seats.UpdateState(ctx, seatID, domain.SeatStatusHeld, &expires); err != nil {
		return time.Time{}, err
	}
	return expires, nil
}

// Book finalises the seat after payment.
func (l *Ledger) Book(ctx context.Context, seatID int64) error {
	return l.seats.UpdateState(ctx, seatID, domain.SeatStatusBooked, nil)
}

func (l *Ledger) Release(ctx context.Context, seatID int64) error {
	return l.seats.UpdateState(ctx, seatID, domain.SeatStatusAvailable, nil)
}

// CancelBooking cancels b and frees its seat. Must run inside a transaction.
func (l *Ledger) CancelBooking(ctx context.Context, b *domain.Booking, now time.Time) error {
	if err := l.bookings.UpdateStatus(ctx, b.ID, domain.BookingStatusCancelled, now); err != nil {
		return err
	}
	if err := l.Release(ctx, b.SeatID); err != nil {
		return err
	}
	b.Status = domain.BookingStatusCancelled
	b.UpdatedAt = now
	return nil
}

var _ UseCase = (*Ledger)(nil)
