package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/seatflow/internal/clock"
	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/Domenick1991/seatflow/internal/ids"
	"github.com/Domenick1991/seatflow/internal/notify"
	"github.com/Domenick1991/seatflow/internal/repository"
	"github.com/Domenick1991/seatflow/internal/service/seats"
	"github.com/Domenick1991/seatflow/internal/validation"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, caller domain.Caller, input CreateBookingInput) (*domain.BookingDetails, error)
	CancelBooking(ctx context.Context, caller domain.Caller, bookingID int64) (*domain.Booking, error)
	CancelBookingAsStaff(ctx context.Context, caller domain.Caller, bookingID int64) (*domain.Booking, error)
	ReassignSeat(ctx context.Context, caller domain.Caller, bookingID, seatID int64) (*domain.BookingDetails, error)
	GetBooking(ctx context.Context, caller domain.Caller, bookingID int64) (*domain.BookingDetails, error)
	ListMyBookings(ctx context.Context, caller domain.Caller) ([]domain.BookingDetails, error)
	ListAllBookings(ctx context.Context, caller domain.Caller) ([]domain.BookingDetails, error)
	ExpireStaleBookings(ctx context.Context) (int, error)
}

// Cache guards a seat against parallel booking attempts before the database is touched.
type Cache interface {
	AcquireSeatLock(ctx context.Context, flightID, seatID int64, ttl time.Duration) (bool, error)
	ReleaseSeatLock(ctx context.Context, flightID, seatID int64) error
}

type CreateBookingInput struct {
	FlightID  int64                 `json:"flight_id"`
	SeatID    int64                 `json:"seat_id"`
	Passenger *domain.PassengerData `json:"passenger,omitempty"`
}

type BookingService struct {
	tx          repository.Transactor
	flights     repository.FlightRepository
	seats       repository.SeatRepository
	bookings    repository.BookingRepository
	profiles    repository.ProfileRepository
	ledger      *seats.Ledger
	cache       Cache
	notifier    notify.Emitter
	clock       clock.Clock
	log         *zap.Logger
	seatLockTTL time.Duration
}

type BookingServiceOption func(*BookingService)

func WithCache(c Cache, ttl time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = c
		if ttl > 0 {
			s.seatLockTTL = ttl
		}
	}
}

func WithNotifier(n notify.Emitter) BookingServiceOption {
	return func(s *BookingService) {
		s.notifier = n
	}
}

func NewBookingService(
	store repository.Store,
	ledger *seats.Ledger,
	clk clock.Clock,
	log *zap.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	s := &BookingService{
		tx:          store.Tx,
		flights:     store.Flights,
		seats:       store.Seats,
		bookings:    store.Bookings,
		profiles:    store.Profiles,
		ledger:      ledger,
		clock:       clk,
		log:         log.With(zap.String("service", "booking")),
		seatLockTTL: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BookingService) CreateBooking(ctx context.Context, caller domain.Caller, input CreateBookingInput) (*domain.BookingDetails, error) {
	if input.FlightID <= 0 || input.SeatID <= 0 {
		return nil, &domain.ValidationError{Err: domain.ErrInvalidInput, Fields: map[string]string{"seat_id": "flight_id and seat_id are required"}}
	}
	passenger, err := s.passengerFor(ctx, caller, input.Passenger)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		ok, err := s.cache.AcquireSeatLock(ctx, input.FlightID, input.SeatID, s.seatLockTTL)
		switch {
		case err != nil:
			s.log.Warn("seat lock unavailable, relying on database", zap.Error(err))
		case !ok:
			return nil, s.contendedSeat(ctx, caller, input.SeatID, domain.ErrSeatHeldByOther)
		default:
			defer func() {
				if err := s.cache.ReleaseSeatLock(context.WithoutCancel(ctx), input.FlightID, input.SeatID); err != nil {
					s.log.Warn("release seat lock", zap.Error(err))
				}
			}()
		}
	}

	var details *domain.BookingDetails
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		now := s.clock.Now()
		flight, err := s.flights.GetByID(ctx, input.FlightID)
		if err != nil {
			return err
		}
		if !flight.Bookable() {
			return domain.ErrFlightNotBookable
		}
		seat, err := s.seats.GetForUpdate(ctx, input.FlightID, input.SeatID)
		if err != nil {
			return err
		}
		if seat.Status == domain.SeatStatusBooked {
			return domain.ErrSeatAlreadyBooked
		}

		if err := s.checkSeatClaim(ctx, caller, seat, now); err != nil {
			return err
		}
		if n, err := s.bookings.PurgeCancelledBySeat(ctx, seat.ID); err != nil {
			return fmt.Errorf("purge cancelled bookings: %w", err)
		} else if n > 0 {
			s.log.Debug("purged cancelled bookings", zap.Int64("seat_id", seat.ID), zap.Int64("count", n))
		}

		b := &domain.Booking{
			Reference:       ids.NewReference(),
			UserID:          caller.UserID,
			FlightID:        flight.ID,
			SeatID:          seat.ID,
			TotalPriceCents: seat.PriceCents(flight.BasePriceCents),
			Status:          domain.BookingStatusCreated,
			Passenger:       passenger,
			CreatedAt:       now,
		}
		if err := s.bookings.Create(ctx, b); err != nil {
			return err
		}
		expires, err := s.ledger.Claim(ctx, seat.ID, now)
		if err != nil {
			return err
		}
		seat.Status = domain.SeatStatusHeld
		seat.HoldExpiresAt = &expires

		details = &domain.BookingDetails{Booking: *b, Seat: *seat, Flight: *flight, SeatPriceCents: b.TotalPriceCents}
		return nil
	})
	if errors.Is(err, domain.ErrConcurrentUpdate) || errors.Is(err, domain.ErrSeatTaken) {
		err = s.contendedSeat(ctx, caller, input.SeatID, err)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("booking created",
		zap.String("reference", details.Booking.Reference),
		zap.Int64("user_id", caller.UserID),
		zap.Int64("flight_id", details.Flight.ID),
		zap.String("seat", details.Seat.Designator()),
		zap.Int64("price_cents", details.Booking.TotalPriceCents))
	return details, nil
}

// checkSeatClaim rejects the request when a live booking already claims the seat.
// An unpaid booking past its grace period is cancelled instead.
func (s *BookingService) checkSeatClaim(ctx context.Context, caller domain.Caller, seat *domain.Seat, now time.Time) error {
	active, err := s.bookings.FindActiveBySeat(ctx, seat.ID)
	if err != nil || active == nil {
		return err
	}
	if active.Expired(now, s.ledger.PaymentGrace()) {
		if err := s.ledger.CancelBooking(ctx, active, now); err != nil {
			return err
		}
		s.log.Info("booking expired", zap.String("reference", active.Reference))
		seat.Status = domain.SeatStatusAvailable
		seat.HoldExpiresAt = nil
		return nil
	}

	return claimError(caller, active)
}

// contendedSeat explains a lost race for the seat from the booking that now claims it.
// fallback is returned when no live booking is visible, e.g. a serialization failure
// unrelated to this seat or a competitor whose transaction has not committed yet.
func (s *BookingService) contendedSeat(ctx context.Context, caller domain.Caller, seatID int64, fallback error) error {
	active, err := s.bookings.FindActiveBySeat(ctx, seatID)
	if err != nil {
		s.log.Warn("look up seat claim", zap.Int64("seat_id", seatID), zap.Error(err))
		return fallback
	}
	if active == nil {
		return fallback
	}
	return claimError(caller, active)
}

func claimError(caller domain.Caller, active *domain.Booking) error {
	mine := active.UserID == caller.UserID
	switch {
	case mine && active.Status == domain.BookingStatusCreated:
		return &domain.BookingConflictError{Err: domain.ErrDuplicatePendingBooking, BookingID: active.ID, Reference: active.Reference}
	case mine:
		return &domain.BookingConflictError{Err: domain.ErrAlreadyBooked, BookingID: active.ID, Reference: active.Reference}
	case active.Status == domain.BookingStatusCreated:
		return domain.ErrSeatHeldByOther
	default:
		return domain.ErrSeatTaken
	}
}

// passengerFor returns inline passenger data when supplied, otherwise the caller's saved profile.
func (s *BookingService) passengerFor(ctx context.Context, caller domain.Caller, inline *domain.PassengerData) (*domain.PassengerData, error) {
	if inline != nil && !inline.Empty() {
		if fields := validation.Struct(inline); fields != nil {
			return nil, &domain.ValidationError{Err: domain.ErrInvalidPassengerData, Fields: fields}
		}
		p := *inline
		p.DateOfBirth = p.DateOfBirth.UTC()
		return &p, nil
	}

	profile, err := s.profiles.Get(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if profile == nil || !profile.Complete() {
		return nil, domain.ErrProfileRequired
	}
	p := profile.PassengerData
	return &p, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, caller domain.Caller, bookingID int64) (*domain.Booking, error) {
	return s.cancel(ctx, caller, bookingID, true)
}

func (s *BookingService) CancelBookingAsStaff(ctx context.Context, caller domain.Caller, bookingID int64) (*domain.Booking, error) {
	if !caller.IsStaff() {
		return nil, domain.ErrNotAuthorized
	}
	return s.cancel(ctx, caller, bookingID, false)
}

// cancel frees the seat. A paid booking keeps its PAID payment; there is no refund.
func (s *BookingService) cancel(ctx context.Context, caller domain.Caller, bookingID int64, checkOwner bool) (*domain.Booking, error) {
	var b *domain.Booking
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.bookings.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if checkOwner && b.UserID != caller.UserID {
			return domain.ErrNotAuthorized
		}
		flight, err := s.flights.GetByID(ctx, b.FlightID)
		if err != nil {
			return err
		}
		if flight.HasDeparted() {
			return domain.ErrFlightDeparted
		}
		if !b.Active() {
			return domain.ErrNotCancellable
		}
		return s.ledger.CancelBooking(ctx, b, s.clock.Now())
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("booking cancelled",
		zap.String("reference", b.Reference),
		zap.Int64("by_user_id", caller.UserID),
		zap.Bool("staff", !checkOwner))
	return b, nil
}

// ReassignSeat moves a live booking to another seat on the same flight and reprices it.
func (s *BookingService) ReassignSeat(ctx context.Context, caller domain.Caller, bookingID, seatID int64) (*domain.BookingDetails, error) {
	if !caller.IsStaff() {
		return nil, domain.ErrNotAuthorized
	}

	var (
		details *domain.BookingDetails
		oldSeat string
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		now := s.clock.Now()
		b, err := s.bookings.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if !b.Active() {
			return domain.ErrBookingNotActive
		}
		if b.SeatID == seatID {
			return domain.ErrSameSeat
		}
		flight, err := s.flights.GetByID(ctx, b.FlightID)
		if err != nil {
			return err
		}
		if flight.HasDeparted() {
			return domain.ErrFlightDeparted
		}

		current, err := s.seats.GetForUpdate(ctx, b.FlightID, b.SeatID)
		if err != nil {
			return err
		}
		target, err := s.seats.GetForUpdate(ctx, b.FlightID, seatID)
		if err != nil {
			return err
		}
		if err := s.ledger.Resolve(ctx, target, now); err != nil {
			return err
		}
		claim, err := s.bookings.FindActiveBySeat(ctx, target.ID)
		if err != nil {
			return err
		}
		if claim != nil || target.Status != domain.SeatStatusAvailable {
			return domain.ErrSeatTaken
		}

		if err := s.ledger.Release(ctx, current.ID); err != nil {
			return err
		}
		price := target.PriceCents(flight.BasePriceCents)
		if err := s.bookings.UpdateSeat(ctx, b.ID, target.ID, price, now); err != nil {
			return err
		}
		if b.Status == domain.BookingStatusConfirmed {
			if err := s.ledger.Book(ctx, target.ID); err != nil {
				return err
			}
			target.Status = domain.SeatStatusBooked
			target.HoldExpiresAt = nil
		} else {
			expires, err := s.ledger.Claim(ctx, target.ID, now)
			if err != nil {
				return err
			}
			target.Status = domain.SeatStatusHeld
			target.HoldExpiresAt = &expires
		}

		b.SeatID = target.ID
		b.TotalPriceCents = price
		b.UpdatedAt = now
		oldSeat = current.Designator()
		details = &domain.BookingDetails{Booking: *b, Seat: *target, Flight: *flight, SeatPriceCents: price}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("seat reassigned",
		zap.String("reference", details.Booking.Reference),
		zap.String("from", oldSeat),
		zap.String("to", details.Seat.Designator()))
	notify.Send(ctx, s.notifier, s.log, notify.Notification{
		FlightID: notify.Int64(details.Flight.ID),
		UserID:   notify.Int64(details.Booking.UserID),
		Type:     domain.AnnouncementGeneral,
		Title:    fmt.Sprintf("Seat change for flight %s", details.Flight.FlightNumber),
		Message: fmt.Sprintf("Your seat on booking %s was changed from %s to %s.",
			details.Booking.Reference, oldSeat, details.Seat.Designator()),
	})
	return details, nil
}

func (s *BookingService) GetBooking(ctx context.Context, caller domain.Caller, bookingID int64) (*domain.BookingDetails, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != caller.UserID && !caller.IsStaff() {
		return nil, domain.ErrNotAuthorized
	}
	if err := s.expireIfStale(ctx, b); err != nil {
		return nil, err
	}
	out, err := s.describe(ctx, []domain.Booking{*b})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *BookingService) ListMyBookings(ctx context.Context, caller domain.Caller) ([]domain.BookingDetails, error) {
	list, err := s.bookings.ListByUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return s.expireAndDescribe(ctx, list)
}

func (s *BookingService) ListAllBookings(ctx context.Context, caller domain.Caller) ([]domain.BookingDetails, error) {
	if !caller.IsStaff() {
		return nil, domain.ErrNotAuthorized
	}
	list, err := s.bookings.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.expireAndDescribe(ctx, list)
}

// ExpireStaleBookings cancels every unpaid booking past its grace period and returns how many it cancelled.
func (s *BookingService) ExpireStaleBookings(ctx context.Context) (int, error) {
	now := s.clock.Now()
	stale, err := s.bookings.ListExpiredCreated(ctx, now.Add(-s.ledger.PaymentGrace()))
	if err != nil {
		return 0, err
	}
	n := 0
	for i := range stale {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		before := stale[i].Status
		if err := s.expireIfStale(ctx, &stale[i]); err != nil {
			s.log.Warn("expire booking", zap.String("reference", stale[i].Reference), zap.Error(err))
			continue
		}
		if before != stale[i].Status {
			n++
		}
	}
	if n > 0 {
		s.log.Info("expired unpaid bookings", zap.Int("count", n))
	}
	return n, nil
}

func (s *BookingService) expireAndDescribe(ctx context.Context, list []domain.Booking) ([]domain.BookingDetails, error) {
	for i := range list {
		if err := s.expireIfStale(ctx, &list[i]); err != nil {
			return nil, err
		}
	}
	return s.describe(ctx, list)
}

// expireIfStale cancels b when it is an unpaid booking past its grace period. b is updated in place.
func (s *BookingService) expireIfStale(ctx context.Context, b *domain.Booking) error {
	if !b.Expired(s.clock.Now(), s.ledger.PaymentGrace()) {
		return nil
	}
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		now := s.clock.Now()
		locked, err := s.bookings.GetForUpdate(ctx, b.ID)
		if err != nil {
			return err
		}
		if !locked.Expired(now, s.ledger.PaymentGrace()) {
			*b = *locked
			return nil
		}
		if err := s.ledger.CancelBooking(ctx, locked, now); err != nil {
			return err
		}
		*b = *locked
		return nil
	})
	if errors.Is(err, domain.ErrConcurrentUpdate) {
		// Lost to a payment or another expiry; report what is stored now.
		fresh, gerr := s.bookings.GetByID(ctx, b.ID)
		if gerr != nil {
			return gerr
		}
		*b = *fresh
		return nil
	}
	return err
}

func (s *BookingService) describe(ctx context.Context, list []domain.Booking) ([]domain.BookingDetails, error) {
	flights := make(map[int64]*domain.Flight)
	out := make([]domain.BookingDetails, 0, len(list))
	for _, b := range list {
		flight, ok := flights[b.FlightID]
		if !ok {
			var err error
			if flight, err = s.flights.GetByID(ctx, b.FlightID); err != nil {
				return nil, err
			}
			flights[b.FlightID] = flight
		}
		seat, err := s.seats.Get(ctx, b.FlightID, b.SeatID)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.BookingDetails{
			Booking:        b,
			Seat:           *seat,
			Flight:         *flight,
			SeatPriceCents: seat.PriceCents(flight.BasePriceCents),
		})
	}
	return out, nil
}

var _ BookingUseCase = (*BookingService)(nil)
