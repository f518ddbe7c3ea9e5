// Package checkin enforces the check-in window and composes boarding passes.
package checkin

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/seatflow/internal/clock"
	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/Domenick1991/seatflow/internal/repository"
	"github.com/Domenick1991/seatflow/internal/service/payment"
	"go.uber.org/zap"
)

type CheckInUseCase interface {
	CheckIn(ctx context.Context, caller domain.Caller, bookingID int64) (*domain.CheckIn, error)
	GetBoardingPass(ctx context.Context, caller domain.Caller, bookingID int64) (*domain.BoardingPass, error)
}

// Policy holds the check-in window and gate formatting rules.
type Policy struct {
	OpensBefore     time.Duration
	ClosesBefore    time.Duration
	BoardingOffset  time.Duration
	GatePrefix      string
	GatePlaceholder string
}

func DefaultPolicy() Policy {
	return Policy{
		OpensBefore:     24 * time.Hour,
		ClosesBefore:    time.Hour,
		BoardingOffset:  30 * time.Minute,
		GatePrefix:      "Gate ",
		GatePlaceholder: "TBA",
	}
}

// Gate formats a flight gate for passengers.
func (p Policy) Gate(gate string) string {
	if gate == "" {
		return p.GatePlaceholder
	}
	return p.GatePrefix + gate
}

func (p Policy) BoardingTime(departure time.Time) time.Time {
	return departure.Add(-p.BoardingOffset)
}

// Window checks that departure is more than ClosesBefore and at most OpensBefore away.
func (p Policy) Window(departure, now time.Time) error {
	until := departure.Sub(now)
	switch {
	case until > p.OpensBefore:
		return &domain.CheckInWindowError{Err: domain.ErrCheckInTooEarly, HoursUntilDeparture: until.Hours()}
	case until <= p.ClosesBefore:
		return &domain.CheckInWindowError{Err: domain.ErrCheckInClosed, HoursUntilDeparture: until.Hours()}
	}
	return nil
}

type CheckInService struct {
	tx       repository.Transactor
	flights  repository.FlightRepository
	seats    repository.SeatRepository
	bookings repository.BookingRepository
	payments repository.PaymentRepository
	checkIns repository.CheckInRepository
	profiles repository.ProfileRepository
	settler  *payment.PaymentService
	policy   Policy
	clock    clock.Clock
	log      *zap.Logger
}

func NewCheckInService(store repository.Store, settler *payment.PaymentService, policy Policy, clk clock.Clock, log *zap.Logger) *CheckInService {
	return &CheckInService{
		tx:       store.Tx,
		flights:  store.Flights,
		seats:    store.Seats,
		bookings: store.Bookings,
		payments: store.Payments,
		checkIns: store.CheckIns,
		profiles: store.Profiles,
		settler:  settler,
		policy:   policy,
		clock:    clk,
		log:      log.With(zap.String("service", "checkin")),
	}
}

// CheckIn records the passenger as checked in. Calling it again returns the existing record.
func (s *CheckInService) CheckIn(ctx context.Context, caller domain.Caller, bookingID int64) (*domain.CheckIn, error) {
	var (
		record  *domain.CheckIn
		created bool
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		now := s.clock.Now()
		b, err := s.bookings.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.UserID != caller.UserID {
			return domain.ErrNotAuthorized
		}
		if b.Status == domain.BookingStatusCancelled {
			return domain.ErrBookingNotActive
		}

		if record, err = s.checkIns.GetByBooking(ctx, b.ID); err != nil || record != nil {
			return err
		}

		p, err := s.payments.GetByBooking(ctx, b.ID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrPaymentRequired
		}
		if p.Status != domain.PaymentStatusPaid {
			if _, err := s.settler.Settle(ctx, b, p, now); err != nil {
				return err
			}
			s.log.Info("pending payment settled at check-in", zap.Int64("booking_id", b.ID))
		}

		flight, err := s.flights.GetByID(ctx, b.FlightID)
		if err != nil {
			return err
		}
		if err := s.policy.Window(flight.DepartureTime, now); err != nil {
			return err
		}

		record = &domain.CheckIn{
			BookingID:    b.ID,
			CheckedInAt:  now,
			BoardingGate: s.policy.Gate(flight.Gate),
			BoardingTime: s.policy.BoardingTime(flight.DepartureTime),
		}
		created = true
		return s.checkIns.Create(ctx, record)
	})
	if err != nil {
		return nil, err
	}
	if created {
		s.log.Info("checked in",
			zap.Int64("booking_id", bookingID),
			zap.String("gate", record.BoardingGate),
			zap.Time("boarding_time", record.BoardingTime))
	}
	return record, nil
}

// GetBoardingPass always shows the flight's current gate and times.
func (s *CheckInService) GetBoardingPass(ctx context.Context, caller domain.Caller, bookingID int64) (*domain.BoardingPass, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != caller.UserID {
		return nil, domain.ErrNotAuthorized
	}
	if !b.Active() {
		return nil, domain.ErrBookingNotActive
	}
	record, err := s.checkIns.GetByBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrCheckInRequired
	}
	ticket, err := s.payments.GetTicket(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, domain.ErrTicketMissing
	}

	flight, err := s.flights.GetByID(ctx, b.FlightID)
	if err != nil {
		return nil, err
	}
	seat, err := s.seats.Get(ctx, b.FlightID, b.SeatID)
	if err != nil {
		return nil, err
	}
	name, err := s.passengerName(ctx, b)
	if err != nil {
		return nil, err
	}

	return &domain.BoardingPass{
		QRPayload:     fmt.Sprintf("%s|%s|%s|%s", b.Reference, ticket.Number, flight.FlightNumber, seat.Designator()),
		Reference:     b.Reference,
		TicketNumber:  ticket.Number,
		PassengerName: name,
		FlightNumber:  flight.FlightNumber,
		FromAirport:   flight.FromAirport,
		ToAirport:     flight.ToAirport,
		DepartureTime: flight.DepartureTime,
		ArrivalTime:   flight.ArrivalTime,
		Seat:          seat.Designator(),
		SeatClass:     seat.Class,
		Gate:          s.policy.Gate(flight.Gate),
		Terminal:      flight.Terminal,
		BoardingTime:  s.policy.BoardingTime(flight.DepartureTime),
	}, nil
}

func (s *CheckInService) passengerName(ctx context.Context, b *domain.Booking) (string, error) {
	if b.Passenger != nil && !b.Passenger.Empty() {
		return b.Passenger.FullName(), nil
	}
	profile, err := s.profiles.Get(ctx, b.UserID)
	if err != nil || profile == nil {
		return "", err
	}
	return profile.FullName(), nil
}

var _ CheckInUseCase = (*CheckInService)(nil)
