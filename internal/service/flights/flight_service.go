package flights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/seatflow/internal/clock"
	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/Domenick1991/seatflow/internal/notify"
	"github.com/Domenick1991/seatflow/internal/repository"
	"github.com/Domenick1991/seatflow/internal/seatmap"
	"github.com/Domenick1991/seatflow/internal/service/checkin"
	"github.com/Domenick1991/seatflow/internal/validation"
	"go.uber.org/zap"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	CreateFlight(ctx context.Context, caller domain.Caller, input CreateFlightInput) (*domain.Flight, error)
	DeleteFlight(ctx context.Context, caller domain.Caller, id int64) error
	UpdateSeatPricing(ctx context.Context, caller domain.Caller, flightID, seatID int64, input SeatPricingInput) (*domain.Seat, error)
	UpdateStatus(ctx context.Context, caller domain.Caller, id int64, status string) (*domain.Flight, error)
	UpdateGate(ctx context.Context, caller domain.Caller, id int64, input GateInput) (*domain.Flight, error)
	UpdateSchedule(ctx context.Context, caller domain.Caller, id int64, input ScheduleInput) (*domain.Flight, error)
	AdvanceStatuses(ctx context.Context) (int, error)
}

// FlightCache keeps the flight list close to the API.
type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type CreateFlightInput struct {
	FlightNumber   string          `json:"flight_number" validate:"required,max=10"`
	FromAirport    string          `json:"from_airport" validate:"required,len=3"`
	ToAirport      string          `json:"to_airport" validate:"required,len=3,nefield=FromAirport"`
	DepartureTime  time.Time       `json:"departure_time" validate:"required"`
	ArrivalTime    time.Time       `json:"arrival_time" validate:"required,gtfield=DepartureTime"`
	BasePriceCents int64           `json:"base_price_cents" validate:"gt=0"`
	Gate           string          `json:"gate" validate:"max=10"`
	Terminal       string          `json:"terminal" validate:"max=10"`
	Aircraft       string          `json:"aircraft"`
	Layout         *seatmap.Layout `json:"layout,omitempty"`
}

type SeatPricingInput struct {
	Class      domain.SeatClass    `json:"class" validate:"omitempty,oneof=ECONOMY BUSINESS"`
	Category   domain.SeatCategory `json:"category" validate:"omitempty,oneof=STANDARD EXTRA_LEGROOM"`
	Multiplier float64             `json:"price_multiplier" validate:"gt=0"`
}

type GateInput struct {
	Gate     string `json:"gate" validate:"required,max=10"`
	Terminal string `json:"terminal" validate:"max=10"`
}

type ScheduleInput struct {
	DepartureTime time.Time `json:"departure_time" validate:"required"`
	ArrivalTime   time.Time `json:"arrival_time" validate:"required"`
}

type FlightService struct {
	tx            repository.Transactor
	repo          repository.FlightRepository
	seats         repository.SeatRepository
	bookings      repository.BookingRepository
	checkIns      repository.CheckInRepository
	cache         FlightCache
	notifier      notify.Emitter
	layouts       map[string]seatmap.Layout
	defaultLayout seatmap.Layout
	policy        checkin.Policy
	clock         clock.Clock
	log           *zap.Logger
}

type FlightServiceOption func(*FlightService)

func WithCache(c FlightCache) FlightServiceOption {
	return func(s *FlightService) {
		s.cache = c
	}
}

func WithNotifier(n notify.Emitter) FlightServiceOption {
	return func(s *FlightService) {
		s.notifier = n
	}
}

// WithLayouts registers named aircraft layouts selectable by CreateFlightInput.Aircraft.
func WithLayouts(layouts map[string]seatmap.Layout) FlightServiceOption {
	return func(s *FlightService) {
		s.layouts = layouts
	}
}

func WithCheckInPolicy(p checkin.Policy) FlightServiceOption {
	return func(s *FlightService) {
		s.policy = p
	}
}

func NewFlightService(store repository.Store, clk clock.Clock, log *zap.Logger, opts ...FlightServiceOption) *FlightService {
	s := &FlightService{
		tx:            store.Tx,
		repo:          store.Flights,
		seats:         store.Seats,
		bookings:      store.Bookings,
		checkIns:      store.CheckIns,
		defaultLayout: seatmap.Layout{Rows: 30, SeatsPerRow: 6},
		policy:        checkin.DefaultPolicy(),
		clock:         clk,
		log:           log.With(zap.String("service", "flights")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		cached, err := s.cache.GetFlights(ctx)
		if err != nil {
			s.log.Warn("flight cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			s.log.Warn("flight cache write failed", zap.Error(err))
		}
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateFlight stores the flight and materialises its seat map in one transaction.
func (s *FlightService) CreateFlight(ctx context.Context, caller domain.Caller, input CreateFlightInput) (*domain.Flight, error) {
	if !caller.IsStaff() {
		return nil, domain.ErrNotAuthorized
	}
	input.FlightNumber = strings.ToUpper(strings.TrimSpace(input.FlightNumber))
	input.FromAirport = strings.ToUpper(strings.TrimSpace(input.FromAirport))
	input.ToAirport = strings.ToUpper(strings.TrimSpace(input.ToAirport))
	if fields := validation.Struct(input); fields != nil {
		return nil, &domain.ValidationError{Err: domain.ErrInvalidInput, Fields: fields}
	}

	layout, err := s.layoutFor(input)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	flight := &domain.Flight{
		FlightNumber:   input.FlightNumber,
		FromAirport:    input.FromAirport,
		ToAirport:      input.ToAirport,
		DepartureTime:  input.DepartureTime.UTC(),
		ArrivalTime:    input.ArrivalTime.UTC(),
		BasePriceCents: input.BasePriceCents,
		Status:         domain.FlightStatusScheduled,
		Gate:           input.Gate,
		Terminal:       input.Terminal,
		CreatedAt:      now,
	}
	var seatCount int
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, flight); err != nil {
			return err
		}
		seats, err := layout.Build(flight.ID)
		if err != nil {
			return err
		}
		seatCount = len(seats)
		return s.seats.CreateBatch(ctx, seats)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.log.Info("flight created",
		zap.Int64("flight_id", flight.ID),
		zap.String("flight_number", flight.FlightNumber),
		zap.Int("seats", seatCount))
	return flight, nil
}

func (s *FlightService) layoutFor(input CreateFlightInput) (seatmap.Layout, error) {
	if input.Layout != nil {
		return *input.Layout, nil
	}
	if input.Aircraft == "" {
		return s.defaultLayout, nil
	}
	layout, ok := s.layouts[input.Aircraft]
	if !ok {
		return seatmap.Layout{}, &domain.ValidationError{
			Err:    domain.ErrInvalidInput,
			Fields: map[string]string{"aircraft": "unknown aircraft layout"},
		}
	}
	return layout, nil
}

// DeleteFlight removes a flight and its seats. Flights with any booking history are kept.
func (s *FlightService) DeleteFlight(ctx context.Context, caller domain.Caller, id int64) error {
	if !caller.IsStaff() {
		return domain.ErrNotAuthorized
	}
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetForUpdate(ctx, id); err != nil {
			return err
		}
		n, err := s.bookings.CountByFlight(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrFlightHasBookings
		}
		if err := s.seats.DeleteByFlight(ctx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	s.log.Info("flight deleted", zap.Int64("flight_id", id))
	return nil
}

// UpdateSeatPricing changes a seat's class and multiplier. Prices of existing bookings stay as booked.
func (s *FlightService) UpdateSeatPricing(ctx context.Context, caller domain.Caller, flightID, seatID int64, input SeatPricingInput) (*domain.Seat, error) {
	if !caller.IsStaff() {
		return nil, domain.ErrNotAuthorized
	}
	if fields := validation.Struct(input); fields != nil {
		return nil, &domain.ValidationError{Err: domain.ErrInvalidInput, Fields: fields}
	}

	var seat *domain.Seat
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		seat, err = s.seats.GetForUpdate(ctx, flightID, seatID)
		if err != nil {
			return err
		}
		if input.Class != "" {
			seat.Class = input.Class
		}
		if input.Category != "" {
			seat.Category = input.Category
		}
		seat.PriceMultiplier = input.Multiplier
		return s.seats.UpdatePricing(ctx, seat.ID, seat.Class, seat.Category, seat.PriceMultiplier)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("seat pricing updated",
		zap.Int64("flight_id", flightID),
		zap.String("seat", seat.Designator()),
		zap.Float64("multiplier", seat.PriceMultiplier))
	return seat, nil
}

func (s *FlightService) UpdateStatus(ctx context.Context, caller domain.Caller, id int64, status string) (*domain.Flight, error) {
	if !caller.IsStaff() {
		return nil, domain.ErrNotAuthorized
	}
	target, err := domain.ParseFlightStatus(status)
	if err != nil {
		return nil, err
	}

	var (
		flight  *domain.Flight
		changed bool
	)
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		flight, err = s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if flight.Status == target {
			return nil
		}
		now := s.clock.Now()
		if err := s.repo.UpdateStatus(ctx, id, target, now); err != nil {
			return err
		}
		flight.Status = target
		flight.UpdatedAt = now
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.invalidate(ctx)
		s.log.Info("flight status changed", zap.Int64("flight_id", id), zap.String("status", string(target)))
		s.notifyPassengers(ctx, flight, statusNotification(flight))
	}
	return flight, nil
}

// UpdateGate moves the flight to a new gate and rewrites the gate on every check-in for it.
func (s *FlightService) UpdateGate(ctx context.Context, caller domain.Caller, id int64, input GateInput) (*domain.Flight, error) {
	if !caller.IsStaff() {
		return nil, domain.ErrNotAuthorized
	}
	input.Gate = strings.ToUpper(strings.TrimSpace(input.Gate))
	input.Terminal = strings.TrimSpace(input.Terminal)
	if fields := validation.Struct(input); fields != nil {
		return nil, &domain.ValidationError{Err: domain.ErrInvalidInput, Fields: fields}
	}

	var (
		flight  *domain.Flight
		updated int64
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		flight, err = s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		if err := s.repo.UpdateGate(ctx, id, input.Gate, input.Terminal, now); err != nil {
			return err
		}
		flight.Gate = input.Gate
		flight.Terminal = input.Terminal
		flight.UpdatedAt = now
		updated, err = s.checkIns.UpdateGateForFlight(ctx, id, s.policy.Gate(input.Gate))
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.log.Info("flight gate changed",
		zap.Int64("flight_id", id),
		zap.String("gate", flight.Gate),
		zap.String("terminal", flight.Terminal),
		zap.Int64("check_ins_updated", updated))
	msg := fmt.Sprintf("Flight %s now departs from %s", flight.FlightNumber, s.policy.Gate(flight.Gate))
	if flight.Terminal != "" {
		msg += ", terminal " + flight.Terminal
	}
	s.notifyPassengers(ctx, flight, notify.Notification{
		Type:    domain.AnnouncementGateChange,
		Title:   fmt.Sprintf("Gate change for flight %s", flight.FlightNumber),
		Message: msg + ".",
	})
	return flight, nil
}

func (s *FlightService) UpdateSchedule(ctx context.Context, caller domain.Caller, id int64, input ScheduleInput) (*domain.Flight, error) {
	if !caller.IsStaff() {
		return nil, domain.ErrNotAuthorized
	}
	if fields := validation.Struct(input); fields != nil {
		return nil, &domain.ValidationError{Err: domain.ErrInvalidInput, Fields: fields}
	}
	departure, arrival := input.DepartureTime.UTC(), input.ArrivalTime.UTC()
	if !arrival.After(departure) {
		return nil, domain.ErrInvalidSchedule
	}

	var flight *domain.Flight
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		flight, err = s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		if err := s.repo.UpdateSchedule(ctx, id, departure, arrival, now); err != nil {
			return err
		}
		flight.DepartureTime = departure
		flight.ArrivalTime = arrival
		flight.UpdatedAt = now
		_, err = s.checkIns.UpdateBoardingTimeForFlight(ctx, id, s.policy.BoardingTime(departure))
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.log.Info("flight rescheduled",
		zap.Int64("flight_id", id),
		zap.Time("departure", departure),
		zap.Time("arrival", arrival))
	s.notifyPassengers(ctx, flight, notify.Notification{
		Type:  domain.AnnouncementDelay,
		Title: fmt.Sprintf("Schedule change for flight %s", flight.FlightNumber),
		Message: fmt.Sprintf("Flight %s %s-%s now departs %s UTC and arrives %s UTC.",
			flight.FlightNumber, flight.FromAirport, flight.ToAirport,
			departure.Format("2006-01-02 15:04"), arrival.Format("2006-01-02 15:04")),
	})
	return flight, nil
}

// AdvanceStatuses moves due flights to DEPARTED and then ARRIVED. Only one process
// sweeps at a time; the others return 0 without touching anything.
func (s *FlightService) AdvanceStatuses(ctx context.Context) (int, error) {
	var changed []domain.Flight
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		changed = changed[:0]
		ok, err := s.repo.TryLockScheduler(ctx)
		if err != nil || !ok {
			return err
		}
		now := s.clock.Now()

		departing, err := s.repo.ListDepartureDue(ctx, now)
		if err != nil {
			return err
		}
		for _, f := range departing {
			if err := s.repo.UpdateStatus(ctx, f.ID, domain.FlightStatusDeparted, now); err != nil {
				return err
			}
			f.Status = domain.FlightStatusDeparted
			f.UpdatedAt = now
			changed = append(changed, f)
		}

		arriving, err := s.repo.ListArrivalDue(ctx, now)
		if err != nil {
			return err
		}
		for _, f := range arriving {
			if err := s.repo.UpdateStatus(ctx, f.ID, domain.FlightStatusArrived, now); err != nil {
				return err
			}
			f.Status = domain.FlightStatusArrived
			f.UpdatedAt = now
			changed = append(changed, f)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(changed) == 0 {
		return 0, nil
	}

	s.invalidate(ctx)
	for i := range changed {
		f := &changed[i]
		s.log.Info("flight status advanced",
			zap.Int64("flight_id", f.ID),
			zap.String("flight_number", f.FlightNumber),
			zap.String("status", string(f.Status)))
		s.notifyPassengers(ctx, f, statusNotification(f))
	}
	return len(changed), nil
}

// notifyPassengers announces n to the flight's confirmed passengers, if it has any.
func (s *FlightService) notifyPassengers(ctx context.Context, flight *domain.Flight, n notify.Notification) {
	if s.notifier == nil {
		return
	}
	users, err := s.bookings.ListConfirmedUserIDs(ctx, flight.ID)
	if err != nil {
		s.log.Warn("list passengers to notify", zap.Int64("flight_id", flight.ID), zap.Error(err))
		return
	}
	if len(users) == 0 {
		return
	}
	n.FlightID = notify.Int64(flight.ID)
	notify.Send(ctx, s.notifier, s.log, n)
}

func statusNotification(f *domain.Flight) notify.Notification {
	n := notify.Notification{
		Type:  domain.AnnouncementGeneral,
		Title: fmt.Sprintf("Flight %s status update", f.FlightNumber),
	}
	switch f.Status {
	case domain.FlightStatusBoarding:
		n.Type = domain.AnnouncementBoarding
		n.Message = fmt.Sprintf("Flight %s is now boarding.", f.FlightNumber)
	case domain.FlightStatusDelayed:
		n.Type = domain.AnnouncementDelay
		n.Message = fmt.Sprintf("Flight %s is delayed.", f.FlightNumber)
	case domain.FlightStatusCancelled:
		n.Type = domain.AnnouncementCancellation
		n.Message = fmt.Sprintf("Flight %s has been cancelled.", f.FlightNumber)
	case domain.FlightStatusDeparted:
		n.Message = fmt.Sprintf("Flight %s has departed.", f.FlightNumber)
	case domain.FlightStatusArrived:
		n.Message = fmt.Sprintf("Flight %s has arrived at %s.", f.FlightNumber, f.ToAirport)
	default:
		n.Message = fmt.Sprintf("Flight %s is %s.", f.FlightNumber, strings.ToLower(string(f.Status)))
	}
	return n
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		s.log.Warn("flight cache invalidation failed", zap.Error(err))
	}
}

var _ FlightUseCase = (*FlightService)(nil)
