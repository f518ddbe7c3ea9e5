package api

import (
	"context"

	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/Domenick1991/seatflow/internal/notify"
	"github.com/Domenick1991/seatflow/internal/service/booking"
	"github.com/Domenick1991/seatflow/internal/service/flights"
	"github.com/Domenick1991/seatflow/internal/service/seats"
	"github.com/stretchr/testify/mock"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) details(args mock.Arguments) (*domain.BookingDetails, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingDetails), args.Error(1)
}

func (m *MockBookingUseCase) booking(args mock.Arguments) (*domain.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, caller domain.Caller, input booking.CreateBookingInput) (*domain.BookingDetails, error) {
	return m.details(m.Called(ctx, caller, input))
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, caller domain.Caller, bookingID int64) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, caller, bookingID))
}

func (m *MockBookingUseCase) CancelBookingAsStaff(ctx context.Context, caller domain.Caller, bookingID int64) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, caller, bookingID))
}

func (m *MockBookingUseCase) ReassignSeat(ctx context.Context, caller domain.Caller, bookingID, seatID int64) (*domain.BookingDetails, error) {
	return m.details(m.Called(ctx, caller, bookingID, seatID))
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, caller domain.Caller, bookingID int64) (*domain.BookingDetails, error) {
	return m.details(m.Called(ctx, caller, bookingID))
}

func (m *MockBookingUseCase) ListMyBookings(ctx context.Context, caller domain.Caller) ([]domain.BookingDetails, error) {
	args := m.Called(ctx, caller)
	return args.Get(0).([]domain.BookingDetails), args.Error(1)
}

func (m *MockBookingUseCase) ListAllBookings(ctx context.Context, caller domain.Caller) ([]domain.BookingDetails, error) {
	args := m.Called(ctx, caller)
	return args.Get(0).([]domain.BookingDetails), args.Error(1)
}

func (m *MockBookingUseCase) ExpireStaleBookings(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockPaymentUseCase struct {
	mock.Mock
}

func (m *MockPaymentUseCase) Pay(ctx context.Context, caller domain.Caller, bookingID int64, method string) (*domain.Payment, error) {
	args := m.Called(ctx, caller, bookingID, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentUseCase) PaymentHistory(ctx context.Context, caller domain.Caller) ([]domain.Payment, error) {
	args := m.Called(ctx, caller)
	return args.Get(0).([]domain.Payment), args.Error(1)
}

type MockCheckInUseCase struct {
	mock.Mock
}

func (m *MockCheckInUseCase) CheckIn(ctx context.Context, caller domain.Caller, bookingID int64) (*domain.CheckIn, error) {
	args := m.Called(ctx, caller, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckIn), args.Error(1)
}

func (m *MockCheckInUseCase) GetBoardingPass(ctx context.Context, caller domain.Caller, bookingID int64) (*domain.BoardingPass, error) {
	args := m.Called(ctx, caller, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BoardingPass), args.Error(1)
}

type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) flight(args mock.Arguments) (*domain.Flight, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return m.flight(m.Called(ctx, id))
}

func (m *MockFlightUseCase) CreateFlight(ctx context.Context, caller domain.Caller, input flights.CreateFlightInput) (*domain.Flight, error) {
	return m.flight(m.Called(ctx, caller, input))
}

func (m *MockFlightUseCase) DeleteFlight(ctx context.Context, caller domain.Caller, id int64) error {
	return m.Called(ctx, caller, id).Error(0)
}

func (m *MockFlightUseCase) UpdateSeatPricing(ctx context.Context, caller domain.Caller, flightID, seatID int64, input flights.SeatPricingInput) (*domain.Seat, error) {
	args := m.Called(ctx, caller, flightID, seatID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Seat), args.Error(1)
}

func (m *MockFlightUseCase) UpdateStatus(ctx context.Context, caller domain.Caller, id int64, status string) (*domain.Flight, error) {
	return m.flight(m.Called(ctx, caller, id, status))
}

func (m *MockFlightUseCase) UpdateGate(ctx context.Context, caller domain.Caller, id int64, input flights.GateInput) (*domain.Flight, error) {
	return m.flight(m.Called(ctx, caller, id, input))
}

func (m *MockFlightUseCase) UpdateSchedule(ctx context.Context, caller domain.Caller, id int64, input flights.ScheduleInput) (*domain.Flight, error) {
	return m.flight(m.Called(ctx, caller, id, input))
}

func (m *MockFlightUseCase) AdvanceStatuses(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockSeatUseCase struct {
	mock.Mock
}

func (m *MockSeatUseCase) HoldSeat(ctx context.Context, caller domain.Caller, flightID, seatID int64) (*seats.Hold, error) {
	args := m.Called(ctx, caller, flightID, seatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seats.Hold), args.Error(1)
}

func (m *MockSeatUseCase) ReleaseSeatHold(ctx context.Context, caller domain.Caller, flightID, seatID int64) error {
	return m.Called(ctx, caller, flightID, seatID).Error(0)
}

func (m *MockSeatUseCase) QuerySeatStatus(ctx context.Context, flightID, seatID int64) (*seats.SeatView, error) {
	args := m.Called(ctx, flightID, seatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seats.SeatView), args.Error(1)
}

func (m *MockSeatUseCase) ListSeats(ctx context.Context, flightID int64) ([]seats.SeatView, error) {
	args := m.Called(ctx, flightID)
	return args.Get(0).([]seats.SeatView), args.Error(1)
}

type MockNotifyUseCase struct {
	mock.Mock
}

func (m *MockNotifyUseCase) Notify(ctx context.Context, n notify.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNotifyUseCase) ListForUser(ctx context.Context, userID int64) ([]domain.Announcement, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Announcement), args.Error(1)
}

func (m *MockNotifyUseCase) ListAll(ctx context.Context) ([]domain.Announcement, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Announcement), args.Error(1)
}

func (m *MockNotifyUseCase) CreateAnnouncement(ctx context.Context, caller domain.Caller, input notify.CreateAnnouncementInput) (*domain.Announcement, error) {
	args := m.Called(ctx, caller, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Announcement), args.Error(1)
}

type MockProfileUseCase struct {
	mock.Mock
}

func (m *MockProfileUseCase) GetProfile(ctx context.Context, caller domain.Caller) (*domain.PassengerProfile, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PassengerProfile), args.Error(1)
}

func (m *MockProfileUseCase) SaveProfile(ctx context.Context, caller domain.Caller, data domain.PassengerData) (*domain.PassengerProfile, error) {
	args := m.Called(ctx, caller, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PassengerProfile), args.Error(1)
}

// tokenAuth accepts "<name>" tokens from a fixed table.
type tokenAuth map[string]domain.Caller

func (a tokenAuth) CurrentUser(token string) (domain.Caller, error) {
	caller, ok := a[token]
	if !ok {
		return domain.Caller{}, domain.ErrNotAuthorized
	}
	return caller, nil
}
