package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/seatflow/internal/domain"
)

// Transactor runs fn inside a transaction carried by the context passed to fn.
// Nested calls join the outer transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	GetForUpdate(ctx context.Context, id int64) (*domain.Flight, error)
	Create(ctx context.Context, flight *domain.Flight) error
	Delete(ctx context.Context, id int64) error
	UpdateStatus(ctx context.Context, id int64, status domain.FlightStatus, now time.Time) error
	UpdateGate(ctx context.Context, id int64, gate, terminal string, now time.Time) error
	UpdateSchedule(ctx context.Context, id int64, departure, arrival time.Time, now time.Time) error
	ListDepartureDue(ctx context.Context, now time.Time) ([]domain.Flight, error)
	ListArrivalDue(ctx context.Context, now time.Time) ([]domain.Flight, error)
	// TryLockScheduler takes a transaction scoped lock so only one process sweeps statuses.
	TryLockScheduler(ctx context.Context) (bool, error)
}

type SeatRepository interface {
	CreateBatch(ctx context.Context, seats []domain.Seat) error
	ListByFlight(ctx context.Context, flightID int64) ([]domain.Seat, error)
	Get(ctx context.Context, flightID, seatID int64) (*domain.Seat, error)
	GetForUpdate(ctx context.Context, flightID, seatID int64) (*domain.Seat, error)
	UpdateState(ctx context.Context, seatID int64, status domain.SeatStatus, holdExpiresAt *time.Time) error
	UpdatePricing(ctx context.Context, seatID int64, class domain.SeatClass, category domain.SeatCategory, multiplier float64) error
	DeleteByFlight(ctx context.Context, flightID int64) error
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetForUpdate(ctx context.Context, id int64) (*domain.Booking, error)
	// FindActiveBySeat returns the non-cancelled booking on the seat, nil when there is none.
	FindActiveBySeat(ctx context.Context, seatID int64) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
	ListAll(ctx context.Context) ([]domain.Booking, error)
	ListExpiredCreated(ctx context.Context, createdBefore time.Time) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, now time.Time) error
	UpdateSeat(ctx context.Context, id, seatID, totalPriceCents int64, now time.Time) error
	// PurgeCancelledBySeat deletes cancelled bookings on the seat that never reached payment.
	PurgeCancelledBySeat(ctx context.Context, seatID int64) (int64, error)
	CountByFlight(ctx context.Context, flightID int64) (int, error)
	ListConfirmedUserIDs(ctx context.Context, flightID int64) ([]int64, error)
	ListFlightIDsByUser(ctx context.Context, userID int64) ([]int64, error)
}

type PaymentRepository interface {
	GetByBooking(ctx context.Context, bookingID int64) (*domain.Payment, error)
	Create(ctx context.Context, payment *domain.Payment) error
	MarkPaid(ctx context.Context, id int64, transactionID string, now time.Time) error
	ListByUser(ctx context.Context, userID int64) ([]domain.Payment, error)
	GetTicket(ctx context.Context, bookingID int64) (*domain.Ticket, error)
	CreateTicket(ctx context.Context, ticket *domain.Ticket) error
}

type CheckInRepository interface {
	GetByBooking(ctx context.Context, bookingID int64) (*domain.CheckIn, error)
	Create(ctx context.Context, checkIn *domain.CheckIn) error
	UpdateGateForFlight(ctx context.Context, flightID int64, gate string) (int64, error)
	UpdateBoardingTimeForFlight(ctx context.Context, flightID int64, boardingTime time.Time) (int64, error)
}

type ProfileRepository interface {
	Get(ctx context.Context, userID int64) (*domain.PassengerProfile, error)
	Upsert(ctx context.Context, profile *domain.PassengerProfile) error
}

type AnnouncementRepository interface {
	Create(ctx context.Context, announcement *domain.Announcement) error
	// ListForUser returns active announcements that are global, scoped to one of flightIDs, or personal.
	ListForUser(ctx context.Context, userID int64, flightIDs []int64) ([]domain.Announcement, error)
	ListAll(ctx context.Context) ([]domain.Announcement, error)
}

// Store bundles every repository over one backing store.
type Store struct {
	Tx            Transactor
	Flights       FlightRepository
	Seats         SeatRepository
	Bookings      BookingRepository
	Payments      PaymentRepository
	CheckIns      CheckInRepository
	Profiles      ProfileRepository
	Announcements AnnouncementRepository
}
