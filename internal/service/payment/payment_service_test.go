package payment

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/seatflow/internal/clock"
	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/Domenick1991/seatflow/internal/repository"
	"github.com/Domenick1991/seatflow/internal/repository/memory"
	"github.com/Domenick1991/seatflow/internal/service/booking"
	"github.com/Domenick1991/seatflow/internal/service/seats"
	"github.com/Domenick1991/seatflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc      *PaymentService
	bookings *booking.BookingService
	ledger   *seats.Ledger
	store    repository.Store
	clock    *clock.Manual
	flight   *domain.Flight
	seats    map[string]domain.Seat
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	clk := clock.NewManual(testutil.Epoch)
	flight, seatMap := testutil.SeedFlight(t, store, testutil.Epoch.Add(48*time.Hour), 10000, 12, 6)
	testutil.SaveProfile(t, store, testutil.Passenger.UserID)
	ledger := seats.NewLedger(store, clk, zap.NewNop())
	return &fixture{
		svc:      NewPaymentService(store, ledger, clk, zap.NewNop()),
		bookings: booking.NewBookingService(store, ledger, clk, zap.NewNop()),
		ledger:   ledger,
		store:    store,
		clock:    clk,
		flight:   flight,
		seats:    seatMap,
	}
}

func (f *fixture) book(t *testing.T, seat string) *domain.BookingDetails {
	t.Helper()
	d, err := f.bookings.CreateBooking(context.Background(), testutil.Passenger, booking.CreateBookingInput{
		FlightID: f.flight.ID,
		SeatID:   f.seats[seat].ID,
	})
	require.NoError(t, err)
	return d
}

func TestPaymentService_Pay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.book(t, "12A")

	p, err := f.svc.Pay(ctx, testutil.Passenger, d.Booking.ID, "card")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, p.Status)
	assert.Equal(t, domain.PaymentMethodCard, p.Method)
	assert.Equal(t, int64(10000), p.AmountCents)
	assert.Regexp(t, `^TXN[0-9A-F]{16}$`, p.TransactionID)

	b, err := f.store.Bookings.GetByID(ctx, d.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, b.Status)
	assert.Equal(t, domain.SeatStatusBooked, testutil.SeatStatus(t, f.store, d.Seat))

	ticket, err := f.store.Payments.GetTicket(ctx, d.Booking.ID)
	require.NoError(t, err)
	require.NotNil(t, ticket)
	assert.Regexp(t, `^TK[0-9A-F]{12}$`, ticket.Number)
}

func TestPaymentService_PayIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.book(t, "12A")

	first, err := f.svc.Pay(ctx, testutil.Passenger, d.Booking.ID, "CARD")
	require.NoError(t, err)
	ticket, err := f.store.Payments.GetTicket(ctx, d.Booking.ID)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	second, err := f.svc.Pay(ctx, testutil.Passenger, d.Booking.ID, "APPLE_PAY")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.TransactionID, second.TransactionID)
	assert.Equal(t, domain.PaymentMethodCard, second.Method)

	again, err := f.store.Payments.GetTicket(ctx, d.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.Number, again.Number)

	b, err := f.store.Bookings.GetByID(ctx, d.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, b.Status)
}

func TestPaymentService_PayRetriesPendingPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.book(t, "4C")
	pending := &domain.Payment{
		BookingID:   d.Booking.ID,
		AmountCents: d.Booking.TotalPriceCents,
		Method:      domain.PaymentMethodGooglePay,
		Status:      domain.PaymentStatusFailed,
		CreatedAt:   f.clock.Now(),
	}
	require.NoError(t, f.store.Payments.Create(ctx, pending))

	p, err := f.svc.Pay(ctx, testutil.Passenger, d.Booking.ID, "GOOGLE_PAY")
	require.NoError(t, err)
	assert.Equal(t, pending.ID, p.ID)
	assert.Equal(t, domain.PaymentStatusPaid, p.Status)
	assert.NotEmpty(t, p.TransactionID)
	assert.Equal(t, domain.SeatStatusBooked, testutil.SeatStatus(t, f.store, d.Seat))
}

func TestPaymentService_PayExpiredBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.book(t, "7B")

	f.clock.Advance(11 * time.Minute)
	_, err := f.svc.Pay(ctx, testutil.Passenger, d.Booking.ID, "CARD")
	assert.ErrorIs(t, err, domain.ErrBookingExpired)

	b, err := f.store.Bookings.GetByID(ctx, d.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, b.Status)
	assert.Equal(t, domain.SeatStatusAvailable, testutil.SeatStatus(t, f.store, d.Seat))

	p, err := f.store.Payments.GetByBooking(ctx, d.Booking.ID)
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = f.svc.Pay(ctx, testutil.Passenger, d.Booking.ID, "CARD")
	assert.ErrorIs(t, err, domain.ErrBookingNotActive)
}

func TestPaymentService_PayJustInsideGrace(t *testing.T) {
	f := newFixture(t)
	d := f.book(t, "7C")

	f.clock.Advance(seats.DefaultPaymentGrace)
	_, err := f.svc.Pay(context.Background(), testutil.Passenger, d.Booking.ID, "CARD")
	assert.NoError(t, err)
}

func TestPaymentService_PayRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.book(t, "8D")

	_, err := f.svc.Pay(ctx, testutil.Other, d.Booking.ID, "CARD")
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	_, err = f.svc.Pay(ctx, testutil.Passenger, d.Booking.ID, "CASH")
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentMethod)

	_, err = f.svc.Pay(ctx, testutil.Passenger, 424242, "CARD")
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)

	_, err = f.bookings.CancelBooking(ctx, testutil.Passenger, d.Booking.ID)
	require.NoError(t, err)
	_, err = f.svc.Pay(ctx, testutil.Passenger, d.Booking.ID, "CARD")
	assert.ErrorIs(t, err, domain.ErrBookingNotActive)
}

func TestPaymentService_CancelAfterPaymentKeepsPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.book(t, "9E")
	paid, err := f.svc.Pay(ctx, testutil.Passenger, d.Booking.ID, "CARD")
	require.NoError(t, err)

	_, err = f.bookings.CancelBooking(ctx, testutil.Passenger, d.Booking.ID)
	require.NoError(t, err)

	history, err := f.svc.PaymentHistory(ctx, testutil.Passenger)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, paid.TransactionID, history[0].TransactionID)
	assert.Equal(t, domain.PaymentStatusPaid, history[0].Status)
	assert.Equal(t, domain.SeatStatusAvailable, testutil.SeatStatus(t, f.store, d.Seat))
}
