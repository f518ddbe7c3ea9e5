package checkin

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Domenick1991/seatflow/internal/clock"
	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/Domenick1991/seatflow/internal/repository"
	"github.com/Domenick1991/seatflow/internal/repository/memory"
	"github.com/Domenick1991/seatflow/internal/service/booking"
	"github.com/Domenick1991/seatflow/internal/service/payment"
	"github.com/Domenick1991/seatflow/internal/service/seats"
	"github.com/Domenick1991/seatflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// departure is far enough from testutil.Epoch that booking and paying happen well before the window opens.
var departure = testutil.Epoch.Add(72 * time.Hour)

type fixture struct {
	svc      *CheckInService
	bookings *booking.BookingService
	payments *payment.PaymentService
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
	flight, seatMap := testutil.SeedFlight(t, store, departure, 10000, 12, 6)
	testutil.SaveProfile(t, store, testutil.Passenger.UserID)
	ledger := seats.NewLedger(store, clk, zap.NewNop())
	payments := payment.NewPaymentService(store, ledger, clk, zap.NewNop())
	return &fixture{
		svc:      NewCheckInService(store, payments, DefaultPolicy(), clk, zap.NewNop()),
		bookings: booking.NewBookingService(store, ledger, clk, zap.NewNop()),
		payments: payments,
		ledger:   ledger,
		store:    store,
		clock:    clk,
		flight:   flight,
		seats:    seatMap,
	}
}

// paidBooking books and pays seat at the fixture's current time.
func (f *fixture) paidBooking(t *testing.T, seat string) *domain.BookingDetails {
	t.Helper()
	ctx := context.Background()
	d, err := f.bookings.CreateBooking(ctx, testutil.Passenger, booking.CreateBookingInput{FlightID: f.flight.ID, SeatID: f.seats[seat].ID})
	require.NoError(t, err)
	_, err = f.payments.Pay(ctx, testutil.Passenger, d.Booking.ID, "CARD")
	require.NoError(t, err)
	return d
}

func TestCheckInService_Window(t *testing.T) {
	cases := []struct {
		name   string
		before time.Duration
		want   error
	}{
		{name: "25h before departure is too early", before: 25 * time.Hour, want: domain.ErrCheckInTooEarly},
		{name: "exactly 24h before departure opens", before: 24 * time.Hour},
		{name: "one second past 1h before departure", before: time.Hour + time.Second},
		{name: "exactly 1h before departure is closed", before: time.Hour, want: domain.ErrCheckInClosed},
		{name: "after departure is closed", before: -time.Minute, want: domain.ErrCheckInClosed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			d := f.paidBooking(t, "12A")
			f.clock.Set(departure.Add(-tc.before))

			c, err := f.svc.CheckIn(context.Background(), testutil.Passenger, d.Booking.ID)
			if tc.want == nil {
				require.NoError(t, err)
				assert.Equal(t, d.Booking.ID, c.BookingID)
				return
			}
			assert.ErrorIs(t, err, tc.want)
			var werr *domain.CheckInWindowError
			if assert.ErrorAs(t, err, &werr) {
				assert.InDelta(t, tc.before.Hours(), werr.HoursUntilDeparture, 0.001)
			}
		})
	}
}

func TestCheckInService_CheckIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.paidBooking(t, "12A")
	f.clock.Set(departure.Add(-3 * time.Hour))

	c, err := f.svc.CheckIn(ctx, testutil.Passenger, d.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gate 12", c.BoardingGate)
	assert.Equal(t, departure.Add(-30*time.Minute), c.BoardingTime)
	assert.Equal(t, f.clock.Now(), c.CheckedInAt)

	f.clock.Advance(time.Minute)
	again, err := f.svc.CheckIn(ctx, testutil.Passenger, d.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, again.ID)
	assert.Equal(t, c.CheckedInAt, again.CheckedInAt)
}

func TestCheckInService_GatePlaceholder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Flights.UpdateGate(ctx, f.flight.ID, "", "", f.clock.Now()))
	d := f.paidBooking(t, "2A")
	f.clock.Set(departure.Add(-2 * time.Hour))

	c, err := f.svc.CheckIn(ctx, testutil.Passenger, d.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "TBA", c.BoardingGate)
}

func TestCheckInService_PaymentRules(t *testing.T) {
	ctx := context.Background()

	t.Run("no payment", func(t *testing.T) {
		f := newFixture(t)
		d, err := f.bookings.CreateBooking(ctx, testutil.Passenger, booking.CreateBookingInput{FlightID: f.flight.ID, SeatID: f.seats["3A"].ID})
		require.NoError(t, err)

		_, err = f.svc.CheckIn(ctx, testutil.Passenger, d.Booking.ID)
		assert.ErrorIs(t, err, domain.ErrPaymentRequired)
	})

	t.Run("pending payment is settled", func(t *testing.T) {
		f := newFixture(t)
		d, err := f.bookings.CreateBooking(ctx, testutil.Passenger, booking.CreateBookingInput{FlightID: f.flight.ID, SeatID: f.seats["3B"].ID})
		require.NoError(t, err)
		require.NoError(t, f.store.Payments.Create(ctx, &domain.Payment{
			BookingID:   d.Booking.ID,
			AmountCents: d.Booking.TotalPriceCents,
			Method:      domain.PaymentMethodCard,
			Status:      domain.PaymentStatusPending,
			CreatedAt:   f.clock.Now(),
		}))
		f.clock.Set(departure.Add(-5 * time.Hour))

		_, err = f.svc.CheckIn(ctx, testutil.Passenger, d.Booking.ID)
		require.NoError(t, err)

		p, err := f.store.Payments.GetByBooking(ctx, d.Booking.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusPaid, p.Status)
		ticket, err := f.store.Payments.GetTicket(ctx, d.Booking.ID)
		require.NoError(t, err)
		assert.NotNil(t, ticket)
		assert.Equal(t, domain.SeatStatusBooked, testutil.SeatStatus(t, f.store, d.Seat))
	})

	t.Run("settlement rolls back outside the window", func(t *testing.T) {
		f := newFixture(t)
		d, err := f.bookings.CreateBooking(ctx, testutil.Passenger, booking.CreateBookingInput{FlightID: f.flight.ID, SeatID: f.seats["3C"].ID})
		require.NoError(t, err)
		require.NoError(t, f.store.Payments.Create(ctx, &domain.Payment{
			BookingID: d.Booking.ID, AmountCents: 10000, Method: domain.PaymentMethodCard,
			Status: domain.PaymentStatusFailed, CreatedAt: f.clock.Now(),
		}))

		_, err = f.svc.CheckIn(ctx, testutil.Passenger, d.Booking.ID)
		assert.ErrorIs(t, err, domain.ErrCheckInTooEarly)
		p, err := f.store.Payments.GetByBooking(ctx, d.Booking.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusFailed, p.Status)
	})

	t.Run("not the owner", func(t *testing.T) {
		f := newFixture(t)
		d := f.paidBooking(t, "3D")
		f.clock.Set(departure.Add(-5 * time.Hour))

		_, err := f.svc.CheckIn(ctx, testutil.Other, d.Booking.ID)
		assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	})

	t.Run("cancelled booking", func(t *testing.T) {
		f := newFixture(t)
		d := f.paidBooking(t, "3E")
		_, err := f.bookings.CancelBooking(ctx, testutil.Passenger, d.Booking.ID)
		require.NoError(t, err)
		f.clock.Set(departure.Add(-5 * time.Hour))

		_, err = f.svc.CheckIn(ctx, testutil.Passenger, d.Booking.ID)
		assert.ErrorIs(t, err, domain.ErrBookingNotActive)
	})
}

func TestCheckInService_HappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seat := f.seats["12A"]

	_, err := f.ledger.HoldSeat(ctx, testutil.Passenger, f.flight.ID, seat.ID)
	require.NoError(t, err)

	d, err := f.bookings.CreateBooking(ctx, testutil.Passenger, booking.CreateBookingInput{FlightID: f.flight.ID, SeatID: seat.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(10000), d.Booking.TotalPriceCents)
	assert.Equal(t, domain.BookingStatusCreated, d.Booking.Status)

	_, err = f.payments.Pay(ctx, testutil.Passenger, d.Booking.ID, "CARD")
	require.NoError(t, err)
	assert.Equal(t, domain.SeatStatusBooked, testutil.SeatStatus(t, f.store, seat))

	f.clock.Set(departure.Add(-6 * time.Hour))
	_, err = f.svc.GetBoardingPass(ctx, testutil.Passenger, d.Booking.ID)
	assert.ErrorIs(t, err, domain.ErrCheckInRequired)

	c, err := f.svc.CheckIn(ctx, testutil.Passenger, d.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gate 12", c.BoardingGate)

	pass, err := f.svc.GetBoardingPass(ctx, testutil.Passenger, d.Booking.ID)
	require.NoError(t, err)
	ticket, err := f.store.Payments.GetTicket(ctx, d.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%s|%s|FL1|12A", d.Booking.Reference, ticket.Number), pass.QRPayload)
	assert.Equal(t, "Ivan Petrov", pass.PassengerName)
	assert.Equal(t, "12A", pass.Seat)
	assert.Equal(t, "B", pass.Terminal)
}

func TestCheckInService_BoardingPassShowsCurrentGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.paidBooking(t, "6F")
	f.clock.Set(departure.Add(-4 * time.Hour))
	_, err := f.svc.CheckIn(ctx, testutil.Passenger, d.Booking.ID)
	require.NoError(t, err)

	require.NoError(t, f.store.Flights.UpdateGate(ctx, f.flight.ID, "31", "D", f.clock.Now()))

	pass, err := f.svc.GetBoardingPass(ctx, testutil.Passenger, d.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gate 31", pass.Gate)
	assert.Equal(t, "D", pass.Terminal)

	_, err = f.svc.GetBoardingPass(ctx, testutil.Other, d.Booking.ID)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
}

func TestCheckInService_BoardingPassCancelledBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SaveProfile(t, f.store, testutil.Other.UserID)
	seat := f.seats["12A"]

	first := f.paidBooking(t, "12A")
	f.clock.Set(departure.Add(-5 * time.Hour))
	_, err := f.svc.CheckIn(ctx, testutil.Passenger, first.Booking.ID)
	require.NoError(t, err)
	_, err = f.bookings.CancelBooking(ctx, testutil.Passenger, first.Booking.ID)
	require.NoError(t, err)

	_, err = f.svc.GetBoardingPass(ctx, testutil.Passenger, first.Booking.ID)
	assert.ErrorIs(t, err, domain.ErrBookingNotActive)

	resold, err := f.bookings.CreateBooking(ctx, testutil.Other, booking.CreateBookingInput{FlightID: f.flight.ID, SeatID: seat.ID})
	require.NoError(t, err)
	_, err = f.payments.Pay(ctx, testutil.Other, resold.Booking.ID, "CARD")
	require.NoError(t, err)
	_, err = f.svc.CheckIn(ctx, testutil.Other, resold.Booking.ID)
	require.NoError(t, err)

	pass, err := f.svc.GetBoardingPass(ctx, testutil.Other, resold.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "12A", pass.Seat)
	_, err = f.svc.GetBoardingPass(ctx, testutil.Passenger, first.Booking.ID)
	assert.ErrorIs(t, err, domain.ErrBookingNotActive)
}

func TestCheckInService_BoardingPassWithoutTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d, err := f.bookings.CreateBooking(ctx, testutil.Passenger, booking.CreateBookingInput{FlightID: f.flight.ID, SeatID: f.seats["1A"].ID})
	require.NoError(t, err)
	require.NoError(t, f.store.CheckIns.Create(ctx, &domain.CheckIn{BookingID: d.Booking.ID, CheckedInAt: f.clock.Now()}))

	_, err = f.svc.GetBoardingPass(ctx, testutil.Passenger, d.Booking.ID)
	assert.ErrorIs(t, err, domain.ErrTicketMissing)
}

func TestPolicy_Gate(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, "Gate 7", p.Gate("7"))
	assert.Equal(t, "TBA", p.Gate(""))
}
