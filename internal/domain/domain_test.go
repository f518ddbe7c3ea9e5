package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestSeat_HoldExpired(t *testing.T) {
	future := now.Add(time.Minute)
	past := now.Add(-time.Minute)

	tests := []struct {
		name string
		seat Seat
		want bool
	}{
		{"available", Seat{Status: SeatStatusAvailable}, false},
		{"booked", Seat{Status: SeatStatusBooked, HoldExpiresAt: &past}, false},
		{"live hold", Seat{Status: SeatStatusHeld, HoldExpiresAt: &future}, false},
		{"lapsed hold", Seat{Status: SeatStatusHeld, HoldExpiresAt: &past}, true},
		{"hold ends now", Seat{Status: SeatStatusHeld, HoldExpiresAt: &now}, true},
		{"untimed hold", Seat{Status: SeatStatusHeld}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.seat.HoldExpired(now))
		})
	}
}

func TestSeat_PriceCents(t *testing.T) {
	assert.Equal(t, int64(10000), Seat{PriceMultiplier: 1}.PriceCents(10000))
	assert.Equal(t, int64(20000), Seat{PriceMultiplier: 2}.PriceCents(10000))
	assert.Equal(t, int64(1667), Seat{PriceMultiplier: 1.6667}.PriceCents(1000))
	assert.Equal(t, "12A", Seat{Row: 12, Letter: "A"}.Designator())
}

func TestBooking_Expired(t *testing.T) {
	grace := 10 * time.Minute
	b := Booking{Status: BookingStatusCreated, CreatedAt: now}

	assert.False(t, b.Expired(now.Add(grace), grace), "the last instant of the grace period still counts")
	assert.True(t, b.Expired(now.Add(grace+time.Second), grace))

	b.Status = BookingStatusConfirmed
	assert.False(t, b.Expired(now.Add(time.Hour), grace))
	assert.True(t, b.Active())

	b.Status = BookingStatusCancelled
	assert.False(t, b.Active())
}

func TestParseFlightStatus(t *testing.T) {
	got, err := ParseFlightStatus(" delayed ")
	require.NoError(t, err)
	assert.Equal(t, FlightStatusDelayed, got)

	got, err = ParseFlightStatus("LANDED")
	require.NoError(t, err)
	assert.Equal(t, FlightStatusArrived, got)

	_, err = ParseFlightStatus("TAXIING")
	assert.ErrorIs(t, err, ErrInvalidFlightStatus)
}

func TestFlight_Bookable(t *testing.T) {
	for status, want := range map[FlightStatus]bool{
		FlightStatusScheduled: true,
		FlightStatusDelayed:   true,
		FlightStatusBoarding:  true,
		FlightStatusDeparted:  false,
		FlightStatusArrived:   false,
		FlightStatusCancelled: false,
	} {
		assert.Equal(t, want, Flight{Status: status}.Bookable(), status)
	}
	assert.True(t, Flight{Status: FlightStatusArrived}.HasDeparted())
	assert.False(t, Flight{Status: FlightStatusCancelled}.HasDeparted())
}

func TestParsePaymentMethod(t *testing.T) {
	got, err := ParsePaymentMethod("apple_pay")
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodApplePay, got)

	_, err = ParsePaymentMethod("cash")
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
}

func TestErrors_KindAndCode(t *testing.T) {
	wrapped := fmt.Errorf("create booking: %w", ErrSeatTaken)
	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.Equal(t, "SEAT_TAKEN", CodeOf(wrapped))

	plain := errors.New("connection reset")
	assert.Equal(t, KindInternal, KindOf(plain))
	assert.Equal(t, "INTERNAL", CodeOf(plain))

	conflict := &BookingConflictError{Err: ErrDuplicatePendingBooking, BookingID: 4, Reference: "BK0123456789"}
	assert.ErrorIs(t, conflict, ErrDuplicatePendingBooking)
	assert.Contains(t, conflict.Error(), "ref: BK0123456789")

	window := &CheckInWindowError{Err: ErrCheckInTooEarly, HoursUntilDeparture: 30.5}
	assert.ErrorIs(t, window, ErrCheckInTooEarly)
	assert.Equal(t, KindPolicy, KindOf(window))
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Err: ErrInvalidInput, Fields: map[string]string{
		"to_airport":   "must differ from from_airport",
		"arrival_time": "must be after departure_time",
	}}
	assert.Equal(t, "invalid input: arrival_time: must be after departure_time; to_airport: must differ from from_airport", err.Error())
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestPassengerData(t *testing.T) {
	assert.True(t, PassengerData{}.Empty())
	p := PassengerData{FirstName: "Anna", LastName: "Smirnova"}
	assert.False(t, p.Empty())
	assert.Equal(t, "Anna Smirnova", p.FullName())
	assert.False(t, PassengerProfile{PassengerData: p}.Complete())
}
