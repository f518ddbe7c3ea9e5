package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/Domenick1991/seatflow/internal/repository"
	"github.com/Domenick1991/seatflow/internal/seatmap"
	"github.com/stretchr/testify/require"
)

var (
	Passenger = domain.Caller{UserID: 1, Role: domain.RolePassenger}
	Other     = domain.Caller{UserID: 2, Role: domain.RolePassenger}
	Staff     = domain.Caller{UserID: 99, Role: domain.RoleStaff}
)

// Epoch is the instant service tests start their manual clocks at.
var Epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// SeedFlight stores flight FL1 departing at departure with an all-economy rows x perRow seat map priced at basePrice cents.
func SeedFlight(t testing.TB, store repository.Store, departure time.Time, basePrice int64, rows, perRow int) (*domain.Flight, map[string]domain.Seat) {
	t.Helper()
	ctx := context.Background()
	f := &domain.Flight{
		FlightNumber:   "FL1",
		FromAirport:    "SVO",
		ToAirport:      "LED",
		DepartureTime:  departure,
		ArrivalTime:    departure.Add(90 * time.Minute),
		BasePriceCents: basePrice,
		Status:         domain.FlightStatusScheduled,
		Gate:           "12",
		Terminal:       "B",
		CreatedAt:      Epoch,
	}
	require.NoError(t, store.Flights.Create(ctx, f))

	none := 0
	seats, err := seatmap.Layout{Rows: rows, SeatsPerRow: perRow, BusinessRows: &none}.Build(f.ID)
	require.NoError(t, err)
	require.NoError(t, store.Seats.CreateBatch(ctx, seats))

	byDesignator := make(map[string]domain.Seat, len(seats))
	for _, s := range seats {
		byDesignator[s.Designator()] = s
	}
	return f, byDesignator
}

func PassengerData() domain.PassengerData {
	return domain.PassengerData{
		FirstName:   "Ivan",
		LastName:    "Petrov",
		Phone:       "+79990001122",
		Passport:    "4510123456",
		Nationality: "RU",
		DateOfBirth: time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
	}
}

// SaveProfile gives userID a complete passenger profile.
func SaveProfile(t testing.TB, store repository.Store, userID int64) {
	t.Helper()
	require.NoError(t, store.Profiles.Upsert(context.Background(), &domain.PassengerProfile{
		UserID:        userID,
		PassengerData: PassengerData(),
		UpdatedAt:     Epoch,
	}))
}

// SeatStatus reads the stored status of a seat without resolving holds.
func SeatStatus(t testing.TB, store repository.Store, seat domain.Seat) domain.SeatStatus {
	t.Helper()
	s, err := store.Seats.Get(context.Background(), seat.FlightID, seat.ID)
	require.NoError(t, err)
	return s.Status
}
