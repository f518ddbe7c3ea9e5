package memory

import (
	"cmp"
	"context"
	"time"

	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/Domenick1991/seatflow/internal/repository"
)

type flightRepo struct{ db *DB }

func byDeparture(a, b domain.Flight) int {
	if c := a.DepartureTime.Compare(b.DepartureTime); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func (r flightRepo) List(ctx context.Context) ([]domain.Flight, error) {
	defer r.db.acquire(ctx)()
	return sortedValues(r.db.data.flights, nil, byDeparture), nil
}

func (r flightRepo) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	defer r.db.acquire(ctx)()
	f, ok := r.db.data.flights[id]
	if !ok {
		return nil, domain.ErrFlightNotFound
	}
	return &f, nil
}

func (r flightRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Flight, error) {
	return r.GetByID(ctx, id)
}

func (r flightRepo) Create(ctx context.Context, flight *domain.Flight) error {
	defer r.db.acquire(ctx)()
	flight.ID = r.db.data.id()
	flight.UpdatedAt = flight.CreatedAt
	r.db.data.flights[flight.ID] = *flight
	return nil
}

func (r flightRepo) Delete(ctx context.Context, id int64) error {
	defer r.db.acquire(ctx)()
	if _, ok := r.db.data.flights[id]; !ok {
		return domain.ErrFlightNotFound
	}
	for _, b := range r.db.data.bookings {
		if b.FlightID == id {
			return domain.ErrFlightHasBookings
		}
	}
	for _, s := range r.db.data.seats {
		if s.FlightID == id {
			return domain.ErrFlightHasBookings
		}
	}
	for aid, a := range r.db.data.announcements {
		if a.FlightID != nil && *a.FlightID == id {
			delete(r.db.data.announcements, aid)
		}
	}
	delete(r.db.data.flights, id)
	return nil
}

func (r flightRepo) update(ctx context.Context, id int64, fn func(f *domain.Flight)) error {
	defer r.db.acquire(ctx)()
	f, ok := r.db.data.flights[id]
	if !ok {
		return domain.ErrFlightNotFound
	}
	fn(&f)
	r.db.data.flights[id] = f
	return nil
}

func (r flightRepo) UpdateStatus(ctx context.Context, id int64, status domain.FlightStatus, now time.Time) error {
	return r.update(ctx, id, func(f *domain.Flight) {
		f.Status = status
		f.UpdatedAt = now
	})
}

func (r flightRepo) UpdateGate(ctx context.Context, id int64, gate, terminal string, now time.Time) error {
	return r.update(ctx, id, func(f *domain.Flight) {
		f.Gate = gate
		f.Terminal = terminal
		f.UpdatedAt = now
	})
}

func (r flightRepo) UpdateSchedule(ctx context.Context, id int64, departure, arrival time.Time, now time.Time) error {
	return r.update(ctx, id, func(f *domain.Flight) {
		f.DepartureTime = departure
		f.ArrivalTime = arrival
		f.UpdatedAt = now
	})
}

func (r flightRepo) ListDepartureDue(ctx context.Context, now time.Time) ([]domain.Flight, error) {
	defer r.db.acquire(ctx)()
	return sortedValues(r.db.data.flights, func(f domain.Flight) bool {
		switch f.Status {
		case domain.FlightStatusScheduled, domain.FlightStatusBoarding, domain.FlightStatusDelayed:
			return !f.DepartureTime.After(now)
		}
		return false
	}, byDeparture), nil
}

func (r flightRepo) ListArrivalDue(ctx context.Context, now time.Time) ([]domain.Flight, error) {
	defer r.db.acquire(ctx)()
	return sortedValues(r.db.data.flights, func(f domain.Flight) bool {
		return f.Status == domain.FlightStatusDeparted && !f.ArrivalTime.After(now)
	}, byDeparture), nil
}

// TryLockScheduler always succeeds; transactions are already serialised.
func (r flightRepo) TryLockScheduler(ctx context.Context) (bool, error) {
	return true, nil
}

var _ repository.FlightRepository = flightRepo{}
