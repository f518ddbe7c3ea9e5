// Package memory is an in-process repository.Store. Transactions are
// serialised behind one mutex and roll back by restoring a snapshot.
package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/Domenick1991/seatflow/internal/repository"
)

type txKey struct{}

type state struct {
	nextID        int64
	flights       map[int64]domain.Flight
	seats         map[int64]domain.Seat
	bookings      map[int64]domain.Booking
	payments      map[int64]domain.Payment
	tickets       map[int64]domain.Ticket
	checkIns      map[int64]domain.CheckIn
	profiles      map[int64]domain.PassengerProfile
	announcements map[int64]domain.Announcement
}

func (s *state) clone() *state {
	return &state{
		nextID:        s.nextID,
		flights:       maps.Clone(s.flights),
		seats:         maps.Clone(s.seats),
		bookings:      maps.Clone(s.bookings),
		payments:      maps.Clone(s.payments),
		tickets:       maps.Clone(s.tickets),
		checkIns:      maps.Clone(s.checkIns),
		profiles:      maps.Clone(s.profiles),
		announcements: maps.Clone(s.announcements),
	}
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

// DB holds all tables.
type DB struct {
	mu   sync.Mutex
	data *state
}

func NewDB() *DB {
	return &DB{data: &state{
		flights:       map[int64]domain.Flight{},
		seats:         map[int64]domain.Seat{},
		bookings:      map[int64]domain.Booking{},
		payments:      map[int64]domain.Payment{},
		tickets:       map[int64]domain.Ticket{},
		checkIns:      map[int64]domain.CheckIn{},
		profiles:      map[int64]domain.PassengerProfile{},
		announcements: map[int64]domain.Announcement{},
	}}
}

// NewStore returns a Store over a fresh, empty DB.
func NewStore() repository.Store {
	return NewDB().Store()
}

func (db *DB) Store() repository.Store {
	return repository.Store{
		Tx:            db,
		Flights:       flightRepo{db},
		Seats:         seatRepo{db},
		Bookings:      bookingRepo{db},
		Payments:      paymentRepo{db},
		CheckIns:      checkInRepo{db},
		Profiles:      profileRepo{db},
		Announcements: announcementRepo{db},
	}
}

func (db *DB) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	snapshot := db.data.clone()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		db.data = snapshot
		return err
	}
	return nil
}

// acquire locks the DB unless ctx already runs inside WithTx.
func (db *DB) acquire(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}
	db.mu.Lock()
	return db.mu.Unlock
}

func sortedValues[K cmp.Ordered, V any](m map[K]V, keep func(V) bool, less func(a, b V) int) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, less)
	return out
}

var _ repository.Transactor = (*DB)(nil)
