package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const flightColumns = `id, flight_number, from_airport, to_airport, departure_time, arrival_time, base_price_cents, status, gate, terminal, created_at, updated_at`

// schedulerLockID keys the advisory lock held by the status sweep.
const schedulerLockID int64 = 720431901

type PGFlightRepository struct {
	pgConn
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{pgConn{db: db}}
}

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.FlightNumber, &f.FromAirport, &f.ToAirport, &f.DepartureTime, &f.ArrivalTime,
		&f.BasePriceCents, &f.Status, &f.Gate, &f.Terminal, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.DepartureTime = f.DepartureTime.UTC()
	f.ArrivalTime = f.ArrivalTime.UTC()
	return &f, nil
}

func (r *PGFlightRepository) listWhere(ctx context.Context, where string, args ...any) ([]domain.Flight, error) {
	rows, err := r.query(ctx, `SELECT `+flightColumns+` FROM flights `+where+` ORDER BY departure_time, id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flights []domain.Flight
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	flights, err := r.listWhere(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list flights: %w", err)
	}
	return flights, nil
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return r.get(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
}

func (r *PGFlightRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Flight, error) {
	return r.get(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1 FOR UPDATE`, id)
}

func (r *PGFlightRepository) get(ctx context.Context, sql string, id int64) (*domain.Flight, error) {
	f, err := scanFlight(r.queryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFlightNotFound
		}
		return nil, fmt.Errorf("get flight %d: %w", id, err)
	}
	return f, nil
}

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	err := r.queryRow(ctx, `INSERT INTO flights (flight_number, from_airport, to_airport, departure_time, arrival_time, base_price_cents, status, gate, terminal, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING id`,
		flight.FlightNumber, flight.FromAirport, flight.ToAirport, flight.DepartureTime, flight.ArrivalTime,
		flight.BasePriceCents, flight.Status, flight.Gate, flight.Terminal, flight.CreatedAt).Scan(&flight.ID)
	if err != nil {
		return fmt.Errorf("create flight: %w", err)
	}
	flight.UpdatedAt = flight.CreatedAt
	return nil
}

func (r *PGFlightRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.exec(ctx, `DELETE FROM flights WHERE id=$1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrFlightHasBookings
		}
		return fmt.Errorf("delete flight %d: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrFlightNotFound
	}
	return nil
}

func (r *PGFlightRepository) UpdateStatus(ctx context.Context, id int64, status domain.FlightStatus, now time.Time) error {
	return r.update(ctx, `UPDATE flights SET status=$2, updated_at=$3 WHERE id=$1`, id, status, now)
}

func (r *PGFlightRepository) UpdateGate(ctx context.Context, id int64, gate, terminal string, now time.Time) error {
	return r.update(ctx, `UPDATE flights SET gate=$2, terminal=$3, updated_at=$4 WHERE id=$1`, id, gate, terminal, now)
}

func (r *PGFlightRepository) UpdateSchedule(ctx context.Context, id int64, departure, arrival time.Time, now time.Time) error {
	return r.update(ctx, `UPDATE flights SET departure_time=$2, arrival_time=$3, updated_at=$4 WHERE id=$1`, id, departure, arrival, now)
}

func (r *PGFlightRepository) update(ctx context.Context, sql string, id int64, args ...any) error {
	cmd, err := r.exec(ctx, sql, append([]any{id}, args...)...)
	if err != nil {
		return fmt.Errorf("update flight %d: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrFlightNotFound
	}
	return nil
}

func (r *PGFlightRepository) ListDepartureDue(ctx context.Context, now time.Time) ([]domain.Flight, error) {
	flights, err := r.listWhere(ctx, `WHERE departure_time <= $1 AND status IN ('SCHEDULED', 'BOARDING', 'DELAYED')`, now)
	if err != nil {
		return nil, fmt.Errorf("list departure due: %w", err)
	}
	return flights, nil
}

func (r *PGFlightRepository) ListArrivalDue(ctx context.Context, now time.Time) ([]domain.Flight, error) {
	flights, err := r.listWhere(ctx, `WHERE arrival_time <= $1 AND status = 'DEPARTED'`, now)
	if err != nil {
		return nil, fmt.Errorf("list arrival due: %w", err)
	}
	return flights, nil
}

func (r *PGFlightRepository) TryLockScheduler(ctx context.Context) (bool, error) {
	if txFromContext(ctx) == nil {
		return false, errors.New("scheduler lock requires a transaction")
	}
	var locked bool
	if err := r.queryRow(ctx, `SELECT pg_try_advisory_xact_lock($1)`, schedulerLockID).Scan(&locked); err != nil {
		return false, fmt.Errorf("scheduler lock: %w", err)
	}
	return locked, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
