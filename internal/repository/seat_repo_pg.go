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

const seatColumns = `id, flight_id, seat_row, letter, class, category, price_multiplier, status, hold_expires_at`

type PGSeatRepository struct {
	pgConn
}

func NewSeatRepository(db *pgxpool.Pool) SeatRepository {
	return &PGSeatRepository{pgConn{db: db}}
}

func scanSeat(row pgx.Row) (*domain.Seat, error) {
	var s domain.Seat
	if err := row.Scan(&s.ID, &s.FlightID, &s.Row, &s.Letter, &s.Class, &s.Category, &s.PriceMultiplier, &s.Status, &s.HoldExpiresAt); err != nil {
		return nil, err
	}
	if s.HoldExpiresAt != nil {
		t := s.HoldExpiresAt.UTC()
		s.HoldExpiresAt = &t
	}
	return &s, nil
}

func (r *PGSeatRepository) CreateBatch(ctx context.Context, seats []domain.Seat) error {
	for i := range seats {
		s := &seats[i]
		err := r.queryRow(ctx, `INSERT INTO seats (flight_id, seat_row, letter, class, category, price_multiplier, status, hold_expires_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			s.FlightID, s.Row, s.Letter, s.Class, s.Category, s.PriceMultiplier, s.Status, s.HoldExpiresAt).Scan(&s.ID)
		if err != nil {
			return fmt.Errorf("create seat %s: %w", s.Designator(), err)
		}
	}
	return nil
}

func (r *PGSeatRepository) ListByFlight(ctx context.Context, flightID int64) ([]domain.Seat, error) {
	rows, err := r.query(ctx, `SELECT `+seatColumns+` FROM seats WHERE flight_id=$1 ORDER BY seat_row, letter`, flightID)
	if err != nil {
		return nil, fmt.Errorf("list seats: %w", err)
	}
	defer rows.Close()

	var seats []domain.Seat
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, fmt.Errorf("scan seat: %w", err)
		}
		seats = append(seats, *s)
	}
	return seats, rows.Err()
}

func (r *PGSeatRepository) Get(ctx context.Context, flightID, seatID int64) (*domain.Seat, error) {
	return r.get(ctx, `SELECT `+seatColumns+` FROM seats WHERE id=$1 AND flight_id=$2`, flightID, seatID)
}

func (r *PGSeatRepository) GetForUpdate(ctx context.Context, flightID, seatID int64) (*domain.Seat, error) {
	return r.get(ctx, `SELECT `+seatColumns+` FROM seats WHERE id=$1 AND flight_id=$2 FOR UPDATE`, flightID, seatID)
}

func (r *PGSeatRepository) get(ctx context.Context, sql string, flightID, seatID int64) (*domain.Seat, error) {
	s, err := scanSeat(r.queryRow(ctx, sql, seatID, flightID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSeatNotFound
		}
		return nil, fmt.Errorf("get seat %d: %w", seatID, err)
	}
	return s, nil
}

func (r *PGSeatRepository) UpdateState(ctx context.Context, seatID int64, status domain.SeatStatus, holdExpiresAt *time.Time) error {
	cmd, err := r.exec(ctx, `UPDATE seats SET status=$2, hold_expires_at=$3 WHERE id=$1`, seatID, status, holdExpiresAt)
	if err != nil {
		return fmt.Errorf("update seat %d: %w", seatID, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrSeatNotFound
	}
	return nil
}

func (r *PGSeatRepository) UpdatePricing(ctx context.Context, seatID int64, class domain.SeatClass, category domain.SeatCategory, multiplier float64) error {
	cmd, err := r.exec(ctx, `UPDATE seats SET class=$2, category=$3, price_multiplier=$4 WHERE id=$1`, seatID, class, category, multiplier)
	if err != nil {
		return fmt.Errorf("update seat pricing %d: %w", seatID, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrSeatNotFound
	}
	return nil
}

func (r *PGSeatRepository) DeleteByFlight(ctx context.Context, flightID int64) error {
	if _, err := r.exec(ctx, `DELETE FROM seats WHERE flight_id=$1`, flightID); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrFlightHasBookings
		}
		return fmt.Errorf("delete seats of flight %d: %w", flightID, err)
	}
	return nil
}

var _ SeatRepository = (*PGSeatRepository)(nil)
