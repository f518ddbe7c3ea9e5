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

type PGCheckInRepository struct {
	pgConn
}

func NewCheckInRepository(db *pgxpool.Pool) CheckInRepository {
	return &PGCheckInRepository{pgConn{db: db}}
}

func (r *PGCheckInRepository) GetByBooking(ctx context.Context, bookingID int64) (*domain.CheckIn, error) {
	var c domain.CheckIn
	err := r.queryRow(ctx, `SELECT id, booking_id, checked_in_at, boarding_gate, boarding_time FROM check_ins WHERE booking_id=$1`, bookingID).
		Scan(&c.ID, &c.BookingID, &c.CheckedInAt, &c.BoardingGate, &c.BoardingTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get check-in of booking %d: %w", bookingID, err)
	}
	c.BoardingTime = c.BoardingTime.UTC()
	return &c, nil
}

func (r *PGCheckInRepository) Create(ctx context.Context, checkIn *domain.CheckIn) error {
	err := r.queryRow(ctx, `INSERT INTO check_ins (booking_id, checked_in_at, boarding_gate, boarding_time) VALUES ($1, $2, $3, $4) RETURNING id`,
		checkIn.BookingID, checkIn.CheckedInAt, checkIn.BoardingGate, checkIn.BoardingTime).Scan(&checkIn.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrConcurrentUpdate, err)
		}
		return fmt.Errorf("create check-in: %w", err)
	}
	return nil
}

func (r *PGCheckInRepository) UpdateGateForFlight(ctx context.Context, flightID int64, gate string) (int64, error) {
	cmd, err := r.exec(ctx, `UPDATE check_ins c SET boarding_gate=$2
		FROM bookings b
		WHERE b.id = c.booking_id AND b.flight_id=$1`, flightID, gate)
	if err != nil {
		return 0, fmt.Errorf("update check-in gates of flight %d: %w", flightID, err)
	}
	return cmd.RowsAffected(), nil
}

func (r *PGCheckInRepository) UpdateBoardingTimeForFlight(ctx context.Context, flightID int64, boardingTime time.Time) (int64, error) {
	cmd, err := r.exec(ctx, `UPDATE check_ins c SET boarding_time=$2
		FROM bookings b
		WHERE b.id = c.booking_id AND b.flight_id=$1`, flightID, boardingTime)
	if err != nil {
		return 0, fmt.Errorf("update boarding times of flight %d: %w", flightID, err)
	}
	return cmd.RowsAffected(), nil
}

var _ CheckInRepository = (*PGCheckInRepository)(nil)
