package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingColumns = `id, reference, user_id, flight_id, seat_id, total_price_cents, status, passenger, created_at, updated_at`

type PGBookingRepository struct {
	pgConn
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{pgConn{db: db}}
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b         domain.Booking
		passenger []byte
	)
	if err := row.Scan(&b.ID, &b.Reference, &b.UserID, &b.FlightID, &b.SeatID, &b.TotalPriceCents, &b.Status, &passenger, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if len(passenger) > 0 {
		var p domain.PassengerData
		if err := json.Unmarshal(passenger, &p); err != nil {
			return nil, fmt.Errorf("decode passenger: %w", err)
		}
		b.Passenger = &p
	}
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return &b, nil
}

func (r *PGBookingRepository) listWhere(ctx context.Context, where string, args ...any) ([]domain.Booking, error) {
	rows, err := r.query(ctx, `SELECT `+bookingColumns+` FROM bookings `+where+` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	var passenger []byte
	if booking.Passenger != nil {
		data, err := json.Marshal(booking.Passenger)
		if err != nil {
			return fmt.Errorf("encode passenger: %w", err)
		}
		passenger = data
	}

	err := r.queryRow(ctx, `INSERT INTO bookings (reference, user_id, flight_id, seat_id, total_price_cents, status, passenger, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id`,
		booking.Reference, booking.UserID, booking.FlightID, booking.SeatID, booking.TotalPriceCents, booking.Status, passenger, booking.CreatedAt).
		Scan(&booking.ID)
	if err != nil {
		if isActiveSeatViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrSeatTaken, err)
		}
		return fmt.Errorf("create booking: %w", err)
	}
	booking.UpdatedAt = booking.CreatedAt
	return nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
}

func (r *PGBookingRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1 FOR UPDATE`, id)
}

func (r *PGBookingRepository) get(ctx context.Context, sql string, id int64) (*domain.Booking, error) {
	b, err := scanBooking(r.queryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("get booking %d: %w", id, err)
	}
	return b, nil
}

func (r *PGBookingRepository) FindActiveBySeat(ctx context.Context, seatID int64) (*domain.Booking, error) {
	b, err := scanBooking(r.queryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE seat_id=$1 AND status <> 'CANCELLED' FOR UPDATE`, seatID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active booking for seat %d: %w", seatID, err)
	}
	return b, nil
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	bookings, err := r.listWhere(ctx, `WHERE user_id=$1`, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings of user %d: %w", userID, err)
	}
	return bookings, nil
}

func (r *PGBookingRepository) ListAll(ctx context.Context) ([]domain.Booking, error) {
	bookings, err := r.listWhere(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

func (r *PGBookingRepository) ListExpiredCreated(ctx context.Context, createdBefore time.Time) ([]domain.Booking, error) {
	bookings, err := r.listWhere(ctx, `WHERE status='CREATED' AND created_at < $1`, createdBefore)
	if err != nil {
		return nil, fmt.Errorf("list expired bookings: %w", err)
	}
	return bookings, nil
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, now time.Time) error {
	cmd, err := r.exec(ctx, `UPDATE bookings SET status=$2, updated_at=$3 WHERE id=$1`, id, status, now)
	if err != nil {
		return fmt.Errorf("update booking %d: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *PGBookingRepository) UpdateSeat(ctx context.Context, id, seatID, totalPriceCents int64, now time.Time) error {
	cmd, err := r.exec(ctx, `UPDATE bookings SET seat_id=$2, total_price_cents=$3, updated_at=$4 WHERE id=$1`, id, seatID, totalPriceCents, now)
	if err != nil {
		if isActiveSeatViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrSeatTaken, err)
		}
		return fmt.Errorf("move booking %d: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *PGBookingRepository) PurgeCancelledBySeat(ctx context.Context, seatID int64) (int64, error) {
	cmd, err := r.exec(ctx, `
        DELETE FROM bookings b
        WHERE b.seat_id = $1
        AND b.status = 'CANCELLED'
        AND NOT EXISTS (SELECT 1 FROM payments p WHERE p.booking_id = b.id)
    `, seatID)
	if err != nil {
		return 0, fmt.Errorf("purge cancelled bookings for seat %d: %w", seatID, err)
	}
	return cmd.RowsAffected(), nil
}

func (r *PGBookingRepository) CountByFlight(ctx context.Context, flightID int64) (int, error) {
	var n int
	if err := r.queryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE flight_id=$1`, flightID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count bookings of flight %d: %w", flightID, err)
	}
	return n, nil
}

func (r *PGBookingRepository) ListConfirmedUserIDs(ctx context.Context, flightID int64) ([]int64, error) {
	return r.ids(ctx, `SELECT DISTINCT user_id FROM bookings WHERE flight_id=$1 AND status='CONFIRMED' ORDER BY user_id`, flightID)
}

func (r *PGBookingRepository) ListFlightIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	return r.ids(ctx, `SELECT DISTINCT flight_id FROM bookings WHERE user_id=$1 AND status <> 'CANCELLED' ORDER BY flight_id`, userID)
}

func (r *PGBookingRepository) ids(ctx context.Context, sql string, arg int64) ([]int64, error) {
	rows, err := r.query(ctx, sql, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
