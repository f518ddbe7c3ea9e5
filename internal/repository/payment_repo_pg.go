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

const paymentColumns = `p.id, p.booking_id, p.amount_cents, p.method, p.status, p.transaction_id, p.created_at, p.updated_at`

type PGPaymentRepository struct {
	pgConn
}

func NewPaymentRepository(db *pgxpool.Pool) PaymentRepository {
	return &PGPaymentRepository{pgConn{db: db}}
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	if err := row.Scan(&p.ID, &p.BookingID, &p.AmountCents, &p.Method, &p.Status, &p.TransactionID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGPaymentRepository) GetByBooking(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	p, err := scanPayment(r.queryRow(ctx, `SELECT `+paymentColumns+` FROM payments p WHERE p.booking_id=$1 FOR UPDATE`, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment of booking %d: %w", bookingID, err)
	}
	return p, nil
}

func (r *PGPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	err := r.queryRow(ctx, `INSERT INTO payments (booking_id, amount_cents, method, status, transaction_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id`,
		payment.BookingID, payment.AmountCents, payment.Method, payment.Status, payment.TransactionID, payment.CreatedAt).Scan(&payment.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrConcurrentUpdate, err)
		}
		return fmt.Errorf("create payment: %w", err)
	}
	payment.UpdatedAt = payment.CreatedAt
	return nil
}

func (r *PGPaymentRepository) MarkPaid(ctx context.Context, id int64, transactionID string, now time.Time) error {
	cmd, err := r.exec(ctx, `UPDATE payments SET status='PAID', transaction_id=$2, updated_at=$3 WHERE id=$1`, id, transactionID, now)
	if err != nil {
		return fmt.Errorf("mark payment %d paid: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("mark payment %d paid: %w", id, pgx.ErrNoRows)
	}
	return nil
}

func (r *PGPaymentRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Payment, error) {
	rows, err := r.query(ctx, `SELECT `+paymentColumns+` FROM payments p
		JOIN bookings b ON b.id = p.booking_id
		WHERE b.user_id=$1
		ORDER BY p.created_at DESC, p.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list payments of user %d: %w", userID, err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

func (r *PGPaymentRepository) GetTicket(ctx context.Context, bookingID int64) (*domain.Ticket, error) {
	var t domain.Ticket
	err := r.queryRow(ctx, `SELECT id, booking_id, number, issued_at FROM tickets WHERE booking_id=$1`, bookingID).
		Scan(&t.ID, &t.BookingID, &t.Number, &t.IssuedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ticket of booking %d: %w", bookingID, err)
	}
	return &t, nil
}

func (r *PGPaymentRepository) CreateTicket(ctx context.Context, ticket *domain.Ticket) error {
	err := r.queryRow(ctx, `INSERT INTO tickets (booking_id, number, issued_at) VALUES ($1, $2, $3) RETURNING id`,
		ticket.BookingID, ticket.Number, ticket.IssuedAt).Scan(&ticket.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrConcurrentUpdate, err)
		}
		return fmt.Errorf("create ticket: %w", err)
	}
	return nil
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
