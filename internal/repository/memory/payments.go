package memory

import (
	"cmp"
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/Domenick1991/seatflow/internal/repository"
)

type paymentRepo struct{ db *DB }

func (r paymentRepo) GetByBooking(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	defer r.db.acquire(ctx)()
	for _, p := range r.db.data.payments {
		if p.BookingID == bookingID {
			return &p, nil
		}
	}
	return nil, nil
}

func (r paymentRepo) Create(ctx context.Context, payment *domain.Payment) error {
	defer r.db.acquire(ctx)()
	if _, ok := r.db.data.bookings[payment.BookingID]; !ok {
		return fmt.Errorf("create payment: %w", domain.ErrBookingNotFound)
	}
	for _, p := range r.db.data.payments {
		if p.BookingID == payment.BookingID {
			return fmt.Errorf("create payment: booking %d already has payment %d: %w", payment.BookingID, p.ID, domain.ErrConcurrentUpdate)
		}
	}
	payment.ID = r.db.data.id()
	payment.UpdatedAt = payment.CreatedAt
	r.db.data.payments[payment.ID] = *payment
	return nil
}

func (r paymentRepo) MarkPaid(ctx context.Context, id int64, transactionID string, now time.Time) error {
	defer r.db.acquire(ctx)()
	p, ok := r.db.data.payments[id]
	if !ok {
		return fmt.Errorf("mark payment %d paid: not found", id)
	}
	p.Status = domain.PaymentStatusPaid
	p.TransactionID = transactionID
	p.UpdatedAt = now
	r.db.data.payments[id] = p
	return nil
}

func (r paymentRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Payment, error) {
	defer r.db.acquire(ctx)()
	return sortedValues(r.db.data.payments, func(p domain.Payment) bool {
		b, ok := r.db.data.bookings[p.BookingID]
		return ok && b.UserID == userID
	}, func(a, b domain.Payment) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	}), nil
}

func (r paymentRepo) GetTicket(ctx context.Context, bookingID int64) (*domain.Ticket, error) {
	defer r.db.acquire(ctx)()
	for _, t := range r.db.data.tickets {
		if t.BookingID == bookingID {
			return &t, nil
		}
	}
	return nil, nil
}

func (r paymentRepo) CreateTicket(ctx context.Context, ticket *domain.Ticket) error {
	defer r.db.acquire(ctx)()
	for _, t := range r.db.data.tickets {
		if t.BookingID == ticket.BookingID {
			return fmt.Errorf("create ticket: booking %d already has ticket %s: %w", ticket.BookingID, t.Number, domain.ErrConcurrentUpdate)
		}
	}
	ticket.ID = r.db.data.id()
	r.db.data.tickets[ticket.ID] = *ticket
	return nil
}

var _ repository.PaymentRepository = paymentRepo{}
