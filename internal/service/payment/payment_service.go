// Package payment is a mock payment processor. Every charge succeeds.
package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/seatflow/internal/clock"
	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/Domenick1991/seatflow/internal/ids"
	"github.com/Domenick1991/seatflow/internal/repository"
	"github.com/Domenick1991/seatflow/internal/service/seats"
	"go.uber.org/zap"
)

type PaymentUseCase interface {
	Pay(ctx context.Context, caller domain.Caller, bookingID int64, method string) (*domain.Payment, error)
	PaymentHistory(ctx context.Context, caller domain.Caller) ([]domain.Payment, error)
}

type PaymentService struct {
	tx       repository.Transactor
	bookings repository.BookingRepository
	payments repository.PaymentRepository
	ledger   *seats.Ledger
	clock    clock.Clock
	log      *zap.Logger
}

func NewPaymentService(store repository.Store, ledger *seats.Ledger, clk clock.Clock, log *zap.Logger) *PaymentService {
	return &PaymentService{
		tx:       store.Tx,
		bookings: store.Bookings,
		payments: store.Payments,
		ledger:   ledger,
		clock:    clk,
		log:      log.With(zap.String("service", "payment")),
	}
}

// Pay charges the booking once. Repeating the call on a paid booking returns the stored payment.
func (s *PaymentService) Pay(ctx context.Context, caller domain.Caller, bookingID int64, method string) (*domain.Payment, error) {
	m, err := domain.ParsePaymentMethod(method)
	if err != nil {
		return nil, err
	}

	var (
		payment *domain.Payment
		expired bool
		settled bool
	)
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		now := s.clock.Now()
		b, err := s.bookings.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.UserID != caller.UserID {
			return domain.ErrNotAuthorized
		}

		existing, err := s.payments.GetByBooking(ctx, b.ID)
		if err != nil {
			return err
		}
		if existing != nil && existing.Status == domain.PaymentStatusPaid {
			payment = existing
			return nil
		}
		if b.Status == domain.BookingStatusCancelled {
			return domain.ErrBookingNotActive
		}
		if b.Expired(now, s.ledger.PaymentGrace()) {
			expired = true
			return s.ledger.CancelBooking(ctx, b, now)
		}

		if existing == nil {
			existing = &domain.Payment{
				BookingID:     b.ID,
				AmountCents:   b.TotalPriceCents,
				Method:        m,
				Status:        domain.PaymentStatusPaid,
				TransactionID: ids.NewTransactionID(),
				CreatedAt:     now,
			}
			if err := s.payments.Create(ctx, existing); err != nil {
				return err
			}
		}
		payment, err = s.Settle(ctx, b, existing, now)
		settled = err == nil
		return err
	})
	if err != nil {
		return nil, err
	}
	if expired {
		s.log.Info("payment rejected, booking expired", zap.Int64("booking_id", bookingID))
		return nil, domain.ErrBookingExpired
	}
	if settled {
		s.log.Info("payment completed",
			zap.Int64("booking_id", bookingID),
			zap.String("transaction_id", payment.TransactionID),
			zap.Int64("amount_cents", payment.AmountCents),
			zap.String("method", string(payment.Method)))
	}
	return payment, nil
}

// Settle must run inside a transaction. It marks p PAID when it is not yet,
// confirms the booking, books the seat and issues the ticket if none exists.
func (s *PaymentService) Settle(ctx context.Context, b *domain.Booking, p *domain.Payment, now time.Time) (*domain.Payment, error) {
	if p.Status != domain.PaymentStatusPaid {
		txn := ids.NewTransactionID()
		if err := s.payments.MarkPaid(ctx, p.ID, txn, now); err != nil {
			return nil, fmt.Errorf("mark payment paid: %w", err)
		}
		p.Status = domain.PaymentStatusPaid
		p.TransactionID = txn
		p.UpdatedAt = now
	}

	if b.Status != domain.BookingStatusConfirmed {
		if err := s.bookings.UpdateStatus(ctx, b.ID, domain.BookingStatusConfirmed, now); err != nil {
			return nil, err
		}
		b.Status = domain.BookingStatusConfirmed
		b.UpdatedAt = now
	}
	if err := s.ledger.Book(ctx, b.SeatID); err != nil {
		return nil, err
	}

	ticket, err := s.payments.GetTicket(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		ticket = &domain.Ticket{BookingID: b.ID, Number: ids.NewTicketNumber(), IssuedAt: now}
		if err := s.payments.CreateTicket(ctx, ticket); err != nil {
			return nil, fmt.Errorf("issue ticket: %w", err)
		}
	}
	return p, nil
}

func (s *PaymentService) PaymentHistory(ctx context.Context, caller domain.Caller) ([]domain.Payment, error) {
	return s.payments.ListByUser(ctx, caller.UserID)
}

var _ PaymentUseCase = (*PaymentService)(nil)
