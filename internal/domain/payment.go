package domain

import (
	"strings"
	"time"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

type PaymentMethod string

const (
	PaymentMethodCard      PaymentMethod = "CARD"
	PaymentMethodApplePay  PaymentMethod = "APPLE_PAY"
	PaymentMethodGooglePay PaymentMethod = "GOOGLE_PAY"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s))); m {
	case PaymentMethodCard, PaymentMethodApplePay, PaymentMethodGooglePay:
		return m, nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}

type Payment struct {
	ID            int64         `json:"id"`
	BookingID     int64         `json:"booking_id"`
	AmountCents   int64         `json:"amount_cents"`
	Method        PaymentMethod `json:"method"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transaction_id,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type Ticket struct {
	ID        int64     `json:"id"`
	BookingID int64     `json:"booking_id"`
	Number    string    `json:"number"`
	IssuedAt  time.Time `json:"issued_at"`
}

type CheckIn struct {
	ID           int64     `json:"id"`
	BookingID    int64     `json:"booking_id"`
	CheckedInAt  time.Time `json:"checked_in_at"`
	BoardingGate string    `json:"boarding_gate"`
	BoardingTime time.Time `json:"boarding_time"`
}

// BoardingPass is the view handed to the passenger after check-in.
type BoardingPass struct {
	QRPayload     string    `json:"qr_payload"`
	Reference     string    `json:"reference"`
	TicketNumber  string    `json:"ticket_number"`
	PassengerName string    `json:"passenger_name"`
	FlightNumber  string    `json:"flight_number"`
	FromAirport   string    `json:"from_airport"`
	ToAirport     string    `json:"to_airport"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
	Seat          string    `json:"seat"`
	SeatClass     SeatClass `json:"seat_class"`
	Gate          string    `json:"gate"`
	Terminal      string    `json:"terminal"`
	BoardingTime  time.Time `json:"boarding_time"`
}
