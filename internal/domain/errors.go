package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies an error for callers that need to react to it (HTTP mapping, retries).
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindNotAuthorized
	KindConflict
	KindPolicy
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindNotAuthorized:
		return "not_authorized"
	case KindConflict:
		return "conflict"
	case KindPolicy:
		return "policy"
	default:
		return "internal"
	}
}

// Error is a sentinel business error with a stable machine readable code.
type Error struct {
	kind Kind
	code string
	msg  string
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{kind: kind, code: code, msg: msg}
}

func (e *Error) Error() string { return e.msg }
func (e *Error) Kind() Kind    { return e.kind }
func (e *Error) Code() string  { return e.code }

var (
	ErrInvalidInput         = newError(KindValidation, "INVALID_INPUT", "invalid input")
	ErrInvalidPassengerData = newError(KindValidation, "INVALID_PASSENGER_DATA", "passenger data must be complete")
	ErrInvalidPaymentMethod = newError(KindValidation, "INVALID_PAYMENT_METHOD", "unsupported payment method")
	ErrInvalidFlightStatus  = newError(KindValidation, "INVALID_FLIGHT_STATUS", "unknown flight status")
	ErrInvalidSchedule      = newError(KindValidation, "INVALID_SCHEDULE", "arrival must be after departure")
	ErrSameSeat             = newError(KindValidation, "SAME_SEAT", "booking already holds this seat")

	ErrFlightNotFound  = newError(KindNotFound, "FLIGHT_NOT_FOUND", "flight not found")
	ErrSeatNotFound    = newError(KindNotFound, "SEAT_NOT_FOUND", "seat not found")
	ErrBookingNotFound = newError(KindNotFound, "BOOKING_NOT_FOUND", "booking not found")

	ErrNotAuthorized = newError(KindNotAuthorized, "NOT_AUTHORIZED", "not authorized")

	ErrSeatUnavailable         = newError(KindConflict, "SEAT_UNAVAILABLE", "seat is not available")
	ErrConflictingBooking      = newError(KindConflict, "CONFLICTING_BOOKING", "seat is referenced by an active booking; cancel the booking instead")
	ErrSeatAlreadyBooked       = newError(KindConflict, "SEAT_ALREADY_BOOKED", "seat is already booked")
	ErrDuplicatePendingBooking = newError(KindConflict, "DUPLICATE_PENDING_BOOKING", "you already have a pending booking for this seat; complete its payment instead")
	ErrAlreadyBooked           = newError(KindConflict, "ALREADY_BOOKED", "you already hold a confirmed booking for this seat")
	ErrSeatHeldByOther         = newError(KindConflict, "SEAT_HELD_BY_OTHER", "seat is currently held by another passenger")
	ErrSeatTaken               = newError(KindConflict, "SEAT_TAKEN", "seat is taken")
	ErrConcurrentUpdate        = newError(KindConflict, "CONCURRENT_UPDATE", "concurrent update detected, please retry")
	ErrFlightHasBookings       = newError(KindConflict, "FLIGHT_HAS_BOOKINGS", "flight has bookings")

	ErrProfileRequired   = newError(KindPolicy, "PROFILE_REQUIRED", "complete your passenger profile or provide passenger data before booking")
	ErrFlightNotBookable = newError(KindPolicy, "FLIGHT_NOT_BOOKABLE", "flight is not open for booking")
	ErrFlightDeparted    = newError(KindPolicy, "FLIGHT_DEPARTED", "flight has already departed")
	ErrNotCancellable    = newError(KindPolicy, "NOT_CANCELLABLE", "booking cannot be cancelled")
	ErrBookingNotActive  = newError(KindPolicy, "BOOKING_NOT_ACTIVE", "booking is cancelled")
	ErrBookingExpired    = newError(KindPolicy, "BOOKING_EXPIRED", "booking expired before payment; please book again")
	ErrPaymentRequired   = newError(KindPolicy, "PAYMENT_REQUIRED", "complete payment before check-in")
	ErrCheckInTooEarly   = newError(KindPolicy, "CHECK_IN_TOO_EARLY", "check-in opens 24 hours before departure")
	ErrCheckInClosed     = newError(KindPolicy, "CHECK_IN_CLOSED", "check-in closes 1 hour before departure")
	ErrCheckInRequired   = newError(KindPolicy, "CHECK_IN_REQUIRED", "check in first")
	ErrTicketMissing     = newError(KindPolicy, "TICKET_MISSING", "ticket not found; ensure payment is completed")
)

// KindOf reports the kind of err, KindInternal for anything that is not a domain error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindInternal
}

// CodeOf reports the machine readable code of err.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return "INTERNAL"
}

// BookingConflictError carries the booking that blocks a seat so the caller can pay it instead.
type BookingConflictError struct {
	Err       *Error
	BookingID int64
	Reference string
}

func (e *BookingConflictError) Error() string {
	if e.Reference == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s (ref: %s)", e.Err.Error(), e.Reference)
}

func (e *BookingConflictError) Unwrap() error { return e.Err }

// CheckInWindowError reports how far the flight is from departure.
type CheckInWindowError struct {
	Err                 *Error
	HoursUntilDeparture float64
}

func (e *CheckInWindowError) Error() string {
	return fmt.Sprintf("%s (%.2f hours until departure)", e.Err.Error(), e.HoursUntilDeparture)
}

func (e *CheckInWindowError) Unwrap() error { return e.Err }

// ValidationError lists offending fields.
type ValidationError struct {
	Err    *Error
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Err.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Err.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return e.Err }
