// Package ids generates the human-facing identifiers printed on bookings and tickets.
package ids

import (
	"strings"

	"github.com/google/uuid"
)

func hexChars(n int) string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:n])
}

// NewReference returns a booking reference (PNR) such as BK3F9A0C1D2E.
func NewReference() string { return "BK" + hexChars(10) }

// NewTicketNumber returns a ticket number such as TK0A1B2C3D4E5F.
func NewTicketNumber() string { return "TK" + hexChars(12) }

// NewTransactionID returns a mock payment transaction id.
func NewTransactionID() string { return "TXN" + hexChars(16) }
