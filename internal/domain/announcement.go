package domain

import "time"

type AnnouncementType string

const (
	AnnouncementDelay        AnnouncementType = "DELAY"
	AnnouncementCancellation AnnouncementType = "CANCELLATION"
	AnnouncementGateChange   AnnouncementType = "GATE_CHANGE"
	AnnouncementBoarding     AnnouncementType = "BOARDING"
	AnnouncementGeneral      AnnouncementType = "GENERAL"
)

// Announcement is a passenger-visible message. FlightID scopes it to a flight,
// UserID to a single passenger; both nil means everyone.
type Announcement struct {
	ID        int64            `json:"id"`
	FlightID  *int64           `json:"flight_id,omitempty"`
	UserID    *int64           `json:"user_id,omitempty"`
	Type      AnnouncementType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Active    bool             `json:"active"`
	CreatedAt time.Time        `json:"created_at"`
}
