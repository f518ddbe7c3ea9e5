package domain

type Role string

const (
	RolePassenger Role = "PASSENGER"
	RoleStaff     Role = "STAFF"
)

// Caller is the authenticated identity behind a request.
type Caller struct {
	UserID int64
	Role   Role
}

func (c Caller) IsStaff() bool {
	return c.Role == RoleStaff
}
