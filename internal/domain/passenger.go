package domain

import "time"

// PassengerData identifies the traveller on a booking. It may differ from the booking user.
type PassengerData struct {
	FirstName   string    `json:"first_name" validate:"required,max=100"`
	LastName    string    `json:"last_name" validate:"required,max=100"`
	Phone       string    `json:"phone" validate:"required,max=32"`
	Passport    string    `json:"passport" validate:"required,max=32"`
	Nationality string    `json:"nationality" validate:"required,max=64"`
	DateOfBirth time.Time `json:"date_of_birth" validate:"required"`
}

// Empty reports whether no field was supplied at all.
func (p PassengerData) Empty() bool {
	return p.FirstName == "" && p.LastName == "" && p.Phone == "" &&
		p.Passport == "" && p.Nationality == "" && p.DateOfBirth.IsZero()
}

func (p PassengerData) FullName() string {
	return p.FirstName + " " + p.LastName
}

// PassengerProfile is the user's own saved passenger identity.
type PassengerProfile struct {
	UserID int64 `json:"user_id"`
	PassengerData
	UpdatedAt time.Time `json:"updated_at"`
}

func (p PassengerProfile) Complete() bool {
	return p.FirstName != "" && p.LastName != "" && p.Phone != "" &&
		p.Passport != "" && p.Nationality != "" && !p.DateOfBirth.IsZero()
}
