package validation

import (
	"testing"
	"time"

	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestStruct_PassengerData(t *testing.T) {
	fields := Struct(domain.PassengerData{FirstName: "Ada"})
	assert.Equal(t, "This field is required", fields["last_name"])
	assert.Contains(t, fields, "date_of_birth")
	assert.NotContains(t, fields, "first_name")

	assert.Nil(t, Struct(domain.PassengerData{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Phone:       "+44 20 7946 0000",
		Passport:    "X1234567",
		Nationality: "GB",
		DateOfBirth: time.Date(1990, 12, 10, 0, 0, 0, 0, time.UTC),
	}))
}
