package seatmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_DefaultLayout(t *testing.T) {
	seats, err := Layout{Rows: 5, SeatsPerRow: 4}.Build(7)
	require.NoError(t, err)
	require.Len(t, seats, 20)

	assert.Equal(t, "1A", seats[0].Designator())
	assert.Equal(t, domain.SeatClassBusiness, seats[0].Class)
	assert.Equal(t, 2.0, seats[0].PriceMultiplier)

	last := seats[len(seats)-1]
	assert.Equal(t, "5D", last.Designator())
	assert.Equal(t, domain.SeatClassEconomy, last.Class)
	assert.Equal(t, 1.0, last.PriceMultiplier)
	assert.Equal(t, int64(7), last.FlightID)
	assert.Equal(t, domain.SeatStatusAvailable, last.Status)
}

func TestBuild_SkipsLetterI(t *testing.T) {
	seats, err := Layout{Rows: 1, SeatsPerRow: 10}.Build(1)
	require.NoError(t, err)
	assert.Equal(t, "1J", seats[8].Designator())
	assert.Equal(t, "1K", seats[9].Designator())
}

func TestBuild_ExitRowsAndOverrides(t *testing.T) {
	zero := 0
	seats, err := Layout{
		Rows:         12,
		SeatsPerRow:  6,
		BusinessRows: &zero,
		ExitRows:     []int{10},
		Overrides: map[string]Override{
			"12A": {Category: domain.SeatCategoryExtraLegroom, Multiplier: 1.5},
		},
	}.Build(1)
	require.NoError(t, err)

	byName := map[string]domain.Seat{}
	for _, s := range seats {
		byName[s.Designator()] = s
	}
	assert.Equal(t, domain.SeatClassEconomy, byName["1A"].Class)
	assert.Equal(t, domain.SeatCategoryExtraLegroom, byName["10C"].Category)
	assert.Equal(t, 1.3, byName["10C"].PriceMultiplier)
	assert.Equal(t, 1.5, byName["12A"].PriceMultiplier)
	assert.Equal(t, domain.SeatCategoryExtraLegroom, byName["12A"].Category)
}

func TestValidate_RejectsUnknownOverride(t *testing.T) {
	err := Layout{Rows: 2, SeatsPerRow: 2, Overrides: map[string]Override{"3A": {Multiplier: 2}}}.Validate()
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "overrides.3A")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoadLayouts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seatmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
layouts:
  A320:
    rows: 30
    seats_per_row: 6
    exit_rows: [10, 11]
    overrides:
      "1A": {class: BUSINESS, multiplier: 3.0}
`), 0o600))

	layouts, err := LoadLayouts(path)
	require.NoError(t, err)
	require.Contains(t, layouts, "A320")
	assert.Equal(t, 30, layouts["A320"].Rows)
	assert.Equal(t, 3.0, layouts["A320"].Overrides["1A"].Multiplier)
}
