// Package seatmap materialises a flight's seats from an aircraft layout.
package seatmap

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/Domenick1991/seatflow/internal/domain"
	"gopkg.in/yaml.v3"
)

// letters skips I, which reads as 1 on a boarding pass.
var letters = []string{"A", "B", "C", "D", "E", "F", "G", "H", "J", "K"}

const (
	defaultBusinessRows       = 3
	defaultBusinessMultiplier = 2.0
	defaultExitRowMultiplier  = 1.3
)

type Override struct {
	Class      domain.SeatClass    `yaml:"class" json:"class"`
	Category   domain.SeatCategory `yaml:"category" json:"category"`
	Multiplier float64             `yaml:"multiplier" json:"multiplier"`
}

type Layout struct {
	Rows               int                 `yaml:"rows" json:"rows"`
	SeatsPerRow        int                 `yaml:"seats_per_row" json:"seats_per_row"`
	BusinessRows       *int                `yaml:"business_rows" json:"business_rows,omitempty"`
	BusinessMultiplier float64             `yaml:"business_multiplier" json:"business_multiplier,omitempty"`
	ExitRows           []int               `yaml:"exit_rows" json:"exit_rows,omitempty"`
	ExitRowMultiplier  float64             `yaml:"exit_row_multiplier" json:"exit_row_multiplier,omitempty"`
	Overrides          map[string]Override `yaml:"overrides" json:"overrides,omitempty"`
}

// LoadLayouts reads named aircraft layouts from a YAML file:
//
//	layouts:
//	  A320:
//	    rows: 30
//	    seats_per_row: 6
//	    exit_rows: [10, 11]
//	    overrides:
//	      "1A": {class: BUSINESS, multiplier: 3.0}
func LoadLayouts(path string) (map[string]Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seat map: %w", err)
	}
	var doc struct {
		Layouts map[string]Layout `yaml:"layouts"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse seat map: %w", err)
	}
	for name, l := range doc.Layouts {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("layout %s: %w", name, err)
		}
	}
	return doc.Layouts, nil
}

func (l Layout) Validate() error {
	fields := map[string]string{}
	if l.Rows <= 0 || l.Rows > 99 {
		fields["rows"] = "must be between 1 and 99"
	}
	if l.SeatsPerRow <= 0 || l.SeatsPerRow > len(letters) {
		fields["seats_per_row"] = fmt.Sprintf("must be between 1 and %d", len(letters))
	}
	if l.BusinessRows != nil && (*l.BusinessRows < 0 || *l.BusinessRows > l.Rows) {
		fields["business_rows"] = "must be between 0 and rows"
	}
	if len(fields) == 0 {
		for designator, o := range l.Overrides {
			row, letter, ok := parseDesignator(designator)
			if !ok || row > l.Rows || !slices.Contains(letters[:l.SeatsPerRow], letter) {
				fields["overrides."+designator] = "no such seat"
				continue
			}
			if o.Multiplier < 0 {
				fields["overrides."+designator] = "multiplier must be positive"
			}
		}
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Err: domain.ErrInvalidInput, Fields: fields}
	}
	return nil
}

// Build returns AVAILABLE seats for flightID, ordered by row then letter.
func (l Layout) Build(flightID int64) ([]domain.Seat, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	businessRows := defaultBusinessRows
	if l.BusinessRows != nil {
		businessRows = *l.BusinessRows
	}
	businessMultiplier := orDefault(l.BusinessMultiplier, defaultBusinessMultiplier)
	exitMultiplier := orDefault(l.ExitRowMultiplier, defaultExitRowMultiplier)

	seats := make([]domain.Seat, 0, l.Rows*l.SeatsPerRow)
	for row := 1; row <= l.Rows; row++ {
		for _, letter := range letters[:l.SeatsPerRow] {
			seat := domain.Seat{
				FlightID:        flightID,
				Row:             row,
				Letter:          letter,
				Class:           domain.SeatClassEconomy,
				Category:        domain.SeatCategoryStandard,
				PriceMultiplier: 1.0,
				Status:          domain.SeatStatusAvailable,
			}
			switch {
			case row <= businessRows:
				seat.Class = domain.SeatClassBusiness
				seat.PriceMultiplier = businessMultiplier
			case slices.Contains(l.ExitRows, row):
				seat.Category = domain.SeatCategoryExtraLegroom
				seat.PriceMultiplier = exitMultiplier
			}
			if o, ok := l.Overrides[seat.Designator()]; ok {
				applyOverride(&seat, o)
			}
			seats = append(seats, seat)
		}
	}
	return seats, nil
}

func applyOverride(seat *domain.Seat, o Override) {
	if o.Class != "" {
		seat.Class = o.Class
	}
	if o.Category != "" {
		seat.Category = o.Category
	}
	if o.Multiplier > 0 {
		seat.PriceMultiplier = o.Multiplier
	}
}

func parseDesignator(s string) (int, string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 {
		return 0, "", false
	}
	row, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || row <= 0 {
		return 0, "", false
	}
	return row, s[len(s)-1:], true
}

func orDefault(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}
