package devtrack

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// SalesProgress tracks the units sold in a project.
//
// UnitsSold above TotalUnits is rejected by Validate, it is never clamped.
type SalesProgress struct {
	TotalUnits   int
	UnitsSold    int
	SPADate      Date // first Sales & Purchase Agreement signed.
	HandoverDate Date // hand over / vacant possession.
}

// Percentage returns the units sold in percent of the total units, 0 when
// there are no units.
func (s SalesProgress) Percentage() Percent {
	return percentOf(decimal.NewFromInt(int64(s.UnitsSold)), decimal.NewFromInt(int64(s.TotalUnits)))
}

// UnitsLeft returns the number of units still for sale.
func (s SalesProgress) UnitsLeft() int { return s.TotalUnits - s.UnitsSold }

func (s SalesProgress) Validate() error {
	var errs error
	if s.TotalUnits < 0 {
		errs = errors.Join(errs, fmt.Errorf("total_units must not be negative, got %d", s.TotalUnits))
	}
	if s.UnitsSold < 0 {
		errs = errors.Join(errs, fmt.Errorf("units_sold must not be negative, got %d", s.UnitsSold))
	}
	if s.UnitsSold > s.TotalUnits {
		errs = errors.Join(errs, fmt.Errorf("units_sold %d exceeds total_units %d", s.UnitsSold, s.TotalUnits))
	}
	return errs
}

func (s SalesProgress) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("total_units", s.TotalUnits)
	w.Append("units_sold", s.UnitsSold)
	w.Optional("spa_date", s.SPADate)
	w.Optional("handover_date", s.HandoverDate)
	return w.MarshalJSON()
}

func (s *SalesProgress) UnmarshalJSON(data []byte) error {
	var j struct {
		TotalUnits   decimal.Decimal `json:"total_units"`
		UnitsSold    decimal.Decimal `json:"units_sold"`
		SPADate      Date            `json:"spa_date"`
		HandoverDate Date            `json:"handover_date"`
	}
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*s = SalesProgress{
		TotalUnits:   int(j.TotalUnits.IntPart()),
		UnitsSold:    int(j.UnitsSold.IntPart()),
		SPADate:      j.SPADate,
		HandoverDate: j.HandoverDate,
	}
	return nil
}
