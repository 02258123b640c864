package devtrack

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Percent is a ratio expressed in percent, e.g. 25 for a quarter.
type Percent float64

var hundred = decimal.NewFromInt(100)

// percentOf returns a/b*100, or 0 when b is zero.
func percentOf(a, b decimal.Decimal) Percent {
	if b.IsZero() {
		return 0
	}
	return Percent(a.Div(b).Mul(hundred).InexactFloat64())
}

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", float64(p))
}
