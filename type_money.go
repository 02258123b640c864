package devtrack

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency used when neither the record nor the
// configuration names one.
const DefaultCurrency = "MYR"

// Money represents a monetary value, like a GDV or a contract amount.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M returns a Money from a value and an ISO currency code.
func M[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// currency returns the full currency definition, never nil.
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// fraction returns the number of decimals of the currency's minor unit.
func (m Money) fraction() int32 {
	if m.cur == "" {
		return 2
	}
	return int32(m.currency().Fraction)
}

// String returns the money formatted in its currency, e.g. "RM1,250,000.00".
// Money without currency is formatted as a plain number.
func (m Money) String() string {
	if m.cur == "" {
		return formatThousands(m.value.StringFixed(2))
	}
	cur := m.currency()
	dec := m.value.Shift(m.fraction())
	return cur.Formatter().Format(dec.Round(0).IntPart())
}

func (m Money) Currency() string                { return m.cur }
func (m Money) Amount() decimal.Decimal         { return m.value }
func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) LessThanOrEqual(n Money) bool    { return m.value.LessThanOrEqual(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Add(n Money) Money               { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money               { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }
func (m Money) InCurrency(currency string) Money { return Money{value: m.value, cur: currency} }

// Ratio returns m as a percentage of n, 0 when n is zero.
func (m Money) Ratio(n Money) Percent { return percentOf(m.value, n.value) }

// cur makes the "" currency weak: it takes the other operand's currency.
// Two different non empty currencies keep the left one, amounts are never
// converted.
func cur(a, b Money) string {
	if a.cur == "" {
		return b.cur
	}
	return a.cur
}

// MarshalJSON writes the exact amount as a plain JSON number. The currency is
// carried by the enclosing object. Rounding to the minor unit is for display
// only.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.value.String()), nil
}

// UnmarshalJSON reads a number (or a quoted number, or null). The currency
// must be set by the caller.
func (m *Money) UnmarshalJSON(data []byte) error {
	return m.value.UnmarshalJSON(data)
}
