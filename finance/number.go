package finance

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Number is a numeric JSON leaf that remembers whether the upstream payload
// actually carried it. Values may arrive as JSON numbers or as strings
// (protobuf int64 fields are rendered as strings). Anything that cannot be
// read as a finite number, "NaN" and "Infinity" included, decodes as an
// absent value instead of failing the payload.
type Number struct {
	Value float64
	Valid bool
}

func Num(v float64) Number {
	return Number{Value: v, Valid: true}
}

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil || raw == nil {
		return nil
	}
	if s, ok := raw.(string); ok && s == "" {
		return nil
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil || !finite(v) {
		return nil
	}
	n.Value, n.Valid = v, true
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Or returns the value, or def when the leaf was absent.
func (n Number) Or(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.Value
}

// Money is the fixed-point amount used by the Fi data server: whole units
// plus billionths in nanos.
type Money struct {
	CurrencyCode string `json:"currencyCode,omitempty"`
	Units        Number `json:"units"`
	Nanos        Number `json:"nanos"`
}

func (m Money) Valid() bool {
	return m.Units.Valid || m.Nanos.Valid
}

func (m Money) Decimal() decimal.Decimal {
	units := toDecimal(m.Units.Or(0))
	nanos := toDecimal(m.Nanos.Or(0)).Shift(-9)
	return units.Add(nanos)
}

func (m Money) Float() float64 {
	return m.Decimal().InexactFloat64()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// toDecimal maps NaN and infinities to zero; decimal cannot represent them.
func toDecimal(v float64) decimal.Decimal {
	if !finite(v) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

func round2(v float64) float64 {
	if !finite(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
