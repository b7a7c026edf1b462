package money

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Money is an amount in minor units (cents) of the user's display
// currency. Ledger and aggregation math stays in integers; floats appear
// only at the formatting edge.
type Money int64

var ErrInvalidAmount = errors.New("invalid amount")

const centsPerUnit = 100

// Parse converts a decimal string such as "12.34" or "12,34" into cents.
// The third decimal digit rounds half-up. Amounts must be positive.
func Parse(s string) (Money, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}

	intPart, fracPart, err := splitDecimal(s)
	if err != nil {
		return 0, err
	}

	units, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxUnits = (1<<63 - 1) / centsPerUnit
	if units > maxUnits {
		return 0, ErrInvalidAmount
	}

	cents := units*centsPerUnit + fracCents(fracPart)
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return Money(cents), nil
}

func splitDecimal(s string) (intPart, fracPart string, err error) {
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return "", "", ErrInvalidAmount
	}
	intPart = parts[0]
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if r < '0' || r > '9' {
			return "", "", ErrInvalidAmount
		}
	}
	return intPart, fracPart, nil
}

func fracCents(frac string) int64 {
	var cents int64
	if len(frac) > 0 {
		cents = int64(frac[0]-'0') * 10
	}
	if len(frac) > 1 {
		cents += int64(frac[1] - '0')
	}
	if len(frac) > 2 && frac[2] >= '5' {
		cents++
	}
	return cents
}

func FromCents(c int64) Money {
	return Money(c)
}

func (m Money) Cents() int64 {
	return int64(m)
}

// Float is for presentation only. Keep arithmetic on cents.
func (m Money) Float() float64 {
	return float64(m) / centsPerUnit
}

// Format renders the amount with a currency symbol, e.g. "₹1200.50".
func (m Money) Format(symbol string) string {
	if m < 0 {
		return fmt.Sprintf("-%s%d.%02d", symbol, -m/centsPerUnit, -m%centsPerUnit)
	}
	return fmt.Sprintf("%s%d.%02d", symbol, m/centsPerUnit, m%centsPerUnit)
}
