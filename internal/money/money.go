package money

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Paise is an amount of money in minor units (1/100 rupee). Keeping balances
// in integer minor units avoids floating point drift in arithmetic; rupees
// only appear at the API boundary.
type Paise int64

// FromRupees converts a rupee amount to paise, rounding to the nearest paisa.
func FromRupees(r float64) Paise {
	return Paise(math.Round(r * 100))
}

// Rupees returns the amount as a rupee value for API responses.
func (p Paise) Rupees() float64 {
	return float64(p) / 100
}

// String formats the amount with two decimals, e.g. "830.00".
func (p Paise) String() string {
	sign := ""
	v := int64(p)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// ParseRupees parses a decimal rupee string such as "30" or "30.50".
func ParseRupees(s string) (Paise, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	r, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return FromRupees(r), nil
}

// SplitEven divides total across ways participants, rounding half-up to a
// whole paisa. The shares may drift from an exact division by up to one
// paisa per participant; callers accept that reconciliation gap.
func SplitEven(total Paise, ways int) Paise {
	if ways <= 0 {
		return 0
	}
	t := int64(total)
	w := int64(ways)
	return Paise((t + w/2) / w)
}
