package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places currency amounts are rounded to.
const Scale = 2

var oneHundred = decimal.NewFromInt(100)

// Percent returns the unrounded share of total at pct percent.
func Percent(total, pct decimal.Decimal) decimal.Decimal {
	return total.Mul(pct).Div(oneHundred)
}

// RoundHalfUp rounds to two decimal places, halves away from zero.
// decimal.Round rounds half away from zero, which is identical to
// round-half-up for the non-negative amounts handled here.
func RoundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Split divides total between the platform and the organizer. The platform
// share is the rounded percentage cut; the organizer share is the exact
// remainder and is never rounded independently, so admin + organizer always
// equals total regardless of the rounding rule.
func Split(total, adminPct decimal.Decimal) (admin, organizer decimal.Decimal, err error) {
	if total.IsNegative() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("negative total %s", total)
	}
	if adminPct.IsNegative() || adminPct.GreaterThan(oneHundred) {
		return decimal.Zero, decimal.Zero, fmt.Errorf("admin percentage %s outside [0,100]", adminPct)
	}

	admin = RoundHalfUp(Percent(total, adminPct))
	// Rounding a cut of a sub-cent total can exceed the total itself.
	if admin.GreaterThan(total) {
		admin = total
	}
	organizer = total.Sub(admin)
	return admin, organizer, nil
}
