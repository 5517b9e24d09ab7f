package booking

import (
	"math"
	"time"
)

// Evaluate runs the pre-submission checks on a record: both stay dates must
// be strictly after now, then the total with VAT must be a non-negative
// number. It returns nil or a *ValidationError and never mutates the record.
func Evaluate(r Record, now time.Time) error {
	dateOne, errOne := parseDate(r.DateOne)
	dateTwo, errTwo := parseDate(r.DateTwo)
	if errOne != nil || errTwo != nil || !dateOne.After(now) || !dateTwo.After(now) {
		return &ValidationError{Reason: InvalidDateRange}
	}

	total := Total(r.Prices, true, DefaultTotalDigits)
	if math.IsNaN(total) || math.IsInf(total, 0) || total < 0 {
		return &ValidationError{Reason: InvalidPrice}
	}

	return nil
}
