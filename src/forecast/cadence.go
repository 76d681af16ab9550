package forecast

import (
	"math"
	"time"

	"github.com/username/tallytrace/backend/src/models"
)

// addMonths advances by n calendar months, clamping the day to the last
// day of the target month (Jan 31 + 1 month = Feb 28, or Feb 29 in a leap
// year). Plain AddDate would normalize Jan 31 + 1 month into Mar 2/3.
func addMonths(t time.Time, n int) time.Time {
	monthIndex := int(t.Month()) - 1 + n
	year := t.Year() + monthIndex/12
	month := time.Month(monthIndex%12 + 1)
	day := t.Day()
	if last := daysIn(month, year); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func daysIn(m time.Month, year int) int {
	// day 0 of the next month is the last day of m
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NextOccurrence returns the occurrence after current for the given
// cadence. Annual advances by twelve clamped months so a Feb 29 anchor
// lands on Feb 28 in non-leap years instead of drifting into March.
// An unknown cadence returns current unchanged, which the generator
// treats as a stop signal.
func NextOccurrence(current time.Time, cadence models.Cadence) time.Time {
	switch cadence {
	case models.CadenceDaily:
		return current.AddDate(0, 0, 1)
	case models.CadenceWeekly:
		return current.AddDate(0, 0, 7)
	case models.CadenceMonthly:
		return addMonths(current, 1)
	case models.CadenceQuarterly:
		return addMonths(current, 3)
	case models.CadenceSemiAnnual:
		return addMonths(current, 6)
	case models.CadenceAnnual:
		return addMonths(current, 12)
	default:
		return current
	}
}

// MonthlyEquivalent normalizes an entry amount to a per-month value.
// Daily and weekly scale up by average month length; unknown cadences
// contribute nothing.
func MonthlyEquivalent(amount float64, cadence models.Cadence) float64 {
	switch cadence {
	case models.CadenceDaily:
		return amount * 365.0 / 12.0
	case models.CadenceWeekly:
		return amount * 52.0 / 12.0
	case models.CadenceMonthly:
		return amount
	case models.CadenceQuarterly:
		return amount / 3
	case models.CadenceSemiAnnual:
		return amount / 6
	case models.CadenceAnnual:
		return amount / 12
	default:
		return 0
	}
}

// round2 rounds a money value to 2 decimal places.
func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// round1 rounds a percentage to 1 decimal place.
func round1(value float64) float64 {
	return math.Round(value*10) / 10
}
