package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/username/tallytrace/backend/src/models"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestNextOccurrenceSimpleCadences(t *testing.T) {
	start := date(2025, time.March, 10)

	assert.Equal(t, date(2025, time.March, 11), NextOccurrence(start, models.CadenceDaily))
	assert.Equal(t, date(2025, time.March, 17), NextOccurrence(start, models.CadenceWeekly))
	assert.Equal(t, date(2025, time.April, 10), NextOccurrence(start, models.CadenceMonthly))
	assert.Equal(t, date(2025, time.June, 10), NextOccurrence(start, models.CadenceQuarterly))
	assert.Equal(t, date(2025, time.September, 10), NextOccurrence(start, models.CadenceSemiAnnual))
	assert.Equal(t, date(2026, time.March, 10), NextOccurrence(start, models.CadenceAnnual))
}

func TestNextOccurrenceMonthEndClamping(t *testing.T) {
	tests := []struct {
		name    string
		current time.Time
		cadence models.Cadence
		want    time.Time
	}{
		{
			name:    "jan 31 monthly clamps to feb 28",
			current: date(2025, time.January, 31),
			cadence: models.CadenceMonthly,
			want:    date(2025, time.February, 28),
		},
		{
			name:    "jan 31 monthly clamps to feb 29 in leap year",
			current: date(2024, time.January, 31),
			cadence: models.CadenceMonthly,
			want:    date(2024, time.February, 29),
		},
		{
			name:    "aug 31 quarterly clamps to nov 30",
			current: date(2025, time.August, 31),
			cadence: models.CadenceQuarterly,
			want:    date(2025, time.November, 30),
		},
		{
			name:    "aug 31 semi annual lands on feb 28",
			current: date(2025, time.August, 31),
			cadence: models.CadenceSemiAnnual,
			want:    date(2026, time.February, 28),
		},
		{
			name:    "feb 29 annual clamps to feb 28",
			current: date(2024, time.February, 29),
			cadence: models.CadenceAnnual,
			want:    date(2025, time.February, 28),
		},
		{
			name:    "dec 31 monthly wraps the year",
			current: date(2025, time.December, 31),
			cadence: models.CadenceMonthly,
			want:    date(2026, time.January, 31),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextOccurrence(tt.current, tt.cadence))
		})
	}
}

func TestNextOccurrenceUnknownCadenceIsInert(t *testing.T) {
	start := date(2025, time.May, 5)
	assert.Equal(t, start, NextOccurrence(start, models.Cadence("fortnightly")))
}

func TestMonthlyEquivalent(t *testing.T) {
	assert.InDelta(t, 100.0, MonthlyEquivalent(100, models.CadenceMonthly), 0.001)
	assert.InDelta(t, 100.0, MonthlyEquivalent(300, models.CadenceQuarterly), 0.001)
	assert.InDelta(t, 100.0, MonthlyEquivalent(600, models.CadenceSemiAnnual), 0.001)
	assert.InDelta(t, 100.0, MonthlyEquivalent(1200, models.CadenceAnnual), 0.001)
	assert.InDelta(t, 304.1666, MonthlyEquivalent(10, models.CadenceDaily), 0.001)
	assert.InDelta(t, 433.3333, MonthlyEquivalent(100, models.CadenceWeekly), 0.001)
	assert.Zero(t, MonthlyEquivalent(100, models.Cadence("fortnightly")))
}
