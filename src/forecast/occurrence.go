package forecast

import (
	"time"

	"github.com/username/tallytrace/backend/src/models"
	"github.com/username/tallytrace/backend/src/utils"
)

// DefaultMaxIterations bounds the schedule walk per entry. Sized to look
// roughly two years ahead at monthly-or-coarser cadence.
const DefaultMaxIterations = 24

type occurrenceGeneratorImpl struct {
	maxIterations int
}

// NewOccurrenceGenerator creates an OccurrenceGenerator. maxIterations is
// the hard per-entry iteration bound; values below 1 fall back to the
// default.
func NewOccurrenceGenerator(maxIterations int) OccurrenceGenerator {
	if maxIterations < 1 {
		maxIterations = DefaultMaxIterations
	}
	return &occurrenceGeneratorImpl{maxIterations: maxIterations}
}

// Generate walks the entry's schedule from its anchor and collects every
// occurrence inside [rangeStart, rangeEnd], both bounds inclusive.
//
// The occurrence budget of an after_occurrences entry counts from the
// anchor, not from rangeStart: occurrences before the window still burn
// budget, so querying a different window never changes which occurrences
// are used up.
//
// Inactive entries and entries with an unparsable anchor or end date
// produce an empty schedule rather than an error; one corrupt entry must
// not blank a whole projection.
func (g *occurrenceGeneratorImpl) Generate(entry models.BudgetEntry, rangeStart, rangeEnd time.Time) []time.Time {
	if !entry.IsActive {
		return nil
	}
	current := utils.ParseDate(entry.NextOccurrence)
	if current.IsZero() {
		return nil
	}
	rangeStart = utils.DateOf(rangeStart)
	rangeEnd = utils.DateOf(rangeEnd)
	if rangeEnd.Before(rangeStart) {
		return nil
	}

	var endLimit time.Time
	if entry.EndMode == models.EndModeOnDate {
		endLimit = utils.ParseDate(entry.EndDate)
		if endLimit.IsZero() {
			return nil
		}
	}

	remaining := -1 // unbounded
	if entry.EndMode == models.EndModeAfterOccurrences && entry.MaxOccurrences != nil {
		remaining = *entry.MaxOccurrences
		if remaining <= 0 {
			return nil
		}
	}

	var occurrences []time.Time
	for i := 0; i < g.maxIterations; i++ {
		// on_date is exclusive of dates past the limit; the limit day
		// itself still fires.
		if !endLimit.IsZero() && current.After(endLimit) {
			break
		}
		if current.After(rangeEnd) {
			break
		}
		if !current.Before(rangeStart) {
			occurrences = append(occurrences, current)
		}
		if remaining > 0 {
			remaining--
			if remaining == 0 {
				break
			}
		}
		next := NextOccurrence(current, entry.Cadence)
		if !next.After(current) {
			// degenerate cadence, would loop forever
			break
		}
		current = next
	}
	return occurrences
}
