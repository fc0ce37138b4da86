package roster_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/warp/roster-engine/roster"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) roster.Date {
	return roster.NewDate(year, month, day)
}

func interval(id string, start, end roster.Date) roster.Interval {
	return roster.Interval{ID: roster.RecordID(id), Start: start, End: end}
}

// =============================================================================
// OVERLAP TESTS
// =============================================================================

func TestInterval_Overlaps_BoundaryTouch(t *testing.T) {
	// GIVEN: Two inclusive ranges sharing exactly one day
	// WHEN: Checking overlap
	// THEN: They conflict; ranges are inclusive on both ends

	a := interval("a", date(2025, time.May, 1), date(2025, time.May, 3))
	b := interval("b", date(2025, time.May, 3), date(2025, time.May, 5))

	assert.True(t, a.Overlaps(b), "shared boundary day is a conflict")
	assert.True(t, b.Overlaps(a), "overlap is symmetric")
}

func TestInterval_Overlaps_Disjoint(t *testing.T) {
	// GIVEN: Two ranges with a full day between them
	// WHEN: Checking overlap
	// THEN: No conflict

	a := interval("a", date(2025, time.May, 1), date(2025, time.May, 3))
	b := interval("b", date(2025, time.May, 4), date(2025, time.May, 6))

	assert.False(t, a.Overlaps(b))
	assert.False(t, b.Overlaps(a))
}

func TestInterval_Overlaps_Containment(t *testing.T) {
	// GIVEN: One range fully inside another
	// WHEN: Checking overlap
	// THEN: They conflict

	outer := interval("outer", date(2025, time.May, 1), date(2025, time.May, 31))
	inner := interval("inner", date(2025, time.May, 10), date(2025, time.May, 12))

	assert.True(t, outer.Overlaps(inner))
	assert.True(t, inner.Overlaps(outer))
}

func TestInterval_Overlaps_SingleDay(t *testing.T) {
	// GIVEN: Two identical single-day ranges
	// WHEN: Checking overlap
	// THEN: They conflict

	a := interval("a", date(2025, time.May, 9), date(2025, time.May, 9))
	b := interval("b", date(2025, time.May, 9), date(2025, time.May, 9))

	assert.True(t, a.Overlaps(b))
}

// =============================================================================
// CONFLICT SCAN TESTS
// =============================================================================

func TestConflicts_FindsFirstHit(t *testing.T) {
	// GIVEN: Several existing ranges, two of which overlap the candidate
	// WHEN: Scanning for conflicts
	// THEN: The first overlapping range in slice order is reported

	existing := []roster.Interval{
		interval("r1", date(2025, time.May, 1), date(2025, time.May, 2)),
		interval("r2", date(2025, time.May, 10), date(2025, time.May, 12)),
		interval("r3", date(2025, time.May, 11), date(2025, time.May, 15)),
	}
	candidate := interval("", date(2025, time.May, 11), date(2025, time.May, 11))

	hit, conflict := roster.Conflicts(existing, candidate, "")

	assert.True(t, conflict)
	assert.Equal(t, roster.RecordID("r2"), hit.ID)
}

func TestConflicts_ExcludesOwnRecord(t *testing.T) {
	// GIVEN: An existing range and a candidate that is the same record
	// WHEN: Scanning with the record's own ID excluded
	// THEN: No conflict; a record never conflicts with itself

	existing := []roster.Interval{
		interval("r1", date(2025, time.May, 10), date(2025, time.May, 12)),
	}
	candidate := interval("r1", date(2025, time.May, 11), date(2025, time.May, 13))

	_, conflict := roster.Conflicts(existing, candidate, "r1")

	assert.False(t, conflict)
}

func TestConflicts_NoHit(t *testing.T) {
	// GIVEN: Existing ranges all clear of the candidate
	// WHEN: Scanning for conflicts
	// THEN: No conflict

	existing := []roster.Interval{
		interval("r1", date(2025, time.May, 1), date(2025, time.May, 2)),
		interval("r2", date(2025, time.May, 20), date(2025, time.May, 22)),
	}
	candidate := interval("", date(2025, time.May, 10), date(2025, time.May, 12))

	_, conflict := roster.Conflicts(existing, candidate, "")

	assert.False(t, conflict)
}
