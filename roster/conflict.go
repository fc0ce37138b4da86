package roster

// =============================================================================
// INTERVAL CONFLICT CHECKER - Pure overlap detection over closed intervals
// =============================================================================

// Interval is a closed date range belonging to one schedule record.
type Interval struct {
	ID    RecordID
	Start Date
	End   Date
}

// Overlaps reports whether two closed intervals share at least one day.
// A record ending on day N and another starting on day N DO overlap:
// the business rule treats a same-day handoff as a conflict.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.BeforeOrEqual(other.End) && other.Start.BeforeOrEqual(iv.End)
}

// IntervalOf extracts the interval of a schedule record.
func IntervalOf(r ScheduleRecord) Interval {
	return Interval{ID: r.ID, Start: r.DateStart, End: r.DateEnd}
}

// Conflicts checks a candidate interval against a set of existing intervals,
// returning the first one that overlaps. The interval whose ID equals
// excludeID is skipped, so a record being updated never conflicts with its
// own stored range. Pass an empty excludeID on create.
//
// The check is O(n) and returns on the first hit. It has no side effects.
func Conflicts(existing []Interval, candidate Interval, excludeID RecordID) (Interval, bool) {
	for _, iv := range existing {
		if excludeID != "" && iv.ID == excludeID {
			continue
		}
		if iv.Overlaps(candidate) {
			return iv, true
		}
	}
	return Interval{}, false
}
