// Package agg computes the per-day display facts the calendar and list
// views render: which engagements land on a day, how the day-type counts
// break down, and whether a day is already in the past.
//
// Everything here is a pure function over `(events, day)`. Records whose
// date cannot be parsed are skipped; one malformed record never hides the
// rest of the collection.
package agg

import (
	"sort"
	"time"

	appLog "photodiary/internal/log"
	"photodiary/internal/model"
)

// Midnight truncates t to 00:00 in loc. All day comparisons in the diary go
// through this; time-of-day components are never compared.
func Midnight(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// SameDay reports whether a and b fall on the same calendar date in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return Midnight(a, loc).Equal(Midnight(b, loc))
}

// IsPast reports whether day is strictly earlier than now's calendar date.
// Used purely for presentation (muting past days); it carries no scheduling
// consequence.
func IsPast(day, now time.Time, loc *time.Location) bool {
	return Midnight(day, loc).Before(Midnight(now, loc))
}

// EventsOnDay returns the subset of events whose date falls on the same
// calendar date as day, preserving insertion order.
func EventsOnDay(events []model.EventBlock, day time.Time, loc *time.Location) []model.EventBlock {
	target := Midnight(day, loc)

	out := make([]model.EventBlock, 0)
	for _, e := range events {
		d, err := e.Day(loc)
		if err != nil {
			appLog.Debug("aggregation skipping event with bad date", "id", e.ID, "date", e.Date)
			continue
		}
		if d.Equal(target) {
			out = append(out, e)
		}
	}
	return out
}

// CountsByType tallies dayEvents per day type. Every day type is present in
// the result, zero included, so calendar cells can iterate a fixed legend.
func CountsByType(dayEvents []model.EventBlock) map[model.DayType]int {
	counts := make(map[model.DayType]int, 3)
	for _, t := range model.DayTypes() {
		counts[t] = 0
	}
	for _, e := range dayEvents {
		if e.DayType.Valid() {
			counts[e.DayType]++
		}
	}
	return counts
}

// SortByDate returns a copy of events ordered by calendar date, ascending
// unless descending is set (the "past" list shows most-recent-past first).
// The sort is stable, so same-day records keep their insertion order.
// Records with unparseable dates sort to the end.
func SortByDate(events []model.EventBlock, descending bool, loc *time.Location) []model.EventBlock {
	days := make([]time.Time, len(events))
	bad := make([]bool, len(events))
	for i, e := range events {
		d, err := e.Day(loc)
		if err != nil {
			bad[i] = true
			continue
		}
		days[i] = d
	}

	// Sort an index permutation so the parallel day/bad slices stay aligned
	// with their original positions.
	idx := make([]int, len(events))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		i, j := idx[a], idx[b]
		if bad[i] != bad[j] {
			return !bad[i]
		}
		if bad[i] || days[i].Equal(days[j]) {
			return false
		}
		if descending {
			return days[i].After(days[j])
		}
		return days[i].Before(days[j])
	})

	out := make([]model.EventBlock, len(events))
	for pos, i := range idx {
		out[pos] = events[i]
	}
	return out
}
