// Package reminder derives the currently-active notification set from the
// diary and the clock.
//
// Evaluation is a pure function over a snapshot of the collection; nothing
// about "already shown" reminders is persisted. A cold start recomputes the
// full active set from scratch, so a previously-dismissed banner reappears
// after a restart if its condition still holds. That is a known trade-off
// of the design, not an accident; dismissal bookkeeping lives entirely in
// the presentation layer, keyed by the stable reminder IDs.
package reminder

import (
	"fmt"
	"math"
	"time"

	"photodiary/internal/agg"
	appLog "photodiary/internal/log"
	"photodiary/internal/model"
)

// Evaluate computes the complete active reminder set for events at now.
//
// Rules, applied independently per event (one event can produce several
// simultaneously-active reminders):
//
//   - event is today           -> URGENT
//   - event is tomorrow        -> DEFAULT (1-day)
//   - event is in three days   -> DEFAULT (3-day)
//   - event is in N days where N == customReminderDays and N is not 1 or 3
//     -> CUSTOM (the exclusion keeps a custom lead time that coincides with
//     a default from producing a duplicate banner)
//
// Past events never produce reminders. An event whose date cannot be parsed
// is skipped with a log line; it never aborts the rest of the batch.
//
// The result is the full set, in event-iteration order. Display truncation
// is the caller's business; see Truncate.
func Evaluate(events []model.EventBlock, now time.Time, loc *time.Location) []model.ActiveReminder {
	if loc == nil {
		loc = time.Local
	}
	today := agg.Midnight(now, loc)

	out := make([]model.ActiveReminder, 0)
	for _, e := range events {
		day, err := e.Day(loc)
		if err != nil {
			appLog.Error("reminder evaluation skipping event", err, "id", e.ID, "date", e.Date)
			continue
		}

		daysUntil := daysBetween(today, day)
		if daysUntil < 0 {
			continue
		}

		if daysUntil == 0 {
			out = append(out, model.ActiveReminder{
				ID:      model.ReminderID(e.ID, model.KindToday),
				EventID: e.ID,
				Kind:    model.KindToday,
				Type:    model.ReminderUrgent,
				Message: fmt.Sprintf("Event TODAY: %s", e.Name),
				Sub:     "You have a blocked date today. Please plan accordingly.",
			})
		}
		if daysUntil == 1 {
			out = append(out, model.ActiveReminder{
				ID:      model.ReminderID(e.ID, model.KindOneDay),
				EventID: e.ID,
				Kind:    model.KindOneDay,
				Type:    model.ReminderDefault,
				Message: fmt.Sprintf("1 Day Reminder: %s", e.Name),
				Sub:     fmt.Sprintf("Don't forget your blocked date for %s tomorrow.", e.Name),
			})
		}
		if daysUntil == 3 {
			out = append(out, model.ActiveReminder{
				ID:      model.ReminderID(e.ID, model.KindThreeDay),
				EventID: e.ID,
				Kind:    model.KindThreeDay,
				Type:    model.ReminderDefault,
				Message: fmt.Sprintf("3 Day Reminder: %s", e.Name),
				Sub:     fmt.Sprintf("%s is coming up in 3 days.", e.Name),
			})
		}
		if n := e.CustomReminderDays; n > 0 && daysUntil == n && n != 1 && n != 3 {
			out = append(out, model.ActiveReminder{
				ID:      model.ReminderID(e.ID, model.KindCustom),
				EventID: e.ID,
				Kind:    model.KindCustom,
				Type:    model.ReminderCustom,
				Message: fmt.Sprintf("%d Days Reminder: %s", n, e.Name),
				Sub:     fmt.Sprintf("%s is %d days away.", e.Name, n),
			})
		}
	}
	return out
}

// Truncate caps list to the first limit entries. A non-positive limit means
// no cap. This is the presentation-layer trim; Evaluate always returns the
// complete set.
func Truncate(list []model.ActiveReminder, limit int) []model.ActiveReminder {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}

// daysBetween counts signed calendar days from today to day, both already
// truncated to midnight in the same location. Rounding absorbs the 23h/25h
// intervals that DST transitions produce.
func daysBetween(today, day time.Time) int {
	return int(math.Round(day.Sub(today).Hours() / 24))
}
