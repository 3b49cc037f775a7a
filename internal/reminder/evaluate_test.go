package reminder

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photodiary/internal/model"
)

var tz = time.UTC

// now is a fixed mid-day reference; events are placed relative to it.
var now = time.Date(2024, 6, 10, 14, 30, 0, 0, tz)

func eventAt(id, name string, dayOffset int, customDays int) model.EventBlock {
	return model.EventBlock{
		ID:                 id,
		Date:               now.AddDate(0, 0, dayOffset).Format(time.RFC3339),
		Name:               name,
		DayType:            model.DayTypeFullDay,
		LocationType:       model.LocationLocal,
		CustomReminderDays: customDays,
	}
}

func TestEvaluateByDayOffset(t *testing.T) {
	cases := []struct {
		offset   int
		wantKind model.ReminderKind
		wantType model.ReminderType
		wantMsg  string
	}{
		{0, model.KindToday, model.ReminderUrgent, "Event TODAY: Shoot"},
		{1, model.KindOneDay, model.ReminderDefault, "1 Day Reminder: Shoot"},
		{3, model.KindThreeDay, model.ReminderDefault, "3 Day Reminder: Shoot"},
	}

	for _, tc := range cases {
		t.Run(string(tc.wantKind), func(t *testing.T) {
			got := Evaluate([]model.EventBlock{eventAt("e1", "Shoot", tc.offset, 0)}, now, tz)

			require.Len(t, got, 1)
			assert.Equal(t, tc.wantKind, got[0].Kind)
			assert.Equal(t, tc.wantType, got[0].Type)
			assert.Equal(t, tc.wantMsg, got[0].Message)
			assert.Equal(t, "e1", got[0].EventID)
			assert.Equal(t, model.ReminderID("e1", tc.wantKind), got[0].ID)
		})
	}
}

func TestEvaluateSilentOffsets(t *testing.T) {
	for _, offset := range []int{-1, -7, 2, 4, 30} {
		got := Evaluate([]model.EventBlock{eventAt("e1", "Shoot", offset, 0)}, now, tz)
		assert.Empty(t, got, "offset %d", offset)
	}
}

func TestEvaluateCustomReminder(t *testing.T) {
	got := Evaluate([]model.EventBlock{eventAt("e1", "Shoot", 5, 5)}, now, tz)

	require.Len(t, got, 1)
	assert.Equal(t, model.KindCustom, got[0].Kind)
	assert.Equal(t, model.ReminderCustom, got[0].Type)
	assert.Equal(t, "5 Days Reminder: Shoot", got[0].Message)
}

func TestEvaluateCustomCoincidingWithDefaultEmitsOnlyDefault(t *testing.T) {
	// customReminderDays = 3 at daysUntil = 3 must not double up with the
	// built-in 3-day reminder; same for 1.
	for _, n := range []int{1, 3} {
		got := Evaluate([]model.EventBlock{eventAt("e1", "Shoot", n, n)}, now, tz)

		require.Len(t, got, 1, "customReminderDays=%d", n)
		assert.Equal(t, model.ReminderDefault, got[0].Type)
	}
}

func TestEvaluateOneEventCanEmitSeveralReminders(t *testing.T) {
	// An event today whose sibling sits at the 3-day mark: rules fire
	// independently per event and collect in event-iteration order.
	events := []model.EventBlock{
		eventAt("today", "A", 0, 0),
		eventAt("soon", "B", 3, 0),
	}

	got := Evaluate(events, now, tz)
	require.Len(t, got, 2)
	assert.Equal(t, "today", got[0].EventID)
	assert.Equal(t, "soon", got[1].EventID)
}

func TestEvaluateSkipsMalformedRecord(t *testing.T) {
	events := []model.EventBlock{
		{ID: "bad", Date: "not-a-date", Name: "Broken", DayType: model.DayTypeFullDay, LocationType: model.LocationLocal},
		eventAt("ok", "Fine", 0, 0),
	}

	got := Evaluate(events, now, tz)
	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].EventID)
	assert.Equal(t, model.ReminderUrgent, got[0].Type)
}

func TestEvaluateCustomLeadTimeWindow(t *testing.T) {
	// One event dated now+1 with a 5-day custom lead, observed from
	// different days: DEFAULT at 1 day out, CUSTOM at 5 days out, silent
	// in between and after.
	event := eventAt("e1", "B", 1, 5)

	oneDayOut := Evaluate([]model.EventBlock{event}, now, tz)
	require.Len(t, oneDayOut, 1)
	assert.Equal(t, model.ReminderDefault, oneDayOut[0].Type)

	fiveDaysOut := Evaluate([]model.EventBlock{event}, now.AddDate(0, 0, -4), tz)
	require.Len(t, fiveDaysOut, 1)
	assert.Equal(t, model.ReminderCustom, fiveDaysOut[0].Type)
	assert.Equal(t, "5 Days Reminder: B", fiveDaysOut[0].Message)

	twoDaysOut := Evaluate([]model.EventBlock{event}, now.AddDate(0, 0, -1), tz)
	assert.Empty(t, twoDaysOut)

	after := Evaluate([]model.EventBlock{event}, now.AddDate(0, 0, 2), tz)
	assert.Empty(t, after)
}

func TestEvaluateIdentitiesAreStableAcrossRuns(t *testing.T) {
	events := []model.EventBlock{eventAt("e1", "Shoot", 0, 0)}

	first := Evaluate(events, now, tz)
	second := Evaluate(events, now.Add(25*time.Minute), tz)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestTruncate(t *testing.T) {
	list := make([]model.ActiveReminder, 0, 7)
	for i := 0; i < 7; i++ {
		list = append(list, model.ActiveReminder{ID: fmt.Sprintf("r%d", i)})
	}

	assert.Len(t, Truncate(list, 3), 3)
	assert.Len(t, Truncate(list, 5), 5)
	assert.Len(t, Truncate(list, 0), 7)
	assert.Len(t, Truncate(list, 10), 7)
	// First-N semantics: order preserved.
	assert.Equal(t, "r0", Truncate(list, 3)[0].ID)
}

func TestDaysBetweenRoundsDSTishIntervals(t *testing.T) {
	today := time.Date(2024, 3, 10, 0, 0, 0, 0, tz)

	assert.Equal(t, 1, daysBetween(today, today.Add(23*time.Hour)))
	assert.Equal(t, 1, daysBetween(today, today.Add(25*time.Hour)))
	assert.Equal(t, -1, daysBetween(today, today.Add(-24*time.Hour)))
	assert.Equal(t, 0, daysBetween(today, today))
}
