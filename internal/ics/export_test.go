package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photodiary/internal/model"
)

func TestSerializeBuildsAllDayEvents(t *testing.T) {
	events := []model.EventBlock{
		{
			ID:           "ev-wedding",
			Date:         "2024-06-10",
			Name:         "Wedding: Simran & Raj",
			DayType:      model.DayTypeFullDay,
			LocationType: model.LocationLocal,
			Notes:        "4 persons team",
			Mobile:       "+91 98765 43210",
			CreatedAt:    time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC).UnixMilli(),
		},
	}

	body := Serialize(events, time.UTC)

	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "END:VCALENDAR")
	assert.Contains(t, body, "UID:ev-wedding")
	assert.Contains(t, body, "SUMMARY:Wedding: Simran & Raj")
	assert.Contains(t, body, "DTSTART;VALUE=DATE:20240610")
	assert.Contains(t, body, "DTEND;VALUE=DATE:20240611")
	assert.Contains(t, body, "X-PHOTODIARY-DAY-TYPE:FULL_DAY")
	assert.Contains(t, body, "Contact: +91 98765 43210")
}

func TestSerializeMarksHalfDaysInSummary(t *testing.T) {
	events := []model.EventBlock{
		{ID: "m", Date: "2024-06-10", Name: "Maternity", DayType: model.DayTypeHalfDayMorning, LocationType: model.LocationLocal},
		{ID: "e", Date: "2024-06-10", Name: "Party", DayType: model.DayTypeHalfDayEvening, LocationType: model.LocationOutOfCity},
	}

	body := Serialize(events, time.UTC)

	assert.Contains(t, body, "SUMMARY:Maternity (morning)")
	assert.Contains(t, body, "SUMMARY:Party (evening)")
	assert.Contains(t, body, "LOCATION:Out of city")
}

func TestSerializeSkipsUnparseableDates(t *testing.T) {
	events := []model.EventBlock{
		{ID: "bad", Date: "garbage", Name: "Broken", DayType: model.DayTypeFullDay, LocationType: model.LocationLocal},
		{ID: "ok", Date: "2024-06-10", Name: "Fine", DayType: model.DayTypeFullDay, LocationType: model.LocationLocal},
	}

	body := Serialize(events, time.UTC)

	assert.Contains(t, body, "UID:ok")
	assert.NotContains(t, body, "UID:bad")
	require.Equal(t, 1, strings.Count(body, "BEGIN:VEVENT"))
}

func TestSerializeOrdersByDate(t *testing.T) {
	events := []model.EventBlock{
		{ID: "later", Date: "2024-06-12", Name: "Later", DayType: model.DayTypeFullDay, LocationType: model.LocationLocal},
		{ID: "earlier", Date: "2024-06-09", Name: "Earlier", DayType: model.DayTypeFullDay, LocationType: model.LocationLocal},
	}

	body := Serialize(events, time.UTC)

	assert.Less(t, strings.Index(body, "UID:earlier"), strings.Index(body, "UID:later"))
}
