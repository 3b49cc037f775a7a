// Package ics renders the diary as an iCalendar feed so engagements can be
// viewed from any calendar client alongside the built-in UI.
package ics

import (
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"photodiary/internal/agg"
	appLog "photodiary/internal/log"
	"photodiary/internal/model"
)

const (
	productID = "-//photodiary//calendar export//EN"

	// Vendor properties carrying diary fields that have no standard
	// iCalendar counterpart.
	propDayType  ical.ComponentProperty = "X-PHOTODIARY-DAY-TYPE"
	propLocation ical.ComponentProperty = "X-PHOTODIARY-LOCATION-TYPE"
)

// BuildCalendar converts the given engagements into a VCALENDAR of all-day
// VEVENTs, ordered by date. Records with unparseable dates are skipped and
// logged, matching the policy everywhere else in the application.
func BuildCalendar(events []model.EventBlock, loc *time.Location) *ical.Calendar {
	if loc == nil {
		loc = time.Local
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	exported := 0
	for _, e := range agg.SortByDate(events, false, loc) {
		day, err := e.Day(loc)
		if err != nil {
			appLog.Error("ics export skipping event", err, "id", e.ID, "date", e.Date)
			continue
		}

		ve := cal.AddEvent(e.ID)
		ve.SetSummary(summaryFor(e))
		ve.SetAllDayStartAt(day)
		ve.SetAllDayEndAt(day.AddDate(0, 0, 1))
		if created := time.UnixMilli(e.CreatedAt); e.CreatedAt > 0 {
			ve.SetCreatedTime(created.In(loc))
			ve.SetDtStampTime(created.UTC())
		}
		if desc := descriptionFor(e); desc != "" {
			ve.SetDescription(desc)
		}
		if e.LocationType == model.LocationOutOfCity {
			ve.SetLocation("Out of city")
		}
		ve.SetProperty(propDayType, string(e.DayType))
		ve.SetProperty(propLocation, string(e.LocationType))

		exported++
	}

	appLog.Debug("ics export built", "event_count", exported)
	return cal
}

// Serialize renders events as an iCalendar document.
func Serialize(events []model.EventBlock, loc *time.Location) string {
	return BuildCalendar(events, loc).Serialize()
}

func summaryFor(e model.EventBlock) string {
	switch e.DayType {
	case model.DayTypeHalfDayMorning:
		return e.Name + " (morning)"
	case model.DayTypeHalfDayEvening:
		return e.Name + " (evening)"
	default:
		return e.Name
	}
}

func descriptionFor(e model.EventBlock) string {
	parts := make([]string, 0, 2)
	if strings.TrimSpace(e.Notes) != "" {
		parts = append(parts, e.Notes)
	}
	if strings.TrimSpace(e.Mobile) != "" {
		parts = append(parts, "Contact: "+e.Mobile)
	}
	return strings.Join(parts, "\n")
}
