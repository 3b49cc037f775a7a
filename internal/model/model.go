package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DayType describes which portion of a calendar day an engagement occupies.
type DayType string

const (
	DayTypeFullDay        DayType = "FULL_DAY"
	DayTypeHalfDayMorning DayType = "HALF_DAY_MORNING"
	DayTypeHalfDayEvening DayType = "HALF_DAY_EVENING"
)

// DayTypes returns all day types in display order.
func DayTypes() []DayType {
	return []DayType{DayTypeFullDay, DayTypeHalfDayMorning, DayTypeHalfDayEvening}
}

// Valid reports whether t is one of the enumerated day types.
func (t DayType) Valid() bool {
	switch t {
	case DayTypeFullDay, DayTypeHalfDayMorning, DayTypeHalfDayEvening:
		return true
	}
	return false
}

// LocationType describes where an engagement takes place.
type LocationType string

const (
	LocationLocal     LocationType = "LOCAL"
	LocationOutOfCity LocationType = "OUT_OF_CITY"
)

// Valid reports whether l is one of the enumerated location types.
func (l LocationType) Valid() bool {
	return l == LocationLocal || l == LocationOutOfCity
}

// EventBlock is a single photographer engagement tied to one calendar date.
//
// JSON field names match the persisted blob format, so records written by
// earlier versions of the diary load unchanged.
//
// Date is kept as a string on the wire (RFC3339 or "2006-01-02") and parsed
// at use. A record with an unparseable date must be skippable per
// computation without poisoning the rest of the collection, which rules out
// failing the whole array decode on one bad value.
type EventBlock struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Name string `json:"name"`

	Mobile       string       `json:"mobile,omitempty"`
	DayType      DayType      `json:"dayType"`
	LocationType LocationType `json:"locationType"`
	Notes        string       `json:"notes"`

	// CreatedAt is a unix-millisecond creation timestamp. It is immutable,
	// used only for display and tie-breaking, never for scheduling.
	CreatedAt int64 `json:"createdAt"`

	// CustomReminderDays, when positive, adds a third reminder lead time on
	// top of the fixed 1-day and 3-day defaults. Zero means unset.
	CustomReminderDays int `json:"customReminderDays,omitempty"`
}

// dateLayouts are the accepted wire forms for EventBlock.Date.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
}

// Day parses the event's date and truncates it to midnight in loc.
// Comparisons are by calendar date only; any time-of-day component on the
// stored value is discarded here.
func (e EventBlock) Day(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	v := strings.TrimSpace(e.Date)
	if v == "" {
		return time.Time{}, errors.New("empty date")
	}

	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, v, loc)
		if err != nil {
			continue
		}
		t = t.In(loc)
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
	}

	return time.Time{}, fmt.Errorf("unparseable date %q", v)
}

// Validate checks the invariants a well-formed record must satisfy.
// The empty-name rule belongs to the entry-form boundary, but it is grouped
// here so every boundary applies the same checks.
func (e EventBlock) Validate() error {
	if e.ID == "" {
		return errors.New("event id is empty")
	}
	if strings.TrimSpace(e.Name) == "" {
		return errors.New("event name is required")
	}
	if !e.DayType.Valid() {
		return fmt.Errorf("invalid dayType %q", e.DayType)
	}
	if !e.LocationType.Valid() {
		return fmt.Errorf("invalid locationType %q", e.LocationType)
	}
	if e.CustomReminderDays < 0 {
		return fmt.Errorf("customReminderDays must be positive, got %d", e.CustomReminderDays)
	}
	return nil
}

// ReminderKind identifies which rule produced a reminder. Kinds are part of
// the reminder identity, so they must stay stable across evaluations.
type ReminderKind string

const (
	KindToday    ReminderKind = "today"
	KindOneDay   ReminderKind = "one-day"
	KindThreeDay ReminderKind = "three-day"
	KindCustom   ReminderKind = "custom"
)

// ReminderType is the presentation severity of a reminder banner.
type ReminderType string

const (
	ReminderUrgent  ReminderType = "URGENT"
	ReminderDefault ReminderType = "DEFAULT"
	ReminderCustom  ReminderType = "CUSTOM"
)

// ActiveReminder is a transient notification derived from the current event
// set and current time. It is recomputed on every scheduler pass and never
// persisted; ID is deterministic per (event, kind) so repeated computation
// yields stable identities for de-duplication and dismissal tracking.
type ActiveReminder struct {
	ID      string       `json:"id"`
	EventID string       `json:"event_id"`
	Kind    ReminderKind `json:"kind"`
	Type    ReminderType `json:"type"`
	Message string       `json:"message"`
	Sub     string       `json:"sub"`
}

// ReminderID derives the stable identity for an (event, kind) pair.
func ReminderID(eventID string, kind ReminderKind) string {
	return eventID + "-" + string(kind)
}
