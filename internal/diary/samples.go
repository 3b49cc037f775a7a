package diary

import (
	"time"

	"photodiary/internal/model"
)

// SampleEvents builds the illustrative engagements used to seed a fresh
// diary, anchored to now's calendar date in loc.
func SampleEvents(now time.Time, loc *time.Location) []model.EventBlock {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	created := now.UnixMilli()

	day := func(offset int) string {
		return now.AddDate(0, 0, offset).Format(time.RFC3339)
	}

	return []model.EventBlock{
		{
			ID:           NewID(),
			Date:         day(0),
			Name:         "Wedding: Simran & Raj",
			DayType:      model.DayTypeFullDay,
			LocationType: model.LocationLocal,
			Notes:        "4 persons team",
			CreatedAt:    created,
		},
		{
			ID:           NewID(),
			Date:         day(2),
			Name:         "Morning Maternity",
			DayType:      model.DayTypeHalfDayMorning,
			LocationType: model.LocationLocal,
			Notes:        "Single shooter",
			CreatedAt:    created,
		},
		{
			ID:           NewID(),
			Date:         day(2),
			Name:         "Evening Party",
			DayType:      model.DayTypeHalfDayEvening,
			LocationType: model.LocationLocal,
			Notes:        "Flash setup required",
			CreatedAt:    created,
		},
		{
			ID:           NewID(),
			Date:         day(4),
			Name:         "Studio Session",
			DayType:      model.DayTypeHalfDayEvening,
			LocationType: model.LocationLocal,
			Notes:        "Product shoot",
			CreatedAt:    created,
		},
		{
			ID:           NewID(),
			Date:         day(4),
			Name:         "Gala Dinner",
			DayType:      model.DayTypeHalfDayEvening,
			LocationType: model.LocationLocal,
			Notes:        "Main stage only",
			CreatedAt:    created,
		},
	}
}
