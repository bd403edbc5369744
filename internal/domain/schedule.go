package domain

import (
	"context"
	"time"
)

// ScheduleBlock is one deduplicated (day, start, end) slot in the term-wide
// schedule grid, with every distinct course meeting at that time. Blocks are
// derived on every read and never persisted.
type ScheduleBlock struct {
	ID              string          `json:"id"`
	Day             Weekday         `json:"day"`
	StartHour       int             `json:"start_hour"`
	StartMinute     int             `json:"start_minute"`
	EndHour         int             `json:"end_hour"`
	EndMinute       int             `json:"end_minute"`
	DurationMinutes int             `json:"duration_minutes"`
	Courses         []CourseListing `json:"courses"`
}

// Start returns the block's start as a TimeOfDay.
func (b *ScheduleBlock) Start() TimeOfDay {
	return TimeOfDay{Hour: b.StartHour, Minute: b.StartMinute}
}

// End returns the block's end as a TimeOfDay.
func (b *ScheduleBlock) End() TimeOfDay {
	return TimeOfDay{Hour: b.EndHour, Minute: b.EndMinute}
}

// ScheduleService builds the display grid of all meetings for a term.
type ScheduleService interface {
	// BuildSchedule returns the deterministic, deduplicated block grid for the
	// offered course instances of the given term and academic year.
	BuildSchedule(ctx context.Context, term Term, academicYear int) ([]*ScheduleBlock, error)
}

// CalendarService renders a term's schedule as an iCalendar feed.
type CalendarService interface {
	// BuildCalendar returns the serialized feed; weekly recurrences are
	// anchored to the week containing weekOf, interpreted in the campus zone.
	BuildCalendar(ctx context.Context, term Term, academicYear int, weekOf time.Time) (string, error)
}
