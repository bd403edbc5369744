package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidInterval is returned when a time interval's start is not strictly
// before its end.
var ErrInvalidInterval = errors.New("invalid time interval")

// Weekday is a teaching day. The schedule only covers Monday through Friday.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
)

var weekdayNames = map[Weekday]string{
	Monday:    "MON",
	Tuesday:   "TUE",
	Wednesday: "WED",
	Thursday:  "THU",
	Friday:    "FRI",
}

func (d Weekday) String() string {
	if name, ok := weekdayNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Weekday(%d)", int(d))
}

// Valid reports whether d is one of the five teaching days.
func (d Weekday) Valid() bool {
	_, ok := weekdayNames[d]
	return ok
}

// ParseWeekday parses "MON".."FRI" (case-insensitive).
func ParseWeekday(s string) (Weekday, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for d, name := range weekdayNames {
		if name == upper {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

// TimeOfDay is a local wall-clock time. The whole system operates in the
// institution's single civil time zone; any UTC conversion happens at the
// delivery boundary before values reach this type.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Minutes returns the time as minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// String formats the time as 24-hour "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Display formats the time as 12-hour clock, e.g. "10:00 AM".
func (t TimeOfDay) Display() string {
	hour := t.Hour % 12
	if hour == 0 {
		hour = 12
	}
	suffix := "AM"
	if t.Hour >= 12 {
		suffix = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", hour, t.Minute, suffix)
}

// TimeOfDayFromMinutes converts minutes since midnight back to a TimeOfDay.
func TimeOfDayFromMinutes(m int) TimeOfDay {
	return TimeOfDay{Hour: m / 60, Minute: m % 60}
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS" wall-clock strings. Seconds are
// accepted and discarded; meetings are minute-granular.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return TimeOfDay{}, fmt.Errorf("invalid time %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("invalid time %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid time %q", s)
	}
	if len(parts) == 3 {
		second, err := strconv.Atoi(parts[2])
		if err != nil || second < 0 || second > 59 {
			return TimeOfDay{}, fmt.Errorf("invalid time %q", s)
		}
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// TimeInterval is a weekly recurring time span: a teaching day plus a start and
// end wall-clock time.
type TimeInterval struct {
	Day   Weekday   `json:"day"`
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// NewTimeInterval builds a TimeInterval, enforcing that the start is strictly
// before the end.
func NewTimeInterval(day Weekday, start, end TimeOfDay) (TimeInterval, error) {
	if !day.Valid() {
		return TimeInterval{}, fmt.Errorf("invalid weekday %d", int(day))
	}
	if start.Minutes() >= end.Minutes() {
		return TimeInterval{}, fmt.Errorf("%w: %s is not before %s", ErrInvalidInterval, start, end)
	}
	return TimeInterval{Day: day, Start: start, End: end}, nil
}

// Overlaps reports whether the two intervals share any positive-length time on
// the same day. Intervals that merely touch at an endpoint do not overlap;
// identical intervals do.
func (i TimeInterval) Overlaps(other TimeInterval) bool {
	if i.Day != other.Day {
		return false
	}
	return i.Start.Minutes() < other.End.Minutes() && other.Start.Minutes() < i.End.Minutes()
}

// DurationMinutes returns the interval length. Always positive for intervals
// built through NewTimeInterval.
func (i TimeInterval) DurationMinutes() int {
	return i.End.Minutes() - i.Start.Minutes()
}
