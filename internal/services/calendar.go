package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"coursescheduler/internal/domain"
)

type calendarService struct {
	schedule domain.ScheduleService
	location *time.Location
}

// NewCalendarService creates a CalendarService that renders schedule blocks as
// an iCalendar feed in the campus time zone.
func NewCalendarService(schedule domain.ScheduleService, location *time.Location) domain.CalendarService {
	return &calendarService{schedule: schedule, location: location}
}

// rruleDays maps teaching days to RRULE BYDAY codes.
var rruleDays = map[domain.Weekday]string{
	domain.Monday:    "MO",
	domain.Tuesday:   "TU",
	domain.Wednesday: "WE",
	domain.Thursday:  "TH",
	domain.Friday:    "FR",
}

func (s *calendarService) BuildCalendar(ctx context.Context, term domain.Term, academicYear int, weekOf time.Time) (string, error) {
	blocks, err := s.schedule.BuildSchedule(ctx, term, academicYear)
	if err != nil {
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//coursescheduler//schedule//EN")

	monday := startOfWeek(weekOf.In(s.location))
	for _, b := range blocks {
		day := monday.AddDate(0, 0, int(b.Day)-1)
		start := time.Date(day.Year(), day.Month(), day.Day(), b.StartHour, b.StartMinute, 0, 0, s.location)
		end := time.Date(day.Year(), day.Month(), day.Day(), b.EndHour, b.EndMinute, 0, 0, s.location)

		names := make([]string, len(b.Courses))
		for i, c := range b.Courses {
			names[i] = c.Prefix + " " + c.Number
		}

		event := cal.AddEvent(b.ID)
		event.SetDtStampTime(start)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(strings.Join(names, ", "))
		event.AddRrule(fmt.Sprintf("FREQ=WEEKLY;BYDAY=%s", rruleDays[b.Day]))
	}

	return cal.Serialize(), nil
}

// startOfWeek returns midnight on the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	day := t.AddDate(0, 0, -offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}
