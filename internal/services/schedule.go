package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"coursescheduler/internal/domain"
)

type scheduleService struct {
	meetingRepo    domain.MeetingRepository
	contextTimeout time.Duration
}

// NewScheduleService creates the read-only ScheduleService that aggregates a
// term's meetings into the display grid.
func NewScheduleService(meetingRepo domain.MeetingRepository, timeout time.Duration) domain.ScheduleService {
	return &scheduleService{meetingRepo: meetingRepo, contextTimeout: timeout}
}

// blockKey groups meetings that occupy the same weekly slot.
type blockKey struct {
	day          domain.Weekday
	startMinutes int
	endMinutes   int
}

func (s *scheduleService) BuildSchedule(ctx context.Context, term domain.Term, academicYear int) ([]*domain.ScheduleBlock, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	meetings, err := s.meetingRepo.ListCourseMeetings(ctx, term, academicYear)
	if err != nil {
		return nil, fmt.Errorf("list course meetings: %w", err)
	}

	grouped := make(map[blockKey][]domain.CourseListing)
	for _, m := range meetings {
		key := blockKey{
			day:          m.Interval.Day,
			startMinutes: m.Interval.Start.Minutes(),
			endMinutes:   m.Interval.End.Minutes(),
		}
		grouped[key] = append(grouped[key], m.Course)
	}

	blocks := make([]*domain.ScheduleBlock, 0, len(grouped))
	for key, courses := range grouped {
		deduped := dedupeCourses(courses)
		if len(deduped) == 0 {
			continue
		}
		start := domain.TimeOfDayFromMinutes(key.startMinutes)
		end := domain.TimeOfDayFromMinutes(key.endMinutes)
		blocks = append(blocks, &domain.ScheduleBlock{
			Day:             key.day,
			StartHour:       start.Hour,
			StartMinute:     start.Minute,
			EndHour:         end.Hour,
			EndMinute:       end.Minute,
			DurationMinutes: key.endMinutes - key.startMinutes,
			Courses:         deduped,
		})
	}

	// Composite ordering makes the grid deterministic: day, then start, then
	// duration, then the first course's prefix.
	sort.Slice(blocks, func(i, j int) bool {
		a, b := blocks[i], blocks[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.StartHour != b.StartHour {
			return a.StartHour < b.StartHour
		}
		if a.StartMinute != b.StartMinute {
			return a.StartMinute < b.StartMinute
		}
		if a.DurationMinutes != b.DurationMinutes {
			return a.DurationMinutes < b.DurationMinutes
		}
		return a.Courses[0].Prefix < b.Courses[0].Prefix
	})

	for _, b := range blocks {
		b.ID = blockID(b, term, academicYear)
	}
	return blocks, nil
}

// dedupeCourses drops duplicate (prefix, number) pairs, so a course with
// multiple same-time sections contributes once, and sorts the rest.
func dedupeCourses(courses []domain.CourseListing) []domain.CourseListing {
	seen := make(map[domain.CourseListing]struct{}, len(courses))
	out := make([]domain.CourseListing, 0, len(courses))
	for _, c := range courses {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// blockID derives the block's stable identifier from its slot, the first
// course's prefix, and the term scope. Minutes are zero-padded so "9:05" and
// "9:50" never collide.
func blockID(b *domain.ScheduleBlock, term domain.Term, academicYear int) string {
	return fmt.Sprintf("%s%s%d%02d%d%02d%s%d",
		b.Courses[0].Prefix, b.Day, b.StartHour, b.StartMinute, b.EndHour, b.EndMinute, term, academicYear)
}
