package services

import (
	"context"
	"fmt"

	"coursescheduler/internal/domain"
)

type roomAvailability struct {
	meetingRepo domain.MeetingRepository
}

// NewRoomAvailability creates a RoomAvailability backed by the meeting store.
// The check is read-only; it never caches bookings between calls.
func NewRoomAvailability(meetingRepo domain.MeetingRepository) domain.RoomAvailability {
	return &roomAvailability{meetingRepo: meetingRepo}
}

func (s *roomAvailability) CheckRoom(ctx context.Context, candidate *domain.Meeting, term domain.Term, academicYear int, excludeMeetingID string) error {
	// Meetings without a room never conflict.
	if candidate.RoomID == nil {
		return nil
	}

	bookings, err := s.meetingRepo.ListRoomBookings(ctx, *candidate.RoomID, term, academicYear, candidate.Interval.Day)
	if err != nil {
		return fmt.Errorf("list room bookings: %w", err)
	}

	var titles []string
	for _, b := range bookings {
		if excludeMeetingID != "" && b.MeetingID == excludeMeetingID {
			continue
		}
		if candidate.Interval.Overlaps(b.Interval) {
			titles = append(titles, b.ParentTitle)
		}
	}
	if len(titles) > 0 {
		return &domain.RoomConflictError{RoomID: *candidate.RoomID, Titles: titles}
	}
	return nil
}
