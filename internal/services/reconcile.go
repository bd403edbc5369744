package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"coursescheduler/internal/domain"
)

type meetingService struct {
	parentRepo     domain.ParentRepository
	meetingRepo    domain.MeetingRepository
	roomRepo       domain.RoomRepository
	availability   domain.RoomAvailability
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewMeetingService creates the MeetingService that owns all writes to a
// parent activity's meeting set.
func NewMeetingService(
	parentRepo domain.ParentRepository,
	meetingRepo domain.MeetingRepository,
	roomRepo domain.RoomRepository,
	availability domain.RoomAvailability,
	logger *slog.Logger,
	timeout time.Duration,
) domain.MeetingService {
	return &meetingService{
		parentRepo:     parentRepo,
		meetingRepo:    meetingRepo,
		roomRepo:       roomRepo,
		availability:   availability,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *meetingService) ReconcileMeetings(ctx context.Context, ref domain.ParentRef, desired []*domain.Meeting) ([]*domain.Meeting, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	parent, err := s.parentRepo.Get(ctx, ref)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get parent: %w", err)
	}

	current, err := s.meetingRepo.ListByParent(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	currentByID := make(map[string]*domain.Meeting, len(current))
	for _, m := range current {
		currentByID[m.ID] = m
	}

	// Three-way diff keyed by meeting ID: no ID means create, a known ID means
	// update, and any existing meeting left unreferenced is deleted.
	plan := domain.ChangePlan{}
	referenced := make(map[string]struct{}, len(desired))
	for _, d := range desired {
		d.Parent = ref
		if d.ID == "" {
			plan.Create = append(plan.Create, d)
			continue
		}
		if _, ok := currentByID[d.ID]; !ok {
			return nil, fmt.Errorf("meeting %s does not belong to %s: %w", d.ID, ref, domain.ErrNotFound)
		}
		referenced[d.ID] = struct{}{}
		plan.Update = append(plan.Update, d)
	}
	for _, m := range current {
		if _, ok := referenced[m.ID]; !ok {
			plan.DeleteIDs = append(plan.DeleteIDs, m.ID)
		}
	}

	if err := s.validateRooms(ctx, desired); err != nil {
		return nil, err
	}

	// The availability check below only sees persisted rows, so a desired set
	// that books the same room twice in overlapping slots must be rejected here.
	if err := checkBatchConflicts(desired, parent.Title); err != nil {
		return nil, err
	}

	// Every incoming slot with a room must be free before anything is written.
	// The first conflicting entry aborts the whole reconciliation.
	for _, d := range desired {
		if err := s.availability.CheckRoom(ctx, d, parent.Term, parent.AcademicYear, d.ID); err != nil {
			return nil, err
		}
	}

	if !plan.Empty() {
		if err := s.meetingRepo.ApplyChanges(ctx, ref, plan); err != nil {
			s.logger.ErrorContext(ctx, "apply meeting changes failed", "parent", ref.String(), "err", err)
			return nil, fmt.Errorf("apply meeting changes: %w", err)
		}
	}

	result, err := s.meetingRepo.ListByParent(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	if result == nil {
		result = []*domain.Meeting{}
	}
	return result, nil
}

// checkBatchConflicts rejects a desired set that double-books a room against
// itself: two entries sharing a room whose intervals overlap.
func checkBatchConflicts(desired []*domain.Meeting, parentTitle string) error {
	for i, a := range desired {
		if a.RoomID == nil {
			continue
		}
		for _, b := range desired[i+1:] {
			if b.RoomID == nil || *a.RoomID != *b.RoomID {
				continue
			}
			if a.Interval.Overlaps(b.Interval) {
				return &domain.RoomConflictError{RoomID: *a.RoomID, Titles: []string{parentTitle}}
			}
		}
	}
	return nil
}

// validateRooms ensures every distinct room referenced by desired exists.
func (s *meetingService) validateRooms(ctx context.Context, desired []*domain.Meeting) error {
	seen := make(map[string]struct{})
	for _, d := range desired {
		if d.RoomID == nil {
			continue
		}
		if _, ok := seen[*d.RoomID]; ok {
			continue
		}
		seen[*d.RoomID] = struct{}{}
		if _, err := s.roomRepo.GetByID(ctx, *d.RoomID); err != nil {
			if err == domain.ErrNotFound {
				return fmt.Errorf("room %s: %w", *d.RoomID, domain.ErrNotFound)
			}
			return fmt.Errorf("get room: %w", err)
		}
	}
	return nil
}
