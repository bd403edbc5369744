package domain

import (
	"context"
	"fmt"
)

// ParentKind discriminates the two activity types that can own meetings.
type ParentKind string

const (
	ParentCourseInstance ParentKind = "course_instance"
	ParentNonClassEvent  ParentKind = "non_class_event"
)

// ParentRef identifies a parent activity: exactly one kind plus its ID.
type ParentRef struct {
	Kind ParentKind `json:"kind"`
	ID   string     `json:"id"`
}

func (p ParentRef) String() string {
	return fmt.Sprintf("%s/%s", p.Kind, p.ID)
}

// Parent is the resolved parent activity a meeting set belongs to. Term and
// AcademicYear scope every availability check for the parent's meetings.
type Parent struct {
	Ref          ParentRef `json:"ref"`
	Title        string    `json:"title"`
	Term         Term      `json:"term"`
	AcademicYear int       `json:"academic_year"`
	Retired      bool      `json:"retired"`
}

// Meeting is one weekly-recurring occurrence owned by a parent activity. ID is
// empty for not-yet-persisted meetings supplied by a caller; the repository
// sets it on create. RoomName is a read-side convenience ("{building} {room}")
// populated when listing, nil for roomless meetings.
type Meeting struct {
	ID       string       `json:"id"`
	Parent   ParentRef    `json:"parent"`
	Interval TimeInterval `json:"interval"`
	RoomID   *string      `json:"room_id"`
	RoomName *string      `json:"room_name"`
}

// NewMeeting returns a Meeting for the given parent and slot. ID is set by the
// repository on create.
func NewMeeting(parent ParentRef, interval TimeInterval, roomID *string) *Meeting {
	return &Meeting{
		Parent:   parent,
		Interval: interval,
		RoomID:   roomID,
	}
}

// RoomBooking is a committed occupation of a room, as seen by the availability
// check: the interval plus enough identity to exclude the candidate's own
// booking and to name the occupant on conflict.
type RoomBooking struct {
	MeetingID   string       `json:"meeting_id"`
	ParentTitle string       `json:"parent_title"`
	Interval    TimeInterval `json:"interval"`
}

// ChangePlan is the add/update/delete diff a reconciliation commits. The
// repository applies the whole plan in a single transaction.
type ChangePlan struct {
	Create    []*Meeting
	Update    []*Meeting
	DeleteIDs []string
}

// Empty reports whether the plan changes nothing.
func (p ChangePlan) Empty() bool {
	return len(p.Create) == 0 && len(p.Update) == 0 && len(p.DeleteIDs) == 0
}

// MeetingRepository defines storage for meetings. ApplyChanges must be
// all-or-nothing: either the whole plan commits or persisted state is
// untouched.
type MeetingRepository interface {
	ListByParent(ctx context.Context, parent ParentRef) ([]*Meeting, error)
	ListRoomBookings(ctx context.Context, roomID string, term Term, academicYear int, day Weekday) ([]*RoomBooking, error)
	ListCourseMeetings(ctx context.Context, term Term, academicYear int) ([]*CourseMeeting, error)
	ApplyChanges(ctx context.Context, parent ParentRef, plan ChangePlan) error
}

// ParentRepository resolves parent activities of either kind.
type ParentRepository interface {
	Get(ctx context.Context, ref ParentRef) (*Parent, error)
}

// RoomAvailability decides whether a candidate meeting may occupy its room.
type RoomAvailability interface {
	// CheckRoom succeeds when the candidate's slot is free, or trivially when
	// the candidate has no room. excludeMeetingID (the candidate's own
	// persisted ID, if any) is skipped so an edit never conflicts with its own
	// prior booking. On conflict it returns a *RoomConflictError naming every
	// occupant.
	CheckRoom(ctx context.Context, candidate *Meeting, term Term, academicYear int, excludeMeetingID string) error
}

// MeetingService defines the business logic for a parent activity's meeting
// set. The reconciler is the sole writer of meetings.
type MeetingService interface {
	// ReconcileMeetings atomically replaces the parent's entire meeting set
	// with desired and returns the resulting persisted set. Entries without an
	// ID are created, entries whose ID matches an existing meeting are updated,
	// and existing meetings absent from desired are deleted. Any room conflict
	// aborts the whole operation.
	ReconcileMeetings(ctx context.Context, ref ParentRef, desired []*Meeting) ([]*Meeting, error)
}
