package services

import (
	"context"
	"fmt"
	"sort"

	"coursescheduler/internal/domain"
)

// fakeParentRepo is an in-memory ParentRepository for tests.
type fakeParentRepo struct {
	byRef map[domain.ParentRef]*domain.Parent
}

func newFakeParentRepo() *fakeParentRepo {
	return &fakeParentRepo{byRef: make(map[domain.ParentRef]*domain.Parent)}
}

func (f *fakeParentRepo) add(p *domain.Parent) {
	f.byRef[p.Ref] = p
}

func (f *fakeParentRepo) Get(ctx context.Context, ref domain.ParentRef) (*domain.Parent, error) {
	if p, ok := f.byRef[ref]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

// fakeRoomRepo is an in-memory RoomRepository for tests.
type fakeRoomRepo struct {
	byID map[string]*domain.Room
}

func newFakeRoomRepo(rooms ...*domain.Room) *fakeRoomRepo {
	f := &fakeRoomRepo{byID: make(map[string]*domain.Room)}
	for _, r := range rooms {
		f.byID[r.ID] = r
	}
	return f
}

func (f *fakeRoomRepo) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	if r, ok := f.byID[id]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

// fakeMeetingRepo is an in-memory MeetingRepository for tests. It resolves
// parent titles and term scoping through the parent repo and room display
// names through the room repo, the same joins the Postgres repo performs.
type fakeMeetingRepo struct {
	byID     map[string]*domain.Meeting
	parents  *fakeParentRepo
	rooms    *fakeRoomRepo
	nextID   int
	applyErr error // if set, ApplyChanges returns this error without mutating
	courses  []*domain.CourseMeeting
}

func newFakeMeetingRepo(parents *fakeParentRepo, rooms *fakeRoomRepo) *fakeMeetingRepo {
	return &fakeMeetingRepo{
		byID:    make(map[string]*domain.Meeting),
		parents: parents,
		rooms:   rooms,
		nextID:  1,
	}
}

func (f *fakeMeetingRepo) seed(m *domain.Meeting) *domain.Meeting {
	m.ID = fmt.Sprintf("m-%d", f.nextID)
	f.nextID++
	f.byID[m.ID] = m
	return m
}

func (f *fakeMeetingRepo) ListByParent(ctx context.Context, parent domain.ParentRef) ([]*domain.Meeting, error) {
	var out []*domain.Meeting
	for _, m := range f.byID {
		if m.Parent != parent {
			continue
		}
		cp := *m
		if cp.RoomID != nil {
			if room, ok := f.rooms.byID[*cp.RoomID]; ok {
				name := room.DisplayName()
				cp.RoomName = &name
			}
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Interval.Day != b.Interval.Day {
			return a.Interval.Day < b.Interval.Day
		}
		return a.Interval.Start.Minutes() < b.Interval.Start.Minutes()
	})
	return out, nil
}

func (f *fakeMeetingRepo) ListRoomBookings(ctx context.Context, roomID string, term domain.Term, academicYear int, day domain.Weekday) ([]*domain.RoomBooking, error) {
	var out []*domain.RoomBooking
	for _, m := range f.byID {
		if m.RoomID == nil || *m.RoomID != roomID || m.Interval.Day != day {
			continue
		}
		parent, ok := f.parents.byRef[m.Parent]
		if !ok || parent.Term != term || parent.AcademicYear != academicYear {
			continue
		}
		out = append(out, &domain.RoomBooking{
			MeetingID:   m.ID,
			ParentTitle: parent.Title,
			Interval:    m.Interval,
		})
	}
	return out, nil
}

func (f *fakeMeetingRepo) ListCourseMeetings(ctx context.Context, term domain.Term, academicYear int) ([]*domain.CourseMeeting, error) {
	return f.courses, nil
}

func (f *fakeMeetingRepo) ApplyChanges(ctx context.Context, parent domain.ParentRef, plan domain.ChangePlan) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	for _, id := range plan.DeleteIDs {
		delete(f.byID, id)
	}
	for _, m := range plan.Update {
		cp := *m
		cp.Parent = parent
		f.byID[m.ID] = &cp
	}
	for _, m := range plan.Create {
		m.ID = fmt.Sprintf("m-%d", f.nextID)
		f.nextID++
		cp := *m
		cp.Parent = parent
		f.byID[m.ID] = &cp
	}
	return nil
}

// snapshot returns the stored meetings keyed by ID, for atomicity assertions.
func (f *fakeMeetingRepo) snapshot() map[string]domain.Meeting {
	out := make(map[string]domain.Meeting, len(f.byID))
	for id, m := range f.byID {
		out[id] = *m
	}
	return out
}

// mustInterval builds a TimeInterval for fixtures and fails loudly on misuse.
func mustInterval(day domain.Weekday, start, end string) domain.TimeInterval {
	s, err := domain.ParseTimeOfDay(start)
	if err != nil {
		panic(err)
	}
	e, err := domain.ParseTimeOfDay(end)
	if err != nil {
		panic(err)
	}
	iv, err := domain.NewTimeInterval(day, s, e)
	if err != nil {
		panic(err)
	}
	return iv
}

func strPtr(s string) *string { return &s }
