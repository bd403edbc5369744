package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursescheduler/internal/domain"
)

func meetingInterval(t *testing.T, day domain.Weekday, start, end string) domain.TimeInterval {
	t.Helper()
	s, err := domain.ParseTimeOfDay(start)
	require.NoError(t, err)
	e, err := domain.ParseTimeOfDay(end)
	require.NoError(t, err)
	iv, err := domain.NewTimeInterval(day, s, e)
	require.NoError(t, err)
	return iv
}

func TestMeetingRepository_ListByParent(t *testing.T) {
	ctx := context.Background()
	parent := domain.ParentRef{Kind: domain.ParentCourseInstance, ID: "ci-1"}

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT m.id, m.day, m.start_minutes, m.end_minutes, m.room_id, rm.building, rm.name`).
		WithArgs("ci-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "day", "start_minutes", "end_minutes", "room_id", "building", "name"}).
			AddRow("m-1", 1, 540, 600, "room-a", "Pierce", "301").
			AddRow("m-2", 3, 540, 600, nil, nil, nil))

	repo := NewMeetingRepository(db)
	meetings, err := repo.ListByParent(ctx, parent)
	require.NoError(t, err)
	require.Len(t, meetings, 2)

	assert.Equal(t, "m-1", meetings[0].ID)
	assert.Equal(t, parent, meetings[0].Parent)
	assert.Equal(t, domain.Monday, meetings[0].Interval.Day)
	assert.Equal(t, domain.TimeOfDay{Hour: 9}, meetings[0].Interval.Start)
	assert.Equal(t, domain.TimeOfDay{Hour: 10}, meetings[0].Interval.End)
	require.NotNil(t, meetings[0].RoomID)
	assert.Equal(t, "room-a", *meetings[0].RoomID)
	require.NotNil(t, meetings[0].RoomName)
	assert.Equal(t, "Pierce 301", *meetings[0].RoomName)

	assert.Equal(t, domain.Wednesday, meetings[1].Interval.Day)
	assert.Nil(t, meetings[1].RoomID)
	assert.Nil(t, meetings[1].RoomName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMeetingRepository_ListByParent_UnknownKind(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewMeetingRepository(db)
	_, err = repo.ListByParent(context.Background(), domain.ParentRef{Kind: "building", ID: "x"})
	require.Error(t, err)
}

func TestMeetingRepository_ListRoomBookings(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT m.id, m.day, m.start_minutes, m.end_minutes,`).
		WithArgs("room-a", 1, "FALL", 2026).
		WillReturnRows(sqlmock.NewRows([]string{"id", "day", "start_minutes", "end_minutes", "parent_title"}).
			AddRow("m-1", 1, 540, 600, "CS 50").
			AddRow("m-2", 1, 630, 705, "Faculty Seminar"))

	repo := NewMeetingRepository(db)
	bookings, err := repo.ListRoomBookings(ctx, "room-a", domain.TermFall, 2026, domain.Monday)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, "CS 50", bookings[0].ParentTitle)
	assert.Equal(t, meetingInterval(t, domain.Monday, "09:00", "10:00"), bookings[0].Interval)
	assert.Equal(t, "Faculty Seminar", bookings[1].ParentTitle)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMeetingRepository_ListCourseMeetings(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT m.day, m.start_minutes, m.end_minutes, c.prefix, c.number`).
		WithArgs("SPRING", 2027).
		WillReturnRows(sqlmock.NewRows([]string{"day", "start_minutes", "end_minutes", "prefix", "number"}).
			AddRow(2, 630, 705, "CS", "50").
			AddRow(2, 630, 705, "AM", "10"))

	repo := NewMeetingRepository(db)
	meetings, err := repo.ListCourseMeetings(ctx, domain.TermSpring, 2027)
	require.NoError(t, err)
	require.Len(t, meetings, 2)
	assert.Equal(t, domain.CourseListing{Prefix: "CS", Number: "50"}, meetings[0].Course)
	assert.Equal(t, domain.Tuesday, meetings[0].Interval.Day)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMeetingRepository_ApplyChanges(t *testing.T) {
	ctx := context.Background()
	parent := domain.ParentRef{Kind: domain.ParentCourseInstance, ID: "ci-1"}
	roomA := "room-a"

	t.Run("full plan commits in one transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		created := &domain.Meeting{
			Interval: meetingInterval(t, domain.Friday, "13:00", "14:00"),
			RoomID:   nil,
		}
		updated := &domain.Meeting{
			ID:       "m-1",
			Interval: meetingInterval(t, domain.Monday, "09:00", "11:00"),
			RoomID:   &roomA,
		}
		plan := domain.ChangePlan{
			Create:    []*domain.Meeting{created},
			Update:    []*domain.Meeting{updated},
			DeleteIDs: []string{"m-2", "m-3"},
		}

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM meetings`).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`UPDATE meetings`).
			WithArgs(1, 540, 660, "room-a", "m-1", "ci-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO meetings`).
			WithArgs("ci-1", 5, 780, 840, nil).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("m-new"))
		mock.ExpectCommit()

		repo := NewMeetingRepository(db)
		require.NoError(t, repo.ApplyChanges(ctx, parent, plan))
		assert.Equal(t, "m-new", created.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update of foreign meeting rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		plan := domain.ChangePlan{
			Update: []*domain.Meeting{{
				ID:       "not-ours",
				Interval: meetingInterval(t, domain.Monday, "09:00", "10:00"),
			}},
		}

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE meetings`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		repo := NewMeetingRepository(db)
		err = repo.ApplyChanges(ctx, parent, plan)
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		plan := domain.ChangePlan{
			Create: []*domain.Meeting{{
				Interval: meetingInterval(t, domain.Monday, "09:00", "10:00"),
			}},
		}

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO meetings`).
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		repo := NewMeetingRepository(db)
		require.Error(t, repo.ApplyChanges(ctx, parent, plan))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
