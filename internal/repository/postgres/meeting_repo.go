package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"coursescheduler/internal/domain"
)

type meetingRepository struct {
	DB *sql.DB
}

func NewMeetingRepository(db *sql.DB) domain.MeetingRepository {
	return &meetingRepository{
		DB: db,
	}
}

// parentColumn maps a parent kind onto its foreign-key column. Meetings carry
// one nullable FK per parent kind; exactly one is set per row.
func parentColumn(kind domain.ParentKind) (string, error) {
	switch kind {
	case domain.ParentCourseInstance:
		return "course_instance_id", nil
	case domain.ParentNonClassEvent:
		return "non_class_event_id", nil
	}
	return "", fmt.Errorf("unknown parent kind %q", kind)
}

func (r *meetingRepository) ListByParent(ctx context.Context, parent domain.ParentRef) ([]*domain.Meeting, error) {
	col, err := parentColumn(parent.Kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT m.id, m.day, m.start_minutes, m.end_minutes, m.room_id, rm.building, rm.name
		FROM meetings m
		LEFT JOIN rooms rm ON rm.id = m.room_id
		WHERE m.%s = $1
		ORDER BY m.day, m.start_minutes
	`, col)
	rows, err := r.DB.QueryContext(ctx, query, parent.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	meetings := make([]*domain.Meeting, 0)
	for rows.Next() {
		m := &domain.Meeting{Parent: parent}
		var day, startMin, endMin int
		var roomID, building, roomName sql.NullString
		if err := rows.Scan(&m.ID, &day, &startMin, &endMin, &roomID, &building, &roomName); err != nil {
			return nil, err
		}
		m.Interval = domain.TimeInterval{
			Day:   domain.Weekday(day),
			Start: domain.TimeOfDayFromMinutes(startMin),
			End:   domain.TimeOfDayFromMinutes(endMin),
		}
		if roomID.Valid {
			m.RoomID = &roomID.String
		}
		if building.Valid && roomName.Valid {
			display := building.String + " " + roomName.String
			m.RoomName = &display
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

func (r *meetingRepository) ListRoomBookings(ctx context.Context, roomID string, term domain.Term, academicYear int, day domain.Weekday) ([]*domain.RoomBooking, error) {
	query := `
		SELECT m.id, m.day, m.start_minutes, m.end_minutes,
		       COALESCE(c.prefix || ' ' || c.number, e.title) AS parent_title
		FROM meetings m
		LEFT JOIN course_instances ci ON ci.id = m.course_instance_id
		LEFT JOIN courses c ON c.id = ci.course_id
		LEFT JOIN non_class_events e ON e.id = m.non_class_event_id
		WHERE m.room_id = $1
		  AND m.day = $2
		  AND ((ci.term = $3 AND ci.academic_year = $4) OR (e.term = $3 AND e.academic_year = $4))
		ORDER BY m.start_minutes
	`
	rows, err := r.DB.QueryContext(ctx, query, roomID, int(day), string(term), academicYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bookings := make([]*domain.RoomBooking, 0)
	for rows.Next() {
		b := &domain.RoomBooking{}
		var d, startMin, endMin int
		if err := rows.Scan(&b.MeetingID, &d, &startMin, &endMin, &b.ParentTitle); err != nil {
			return nil, err
		}
		b.Interval = domain.TimeInterval{
			Day:   domain.Weekday(d),
			Start: domain.TimeOfDayFromMinutes(startMin),
			End:   domain.TimeOfDayFromMinutes(endMin),
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *meetingRepository) ListCourseMeetings(ctx context.Context, term domain.Term, academicYear int) ([]*domain.CourseMeeting, error) {
	query := `
		SELECT m.day, m.start_minutes, m.end_minutes, c.prefix, c.number
		FROM meetings m
		JOIN course_instances ci ON ci.id = m.course_instance_id
		JOIN courses c ON c.id = ci.course_id
		WHERE ci.term = $1 AND ci.academic_year = $2 AND ci.retired = FALSE
	`
	rows, err := r.DB.QueryContext(ctx, query, string(term), academicYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	meetings := make([]*domain.CourseMeeting, 0)
	for rows.Next() {
		cm := &domain.CourseMeeting{}
		var day, startMin, endMin int
		if err := rows.Scan(&day, &startMin, &endMin, &cm.Course.Prefix, &cm.Course.Number); err != nil {
			return nil, err
		}
		cm.Interval = domain.TimeInterval{
			Day:   domain.Weekday(day),
			Start: domain.TimeOfDayFromMinutes(startMin),
			End:   domain.TimeOfDayFromMinutes(endMin),
		}
		meetings = append(meetings, cm)
	}
	return meetings, rows.Err()
}

// ApplyChanges commits the whole plan in one serializable transaction. The
// reconciler's read-check-write sequence relies on this isolation level so
// two concurrent bookings of the same slot cannot both commit.
func (r *meetingRepository) ApplyChanges(ctx context.Context, parent domain.ParentRef, plan domain.ChangePlan) error {
	col, err := parentColumn(parent.Kind)
	if err != nil {
		return err
	}
	tx, err := r.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if len(plan.DeleteIDs) > 0 {
		query := fmt.Sprintf(`DELETE FROM meetings WHERE id = ANY($1) AND %s = $2`, col)
		if _, err := tx.ExecContext(ctx, query, pq.Array(plan.DeleteIDs), parent.ID); err != nil {
			return err
		}
	}

	for _, m := range plan.Update {
		query := fmt.Sprintf(`
			UPDATE meetings
			SET day = $1, start_minutes = $2, end_minutes = $3, room_id = $4
			WHERE id = $5 AND %s = $6
		`, col)
		result, err := tx.ExecContext(ctx, query,
			int(m.Interval.Day), m.Interval.Start.Minutes(), m.Interval.End.Minutes(), m.RoomID,
			m.ID, parent.ID,
		)
		if err != nil {
			return err
		}
		affected, _ := result.RowsAffected()
		if affected == 0 {
			return domain.ErrNotFound
		}
	}

	for _, m := range plan.Create {
		query := fmt.Sprintf(`
			INSERT INTO meetings (%s, day, start_minutes, end_minutes, room_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, col)
		if err := tx.QueryRowContext(ctx, query,
			parent.ID, int(m.Interval.Day), m.Interval.Start.Minutes(), m.Interval.End.Minutes(), m.RoomID,
		).Scan(&m.ID); err != nil {
			return err
		}
	}

	return tx.Commit()
}
