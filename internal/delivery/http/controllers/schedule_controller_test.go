package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"coursescheduler/internal/delivery/http/helpers"
	"coursescheduler/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeScheduleService implements domain.ScheduleService for handler tests.
type fakeScheduleService struct {
	lastTerm domain.Term
	lastYear int
	blocks   []*domain.ScheduleBlock
	err      error
}

func (f *fakeScheduleService) BuildSchedule(_ context.Context, term domain.Term, academicYear int) ([]*domain.ScheduleBlock, error) {
	f.lastTerm = term
	f.lastYear = academicYear
	if f.err != nil {
		return nil, f.err
	}
	return f.blocks, nil
}

// fakeCalendarService implements domain.CalendarService for handler tests.
type fakeCalendarService struct {
	lastWeekOf time.Time
	feed       string
	err        error
}

func (f *fakeCalendarService) BuildCalendar(_ context.Context, _ domain.Term, _ int, weekOf time.Time) (string, error) {
	f.lastWeekOf = weekOf
	if f.err != nil {
		return "", f.err
	}
	return f.feed, nil
}

func TestScheduleController_GetSchedule(t *testing.T) {
	blocks := []*domain.ScheduleBlock{
		{
			ID:              "AMMON9001000FALL2026",
			Day:             domain.Monday,
			StartHour:       9,
			EndHour:         10,
			DurationMinutes: 60,
			Courses: []domain.CourseListing{
				{Prefix: "AM", Number: "10"},
				{Prefix: "CS", Number: "50"},
			},
		},
	}

	tests := []struct {
		name         string
		query        string
		svc          *fakeScheduleService
		wantStatus   int
		wantBodyCode string
	}{
		{
			name:       "success",
			query:      "term=FALL&academic_year=2026",
			svc:        &fakeScheduleService{blocks: blocks},
			wantStatus: http.StatusOK,
		},
		{
			name:         "missing term",
			query:        "academic_year=2026",
			svc:          &fakeScheduleService{},
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "bad term",
			query:        "term=SUMMER&academic_year=2026",
			svc:          &fakeScheduleService{},
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "bad year",
			query:        "term=FALL&academic_year=soon",
			svc:          &fakeScheduleService{},
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "service failure",
			query:        "term=FALL&academic_year=2026",
			svc:          &fakeScheduleService{err: errors.New("db down")},
			wantStatus:   http.StatusInternalServerError,
			wantBodyCode: helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			controller := NewScheduleController(testLogger(), tt.svc, &fakeCalendarService{})
			req := httptest.NewRequest(http.MethodGet, "http://test/schedule?"+tt.query, nil)
			rr := httptest.NewRecorder()

			controller.GetSchedule(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantBodyCode != "" {
				envelope := decodeEnvelope(t, rr)
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
				return
			}
			var envelope struct {
				Data  []ScheduleBlockResponse `json:"data"`
				Error *helpers.APIError       `json:"error"`
			}
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			require.Len(t, envelope.Data, 1)
			got := envelope.Data[0]
			assert.Equal(t, "AMMON9001000FALL2026", got.ID)
			assert.Equal(t, "MON", got.Day)
			assert.Equal(t, "9:00 AM", got.StartDisplay)
			assert.Equal(t, "10:00 AM", got.EndDisplay)
			assert.Equal(t, []string{"AM 10", "CS 50"}, got.Courses)
			assert.Equal(t, domain.TermFall, tt.svc.lastTerm)
			assert.Equal(t, 2026, tt.svc.lastYear)
		})
	}
}

func TestScheduleController_GetCalendar(t *testing.T) {
	cal := &fakeCalendarService{feed: "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"}
	controller := NewScheduleController(testLogger(), &fakeScheduleService{}, cal)

	req := httptest.NewRequest(http.MethodGet, "http://test/schedule/calendar.ics?term=FALL&academic_year=2026&week_of=2026-08-31", nil)
	rr := httptest.NewRecorder()

	controller.GetCalendar(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/calendar"))
	assert.Equal(t, cal.feed, rr.Body.String())
	assert.Equal(t, time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC), cal.lastWeekOf)
}

func TestScheduleController_GetCalendarBadAnchor(t *testing.T) {
	controller := NewScheduleController(testLogger(), &fakeScheduleService{}, &fakeCalendarService{})

	req := httptest.NewRequest(http.MethodGet, "http://test/schedule/calendar.ics?term=FALL&academic_year=2026&week_of=next-monday", nil)
	rr := httptest.NewRecorder()

	controller.GetCalendar(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	envelope := decodeEnvelope(t, rr)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, helpers.ErrCodeBadRequest, envelope.Error.Code)
}
