package controllers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	h "coursescheduler/internal/delivery/http/helpers"
	"coursescheduler/internal/domain"
)

// ScheduleBlockResponse is one block in the GET /schedule response. Times are
// duplicated as 24h fields and 12h display strings.
type ScheduleBlockResponse struct {
	ID              string   `json:"id"`
	Day             string   `json:"day"`
	StartHour       int      `json:"start_hour"`
	StartMinute     int      `json:"start_minute"`
	EndHour         int      `json:"end_hour"`
	EndMinute       int      `json:"end_minute"`
	StartDisplay    string   `json:"start_display"`
	EndDisplay      string   `json:"end_display"`
	DurationMinutes int      `json:"duration_minutes"`
	Courses         []string `json:"courses"`
}

// GetScheduleSuccessResponse is the success envelope for GET /schedule (200).
type GetScheduleSuccessResponse struct {
	Data  []ScheduleBlockResponse `json:"data"`
	Error *h.APIError             `json:"error"`
}

type ScheduleController struct {
	Logger   *slog.Logger
	Service  domain.ScheduleService
	Calendar domain.CalendarService
}

func NewScheduleController(logger *slog.Logger, svc domain.ScheduleService, cal domain.CalendarService) *ScheduleController {
	return &ScheduleController{
		Logger:   logger,
		Service:  svc,
		Calendar: cal,
	}
}

// termAndYear parses the required term and academic_year query parameters.
// Writes a 400 and returns ok=false on any failure.
func termAndYear(w http.ResponseWriter, r *http.Request) (domain.Term, int, bool) {
	term, err := domain.ParseTerm(r.URL.Query().Get("term"))
	if err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
		return "", 0, false
	}
	rawYear := r.URL.Query().Get("academic_year")
	year, err := strconv.Atoi(rawYear)
	if err != nil || year < 1900 {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "academic_year must be a four-digit year")
		return "", 0, false
	}
	return term, year, true
}

// GetSchedule godoc
// @Summary Get the block schedule for a term
// @Description Returns the deduplicated, deterministically ordered grid of meeting blocks for all offered course instances in the given term. Blocks sharing a day and time slot are merged, with each distinct course listed once.
// @Tags schedule
// @Produce json
// @Param term query string true "Term (FALL or SPRING)"
// @Param academic_year query int true "Academic year, e.g. 2026"
// @Success 200 {object} GetScheduleSuccessResponse "data contains the ordered schedule blocks"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /schedule [get]
func (c *ScheduleController) GetSchedule(w http.ResponseWriter, r *http.Request) {
	term, year, ok := termAndYear(w, r)
	if !ok {
		return
	}

	blocks, err := c.Service.BuildSchedule(r.Context(), term, year)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}

	out := make([]ScheduleBlockResponse, 0, len(blocks))
	for _, b := range blocks {
		courses := make([]string, 0, len(b.Courses))
		for _, course := range b.Courses {
			courses = append(courses, course.Prefix+" "+course.Number)
		}
		out = append(out, ScheduleBlockResponse{
			ID:              b.ID,
			Day:             b.Day.String(),
			StartHour:       b.StartHour,
			StartMinute:     b.StartMinute,
			EndHour:         b.EndHour,
			EndMinute:       b.EndMinute,
			StartDisplay:    b.Start().Display(),
			EndDisplay:      b.End().Display(),
			DurationMinutes: b.DurationMinutes,
			Courses:         courses,
		})
	}

	h.WriteJSONSuccess(w, http.StatusOK, out)
}

// GetCalendar godoc
// @Summary Get the term schedule as an iCalendar feed
// @Description Returns the term's schedule blocks as a text/calendar feed with one weekly-recurring VEVENT per block. Recurrences are anchored to the week containing week_of (default: the current week).
// @Tags schedule
// @Produce plain
// @Param term query string true "Term (FALL or SPRING)"
// @Param academic_year query int true "Academic year, e.g. 2026"
// @Param week_of query string false "Anchor date, YYYY-MM-DD"
// @Success 200 {string} string "iCalendar feed"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /schedule/calendar.ics [get]
func (c *ScheduleController) GetCalendar(w http.ResponseWriter, r *http.Request) {
	term, year, ok := termAndYear(w, r)
	if !ok {
		return
	}

	weekOf := time.Now()
	if raw := r.URL.Query().Get("week_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "week_of must be YYYY-MM-DD")
			return
		}
		weekOf = parsed
	}

	feed, err := c.Calendar.BuildCalendar(r.Context(), term, year, weekOf)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(feed))
}
