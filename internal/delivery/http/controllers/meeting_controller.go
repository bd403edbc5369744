package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	h "coursescheduler/internal/delivery/http/helpers"
	"coursescheduler/internal/domain"
)

// MeetingEntry is one desired meeting in a PUT .../meetings request. An empty
// id means "create"; a non-empty id must belong to the parent being edited.
type MeetingEntry struct {
	ID        string  `json:"id"`
	Day       string  `json:"day"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	RoomID    *string `json:"room_id"`
}

// ReplaceMeetingsRequest is the request body for PUT /course-instances/{parentID}/meetings
// and PUT /non-class-events/{parentID}/meetings. The list replaces the parent's
// entire meeting set.
type ReplaceMeetingsRequest struct {
	Meetings []MeetingEntry `json:"meetings"`
}

// Validate implements Validator. Day and time formats are checked here; slot
// ordering and overlap rules belong to the service.
func (r ReplaceMeetingsRequest) Validate() []string {
	var errs []string
	for i, m := range r.Meetings {
		if _, err := domain.ParseWeekday(m.Day); err != nil {
			errs = append(errs, fmt.Sprintf("meetings[%d]: %v", i, err))
		}
		if _, err := domain.ParseTimeOfDay(m.StartTime); err != nil {
			errs = append(errs, fmt.Sprintf("meetings[%d]: invalid start_time %q", i, m.StartTime))
		}
		if _, err := domain.ParseTimeOfDay(m.EndTime); err != nil {
			errs = append(errs, fmt.Sprintf("meetings[%d]: invalid end_time %q", i, m.EndTime))
		}
		if m.RoomID != nil && strings.TrimSpace(*m.RoomID) == "" {
			errs = append(errs, fmt.Sprintf("meetings[%d]: room_id must be omitted or non-empty", i))
		}
	}
	return errs
}

// MeetingResponse is one persisted meeting in the response, with both the
// machine-friendly 24h fields and the display strings the UI renders.
type MeetingResponse struct {
	ID           string  `json:"id"`
	Day          string  `json:"day"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	StartDisplay string  `json:"start_display"`
	EndDisplay   string  `json:"end_display"`
	RoomID       *string `json:"room_id"`
	RoomName     *string `json:"room_name"`
}

// ReplaceMeetingsSuccessResponse is the success envelope for the meeting
// replacement endpoints (200).
type ReplaceMeetingsSuccessResponse struct {
	Data  []MeetingResponse `json:"data"`
	Error *h.APIError       `json:"error"`
}

type MeetingController struct {
	Logger  *slog.Logger
	Service domain.MeetingService
}

func NewMeetingController(logger *slog.Logger, svc domain.MeetingService) *MeetingController {
	return &MeetingController{
		Logger:  logger,
		Service: svc,
	}
}

// ReplaceCourseInstanceMeetings godoc
// @Summary Replace a course instance's meetings
// @Description Atomically replaces the course instance's entire weekly meeting set with the given list. Entries without an id are created, entries with an id are updated, and existing meetings missing from the list are deleted. Any room conflict aborts the whole request and names every occupant of the contested slot.
// @Tags meetings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param parentID path string true "Course instance ID"
// @Param body body ReplaceMeetingsRequest true "Desired meeting set"
// @Success 200 {object} ReplaceMeetingsSuccessResponse "data contains the persisted meeting set"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /course-instances/{parentID}/meetings [put]
func (c *MeetingController) ReplaceCourseInstanceMeetings(w http.ResponseWriter, r *http.Request) {
	c.replaceMeetings(w, r, domain.ParentCourseInstance)
}

// ReplaceNonClassEventMeetings godoc
// @Summary Replace a non-class event's meetings
// @Description Atomically replaces the event's entire weekly meeting set. Same semantics as the course-instance endpoint: all-or-nothing, with full conflict reporting.
// @Tags meetings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param parentID path string true "Non-class event ID"
// @Param body body ReplaceMeetingsRequest true "Desired meeting set"
// @Success 200 {object} ReplaceMeetingsSuccessResponse "data contains the persisted meeting set"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /non-class-events/{parentID}/meetings [put]
func (c *MeetingController) ReplaceNonClassEventMeetings(w http.ResponseWriter, r *http.Request) {
	c.replaceMeetings(w, r, domain.ParentNonClassEvent)
}

func (c *MeetingController) replaceMeetings(w http.ResponseWriter, r *http.Request, kind domain.ParentKind) {
	parentID := r.PathValue("parentID")
	if parentID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing parentID")
		return
	}

	var req ReplaceMeetingsRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	ref := domain.ParentRef{Kind: kind, ID: parentID}
	desired, err := toDesiredMeetings(ref, req.Meetings)
	if err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
		return
	}

	meetings, err := c.Service.ReconcileMeetings(r.Context(), ref, desired)
	if err != nil {
		var conflict *domain.RoomConflictError
		switch {
		case errors.As(err, &conflict):
			h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, conflict.Error())
		case errors.Is(err, domain.ErrNotFound):
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, err.Error())
		case errors.Is(err, domain.ErrInvalidInterval):
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		}
		return
	}

	h.WriteJSONSuccess(w, http.StatusOK, toMeetingResponses(meetings))
}

func toDesiredMeetings(ref domain.ParentRef, entries []MeetingEntry) ([]*domain.Meeting, error) {
	desired := make([]*domain.Meeting, 0, len(entries))
	for i, e := range entries {
		day, err := domain.ParseWeekday(e.Day)
		if err != nil {
			return nil, fmt.Errorf("meetings[%d]: %w", i, err)
		}
		start, err := domain.ParseTimeOfDay(e.StartTime)
		if err != nil {
			return nil, fmt.Errorf("meetings[%d]: %w", i, err)
		}
		end, err := domain.ParseTimeOfDay(e.EndTime)
		if err != nil {
			return nil, fmt.Errorf("meetings[%d]: %w", i, err)
		}
		interval, err := domain.NewTimeInterval(day, start, end)
		if err != nil {
			return nil, fmt.Errorf("meetings[%d]: %w", i, err)
		}
		m := domain.NewMeeting(ref, interval, e.RoomID)
		m.ID = e.ID
		desired = append(desired, m)
	}
	return desired, nil
}

func toMeetingResponses(meetings []*domain.Meeting) []MeetingResponse {
	out := make([]MeetingResponse, 0, len(meetings))
	for _, m := range meetings {
		out = append(out, MeetingResponse{
			ID:           m.ID,
			Day:          m.Interval.Day.String(),
			StartTime:    m.Interval.Start.String(),
			EndTime:      m.Interval.End.String(),
			StartDisplay: m.Interval.Start.Display(),
			EndDisplay:   m.Interval.End.Display(),
			RoomID:       m.RoomID,
			RoomName:     m.RoomName,
		})
	}
	return out
}
