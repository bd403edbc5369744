package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"coursescheduler/internal/delivery/http/controllers"
	"coursescheduler/internal/delivery/http/middleware"
	"coursescheduler/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes. Write
// endpoints require a Bearer token; the schedule reads are public.
func NewRouter(
	logger *slog.Logger,
	verifier domain.TokenVerifier,
	meetingController *controllers.MeetingController,
	scheduleController *controllers.ScheduleController,
	authController *controllers.AuthController,
) *http.ServeMux {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(verifier, logger)

	// Meetings
	mux.HandleFunc("PUT /course-instances/{parentID}/meetings", requireAuth(meetingController.ReplaceCourseInstanceMeetings))
	mux.HandleFunc("PUT /non-class-events/{parentID}/meetings", requireAuth(meetingController.ReplaceNonClassEventMeetings))

	// Schedule
	mux.HandleFunc("GET /schedule", scheduleController.GetSchedule)
	mux.HandleFunc("GET /schedule/calendar.ics", scheduleController.GetCalendar)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
