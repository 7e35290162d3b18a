package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/clockwise-hr/attendance-engine-go/internal/handler/http/middleware"
	"github.com/clockwise-hr/attendance-engine-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	JWTService jwt.Service,
	env string,
	attendanceHandler AttendanceHandler,
	shiftHandler ShiftHandler,
	overtimeHandler OvertimeHandler,
	exceptionHandler ExceptionHandler,
	calendarHandler CalendarHandler,
	reportHandler ReportHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-engine"),
		slog.String("version", "v1.0.0"),
		slog.String("env", env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Everything requires a verified service token
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/clock-in", attendanceHandler.ClockIn)
				r.Post("/clock-out", attendanceHandler.ClockOut)
				r.Get("/", attendanceHandler.List)
				r.Get("/finalized", attendanceHandler.GetFinalized)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", attendanceHandler.Get)
					r.Post("/corrections", attendanceHandler.Correct)
					r.Get("/corrections", attendanceHandler.ListCorrections)
				})
			})

			r.Route("/shifts", func(r chi.Router) {
				r.Post("/", shiftHandler.Create)
				r.Get("/", shiftHandler.List)
				r.Get("/resolve", shiftHandler.Resolve)
				r.Post("/assignments", shiftHandler.Assign)
				r.Get("/assignments/{employeeID}", shiftHandler.ListAssignments)
				r.Route("/{code}", func(r chi.Router) {
					r.Get("/", shiftHandler.Get)
					r.Delete("/", shiftHandler.Deactivate)
				})
			})

			r.Route("/overtime", func(r chi.Router) {
				r.Get("/summary", overtimeHandler.GetSummary)
				r.Route("/rules", func(r chi.Router) {
					r.Post("/", overtimeHandler.CreateRule)
					r.Get("/", overtimeHandler.ListRules)
					r.Get("/{code}", overtimeHandler.GetRule)
					r.Post("/{code}/approve", overtimeHandler.ApproveRule)
				})
			})

			r.Route("/exceptions", func(r chi.Router) {
				r.Post("/", exceptionHandler.Create)
				r.Get("/", exceptionHandler.List)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", exceptionHandler.Get)
					r.Post("/approve", exceptionHandler.Approve)
					r.Post("/reject", exceptionHandler.Reject)
				})
			})

			r.Route("/calendar/holidays", func(r chi.Router) {
				r.Post("/", calendarHandler.UpsertHoliday)
				r.Get("/", calendarHandler.ListHolidays)
				r.Post("/import", calendarHandler.ImportICS)
			})

			r.Get("/reports/overtime/export", reportHandler.ExportOvertime)
		})
	})
	return r
}
