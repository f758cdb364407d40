package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/user"
	"github.com/ponto-escolar/ponto-backend-go/internal/handler/http/middleware"
	"github.com/ponto-escolar/ponto-backend-go/internal/handler/http/response"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/jwt"
)

// RouterOptions carries the deployment settings the router needs.
type RouterOptions struct {
	Env            string
	Version        string
	AllowedOrigins []string
	LogLevel       slog.Level
	// UploadsDir is served under /uploads to authenticated users when set.
	UploadsDir string
}

type Handlers struct {
	Auth         AuthHandler
	Attendance   AttendanceHandler
	Absence      AbsenceHandler
	User         UserHandler
	Coordination CoordinationHandler
	Settings     SettingsHandler
	Events       EventsHandler
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, users middleware.UserLoader, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       opts.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "ponto-escolar"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	authenticated := func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired(JWTService))
		r.Use(middleware.LoadUser(users))
	}
	can := middleware.RequirePermission

	if opts.UploadsDir != "" {
		r.Group(func(r chi.Router) {
			authenticated(r)
			r.Use(can(user.PermissionAbsenceViewOwn))
			r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.UploadsDir))))
		})
	}

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
			r.Route("/oauth/callback", func(r chi.Router) {
				r.Get("/google", h.Auth.OAuthCallbackGoogle)
			})

			r.Route("/login", func(r chi.Router) {
				r.Post("/", h.Auth.Login)
				r.Route("/oauth", func(r chi.Router) {
					r.Get("/google", h.Auth.LoginWithGoogle)
				})
			})

			r.Group(func(r chi.Router) {
				authenticated(r)
				r.Get("/me", h.Auth.Me)
				r.Post("/switch-role", h.Auth.SwitchRole)
			})
		})

		// Browsers cannot set headers on an EventSource, so the stream
		// authenticates with a short-lived token in the query string.
		r.Get("/events/stream", h.Events.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			authenticated(r)

			r.Route("/attendance", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionAttendanceRecord))
					r.Post("/clock-in", h.Attendance.ClockIn)
					r.Post("/lunch-start", h.Attendance.LunchStart)
					r.Post("/lunch-end", h.Attendance.LunchEnd)
					r.Post("/htp-start", h.Attendance.HTPStart)
					r.Post("/htp-end", h.Attendance.HTPEnd)
					r.Post("/clock-out", h.Attendance.ClockOut)
				})

				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionAttendanceViewOwn))
					r.Get("/today", h.Attendance.Today)
					r.Get("/my", h.Attendance.GetMyAttendance)
				})

				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionAttendanceViewTeam))
					r.Get("/", h.Attendance.List)
				})

				r.With(can(user.PermissionReportsExport)).Get("/export", h.Attendance.Export)
				r.With(can(user.PermissionAttendanceManage)).Delete("/{id}", h.Attendance.Delete)
			})

			r.Route("/absences", func(r chi.Router) {
				r.With(can(user.PermissionAbsenceSubmit)).Post("/", h.Absence.Submit)
				r.With(can(user.PermissionAbsenceViewTeam)).Get("/", h.Absence.List)

				// The owner may read their own request; the service scopes the rest.
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionAbsenceViewOwn))
					r.Get("/my", h.Absence.GetMyRequests)
					r.Get("/{id}", h.Absence.Get)
				})

				r.With(can(user.PermissionAbsenceReview)).Post("/{id}/review", h.Absence.Review)
			})

			r.Route("/users", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionUserViewTeam))
					r.Get("/", h.User.List)
					r.Get("/{id}", h.User.Get)
				})

				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionUserManage))
					r.Post("/", h.User.Create)
					r.Put("/{id}", h.User.Update)
					r.Put("/{id}/status", h.User.UpdateStatus)
					r.Put("/{id}/password", h.User.SetPassword)
				})
			})

			r.Route("/coordinations", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionCoordinationView))
					r.Get("/", h.Coordination.List)
					r.Get("/{id}", h.Coordination.Get)
					r.Get("/{id}/members", h.Coordination.Members)
				})

				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionCoordinationManage))
					r.Post("/", h.Coordination.Create)
					r.Put("/{id}", h.Coordination.Update)
					r.Delete("/{id}", h.Coordination.Delete)
				})
			})

			r.Get("/events/token", h.Events.Token)

			r.Route("/settings", func(r chi.Router) {
				r.With(can(user.PermissionSettingsView)).Get("/", h.Settings.Get)
				r.With(can(user.PermissionSettingsManage)).Put("/", h.Settings.Update)
			})
		})
	})
	return r
}
