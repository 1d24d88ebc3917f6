// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"taskplanner/internal/ai"
	"taskplanner/internal/app"
	"taskplanner/internal/config"
)

// OIDCConfig carries the pieces of the single sign-on flow the handlers
// need. Enabled is false when no issuer was configured.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config *oauth2.Config
}

// Services bundles the application services the server routes to.
type Services struct {
	Auth          *app.AuthService
	Tasks         *app.TaskService
	Pomodoro      *app.PomodoroService
	Calendar      *app.CalendarService
	Notifications *app.NotificationService
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth          *app.AuthService
	tasks         *app.TaskService
	pomodoro      *app.PomodoroService
	calendar      *app.CalendarService
	notifications *app.NotificationService
	parser        ai.Parser
	oidcConfig    OIDCConfig
	adminEmails   map[string]struct{}
	validate      *validator.Validate
	logger        zerolog.Logger
}

// New creates a Server wired to the given application services.
func New(svc Services, parser ai.Parser, oidcConfig OIDCConfig, cfg *config.Config, logger zerolog.Logger) *Server {
	admins := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, email := range cfg.AdminEmails {
		admins[email] = struct{}{}
	}
	return &Server{
		auth:          svc.Auth,
		tasks:         svc.Tasks,
		pomodoro:      svc.Pomodoro,
		calendar:      svc.Calendar,
		notifications: svc.Notifications,
		parser:        parser,
		oidcConfig:    oidcConfig,
		adminEmails:   admins,
		validate:      validator.New(),
		logger:        logger,
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusOK, map[string]any{"status": "healthy"}, "")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Get("/sso/login", s.handleSSOLogin)
			r.Get("/sso/callback", s.handleSSOCallback)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Get("/me", s.handleMe)
				r.Post("/logout", s.handleLogout)
				r.Post("/refresh", s.handleRefresh)
				r.Post("/logout-all", s.handleLogoutAll)
				r.Get("/sessions", s.handleListSessions)
				r.With(s.requireAdmin).Post("/cleanup", s.handleCleanup)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", s.handleListTasks)
				r.Post("/", s.handleCreateTask)
				r.Put("/bulk", s.handleBulkUpdateTasks)
				r.Get("/{id}", s.handleGetTask)
				r.Put("/{id}", s.handleUpdateTask)
				r.Delete("/{id}", s.handleDeleteTask)
			})

			r.Route("/pomodoro", func(r chi.Router) {
				r.Post("/start", s.handleStartPomodoro)
				r.Put("/{id}/end", s.handleEndPomodoro)
				r.Get("/sessions", s.handleListPomodoros)
				r.Get("/stats", s.handlePomodoroStats)
			})

			r.Route("/calendar", func(r chi.Router) {
				r.Get("/events", s.handleListEvents)
				r.Post("/events", s.handleCreateEvent)
				r.Put("/events/{id}", s.handleUpdateEvent)
				r.Delete("/events/{id}", s.handleDeleteEvent)
				r.Post("/sync", s.handleCalendarSync)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", s.handleListNotifications)
				r.Post("/", s.handleCreateNotification)
				r.Put("/read-all", s.handleMarkAllRead)
				r.Put("/{id}/read", s.handleMarkRead)
				r.Delete("/{id}", s.handleDeleteNotification)
			})

			r.Route("/ai", func(r chi.Router) {
				r.Post("/parse", s.handleAIParse)
				r.Post("/suggest", s.handleAISuggest)
			})
		})
	})

	return r
}
