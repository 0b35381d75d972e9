package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tasktrack/apiserver/internal/service"
	"github.com/tasktrack/apiserver/pkg/health"
	"github.com/tasktrack/apiserver/pkg/middleware"
)

// RouterConfig carries the service identity and CORS settings for the router.
type RouterConfig struct {
	AppName    string
	AppVersion string
	CORS       CORSConfig
}

// NewRouter creates a chi router with all API routes registered.
func NewRouter(
	userService *service.UserService,
	taskService *service.TaskService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("tasktracker"))

	// Service root and operational endpoints
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"name":    cfg.AppName,
			"version": cfg.AppVersion,
		})
	})
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		promhttp.Handler().ServeHTTP(w, req)
	})

	// Public auth endpoints. Login takes a form body, so the JSON
	// content-type check applies only to registration.
	authHandler := NewAuthHandler(userService, logger)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(ContentTypeJSON).Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// Bearer tokens are resolved against the live user record on every
	// request, so deactivation takes effect before the token expires.
	resolver := func(ctx context.Context, token string) (*middleware.Identity, error) {
		user, err := userService.Resolve(ctx, token)
		if err != nil {
			return nil, err
		}
		return &middleware.Identity{
			UserID:    user.ID,
			Username:  user.Username,
			Email:     user.Email,
			Superuser: user.IsSuperuser,
		}, nil
	}

	userHandler := NewUserHandler(userService, logger)
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(resolver))
		r.Use(middleware.RequestLogger(logger))

		r.Get("/me", userHandler.Me)
		r.Put("/me", userHandler.UpdateMe)
	})

	taskHandler := NewTaskHandler(taskService, logger)
	r.Route("/api/v1/tasks", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(resolver))
		r.Use(middleware.RequestLogger(logger))

		r.Get("/", taskHandler.List)
		r.Post("/", taskHandler.Create)
		r.Get("/{id}", taskHandler.Get)
		r.Put("/{id}", taskHandler.Update)
		r.Delete("/{id}", taskHandler.Delete)
	})

	return r
}
