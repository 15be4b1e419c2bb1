package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/tasker-api/internal/api"
	apiMiddleware "github.com/phrazzld/tasker-api/internal/api/middleware"
)

// setupRouter creates the router with all routes and middleware. ctx bounds
// the lifetime of background work owned by middleware such as the rate limiter.
func (app *application) setupRouter(ctx context.Context) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Trace-ID", "Retry-After"},
		AllowCredentials: app.config.CORS.AllowCredentials,
		MaxAge:           app.config.CORS.MaxAge,
	}))

	authHandler := api.NewAuthHandler(app.authService, app.jwtService, app.config.Auth)
	taskHandler := api.NewTaskHandler(app.taskService, app.userService)
	userHandler := api.NewUserHandler(app.userService)
	healthHandler := api.NewHealthHandler(app.db)
	identity := apiMiddleware.NewIdentityBinder(app.jwtService, app.config.Auth.RequireToken)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if app.config.RateLimit.Enabled {
				limiter := apiMiddleware.NewRateLimiter(ctx,
					app.config.RateLimit.RequestsPerSecond,
					app.config.RateLimit.Burst)
				r.Use(limiter.Limit)
			}
			authHandler.Routes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(identity.Bind)
			r.Route("/tasks", taskHandler.Routes)
			r.Route("/users", userHandler.Routes)
		})
	})

	r.Get("/health", healthHandler.Health)

	return r
}
