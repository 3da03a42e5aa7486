package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"

	"github.com/fitstack/fitness-platform/internal/auth"
	"github.com/fitstack/fitness-platform/internal/authz"
	"github.com/fitstack/fitness-platform/internal/transport/middleware"
	"github.com/fitstack/fitness-platform/internal/transport/swagger"
	"github.com/fitstack/fitness-platform/internal/user"
	"github.com/fitstack/fitness-platform/internal/workout"
)

func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	sqlxDB *sqlx.DB,
	engine *authz.Engine,
	authHandler *auth.Handler,
	userHandler *user.Handler,
	workoutHandler *workout.Handler,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check route
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		if authHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/register", authHandler.Register)
				sr.Post("/login", authHandler.Login)
				sr.Post("/refresh", authHandler.RefreshToken)
				sr.Post("/logout", authHandler.Logout)
			})
		}

		if authHandler != nil {
			// Protected routes that require authentication
			r.Group(func(pr chi.Router) {
				pr.Use(authHandler.AuthMiddleware)

				// Current user
				if userHandler != nil {
					pr.Get("/users/me", userHandler.GetCurrentUser)
				}

				// Workout routes
				if workoutHandler != nil {
					pr.Route("/workouts", func(wr chi.Router) {
						wr.Group(func(cr chi.Router) {
							cr.Use(middleware.RequirePermission(engine, logger, "workout", "create"))
							cr.Post("/", workoutHandler.CreateWorkout)
						})

						wr.Group(func(lr chi.Router) {
							lr.Use(middleware.RequirePermission(engine, logger, "workout", "read"))
							lr.Get("/", workoutHandler.ListWorkouts)
						})

						// Reads on a specific workout: owner, or workout:read_all
						wr.Group(func(or chi.Router) {
							or.Use(middleware.RequireCanViewWorkout(sqlxDB, engine))
							or.Get("/{id}", workoutHandler.GetWorkout)
						})

						wr.Group(func(mr chi.Router) {
							mr.Use(middleware.RequirePermission(engine, logger, "workout", "update"))
							mr.Patch("/{id}", workoutHandler.UpdateWorkout)
						})

						wr.Group(func(dr chi.Router) {
							dr.Use(middleware.RequirePermission(engine, logger, "workout", "delete"))
							dr.Delete("/{id}", workoutHandler.DeleteWorkout)
						})
					})
				}
			})
		}
	})
}
