package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/finwell/cashplan/internal/adapter/http/handler"
	"github.com/finwell/cashplan/internal/adapter/http/middleware"
	"github.com/finwell/cashplan/internal/infrastructure/metrics"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler     *handler.AccountHandler
	TransactionHandler *handler.TransactionHandler
	ScheduleHandler    *handler.ScheduleHandler
	CategoryHandler    *handler.CategoryHandler
	IntegrityHandler   *handler.IntegrityHandler
	ProjectionHandler  *handler.ProjectionHandler
	HealthHandler      *handler.HealthHandler
	Logger             zerolog.Logger
	Metrics            *metrics.Metrics
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}
	r.Use(middleware.Recovery(cfg.Logger))

	// Health and telemetry endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Patch("/{id}", cfg.AccountHandler.Rename)
			r.Delete("/{id}", cfg.AccountHandler.Delete)
			r.Post("/{id}/adjust", cfg.AccountHandler.Adjust)
			r.Get("/{id}/transactions", cfg.TransactionHandler.ListByAccount)
			r.Get("/{id}/integrity", cfg.IntegrityHandler.Check)
			r.Post("/{id}/integrity/resolve", cfg.IntegrityHandler.Resolve)
		})

		// Transactions
		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", cfg.TransactionHandler.Create)
			r.Get("/", cfg.TransactionHandler.List)
			r.Get("/{id}", cfg.TransactionHandler.Get)
			r.Put("/{id}", cfg.TransactionHandler.Update)
			r.Delete("/{id}", cfg.TransactionHandler.Delete)
		})

		// Schedules and their occurrences
		r.Route("/schedules", func(r chi.Router) {
			r.Post("/", cfg.ScheduleHandler.Create)
			r.Get("/", cfg.ScheduleHandler.List)
			r.Get("/upcoming", cfg.ScheduleHandler.Upcoming)
			r.Get("/{id}", cfg.ScheduleHandler.Get)
			r.Put("/{id}", cfg.ScheduleHandler.Update)
			r.Delete("/{id}", cfg.ScheduleHandler.Delete)

			r.Route("/{id}/occurrences/{index}", func(r chi.Router) {
				r.Get("/", cfg.ScheduleHandler.GetOccurrence)
				r.Post("/record", cfg.ScheduleHandler.RecordOccurrence)
				r.Post("/skip", cfg.ScheduleHandler.SkipOccurrence)
				r.Post("/reschedule", cfg.ScheduleHandler.RescheduleOccurrence)
				r.Post("/resplit", cfg.ScheduleHandler.ResplitOccurrence)
				r.Post("/reset", cfg.ScheduleHandler.ResetOccurrence)
				r.Delete("/", cfg.ScheduleHandler.DeleteOccurrence)
			})
		})

		// Categories
		r.Route("/categories", func(r chi.Router) {
			r.Post("/reassign", cfg.CategoryHandler.Reassign)
			r.Post("/subcategories/reassign", cfg.CategoryHandler.ReassignSubCategory)
			r.Get("/{category}/usage", cfg.CategoryHandler.Usage)
		})

		// Integrity
		r.Get("/integrity", cfg.IntegrityHandler.CheckAll)

		// Projections
		r.Get("/projections/monthly", cfg.ProjectionHandler.Monthly)
	})

	return r
}
