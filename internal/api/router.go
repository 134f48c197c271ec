package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/carebridge/telemed-scheduling/internal/booking"
	"github.com/carebridge/telemed-scheduling/internal/schedule"
)

type RouterConfig struct {
	Schedule    *schedule.Service
	Coordinator *booking.Coordinator
	PgPool      *pgxpool.Pool
	Redis       *redis.Client
	Logger      *zap.Logger
	Env         string
	Version     string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Availability
	r.Get("/providers/{id}/availability", getAvailabilityHandler(cfg.Schedule))
	r.Get("/providers/{id}/slot-check", slotCheckHandler(cfg.Coordinator))

	// Schedule management
	r.Post("/providers/{id}/availability-rules", createRuleHandler(cfg.Schedule))
	r.Delete("/availability-rules/{id}", deleteRuleHandler(cfg.Schedule))
	r.Put("/providers/{id}/weekly-templates", setWeeklyTemplateHandler(cfg.Schedule))
	r.Post("/providers/{id}/blackouts", addBlackoutHandler(cfg.Schedule))

	// Booking
	r.Post("/appointments", bookSlotHandler(cfg.Coordinator))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Coordinator))
	r.Post("/appointments/{id}/cancel", transitionHandler(cfg.Coordinator.Cancel))
	r.Post("/appointments/{id}/complete", transitionHandler(cfg.Coordinator.Complete))
	r.Post("/appointments/{id}/no-show", transitionHandler(cfg.Coordinator.NoShow))
	r.Get("/patients/{id}/appointments", listAppointmentsHandler(cfg.Coordinator.ListByPatient))
	r.Get("/providers/{id}/appointments", listAppointmentsHandler(cfg.Coordinator.ListByProvider))

	return r
}
