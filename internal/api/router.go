package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/clinic-management/internal/auth"
	"github.com/hackgods/clinic-management/internal/clinic"
	"github.com/hackgods/clinic-management/internal/metrics"
)

type RouterConfig struct {
	Service  *clinic.Service
	Auth     *auth.Authenticator
	Database Pinger
	Redis    Pinger
	Metrics  *metrics.Metrics
	Env      string
	Version  string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(MetricsMiddleware(cfg.Metrics))

	// Health endpoints
	health := NewHealthHandler(cfg.Database, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	r.Post("/auth/login", loginHandler(cfg.Auth))

	r.Group(func(r chi.Router) {
		r.Use(RequireSession(cfg.Auth))

		r.Post("/auth/logout", logoutHandler(cfg.Auth))
		r.Get("/auth/me", meHandler())

		r.Route("/patients", func(r chi.Router) {
			r.Get("/", listPatientsHandler(cfg.Service))
			r.Post("/", createPatientHandler(cfg.Service))
			r.Get("/{id}", getPatientHandler(cfg.Service))
			r.Put("/{id}", updatePatientHandler(cfg.Service))
			r.Delete("/{id}", deletePatientHandler(cfg.Service))
			r.Get("/{id}/appointments", patientAppointmentsHandler(cfg.Service))
		})

		r.Route("/doctors", func(r chi.Router) {
			r.Get("/", listDoctorsHandler(cfg.Service))
			r.Post("/", createDoctorHandler(cfg.Service))
			r.Get("/specialties", specialtiesHandler(cfg.Service))
			r.Get("/{id}", getDoctorHandler(cfg.Service))
			r.Put("/{id}", updateDoctorHandler(cfg.Service))
			r.Delete("/{id}", deleteDoctorHandler(cfg.Service))
			r.Get("/{id}/appointments", doctorAppointmentsHandler(cfg.Service))
		})

		r.Route("/appointments", func(r chi.Router) {
			r.Get("/", listAppointmentsHandler(cfg.Service))
			r.Post("/", createAppointmentHandler(cfg.Service))
			r.Get("/{id}", getAppointmentHandler(cfg.Service))
			r.Put("/{id}", updateAppointmentHandler(cfg.Service))
			r.Patch("/{id}/status", setAppointmentStatusHandler(cfg.Service))
			r.Delete("/{id}", deleteAppointmentHandler(cfg.Service))
		})

		r.Get("/stats", statsHandler(cfg.Service))
	})

	return r
}
