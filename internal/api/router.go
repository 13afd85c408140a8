package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/carepulse/patient-booking/internal/appointment"
	"github.com/carepulse/patient-booking/internal/identity"
	"github.com/carepulse/patient-booking/internal/patient"
)

// PersonDirectory is the identity capability consumed by the handlers.
type PersonDirectory interface {
	CreatePerson(ctx context.Context, in identity.NewPersonInput) (*identity.Person, error)
	GetPerson(ctx context.Context, id uuid.UUID) (*identity.Person, error)
}

// PatientRegistry is the profile-registration capability.
type PatientRegistry interface {
	Register(ctx context.Context, in patient.RegisterInput, doc *patient.Document) (*patient.Profile, error)
	GetByPersonID(ctx context.Context, personID uuid.UUID) (*patient.Profile, error)
}

// AppointmentService is the lifecycle capability.
type AppointmentService interface {
	Submit(ctx context.Context, op appointment.Operation, in appointment.SubmissionInput, personID, patientID, appointmentID uuid.UUID) (*appointment.Appointment, error)
	Get(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]appointment.Appointment, error)
}

type RouterConfig struct {
	Logger         *slog.Logger
	Persons        PersonDirectory
	Patients       PatientRegistry
	Appointments   AppointmentService
	PgPool         *pgxpool.Pool
	Redis          *redis.Client
	Storage        StoragePinger
	Env            string
	Version        string
	MaxUploadBytes int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Storage, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Person directory
	r.Post("/persons", createPersonHandler(cfg.Persons))
	r.Get("/persons/{id}", getPersonHandler(cfg.Persons))

	// Patient profiles
	r.Post("/patients", registerPatientHandler(cfg.Patients, cfg.MaxUploadBytes))
	r.Get("/patients/{personID}", getPatientHandler(cfg.Patients))

	// Appointment lifecycle
	r.Post("/appointments", createAppointmentHandler(cfg.Appointments))
	r.Get("/appointments", listAppointmentsHandler(cfg.Appointments))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Appointments))
	r.Post("/appointments/{id}/schedule", transitionAppointmentHandler(cfg.Appointments, appointment.OpSchedule))
	r.Post("/appointments/{id}/cancel", transitionAppointmentHandler(cfg.Appointments, appointment.OpCancel))

	return r
}
