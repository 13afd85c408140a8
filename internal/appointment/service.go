package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/carepulse/patient-booking/internal/redis"
)

const (
	EventAppointmentCreated   = "APPOINTMENT_CREATED"
	EventAppointmentScheduled = "APPOINTMENT_SCHEDULED"
	EventAppointmentCanceled  = "APPOINTMENT_CANCELED"
)

var (
	// ErrValidationFailed means Submit received input that never passed the
	// validation layer. Callers are expected to validate first, so hitting
	// this is a programming error, not a user error.
	ErrValidationFailed = errors.New("submission failed validation")

	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrTransitionInFlight = errors.New("appointment is currently being updated, please retry")
)

// Service is the appointment lifecycle manager. It derives the status from
// the requested operation and delegates persistence; it keeps no local state
// and performs no compensating writes.
type Service struct {
	repo   Repository
	locker redisclient.Locker
	logger *slog.Logger
}

func NewService(repo Repository, locker redisclient.Locker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		locker: locker,
		logger: logger,
	}
}

// Submit turns a validated input plus an operation into a persisted
// appointment record with the status the operation mandates:
// create makes a new pending record, schedule and cancel transition an
// existing one. The returned record carries its identifier so the caller can
// navigate to it immediately.
func (s *Service) Submit(ctx context.Context, op Operation, in SubmissionInput, personID, patientID, appointmentID uuid.UUID) (*Appointment, error) {
	normalized, verr := ValidateSubmission(op, in)
	if verr != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, verr)
	}

	target, err := StatusFor(op)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	if target == StatusPending {
		return s.create(ctx, normalized, personID, patientID)
	}
	return s.transition(ctx, op, target, normalized, appointmentID)
}

func (s *Service) create(ctx context.Context, in SubmissionInput, personID, patientID uuid.UUID) (*Appointment, error) {
	if personID == uuid.Nil || patientID == uuid.Nil {
		return nil, fmt.Errorf("%w: person and patient ids are required", ErrValidationFailed)
	}

	appt, err := s.repo.Create(ctx, Appointment{
		PersonID:         personID,
		PatientID:        patientID,
		PrimaryPhysician: in.PrimaryPhysician,
		Schedule:         in.Schedule,
		Reason:           in.Reason,
		Note:             in.Note,
	})
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.logEvent(ctx, appt.ID, EventAppointmentCreated, map[string]any{
		"person_id":  personID.String(),
		"patient_id": patientID.String(),
		"schedule":   in.Schedule.Format(time.RFC3339),
	})

	return appt, nil
}

// transition moves an existing appointment to the operation's status under a
// per-appointment lock, so two concurrent submissions cannot race the same
// record. The repository UPDATE only matches admissible source statuses;
// when it matches nothing, a fresh read distinguishes an unknown id from an
// inadmissible one (canceled is terminal, scheduled never reverts).
func (s *Service) transition(ctx context.Context, op Operation, target Status, in SubmissionInput, appointmentID uuid.UUID) (*Appointment, error) {
	if appointmentID == uuid.Nil {
		return nil, ErrAppointmentNotFound
	}

	var updated *Appointment

	err := s.locker.WithAppointmentLock(ctx, appointmentID, func(lockCtx context.Context) error {
		var appt *Appointment
		var err error

		switch target {
		case StatusScheduled:
			appt, err = s.repo.MarkScheduled(lockCtx, appointmentID, in)
		case StatusCanceled:
			appt, err = s.repo.MarkCanceled(lockCtx, appointmentID, in.CancellationReason)
		}

		if errors.Is(err, ErrAppointmentNotFound) {
			if _, getErr := s.repo.GetByID(lockCtx, appointmentID); getErr == nil {
				return ErrInvalidTransition
			}
			return ErrAppointmentNotFound
		}
		if err != nil {
			return fmt.Errorf("%s appointment: %w", op, err)
		}

		updated = appt
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrTransitionInFlight
		}
		return nil, err
	}

	event := EventAppointmentScheduled
	payload := map[string]any{"schedule": in.Schedule.Format(time.RFC3339)}
	if target == StatusCanceled {
		event = EventAppointmentCanceled
		payload = map[string]any{"reason": in.CancellationReason}
	}
	s.logEvent(ctx, updated.ID, event, payload)

	return updated, nil
}

// Get retrieves an appointment by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return appt, nil
}

// ListByPatient retrieves appointments for a patient profile.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	if limit <= 0 {
		limit = 20 // default
	}
	if limit > 100 {
		limit = 100 // max
	}
	if offset < 0 {
		offset = 0
	}

	appointments, err := s.repo.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments by patient: %w", err)
	}
	return appointments, nil
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn("marshal event payload failed", "event", eventType, "error", err)
		data = nil
	}

	apptID := appointmentID

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     time.Now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.logger.Warn("insert event log failed",
			"event", eventType,
			"appointment_id", appointmentID,
			"error", err,
		)
	}
}
