package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Repository contains all DB interactions needed by the lifecycle service.
type Repository interface {
	Create(ctx context.Context, a Appointment) (*Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// Transitions are compare-and-set: the UPDATE only matches rows whose
	// current status admits the operation, so a raced submission loses
	// cleanly with ErrAppointmentNotFound.
	MarkScheduled(ctx context.Context, id uuid.UUID, in SubmissionInput) (*Appointment, error)
	MarkCanceled(ctx context.Context, id uuid.UUID, reason string) (*Appointment, error)

	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error)

	// Event logging
	InsertEvent(ctx context.Context, ev EventLog) error
}
