package appointment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Operation selects which fields a submission requires and which status the
// record ends up in.
type Operation string

const (
	OpCreate   Operation = "create"
	OpSchedule Operation = "schedule"
	OpCancel   Operation = "cancel"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled"
	StatusCanceled  Status = "canceled"
)

// StatusFor maps an operation to the status it produces. The mapping is
// closed: an unknown operation is rejected rather than defaulting.
func StatusFor(op Operation) (Status, error) {
	switch op {
	case OpCreate:
		return StatusPending, nil
	case OpSchedule:
		return StatusScheduled, nil
	case OpCancel:
		return StatusCanceled, nil
	default:
		return "", fmt.Errorf("unknown operation %q", op)
	}
}

type Appointment struct {
	ID                 uuid.UUID
	PersonID           uuid.UUID
	PatientID          uuid.UUID
	PrimaryPhysician   string
	Schedule           time.Time
	Reason             string
	Note               string
	CancellationReason *string
	Status             Status
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}
