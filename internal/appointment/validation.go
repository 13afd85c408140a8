package appointment

import (
	"fmt"
	"strings"
	"time"
)

// SubmissionInput is the raw appointment form payload. Which fields matter
// depends on the operation being submitted.
type SubmissionInput struct {
	PrimaryPhysician   string
	Schedule           time.Time
	Reason             string
	Note               string
	CancellationReason string
}

// ValidationError carries field-scoped violations. A submission with any
// violation is blocked before any external call is made.
type ValidationError struct {
	Violations map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f := range e.Violations {
		fields = append(fields, f)
	}
	return fmt.Sprintf("invalid submission: %s", strings.Join(fields, ", "))
}

// ValidateSubmission checks the input against the rules for the given
// operation and returns a normalized copy or the full set of violations.
// A single failing field fails the whole submission; partial validation is
// never reported as success.
func ValidateSubmission(op Operation, in SubmissionInput) (SubmissionInput, *ValidationError) {
	out := SubmissionInput{
		PrimaryPhysician:   strings.TrimSpace(in.PrimaryPhysician),
		Schedule:           in.Schedule,
		Reason:             strings.TrimSpace(in.Reason),
		Note:               strings.TrimSpace(in.Note),
		CancellationReason: strings.TrimSpace(in.CancellationReason),
	}

	violations := make(map[string]string)

	switch op {
	case OpCancel:
		if out.CancellationReason == "" {
			violations["cancellationReason"] = "cancellation reason is required"
		}
	case OpCreate, OpSchedule:
		if out.PrimaryPhysician == "" {
			violations["primaryPhysician"] = "a physician must be selected"
		}
		// The form opens with "now" prefilled, but the user must still pick
		// an explicit time; a zero value means they never did.
		if out.Schedule.IsZero() {
			violations["schedule"] = "an appointment time must be chosen"
		}
	default:
		violations["operation"] = fmt.Sprintf("unknown operation %q", op)
	}

	if len(violations) > 0 {
		return SubmissionInput{}, &ValidationError{Violations: violations}
	}
	return out, nil
}
