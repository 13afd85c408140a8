package appointment

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
)

// ErrBusy is returned when Submit is called while a previous submission is
// still in flight. The guard is enforced, not advisory: the second call never
// reaches validation or I/O.
var ErrBusy = errors.New("a submission is already in flight")

// SubmitFunc performs the actual submission, typically Service.Submit or an
// HTTP call to it.
type SubmitFunc func(ctx context.Context, op Operation, in SubmissionInput) (*Appointment, error)

// NavigateFunc is invoked with the persisted appointment's id after a
// successful submission, e.g. to show the success view.
type NavigateFunc func(appointmentID uuid.UUID)

const (
	stateIdle int32 = iota
	stateSubmitting
)

// FormSession drives one appointment form: validate, gate re-entrancy,
// submit, navigate. Callbacks are injected; the session holds no ambient
// client or router state, and no state is shared across sessions.
type FormSession struct {
	op       Operation
	submit   SubmitFunc
	navigate NavigateFunc
	state    atomic.Int32
	logger   *slog.Logger
}

func NewFormSession(op Operation, submit SubmitFunc, navigate NavigateFunc, logger *slog.Logger) *FormSession {
	if logger == nil {
		logger = slog.Default()
	}
	return &FormSession{
		op:       op,
		submit:   submit,
		navigate: navigate,
		logger:   logger,
	}
}

// Submitting reports whether a submission is currently in flight.
func (f *FormSession) Submitting() bool {
	return f.state.Load() == stateSubmitting
}

// Submit runs one submission to completion. Validation happens before any
// external call; a failing field blocks the whole submission. Whatever the
// outcome, the session returns to idle so the user can retry with unchanged
// input.
func (f *FormSession) Submit(ctx context.Context, in SubmissionInput) (*Appointment, error) {
	if !f.state.CompareAndSwap(stateIdle, stateSubmitting) {
		return nil, ErrBusy
	}
	defer f.state.Store(stateIdle)

	normalized, verr := ValidateSubmission(f.op, in)
	if verr != nil {
		return nil, verr
	}

	appt, err := f.submit(ctx, f.op, normalized)
	if err != nil {
		f.logger.Warn("submission failed", "operation", f.op, "error", err)
		return nil, err
	}

	if f.navigate != nil {
		f.navigate(appt.ID)
	}

	return appt, nil
}
