package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSubmission_CreateAndSchedule(t *testing.T) {
	schedule := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)

	for _, op := range []Operation{OpCreate, OpSchedule} {
		t.Run(string(op), func(t *testing.T) {
			out, verr := ValidateSubmission(op, SubmissionInput{
				PrimaryPhysician: "  Dr. A ",
				Schedule:         schedule,
				Reason:           "checkup",
			})
			require.Nil(t, verr)
			assert.Equal(t, "Dr. A", out.PrimaryPhysician, "input is normalized")
			assert.Equal(t, schedule, out.Schedule)

			_, verr = ValidateSubmission(op, SubmissionInput{Schedule: schedule})
			require.NotNil(t, verr)
			assert.Contains(t, verr.Violations, "primaryPhysician")

			_, verr = ValidateSubmission(op, SubmissionInput{PrimaryPhysician: "Dr. A"})
			require.NotNil(t, verr)
			assert.Contains(t, verr.Violations, "schedule")
		})
	}
}

func TestValidateSubmission_Cancel(t *testing.T) {
	out, verr := ValidateSubmission(OpCancel, SubmissionInput{CancellationReason: "no longer needed"})
	require.Nil(t, verr)
	assert.Equal(t, "no longer needed", out.CancellationReason)

	// Physician and schedule are not required for cancellation.
	_, verr = ValidateSubmission(OpCancel, SubmissionInput{CancellationReason: "moved away"})
	assert.Nil(t, verr)

	for _, reason := range []string{"", "   ", "\t\n"} {
		_, verr := ValidateSubmission(OpCancel, SubmissionInput{CancellationReason: reason})
		require.NotNil(t, verr, "blank reason %q must fail", reason)
		assert.Contains(t, verr.Violations, "cancellationReason")
	}
}

func TestValidateSubmission_ReasonAndNoteOptional(t *testing.T) {
	_, verr := ValidateSubmission(OpCreate, SubmissionInput{
		PrimaryPhysician: "Dr. A",
		Schedule:         time.Now(),
	})
	assert.Nil(t, verr)
}

func TestValidateSubmission_UnknownOperation(t *testing.T) {
	_, verr := ValidateSubmission(Operation("reschedule"), SubmissionInput{})
	require.NotNil(t, verr)
	assert.Contains(t, verr.Violations, "operation")
}

func TestStatusFor(t *testing.T) {
	cases := map[Operation]Status{
		OpCreate:   StatusPending,
		OpSchedule: StatusScheduled,
		OpCancel:   StatusCanceled,
	}
	for op, want := range cases {
		got, err := StatusFor(op)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := StatusFor(Operation("expire"))
	assert.Error(t, err)
}
