package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carepulse/patient-booking/internal/appointment"
	"github.com/carepulse/patient-booking/internal/identity"
	"github.com/carepulse/patient-booking/internal/patient"
	redisclient "github.com/carepulse/patient-booking/internal/redis"
)

func createPersonHandler(svc PersonDirectory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePersonRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		person, err := svc.CreatePerson(r.Context(), identity.NewPersonInput{
			Name:  req.Name,
			Email: req.Email,
			Phone: req.Phone,
		})
		if err != nil {
			var verr *identity.ValidationError
			if errors.As(err, &verr) {
				writeViolations(w, verr.Violations)
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		// Duplicate email returns the pre-existing record, so this is 200/201
		// agnostic; 201 keeps the common path simple.
		writeJSON(w, http.StatusCreated, toPersonResponse(person))
	}
}

func getPersonHandler(svc PersonDirectory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_person_id", "id must be a valid UUID")
			return
		}

		person, err := svc.GetPerson(r.Context(), id)
		if err != nil {
			if errors.Is(err, identity.ErrPersonNotFound) {
				writeError(w, http.StatusNotFound, "person_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, toPersonResponse(person))
	}
}

func registerPatientHandler(svc PatientRegistry, maxUploadBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_multipart_form", err.Error())
			return
		}

		personID, err := uuid.Parse(r.FormValue("userId"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_person_id", "userId must be a valid UUID")
			return
		}

		in := patient.RegisterInput{
			PersonID:              personID,
			Gender:                r.FormValue("gender"),
			Address:               r.FormValue("address"),
			Occupation:            r.FormValue("occupation"),
			EmergencyContactName:  r.FormValue("emergencyContactName"),
			EmergencyContactPhone: r.FormValue("emergencyContactNumber"),
			PrimaryPhysician:      r.FormValue("primaryPhysician"),
			InsuranceProvider:     r.FormValue("insuranceProvider"),
			InsurancePolicyNumber: r.FormValue("insurancePolicyNumber"),
			Allergies:             r.FormValue("allergies"),
			CurrentMedication:     r.FormValue("currentMedication"),
			IdentificationType:    r.FormValue("identificationType"),
			IdentificationNumber:  r.FormValue("identificationNumber"),
		}

		if bd := r.FormValue("birthDate"); bd != "" {
			parsed, err := time.Parse(time.RFC3339, bd)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_birth_date", "birthDate must be RFC 3339")
				return
			}
			in.BirthDate = &parsed
		}

		doc, err := readIdentificationDocument(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_document", err.Error())
			return
		}

		profile, err := svc.Register(r.Context(), in, doc)
		if err != nil {
			handleRegisterError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toProfileResponse(profile))
	}
}

// readIdentificationDocument pulls the optional upload out of the form.
// Absence is not an error; the profile is simply created without a reference.
func readIdentificationDocument(r *http.Request) (*patient.Document, error) {
	file, header, err := r.FormFile("identificationDocument")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	blob, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &patient.Document{Blob: blob, Filename: header.Filename}, nil
}

func handleRegisterError(w http.ResponseWriter, err error) {
	var verr *patient.ValidationError
	switch {
	case errors.As(err, &verr):
		writeViolations(w, verr.Violations)
	case errors.Is(err, patient.ErrProfileExists):
		writeError(w, http.StatusConflict, "profile_exists", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func getPatientHandler(svc PatientRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		personID, err := uuid.Parse(chi.URLParam(r, "personID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_person_id", "personID must be a valid UUID")
			return
		}

		profile, err := svc.GetByPersonID(r.Context(), personID)
		if err != nil {
			if errors.Is(err, patient.ErrProfileNotFound) {
				writeError(w, http.StatusNotFound, "profile_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, toProfileResponse(profile))
	}
}

func createAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		personID, err := uuid.Parse(req.UserID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_user_id", "userId must be a valid UUID")
			return
		}

		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient must be a valid UUID")
			return
		}

		in := appointment.SubmissionInput{
			PrimaryPhysician: req.PrimaryPhysician,
			Schedule:         req.Schedule,
			Reason:           req.Reason,
			Note:             req.Note,
		}

		// Fail closed before any write: a single bad field blocks the
		// submission here, mirroring the client-side check.
		normalized, verr := appointment.ValidateSubmission(appointment.OpCreate, in)
		if verr != nil {
			writeViolations(w, verr.Violations)
			return
		}

		appt, err := svc.Submit(r.Context(), appointment.OpCreate, normalized, personID, patientID, uuid.Nil)
		if err != nil {
			handleSubmitError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func transitionAppointmentHandler(svc AppointmentService, op appointment.Operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var in appointment.SubmissionInput
		switch op {
		case appointment.OpSchedule:
			var req ScheduleAppointmentRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
				return
			}
			in = appointment.SubmissionInput{
				PrimaryPhysician: req.PrimaryPhysician,
				Schedule:         req.Schedule,
				Reason:           req.Reason,
				Note:             req.Note,
			}
		case appointment.OpCancel:
			var req CancelAppointmentRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
				return
			}
			in = appointment.SubmissionInput{CancellationReason: req.CancellationReason}
		}

		normalized, verr := appointment.ValidateSubmission(op, in)
		if verr != nil {
			writeViolations(w, verr.Violations)
			return
		}

		appt, err := svc.Submit(r.Context(), op, normalized, uuid.Nil, uuid.Nil, id)
		if err != nil {
			handleSubmitError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func handleSubmitError(w http.ResponseWriter, err error) {
	var verr *appointment.ValidationError
	switch {
	case errors.As(err, &verr):
		writeViolations(w, verr.Violations)
	case errors.Is(err, appointment.ErrValidationFailed):
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, appointment.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, appointment.ErrTransitionInFlight),
		errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "appointment_being_updated", "appointment is currently being updated, please retry shortly")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func getAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := svc.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, appointment.ErrAppointmentNotFound) {
				writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func listAppointmentsHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, err := uuid.Parse(r.URL.Query().Get("patient_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id query parameter must be a valid UUID")
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		appts, err := svc.ListByPatient(r.Context(), patientID, limit, offset)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		out := make([]AppointmentResponse, 0, len(appts))
		for i := range appts {
			out = append(out, toAppointmentResponse(&appts[i]))
		}

		writeJSON(w, http.StatusOK, out)
	}
}
