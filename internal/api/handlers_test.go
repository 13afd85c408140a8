package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carepulse/patient-booking/internal/appointment"
	"github.com/carepulse/patient-booking/internal/identity"
	"github.com/carepulse/patient-booking/internal/patient"
)

type fakePersons struct {
	person *identity.Person
	err    error
}

func (f *fakePersons) CreatePerson(context.Context, identity.NewPersonInput) (*identity.Person, error) {
	return f.person, f.err
}

func (f *fakePersons) GetPerson(context.Context, uuid.UUID) (*identity.Person, error) {
	return f.person, f.err
}

type fakePatients struct {
	profile *patient.Profile
	lastDoc *patient.Document
	err     error
}

func (f *fakePatients) Register(_ context.Context, _ patient.RegisterInput, doc *patient.Document) (*patient.Profile, error) {
	f.lastDoc = doc
	return f.profile, f.err
}

func (f *fakePatients) GetByPersonID(context.Context, uuid.UUID) (*patient.Profile, error) {
	return f.profile, f.err
}

type fakeAppointments struct {
	appt   *appointment.Appointment
	err    error
	lastOp appointment.Operation
	lastIn appointment.SubmissionInput
	called int
}

func (f *fakeAppointments) Submit(_ context.Context, op appointment.Operation, in appointment.SubmissionInput, _, _, _ uuid.UUID) (*appointment.Appointment, error) {
	f.called++
	f.lastOp = op
	f.lastIn = in
	return f.appt, f.err
}

func (f *fakeAppointments) Get(context.Context, uuid.UUID) (*appointment.Appointment, error) {
	return f.appt, f.err
}

func (f *fakeAppointments) ListByPatient(context.Context, uuid.UUID, int, int) ([]appointment.Appointment, error) {
	if f.appt == nil {
		return nil, f.err
	}
	return []appointment.Appointment{*f.appt}, f.err
}

func newTestRouter(persons PersonDirectory, patients PatientRegistry, appts AppointmentService) http.Handler {
	return NewRouter(RouterConfig{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Persons:        persons,
		Patients:       patients,
		Appointments:   appts,
		Env:            "test",
		Version:        "test",
		MaxUploadBytes: 1 << 20,
	})
}

func TestCreateAppointment_ReturnsPendingRecord(t *testing.T) {
	schedule := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	personID := uuid.New()
	patientID := uuid.New()
	svc := &fakeAppointments{appt: &appointment.Appointment{
		ID:               uuid.New(),
		PersonID:         personID,
		PatientID:        patientID,
		PrimaryPhysician: "Dr. A",
		Schedule:         schedule,
		Reason:           "checkup",
		Status:           appointment.StatusPending,
	}}

	router := newTestRouter(&fakePersons{}, &fakePatients{}, svc)

	body := `{"userId":"` + personID.String() + `","patient":"` + patientID.String() +
		`","primaryPhysician":"Dr. A","schedule":"2025-01-10T10:00:00Z","reason":"checkup","note":""}`
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "pending", resp["status"])
	assert.Equal(t, personID.String(), resp["userId"])
	assert.Equal(t, patientID.String(), resp["patient"])
	assert.Equal(t, appointment.OpCreate, svc.lastOp)
}

func TestCreateAppointment_ValidationFailsClosed(t *testing.T) {
	svc := &fakeAppointments{}
	router := newTestRouter(&fakePersons{}, &fakePatients{}, svc)

	body := `{"userId":"` + uuid.NewString() + `","patient":"` + uuid.NewString() +
		`","primaryPhysician":"","schedule":"2025-01-10T10:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Zero(t, svc.called, "invalid submissions must not reach the service")

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Violations, "primaryPhysician")
}

func TestCancelAppointment(t *testing.T) {
	reason := "no longer needed"
	svc := &fakeAppointments{appt: &appointment.Appointment{
		ID:                 uuid.New(),
		Status:             appointment.StatusCanceled,
		CancellationReason: &reason,
	}}
	router := newTestRouter(&fakePersons{}, &fakePatients{}, svc)

	req := httptest.NewRequest(http.MethodPost, "/appointments/"+uuid.NewString()+"/cancel",
		strings.NewReader(`{"cancellationReason":"no longer needed"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, appointment.OpCancel, svc.lastOp)
	assert.Equal(t, "no longer needed", svc.lastIn.CancellationReason)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "canceled", resp["status"])
}

func TestCancelAppointment_BlankReasonRejected(t *testing.T) {
	svc := &fakeAppointments{}
	router := newTestRouter(&fakePersons{}, &fakePatients{}, svc)

	req := httptest.NewRequest(http.MethodPost, "/appointments/"+uuid.NewString()+"/cancel",
		strings.NewReader(`{"cancellationReason":"   "}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Zero(t, svc.called)
}

func TestTransitionAppointment_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", appointment.ErrAppointmentNotFound, http.StatusNotFound},
		{"invalid transition", appointment.ErrInvalidTransition, http.StatusConflict},
		{"in flight", appointment.ErrTransitionInFlight, http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeAppointments{err: tc.err}
			router := newTestRouter(&fakePersons{}, &fakePatients{}, svc)

			req := httptest.NewRequest(http.MethodPost, "/appointments/"+uuid.NewString()+"/schedule",
				strings.NewReader(`{"primaryPhysician":"Dr. A","schedule":"2025-01-10T10:00:00Z"}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRegisterPatient_MultipartWithDocument(t *testing.T) {
	personID := uuid.New()
	patients := &fakePatients{profile: &patient.Profile{ID: uuid.New(), PersonID: personID, PrimaryPhysician: "Dr. A"}}
	router := newTestRouter(&fakePersons{}, patients, &fakeAppointments{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("userId", personID.String()))
	require.NoError(t, mw.WriteField("primaryPhysician", "Dr. A"))
	fw, err := mw.CreateFormFile("identificationDocument", "passport.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/patients", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, patients.lastDoc)
	assert.Equal(t, "passport.pdf", patients.lastDoc.Filename)
	assert.Equal(t, []byte("%PDF-1.4"), patients.lastDoc.Blob)
}

func TestRegisterPatient_DocumentOptional(t *testing.T) {
	personID := uuid.New()
	patients := &fakePatients{profile: &patient.Profile{ID: uuid.New(), PersonID: personID, PrimaryPhysician: "Dr. A"}}
	router := newTestRouter(&fakePersons{}, patients, &fakeAppointments{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("userId", personID.String()))
	require.NoError(t, mw.WriteField("primaryPhysician", "Dr. A"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/patients", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Nil(t, patients.lastDoc)
}

func TestCreatePerson(t *testing.T) {
	person := &identity.Person{ID: uuid.New(), Name: "Ada", Email: "a@x.com", Phone: "+14155550123"}
	router := newTestRouter(&fakePersons{person: person}, &fakePatients{}, &fakeAppointments{})

	req := httptest.NewRequest(http.MethodPost, "/persons",
		strings.NewReader(`{"name":"Ada","email":"a@x.com","phone":"+14155550123"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp PersonResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, person.ID, resp.ID)
}
