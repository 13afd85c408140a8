package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/carepulse/patient-booking/internal/appointment"
	"github.com/carepulse/patient-booking/internal/identity"
	"github.com/carepulse/patient-booking/internal/patient"
)

type CreatePersonRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type PersonResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone"`
}

func toPersonResponse(p *identity.Person) PersonResponse {
	return PersonResponse{ID: p.ID, Name: p.Name, Email: p.Email, Phone: p.Phone}
}

type PatientProfileResponse struct {
	ID                        uuid.UUID  `json:"id"`
	PersonID                  uuid.UUID  `json:"userId"`
	BirthDate                 *time.Time `json:"birthDate,omitempty"`
	Gender                    string     `json:"gender,omitempty"`
	Address                   string     `json:"address,omitempty"`
	Occupation                string     `json:"occupation,omitempty"`
	EmergencyContactName      string     `json:"emergencyContactName,omitempty"`
	EmergencyContactPhone     string     `json:"emergencyContactNumber,omitempty"`
	PrimaryPhysician          string     `json:"primaryPhysician"`
	InsuranceProvider         string     `json:"insuranceProvider,omitempty"`
	InsurancePolicyNumber     string     `json:"insurancePolicyNumber,omitempty"`
	Allergies                 string     `json:"allergies,omitempty"`
	CurrentMedication         string     `json:"currentMedication,omitempty"`
	IdentificationType        string     `json:"identificationType,omitempty"`
	IdentificationNumber      string     `json:"identificationNumber,omitempty"`
	IdentificationDocumentID  *string    `json:"identificationDocumentId"`
	IdentificationDocumentURL *string    `json:"identificationDocumentUrl"`
}

func toProfileResponse(p *patient.Profile) PatientProfileResponse {
	return PatientProfileResponse{
		ID:                        p.ID,
		PersonID:                  p.PersonID,
		BirthDate:                 p.BirthDate,
		Gender:                    p.Gender,
		Address:                   p.Address,
		Occupation:                p.Occupation,
		EmergencyContactName:      p.EmergencyContactName,
		EmergencyContactPhone:     p.EmergencyContactPhone,
		PrimaryPhysician:          p.PrimaryPhysician,
		InsuranceProvider:         p.InsuranceProvider,
		InsurancePolicyNumber:     p.InsurancePolicyNumber,
		Allergies:                 p.Allergies,
		CurrentMedication:         p.CurrentMedication,
		IdentificationType:        p.IdentificationType,
		IdentificationNumber:      p.IdentificationNumber,
		IdentificationDocumentID:  p.IdentificationDocumentID,
		IdentificationDocumentURL: p.IdentificationDocumentURL,
	}
}

type CreateAppointmentRequest struct {
	UserID           string    `json:"userId"`
	PatientID        string    `json:"patient"`
	PrimaryPhysician string    `json:"primaryPhysician"`
	Schedule         time.Time `json:"schedule"`
	Reason           string    `json:"reason"`
	Note             string    `json:"note"`
}

type ScheduleAppointmentRequest struct {
	PrimaryPhysician string    `json:"primaryPhysician"`
	Schedule         time.Time `json:"schedule"`
	Reason           string    `json:"reason"`
	Note             string    `json:"note"`
}

type CancelAppointmentRequest struct {
	CancellationReason string `json:"cancellationReason"`
}

// AppointmentResponse field names are the wire contract consumers rely on.
type AppointmentResponse struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"userId"`
	PatientID          uuid.UUID `json:"patient"`
	PrimaryPhysician   string    `json:"primaryPhysician"`
	Schedule           time.Time `json:"schedule"`
	Reason             string    `json:"reason"`
	Note               string    `json:"note"`
	CancellationReason *string   `json:"cancellationReason,omitempty"`
	Status             string    `json:"status"`
}

func toAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:                 a.ID,
		UserID:             a.PersonID,
		PatientID:          a.PatientID,
		PrimaryPhysician:   a.PrimaryPhysician,
		Schedule:           a.Schedule,
		Reason:             a.Reason,
		Note:               a.Note,
		CancellationReason: a.CancellationReason,
		Status:             string(a.Status),
	}
}

type ErrorResponse struct {
	Error      string            `json:"error"`
	Details    string            `json:"details,omitempty"`
	Violations map[string]string `json:"violations,omitempty"`
}
