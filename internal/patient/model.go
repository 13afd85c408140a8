package patient

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the clinical registration record attached to a Person. Created
// once per person; the identification document reference is optional and may
// stay null when no document was provided or its upload failed.
type Profile struct {
	ID                        uuid.UUID
	PersonID                  uuid.UUID
	BirthDate                 *time.Time
	Gender                    string
	Address                   string
	Occupation                string
	EmergencyContactName      string
	EmergencyContactPhone     string
	PrimaryPhysician          string
	InsuranceProvider         string
	InsurancePolicyNumber     string
	Allergies                 string
	CurrentMedication         string
	IdentificationType        string
	IdentificationNumber      string
	IdentificationDocumentID  *string
	IdentificationDocumentURL *string
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}
