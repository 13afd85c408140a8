package patient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carepulse/patient-booking/internal/storage"
)

// ValidationError carries field-scoped violations from the registration form.
type ValidationError struct {
	Violations map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid patient registration: %d field(s)", len(e.Violations))
}

// RegisterInput is the raw patient-registration form payload.
type RegisterInput struct {
	PersonID              uuid.UUID
	BirthDate             *time.Time
	Gender                string
	Address               string
	Occupation            string
	EmergencyContactName  string
	EmergencyContactPhone string
	PrimaryPhysician      string
	InsuranceProvider     string
	InsurancePolicyNumber string
	Allergies             string
	CurrentMedication     string
	IdentificationType    string
	IdentificationNumber  string
}

// Document is an in-memory identification file. Both fields must be set for
// the upload to be attempted; absence of the whole document is not an error.
type Document struct {
	Blob     []byte
	Filename string
}

func (in RegisterInput) validate() *ValidationError {
	violations := make(map[string]string)
	if in.PersonID == uuid.Nil {
		violations["personId"] = "person id is required"
	}
	if strings.TrimSpace(in.PrimaryPhysician) == "" {
		violations["primaryPhysician"] = "primary physician is required"
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// Service registers patient profiles, attaching identification documents on a
// best-effort basis.
type Service struct {
	repo     Repository
	uploader storage.Uploader
	logger   *slog.Logger
}

func NewService(repo Repository, uploader storage.Uploader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, uploader: uploader, logger: logger}
}

// Register creates the patient profile. When a document is supplied, its
// upload completes before the profile row is built so the reference lands in
// the same insert. An upload failure is logged and swallowed: profile
// creation must not be blocked by a storage hiccup.
func (s *Service) Register(ctx context.Context, in RegisterInput, doc *Document) (*Profile, error) {
	if verr := in.validate(); verr != nil {
		return nil, verr
	}

	var docID, docURL *string

	if doc != nil && len(doc.Blob) > 0 && doc.Filename != "" {
		ref, err := s.uploader.Upload(ctx, doc.Blob, doc.Filename)
		if err != nil {
			s.logger.Warn("identification document upload failed, continuing without it",
				"person_id", in.PersonID,
				"error", err,
			)
		} else {
			docID = &ref.ID
			docURL = &ref.URL
		}
	}

	profile, err := s.repo.CreateProfile(ctx, Profile{
		ID:                        uuid.New(),
		PersonID:                  in.PersonID,
		BirthDate:                 in.BirthDate,
		Gender:                    in.Gender,
		Address:                   in.Address,
		Occupation:                in.Occupation,
		EmergencyContactName:      in.EmergencyContactName,
		EmergencyContactPhone:     in.EmergencyContactPhone,
		PrimaryPhysician:          in.PrimaryPhysician,
		InsuranceProvider:         in.InsuranceProvider,
		InsurancePolicyNumber:     in.InsurancePolicyNumber,
		Allergies:                 in.Allergies,
		CurrentMedication:         in.CurrentMedication,
		IdentificationType:        in.IdentificationType,
		IdentificationNumber:      in.IdentificationNumber,
		IdentificationDocumentID:  docID,
		IdentificationDocumentURL: docURL,
	})
	if err != nil {
		if errors.Is(err, ErrProfileExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create patient profile: %w", err)
	}

	return profile, nil
}

// GetByPersonID loads the profile registered for a person.
func (s *Service) GetByPersonID(ctx context.Context, personID uuid.UUID) (*Profile, error) {
	profile, err := s.repo.GetProfileByPersonID(ctx, personID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient profile: %w", err)
	}
	return profile, nil
}
