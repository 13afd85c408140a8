package patient

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// db is satisfied by *pgxpool.Pool and by pgxmock in tests.
type db interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgRepository struct {
	db db
}

func NewPgRepository(db db) *PgRepository {
	return &PgRepository{db: db}
}

const profileColumns = `
	id, person_id, birth_date, gender, address, occupation,
	emergency_contact_name, emergency_contact_phone, primary_physician,
	insurance_provider, insurance_policy_number, allergies,
	current_medication, identification_type, identification_number,
	identification_document_id, identification_document_url,
	created_at, updated_at`

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	var birthDate *time.Time
	var docID, docURL *string

	err := row.Scan(
		&p.ID,
		&p.PersonID,
		&birthDate,
		&p.Gender,
		&p.Address,
		&p.Occupation,
		&p.EmergencyContactName,
		&p.EmergencyContactPhone,
		&p.PrimaryPhysician,
		&p.InsuranceProvider,
		&p.InsurancePolicyNumber,
		&p.Allergies,
		&p.CurrentMedication,
		&p.IdentificationType,
		&p.IdentificationNumber,
		&docID,
		&docURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	p.BirthDate = birthDate
	p.IdentificationDocumentID = docID
	p.IdentificationDocumentURL = docURL
	return &p, nil
}

func (r *PgRepository) CreateProfile(ctx context.Context, p Profile) (*Profile, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO patient_profiles (
			id, person_id, birth_date, gender, address, occupation,
			emergency_contact_name, emergency_contact_phone, primary_physician,
			insurance_provider, insurance_policy_number, allergies,
			current_medication, identification_type, identification_number,
			identification_document_id, identification_document_url,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, now(), now())
		RETURNING `+profileColumns+`
	`,
		p.ID, p.PersonID, p.BirthDate, p.Gender, p.Address, p.Occupation,
		p.EmergencyContactName, p.EmergencyContactPhone, p.PrimaryPhysician,
		p.InsuranceProvider, p.InsurancePolicyNumber, p.Allergies,
		p.CurrentMedication, p.IdentificationType, p.IdentificationNumber,
		p.IdentificationDocumentID, p.IdentificationDocumentURL,
	)

	created, err := scanProfile(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrProfileExists
		}
		return nil, err
	}

	return created, nil
}

func (r *PgRepository) GetProfileByPersonID(ctx context.Context, personID uuid.UUID) (*Profile, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM patient_profiles
		WHERE person_id = $1
	`, personID)
	return scanProfile(row)
}
