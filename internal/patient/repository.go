package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrProfileNotFound = errors.New("patient profile not found")
	ErrProfileExists   = errors.New("patient profile already exists for person")
)

// Repository contains all DB interactions needed by the registration flow.
type Repository interface {
	CreateProfile(ctx context.Context, p Profile) (*Profile, error)
	GetProfileByPersonID(ctx context.Context, personID uuid.UUID) (*Profile, error)
}
