package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrPersonNotFound = errors.New("person not found")
	ErrEmailTaken     = errors.New("email already registered")
)

// Repository contains all DB interactions needed by the directory service.
type Repository interface {
	CreatePerson(ctx context.Context, p Person) (*Person, error)
	GetPersonByID(ctx context.Context, id uuid.UUID) (*Person, error)
	FindPersonByEmail(ctx context.Context, email string) (*Person, error)
}
