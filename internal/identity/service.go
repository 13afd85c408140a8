package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// phoneRe matches E.164-style numbers, the only format the intake form emits.
var phoneRe = regexp.MustCompile(`^\+[0-9]{10,15}$`)

// ValidationError carries field-scoped violations from the registration form.
// Nothing is written when validation fails.
type ValidationError struct {
	Violations map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid person input: %d field(s)", len(e.Violations))
}

// NewPersonInput is the raw user-registration form payload.
type NewPersonInput struct {
	Name  string
	Email string
	Phone string
}

func (in NewPersonInput) validate() (NewPersonInput, *ValidationError) {
	out := NewPersonInput{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.TrimSpace(in.Email),
		Phone: strings.TrimSpace(in.Phone),
	}

	violations := make(map[string]string)
	if out.Name == "" {
		violations["name"] = "name is required"
	}
	if _, err := mail.ParseAddress(out.Email); err != nil {
		violations["email"] = "email must be a valid address"
	}
	if !phoneRe.MatchString(out.Phone) {
		violations["phone"] = "phone must be in international format, e.g. +14155550123"
	}

	if len(violations) > 0 {
		return NewPersonInput{}, &ValidationError{Violations: violations}
	}
	return out, nil
}

// Service is the patient directory: it owns Person records.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// CreatePerson registers a person, idempotently per email. A duplicate email
// is not an error: the pre-existing record is looked up and returned, so
// calling twice with the same email yields the same identifier.
func (s *Service) CreatePerson(ctx context.Context, in NewPersonInput) (*Person, error) {
	normalized, verr := in.validate()
	if verr != nil {
		return nil, verr
	}

	person, err := s.repo.CreatePerson(ctx, Person{
		ID:    uuid.New(),
		Name:  normalized.Name,
		Email: normalized.Email,
		Phone: normalized.Phone,
	})
	if err == nil {
		return person, nil
	}

	if errors.Is(err, ErrEmailTaken) {
		existing, lookupErr := s.repo.FindPersonByEmail(ctx, normalized.Email)
		if lookupErr != nil {
			return nil, fmt.Errorf("lookup existing person: %w", lookupErr)
		}
		s.logger.Info("person already registered, returning existing record",
			"person_id", existing.ID,
		)
		return existing, nil
	}

	return nil, fmt.Errorf("create person: %w", err)
}

// GetPerson loads a person by id.
func (s *Service) GetPerson(ctx context.Context, id uuid.UUID) (*Person, error) {
	person, err := s.repo.GetPersonByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPersonNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load person: %w", err)
	}
	return person, nil
}
