package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	byEmail map[string]*Person
	created int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byEmail: make(map[string]*Person)}
}

func (f *fakeRepo) CreatePerson(_ context.Context, p Person) (*Person, error) {
	if _, ok := f.byEmail[p.Email]; ok {
		return nil, ErrEmailTaken
	}
	stored := p
	f.byEmail[p.Email] = &stored
	f.created++
	return &stored, nil
}

func (f *fakeRepo) GetPersonByID(_ context.Context, id uuid.UUID) (*Person, error) {
	for _, p := range f.byEmail {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, ErrPersonNotFound
}

func (f *fakeRepo) FindPersonByEmail(_ context.Context, email string) (*Person, error) {
	if p, ok := f.byEmail[email]; ok {
		return p, nil
	}
	return nil, ErrPersonNotFound
}

func TestCreatePerson_IdempotentOnDuplicateEmail(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)

	in := NewPersonInput{Name: "Ada Lovelace", Email: "a@x.com", Phone: "+14155550123"}

	first, err := svc.CreatePerson(context.Background(), in)
	require.NoError(t, err)

	second, err := svc.CreatePerson(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "second call must return the pre-existing identity")
	assert.Equal(t, 1, repo.created, "no duplicate row may be minted")
}

func TestCreatePerson_ValidatesBeforeWrite(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)

	cases := []struct {
		name  string
		in    NewPersonInput
		field string
	}{
		{"missing name", NewPersonInput{Email: "a@x.com", Phone: "+14155550123"}, "name"},
		{"bad email", NewPersonInput{Name: "Ada", Email: "not-an-email", Phone: "+14155550123"}, "email"},
		{"bad phone", NewPersonInput{Name: "Ada", Email: "a@x.com", Phone: "555-0123"}, "phone"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreatePerson(context.Background(), tc.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Violations, tc.field)
			assert.Zero(t, repo.created, "validation failure must not reach the repository")
		})
	}
}

func TestGetPerson_NotFound(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)

	_, err := svc.GetPerson(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, ErrPersonNotFound))
}
