package identity

import (
	"context"
	"errors"

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

func scanPerson(row pgx.Row) (*Person, error) {
	var p Person

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.Phone,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *PgRepository) CreatePerson(ctx context.Context, p Person) (*Person, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO persons (id, name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING id, name, email, phone, created_at, updated_at
	`, p.ID, p.Name, p.Email, p.Phone)

	created, err := scanPerson(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return created, nil
}

func (r *PgRepository) GetPersonByID(ctx context.Context, id uuid.UUID) (*Person, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, email, phone, created_at, updated_at
		FROM persons
		WHERE id = $1
	`, id)
	return scanPerson(row)
}

func (r *PgRepository) FindPersonByEmail(ctx context.Context, email string) (*Person, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, email, phone, created_at, updated_at
		FROM persons
		WHERE email = $1
	`, email)
	return scanPerson(row)
}
