package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carepulse/patient-booking/internal/db"
)

var physicians = []string{
	"Dr. Adam Smith",
	"Dr. Leila Cameron",
	"Dr. David Livingston",
	"Dr. Evan Peter",
	"Dr. Jane Powell",
	"Dr. Alex Ramirez",
	"Dr. Jasmine Lee",
	"Dr. Alyana Cruz",
	"Dr. Hardik Sharma",
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn, nil)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedPersons(context.Background(), pool, 5000); err != nil {
		log.Fatalf("seed persons: %v", err)
	}

	log.Println("seed complete")
}

func seedPersons(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d persons with patient profiles", count)

	const batchSize = 500

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			personID := uuid.New()
			name := gofakeit.Name()
			email := gofakeit.Email()
			phone := "+1" + gofakeit.Numerify("##########")

			_, err := tx.Exec(ctx, `
				INSERT INTO persons (id, name, email, phone, created_at, updated_at)
				VALUES ($1, $2, $3, $4, now(), now())
			`, personID, name, email, phone)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}

			birthDate := gofakeit.DateRange(
				time.Date(1940, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2006, 12, 31, 0, 0, 0, 0, time.UTC),
			)
			physician := physicians[gofakeit.Number(0, len(physicians)-1)]

			_, err = tx.Exec(ctx, `
				INSERT INTO patient_profiles (
					id, person_id, birth_date, gender, address, occupation,
					emergency_contact_name, emergency_contact_phone, primary_physician,
					insurance_provider, insurance_policy_number, allergies,
					current_medication, identification_type, identification_number,
					created_at, updated_at
				)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now(), now())
			`,
				uuid.New(), personID, birthDate, gofakeit.Gender(),
				gofakeit.Address().Address, gofakeit.JobTitle(),
				gofakeit.Name(), "+1"+gofakeit.Numerify("##########"), physician,
				gofakeit.Company(), gofakeit.Numerify("POL-########"),
				"", "", "Passport", gofakeit.Numerify("P########"),
			)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		log.Printf("persons seeded: %d/%d", end, count)
	}

	log.Println("persons seeded")
	return nil
}
