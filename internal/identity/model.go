package identity

import (
	"time"

	"github.com/google/uuid"
)

// Person is a registered user of the booking flow. The id is the immutable
// identity key; email is unique across the directory.
type Person struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
