package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is kept as a thin ownership record; account management lives
// outside this service.
type User struct {
	Id        uuid.UUID
	Email     string
	FullName  string
	CreatedAt time.Time
}
