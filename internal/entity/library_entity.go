package entity

import (
	"time"

	"github.com/google/uuid"
)

type Library struct {
	Id        uuid.UUID
	OwnerId   uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
