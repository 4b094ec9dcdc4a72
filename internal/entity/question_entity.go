package entity

import (
	"time"

	"github.com/google/uuid"
)

type Question struct {
	Id                    uuid.UUID
	UserId                uuid.UUID
	LibraryId             *uuid.UUID
	LibraryIdsIncluded    []uuid.UUID
	Text                  string
	Prompt                string
	Answer                *string
	Status                string
	GenerationTimeSeconds float64
	Embedding             []float32
	GeneratedAt           *time.Time
	CreatedAt             time.Time
}
