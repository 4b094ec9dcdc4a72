package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document is immutable once ingested; the pipeline only ever writes
// the Embedding field back.
type Document struct {
	Id          uuid.UUID
	LibraryId   uuid.UUID
	OwnerId     uuid.UUID
	Title       string
	Text        string
	Url         string
	ExternalId  string
	LengthChars int
	TokenCount  int
	ContentHash string
	Embedding   []float32 // nil until the embed job completes
	Enabled     bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
