package dto

import (
	"time"

	"github.com/google/uuid"
)

type AskQuestionRequest struct {
	Text       string      `json:"text" validate:"required"`
	LibraryId  *uuid.UUID  `json:"library_id"`
	LibraryIds []uuid.UUID `json:"library_ids"`
}

type AskQuestionResponse struct {
	Id     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type ShowQuestionResponse struct {
	Id                    uuid.UUID   `json:"id"`
	Text                  string      `json:"text"`
	LibraryId             *uuid.UUID  `json:"library_id"`
	LibraryIdsIncluded    []uuid.UUID `json:"library_ids_included"`
	Answer                *string     `json:"answer"`
	Status                string      `json:"status"`
	GenerationTimeSeconds float64     `json:"generation_time_seconds"`
	GeneratedAt           *time.Time  `json:"generated_at"`
	CreatedAt             time.Time   `json:"created_at"`
}
