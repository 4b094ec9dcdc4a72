package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateDocumentRequest struct {
	LibraryId  uuid.UUID `json:"library_id" validate:"required"`
	Title      string    `json:"title" validate:"required"`
	Text       string    `json:"text" validate:"required"`
	Url        string    `json:"url"`
	ExternalId string    `json:"external_id"`
}

type CreateDocumentResponse struct {
	Id uuid.UUID `json:"id"`
}

type UpdateDocumentRequest struct {
	Id         uuid.UUID
	Title      string `json:"title" validate:"required"`
	Text       string `json:"text" validate:"required"`
	Url        string `json:"url"`
	ExternalId string `json:"external_id"`
}

type UpdateDocumentResponse struct {
	Id uuid.UUID `json:"id"`
}

type SetDocumentEnabledRequest struct {
	Id      uuid.UUID
	Enabled bool `json:"enabled"`
}

type ShowDocumentResponse struct {
	Id           uuid.UUID  `json:"id"`
	LibraryId    uuid.UUID  `json:"library_id"`
	Title        string     `json:"title"`
	Text         string     `json:"text"`
	Url          string     `json:"url"`
	ExternalId   string     `json:"external_id,omitempty"`
	LengthChars  int        `json:"length_chars"`
	TokenCount   int        `json:"token_count"`
	Enabled      bool       `json:"enabled"`
	HasEmbedding bool       `json:"has_embedding"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

type SearchDocumentsRequest struct {
	Query      string      `json:"query" validate:"required"`
	LibraryIds []uuid.UUID `json:"library_ids"`
	SearchText string      `json:"search_text"`
	Metric     string      `json:"metric"`
	Offset     int         `json:"offset"`
	Limit      int         `json:"limit"`
}

type DocumentSearchResult struct {
	Id         uuid.UUID `json:"id"`
	LibraryId  uuid.UUID `json:"library_id"`
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	Url        string    `json:"url"`
	TokenCount int       `json:"token_count"`
}
