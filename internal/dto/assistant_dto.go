package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateAssistantRequest struct {
	Name                    string      `json:"name" validate:"required"`
	Instructions            string      `json:"instructions" validate:"required"`
	OutputFormat            string      `json:"output_format"`
	ContextText             string      `json:"context_text"`
	LibraryIds              []uuid.UUID `json:"library_ids"`
	SlackChannel            string      `json:"slack_channel"`
	IgnoreThreadsNotFromBot bool        `json:"ignore_threads_not_from_bot"`
	QuipDocumentId          string      `json:"quip_document_id"`
	ConfluenceQuery         string      `json:"confluence_query"`
	PagerDutyEnabled        bool        `json:"pagerduty_enabled"`
}

type CreateAssistantResponse struct {
	Id uuid.UUID `json:"id"`
}

type UpdateAssistantRequest struct {
	Id                      uuid.UUID
	Name                    string      `json:"name" validate:"required"`
	Instructions            string      `json:"instructions" validate:"required"`
	OutputFormat            string      `json:"output_format"`
	ContextText             string      `json:"context_text"`
	LibraryIds              []uuid.UUID `json:"library_ids"`
	SlackChannel            string      `json:"slack_channel"`
	IgnoreThreadsNotFromBot bool        `json:"ignore_threads_not_from_bot"`
	QuipDocumentId          string      `json:"quip_document_id"`
	ConfluenceQuery         string      `json:"confluence_query"`
	PagerDutyEnabled        bool        `json:"pagerduty_enabled"`
}

type ShowAssistantResponse struct {
	Id                      uuid.UUID   `json:"id"`
	Name                    string      `json:"name"`
	Instructions            string      `json:"instructions"`
	OutputFormat            string      `json:"output_format"`
	ContextText             string      `json:"context_text"`
	LibraryIds              []uuid.UUID `json:"library_ids"`
	SlackChannel            string      `json:"slack_channel"`
	IgnoreThreadsNotFromBot bool        `json:"ignore_threads_not_from_bot"`
	QuipDocumentId          string      `json:"quip_document_id"`
	ConfluenceQuery         string      `json:"confluence_query"`
	PagerDutyEnabled        bool        `json:"pagerduty_enabled"`
	CreatedAt               time.Time   `json:"created_at"`
	UpdatedAt               *time.Time  `json:"updated_at"`
}

type CreateLibraryRequest struct {
	Name string `json:"name" validate:"required"`
}

type CreateLibraryResponse struct {
	Id uuid.UUID `json:"id"`
}

type ShowLibraryResponse struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
