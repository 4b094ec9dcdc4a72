package entity

import (
	"time"

	"github.com/google/uuid"
)

// Assistant is a named configuration shared read-only across chats.
type Assistant struct {
	Id                      uuid.UUID
	OwnerId                 uuid.UUID
	Name                    string
	Instructions            string
	OutputFormat            string
	ContextText             string
	LibraryIds              []uuid.UUID
	SlackChannel            string
	IgnoreThreadsNotFromBot bool
	QuipDocumentId          string
	ConfluenceQuery         string
	PagerDutyEnabled        bool
	CreatedAt               time.Time
	UpdatedAt               *time.Time
}
