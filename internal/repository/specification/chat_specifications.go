package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByChatID struct {
	ChatID uuid.UUID
}

func (s ByChatID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_id = ?", s.ChatID)
}

// ByWebhookExternalId locates the chat bound to an external incident
// or thread identifier.
type ByWebhookExternalId struct {
	ExternalId string
}

func (s ByWebhookExternalId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("webhook_external_id = ?", s.ExternalId)
}

type ByAssistantID struct {
	AssistantID uuid.UUID
}

func (s ByAssistantID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("assistant_id = ?", s.AssistantID)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

type ByFrom struct {
	From string
}

func (s ByFrom) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("from_role = ?", s.From)
}
