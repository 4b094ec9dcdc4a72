package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Chat struct {
	Id                uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AssistantId       uuid.UUID      `gorm:"type:uuid;not null;index"`
	UserId            uuid.UUID      `gorm:"type:uuid;not null;index"`
	Title             string         `gorm:"type:varchar(255)"`
	Source            string         `gorm:"type:varchar(20);not null;default:'api'"`
	WebhookExternalId *string        `gorm:"type:varchar(255);uniqueIndex:idx_chats_webhook_external_id,where:webhook_external_id IS NOT NULL"`
	SlackChannel      string         `gorm:"type:varchar(255)"`
	StartedByBot      bool           `gorm:"not null;default:false"`
	CreatedAt         time.Time      `gorm:"autoCreateTime"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime"`
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

func (Chat) TableName() string {
	return "chats"
}
