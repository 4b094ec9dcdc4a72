package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Message struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatId     uuid.UUID      `gorm:"type:uuid;not null;index"`
	UserId     *uuid.UUID     `gorm:"type:uuid;index"`
	Content    string         `gorm:"type:text;not null"`
	From       string         `gorm:"column:from_role;type:varchar(20);not null"`
	Status     string         `gorm:"type:varchar(20);not null;default:'ready'"`
	Prompt     *string        `gorm:"type:text"`
	RawPayload datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (Message) TableName() string {
	return "messages"
}
