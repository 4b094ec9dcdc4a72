package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Assistant struct {
	Id                      uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerId                 uuid.UUID      `gorm:"type:uuid;not null;index"`
	Name                    string         `gorm:"type:varchar(255);not null"`
	Instructions            string         `gorm:"type:text"`
	OutputFormat            string         `gorm:"type:text"`
	ContextText             string         `gorm:"type:text"`
	LibraryIds              datatypes.JSON `gorm:"type:jsonb"`
	SlackChannel            string         `gorm:"type:varchar(255)"`
	IgnoreThreadsNotFromBot bool           `gorm:"not null;default:false"`
	QuipDocumentId          string         `gorm:"type:varchar(255)"`
	ConfluenceQuery         string         `gorm:"type:text"`
	PagerDutyEnabled        bool           `gorm:"not null;default:false"`
	CreatedAt               time.Time      `gorm:"autoCreateTime"`
	UpdatedAt               time.Time      `gorm:"autoUpdateTime"`
	DeletedAt               gorm.DeletedAt `gorm:"index"`
}

func (Assistant) TableName() string {
	return "assistants"
}
