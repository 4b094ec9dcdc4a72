package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Question struct {
	Id                    uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId                uuid.UUID        `gorm:"type:uuid;not null;index"`
	LibraryId             *uuid.UUID       `gorm:"type:uuid;index"`
	LibraryIdsIncluded    datatypes.JSON   `gorm:"type:jsonb"` // optional set of library ids
	Text                  string           `gorm:"type:text;not null"`
	Prompt                string           `gorm:"type:text"`
	Answer                *string          `gorm:"type:text"`
	Status                string           `gorm:"type:varchar(20);not null;default:'pending';index"`
	GenerationTimeSeconds float64          `gorm:"not null;default:0"`
	Embedding             *pgvector.Vector `gorm:"type:vector(1536)"`
	GeneratedAt           *time.Time
	CreatedAt             time.Time      `gorm:"autoCreateTime"`
	UpdatedAt             time.Time      `gorm:"autoUpdateTime"`
	DeletedAt             gorm.DeletedAt `gorm:"index"`
}

func (Question) TableName() string {
	return "questions"
}
