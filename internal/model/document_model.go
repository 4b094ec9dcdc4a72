package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type Document struct {
	Id          uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LibraryId   uuid.UUID        `gorm:"type:uuid;not null;index;uniqueIndex:idx_documents_library_hash,priority:1"`
	OwnerId     uuid.UUID        `gorm:"type:uuid;not null;index"`
	Title       string           `gorm:"type:varchar(255);not null"`
	Text        string           `gorm:"type:text;not null"`
	Url         string           `gorm:"type:text"`
	ExternalId  string           `gorm:"type:varchar(255);uniqueIndex:idx_documents_external_id,where:external_id <> ''"`
	LengthChars int              `gorm:"not null"`
	TokenCount  int              `gorm:"not null"`
	ContentHash string           `gorm:"type:varchar(64);not null;uniqueIndex:idx_documents_library_hash,priority:2"`
	Embedding   *pgvector.Vector `gorm:"type:vector(1536)"` // null until the embed job runs
	Enabled     bool             `gorm:"not null;default:true"`
	CreatedAt   time.Time        `gorm:"autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt   `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
