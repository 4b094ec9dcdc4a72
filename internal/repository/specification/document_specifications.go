package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EnabledOnly excludes soft-disabled documents from retrieval.
type EnabledOnly struct{}

func (s EnabledOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("enabled = ?", true)
}

// InLibraries restricts documents to a library scope. An empty set
// applies no restriction.
type InLibraries struct {
	LibraryIDs []uuid.UUID
}

func (s InLibraries) Apply(db *gorm.DB) *gorm.DB {
	if len(s.LibraryIDs) == 0 {
		return db
	}
	return db.Where("library_id IN ?", s.LibraryIDs)
}

// TextContains is the case-insensitive free-text substring filter on
// raw document text.
type TextContains struct {
	Search string
}

func (s TextContains) Apply(db *gorm.DB) *gorm.DB {
	if s.Search == "" {
		return db
	}
	return db.Where("text ILIKE ?", "%"+s.Search+"%")
}

// ByContentHash filters by the dedup digest within one library.
type ByContentHash struct {
	LibraryID uuid.UUID
	Hash      string
}

func (s ByContentHash) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("library_id = ? AND content_hash = ?", s.LibraryID, s.Hash)
}

// ByExternalId filters by the unique external identifier.
type ByExternalId struct {
	ExternalId string
}

func (s ByExternalId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("external_id = ?", s.ExternalId)
}

// MissingEmbedding selects documents the embed job has not processed
// yet; used by the resync scheduler.
type MissingEmbedding struct{}

func (s MissingEmbedding) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("embedding IS NULL")
}
