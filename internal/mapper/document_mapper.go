package mapper

import (
	"time"

	"knowledge-assistant-be/internal/entity"
	"knowledge-assistant-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	var embedding []float32
	if d.Embedding != nil {
		embedding = d.Embedding.Slice()
	}

	return &entity.Document{
		Id:          d.Id,
		LibraryId:   d.LibraryId,
		OwnerId:     d.OwnerId,
		Title:       d.Title,
		Text:        d.Text,
		Url:         d.Url,
		ExternalId:  d.ExternalId,
		LengthChars: d.LengthChars,
		TokenCount:  d.TokenCount,
		ContentHash: d.ContentHash,
		Embedding:   embedding,
		Enabled:     d.Enabled,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	var embedding *pgvector.Vector
	if d.Embedding != nil {
		v := pgvector.NewVector(d.Embedding)
		embedding = &v
	}

	return &model.Document{
		Id:          d.Id,
		LibraryId:   d.LibraryId,
		OwnerId:     d.OwnerId,
		Title:       d.Title,
		Text:        d.Text,
		Url:         d.Url,
		ExternalId:  d.ExternalId,
		LengthChars: d.LengthChars,
		TokenCount:  d.TokenCount,
		ContentHash: d.ContentHash,
		Embedding:   embedding,
		Enabled:     d.Enabled,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *DocumentMapper) ToEntities(docs []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
