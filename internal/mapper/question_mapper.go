package mapper

import (
	"encoding/json"

	"knowledge-assistant-be/internal/entity"
	"knowledge-assistant-be/internal/model"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type QuestionMapper struct{}

func NewQuestionMapper() *QuestionMapper {
	return &QuestionMapper{}
}

func (m *QuestionMapper) ToEntity(q *model.Question) *entity.Question {
	if q == nil {
		return nil
	}

	var embedding []float32
	if q.Embedding != nil {
		embedding = q.Embedding.Slice()
	}

	var libraryIds []uuid.UUID
	if len(q.LibraryIdsIncluded) > 0 {
		// Malformed stored sets are treated as empty rather than fatal.
		_ = json.Unmarshal(q.LibraryIdsIncluded, &libraryIds)
	}

	return &entity.Question{
		Id:                    q.Id,
		UserId:                q.UserId,
		LibraryId:             q.LibraryId,
		LibraryIdsIncluded:    libraryIds,
		Text:                  q.Text,
		Prompt:                q.Prompt,
		Answer:                q.Answer,
		Status:                q.Status,
		GenerationTimeSeconds: q.GenerationTimeSeconds,
		Embedding:             embedding,
		GeneratedAt:           q.GeneratedAt,
		CreatedAt:             q.CreatedAt,
	}
}

func (m *QuestionMapper) ToModel(q *entity.Question) *model.Question {
	if q == nil {
		return nil
	}

	var embedding *pgvector.Vector
	if q.Embedding != nil {
		v := pgvector.NewVector(q.Embedding)
		embedding = &v
	}

	var libraryIds datatypes.JSON
	if len(q.LibraryIdsIncluded) > 0 {
		raw, err := json.Marshal(q.LibraryIdsIncluded)
		if err == nil {
			libraryIds = raw
		}
	}

	return &model.Question{
		Id:                    q.Id,
		UserId:                q.UserId,
		LibraryId:             q.LibraryId,
		LibraryIdsIncluded:    libraryIds,
		Text:                  q.Text,
		Prompt:                q.Prompt,
		Answer:                q.Answer,
		Status:                q.Status,
		GenerationTimeSeconds: q.GenerationTimeSeconds,
		Embedding:             embedding,
		GeneratedAt:           q.GeneratedAt,
		CreatedAt:             q.CreatedAt,
	}
}

func (m *QuestionMapper) ToEntities(questions []*model.Question) []*entity.Question {
	entities := make([]*entity.Question, len(questions))
	for i, q := range questions {
		entities[i] = m.ToEntity(q)
	}
	return entities
}
