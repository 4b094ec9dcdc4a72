package mapper

import (
	"encoding/json"
	"time"

	"knowledge-assistant-be/internal/entity"
	"knowledge-assistant-be/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AssistantMapper struct{}

func NewAssistantMapper() *AssistantMapper {
	return &AssistantMapper{}
}

func (m *AssistantMapper) ToEntity(a *model.Assistant) *entity.Assistant {
	if a == nil {
		return nil
	}

	var updatedAt *time.Time
	if !a.UpdatedAt.IsZero() {
		t := a.UpdatedAt
		updatedAt = &t
	}

	var libraryIds []uuid.UUID
	if len(a.LibraryIds) > 0 {
		_ = json.Unmarshal(a.LibraryIds, &libraryIds)
	}

	return &entity.Assistant{
		Id:                      a.Id,
		OwnerId:                 a.OwnerId,
		Name:                    a.Name,
		Instructions:            a.Instructions,
		OutputFormat:            a.OutputFormat,
		ContextText:             a.ContextText,
		LibraryIds:              libraryIds,
		SlackChannel:            a.SlackChannel,
		IgnoreThreadsNotFromBot: a.IgnoreThreadsNotFromBot,
		QuipDocumentId:          a.QuipDocumentId,
		ConfluenceQuery:         a.ConfluenceQuery,
		PagerDutyEnabled:        a.PagerDutyEnabled,
		CreatedAt:               a.CreatedAt,
		UpdatedAt:               updatedAt,
	}
}

func (m *AssistantMapper) ToModel(a *entity.Assistant) *model.Assistant {
	if a == nil {
		return nil
	}

	var updatedAt time.Time
	if a.UpdatedAt != nil {
		updatedAt = *a.UpdatedAt
	}

	var libraryIds datatypes.JSON
	if len(a.LibraryIds) > 0 {
		raw, err := json.Marshal(a.LibraryIds)
		if err == nil {
			libraryIds = raw
		}
	}

	return &model.Assistant{
		Id:                      a.Id,
		OwnerId:                 a.OwnerId,
		Name:                    a.Name,
		Instructions:            a.Instructions,
		OutputFormat:            a.OutputFormat,
		ContextText:             a.ContextText,
		LibraryIds:              libraryIds,
		SlackChannel:            a.SlackChannel,
		IgnoreThreadsNotFromBot: a.IgnoreThreadsNotFromBot,
		QuipDocumentId:          a.QuipDocumentId,
		ConfluenceQuery:         a.ConfluenceQuery,
		PagerDutyEnabled:        a.PagerDutyEnabled,
		CreatedAt:               a.CreatedAt,
		UpdatedAt:               updatedAt,
	}
}
