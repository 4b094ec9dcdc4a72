package mapper

import (
	"time"

	"knowledge-assistant-be/internal/entity"
	"knowledge-assistant-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) ToEntity(c *model.Chat) *entity.Chat {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Chat{
		Id:                c.Id,
		AssistantId:       c.AssistantId,
		UserId:            c.UserId,
		Title:             c.Title,
		Source:            c.Source,
		WebhookExternalId: c.WebhookExternalId,
		SlackChannel:      c.SlackChannel,
		StartedByBot:      c.StartedByBot,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         updatedAt,
	}
}

func (m *ChatMapper) ToModel(c *entity.Chat) *model.Chat {
	if c == nil {
		return nil
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.Chat{
		Id:                c.Id,
		AssistantId:       c.AssistantId,
		UserId:            c.UserId,
		Title:             c.Title,
		Source:            c.Source,
		WebhookExternalId: c.WebhookExternalId,
		SlackChannel:      c.SlackChannel,
		StartedByBot:      c.StartedByBot,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         updatedAt,
	}
}

func (m *ChatMapper) ToEntities(chats []*model.Chat) []*entity.Chat {
	entities := make([]*entity.Chat, len(chats))
	for i, c := range chats {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
