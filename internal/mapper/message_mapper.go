package mapper

import (
	"time"

	"knowledge-assistant-be/internal/entity"
	"knowledge-assistant-be/internal/model"

	"gorm.io/datatypes"
)

type MessageMapper struct{}

func NewMessageMapper() *MessageMapper {
	return &MessageMapper{}
}

func (m *MessageMapper) ToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}

	var updatedAt *time.Time
	if !msg.UpdatedAt.IsZero() {
		t := msg.UpdatedAt
		updatedAt = &t
	}

	return &entity.Message{
		Id:         msg.Id,
		ChatId:     msg.ChatId,
		UserId:     msg.UserId,
		Content:    msg.Content,
		From:       msg.From,
		Status:     msg.Status,
		Prompt:     msg.Prompt,
		RawPayload: msg.RawPayload,
		CreatedAt:  msg.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *MessageMapper) ToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}

	var updatedAt time.Time
	if msg.UpdatedAt != nil {
		updatedAt = *msg.UpdatedAt
	}

	var raw datatypes.JSON
	if len(msg.RawPayload) > 0 {
		raw = msg.RawPayload
	}

	return &model.Message{
		Id:         msg.Id,
		ChatId:     msg.ChatId,
		UserId:     msg.UserId,
		Content:    msg.Content,
		From:       msg.From,
		Status:     msg.Status,
		Prompt:     msg.Prompt,
		RawPayload: raw,
		CreatedAt:  msg.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *MessageMapper) ToEntities(msgs []*model.Message) []*entity.Message {
	entities := make([]*entity.Message, len(msgs))
	for i, msg := range msgs {
		entities[i] = m.ToEntity(msg)
	}
	return entities
}
