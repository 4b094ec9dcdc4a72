package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateChatRequest struct {
	AssistantId uuid.UUID `json:"assistant_id" validate:"required"`
	Title       string    `json:"title"`
}

type CreateChatResponse struct {
	Id uuid.UUID `json:"id"`
}

type ShowChatResponse struct {
	Id          uuid.UUID  `json:"id"`
	AssistantId uuid.UUID  `json:"assistant_id"`
	Title       string     `json:"title"`
	Source      string     `json:"source"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type PostMessageRequest struct {
	ChatId  uuid.UUID
	Content string `json:"content" validate:"required"`
}

type PostMessageResponse struct {
	UserMessageId      uuid.UUID `json:"user_message_id"`
	AssistantMessageId uuid.UUID `json:"assistant_message_id"`
	Status             string    `json:"status"`
}

type MessageItem struct {
	Id        uuid.UUID `json:"id"`
	From      string    `json:"from"`
	Content   string    `json:"content"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type ListMessagesResponse struct {
	ChatId   uuid.UUID     `json:"chat_id"`
	Messages []MessageItem `json:"messages"`
}
