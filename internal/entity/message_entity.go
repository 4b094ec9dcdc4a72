package entity

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	Id         uuid.UUID
	ChatId     uuid.UUID
	UserId     *uuid.UUID
	Content    string
	From       string // constant.MessageFromUser | constant.MessageFromAssistant
	Status     string
	Prompt     *string // assistant messages only
	RawPayload []byte  // original webhook payload for channel-originated messages
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}
