package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is the contract for everything put on the bus.
type Event interface {
	// EventType returns the unique code for this event (e.g. "QUESTION_ANSWERED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewQuestionAnswered signals that an answer job reached a terminal
// state for the given question.
func NewQuestionAnswered(eventType string, questionID uuid.UUID, status string) BaseEvent {
	return BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"question_id": questionID.String(),
			"status":      status,
		},
		OccurredAt: time.Now(),
	}
}

// NewMessageGenerated signals that a chat message finished generating.
func NewMessageGenerated(eventType string, chatID, messageID uuid.UUID, status string) BaseEvent {
	return BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"chat_id":    chatID.String(),
			"message_id": messageID.String(),
			"status":     status,
		},
		OccurredAt: time.Now(),
	}
}

// NewDocumentEmbedded signals that a document's embedding was written.
func NewDocumentEmbedded(eventType string, documentID uuid.UUID) BaseEvent {
	return BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"document_id": documentID.String(),
		},
		OccurredAt: time.Now(),
	}
}
