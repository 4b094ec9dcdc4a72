package dto

import "github.com/google/uuid"

// Job payloads are intentionally thin: workers reload the record by id
// so they always act on current state, never on a stale snapshot.

type AnswerQuestionJobMessage struct {
	QuestionId uuid.UUID `json:"question_id"`
}

type MessageResponseJobMessage struct {
	ChatId    uuid.UUID `json:"chat_id"`
	MessageId uuid.UUID `json:"message_id"`
}

type EmbedDocumentJobMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}
