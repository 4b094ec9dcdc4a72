package constant

const (
	MessageFromUser      = "user"
	MessageFromAssistant = "assistant"

	MessageStatusReady      = "ready"
	MessageStatusGenerating = "generating"
	MessageStatusFailed     = "failed"

	QuestionStatusPending    = "pending"
	QuestionStatusGenerating = "generating"
	QuestionStatusGenerated  = "generated"
	QuestionStatusFailed     = "failed"

	// Placeholder shown while a response job is running. Preserved
	// verbatim when generation fails so clients can render something.
	MessageThinkingPlaceholder = "Assistant is thinking..."

	// Job topics on the watermill bus.
	TopicAnswerQuestion  = "ANSWER_QUESTION"
	TopicMessageResponse = "MESSAGE_RESPONSE"
	TopicEmbedDocument   = "EMBED_DOCUMENT"

	// Domain event types published to NATS.
	EventQuestionAnswered = "QUESTION_ANSWERED"
	EventMessageGenerated = "MESSAGE_GENERATED"
	EventDocumentEmbedded = "DOCUMENT_EMBEDDED"
)
