package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"knowledge-assistant-be/internal/config"
	"knowledge-assistant-be/internal/constant"
	"knowledge-assistant-be/internal/dto"
	"knowledge-assistant-be/internal/entity"
	"knowledge-assistant-be/internal/pkg/logger"
	"knowledge-assistant-be/internal/repository/contract"
	"knowledge-assistant-be/internal/repository/specification"
	"knowledge-assistant-be/internal/repository/unitofwork"
	"knowledge-assistant-be/pkg/embedding"
	"knowledge-assistant-be/pkg/events"
	"knowledge-assistant-be/pkg/jobs"
	"knowledge-assistant-be/pkg/llm"
	pktNats "knowledge-assistant-be/pkg/nats"
	"knowledge-assistant-be/pkg/prompt"
	"knowledge-assistant-be/pkg/rag"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const messageJobType = "message"

// SlackPoster posts the finished answer back to the source thread.
type SlackPoster interface {
	PostMessage(ctx context.Context, channel, threadTs, text string) (string, error)
}

// PagerDutyNoter writes the finished answer as an incident note.
type PagerDutyNoter interface {
	PostNote(ctx context.Context, incidentID, content string) error
}

type IMessageJobService interface {
	Consume(ctx context.Context) error
}

type messageJobService struct {
	bus            jobs.IBus
	lock           *jobs.Lock
	uowFactory     unitofwork.RepositoryFactory
	embedder       embedding.Provider
	generator      llm.Provider
	external       *rag.ExternalSources
	slack          SlackPoster
	pagerduty      PagerDutyNoter
	eventPublisher *pktNats.Publisher
	log            logger.ILogger
	cfg            *config.Config
}

func NewMessageJobService(
	bus jobs.IBus,
	lock *jobs.Lock,
	uowFactory unitofwork.RepositoryFactory,
	embedder embedding.Provider,
	generator llm.Provider,
	external *rag.ExternalSources,
	slack SlackPoster,
	pagerduty PagerDutyNoter,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
	cfg *config.Config,
) IMessageJobService {
	return &messageJobService{
		bus:            bus,
		lock:           lock,
		uowFactory:     uowFactory,
		embedder:       embedder,
		generator:      generator,
		external:       external,
		slack:          slack,
		pagerduty:      pagerduty,
		eventPublisher: eventPublisher,
		log:            log,
		cfg:            cfg,
	}
}

func (s *messageJobService) Consume(ctx context.Context) error {
	messages, err := s.bus.Subscribe(ctx, constant.TopicMessageResponse)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *messageJobService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.MessageResponseJobMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.log.Error("message_job", "failed to unmarshal job payload", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}

	ttl := time.Duration(s.cfg.Pipeline.JobTimeoutSeconds) * time.Second
	acquired, err := s.lock.Acquire(ctx, messageJobType, payload.MessageId.String(), ttl)
	if err != nil {
		s.log.Error("message_job", "failed to acquire lock", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}
	if !acquired {
		msg.Ack()
		return
	}
	defer s.lock.Release(ctx, messageJobType, payload.MessageId.String())

	jobCtx, cancel := context.WithTimeout(ctx, ttl)
	defer cancel()

	if retry := s.respond(jobCtx, payload.ChatId, payload.MessageId); retry {
		msg.Nack()
		return
	}
	msg.Ack()
}

// respond fills in the placeholder message. It returns true when the
// job should be redelivered.
func (s *messageJobService) respond(ctx context.Context, chatId, messageId uuid.UUID) bool {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	placeholder, err := uow.MessageRepository().FindOne(ctx, specification.ByID{ID: messageId})
	if err != nil {
		s.log.Error("message_job", "failed to load message", map[string]interface{}{"error": err.Error()})
		return true
	}
	if placeholder == nil {
		s.log.Warn("message_job", "message no longer exists", map[string]interface{}{"message_id": messageId})
		return false
	}
	if placeholder.Status != constant.MessageStatusGenerating {
		return false
	}

	chat, err := uow.ChatRepository().FindOne(ctx, specification.ByID{ID: chatId})
	if err != nil {
		s.log.Error("message_job", "failed to load chat", map[string]interface{}{"error": err.Error()})
		return true
	}
	if chat == nil {
		s.log.Warn("message_job", "chat no longer exists", map[string]interface{}{"chat_id": chatId})
		return false
	}

	assistant, err := uow.AssistantRepository().FindOne(ctx, specification.ByID{ID: chat.AssistantId})
	if err != nil {
		s.log.Error("message_job", "failed to load assistant", map[string]interface{}{"error": err.Error()})
		return true
	}
	if assistant == nil {
		s.log.Warn("message_job", "assistant no longer exists", map[string]interface{}{"assistant_id": chat.AssistantId})
		return false
	}

	answer, builtPrompt, err := s.generate(ctx, uow, chat, assistant, placeholder)
	if err != nil {
		s.log.Error("message_job", "generation failed", map[string]interface{}{
			"message_id": messageId,
			"error":      err.Error(),
		})
		// Content keeps the thinking placeholder so clients still have
		// something to render next to the failed status.
		placeholder.Status = constant.MessageStatusFailed
		now := time.Now()
		placeholder.UpdatedAt = &now
		if err := uow.MessageRepository().Update(ctx, placeholder); err != nil {
			s.log.Error("message_job", "failed to mark failed", map[string]interface{}{"error": err.Error()})
			return true
		}
		s.publishOutcome(ctx, chat.Id, placeholder.Id, constant.MessageStatusFailed)
		return false
	}

	placeholder.Content = answer
	placeholder.Status = constant.MessageStatusReady
	placeholder.Prompt = &builtPrompt
	now := time.Now()
	placeholder.UpdatedAt = &now

	if err := uow.MessageRepository().Update(ctx, placeholder); err != nil {
		s.log.Error("message_job", "failed to store answer", map[string]interface{}{"error": err.Error()})
		return true
	}

	s.deliver(ctx, chat, assistant, answer)
	s.publishOutcome(ctx, chat.Id, placeholder.Id, constant.MessageStatusReady)
	return false
}

func (s *messageJobService) generate(ctx context.Context, uow unitofwork.UnitOfWork, chat *entity.Chat, assistant *entity.Assistant, placeholder *entity.Message) (string, string, error) {
	history, err := uow.MessageRepository().FindAll(ctx,
		specification.ByChatID{ChatID: chat.Id},
		specification.ByStatus{Status: constant.MessageStatusReady},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return "", "", err
	}

	latest := latestUserMessage(history)
	if latest == nil {
		return "", "", fmt.Errorf("chat %s has no user message to respond to", chat.Id)
	}

	vector, err := s.embedder.Embed(ctx, latest.Content)
	if err != nil {
		return "", "", err
	}

	docs, err := uow.DocumentRepository().Nearest(ctx, contract.NearestQuery{
		Embedding:   vector,
		Metric:      contract.MetricCosine,
		LibraryIDs:  assistant.LibraryIds,
		EnabledOnly: true,
		Limit:       s.cfg.Pipeline.MaxPromptDocs,
	})
	if err != nil {
		return "", "", err
	}

	builder := prompt.NewBuilder()

	instructions := assistant.Instructions
	if assistant.OutputFormat != "" {
		instructions += "\n\nOUTPUT FORMAT:\n" + assistant.OutputFormat
	}
	builder.Trusted(instructions)

	if assistant.ContextText != "" {
		builder.Untrusted("BACKGROUND:\n" + assistant.ContextText)
	}

	builder.Documents(toContextDocuments(docs), prompt.Budget{
		MaxDocTokens: s.cfg.Pipeline.MaxPromptDocTokens,
		MaxDocs:      s.cfg.Pipeline.MaxPromptDocs,
		RootURL:      s.cfg.App.BaseURL,
	})

	for _, passage := range s.external.Fetch(ctx, assistant.ConfluenceQuery, assistant.QuipDocumentId) {
		builder.Untrusted(fmt.Sprintf("EXTERNAL CONTEXT (%s) %s:\n%s", passage.Source, passage.Title, passage.Text))
	}

	builder.History(toHistoryMessages(history, placeholder.Id))

	builder.Untrusted("LATEST MESSAGE:\n" + latest.Content)

	builtPrompt, err := builder.Finalize()
	if err != nil {
		return "", "", err
	}

	answer, err := s.generator.Generate(ctx, builtPrompt,
		llm.WithModel(s.cfg.Ai.GenerationModel),
		llm.WithTemperature(s.cfg.Ai.Temperature),
		llm.WithMaxTokens(s.cfg.Ai.MaxTokens),
	)
	if err != nil {
		return "", "", err
	}

	return answer, builtPrompt, nil
}

// deliver fans the answer out to the chat's source channel. Failures
// are logged only; the answer is already durable in the chat.
func (s *messageJobService) deliver(ctx context.Context, chat *entity.Chat, assistant *entity.Assistant, answer string) {
	switch chat.Source {
	case entity.ChatSourceSlack:
		if s.slack == nil || chat.SlackChannel == "" {
			return
		}
		threadTs := ""
		if chat.WebhookExternalId != nil {
			threadTs = *chat.WebhookExternalId
		}
		if _, err := s.slack.PostMessage(ctx, chat.SlackChannel, threadTs, answer); err != nil {
			s.log.Warn("message_job", "failed to post answer to slack", map[string]interface{}{
				"chat_id": chat.Id,
				"error":   err.Error(),
			})
		}
	case entity.ChatSourcePagerDuty:
		if s.pagerduty == nil || !assistant.PagerDutyEnabled || chat.WebhookExternalId == nil {
			return
		}
		if err := s.pagerduty.PostNote(ctx, *chat.WebhookExternalId, answer); err != nil {
			s.log.Warn("message_job", "failed to post answer to pagerduty", map[string]interface{}{
				"chat_id": chat.Id,
				"error":   err.Error(),
			})
		}
	}
}

func (s *messageJobService) publishOutcome(ctx context.Context, chatId, messageId uuid.UUID, status string) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.NewMessageGenerated(constant.EventMessageGenerated, chatId, messageId, status)
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.log.Warn("message_job", "failed to publish event", map[string]interface{}{"error": err.Error()})
	}
}

func latestUserMessage(history []*entity.Message) *entity.Message {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].From == constant.MessageFromUser {
			return history[i]
		}
	}
	return nil
}

func toHistoryMessages(history []*entity.Message, excludeId uuid.UUID) []prompt.HistoryMessage {
	out := make([]prompt.HistoryMessage, 0, len(history))
	for _, m := range history {
		if m.Id == excludeId {
			continue
		}
		out = append(out, prompt.HistoryMessage{From: m.From, Content: m.Content})
	}
	return out
}
