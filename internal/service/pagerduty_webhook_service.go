package service

import (
	"context"
	"fmt"

	"knowledge-assistant-be/internal/entity"
	"knowledge-assistant-be/internal/pkg/logger"
	"knowledge-assistant-be/internal/repository/specification"
	"knowledge-assistant-be/internal/repository/unitofwork"
	"knowledge-assistant-be/pkg/channels/pagerduty"
)

// NoteChecker tells the assistant's own notes apart from human ones.
type NoteChecker interface {
	IsOwnNote(content string) bool
}

type IPagerDutyWebhookService interface {
	HandleEvent(ctx context.Context, evt *pagerduty.WebhookEvent, rawBody []byte) error
}

type pagerDutyWebhookService struct {
	uowFactory  unitofwork.RepositoryFactory
	chatService IChatService
	notes       NoteChecker
	log         logger.ILogger
}

func NewPagerDutyWebhookService(
	uowFactory unitofwork.RepositoryFactory,
	chatService IChatService,
	notes NoteChecker,
	log logger.ILogger,
) IPagerDutyWebhookService {
	return &pagerDutyWebhookService{
		uowFactory:  uowFactory,
		chatService: chatService,
		notes:       notes,
		log:         log,
	}
}

func (s *pagerDutyWebhookService) HandleEvent(ctx context.Context, evt *pagerduty.WebhookEvent, rawBody []byte) error {
	if evt == nil {
		return nil
	}

	// Loop guard: the assistant's own notes come back as annotated
	// events and must not trigger another answer.
	if evt.NoteContent != "" && s.notes.IsOwnNote(evt.NoteContent) {
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	assistant, err := uow.AssistantRepository().FindOne(ctx,
		specification.PagerDutyEnabled{},
	)
	if err != nil {
		return err
	}
	if assistant == nil {
		return nil
	}

	existing, err := uow.ChatRepository().FindOne(ctx,
		specification.ByWebhookExternalId{ExternalId: evt.IncidentID},
	)
	if err != nil {
		return err
	}

	content := evt.NoteContent
	if content == "" {
		// Lifecycle events without a note dedupe on the incident: the
		// first one opens the conversation, repeats are dropped.
		if existing != nil {
			return nil
		}
		content = fmt.Sprintf("Incident %s was triggered. Find the relevant runbooks and suggest first response steps.", evt.IncidentID)
	}

	_, err = s.chatService.PostExternalMessage(ctx, &ExternalMessage{
		Assistant:  assistant,
		Source:     entity.ChatSourcePagerDuty,
		ExternalId: evt.IncidentID,
		Content:    content,
		RawPayload: rawBody,
	})
	if err != nil {
		return err
	}

	s.log.Info("pagerduty_webhook", "event accepted", map[string]interface{}{
		"incident_id": evt.IncidentID,
		"event_type":  evt.EventType,
	})
	return nil
}
