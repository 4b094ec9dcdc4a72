package service

import (
	"context"
	"encoding/json"
	"fmt"

	"knowledge-assistant-be/internal/constant"
	"knowledge-assistant-be/internal/dto"
	"knowledge-assistant-be/internal/pkg/logger"
	"knowledge-assistant-be/internal/repository/specification"
	"knowledge-assistant-be/internal/repository/unitofwork"
	"knowledge-assistant-be/pkg/embedding"
	"knowledge-assistant-be/pkg/events"
	"knowledge-assistant-be/pkg/jobs"
	pktNats "knowledge-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IEmbedJobService interface {
	Consume(ctx context.Context) error

	// ResyncMissing re-enqueues embed jobs for documents whose
	// embedding never landed, such as after a crash mid-job.
	ResyncMissing(ctx context.Context) (int, error)
}

type embedJobService struct {
	bus            jobs.IBus
	uowFactory     unitofwork.RepositoryFactory
	embedder       embedding.Provider
	eventPublisher *pktNats.Publisher
	log            logger.ILogger
}

func NewEmbedJobService(
	bus jobs.IBus,
	uowFactory unitofwork.RepositoryFactory,
	embedder embedding.Provider,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IEmbedJobService {
	return &embedJobService{
		bus:            bus,
		uowFactory:     uowFactory,
		embedder:       embedder,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

func (s *embedJobService) Consume(ctx context.Context) error {
	messages, err := s.bus.Subscribe(ctx, constant.TopicEmbedDocument)
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

func (s *embedJobService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.EmbedDocumentJobMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.log.Error("embed_job", "failed to unmarshal job payload", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		s.log.Error("embed_job", "failed to load document", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}
	if doc == nil {
		// Deleted before the job ran.
		msg.Ack()
		return
	}

	// Title carries signal for short documents, so it is embedded with
	// the body.
	content := fmt.Sprintf("%s\n\n%s", doc.Title, doc.Text)
	vector, err := s.embedder.Embed(ctx, content)
	if err != nil {
		s.log.Error("embed_job", "embedding provider failed", map[string]interface{}{
			"document_id": doc.Id,
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}

	if err := uow.DocumentRepository().UpdateEmbedding(ctx, doc.Id, vector); err != nil {
		s.log.Error("embed_job", "failed to store embedding", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}

	if s.eventPublisher != nil {
		evt := events.NewDocumentEmbedded(constant.EventDocumentEmbedded, doc.Id)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("embed_job", "failed to publish event", map[string]interface{}{"error": err.Error()})
		}
	}

	s.log.Info("embed_job", "document embedded", map[string]interface{}{"document_id": doc.Id})
	msg.Ack()
}

func (s *embedJobService) ResyncMissing(ctx context.Context) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	docs, err := uow.DocumentRepository().FindAll(ctx, specification.MissingEmbedding{})
	if err != nil {
		return 0, err
	}

	for _, doc := range docs {
		err := s.bus.Enqueue(ctx, constant.TopicEmbedDocument,
			dto.EmbedDocumentJobMessage{DocumentId: doc.Id}, jobs.PriorityLow)
		if err != nil {
			return 0, err
		}
	}
	return len(docs), nil
}
