package bootstrap

import (
	"context"
	"log"
	"time"

	"knowledge-assistant-be/internal/config"
	"knowledge-assistant-be/internal/controller"
	"knowledge-assistant-be/internal/pkg/logger"
	"knowledge-assistant-be/internal/pkg/serverutils"
	"knowledge-assistant-be/internal/repository/unitofwork"
	"knowledge-assistant-be/internal/service"
	"knowledge-assistant-be/pkg/channels/confluence"
	"knowledge-assistant-be/pkg/channels/pagerduty"
	"knowledge-assistant-be/pkg/channels/quip"
	"knowledge-assistant-be/pkg/channels/slack"
	"knowledge-assistant-be/pkg/embedding"
	"knowledge-assistant-be/pkg/gateway"
	"knowledge-assistant-be/pkg/jobs"
	"knowledge-assistant-be/pkg/llm"
	pktNats "knowledge-assistant-be/pkg/nats"
	"knowledge-assistant-be/pkg/rag"
	"knowledge-assistant-be/pkg/tokenizer"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DocumentController         controller.IDocumentController
	QuestionController         controller.IQuestionController
	ChatController             controller.IChatController
	AssistantController        controller.IAssistantController
	SlackWebhookController     controller.ISlackWebhookController
	PagerDutyWebhookController controller.IPagerDutyWebhookController

	// Background workers (exposed for main.go to run)
	AnswerJobService  service.IAnswerJobService
	MessageJobService service.IMessageJobService
	EmbedJobService   service.IEmbedJobService
	ResyncScheduler   *jobs.ResyncScheduler

	Logger          logger.ILogger
	EventSubscriber *pktNats.Subscriber
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Job bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)
	bus := jobs.NewBus(pubSub)

	// 3. Redis lock for at-most-one-in-flight jobs
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Invalid REDIS_URL, falling back to localhost: %v", err)
		opt = &redis.Options{Addr: "localhost:6379"}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Redis unreachable: %v", err)
	}
	lock := jobs.NewLock(rdb)

	// 4. AI providers. The backend is picked once here; everything
	// downstream only sees the interfaces.
	var embedder embedding.Provider
	var generator llm.Provider
	if cfg.Ai.UseGateway() {
		tokens := gateway.NewTokenSource(gateway.Credentials{
			TokenURL:     cfg.Ai.GatewayTokenURL,
			GrantType:    cfg.Ai.GatewayGrantType,
			ClientID:     cfg.Ai.GatewayClientID,
			ClientSecret: cfg.Ai.GatewayClientSecret,
			Username:     cfg.Ai.GatewayUsername,
			Password:     cfg.Ai.GatewayPassword,
		})
		embedder = embedding.NewGatewayProvider(cfg.Ai.GatewayBaseURL, cfg.Ai.EmbeddingModel, cfg.Ai.EmbeddingDimension, tokens)
		generator = llm.NewGatewayProvider(cfg.Ai.GatewayBaseURL, cfg.Ai.GenerationModel, cfg.Ai.MaxTokens, cfg.Ai.Temperature, tokens)
		log.Printf("[INFO] Using AI backend: GATEWAY (%s)", cfg.Ai.GatewayBaseURL)
	} else {
		embedder = embedding.NewOpenAIProvider(cfg.Ai.OpenAIAPIKey, cfg.Ai.OpenAIBaseURL, cfg.Ai.EmbeddingModel, cfg.Ai.EmbeddingDimension)
		generator = llm.NewOpenAIProvider(cfg.Ai.OpenAIAPIKey, cfg.Ai.OpenAIBaseURL, cfg.Ai.GenerationModel, cfg.Ai.MaxTokens, cfg.Ai.Temperature)
		log.Printf("[INFO] Using AI backend: OPENAI (%s)", cfg.Ai.OpenAIBaseURL)
	}

	counter, err := tokenizer.NewCounter(cfg.Ai.GenerationModel)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize tokenizer: %v", err)
	}

	// 5. NATS domain events
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		natsSub = nil
	}

	// 6. Channel clients
	slackClient := slack.NewClient(cfg.Channels.SlackSigningSecret, cfg.Channels.SlackBotToken, cfg.Channels.SlackBotUserID)
	pdClient := pagerduty.NewClient(cfg.Channels.PagerDutyAPIKey, cfg.Channels.PagerDutyFromEmail, cfg.Channels.PagerDutyTagline)

	var confluenceClient rag.ConfluenceSearcher
	if cfg.Channels.ConfluenceBaseURL != "" {
		confluenceClient = confluence.NewClient(cfg.Channels.ConfluenceBaseURL, cfg.Channels.ConfluenceUser, cfg.Channels.ConfluenceApiToken)
	}
	var quipClient rag.QuipFetcher
	if cfg.Channels.QuipApiToken != "" {
		quipClient = quip.NewClient(cfg.Channels.QuipBaseURL, cfg.Channels.QuipApiToken)
	}
	external := rag.NewExternalSources(confluenceClient, quipClient, sysLogger)

	// 7. Retrieval
	retriever := rag.NewRetriever(embedder, unitofwork.NewUnitOfWork(db).DocumentRepository())

	// 8. Services
	documentService := service.NewDocumentService(uowFactory, bus, counter, retriever, cfg.Pipeline.MaxDocumentTokens)
	questionService := service.NewQuestionService(uowFactory, bus)
	chatService := service.NewChatService(uowFactory, bus)
	assistantService := service.NewAssistantService(uowFactory)

	answerJob := service.NewAnswerJobService(bus, lock, uowFactory, embedder, generator, natsPub, sysLogger, cfg)
	messageJob := service.NewMessageJobService(bus, lock, uowFactory, embedder, generator, external, slackClient, pdClient, natsPub, sysLogger, cfg)
	embedJob := service.NewEmbedJobService(bus, uowFactory, embedder, natsPub, sysLogger)

	resync := jobs.NewResyncScheduler(
		"missing-embeddings",
		embedJob.ResyncMissing,
		time.Duration(cfg.Pipeline.ResyncSuccessDelay)*time.Second,
		time.Duration(cfg.Pipeline.ResyncFailureDelay)*time.Second,
		sysLogger,
	)

	slackWebhookService := service.NewSlackWebhookService(uowFactory, chatService, cfg.Channels.SlackBotUserID, sysLogger)
	pdWebhookService := service.NewPagerDutyWebhookService(uowFactory, chatService, pdClient, sysLogger)

	// 9. Controllers
	jwtMiddleware := serverutils.JwtMiddleware(cfg.App.JWTSecret)

	return &Container{
		DocumentController:         controller.NewDocumentController(documentService, jwtMiddleware),
		QuestionController:         controller.NewQuestionController(questionService, jwtMiddleware),
		ChatController:             controller.NewChatController(chatService, jwtMiddleware),
		AssistantController:        controller.NewAssistantController(assistantService, jwtMiddleware),
		SlackWebhookController:     controller.NewSlackWebhookController(slackWebhookService, slackClient),
		PagerDutyWebhookController: controller.NewPagerDutyWebhookController(pdWebhookService),

		AnswerJobService:  answerJob,
		MessageJobService: messageJob,
		EmbedJobService:   embedJob,
		ResyncScheduler:   resync,

		Logger:          sysLogger,
		EventSubscriber: natsSub,
	}
}
