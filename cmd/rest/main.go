package main

import (
	"context"
	"log"

	"knowledge-assistant-be/internal/bootstrap"
	"knowledge-assistant-be/internal/config"
	"knowledge-assistant-be/internal/server"
	"knowledge-assistant-be/internal/tracer"
	"knowledge-assistant-be/pkg/database"
	"knowledge-assistant-be/pkg/events"

	"github.com/fatih/color"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Logger.Sync()

	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 4. Start Background Workers
	ctx := context.Background()

	if err := container.EmbedJobService.Consume(ctx); err != nil {
		log.Printf("Background Embed Worker Error: %v", err)
	}
	if err := container.AnswerJobService.Consume(ctx); err != nil {
		log.Printf("Background Answer Worker Error: %v", err)
	}
	if err := container.MessageJobService.Consume(ctx); err != nil {
		log.Printf("Background Message Worker Error: %v", err)
	}

	go container.ResyncScheduler.Run(ctx)

	// Durable audit trail of pipeline outcomes (answers, messages, embeds).
	if container.EventSubscriber != nil {
		err := container.EventSubscriber.Subscribe("events.>", "audit-log", func(ctx context.Context, event events.Event) error {
			container.Logger.Info("audit", "Pipeline event", map[string]interface{}{
				"event_type": event.EventType(),
				"payload":    event.Payload(),
			})
			return nil
		})
		if err != nil {
			log.Printf("Audit Subscriber Error: %v", err)
		}
	}

	color.Green("Knowledge Assistant backend ready (env: %s)", cfg.App.Environment)

	// 5. Run Server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
