package main

import (
	"context"
	"log"

	"ai-catalog-admin-be/internal/bootstrap"
	"ai-catalog-admin-be/internal/config"
	"ai-catalog-admin-be/internal/server"
	"ai-catalog-admin-be/internal/tracer"
	"ai-catalog-admin-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database (optional when running on the in-memory store)
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	} else {
		log.Println("[WARN] DB_CONNECTION_STRING not set, running without persistence")
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	if container.TelegramBot != nil {
		go func() {
			log.Println("Background: Starting Telegram Bot...")
			if err := container.TelegramBot.Start(context.Background()); err != nil {
				log.Printf("Background Telegram Error: %v", err)
			}
		}()
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
