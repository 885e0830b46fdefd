package bootstrap

import (
	"context"
	"log"
	"net/http"

	"ai-catalog-admin-be/internal/config"
	"ai-catalog-admin-be/internal/controller"
	"ai-catalog-admin-be/internal/handler"
	"ai-catalog-admin-be/internal/pkg/logger"
	"ai-catalog-admin-be/internal/repository/contract"
	"ai-catalog-admin-be/internal/repository/implementation"
	"ai-catalog-admin-be/internal/repository/memory"
	"ai-catalog-admin-be/internal/service"
	"ai-catalog-admin-be/internal/telegram"
	"ai-catalog-admin-be/internal/websocket"
	"ai-catalog-admin-be/pkg/commerce"
	"ai-catalog-admin-be/pkg/dialogue"
	"ai-catalog-admin-be/pkg/genai/factory"
	"ai-catalog-admin-be/pkg/imaging"
	"ai-catalog-admin-be/pkg/media"

	pktNats "ai-catalog-admin-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AssistantController controller.IAssistantController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	TelegramBot     *telegram.Bot

	// WebSockets & Events
	EventHandler *handler.EventHandler
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/events.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. State & Audit Stores
	var stateRepo contract.StateRepository
	var turnRepo contract.TurnRepository
	var auditRepo contract.AuditRepository
	if cfg.App.StateStore == "memory" || db == nil {
		stateRepo = memory.NewStateRepository()
		log.Printf("[INFO] Using State Store: MEMORY")
	} else {
		stateRepo = implementation.NewStateRepository(db)
		log.Printf("[INFO] Using State Store: DATABASE")
	}
	if db != nil {
		turnRepo = implementation.NewTurnRepository(db)
		auditRepo = implementation.NewAuditRepository(db)
	}

	// 4. Outbound Clients
	backend := commerce.NewClient(cfg.Commerce.BaseURL, cfg.Commerce.ConsumerKey, cfg.Commerce.ConsumerSecret)
	mediaHost := media.NewClient(cfg.Media.BaseURL, cfg.Media.Username, cfg.Media.Password)

	generator, err := factory.NewGenerator(
		cfg.Ai.Provider,
		cfg.Ai.Model,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GeminiAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize AI Provider: %v", err)
	}
	log.Printf("[INFO] Using AI Provider: %s (%s)", cfg.Ai.Provider, cfg.Ai.Model)

	watermarker := imaging.NewWatermarker(imaging.WatermarkConfig{
		OverlayURL: cfg.Watermark.OverlayURL,
		Placement:  cfg.Watermark.Placement,
		Opacity:    cfg.Watermark.Opacity,
		Scale:      cfg.Watermark.Scale,
	}, http.DefaultClient)
	pipeline := imaging.NewPipeline(mediaHost, watermarker, sysLogger)

	// 5. Dialogue Controller
	dlg := dialogue.NewController(generator, backend, pipeline, dialogue.Config{
		ApplyWatermark: cfg.Watermark.Enabled,
	}, sysLogger)

	// 6. Services
	publisherService := service.NewPublisherService(cfg.App.PersistTopic, pubSub)
	assistantService := service.NewAssistantService(
		dlg,
		stateRepo,
		turnRepo,
		wsHub,
		publisherService,
		sysLogger,
	)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.PersistTopic,
		auditRepo,
		natsPub,
		sysLogger,
	)

	// NATS -> WebSocket bridge (Worker)
	if natsSub != nil {
		listenerService := service.NewListenerService(natsSub, wsHub, wsLogger)
		go listenerService.Start()
	}

	// Telegram channel (optional)
	var bot *telegram.Bot
	if cfg.Telegram.BotToken != "" {
		bot, err = telegram.NewBot(cfg.Telegram.BotToken, assistantService, sysLogger)
		if err != nil {
			log.Printf("[WARN] Failed to start Telegram bot: %v", err)
		}
	}

	eventHandler := handler.NewEventHandler(wsHub, auditRepo, wsLogger)

	return &Container{
		AssistantController: controller.NewAssistantController(assistantService),

		ConsumerService: consumerService,
		TelegramBot:     bot,

		EventHandler: eventHandler,
		WebSocketHub: wsHub,
	}
}
