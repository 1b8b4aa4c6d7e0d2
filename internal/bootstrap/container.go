package bootstrap

import (
	"context"
	"log"

	"neuraconnect-be/internal/config"
	"neuraconnect-be/internal/controller"
	"neuraconnect-be/internal/pkg/logger"
	"neuraconnect-be/internal/realtime"
	"neuraconnect-be/internal/repository/memory"
	"neuraconnect-be/internal/repository/unitofwork"
	"neuraconnect-be/internal/service"
	"neuraconnect-be/internal/websocket"
	"neuraconnect-be/pkg/events"
	pktNats "neuraconnect-be/pkg/nats"
	"neuraconnect-be/pkg/translate"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const materialTopic = "material.process"

type Container struct {
	// Controllers
	AuthController    controller.IAuthController
	PersonaController controller.IPersonaController
	CallController    controller.ICallController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
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

	// WebSocket Hub, isolated logger keeps call signaling noise out of main logs
	callLogger := logger.NewIsolatedLogger(cfg.App.CallLogFilePath)
	wsHub := websocket.NewHub(rdb, callLogger)
	go wsHub.Run()

	// 3. Realtime collaborators
	realtimeClient := realtime.NewClient(cfg.Realtime)
	translator := translate.NewClient(translate.Config{
		Endpoint: cfg.Translate.Endpoint,
		APIKey:   cfg.Translate.APIKey,
	})

	liveCallRegistry := memory.NewCallRegistry()

	// 4. Services
	publisherService := service.NewPublisherService(pubSub, materialTopic)
	consumerService := service.NewConsumerService(pubSub, materialTopic, uowFactory, sysLogger)

	authService := service.NewAuthService(uowFactory, natsPub, sysLogger)
	personaService := service.NewPersonaService(uowFactory, publisherService, sysLogger)
	sessionService := service.NewSessionService(
		uowFactory,
		liveCallRegistry,
		wsHub,
		translator,
		realtimeClient,
		natsPub,
		callLogger,
		cfg.Translate.DefaultLanguage,
		cfg.Realtime.MaxAttempts,
	)

	// Browser frames (mic audio, typed text) flow from sockets into live calls.
	wsHub.SetInboundHandler(sessionService)

	// Sign-out anywhere in the cluster ends the user's active call here.
	if natsSub != nil {
		if err := natsSub.Subscribe("events."+events.TypeUserSignedOut, "session-signout-sweeper", sessionService.HandleUserSignedOut); err != nil {
			log.Printf("[WARN] Failed to subscribe to sign-out events: %v", err)
		}
	}

	// 5. Controllers
	return &Container{
		AuthController:    controller.NewAuthController(authService),
		PersonaController: controller.NewPersonaController(personaService),
		CallController:    controller.NewCallController(sessionService, wsHub, callLogger),

		ConsumerService: consumerService,

		WebSocketHub: wsHub,
	}
}
