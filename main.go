package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/vnioa/StudyMate-sub010/internal/cache"
	"github.com/vnioa/StudyMate-sub010/internal/config"
	"github.com/vnioa/StudyMate-sub010/internal/db"
	"github.com/vnioa/StudyMate-sub010/internal/handlers"
	applog "github.com/vnioa/StudyMate-sub010/internal/log"
	"github.com/vnioa/StudyMate-sub010/internal/middleware"
	"github.com/vnioa/StudyMate-sub010/internal/observability"
	"github.com/vnioa/StudyMate-sub010/internal/push"
	"github.com/vnioa/StudyMate-sub010/internal/rabbitmq"
	"github.com/vnioa/StudyMate-sub010/internal/repositories"
	"github.com/vnioa/StudyMate-sub010/internal/service"
	"github.com/vnioa/StudyMate-sub010/internal/telemetry"
	"github.com/vnioa/StudyMate-sub010/internal/ws"
)

const serviceName = "studymate-chat"

func main() {
	cfg := config.Load()
	applog.Init(cfg.Env)

	ctx := context.Background()

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.OTLPEndpoint, serviceName, cfg.Env)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to init tracing")
	}
	defer func() {
		if err := shutdownTracing(ctx); err != nil {
			zlog.Warn().Err(err).Msg("tracing shutdown failed")
		}
	}()

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to connect to db")
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	observability.SetPublisher(publisher)
	zlog.Info().Str("mode", rabbitmq.PublisherMode(publisher)).Msg("event publisher ready")

	audit := telemetry.NewAuditEmitter(publisher, "audit.chat", serviceName, cfg.Env)

	roomRepo := repositories.NewRoomRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	deviceRepo := repositories.NewDeviceTokenRepo(database)

	msgCache := cache.New(cfg.RedisAddr, cfg.CacheSize, cfg.CacheTTL)

	provider := push.NewHTTPProvider(cfg.PushURL, cfg.PushServerKey)
	notifier := push.NewNotifier(roomRepo, deviceRepo, provider, cfg.NotifyQueueSize)
	notifier.Start(ctx)
	defer notifier.Stop()

	sweeper := push.NewTokenSweeper(deviceRepo, cfg.TokenSweepEvery, cfg.TokenMaxAge)
	go sweeper.Start(ctx)
	defer sweeper.Stop()

	roomService := service.NewRoomService(roomRepo)
	messageService := service.NewMessageService(messageRepo, roomRepo, msgCache, notifier)

	hub := ws.NewHub()

	roomHandler := handlers.NewRoomHandler(roomService, audit)
	messageHandler := handlers.NewMessageHandler(messageService, hub, audit)
	deviceHandler := handlers.NewDeviceHandler(deviceRepo)
	roomWS := ws.NewRoomWebSocketHandler(hub, roomRepo, cfg.JWTSecret)

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret)

	router.POST("/rooms", authMiddleware, roomHandler.CreateRoom)
	router.GET("/rooms", authMiddleware, roomHandler.ListRooms)
	router.PUT("/rooms/:room_id/settings", authMiddleware, roomHandler.UpdateSettings)
	router.POST("/rooms/:room_id/archive", authMiddleware, roomHandler.ArchiveRoom)
	router.DELETE("/rooms/:room_id/leave", authMiddleware, roomHandler.LeaveRoom)
	router.GET("/rooms/:room_id/participants", authMiddleware, roomHandler.ListParticipants)

	router.POST("/rooms/:room_id/messages", authMiddleware, messageHandler.PostMessage)
	router.GET("/rooms/:room_id/messages", authMiddleware, messageHandler.GetMessages)
	router.PUT("/rooms/:room_id/messages/read", authMiddleware, messageHandler.MarkRead)
	router.DELETE("/messages/:message_id", authMiddleware, messageHandler.DeleteMessage)
	router.PUT("/messages/:message_id/status", authMiddleware, messageHandler.UpdateStatus)

	router.POST("/devices", authMiddleware, deviceHandler.RegisterToken)
	router.DELETE("/devices/:token", authMiddleware, deviceHandler.RemoveToken)

	router.GET("/ws/rooms/:room_id", roomWS.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	handlers.RegisterDebugRoutes(router, audit, cfg.DebugRoutes)

	zlog.Info().Str("port", cfg.Port).Msg("chat service listening")
	if err := router.Run(":" + cfg.Port); err != nil {
		zlog.Fatal().Err(err).Msg("server error")
	}
}
