package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"whatsapp-engine/internal/api"
	"whatsapp-engine/internal/composer"
	"whatsapp-engine/internal/config"
	"whatsapp-engine/internal/database"
	"whatsapp-engine/internal/queue"
	"whatsapp-engine/internal/webhook"
	"whatsapp-engine/internal/whatsapp"
	"whatsapp-engine/internal/window"
	"whatsapp-engine/internal/ws"
	"whatsapp-engine/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(logger.LogConfig{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open database")
	}
	if err := database.SyncConfig(db, cfg); err != nil {
		logger.Warn().Err(err).Msg("Failed to sync stored settings")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	messages := database.NewMessageStore(db)
	contacts := database.NewContactDirectory(db)
	catalog := database.NewTemplateCatalog(db)

	tracker := window.NewTracker()
	refresher := window.NewRefresher(tracker, database.NewWindowSource(contacts), cfg.WindowRefreshSchedule)
	if err := refresher.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start window refresher")
	}
	defer refresher.Stop()

	client := whatsapp.NewClient(cfg)

	var delivery composer.Delivery = composer.Direct{Sender: client}
	if cfg.DeliveryMode == config.DeliveryQueue {
		conn, err := queue.NewConnection(cfg.RabbitMQURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to RabbitMQ")
		}
		defer conn.Close()

		publisher, err := queue.NewPublisher(conn, cfg.DeliveryQueue)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create delivery publisher")
		}
		consumer, err := queue.NewConsumer(conn, cfg.DeliveryQueue, queue.NewWorker(client, messages).Handle)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create delivery consumer")
		}
		if err := consumer.Start(ctx); err != nil {
			logger.Fatal().Err(err).Msg("Failed to start delivery consumer")
		}
		defer consumer.Stop()
		delivery = publisher
	}
	logger.Info().Str("mode", cfg.DeliveryMode).Msg("Outbound delivery configured")

	hub := ws.NewHub()
	go hub.Run(ctx)

	engine := composer.New(tracker, delivery, messages)
	webhookHandler := webhook.NewHandler(cfg, webhook.NewIngestor(messages, contacts, tracker, hub))

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	// Webhook Routes
	r.GET("/webhook", webhookHandler.VerifyWebhook)
	r.POST("/webhook", webhookHandler.HandleMessage)

	r.GET("/ws", func(c *gin.Context) {
		hub.ServeWs(c.Writer, c.Request)
	})

	api.Register(r.Group("/api"), api.Deps{
		Messages:  messages,
		Contacts:  contacts,
		Templates: catalog,
		Source:    client,
		Media:     client,
		Composer:  engine,
		Notifier:  hub,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "Cache-Control", "X-Requested-With"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	return c
}
