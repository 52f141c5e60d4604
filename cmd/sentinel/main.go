package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/nightkernel/sentinel/pkg/config"
	handlers "github.com/nightkernel/sentinel/pkg/handlers/http"
	"github.com/nightkernel/sentinel/pkg/infra/alerting"
	"github.com/nightkernel/sentinel/pkg/infra/blocklist"
	"github.com/nightkernel/sentinel/pkg/infra/countermeasure"
	"github.com/nightkernel/sentinel/pkg/infra/deception"
	"github.com/nightkernel/sentinel/pkg/infra/httpx"
	"github.com/nightkernel/sentinel/pkg/infra/incidentlog"
	infraLogger "github.com/nightkernel/sentinel/pkg/infra/logger"
	"github.com/nightkernel/sentinel/pkg/infra/profilestore"
	"github.com/nightkernel/sentinel/pkg/infra/proxyguard"
	"github.com/nightkernel/sentinel/pkg/infra/session"
	"github.com/nightkernel/sentinel/pkg/infra/settingsstore"
	"github.com/nightkernel/sentinel/pkg/infra/storage"
	"github.com/nightkernel/sentinel/pkg/middleware"
	"github.com/nightkernel/sentinel/pkg/server"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger := infraLogger.NewLogger()

	if err := config.Load("./config"); err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	cfg := config.GetConfig()

	storageClient, err := storage.NewClient(storage.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if err != nil {
		logger.Fatalf("failed to initialize storage: %v", err)
	}

	// stores
	settingsStore := settingsstore.NewStore(storageClient, logger)
	profiles := profilestore.NewStore(storageClient, logger)
	blocked := blocklist.NewStore(storageClient, logger)
	incidents := incidentlog.NewLog(storageClient, logger, settingsStore.Load(context.Background()).MaxIncidents)

	// deception
	alarm := deception.NewAlarm(storageClient, logger)
	canary := deception.NewCanary(storageClient, logger)

	// alerting
	var senders []alerting.Sender
	if cfg.Alerts.WebhookURL != "" {
		senders = append(senders, alerting.NewWebhookSender(cfg.Alerts.WebhookURL))
	}
	if cfg.Alerts.SMTPHost != "" {
		senders = append(senders, alerting.NewEmailSender(cfg.Alerts))
	}
	alerter := alerting.NewAlerter(storageClient, logger, senders...)

	dispatcher := countermeasure.NewDispatcher(blocked, logger)
	sessions := session.NewManager(cfg.Server.SecretKey, cfg.Server.AdminPasswordHash)

	middlewareTransport := middleware.Transport{
		IdentityMiddleware:  middleware.NewIdentityMiddleware(logger),
		BlocklistMiddleware: middleware.NewBlocklistMiddleware(blocked, logger),
		SessionMiddleware:   middleware.NewSessionMiddleware(logger, sessions),
		RateLimitMiddleware: middleware.NewRateLimitMiddleware(storageClient, settingsStore, profiles, incidents, logger),
		ThreatMiddleware:    middleware.NewThreatMiddleware(settingsStore, profiles, incidents, alarm, alerter, dispatcher, blocked, logger),
		AdminAuthMiddleware: middleware.NewAdminAuthMiddleware(logger, sessions),
	}

	guard := proxyguard.New()
	imageFetcher := httpx.NewFetcher("image-proxy")
	driveFetcher := httpx.NewFetcher("drive-proxy")

	handlerTransport := handlers.HandlerTransport{
		GetContentHandler:     handlers.NewGetContentHandler(logger, storageClient, canary, cfg.Server.PublicBaseURL),
		RobotsHandler:         handlers.NewRobotsHandler(logger),
		PixelHandler:          handlers.NewPixelHandler(logger),
		CanaryCallbackHandler: handlers.NewCanaryCallbackHandler(logger, canary),
		ContactHandler:        handlers.NewContactHandler(logger, storageClient),
		ImageProxyHandler:     handlers.NewImageProxyHandler(logger, guard, imageFetcher),
		DriveDownloadHandler:  handlers.NewDriveDownloadHandler(logger, driveFetcher, cfg.Proxy.DriveAPIKey),
		DriveFolderHandler:    handlers.NewDriveFolderHandler(logger, driveFetcher, cfg.Proxy.DriveAPIKey),

		LoginHandler:            handlers.NewLoginHandler(logger, sessions),
		SetContentHandler:       handlers.NewSetContentHandler(logger, storageClient),
		ListBlocklistHandler:    handlers.NewListBlocklistHandler(logger, blocked),
		BlockIdentityHandler:    handlers.NewBlockIdentityHandler(logger, blocked),
		UnblockIdentityHandler:  handlers.NewUnblockIdentityHandler(logger, blocked),
		ListIncidentsHandler:    handlers.NewListIncidentsHandler(logger, incidents),
		GetSettingsHandler:      handlers.NewGetSettingsHandler(logger, settingsStore),
		UpdateSettingsHandler:   handlers.NewUpdateSettingsHandler(logger, settingsStore),
		GetProfileHandler:       handlers.NewGetProfileHandler(logger, profiles),
		ListProfilesHandler:     handlers.NewListProfilesHandler(logger, profiles),
		DeleteProfileHandler:    handlers.NewDeleteProfileHandler(logger, profiles),
		ListCanaryAlertsHandler: handlers.NewListCanaryAlertsHandler(logger, canary),
	}

	srv := server.NewSentinelServer(server.SentinelServerDI{
		MiddlewareTransport: middlewareTransport,
		HandlerTransport:    handlerTransport,
		Config:              cfg,
		Logger:              logger,
	})

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatalf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := srv.Shutdown(); err != nil {
		logger.WithError(err).Error("failed to shut down cleanly")
	}
}
