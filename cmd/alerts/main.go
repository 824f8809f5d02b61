package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kofi-alerts/config"
	configRedis "kofi-alerts/config/redis"
	"kofi-alerts/internal/alert"
	alertUC "kofi-alerts/internal/alert/usecase"
	"kofi-alerts/internal/client"
	"kofi-alerts/internal/httpserver"
	"kofi-alerts/internal/negotiate"
	"kofi-alerts/pkg/discord"
	"kofi-alerts/pkg/log"
	"kofi-alerts/pkg/signalr"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config:", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
		Name:         "kofi-alerts",
	})

	// Create context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, stop, cfg, logger); err != nil {
		logger.Errorf(ctx, "kofi-alerts exited: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stop context.CancelFunc, cfg *config.Config, logger log.Logger) error {
	logger.Infof(ctx, "Starting Ko-fi alerts client for page %s", negotiate.Redact(cfg.Kofi.PageID, 2))

	// Discord webhook (optional)
	var discordClient discord.IDiscord
	if cfg.Discord.WebhookURL != "" {
		dcfg := discord.DefaultConfig()
		dcfg.DefaultUsername = cfg.Discord.Username
		d, err := discord.NewWithConfig(logger, cfg.Discord.WebhookURL, dcfg)
		if err != nil {
			logger.Warnf(ctx, "Discord webhook not configured (optional): %v", err)
		} else {
			discordClient = d
			defer discordClient.Close()
			logger.Info(ctx, "Discord webhook initialized")
		}
	}

	// Redis sink (optional)
	redisClient, err := configRedis.Connect(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer configRedis.Disconnect()
		logger.Infof(ctx, "Redis connected to %s:%d", cfg.Redis.Host, cfg.Redis.Port)
	}

	uc := alertUC.New(logger, alertUC.Options{
		PageID:       cfg.Kofi.PageID,
		LastAlertTTL: cfg.Redis.LastAlertTTL,
		Redis:        redisClient,
		Discord:      discordClient,
	})

	alerts, err := client.New(client.Options{
		UserKey: cfg.Kofi.UserKey,
		PageID:  cfg.Kofi.PageID,
		Negotiator: negotiate.New(negotiate.Config{
			TokenURL:       cfg.Kofi.TokenURL,
			AccessTokenURL: cfg.Kofi.AccessTokenURL,
			Timeout:        cfg.Kofi.NegotiateTimeout,
		}),
		HubFactory: client.SignalRFactory(signalr.Options{
			KeepAliveInterval: cfg.SignalR.KeepAliveInterval,
			ServerTimeout:     cfg.SignalR.ServerTimeout,
			HandshakeTimeout:  cfg.SignalR.HandshakeTimeout,
			ReconnectDelays:   cfg.SignalR.Delays(),
			Logger:            logger,
		}),
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	alerts.OnReady(func() {
		logger.Info(ctx, "Ko-fi alerts session ready")
	})
	alerts.OnAlert(func(a alert.Alert) {
		if err := uc.Handle(ctx, a); err != nil {
			logger.Errorf(ctx, "alert.usecase.Handle: %v", err)
		}
	})
	alerts.OnClose(func(err error) {
		if err != nil {
			logger.Errorf(ctx, "Ko-fi alerts session closed: %v", err)
			if discordClient != nil {
				reportCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
				defer cancel()
				_ = discordClient.SendError(reportCtx, "Ko-fi alerts session closed", "The hub connection could not be kept alive.", err)
			}
		}
		// A closed session ends the process; a supervisor restarts it.
		stop()
	})

	// Status HTTP server
	var srv *httpserver.HTTPServer
	if cfg.Server.Enabled {
		srv, err = httpserver.New(logger, httpserver.Config{
			Host:    cfg.Server.Host,
			Port:    cfg.Server.Port,
			Mode:    cfg.Server.Mode,
			Status:  alerts,
			Redis:   redisClient,
			Discord: discordClient,
		})
		if err != nil {
			return fmt.Errorf("create http server: %w", err)
		}
	}

	if err := alerts.Connect(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	serverDone := make(chan error, 1)
	if srv != nil {
		go func() { serverDone <- srv.Run(ctx) }()
	} else {
		close(serverDone)
	}

	<-ctx.Done()
	logger.Info(ctx, "Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := alerts.Disconnect(shutdownCtx); err != nil {
		logger.Errorf(shutdownCtx, "client.Disconnect: %v", err)
	}
	if err := uc.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(shutdownCtx, "alert.usecase.Shutdown: %v", err)
	}

	return <-serverDone
}
