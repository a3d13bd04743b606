package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"letna/metaverse/internal/app"
	"letna/metaverse/internal/config"
	"letna/metaverse/internal/db"
	"letna/metaverse/internal/logger"
	"letna/metaverse/internal/render"
	"letna/metaverse/internal/session"
	"letna/metaverse/internal/telemetry"
	"letna/metaverse/internal/transport"
	"letna/metaverse/internal/world"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load("", os.Args[1:])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	instanceID := uuid.New().String()

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, telemetry.Options{Endpoint: cfg.OTLPEndpoint, InstanceID: instanceID})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	logFile, err := logger.Init(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logFile.Close()

	renderer, closeRenderer, err := newRenderer(ctx, cfg, instanceID)
	if err != nil {
		return err
	}
	defer closeRenderer()

	relay := transport.NewWebSocket(transport.Options{
		URL:            cfg.RelayURL,
		MaxElapsedTime: cfg.ReconnectMaxElapsed,
	})
	if err := relay.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}
	defer relay.Close()

	client := app.New(relay, renderer, app.Options{
		DeepLinkRoomID: cfg.RoomID,
		Form: session.JoinParams{
			RoomID:       cfg.RoomID,
			RoomPassword: cfg.RoomPassword,
			PlayerName:   cfg.PlayerName,
			Color:        cfg.Color,
		},
		AutoJoin:        cfg.AutoJoin,
		TickInterval:    cfg.TickInterval,
		JoinTimeout:     cfg.JoinTimeout,
		SyncMode:        world.SyncMode(cfg.SyncMode),
		MaxSpeed:        cfg.MaxSpeed,
		MaxAngularSpeed: cfg.MaxAngularSpeed,
	})

	gin.SetMode(gin.ReleaseMode)
	httpServer := &http.Server{
		Addr:              cfg.ControlAddr,
		Handler:           client.UI().Engine(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("control api started", "http.addr", cfg.ControlAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("control api stopped", "error", err)
			stop()
		}
	}()

	slog.Info("client running", "relay.url", cfg.RelayURL, "renderer", cfg.Renderer, "sync.mode", cfg.SyncMode)
	runErr := client.Run(ctx)

	slog.Info("shutting down client")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("control api forced to shutdown", "error", err)
	}

	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

func newRenderer(ctx context.Context, cfg *config.Config, instanceID string) (world.Renderer, func(), error) {
	switch cfg.Renderer {
	case "redis":
		rdb, err := db.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		r := render.NewRedis(rdb, 0)
		return r, func() {
			r.Close()
			rdb.Close()
		}, nil
	case "mqtt":
		client, err := render.DialMQTT(cfg.MQTTBroker, "metaverse-"+instanceID, 10*time.Second)
		if err != nil {
			return nil, nil, err
		}
		r := render.NewMQTT(client, 0)
		return r, func() {
			r.Close()
			client.Disconnect(250)
		}, nil
	default:
		return render.NewLog(nil), func() {}, nil
	}
}
