package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"gaming-notification-service/internal/config"
	"gaming-notification-service/internal/event"
	"gaming-notification-service/internal/handlers"
	"gaming-notification-service/internal/notification"
	"gaming-notification-service/internal/push/fcm"
	"gaming-notification-service/internal/registry"
	"gaming-notification-service/internal/registry/redisstore"
)

func setupLogging() (*os.File, error) {
	logDir := filepath.Join("/gaming", "log", "notification_service")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logFileName := fmt.Sprintf("log_%s.log", time.Now().Format("2006-01-02"))
	file, err := os.OpenFile(filepath.Join(logDir, logFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(io.MultiWriter(os.Stdout, file), nil)))
	return file, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	cfg := config.New()
	ctx := context.Background()

	store, err := redisstore.New(cfg.RedisCfg.Host, cfg.RedisCfg.Port, cfg.RedisCfg.Password, cfg.RedisCfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer store.Close()

	fcmClient, err := fcm.NewClient(ctx, &fcm.Config{
		CredentialsPath: cfg.FirebaseCfg.CredentialsPath,
		ProjectID:       cfg.FirebaseCfg.ProjectID,
	})
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	registrar := registry.NewService(store, fcmClient)
	resolver := notification.NewResolver(nil)
	dispatcher := notification.NewDispatcher(fcmClient)
	router := notification.NewRouter(resolver, dispatcher)

	rabbit, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer rabbit.Close()

	publisher := event.NewPublisher(rabbit)

	consumer, err := event.NewQueueConsumer(rabbit, &event.ConsumerConfig{
		PrefetchCount: cfg.PrefetchCount,
	}, router, registrar)
	if err != nil {
		log.Fatalf("Failed to setup queue consumer: %v", err)
	}

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	go func() {
		if err := consumer.StartConsuming(consumerCtx); err != nil {
			slog.Error("Consumer stopped", "error", err)
		}
	}()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Get("/checkhealth", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("Gaming notification service is healthy")
	})

	handlers.NewNotificationHandler(publisher, router).RegisterRoutes(app)
	handlers.NewDeviceHandler(registrar).RegisterRoutes(app)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Starting server", "port", cfg.Port)
		if err := app.Listen(fmt.Sprintf("0.0.0.0:%s", cfg.Port)); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	<-shutdownChan
	slog.Info("Shutting down server...")
	stopConsumer()
	if err := app.Shutdown(); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}
