package main

import (
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/logging"
	"storefront/pkg/rabbitmq"

	log "github.com/sirupsen/logrus"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stdout); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	// --- RabbitMQ (optional) ---
	var opts app.Options
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.DefaultConfig(cfg.RabbitMQURL))
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		opts.Publisher = mqClient
	} else {
		log.Info("RABBITMQ_URL not set, activity events disabled")
	}

	a, err := app.New(cfg, opts)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// --- Reservation status consumer ---
	if mqClient != nil {
		if err := mqClient.ConsumeReservationStatus(app.ReservationStatusHandler(a.Reservations)); err != nil {
			log.Errorf("Failed to start reservation status consumer: %v", err)
		}
	}

	// --- Start HTTP Server ---
	log.WithFields(log.Fields{"port": cfg.AppPort, "api": cfg.APIBaseURL}).Info("Starting storefront")

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := a.Fiber.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Info("Shutting down server...")

	if err := a.Fiber.Shutdown(); err != nil {
		log.Errorf("Error during Fiber shutdown: %v", err)
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("Server gracefully stopped")
}
