package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"finjar/internal/amqp"
	"finjar/internal/config"
)

// finjar-publish pushes a single jar change event onto the configured
// exchange. It stands in for the backend's producer side when testing the
// event-driven invalidation path locally.
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		eventFlag  = flag.String("event", amqp.EventDepositCreated, "event type: jar.created, jar.updated, jar.deleted, deposit.created, deposit.deleted")
		jarFlag    = flag.String("jar", "", "jar ID the event refers to")
		amountFlag = flag.Float64("amount", 0, "deposit amount (deposit events only)")
	)
	flag.Parse()

	if *jarFlag == "" {
		logger.Error("Missing required -jar flag")
		os.Exit(2)
	}
	switch *eventFlag {
	case amqp.EventJarCreated, amqp.EventJarUpdated, amqp.EventJarDeleted,
		amqp.EventDepositCreated, amqp.EventDepositDeleted:
	default:
		logger.Error("Unknown event type", "event", *eventFlag)
		os.Exit(2)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is not configured")
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := amqp.NewJarEventMessage(*eventFlag, *jarFlag, *amountFlag)
	if err := client.PublishJarEvent(ctx, msg); err != nil {
		logger.Error("Failed to publish event", "error", err, "event", msg.Event, "jar_id", msg.JarID)
		os.Exit(1)
	}

	logger.Info("Event published",
		"event", msg.Event,
		"jar_id", msg.JarID,
		"amount", msg.Amount)
}
