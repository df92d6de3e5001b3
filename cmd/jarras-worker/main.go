package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"jarras/internal/amqp"
	"jarras/internal/cli"
	"jarras/internal/log"
	"jarras/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger().WithComponent(log.ComponentAMQP)
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := worker.NewAuditWorker()

	logger.Info("Starting jarras-worker", log.FieldOperation, log.OpStartup, "queue", cfg.AMQPQueue)
	err = client.ConsumeLedgerEvents(ctx, w.HandleLedgerEvent)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Event consumption stopped", log.FieldError, err)
		os.Exit(1)
	}

	counts, lastTotal, seen := w.Stats()
	logger.Info("Worker stopped",
		log.FieldOperation, log.OpShutdown,
		"events_seen", seen,
		"event_counts", counts,
		log.FieldTotalCents, lastTotal)
}
