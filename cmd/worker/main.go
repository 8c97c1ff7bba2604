package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/mayowa-kalejaiye/docstream/internal/app"
	"github.com/mayowa-kalejaiye/docstream/internal/config"
	"github.com/mayowa-kalejaiye/docstream/internal/services"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		cancel()
	}()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.LoadConfig()
	if cfg.QueueURL == "" {
		logger.Error("SQS_QUEUE_URL not set")
		os.Exit(1)
	}

	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := application.EnsureIndex(ctx); err != nil {
		logger.Error("index bootstrap failed", "error", err)
		os.Exit(1)
	}

	consumer := services.NewQueueConsumer(services.QueueConsumerConfig{
		Queue:       sqs.NewFromConfig(application.AwsCfg),
		QueueURL:    cfg.QueueURL,
		Objects:     application.Objects,
		Processor:   application.Processor,
		Statuses:    application.Statuses,
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
	})

	if err := consumer.Run(ctx); err != nil {
		logger.Error("consumer stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("shutting down...")
}
