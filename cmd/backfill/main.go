package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mayowa-kalejaiye/docstream/internal/app"
	"github.com/mayowa-kalejaiye/docstream/internal/config"
	"github.com/mayowa-kalejaiye/docstream/internal/services"
)

// backfill runs the ingestion pipeline over every PDF already sitting in
// the data bucket, one file at a time, and reports run totals.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		cancel()
	}()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.LoadConfig()
	if cfg.DataBucket == "" {
		logger.Error("DATA_BUCKET not set")
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

	seq := services.NewSequentialProcessor(application.Objects, application.Processor, cfg.DataBucket, logger)
	totals, err := seq.Run(ctx)
	if err != nil {
		logger.Error("backfill failed", "error", err)
		os.Exit(1)
	}

	logger.Info("backfill complete",
		"files_processed", totals.FilesProcessed,
		"segments_indexed", totals.SegmentsIndexed,
		"input_tokens", totals.TokenUsage.InputTokens,
		"output_tokens", totals.TokenUsage.OutputTokens,
		"cache_read_input_tokens", totals.TokenUsage.CacheReadInputTokens,
		"cache_write_input_tokens", totals.TokenUsage.CacheWriteInputTokens,
	)
}
