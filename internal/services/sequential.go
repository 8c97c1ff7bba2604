package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mayowa-kalejaiye/docstream/internal/core"
	"github.com/mayowa-kalejaiye/docstream/internal/models"
)

// SequentialProcessor drives the pipeline over every PDF in the data
// bucket in one single-threaded pass, accumulating run totals. A file that
// fails to download is logged and skipped; one bad file never aborts the
// run.
type SequentialProcessor struct {
	objects   core.ObjectStore
	processor core.DocumentProcessor
	bucket    string
	logger    *slog.Logger
}

func NewSequentialProcessor(objects core.ObjectStore, processor core.DocumentProcessor, bucket string, logger *slog.Logger) *SequentialProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &SequentialProcessor{
		objects:   objects,
		processor: processor,
		bucket:    bucket,
		logger:    logger,
	}
}

// Run lists and processes the whole collection, returning per-run totals.
// The returned error covers only the listing step; per-file failures are
// absorbed.
func (s *SequentialProcessor) Run(ctx context.Context) (models.RunTotals, error) {
	var totals models.RunTotals

	logger := s.logger.With("run_id", uuid.NewString(), "bucket", s.bucket)

	keys, err := s.objects.ListKeys(ctx, s.bucket, ".pdf")
	if err != nil {
		return totals, fmt.Errorf("list bucket %s: %w", s.bucket, err)
	}
	if len(keys) == 0 {
		logger.Info("no PDF files found in bucket")
		return totals, nil
	}

	for _, key := range keys {
		content, err := s.objects.GetFile(ctx, s.bucket, key)
		if err != nil {
			logger.Error("skipping file, fetch failed", "key", key, "error", err)
			continue
		}

		sourceURI := fmt.Sprintf("s3://%s/%s", s.bucket, key)
		indexed, usage := s.processor.ProcessDocument(ctx, content, key, sourceURI)

		totals.FilesProcessed++
		totals.SegmentsIndexed += indexed
		totals.TokenUsage = totals.TokenUsage.Add(usage)

		logger.Info("processed file", "key", key, "segments_indexed", indexed)
	}

	logger.Info("run complete",
		"files_processed", totals.FilesProcessed,
		"segments_indexed", totals.SegmentsIndexed,
		"input_tokens", totals.TokenUsage.InputTokens,
		"output_tokens", totals.TokenUsage.OutputTokens,
	)
	return totals, nil
}
