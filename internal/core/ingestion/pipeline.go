package ingestion

import (
	"context"
	"log/slog"
	"time"

	"github.com/mayowa-kalejaiye/docstream/internal/core"
	"github.com/mayowa-kalejaiye/docstream/internal/models"
)

// Config tunes the per-document pipeline.
//
// SegmentSize:   maximum characters per segment.
// BatchSize:     documents per bulk index request.
// EnableContext: whether segments get model-generated context before indexing.
type Config struct {
	SegmentSize   int
	BatchSize     int
	EnableContext bool
}

// Processor runs the ingestion pipeline for one document at a time:
// extract -> segment -> enhance -> embed -> bulk index. All collaborators
// are injected at construction; the processor holds no cross-document state.
type Processor struct {
	extractor core.TextExtractor
	segmenter *Segmenter
	enhancer  *ContextEnhancer
	embedder  core.EmbeddingProvider
	indexer   core.Indexer
	cfg       Config
	logger    *slog.Logger
}

var _ core.DocumentProcessor = (*Processor)(nil)

func NewProcessor(
	extractor core.TextExtractor,
	model core.GenerativeModel,
	embedder core.EmbeddingProvider,
	indexer core.Indexer,
	cfg Config,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	return &Processor{
		extractor: extractor,
		segmenter: NewSegmenter(cfg.SegmentSize),
		enhancer:  NewContextEnhancer(model, logger),
		embedder:  embedder,
		indexer:   indexer,
		cfg:       cfg,
		logger:    logger,
	}
}

// ProcessDocument runs the pipeline over one document's raw bytes and
// returns the number of segments actually indexed plus token usage totals.
// A document with no extractable text is a success with zero segments.
// Per-segment and per-batch failures are absorbed; the pipeline always runs
// to completion.
func (p *Processor) ProcessDocument(ctx context.Context, content []byte, documentName, sourceURI string) (int, models.TokenUsage) {
	var usage models.TokenUsage

	text := p.extractor.Extract(content)
	if text == "" {
		p.logger.Warn("no text extracted", "document", documentName)
		return 0, usage
	}

	segments := p.segmenter.Segment(text, documentName)
	p.logger.Info("created segments", "document", documentName, "count", len(segments))

	if p.cfg.EnableContext {
		segments, usage = p.enhancer.Enhance(ctx, segments, text)
	}

	indexed := p.indexSegments(ctx, segments, documentName, sourceURI)
	return indexed, usage
}

// indexSegments embeds each segment and flushes them to the index in batches.
// Segments whose embedding fails are skipped; a failed batch is logged,
// contributes nothing to the count, and is not retried.
func (p *Processor) indexSegments(ctx context.Context, segments []models.Segment, documentName, sourceURI string) int {
	batch := make([]models.IndexDocument, 0, p.cfg.BatchSize)
	indexed := 0

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := p.indexer.IndexBatch(ctx, batch); err != nil {
			p.logger.Error("bulk indexing failed", "document", documentName, "batch_size", len(batch), "error", err)
		} else {
			indexed += len(batch)
		}
		batch = batch[:0]
	}

	for i := range segments {
		seg := &segments[i]
		content := seg.IndexedContent()

		vector, err := p.embedder.EmbedText(ctx, content)
		if err != nil {
			p.logger.Error("skipping segment, embedding failed", "segment_id", seg.ID, "error", err)
			continue
		}

		batch = append(batch, models.IndexDocument{
			Content:          content,
			ContentEmbedding: vector,
			Metadata: models.IndexDocMeta{
				Source:    sourceURI,
				DocID:     documentName,
				ChunkID:   seg.ID,
				Timestamp: time.Now().Format(time.RFC3339),
			},
		})

		if len(batch) >= p.cfg.BatchSize {
			flush()
		}
	}
	flush()

	return indexed
}
