package core

import (
	"context"

	"github.com/mayowa-kalejaiye/docstream/internal/models"
)

// TextExtractor converts raw document bytes into normalized plain text.
// Extraction is best-effort: an unreadable document yields an empty string,
// never an error, so the pipeline can finish with a zero-segment outcome.
type TextExtractor interface {
	Extract(data []byte) string
}

// GenerativeModel issues one conversational model call with a system prompt
// and a single user message, returning the reply text and token usage.
type GenerativeModel interface {
	Converse(ctx context.Context, systemPrompt, userMessage string) (*models.ModelReply, error)
}

// EmbeddingProvider converts text into a fixed-dimension vector.
// A failed call returns an error the caller must treat as "skip this text",
// not as a fatal pipeline condition.
type EmbeddingProvider interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Indexer writes a batch of documents to the backing search collection.
// A non-nil error means the whole batch failed; the documents are not
// partially applied from the caller's point of view and are not retried.
type Indexer interface {
	IndexBatch(ctx context.Context, docs []models.IndexDocument) error
}

// ObjectStore abstracts S3 or any blob storage holding source documents.
type ObjectStore interface {
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
	ListKeys(ctx context.Context, bucket, suffix string) ([]string, error)
}

// StatusStore records per-document processing status for a polling client.
// Updates are best-effort; callers log and continue on error.
type StatusStore interface {
	UpdateStatus(ctx context.Context, documentID, status string, usage models.TokenUsage, message string) error
}

// DocumentProcessor runs the full ingestion pipeline over one document and
// reports how many segments were indexed plus aggregate token usage.
// Stage failures are absorbed per segment or per batch; the counts reflect
// whatever made it into the index.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, content []byte, documentName, sourceURI string) (int, models.TokenUsage)
}
