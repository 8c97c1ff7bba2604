package statusstore

import (
	"context"

	"github.com/mayowa-kalejaiye/docstream/internal/core"
	"github.com/mayowa-kalejaiye/docstream/internal/models"
)

// NoopStatusStore discards status updates. Used by the sequential backfill
// run, which reports totals itself and has no per-document record to update.
type NoopStatusStore struct{}

func (NoopStatusStore) UpdateStatus(ctx context.Context, documentID, status string, usage models.TokenUsage, message string) error {
	return nil
}

var _ core.StatusStore = NoopStatusStore{}
