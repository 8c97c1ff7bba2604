package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mayowa-kalejaiye/docstream/internal/core"
	"github.com/mayowa-kalejaiye/docstream/internal/models"
)

const enhancerSystemPrompt = `You are a document context specialist. Your task is to briefly describe how a text chunk
fits within a larger document. Provide 2-3 sentences that:
1. Identify the key information in this segment
2. Explain how this segment relates to the broader content
Be concise and specific.
Provide your answer in the document language.
<document>
%s
</document>`

const enhancerUserPrompt = `<chunk>
%s
</chunk>

Please give a short succinct context to situate this chunk within the overall document for the purposes of improving search retrieval of the chunk.
Answer only with the succinct context and nothing else.`

// ContextEnhancer asks a generative model for a short blurb situating each
// segment within its source document and prepends it to the segment content.
// One call per segment keeps prompt size bounded and isolates failure to a
// single segment; the full document rides along as shared system context so
// the model can benefit from prompt caching.
type ContextEnhancer struct {
	model  core.GenerativeModel
	logger *slog.Logger
}

func NewContextEnhancer(model core.GenerativeModel, logger *slog.Logger) *ContextEnhancer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContextEnhancer{model: model, logger: logger}
}

// Enhance returns the segments with EnhancedContent populated and the summed
// token usage of all successful model calls. A failed call falls back to the
// raw segment content with zero usage; this stage never aborts the pipeline.
func (e *ContextEnhancer) Enhance(ctx context.Context, segments []models.Segment, fullDocument string) ([]models.Segment, models.TokenUsage) {
	system := fmt.Sprintf(enhancerSystemPrompt, fullDocument)

	var total models.TokenUsage
	for i := range segments {
		seg := &segments[i]

		reply, err := e.model.Converse(ctx, system, fmt.Sprintf(enhancerUserPrompt, seg.Content))
		if err != nil {
			e.logger.Error("segment enhancement failed", "segment_id", seg.ID, "error", err)
			seg.EnhancedContent = seg.Content
			seg.TokenUsage = models.TokenUsage{}
			continue
		}

		description := strings.TrimSpace(reply.Text)
		seg.EnhancedContent = fmt.Sprintf("Context: %s\n\nContent: %s", description, seg.Content)
		seg.TokenUsage = reply.Usage
		total = total.Add(reply.Usage)
	}

	return segments, total
}
