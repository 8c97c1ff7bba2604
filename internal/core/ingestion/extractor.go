package ingestion

import (
	"bytes"
	"log/slog"
	"regexp"
	"strings"

	"code.sajari.com/docconv"

	"github.com/mayowa-kalejaiye/docstream/internal/core"
)

var whitespaceRuns = regexp.MustCompile(`\s+`)

var _ core.TextExtractor = (*DocconvExtractor)(nil)

// DocconvExtractor extracts plain text from PDFs via docconv.
type DocconvExtractor struct {
	contentType string
	logger      *slog.Logger
}

func NewDocconvExtractor(logger *slog.Logger) *DocconvExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocconvExtractor{contentType: "application/pdf", logger: logger}
}

// Extract converts document bytes to a single normalized text string.
// Whitespace runs collapse to single spaces and the result is trimmed.
// Any parse failure is logged and absorbed; the caller gets an empty
// string and proceeds with a zero-segment outcome.
func (e *DocconvExtractor) Extract(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	res, err := docconv.Convert(bytes.NewReader(data), e.contentType, false)
	if err != nil {
		e.logger.Error("text extraction failed", "content_type", e.contentType, "error", err)
		return ""
	}

	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(res.Body, " "))
}
