package ingestion

import "testing"

func TestExtract_EmptyInput(t *testing.T) {
	if got := NewDocconvExtractor(nil).Extract(nil); got != "" {
		t.Errorf("expected empty text for empty input, got %q", got)
	}
}

func TestExtract_UnparseableInputAbsorbed(t *testing.T) {
	// Not a PDF; extraction must fail quietly with empty text, never panic
	// or return an error to the pipeline.
	if got := NewDocconvExtractor(nil).Extract([]byte("definitely not a pdf")); got != "" {
		t.Errorf("expected empty text for garbage input, got %q", got)
	}
}
