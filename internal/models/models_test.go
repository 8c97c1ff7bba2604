package models

import "testing"

func TestTokenUsageAdd(t *testing.T) {
	a := TokenUsage{InputTokens: 100, OutputTokens: 20, CacheReadInputTokens: 50, CacheWriteInputTokens: 5}
	b := TokenUsage{InputTokens: 30, OutputTokens: 7, CacheReadInputTokens: 10, CacheWriteInputTokens: 1}

	got := a.Add(b)
	want := TokenUsage{InputTokens: 130, OutputTokens: 27, CacheReadInputTokens: 60, CacheWriteInputTokens: 6}
	if got != want {
		t.Errorf("Add = %+v, want %+v", got, want)
	}

	// The zero record is the identity element.
	if a.Add(TokenUsage{}) != a {
		t.Error("adding the zero record must not change the value")
	}
}

func TestSegmentIndexedContent(t *testing.T) {
	seg := Segment{Content: "raw"}
	if seg.IndexedContent() != "raw" {
		t.Error("unenhanced segment should index its raw content")
	}

	seg.EnhancedContent = "Context: c\n\nContent: raw"
	if seg.IndexedContent() != seg.EnhancedContent {
		t.Error("enhanced segment should index its enhanced content")
	}
}
