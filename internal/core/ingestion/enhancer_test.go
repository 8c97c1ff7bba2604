package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mayowa-kalejaiye/docstream/internal/models"
)

type mockModel struct {
	fn      func(systemPrompt, userMessage string) (*models.ModelReply, error)
	systems []string
	users   []string
}

func (m *mockModel) Converse(ctx context.Context, systemPrompt, userMessage string) (*models.ModelReply, error) {
	m.systems = append(m.systems, systemPrompt)
	m.users = append(m.users, userMessage)
	return m.fn(systemPrompt, userMessage)
}

func testSegments() []models.Segment {
	return []models.Segment{
		{ID: "doc_segment_1", Content: "First segment text.", Position: 1},
		{ID: "doc_segment_2", Content: "Second segment text.", Position: 2},
	}
}

func TestEnhance_AddsContextAndSumsUsage(t *testing.T) {
	usages := []models.TokenUsage{
		{InputTokens: 100, OutputTokens: 20, CacheReadInputTokens: 50, CacheWriteInputTokens: 10},
		{InputTokens: 200, OutputTokens: 30, CacheReadInputTokens: 150, CacheWriteInputTokens: 0},
	}
	call := 0
	model := &mockModel{fn: func(_, _ string) (*models.ModelReply, error) {
		reply := &models.ModelReply{Text: fmt.Sprintf(" description %d ", call+1), Usage: usages[call]}
		call++
		return reply, nil
	}}

	enhancer := NewContextEnhancer(model, nil)
	segments, total := enhancer.Enhance(context.Background(), testSegments(), "the full document text")

	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}

	wantFirst := "Context: description 1\n\nContent: First segment text."
	if segments[0].EnhancedContent != wantFirst {
		t.Errorf("expected enhanced content %q, got %q", wantFirst, segments[0].EnhancedContent)
	}
	if segments[0].TokenUsage != usages[0] {
		t.Errorf("segment 1 usage not recorded: %+v", segments[0].TokenUsage)
	}
	if segments[1].TokenUsage != usages[1] {
		t.Errorf("segment 2 usage not recorded: %+v", segments[1].TokenUsage)
	}

	want := usages[0].Add(usages[1])
	if total != want {
		t.Errorf("expected total usage %+v, got %+v", want, total)
	}

	// The full document rides in the system prompt; the segment content in
	// the user message.
	if !strings.Contains(model.systems[0], "the full document text") {
		t.Error("system prompt missing full document")
	}
	if !strings.Contains(model.users[1], "Second segment text.") {
		t.Error("user message missing segment content")
	}
}

func TestEnhance_FailedSegmentFallsBack(t *testing.T) {
	usage := models.TokenUsage{InputTokens: 10, OutputTokens: 5}
	call := 0
	model := &mockModel{fn: func(_, _ string) (*models.ModelReply, error) {
		call++
		if call == 2 {
			return nil, errors.New("throttled")
		}
		return &models.ModelReply{Text: "desc", Usage: usage}, nil
	}}

	segments, total := NewContextEnhancer(model, nil).Enhance(context.Background(), testSegments(), "doc")

	if segments[1].EnhancedContent != segments[1].Content {
		t.Errorf("failed segment should fall back to raw content, got %q", segments[1].EnhancedContent)
	}
	if segments[1].TokenUsage != (models.TokenUsage{}) {
		t.Errorf("failed segment should record zero usage, got %+v", segments[1].TokenUsage)
	}
	if total != usage {
		t.Errorf("total should count only successful calls: %+v", total)
	}
}

func TestEnhance_AllCallsFail(t *testing.T) {
	model := &mockModel{fn: func(_, _ string) (*models.ModelReply, error) {
		return nil, errors.New("model unavailable")
	}}

	segments, total := NewContextEnhancer(model, nil).Enhance(context.Background(), testSegments(), "doc")

	if total != (models.TokenUsage{}) {
		t.Errorf("expected zero total usage, got %+v", total)
	}
	for _, seg := range segments {
		if seg.EnhancedContent != seg.Content {
			t.Errorf("segment %s: expected fallback to raw content", seg.ID)
		}
	}
}

func TestEnhance_NoSegments(t *testing.T) {
	model := &mockModel{fn: func(_, _ string) (*models.ModelReply, error) {
		t.Fatal("model should not be called")
		return nil, nil
	}}

	segments, total := NewContextEnhancer(model, nil).Enhance(context.Background(), nil, "doc")
	if len(segments) != 0 || total != (models.TokenUsage{}) {
		t.Errorf("expected no work for no segments")
	}
}
