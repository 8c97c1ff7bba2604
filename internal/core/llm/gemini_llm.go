package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/mayowa-kalejaiye/docstream/internal/core"
	"github.com/mayowa-kalejaiye/docstream/internal/models"
)

// GeminiConverse is the non-AWS generative provider, for deployments that
// run the pipeline outside Bedrock. Prompt-cache accounting is always zero
// here; this SDK version does not report cached token counts.
type GeminiConverse struct {
	client    *genai.Client
	modelName string
}

func NewGeminiConverse(ctx context.Context, apiKey, modelName string) (*GeminiConverse, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiConverse{client: cl, modelName: modelName}, nil
}

func (g *GeminiConverse) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiConverse) Converse(ctx context.Context, systemPrompt, userMessage string) (*models.ModelReply, error) {
	m := g.client.GenerativeModel(g.modelName)
	m.SetTemperature(converseTemperature)
	m.SetTopP(converseTopP)
	if systemPrompt != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}

	resp, err := m.GenerateContent(ctx, genai.Text(userMessage))
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini generate: empty response")
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}

	reply := &models.ModelReply{Text: b.String()}
	if resp.UsageMetadata != nil {
		reply.Usage = models.TokenUsage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return reply, nil
}

var _ core.GenerativeModel = (*GeminiConverse)(nil)
