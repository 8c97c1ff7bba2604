package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/mayowa-kalejaiye/docstream/internal/core"
)

type TitanEmbedder struct {
	client  *bedrockruntime.Client
	modelID string
}

func NewTitanEmbedder(awsCfg aws.Config, modelID string) *TitanEmbedder {
	return &TitanEmbedder{
		client:  bedrockruntime.NewFromConfig(awsCfg),
		modelID: modelID,
	}
}

// EmbedText generates a vector for one text via the Titan embeddings model.
func (t *TitanEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	payload, err := json.Marshal(struct {
		InputText string `json:"inputText"`
	}{InputText: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	out, err := t.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(t.modelID),
		ContentType: aws.String("application/json"),
		Body:        payload,
	})
	if err != nil {
		return nil, fmt.Errorf("titan embed: %w", err)
	}

	var parsed struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.Unmarshal(out.Body, &parsed); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(parsed.Embedding) == 0 {
		return nil, fmt.Errorf("titan embed: empty embedding in response")
	}
	return parsed.Embedding, nil
}

var _ core.EmbeddingProvider = (*TitanEmbedder)(nil)
