package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/mayowa-kalejaiye/docstream/internal/core"
	"github.com/mayowa-kalejaiye/docstream/internal/models"
)

// Inference settings for context generation. Deterministic output beats
// creativity when the reply gets baked into a search index.
const (
	converseTemperature float32 = 0.0
	converseTopP        float32 = 0.5
)

type BedrockConverse struct {
	client  *bedrockruntime.Client
	modelID string
}

func NewBedrockConverse(awsCfg aws.Config, modelID string) *BedrockConverse {
	return &BedrockConverse{
		client:  bedrockruntime.NewFromConfig(awsCfg),
		modelID: modelID,
	}
}

// Converse issues one model call with the system prompt and user message.
// A cache point follows the system prompt so the (large, per-document) system
// context is written to the prompt cache once and read back on every
// subsequent segment of the same document.
func (b *BedrockConverse) Converse(ctx context.Context, systemPrompt, userMessage string) (*models.ModelReply, error) {
	out, err := b.client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(b.modelID),
		System: []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: systemPrompt},
			&types.SystemContentBlockMemberCachePoint{
				Value: types.CachePointBlock{Type: types.CachePointTypeDefault},
			},
		},
		Messages: []types.Message{
			{
				Role: types.ConversationRoleUser,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberText{Value: userMessage},
				},
			},
		},
		InferenceConfig: &types.InferenceConfiguration{
			Temperature: aws.Float32(converseTemperature),
			TopP:        aws.Float32(converseTopP),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock converse: %w", err)
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return nil, fmt.Errorf("bedrock converse: unexpected output type %T", out.Output)
	}

	var sb strings.Builder
	for _, block := range msg.Value.Content {
		if t, ok := block.(*types.ContentBlockMemberText); ok {
			sb.WriteString(t.Value)
		}
	}

	reply := &models.ModelReply{Text: sb.String()}
	if out.Usage != nil {
		reply.Usage = models.TokenUsage{
			InputTokens:           int(aws.ToInt32(out.Usage.InputTokens)),
			OutputTokens:          int(aws.ToInt32(out.Usage.OutputTokens)),
			CacheReadInputTokens:  int(aws.ToInt32(out.Usage.CacheReadInputTokens)),
			CacheWriteInputTokens: int(aws.ToInt32(out.Usage.CacheWriteInputTokens)),
		}
	}
	return reply, nil
}

var _ core.GenerativeModel = (*BedrockConverse)(nil)
