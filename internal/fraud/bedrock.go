package fraud

import (
	"context"
	"errors"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	smithy "github.com/aws/smithy-go"
	"github.com/imrishuroy/go-fraud-orderflow/internal/awsclients"
)

const (
	converseMaxTokens   = 1000
	converseTemperature = 0.1
)

// ModelInvoker is any text-completion backend that returns generated text
// plus its own token accounting. The analyzer never depends on a specific
// vendor call shape.
type ModelInvoker interface {
	Invoke(ctx context.Context, prompt string) (text string, inputTokens, outputTokens int32, err error)
}

// BedrockInvoker calls the Bedrock Converse API. The model id comes from
// configuration, so swapping Claude, Llama, Titan or Nova needs no code
// change.
type BedrockInvoker struct {
	client  awsclients.BedrockRuntimeAPI
	modelID string
}

func NewBedrockInvoker(client awsclients.BedrockRuntimeAPI, modelID string) *BedrockInvoker {
	return &BedrockInvoker{client: client, modelID: modelID}
}

func (b *BedrockInvoker) Invoke(ctx context.Context, prompt string) (string, int32, int32, error) {
	out, err := b.client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: sdkaws.String(b.modelID),
		Messages: []brtypes.Message{
			{
				Role: brtypes.ConversationRoleUser,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: prompt},
				},
			},
		},
		InferenceConfig: &brtypes.InferenceConfiguration{
			MaxTokens:   sdkaws.Int32(converseMaxTokens),
			Temperature: sdkaws.Float32(converseTemperature),
		},
	})
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) {
			return "", 0, 0, fmt.Errorf("bedrock converse %s: %w", ae.ErrorCode(), err)
		}
		return "", 0, 0, fmt.Errorf("bedrock converse: %w", err)
	}

	msg, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok || len(msg.Value.Content) == 0 {
		return "", 0, 0, errors.New("bedrock converse: empty model output")
	}
	text, ok := msg.Value.Content[0].(*brtypes.ContentBlockMemberText)
	if !ok {
		return "", 0, 0, errors.New("bedrock converse: unexpected content block type")
	}

	var inTokens, outTokens int32
	if out.Usage != nil {
		inTokens = sdkaws.ToInt32(out.Usage.InputTokens)
		outTokens = sdkaws.ToInt32(out.Usage.OutputTokens)
	}

	return text.Value, inTokens, outTokens, nil
}
