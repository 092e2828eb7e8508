package models

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicLLM calls the Anthropic Messages API.
type AnthropicLLM struct {
	client      anthropic.Client
	Model       string
	Temperature float64
	MaxTokens   int64
}

var _ Model = (*AnthropicLLM)(nil)

const defaultAnthropicModel = "claude-3-5-haiku-latest"

func NewAnthropicLLM(model string, temperature float64) (*AnthropicLLM, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not set")
	}
	if model == "" {
		model = defaultAnthropicModel
	}
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	return &AnthropicLLM{
		client:      anthropic.NewClient(option.WithAPIKey(apiKey)),
		Model:       model,
		Temperature: temperature,
		MaxTokens:   defaultMaxTokens,
	}, nil
}

func (a *AnthropicLLM) params(prompt string) anthropic.MessageNewParams {
	return anthropic.MessageNewParams{
		Model:       anthropic.Model(a.Model),
		MaxTokens:   a.MaxTokens,
		Temperature: anthropic.Float(a.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
}

func (a *AnthropicLLM) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.Messages.New(ctx, a.params(prompt))
	if err != nil {
		return "", fmt.Errorf("completion: %w", err)
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}
	return sb.String(), nil
}

func (a *AnthropicLLM) GenerateStream(ctx context.Context, prompt string) (<-chan StreamChunk, error) {
	ch := make(chan StreamChunk, streamChunkCapacity)
	go func() {
		defer close(ch)
		stream := a.client.Messages.NewStreaming(ctx, a.params(prompt))
		defer stream.Close()

		var sb strings.Builder
		for stream.Next() {
			event := stream.Current()
			switch evt := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				if delta, ok := evt.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
					sb.WriteString(delta.Text)
					ch <- StreamChunk{Delta: delta.Text}
				}
			}
		}
		if err := stream.Err(); err != nil {
			ch <- StreamChunk{Done: true, FullText: sb.String(), Err: fmt.Errorf("completion: %w", err)}
			return
		}
		ch <- StreamChunk{Done: true, FullText: sb.String()}
	}()
	return ch, nil
}
