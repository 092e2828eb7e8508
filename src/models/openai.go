package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAILLM calls the OpenAI chat completions API.
type OpenAILLM struct {
	client      *openai.Client
	Model       string
	Temperature float32
	MaxTokens   int
	Tools       []Tool
}

var _ Model = (*OpenAILLM)(nil)

const (
	defaultOpenAIModel  = "gpt-4o-mini"
	defaultTemperature  = 0.5
	defaultMaxTokens    = 2000
	streamChunkCapacity = 16
)

func NewOpenAILLM(model string, temperature float32) (*OpenAILLM, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY not set")
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	return &OpenAILLM{
		client:      openai.NewClient(apiKey),
		Model:       model,
		Temperature: temperature,
		MaxTokens:   defaultMaxTokens,
	}, nil
}

func (o *OpenAILLM) request(prompt string) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:       o.Model,
		Temperature: o.Temperature,
		MaxTokens:   o.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	for _, t := range o.Tools {
		req.Tools = append(req.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return req
}

func (o *OpenAILLM) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, o.request(prompt))
	if err != nil {
		return "", fmt.Errorf("completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAILLM) GenerateStream(ctx context.Context, prompt string) (<-chan StreamChunk, error) {
	stream, err := o.client.CreateChatCompletionStream(ctx, o.request(prompt))
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}

	ch := make(chan StreamChunk, streamChunkCapacity)
	go func() {
		defer close(ch)
		defer stream.Close()
		var sb strings.Builder
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				ch <- StreamChunk{Done: true, FullText: sb.String()}
				return
			}
			if err != nil {
				ch <- StreamChunk{Done: true, FullText: sb.String(), Err: fmt.Errorf("completion: %w", err)}
				return
			}
			for _, choice := range resp.Choices {
				if delta := choice.Delta.Content; delta != "" {
					sb.WriteString(delta)
					ch <- StreamChunk{Delta: delta}
				}
			}
		}
	}()
	return ch, nil
}
