package models

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiLLM calls the Gemini generateContent API.
type GeminiLLM struct {
	client *genai.Client
	model  *genai.GenerativeModel
	Model  string
}

var _ Model = (*GeminiLLM)(nil)

const defaultGeminiModel = "gemini-1.5-flash"

func NewGeminiLLM(ctx context.Context, model string, temperature float32) (*GeminiLLM, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY not set")
	}
	if model == "" {
		model = defaultGeminiModel
	}
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	gm := client.GenerativeModel(model)
	gm.SetTemperature(temperature)
	gm.SetMaxOutputTokens(defaultMaxTokens)
	return &GeminiLLM{client: client, model: gm, Model: model}, nil
}

func (g *GeminiLLM) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("completion: %w", err)
	}
	return geminiText(resp), nil
}

func (g *GeminiLLM) GenerateStream(ctx context.Context, prompt string) (<-chan StreamChunk, error) {
	iter := g.model.GenerateContentStream(ctx, genai.Text(prompt))

	ch := make(chan StreamChunk, streamChunkCapacity)
	go func() {
		defer close(ch)
		var sb strings.Builder
		for {
			resp, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				ch <- StreamChunk{Done: true, FullText: sb.String()}
				return
			}
			if err != nil {
				ch <- StreamChunk{Done: true, FullText: sb.String(), Err: fmt.Errorf("completion: %w", err)}
				return
			}
			if delta := geminiText(resp); delta != "" {
				sb.WriteString(delta)
				ch <- StreamChunk{Delta: delta}
			}
		}
	}()
	return ch, nil
}

// Close releases the underlying client.
func (g *GeminiLLM) Close() error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.Close()
}

func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return sb.String()
}
