package models

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"
)

// OllamaLLM streams completions from a local Ollama server.
type OllamaLLM struct {
	Client *ollama.Client
	Model  string
}

var _ Model = (*OllamaLLM)(nil)

const defaultOllamaModel = "llama3.2"

func NewOllamaLLM(model string) (*OllamaLLM, error) {
	if model == "" {
		model = defaultOllamaModel
	}
	host := os.Getenv("OLLAMA_HOST")
	if host == "" {
		host = "http://localhost:11434"
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_HOST %q: %w", host, err)
	}

	c := ollama.NewClient(u, &http.Client{Timeout: 60 * time.Second})
	return &OllamaLLM{Client: c, Model: model}, nil
}

func (o *OllamaLLM) Generate(ctx context.Context, prompt string) (string, error) {
	var text strings.Builder
	req := &ollama.GenerateRequest{
		Model:  o.Model,
		Prompt: prompt,
	}
	if err := o.Client.Generate(ctx, req, func(gr ollama.GenerateResponse) error {
		if gr.Response != "" {
			text.WriteString(gr.Response)
		}
		return nil
	}); err != nil {
		return "", fmt.Errorf("completion: %w", err)
	}
	return text.String(), nil
}

// GenerateStream leverages Ollama's native callback-based streaming.
func (o *OllamaLLM) GenerateStream(ctx context.Context, prompt string) (<-chan StreamChunk, error) {
	req := &ollama.GenerateRequest{
		Model:  o.Model,
		Prompt: prompt,
	}

	ch := make(chan StreamChunk, streamChunkCapacity)
	go func() {
		defer close(ch)
		var sb strings.Builder
		err := o.Client.Generate(ctx, req, func(gr ollama.GenerateResponse) error {
			if gr.Response != "" {
				sb.WriteString(gr.Response)
				ch <- StreamChunk{Delta: gr.Response}
			}
			return nil
		})
		if err != nil {
			ch <- StreamChunk{Done: true, FullText: sb.String(), Err: fmt.Errorf("completion: %w", err)}
			return
		}
		ch <- StreamChunk{Done: true, FullText: sb.String()}
	}()

	return ch, nil
}
