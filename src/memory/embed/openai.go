package embed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder calls the OpenAI embeddings API.
// Defaults:
//   - model: "text-embedding-3-small" (override via RELAY_EMBED_MODEL)
//   - dimensions: 1024 (override via RELAY_EMBED_DIMENSIONS; 0 keeps the
//     model's native width)
type OpenAIEmbedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

const defaultOpenAIDimensions = 1024

func NewOpenAIEmbedder(model string) (Embedder, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY not set")
	}
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	dimensions := defaultOpenAIDimensions
	if raw := os.Getenv("RELAY_EMBED_DIMENSIONS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("bad RELAY_EMBED_DIMENSIONS %q", raw)
		}
		dimensions = n
	}
	return &OpenAIEmbedder{
		client:     openai.NewClient(apiKey),
		model:      openai.EmbeddingModel(model),
		dimensions: dimensions,
	}, nil
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequestStrings{
		Input: []string{text},
		Model: e.model,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}
	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, ErrNotSupported
	}
	return resp.Data[0].Embedding, nil
}
