package models

import (
	"context"
	"fmt"
	"strings"
)

// NewModel builds a provider by name:
// "openai", "anthropic"/"claude", "gemini"/"google", "ollama", "dummy".
// Callers that want response caching wrap the result with TryCreateCachedLLM.
func NewModel(ctx context.Context, provider, model string, temperature float32) (Model, error) {
	var (
		m   Model
		err error
	)
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "openai", "":
		m, err = NewOpenAILLM(model, temperature)
	case "anthropic", "claude":
		m, err = NewAnthropicLLM(model, float64(temperature))
	case "gemini", "google":
		m, err = NewGeminiLLM(ctx, model, temperature)
	case "ollama":
		m, err = NewOllamaLLM(model)
	case "dummy":
		m = NewDummyLLM("")
	default:
		return nil, fmt.Errorf("unknown model provider %q", provider)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}
