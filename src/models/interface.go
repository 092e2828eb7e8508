package models

import "context"

// StreamChunk is one fragment of a streamed completion. Delta carries
// incremental text; the final chunk has Done set and FullText holding the
// whole response (or Err when the stream failed).
type StreamChunk struct {
	Delta    string
	FullText string
	Done     bool
	Err      error
}

// Tool is a declarative function specification forwarded to providers that
// accept function definitions. Parameters is a JSON schema object.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Model is a completion provider.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateStream(ctx context.Context, prompt string) (<-chan StreamChunk, error)
}
