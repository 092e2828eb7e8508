package models

import (
	"context"
	"fmt"
	"strings"
)

// DummyLLM is a lightweight model implementation useful for local testing
// without API calls. It echoes the last non-empty line of the prompt.
type DummyLLM struct {
	Prefix string
}

var _ Model = (*DummyLLM)(nil)

func NewDummyLLM(prefix string) *DummyLLM {
	if strings.TrimSpace(prefix) == "" {
		prefix = "Dummy response:"
	}
	return &DummyLLM{Prefix: prefix}
}

func (d *DummyLLM) Generate(_ context.Context, prompt string) (string, error) {
	lines := strings.Split(prompt, "\n")
	var last string
	for i := len(lines) - 1; i >= 0; i-- {
		candidate := strings.TrimSpace(lines[i])
		if candidate != "" {
			last = candidate
			break
		}
	}
	if last == "" {
		last = "<empty prompt>"
	}
	return fmt.Sprintf("%s %s", d.Prefix, last), nil
}

// GenerateStream simulates streaming by splitting the response into word-level chunks.
func (d *DummyLLM) GenerateStream(ctx context.Context, prompt string) (<-chan StreamChunk, error) {
	result, _ := d.Generate(ctx, prompt)

	ch := make(chan StreamChunk, streamChunkCapacity)
	go func() {
		defer close(ch)
		words := strings.Fields(result)
		var sb strings.Builder
		for i, word := range words {
			if i > 0 {
				word = " " + word
			}
			sb.WriteString(word)
			ch <- StreamChunk{Delta: word}
		}
		ch <- StreamChunk{Done: true, FullText: sb.String()}
	}()

	return ch, nil
}
