package models

import (
	"context"
	"strings"
	"testing"
)

func TestDummyLLMEchoesLastLine(t *testing.T) {
	d := NewDummyLLM("")
	got, err := d.Generate(context.Background(), "system prompt\n\nwhat is my name?\n\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Dummy response: what is my name?" {
		t.Fatalf("expected the last non-empty line echoed, got %q", got)
	}
}

func TestDummyLLMEmptyPrompt(t *testing.T) {
	d := NewDummyLLM("echo:")
	got, _ := d.Generate(context.Background(), "  \n\n ")
	if got != "echo: <empty prompt>" {
		t.Fatalf("expected the empty-prompt marker, got %q", got)
	}
}

func TestDummyLLMStreamMatchesGenerate(t *testing.T) {
	d := NewDummyLLM("")
	want, _ := d.Generate(context.Background(), "hello world")

	ch, err := d.GenerateStream(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var sb strings.Builder
	var full string
	for chunk := range ch {
		sb.WriteString(chunk.Delta)
		if chunk.Done {
			full = chunk.FullText
		}
	}
	if sb.String() != want {
		t.Fatalf("expected concatenated deltas %q, got %q", want, sb.String())
	}
	if full != want {
		t.Fatalf("expected FullText %q, got %q", want, full)
	}
}
