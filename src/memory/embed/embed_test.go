package embed

import (
	"context"
	"testing"
)

func TestDummyEmbeddingDeterministic(t *testing.T) {
	a := DummyEmbedding("what is my name")
	b := DummyEmbedding("what is my name")
	if len(a) != 768 {
		t.Fatalf("expected a 768-dim vector, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("expected deterministic embeddings, diverged at %d", i)
		}
	}
}

func TestDummyEmbeddingDistinguishesInputs(t *testing.T) {
	a := DummyEmbedding("alpha")
	b := DummyEmbedding("omega")
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("expected different texts to embed differently")
	}
}

func TestAutoEmbedderFallsBackToDummy(t *testing.T) {
	t.Setenv("RELAY_EMBED_PROVIDER", "")
	t.Setenv("OPENAI_API_KEY", "")

	e := AutoEmbedder()
	if _, ok := e.(DummyEmbedder); !ok {
		t.Fatalf("expected the dummy fallback without provider config, got %T", e)
	}
	if _, err := e.Embed(context.Background(), "text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
