package relay

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/relay-agents/relay/src/memory/embed"
	"github.com/relay-agents/relay/src/memory/store"
	"github.com/relay-agents/relay/src/models"
)

// scriptedModel returns a fixed reply and records every prompt it sees.
type scriptedModel struct {
	mu      sync.Mutex
	reply   string
	prompts []string
}

var _ models.Model = (*scriptedModel)(nil)

func (m *scriptedModel) Generate(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	return m.reply, nil
}

func (m *scriptedModel) GenerateStream(ctx context.Context, prompt string) (<-chan models.StreamChunk, error) {
	text, _ := m.Generate(ctx, prompt)
	ch := make(chan models.StreamChunk, 2)
	ch <- models.StreamChunk{Delta: text}
	ch <- models.StreamChunk{Done: true, FullText: text}
	close(ch)
	return ch, nil
}

func (m *scriptedModel) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

func newTestRelay(t *testing.T, reply string) (*Relay, *scriptedModel, *store.InMemoryStore) {
	t.Helper()
	m := &scriptedModel{reply: reply}
	st := store.NewInMemoryStore()
	r, err := New(Options{
		Store:    st,
		Embedder: embed.DummyEmbedder{},
		Models: func(context.Context, AgentConfig, []models.Tool) (models.Model, error) {
			return m, nil
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return r, m, st
}

func TestRespondUnknownAgent(t *testing.T) {
	r, _, _ := newTestRelay(t, "hi")
	_, err := r.Respond(context.Background(), Request{AgentID: "nobody"})
	if !errors.Is(err, ErrAgentNotFound) {
		t.Fatalf("expected ErrAgentNotFound, got %v", err)
	}
}

func TestRespondRunsFullTurn(t *testing.T) {
	r, m, st := newTestRelay(t, "hello back")
	resp, err := r.Respond(context.Background(), Request{
		AgentID:   "research",
		SessionID: "s1",
		Messages:  []Message{{Role: "user", Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "hello back" {
		t.Fatalf("expected the model reply, got %q", resp.Text)
	}
	if resp.Agent.ID != "research" {
		t.Fatalf("expected the research agent, got %q", resp.Agent.ID)
	}
	if !strings.Contains(m.lastPrompt(), "hello") {
		t.Fatalf("expected the user message in the prompt")
	}
	if !strings.Contains(m.lastPrompt(), resp.Agent.SystemPrompt) {
		t.Fatalf("expected the persona in the prompt")
	}

	count, _ := st.Count(context.Background())
	if count != 2 {
		t.Fatalf("expected the exchange to be written as 2 records, got %d", count)
	}
}

func TestRespondRecallsPriorExchange(t *testing.T) {
	r, m, _ := newTestRelay(t, "Your name is Alex.")
	ctx := context.Background()

	if _, err := r.Respond(ctx, Request{
		AgentID:   "research",
		SessionID: "s1",
		Messages:  []Message{{Role: "user", Content: "My name is Alex, what is my name?"}},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := r.Respond(ctx, Request{
		AgentID:   "research",
		SessionID: "s1",
		Messages:  []Message{{Role: "user", Content: "what is my name?"}},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt := m.lastPrompt()
	if !strings.Contains(prompt, "=== PREVIOUS CONVERSATION HISTORY ===") {
		t.Fatalf("expected retrieved history in the second prompt")
	}
	if !strings.Contains(prompt, "My name is Alex") {
		t.Fatalf("expected the first exchange in the transcript")
	}
	if !strings.Contains(prompt, "⚠️ IMPORTANT") {
		t.Fatalf("expected the recalled-answer override")
	}
}

func TestRespondUsesLatestUserMessage(t *testing.T) {
	r, m, _ := newTestRelay(t, "ok")
	_, err := r.Respond(context.Background(), Request{
		AgentID:   "code",
		SessionID: "s1",
		Messages: []Message{
			{Role: "user", Content: "first question"},
			{Role: "assistant", Content: "first answer"},
			{Role: "user", Content: "second question"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(m.lastPrompt(), "second question") {
		t.Fatalf("expected the latest user message at the end of the prompt")
	}
}

func TestRespondResolvesDeclaredToolsOnly(t *testing.T) {
	var captured []models.Tool
	st := store.NewInMemoryStore()
	r, err := New(Options{
		Store:    st,
		Embedder: embed.DummyEmbedder{},
		Models: func(_ context.Context, _ AgentConfig, tools []models.Tool) (models.Model, error) {
			captured = tools
			return &scriptedModel{reply: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := r.Respond(context.Background(), Request{
		AgentID:  "orchestrator",
		Messages: []Message{{Role: "user", Content: "plan something"}},
		UseTools: true,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The orchestrator's tool names are prompt-only and have no declarations.
	if len(captured) != 0 {
		t.Fatalf("expected no declared tools for the orchestrator, got %d", len(captured))
	}

	if _, err := r.Respond(context.Background(), Request{
		AgentID:  "research",
		Messages: []Message{{Role: "user", Content: "look this up"}},
		UseTools: true,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(captured) != 5 {
		t.Fatalf("expected the research agent's 5 declared tools, got %d", len(captured))
	}
	if captured[0].Name != "webSearch" {
		t.Fatalf("expected webSearch first, got %q", captured[0].Name)
	}
}

func TestRespondStream(t *testing.T) {
	r, _, st := newTestRelay(t, "streamed reply")
	chunks, err := r.RespondStream(context.Background(), Request{
		AgentID:   "creative",
		SessionID: "s1",
		Messages:  []Message{{Role: "user", Content: "write something"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sb strings.Builder
	var full string
	for chunk := range chunks {
		if chunk.Err != nil {
			t.Fatalf("unexpected stream error: %v", chunk.Err)
		}
		sb.WriteString(chunk.Delta)
		if chunk.Done {
			full = chunk.FullText
		}
	}
	if sb.String() != "streamed reply" || full != "streamed reply" {
		t.Fatalf("expected the full reply via deltas, got %q / %q", sb.String(), full)
	}

	count, _ := st.Count(context.Background())
	if count != 2 {
		t.Fatalf("expected the streamed exchange to be written, got %d records", count)
	}
}
