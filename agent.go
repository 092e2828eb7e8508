package relay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/relay-agents/relay/src/memory"
	"github.com/relay-agents/relay/src/memory/embed"
	"github.com/relay-agents/relay/src/memory/model"
	"github.com/relay-agents/relay/src/memory/store"
	"github.com/relay-agents/relay/src/models"
)

// Message is one entry of the incoming conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes one chat turn.
type Request struct {
	AgentID   string
	SessionID string // empty selects the shared hour-bucket session
	Messages  []Message
	UseTools  bool
}

// Response is the completed turn.
type Response struct {
	Text  string
	Agent AgentConfig
}

// ModelFactory builds a completion model for an agent configuration. The
// tool slice is empty unless the request opted in.
type ModelFactory func(ctx context.Context, agent AgentConfig, tools []models.Tool) (models.Model, error)

// Options configures a Relay. Nil fields take defaults: the built-in agent
// and tool presets, an in-memory store, the env-selected embedder, and the
// env-driven model factory.
type Options struct {
	Agents   *AgentCatalog
	Tools    *ToolCatalog
	Store    store.VectorStore
	Embedder embed.Embedder
	Models   ModelFactory
	Logger   *slog.Logger
}

// Relay routes chat turns through persona lookup, memory retrieval, prompt
// composition, completion, and memory writeback.
type Relay struct {
	agents    *AgentCatalog
	tools     *ToolCatalog
	models    ModelFactory
	retriever *memory.Retriever
	writer    *memory.Writer
	logger    *slog.Logger
}

// New constructs a Relay from the given options.
func New(opts Options) (*Relay, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Agents == nil {
		opts.Agents = NewAgentCatalog(DefaultAgents())
	}
	if opts.Tools == nil {
		opts.Tools = NewToolCatalog(DefaultTools())
	}
	if opts.Store == nil {
		opts.Store = store.NewInMemoryStore()
	}
	if opts.Embedder == nil {
		opts.Embedder = embed.AutoEmbedder()
	}
	if opts.Models == nil {
		opts.Models = defaultModelFactory
	}
	return &Relay{
		agents: opts.Agents,
		tools:  opts.Tools,
		models: opts.Models,
		retriever: memory.NewRetriever(memory.RetrieverOptions{
			Store:    opts.Store,
			Embedder: opts.Embedder,
			Logger:   opts.Logger,
		}),
		writer: memory.NewWriter(memory.WriterOptions{
			Store:    opts.Store,
			Embedder: opts.Embedder,
			Logger:   opts.Logger,
		}),
		logger: opts.Logger,
	}, nil
}

// Respond runs one blocking chat turn.
func (r *Relay) Respond(ctx context.Context, req Request) (*Response, error) {
	turn, err := r.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	text, err := turn.model.Generate(ctx, turn.prompt)
	if err != nil {
		return nil, err
	}
	r.writer.RecordExchange(ctx, turn.agent.ID, req.SessionID, turn.userMessage, text)
	return &Response{Text: text, Agent: turn.agent}, nil
}

// preparedTurn carries everything Respond and RespondStream share.
type preparedTurn struct {
	agent       AgentConfig
	model       models.Model
	prompt      string
	userMessage string
}

func (r *Relay) prepare(ctx context.Context, req Request) (*preparedTurn, error) {
	agent, ok := r.agents.Lookup(req.AgentID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAgentNotFound, req.AgentID)
	}

	userMessage := latestUserMessage(req.Messages)

	history := r.retriever.Retrieve(ctx, userMessage)
	answer, answered := memory.ResolveAnswer(history, userMessage)
	if answered {
		r.logger.Debug("recalled prior answer", "agent", agent.ID)
	}
	system := ComposePrompt(agent.SystemPrompt, history, answer, answered)

	var tools []models.Tool
	if req.UseTools {
		tools = r.resolveTools(agent)
	}
	m, err := r.models(ctx, agent, tools)
	if err != nil {
		return nil, fmt.Errorf("build model for agent %s: %w", agent.ID, err)
	}

	return &preparedTurn{
		agent:       agent,
		model:       m,
		prompt:      system + "\n\n" + userMessage,
		userMessage: userMessage,
	}, nil
}

func (r *Relay) resolveTools(agent AgentConfig) []models.Tool {
	tools := make([]models.Tool, 0, len(agent.Tools))
	for _, name := range agent.Tools {
		spec, ok := r.tools.Lookup(name)
		if !ok {
			// Persona tool lists may name tools with no declaration, e.g.
			// the orchestrator's planning verbs. Those are prompt-only.
			continue
		}
		tools = append(tools, models.Tool{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters:  spec.Parameters,
		})
	}
	return tools
}

func latestUserMessage(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == model.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

func defaultModelFactory(ctx context.Context, agent AgentConfig, tools []models.Tool) (models.Model, error) {
	m, err := models.NewModel(ctx, agent.Provider, agent.Model, agent.Temperature)
	if err != nil {
		return nil, err
	}
	if o, ok := m.(*models.OpenAILLM); ok && len(tools) > 0 {
		o.Tools = tools
	}
	return models.TryCreateCachedLLM(m), nil
}
