package relay

import (
	"fmt"
	"strings"
	"sync"
)

// AgentConfig is an immutable persona definition. Agents are configuration,
// not behaviour: the pipeline reads the prompt, model, and tool list and does
// the rest itself.
type AgentConfig struct {
	ID           string
	Name         string
	Description  string
	Avatar       string
	SystemPrompt string
	Tools        []string
	Temperature  float32
	Model        string
	Provider     string
}

// ToolSpec is a declarative tool definition forwarded to completion models
// that accept function declarations. Parameters is a JSON schema object.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// AgentCatalog is an in-memory registry of persona configurations keyed by
// lower-cased id.
type AgentCatalog struct {
	mu     sync.RWMutex
	agents map[string]AgentConfig
	order  []string
}

// NewAgentCatalog constructs a catalog seeded with the provided agents.
func NewAgentCatalog(agents []AgentConfig) *AgentCatalog {
	catalog := &AgentCatalog{agents: make(map[string]AgentConfig)}
	for _, a := range agents {
		_ = catalog.Register(a) // skip invalid entries silently
	}
	return catalog
}

// Register adds an agent using a lower-cased key. Duplicate ids return an error.
func (c *AgentCatalog) Register(agent AgentConfig) error {
	key := strings.ToLower(strings.TrimSpace(agent.ID))
	if key == "" {
		return fmt.Errorf("agent id is empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.agents[key]; exists {
		return fmt.Errorf("agent %s already registered", agent.ID)
	}
	c.agents[key] = agent
	c.order = append(c.order, key)
	return nil
}

// Lookup returns the agent configuration if present.
func (c *AgentCatalog) Lookup(id string) (AgentConfig, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	agent, ok := c.agents[strings.ToLower(strings.TrimSpace(id))]
	return agent, ok
}

// All returns the registered agents in registration order.
func (c *AgentCatalog) All() []AgentConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()

	agents := make([]AgentConfig, 0, len(c.order))
	for _, key := range c.order {
		agents = append(agents, c.agents[key])
	}
	return agents
}

// ToolCatalog is an in-memory registry of tool specifications keyed by
// lower-cased name.
type ToolCatalog struct {
	mu    sync.RWMutex
	specs map[string]ToolSpec
	order []string
}

// NewToolCatalog constructs a catalog seeded with the provided specs.
func NewToolCatalog(specs []ToolSpec) *ToolCatalog {
	catalog := &ToolCatalog{specs: make(map[string]ToolSpec)}
	for _, spec := range specs {
		_ = catalog.Register(spec)
	}
	return catalog
}

// Register adds a tool spec. Duplicate names return an error.
func (c *ToolCatalog) Register(spec ToolSpec) error {
	key := strings.ToLower(strings.TrimSpace(spec.Name))
	if key == "" {
		return fmt.Errorf("tool name is empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.specs[key]; exists {
		return fmt.Errorf("tool %s already registered", spec.Name)
	}
	c.specs[key] = spec
	c.order = append(c.order, key)
	return nil
}

// Lookup returns the tool spec if present.
func (c *ToolCatalog) Lookup(name string) (ToolSpec, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	spec, ok := c.specs[strings.ToLower(strings.TrimSpace(name))]
	return spec, ok
}

// Specs returns a snapshot of the tool specifications in registration order.
func (c *ToolCatalog) Specs() []ToolSpec {
	c.mu.RLock()
	defer c.mu.RUnlock()

	specs := make([]ToolSpec, 0, len(c.order))
	for _, key := range c.order {
		specs = append(specs, c.specs[key])
	}
	return specs
}
