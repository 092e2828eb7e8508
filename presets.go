package relay

// DefaultAgents returns the built-in persona set. Each entry is plain
// configuration; temperature and tool lists are tuned per specialty.
func DefaultAgents() []AgentConfig {
	return []AgentConfig{
		{
			ID:          "orchestrator",
			Name:        "Orchestrator",
			Description: "Coordinates multiple agents to solve complex tasks",
			Avatar:      "🎭",
			SystemPrompt: `You are an expert orchestrator that coordinates multiple AI agents to accomplish complex tasks.
You excel at:
- Breaking down complex problems into subtasks
- Delegating work to specialized agents
- Synthesizing results from multiple agents
- Ensuring coherent and comprehensive solutions

Always think step-by-step and use the most appropriate agent for each subtask.`,
			Tools:       []string{"delegate", "synthesize", "plan"},
			Temperature: 0.3,
			Model:       "gpt-4o-mini",
		},
		{
			ID:          "research",
			Name:        "Research Assistant",
			Description: "Expert at finding and analyzing information",
			Avatar:      "🔍",
			SystemPrompt: `You are a research specialist with expertise in:
- Information gathering from multiple sources
- Fact-checking and verification
- Synthesizing complex information
- Creating comprehensive reports
- Academic and technical research

Always cite sources and provide evidence for your claims.`,
			Tools:       []string{"webSearch", "pdfReader", "summarize", "vectorSearch", "storeDocument"},
			Temperature: 0.5,
			Model:       "gpt-4o-mini",
		},
		{
			ID:          "code",
			Name:        "Code Assistant",
			Description: "Software engineering and programming expert",
			Avatar:      "💻",
			SystemPrompt: `You are an expert software engineer proficient in:
- Multiple programming languages (TypeScript, Python, Rust, Go)
- System design and architecture
- Code review and optimization
- Debugging and testing
- Best practices and design patterns

Always write clean, efficient, and well-documented code.`,
			Tools:       []string{"codeExecution", "vectorSearch"},
			Temperature: 0.2,
			Model:       "gpt-4o-mini",
		},
		{
			ID:          "creative",
			Name:        "Creative Assistant",
			Description: "Creative writing and ideation specialist",
			Avatar:      "🎨",
			SystemPrompt: `You are a creative specialist skilled in:
- Creative writing and storytelling
- Brainstorming and ideation
- Content creation and copywriting
- Brand voice and messaging
- Visual concepts and descriptions

Be creative, engaging, and original in your responses.`,
			Tools:       []string{"imageGeneration", "voiceSynthesis", "vectorSearch"},
			Temperature: 0.8,
			Model:       "gpt-4o-mini",
		},
		{
			ID:          "analysis",
			Name:        "Analysis Assistant",
			Description: "Data analysis and insights expert",
			Avatar:      "📊",
			SystemPrompt: `You are a data analysis expert specializing in:
- Statistical analysis and modeling
- Pattern recognition and anomaly detection
- Data visualization recommendations
- Business intelligence and insights
- Predictive analytics

Provide data-driven insights with clear explanations.`,
			Tools:       []string{"databaseQuery", "visualization", "vectorSearch", "storeDocument"},
			Temperature: 0.3,
			Model:       "gpt-4o-mini",
		},
	}
}

// DefaultTools returns the built-in tool table. These are declarations only;
// execution is up to whatever consumes the completion's tool calls.
func DefaultTools() []ToolSpec {
	return []ToolSpec{
		{
			Name:        "webSearch",
			Description: "Search the web for information",
			Parameters: objectSchema(map[string]any{
				"query":      map[string]any{"type": "string", "description": "The search query"},
				"maxResults": map[string]any{"type": "number", "description": "Maximum number of results", "default": 5},
			}, "query"),
		},
		{
			Name:        "codeExecution",
			Description: "Execute code in a sandboxed environment",
			Parameters: objectSchema(map[string]any{
				"language": map[string]any{"type": "string", "enum": []string{"javascript", "python", "typescript"}, "description": "Programming language"},
				"code":     map[string]any{"type": "string", "description": "Code to execute"},
			}, "language", "code"),
		},
		{
			Name:        "databaseQuery",
			Description: "Query a database for information",
			Parameters: objectSchema(map[string]any{
				"query":    map[string]any{"type": "string", "description": "SQL query to execute"},
				"database": map[string]any{"type": "string", "description": "Database name", "default": "default"},
			}, "query"),
		},
		{
			Name:        "imageGeneration",
			Description: "Generate images using AI",
			Parameters: objectSchema(map[string]any{
				"prompt": map[string]any{"type": "string", "description": "Description of the image to generate"},
				"size":   map[string]any{"type": "string", "enum": []string{"256x256", "512x512", "1024x1024"}, "default": "512x512"},
				"n":      map[string]any{"type": "number", "description": "Number of images to generate", "default": 1},
			}, "prompt"),
		},
		{
			Name:        "summarize",
			Description: "Summarize long text content",
			Parameters: objectSchema(map[string]any{
				"text":      map[string]any{"type": "string", "description": "Text to summarize"},
				"maxLength": map[string]any{"type": "number", "description": "Maximum summary length", "default": 500},
				"style":     map[string]any{"type": "string", "enum": []string{"bullet", "paragraph", "tldr"}, "default": "paragraph"},
			}, "text"),
		},
		{
			Name:        "pdfReader",
			Description: "Extract text from PDF documents",
			Parameters: objectSchema(map[string]any{
				"url":   map[string]any{"type": "string", "description": "URL of the PDF document"},
				"pages": map[string]any{"type": "array", "items": map[string]any{"type": "number"}, "description": "Specific pages to extract"},
			}, "url"),
		},
		{
			Name:        "visualization",
			Description: "Create data visualizations",
			Parameters: objectSchema(map[string]any{
				"data":      map[string]any{"type": "array", "items": map[string]any{"type": "object"}, "description": "Data to visualize"},
				"chartType": map[string]any{"type": "string", "enum": []string{"bar", "line", "pie", "scatter", "heatmap"}},
				"title":     map[string]any{"type": "string", "description": "Chart title"},
				"xAxis":     map[string]any{"type": "string", "description": "X-axis label"},
				"yAxis":     map[string]any{"type": "string", "description": "Y-axis label"},
			}, "data", "chartType"),
		},
		{
			Name:        "voiceSynthesis",
			Description: "Convert text to speech",
			Parameters: objectSchema(map[string]any{
				"text":     map[string]any{"type": "string", "description": "Text to convert to speech"},
				"voice":    map[string]any{"type": "string", "enum": []string{"male", "female", "neutral"}, "default": "neutral"},
				"language": map[string]any{"type": "string", "default": "en-US"},
			}, "text"),
		},
		{
			Name:        "vectorSearch",
			Description: "Search for similar documents in the knowledge base using vector embeddings",
			Parameters: objectSchema(map[string]any{
				"query": map[string]any{"type": "string", "description": "The search query to find similar documents"},
				"topK":  map[string]any{"type": "number", "description": "Number of similar documents to retrieve", "default": 5},
			}, "query"),
		},
		{
			Name:        "storeDocument",
			Description: "Store a document in the knowledge base for later retrieval",
			Parameters: objectSchema(map[string]any{
				"text":     map[string]any{"type": "string", "description": "The text content to store"},
				"metadata": map[string]any{"type": "object", "description": "Additional metadata to store with the document"},
			}, "text"),
		},
	}
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
