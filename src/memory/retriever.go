package memory

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/relay-agents/relay/src/concurrent"
	"github.com/relay-agents/relay/src/memory/embed"
	"github.com/relay-agents/relay/src/memory/model"
	"github.com/relay-agents/relay/src/memory/store"
)

// DefaultProbes are generic queries fanned out alongside the user's message so
// retrieval still surfaces history when the message itself embeds poorly.
var DefaultProbes = []string{
	"conversation history",
	"user assistant chat",
	"previous discussion",
	"past conversation",
	"chat history",
}

const (
	// DefaultTopK is the per-query match budget.
	DefaultTopK = 100
	// DefaultRecentLimit caps merged records before grouping.
	DefaultRecentLimit = 50
	// DefaultGroupLimit caps how many conversations survive ranking.
	DefaultGroupLimit = 15
)

// Retriever reassembles recent conversation transcripts from the vector store.
type Retriever struct {
	store       store.VectorStore
	embedder    embed.Embedder
	logger      *slog.Logger
	probes      []string
	topK        int
	recentLimit int
	groupLimit  int
	parallelism int
}

// RetrieverOptions configures a Retriever. Zero values take the defaults
// above; Probes nil means DefaultProbes.
type RetrieverOptions struct {
	Store       store.VectorStore
	Embedder    embed.Embedder
	Logger      *slog.Logger
	Probes      []string
	TopK        int
	RecentLimit int
	GroupLimit  int
	Parallelism int
}

func NewRetriever(opts RetrieverOptions) *Retriever {
	r := &Retriever{
		store:       opts.Store,
		embedder:    opts.Embedder,
		logger:      opts.Logger,
		probes:      opts.Probes,
		topK:        opts.TopK,
		recentLimit: opts.RecentLimit,
		groupLimit:  opts.GroupLimit,
		parallelism: opts.Parallelism,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.probes == nil {
		r.probes = DefaultProbes
	}
	if r.topK <= 0 {
		r.topK = DefaultTopK
	}
	if r.recentLimit <= 0 {
		r.recentLimit = DefaultRecentLimit
	}
	if r.groupLimit <= 0 {
		r.groupLimit = DefaultGroupLimit
	}
	if r.parallelism <= 0 {
		r.parallelism = len(DefaultProbes) + 1
	}
	return r
}

// Retrieve returns the recent transcript most relevant to userMessage,
// chronologically ordered. Retrieval is best-effort: embedding or store
// failures drop the affected query and total failure yields an empty
// transcript, never an error.
func (r *Retriever) Retrieve(ctx context.Context, userMessage string) []model.Turn {
	queries := r.candidateQueries(userMessage)

	// Each query is independent; the merge below is commutative apart from
	// the max-score tie-break, so fan-out order does not matter.
	results, _ := concurrent.ParallelMap(ctx, queries, func(query string) ([]store.Match, error) {
		vec, err := r.embedder.Embed(ctx, query)
		if err != nil {
			r.logger.Warn("embed failed, skipping query", "query", query, "error", err)
			return nil, nil
		}
		matches, err := r.store.Query(ctx, vec, r.topK, nil)
		if err != nil {
			r.logger.Warn("vector query failed, skipping query", "query", query, "error", err)
			return nil, nil
		}
		return matches, nil
	}, r.parallelism)

	merged := make(map[string]model.Turn)
	for _, matches := range results {
		for _, m := range matches {
			turn, ok := turnFromMatch(m)
			if !ok {
				continue
			}
			if prev, seen := merged[turn.ID]; seen && prev.Score > turn.Score {
				// Later entries always win the metadata; only the best
				// score is retained.
				turn.Score = prev.Score
			}
			merged[turn.ID] = turn
		}
	}

	turns := make([]model.Turn, 0, len(merged))
	for _, t := range merged {
		turns = append(turns, t)
	}

	// Newest records first, capped before grouping.
	sort.SliceStable(turns, func(i, j int) bool { return turns[i].Timestamp > turns[j].Timestamp })
	if len(turns) > r.recentLimit {
		turns = turns[:r.recentLimit]
	}

	groups := groupByConversation(turns)
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Latest > groups[j].Latest })
	if len(groups) > r.groupLimit {
		groups = groups[:r.groupLimit]
	}

	out := make([]model.Turn, 0, len(turns))
	for _, g := range groups {
		out = append(out, g.Turns...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

func (r *Retriever) candidateQueries(userMessage string) []string {
	queries := make([]string, 0, len(r.probes)+1)
	if strings.TrimSpace(userMessage) != "" {
		queries = append(queries, userMessage)
	}
	return append(queries, r.probes...)
}

// turnFromMatch validates a raw match into a transcript turn. Records with a
// foreign role, blank content, or a timestamp that does not coerce to a
// positive epoch-milliseconds value are rejected. Turn text lives under the
// "text" metadata key; "content" is accepted for records written by other
// producers.
func turnFromMatch(m store.Match) (model.Turn, bool) {
	if m.ID == "" || m.Metadata == nil {
		return model.Turn{}, false
	}
	role := model.StringFromAny(m.Metadata["role"])
	if !model.ValidRole(role) {
		return model.Turn{}, false
	}
	content := model.StringFromAny(m.Metadata["text"])
	if content == "" {
		content = model.StringFromAny(m.Metadata["content"])
	}
	if strings.TrimSpace(content) == "" {
		return model.Turn{}, false
	}
	ts, ok := model.EpochMillis(m.Metadata["timestamp"])
	if !ok {
		return model.Turn{}, false
	}
	return model.Turn{
		ID:             m.ID,
		Role:           role,
		Content:        content,
		Timestamp:      ts,
		ConversationID: model.StringFromAny(m.Metadata["conversationId"]),
		Score:          m.Score,
	}, true
}

func groupByConversation(turns []model.Turn) []model.Group {
	index := make(map[string]int)
	groups := make([]model.Group, 0)
	for _, t := range turns {
		key := t.ConversationID
		if key == "" {
			key = model.UnknownConversation
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, model.Group{ConversationID: key})
		}
		groups[i].Turns = append(groups[i].Turns, t)
		if t.Timestamp > groups[i].Latest {
			groups[i].Latest = t.Timestamp
		}
	}
	for i := range groups {
		g := groups[i].Turns
		sort.SliceStable(g, func(a, b int) bool { return g[a].Timestamp < g[b].Timestamp })
	}
	return groups
}
