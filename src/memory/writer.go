package memory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/relay-agents/relay/src/concurrent"
	"github.com/relay-agents/relay/src/memory/embed"
	"github.com/relay-agents/relay/src/memory/model"
	"github.com/relay-agents/relay/src/memory/store"
)

// Writer persists completed exchanges. Writes are best-effort: a lost record
// must never fail the chat turn, so every error is logged and swallowed.
type Writer struct {
	store    store.VectorStore
	embedder embed.Embedder
	logger   *slog.Logger
	now      func() time.Time
}

type WriterOptions struct {
	Store    store.VectorStore
	Embedder embed.Embedder
	Logger   *slog.Logger
	Now      func() time.Time // test hook
}

func NewWriter(opts WriterOptions) *Writer {
	w := &Writer{
		store:    opts.Store,
		embedder: opts.Embedder,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	if w.now == nil {
		w.now = time.Now
	}
	return w
}

// SessionFallback buckets anonymous traffic into hour-wide shared sessions.
func SessionFallback(now time.Time) string {
	return fmt.Sprintf("session_%d", now.UnixMilli()/int64(time.Hour/time.Millisecond))
}

// ConversationID derives the stable conversation key for a session/agent pair.
func ConversationID(sessionID, agentID string) string {
	return fmt.Sprintf("conv_%s_%s", sessionID, agentID)
}

type pendingRecord struct {
	id       string
	content  string
	metadata map[string]any
}

// RecordExchange stores the user turn and the assistant turn of one completed
// exchange. The assistant record is stamped one millisecond after the user
// record so replays keep their order.
func (w *Writer) RecordExchange(ctx context.Context, agentID, sessionID, userText, assistantText string) {
	if sessionID == "" {
		sessionID = SessionFallback(w.now())
	}
	conversationID := ConversationID(sessionID, agentID)
	ts := w.now().UnixMilli()

	records := []pendingRecord{
		{
			id:      fmt.Sprintf("%s_%d_%s", conversationID, ts, model.RoleUser),
			content: userText,
			metadata: map[string]any{
				"role":           model.RoleUser,
				"text":           userText,
				"timestamp":      ts,
				"conversationId": conversationID,
				"sessionId":      sessionID,
				"agentId":        agentID,
			},
		},
		{
			id:      fmt.Sprintf("%s_%d_%s", conversationID, ts+1, model.RoleAssistant),
			content: assistantText,
			metadata: map[string]any{
				"role":           model.RoleAssistant,
				"text":           assistantText,
				"timestamp":      ts + 1,
				"conversationId": conversationID,
				"sessionId":      sessionID,
				"agentId":        agentID,
			},
		},
	}

	_ = concurrent.ParallelForEach(ctx, records, func(rec pendingRecord) error {
		vec, err := w.embedder.Embed(ctx, rec.content)
		if err != nil {
			w.logger.Warn("embed failed, dropping record", "id", rec.id, "error", err)
			return nil
		}
		if err := w.store.Upsert(ctx, rec.id, vec, rec.metadata); err != nil {
			w.logger.Warn("vector upsert failed, dropping record", "id", rec.id, "error", err)
			return nil
		}
		w.logger.Debug("stored conversation record", "id", rec.id)
		return nil
	}, len(records))
}
