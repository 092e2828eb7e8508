package relay

import (
	"context"

	"github.com/relay-agents/relay/src/models"
)

// RespondStream runs one chat turn, streaming chunks as the model produces
// them. The exchange is written to memory after the final chunk when the
// stream completed without error; writeback failures never reach the stream.
func (r *Relay) RespondStream(ctx context.Context, req Request) (<-chan models.StreamChunk, error) {
	turn, err := r.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	inner, err := turn.model.GenerateStream(ctx, turn.prompt)
	if err != nil {
		return nil, err
	}

	out := make(chan models.StreamChunk, 16)
	go func() {
		defer close(out)
		for chunk := range inner {
			out <- chunk
			if chunk.Done && chunk.Err == nil && chunk.FullText != "" {
				r.writer.RecordExchange(ctx, turn.agent.ID, req.SessionID, turn.userMessage, chunk.FullText)
			}
		}
	}()
	return out, nil
}
