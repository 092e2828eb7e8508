package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/relay-agents/relay/src/memory/model"
)

type inMemoryRecord struct {
	embedding []float32
	metadata  map[string]any
}

// InMemoryStore keeps records in a map and ranks queries by cosine
// similarity. It is the zero-config default and the test double.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]inMemoryRecord
}

var _ VectorStore = (*InMemoryStore)(nil)
var _ Counter = (*InMemoryStore)(nil)

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]inMemoryRecord)}
}

func (ms *InMemoryStore) Upsert(_ context.Context, id string, embedding []float32, metadata map[string]any) error {
	if id == "" {
		return errors.New("record id is empty")
	}
	meta := make(map[string]any, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.records[id] = inMemoryRecord{
		embedding: append([]float32(nil), embedding...),
		metadata:  meta,
	}
	return nil
}

func (ms *InMemoryStore) Query(_ context.Context, embedding []float32, topK int, filter Filter) ([]Match, error) {
	if topK <= 0 {
		return nil, nil
	}
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	matches := make([]Match, 0, len(ms.records))
	for id, rec := range ms.records {
		if !matchesFilter(rec.metadata, filter) {
			continue
		}
		meta := make(map[string]any, len(rec.metadata))
		for k, v := range rec.metadata {
			meta[k] = v
		}
		matches = append(matches, Match{
			ID:       id,
			Score:    model.CosineSimilarity(embedding, rec.embedding),
			Metadata: meta,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (ms *InMemoryStore) Delete(_ context.Context, ids ...string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for _, id := range ids {
		delete(ms.records, id)
	}
	return nil
}

func (ms *InMemoryStore) DeleteByFilter(_ context.Context, filter Filter) error {
	if len(filter) == 0 {
		return errors.New("delete by filter requires a non-empty filter")
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for id, rec := range ms.records {
		if matchesFilter(rec.metadata, filter) {
			delete(ms.records, id)
		}
	}
	return nil
}

func (ms *InMemoryStore) Count(_ context.Context) (int, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.records), nil
}

func matchesFilter(metadata map[string]any, filter Filter) bool {
	for key, want := range filter {
		got, ok := metadata[key]
		if !ok || got != want {
			return false
		}
	}
	return true
}
