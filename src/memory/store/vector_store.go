package store

import "context"

// Match is a scored hit returned by a similarity query. Metadata is kept
// loosely typed; stores round-trip it through JSON and callers validate it.
type Match struct {
	ID       string
	Score    float64
	Metadata map[string]any
}

// Filter is an equality filter over metadata fields. A nil filter matches
// everything.
type Filter map[string]any

// VectorStore is the persistence boundary for conversation records.
type VectorStore interface {
	// Upsert inserts or replaces the record with the given id.
	Upsert(ctx context.Context, id string, embedding []float32, metadata map[string]any) error
	// Query returns up to topK records ranked by similarity to the embedding.
	Query(ctx context.Context, embedding []float32, topK int, filter Filter) ([]Match, error)
	// Delete removes records by id. Unknown ids are not an error.
	Delete(ctx context.Context, ids ...string) error
	// DeleteByFilter removes every record whose metadata matches the filter.
	DeleteByFilter(ctx context.Context, filter Filter) error
}

// SchemaInitializer is implemented by stores that can bootstrap their own
// collection, table, or index.
type SchemaInitializer interface {
	CreateSchema(ctx context.Context, schema string) error
}

// Counter is implemented by stores that can report how many records they hold.
type Counter interface {
	Count(ctx context.Context) (int, error)
}
