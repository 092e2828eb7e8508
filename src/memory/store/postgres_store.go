package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists records in a pgvector-enabled table:
//
//	CREATE TABLE conversation_vectors (
//	    id        TEXT PRIMARY KEY,
//	    embedding VECTOR(1024),
//	    metadata  JSONB NOT NULL DEFAULT '{}'
//	);
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
}

var _ VectorStore = (*PostgresStore)(nil)
var _ SchemaInitializer = (*PostgresStore)(nil)
var _ Counter = (*PostgresStore)(nil)

const defaultPostgresTable = "conversation_vectors"

func NewPostgresStore(ctx context.Context, dsn, table string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	if table == "" {
		table = defaultPostgresTable
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{pool: pool, table: table}, nil
}

func (ps *PostgresStore) Upsert(ctx context.Context, id string, embedding []float32, metadata map[string]any) error {
	if ps == nil || ps.pool == nil {
		return errors.New("nil postgres store")
	}
	if id == "" {
		return errors.New("record id is empty")
	}
	meta, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, embedding, metadata) VALUES ($1, $2::vector, $3::jsonb)
		ON CONFLICT (id) DO UPDATE SET embedding = EXCLUDED.embedding, metadata = EXCLUDED.metadata`, ps.table)
	_, err = ps.pool.Exec(ctx, query, id, vectorLiteral(embedding), string(meta))
	return err
}

func (ps *PostgresStore) Query(ctx context.Context, embedding []float32, topK int, filter Filter) ([]Match, error) {
	if ps == nil || ps.pool == nil {
		return nil, errors.New("nil postgres store")
	}
	if topK <= 0 {
		return nil, nil
	}
	vec := vectorLiteral(embedding)
	args := []any{vec, topK}
	where := ""
	if len(filter) > 0 {
		f, err := json.Marshal(filter)
		if err != nil {
			return nil, fmt.Errorf("marshal filter: %w", err)
		}
		where = "WHERE metadata @> $3::jsonb"
		args = append(args, string(f))
	}
	query := fmt.Sprintf(`SELECT id, metadata, 1 - (embedding <=> $1::vector) AS score
		FROM %s %s ORDER BY embedding <=> $1::vector LIMIT $2`, ps.table, where)
	rows, err := ps.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var (
			id    string
			meta  []byte
			score float64
		)
		if err := rows.Scan(&id, &meta, &score); err != nil {
			return nil, err
		}
		metadata := map[string]any{}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &metadata); err != nil {
				return nil, fmt.Errorf("decode metadata for %s: %w", id, err)
			}
		}
		matches = append(matches, Match{ID: id, Score: score, Metadata: metadata})
	}
	return matches, rows.Err()
}

func (ps *PostgresStore) Delete(ctx context.Context, ids ...string) error {
	if ps == nil || ps.pool == nil || len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ANY($1)", ps.table)
	_, err := ps.pool.Exec(ctx, query, ids)
	return err
}

func (ps *PostgresStore) DeleteByFilter(ctx context.Context, filter Filter) error {
	if ps == nil || ps.pool == nil {
		return nil
	}
	if len(filter) == 0 {
		return errors.New("delete by filter requires a non-empty filter")
	}
	f, err := json.Marshal(filter)
	if err != nil {
		return fmt.Errorf("marshal filter: %w", err)
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE metadata @> $1::jsonb", ps.table)
	_, err = ps.pool.Exec(ctx, query, string(f))
	return err
}

func (ps *PostgresStore) Count(ctx context.Context) (int, error) {
	if ps == nil || ps.pool == nil {
		return 0, nil
	}
	var count int
	err := ps.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", ps.table)).Scan(&count)
	return count, err
}

// CreateSchema executes the SQL file at schemaPath. The file is expected to
// create the extension, the table, and the vector index.
func (ps *PostgresStore) CreateSchema(ctx context.Context, schemaPath string) error {
	if ps == nil || ps.pool == nil {
		return errors.New("nil postgres store")
	}
	if schemaPath == "" {
		return errors.New("schemaPath is empty")
	}
	sql, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("read schema file: %w", err)
	}
	if _, err := ps.pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close releases the underlying pool.
func (ps *PostgresStore) Close() {
	if ps != nil && ps.pool != nil {
		ps.pool.Close()
	}
}

// vectorLiteral renders a float32 slice in pgvector's text form, e.g. [1,2,3].
func vectorLiteral(vec []float32) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}
