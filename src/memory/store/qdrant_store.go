package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Distance string

const (
	DistanceCosine Distance = "Cosine"
	DistanceDot    Distance = "Dot"
	DistanceEuclid Distance = "Euclid"
)

// CreateCollectionRequest matches Qdrant's API; Vectors supports single or named vectors.
type CreateCollectionRequest struct {
	Vectors                json.RawMessage `json:"vectors"` // {"size":1024,"distance":"Cosine"} OR {"text":{"size":768,"distance":"Cosine"}}
	ShardNumber            *int            `json:"shard_number,omitempty"`
	ReplicationFactor      *int            `json:"replication_factor,omitempty"`
	WriteConsistencyFactor *int            `json:"write_consistency_factor,omitempty"`
	OnDiskPayload          *bool           `json:"on_disk_payload,omitempty"`
}

// qdrantStatus supports both `status: "ok"` and `status: {"error":"..."}`.
type qdrantStatus struct {
	State string // "ok" or "error"
	Error string // non-empty if error
}

func (s *qdrantStatus) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		s.State = strings.ToLower(v)
		return nil
	}
	var obj struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	if obj.Error != "" {
		s.State = "error"
		s.Error = obj.Error
	}
	return nil
}

type qdrantEnvelope[T any] struct {
	Status qdrantStatus `json:"status"`
	Time   float64      `json:"time"`
	Result T            `json:"result"`
}

type qdrantPointResult struct {
	ID      json.RawMessage `json:"id"`
	Score   float64         `json:"score"`
	Payload map[string]any  `json:"payload"`
}

type qdrantCountResult struct {
	Count int `json:"count"`
}

// schema file format expected by CreateSchema (JSON)
type qdrantSchemaFile struct {
	BaseURL    string                  `json:"base_url"`   // e.g. "http://localhost:6333"
	APIKey     string                  `json:"api_key"`    // optional; falls back to env QDRANT_API_KEY
	Collection string                  `json:"collection"` // required
	Request    CreateCollectionRequest `json:"request"`    // required
}

// recordIDKey carries the caller's record id in the point payload. Qdrant only
// accepts integers and UUIDs as point ids, so the structured record ids used
// by conversation records cannot be point ids themselves.
const recordIDKey = "record_id"

// QdrantStore is a VectorStore over the Qdrant REST API.
type QdrantStore struct {
	baseURL    string
	apiKey     string
	collection string
	client     *http.Client
}

var _ VectorStore = (*QdrantStore)(nil)
var _ SchemaInitializer = (*QdrantStore)(nil)
var _ Counter = (*QdrantStore)(nil)

// NewQdrantStore creates a Qdrant-backed VectorStore implementation.
func NewQdrantStore(baseURL, collection, apiKey string) *QdrantStore {
	if baseURL == "" {
		baseURL = "http://localhost:6333"
	}
	return &QdrantStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		collection: collection,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

// PointID derives the Qdrant point id for a record id. The mapping is
// deterministic so a replayed upsert overwrites the same point.
func PointID(recordID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(recordID)).String()
}

// Upsert writes one point keyed by the record id.
func (qs *QdrantStore) Upsert(ctx context.Context, id string, embedding []float32, metadata map[string]any) error {
	if qs == nil {
		return errors.New("nil qdrant store")
	}
	if qs.collection == "" {
		return errors.New("qdrant collection is empty")
	}
	if id == "" {
		return errors.New("record id is empty")
	}
	payload := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		payload[k] = v
	}
	payload[recordIDKey] = id
	req := map[string]any{
		"points": []map[string]any{{
			"id":      PointID(id),
			"vector":  embedding,
			"payload": payload,
		}},
	}
	var resp qdrantEnvelope[json.RawMessage]
	if err := qs.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s/points?wait=true", url.PathEscape(qs.collection)), req, &resp); err != nil {
		return err
	}
	if !strings.EqualFold(resp.Status.State, "ok") && resp.Status.Error != "" {
		return errors.New(resp.Status.Error)
	}
	return nil
}

// Query performs a similarity search and maps payloads back to matches.
func (qs *QdrantStore) Query(ctx context.Context, embedding []float32, topK int, filter Filter) ([]Match, error) {
	if qs == nil {
		return nil, errors.New("nil qdrant store")
	}
	if topK <= 0 {
		return nil, nil
	}
	reqBody := map[string]any{
		"vector":       embedding,
		"limit":        topK,
		"with_payload": true,
	}
	if f := qdrantFilter(filter); f != nil {
		reqBody["filter"] = f
	}
	var resp qdrantEnvelope[[]qdrantPointResult]
	if err := qs.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/search", url.PathEscape(qs.collection)), reqBody, &resp); err != nil {
		return nil, err
	}
	matches := make([]Match, 0, len(resp.Result))
	for _, point := range resp.Result {
		matches = append(matches, matchFromPoint(point))
	}
	return matches, nil
}

// Delete removes points by record id.
func (qs *QdrantStore) Delete(ctx context.Context, ids ...string) error {
	if qs == nil || len(ids) == 0 {
		return nil
	}
	points := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		points = append(points, PointID(id))
	}
	if len(points) == 0 {
		return nil
	}
	req := map[string]any{"points": points}
	return qs.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/delete?wait=true", url.PathEscape(qs.collection)), req, nil)
}

// DeleteByFilter removes every point whose payload matches the filter.
func (qs *QdrantStore) DeleteByFilter(ctx context.Context, filter Filter) error {
	if qs == nil {
		return nil
	}
	f := qdrantFilter(filter)
	if f == nil {
		return errors.New("delete by filter requires a non-empty filter")
	}
	req := map[string]any{"filter": f}
	return qs.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/delete?wait=true", url.PathEscape(qs.collection)), req, nil)
}

// Count returns the total number of points in the collection.
func (qs *QdrantStore) Count(ctx context.Context) (int, error) {
	if qs == nil {
		return 0, nil
	}
	req := map[string]any{"exact": true}
	var resp qdrantEnvelope[qdrantCountResult]
	if err := qs.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/count", url.PathEscape(qs.collection)), req, &resp); err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

// CreateSchema implements SchemaInitializer.
// schemaPath must point to a JSON file that matches qdrantSchemaFile.
func (qs *QdrantStore) CreateSchema(ctx context.Context, schemaPath string) error {
	if schemaPath == "" {
		return errors.New("schemaPath is empty")
	}

	f, err := os.Open(schemaPath)
	if err != nil {
		return fmt.Errorf("open schema file: %w", err)
	}
	defer f.Close()

	// Limit read to 1 MiB for safety.
	data, err := io.ReadAll(io.LimitReader(f, 1<<20))
	if err != nil {
		return fmt.Errorf("read schema file: %w", err)
	}

	var cfg qdrantSchemaFile
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("unmarshal schema file (JSON): %w", err)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = qs.baseURL
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("QDRANT_API_KEY")
	}
	if cfg.Collection == "" {
		cfg.Collection = qs.collection
	}
	if cfg.Collection == "" {
		return errors.New("schema file missing 'collection'")
	}
	if len(cfg.Request.Vectors) == 0 {
		return errors.New("schema file 'request.vectors' is required")
	}

	return qs.createCollection(ctx, cfg.BaseURL, cfg.APIKey, cfg.Collection, cfg.Request)
}

func (qs *QdrantStore) createCollection(ctx context.Context, baseURL, apiKey, collection string, req CreateCollectionRequest) error {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return fmt.Errorf("bad baseURL: %w", err)
	}
	u.Path = fmt.Sprintf("/collections/%s", url.PathEscape(collection))

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, u.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		// Either header works; sending both covers deployments with either check.
		httpReq.Header.Set("api-key", apiKey)
		httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := qs.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var env qdrantEnvelope[json.RawMessage]
	_ = json.Unmarshal(respBody, &env) // best-effort parse

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Non-2xx: surface structured error and stay idempotent for existing collections.
	if env.Status.Error != "" {
		low := strings.ToLower(env.Status.Error)
		if strings.Contains(low, "already exists") {
			return nil
		}
		return errors.New(env.Status.Error)
	}

	return fmt.Errorf("qdrant error: http %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
}

func (qs *QdrantStore) do(ctx context.Context, method, path string, body any, out any) error {
	if qs == nil {
		return errors.New("nil qdrant store")
	}
	u := qs.baseURL + path

	var buf io.ReadWriter
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewBuffer(b)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if qs.apiKey != "" {
		req.Header.Set("api-key", qs.apiKey)
	}
	resp, err := qs.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("qdrant %s %s -> http %d: %s",
			method, u, resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return err
		}
	}
	return nil
}

// qdrantFilter converts an equality filter into Qdrant's must/match form.
func qdrantFilter(filter Filter) map[string]any {
	if len(filter) == 0 {
		return nil
	}
	must := make([]map[string]any, 0, len(filter))
	for key, value := range filter {
		must = append(must, map[string]any{
			"key":   key,
			"match": map[string]any{"value": value},
		})
	}
	return map[string]any{"must": must}
}

func matchFromPoint(point qdrantPointResult) Match {
	meta := make(map[string]any, len(point.Payload))
	id := ""
	for k, v := range point.Payload {
		if k == recordIDKey {
			id, _ = v.(string)
			continue
		}
		meta[k] = v
	}
	if id == "" {
		// Old points written before record ids were carried in the payload.
		id = rawIDString(point.ID)
	}
	return Match{ID: id, Score: point.Score, Metadata: meta}
}

func rawIDString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
