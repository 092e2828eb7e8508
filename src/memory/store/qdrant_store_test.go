package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestPointIDDeterministic(t *testing.T) {
	a := PointID("conv_s_agent_100_user")
	b := PointID("conv_s_agent_100_user")
	if a != b {
		t.Fatalf("expected a stable point id, got %q and %q", a, b)
	}
	if a == PointID("conv_s_agent_101_user") {
		t.Fatalf("expected distinct record ids to map to distinct point ids")
	}
	if len(a) != 36 {
		t.Fatalf("expected a UUID point id, got %q", a)
	}
}

func TestQdrantUpsertSendsMappedPoint(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/collections/conversations/points" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, `{"status":"ok","result":{}}`)
	}))
	defer srv.Close()

	qs := NewQdrantStore(srv.URL, "conversations", "")
	err := qs.Upsert(context.Background(), "rec_1", []float32{0.1, 0.2}, map[string]any{"role": "user"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	points, ok := captured["points"].([]any)
	if !ok || len(points) != 1 {
		t.Fatalf("expected one point, got %v", captured["points"])
	}
	point := points[0].(map[string]any)
	if point["id"] != PointID("rec_1") {
		t.Fatalf("expected point id %q, got %v", PointID("rec_1"), point["id"])
	}
	payload := point["payload"].(map[string]any)
	if payload["record_id"] != "rec_1" || payload["role"] != "user" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestQdrantQueryRestoresRecordIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/conversations/points/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprintf(w, `{"status":"ok","result":[
			{"id":%q,"score":0.87,"payload":{"record_id":"rec_1","role":"user","content":"hello"}},
			{"id":42,"score":0.5,"payload":{"role":"assistant","content":"no record id"}}
		]}`, PointID("rec_1"))
	}))
	defer srv.Close()

	qs := NewQdrantStore(srv.URL, "conversations", "")
	matches, err := qs.Query(context.Background(), []float32{0.1}, 10, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].ID != "rec_1" {
		t.Fatalf("expected the payload record id, got %q", matches[0].ID)
	}
	if matches[0].Score != 0.87 {
		t.Fatalf("expected score 0.87, got %v", matches[0].Score)
	}
	if matches[1].ID != "42" {
		t.Fatalf("expected the raw point id as fallback, got %q", matches[1].ID)
	}
}

func TestQdrantQueryErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"status":{"error":"collection not found"},"result":null}`)
	}))
	defer srv.Close()

	qs := NewQdrantStore(srv.URL, "missing", "")
	if _, err := qs.Query(context.Background(), []float32{0.1}, 10, nil); err == nil {
		t.Fatalf("expected an error for a failed search")
	}
}

func TestQdrantDeleteMapsIDs(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/conversations/points/delete" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, `{"status":"ok","result":{}}`)
	}))
	defer srv.Close()

	qs := NewQdrantStore(srv.URL, "conversations", "")
	if err := qs.Delete(context.Background(), "rec_1", "", "rec_2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	points, _ := captured["points"].([]any)
	if len(points) != 2 {
		t.Fatalf("expected empty ids to be skipped, got %v", captured["points"])
	}
	if points[0] != PointID("rec_1") || points[1] != PointID("rec_2") {
		t.Fatalf("expected mapped point ids, got %v", points)
	}
}

func TestQdrantCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/conversations/points/count" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"status":"ok","result":{"count":7}}`)
	}))
	defer srv.Close()

	qs := NewQdrantStore(srv.URL, "conversations", "")
	count, err := qs.Count(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 7 {
		t.Fatalf("expected 7, got %d", count)
	}
}

func TestQdrantCreateSchemaFromFile(t *testing.T) {
	created := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && r.URL.Path == "/collections/conversations" {
			created = true
			fmt.Fprint(w, `{"status":"ok","result":true}`)
			return
		}
		t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
	}))
	defer srv.Close()

	schema := filepath.Join(t.TempDir(), "schema.json")
	body := fmt.Sprintf(`{"base_url":%q,"collection":"conversations","request":{"vectors":{"size":1024,"distance":"Cosine"}}}`, srv.URL)
	if err := os.WriteFile(schema, []byte(body), 0o600); err != nil {
		t.Fatalf("write schema file: %v", err)
	}

	qs := NewQdrantStore(srv.URL, "conversations", "")
	if err := qs.CreateSchema(context.Background(), schema); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatalf("expected the collection to be created")
	}
}
