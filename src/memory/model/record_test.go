package model

import (
	"math"
	"testing"
	"time"
)

func TestEpochMillis(t *testing.T) {
	ref := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		in   any
		want int64
		ok   bool
	}{
		{"int64", int64(1700000000000), 1700000000000, true},
		{"int", 1700000000, 1700000000, true},
		{"float64", float64(1700000000000), 1700000000000, true},
		{"float32", float32(1024), 1024, true},
		{"numeric string", "1700000000000", 1700000000000, true},
		{"float string", "1700000000000.0", 1700000000000, true},
		{"rfc3339", ref.Format(time.RFC3339), ref.UnixMilli(), true},
		{"datetime", "2024-03-01 12:00:00", ref.UnixMilli(), true},
		{"date only", "2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), true},
		{"time.Time", ref, ref.UnixMilli(), true},
		{"zero", int64(0), 0, false},
		{"negative", int64(-1), 0, false},
		{"blank string", "   ", 0, false},
		{"garbage string", "not a time", 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := EpochMillis(tc.in)
			if ok != tc.ok {
				t.Fatalf("expected ok=%v, got %v", tc.ok, ok)
			}
			if ok && got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestValidRole(t *testing.T) {
	if !ValidRole(RoleUser) || !ValidRole(RoleAssistant) {
		t.Fatalf("expected both transcript roles to be valid")
	}
	for _, role := range []string{"system", "tool", "User", ""} {
		if ValidRole(role) {
			t.Fatalf("expected role %q to be rejected", role)
		}
	}
}

func TestStringFromAny(t *testing.T) {
	if got := StringFromAny("plain"); got != "plain" {
		t.Fatalf("expected plain, got %q", got)
	}
	if got := StringFromAny([]byte("bytes")); got != "bytes" {
		t.Fatalf("expected bytes, got %q", got)
	}
	if got := StringFromAny(42); got != "" {
		t.Fatalf("expected empty string for a non-string value, got %q", got)
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := CosineSimilarity([]float32{1, 0}, []float32{1, 0}); math.Abs(got-1) > 1e-9 {
		t.Fatalf("expected identical vectors to score 1, got %v", got)
	}
	if got := CosineSimilarity([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Fatalf("expected orthogonal vectors to score 0, got %v", got)
	}
	if got := CosineSimilarity([]float32{1, 0}, []float32{1}); got != 0 {
		t.Fatalf("expected mismatched lengths to score 0, got %v", got)
	}
	if got := CosineSimilarity(nil, nil); got != 0 {
		t.Fatalf("expected empty vectors to score 0, got %v", got)
	}
}
