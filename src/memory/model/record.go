package model

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Roles a stored conversation turn may carry. Anything else is rejected at
// merge time.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// UnknownConversation groups records whose metadata lost its conversation id.
const UnknownConversation = "unknown"

// Turn is one validated conversation record after retrieval.
type Turn struct {
	ID             string
	Role           string
	Content        string
	Timestamp      int64 // epoch milliseconds
	ConversationID string
	Score          float64
}

// Group is a conversation thread reassembled from retrieved turns.
type Group struct {
	ConversationID string
	Turns          []Turn
	Latest         int64
}

// StringFromAny coerces loosely typed metadata values to a string.
func StringFromAny(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	}
	return ""
}

// EpochMillis coerces a metadata timestamp to epoch milliseconds. Stores
// round-trip timestamps through JSON, so numbers come back as float64 and
// some clients write numeric strings or RFC3339 dates instead. Returns false
// for anything that does not yield a positive value.
func EpochMillis(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, t > 0
	case int:
		return int64(t), t > 0
	case float64:
		ms := int64(t)
		return ms, ms > 0
	case float32:
		ms := int64(t)
		return ms, ms > 0
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, n > 0
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			ms := int64(f)
			return ms, ms > 0
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if ts, err := time.Parse(layout, s); err == nil {
				ms := ts.UnixMilli()
				return ms, ms > 0
			}
		}
		return 0, false
	case time.Time:
		ms := t.UnixMilli()
		return ms, ms > 0
	}
	return 0, false
}

// ValidRole reports whether role is one of the two transcript roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant
}

// CosineSimilarity computes the cosine similarity of two vectors. Mismatched
// or zero-length vectors score zero.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
