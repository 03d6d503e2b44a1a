// Package content reduces the backend's heterogeneous response payloads to
// display text and attributes member outputs to named agents.
package content

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Singular string-valued fields commonly used for human text, in priority
// order.
var textFields = []string{"text", "content", "response", "output"}

// Fields whose sequence value holds displayable parts.
var sequenceFields = []string{"content", "messages", "parts"}

// Normalize reduces an arbitrarily shaped payload fragment to a single
// display string. Total: it never panics and never loops, even on cyclic
// structures (a revisited map or slice is treated as empty). Idempotent on
// plain strings.
func Normalize(v any) string {
	return normalize(v, make(map[uintptr]struct{}))
}

func normalize(v any, seen map[uintptr]struct{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []any:
		if revisit(val, seen) {
			return ""
		}
		parts := make([]string, 0, len(val))
		for _, elem := range val {
			if s := normalize(elem, seen); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	case map[string]any:
		if revisit(val, seen) {
			return ""
		}
		return normalizeMap(val, seen)
	default:
		return fmt.Sprint(val)
	}
}

func normalizeMap(m map[string]any, seen map[uintptr]struct{}) string {
	for _, field := range textFields {
		if s, ok := m[field].(string); ok && s != "" {
			return s
		}
	}
	for _, field := range sequenceFields {
		if seq, ok := m[field].([]any); ok {
			if s := normalize(seq, seen); s != "" {
				return s
			}
		}
	}
	if nested, ok := m["content"].(map[string]any); ok {
		if s := normalize(nested, seen); s != "" {
			return s
		}
	}

	// Nothing matched: degrade to a debug-readable serialization rather
	// than silently losing the value. Map keys marshal in sorted order, so
	// the output is stable.
	raw, err := json.Marshal(m)
	if err != nil {
		// Cyclic or otherwise unmarshalable structure.
		return fmt.Sprintf("(unrenderable payload: %v)", err)
	}
	return string(raw)
}

// revisit records v's backing pointer in seen and reports whether it was
// already present. Guards a single Normalize call against cyclic payloads.
func revisit(v any, seen map[uintptr]struct{}) bool {
	ptr := reflect.ValueOf(v).Pointer()
	if _, ok := seen[ptr]; ok {
		return true
	}
	seen[ptr] = struct{}{}
	return false
}
