// Package sanitize is the input-hygiene and ID-generation collaborator:
// it cleans free-form caller input, validates enums and priorities, and
// mints collision-resistant identifiers.
package sanitize

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode"

	"github.com/calperry/workgraph/internal/graph"
	"github.com/calperry/workgraph/internal/model"
)

var nodeIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// MaxIDLength bounds caller-supplied identifiers.
const MaxIDLength = 64

// String strips control characters, collapses whitespace runs, trims,
// and truncates to maxLen runes.
func String(s string, maxLen int) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' {
			b.WriteRune(' ')
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	cleaned := strings.Join(strings.Fields(b.String()), " ")
	runes := []rune(cleaned)
	if maxLen > 0 && len(runes) > maxLen {
		runes = runes[:maxLen]
	}
	return strings.TrimSpace(string(runes))
}

// NodeID validates a caller-supplied identifier: non-empty, bounded,
// and restricted to URL-safe characters.
func NodeID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", graph.Invalidf("node id is required")
	}
	if len(id) > MaxIDLength {
		return "", graph.Invalidf("node id exceeds %d characters", MaxIDLength)
	}
	if !nodeIDPattern.MatchString(id) {
		return "", graph.Invalidf("node id %q contains invalid characters", id)
	}
	return id, nil
}

// Metadata cleans opaque structured data for storage: string values are
// stripped of control characters, the result is serialized to JSON, and
// the serialized form is bounded by maxBytes. A nil map serializes to
// the empty object.
func Metadata(m map[string]any, maxBytes int) (string, error) {
	if m == nil {
		return "{}", nil
	}
	cleaned := cleanValue(m)
	raw, err := json.Marshal(cleaned)
	if err != nil {
		return "", graph.Invalidf("metadata is not serializable: %v", err)
	}
	if maxBytes > 0 && len(raw) > maxBytes {
		return "", graph.Invalidf("metadata exceeds %d bytes", maxBytes)
	}
	return string(raw), nil
}

func cleanValue(v any) any {
	switch val := v.(type) {
	case string:
		return String(val, 0)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[String(k, MaxIDLength)] = cleanValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cleanValue(item)
		}
		return out
	default:
		return val
	}
}

// NodeType maps a caller-supplied type onto the closed set, falling
// back to the safe default for unknown values.
func NodeType(t string) model.NodeType {
	nt := model.NodeType(strings.ToUpper(strings.TrimSpace(t)))
	if model.ValidNodeType(nt) {
		return nt
	}
	return model.DefaultNodeType
}

// NodeStatus maps a caller-supplied status onto the closed set, falling
// back to the safe default for unknown values.
func NodeStatus(s string) model.NodeStatus {
	ns := model.NodeStatus(strings.ToUpper(strings.TrimSpace(s)))
	if model.ValidNodeStatus(ns) {
		return ns
	}
	return model.DefaultNodeStatus
}

// EdgeType validates a relationship type against the closed set. Unlike
// node type/status there is no safe default: an edge of the wrong kind
// changes graph semantics, so unknown values are rejected.
func EdgeType(t string) (model.EdgeType, error) {
	et := model.EdgeType(strings.ToUpper(strings.TrimSpace(t)))
	if !model.ValidEdgeType(et) {
		return "", graph.Invalidf("unknown edge type %q", t)
	}
	return et, nil
}

// Priority validates a priority component. Out-of-range values are
// rejected, never clamped.
func Priority(v float64) (float64, error) {
	if v < 0 || v > 1 {
		return 0, graph.Invalidf("priority %g out of range [0,1]", v)
	}
	return v, nil
}

// DetectIDCollisions returns the IDs that appear more than once,
// preserving first-occurrence order.
func DetectIDCollisions(ids []string) []string {
	seen := make(map[string]int, len(ids))
	var dups []string
	for _, id := range ids {
		if id == "" {
			continue
		}
		seen[id]++
		if seen[id] == 2 {
			dups = append(dups, id)
		}
	}
	return dups
}

// ValidateBulkOperation enforces the injected operation-count bound.
func ValidateBulkOperation(count, max int) error {
	if count == 0 {
		return graph.Invalidf("no operations provided")
	}
	if count > max {
		return graph.Invalidf("operation count %d exceeds limit %d", count, max)
	}
	return nil
}

// ValidateMemoryUsage rejects payloads whose serialized form exceeds
// maxMB megabytes.
func ValidateMemoryUsage(payload any, maxMB int) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return graph.Invalidf("payload is not serializable: %v", err)
	}
	if len(raw) > maxMB<<20 {
		return graph.Invalidf("payload exceeds %d MB limit", maxMB)
	}
	return nil
}
