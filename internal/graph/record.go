package graph

import "github.com/neo4j/neo4j-go-driver/v5/neo4j"

// Record column accessors. Neo4j returns int64 for integers and nil for
// OPTIONAL MATCH misses; these helpers absorb both.

// StringValue extracts a string column, or "" if absent or null.
func StringValue(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// IntValue extracts an integer column, or 0 if absent or null.
func IntValue(rec *neo4j.Record, key string) int64 {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

// FloatValue extracts a float column, or 0 if absent or null.
func FloatValue(rec *neo4j.Record, key string) float64 {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}

// StringSliceValue extracts a list-of-strings column.
func StringSliceValue(rec *neo4j.Record, key string) []string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
