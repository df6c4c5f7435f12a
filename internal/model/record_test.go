package model

import (
	"reflect"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

func TestWorkItemFromNode(t *testing.T) {
	node := dbtype.Node{Props: map[string]any{
		"id":                 "wi-abc123",
		"title":              "Ship the importer",
		"description":        "CSV first",
		"type":               "TASK",
		"status":             "IN_PROGRESS",
		"priorityExecutive":  0.8,
		"priorityIndividual": 0.2,
		"priorityCommunity":  0.5,
		"priorityComputed":   0.53,
		"radius":             0.47,
		"metadata":           `{"sprint":"24"}`,
		"createdAt":          "2026-01-02T03:04:05Z",
		"updatedAt":          "2026-01-03T03:04:05Z",
	}}

	item := WorkItemFromNode(node)
	if item.ID != "wi-abc123" || item.Title != "Ship the importer" {
		t.Errorf("identity = %q / %q", item.ID, item.Title)
	}
	if item.Type != TypeTask || item.Status != StatusInProgress {
		t.Errorf("type/status = %s / %s", item.Type, item.Status)
	}
	if item.Priority.Executive != 0.8 || item.Priority.Computed != 0.53 || item.Radius != 0.47 {
		t.Errorf("priority = %+v radius = %v", item.Priority, item.Radius)
	}
	if !reflect.DeepEqual(item.Metadata, map[string]any{"sprint": "24"}) {
		t.Errorf("metadata = %v", item.Metadata)
	}
	if item.CreatedAt != "2026-01-02T03:04:05Z" {
		t.Errorf("createdAt = %q", item.CreatedAt)
	}
}

func TestWorkItemFromNode_IntegerPriorities(t *testing.T) {
	// Whole numbers come back from the store as int64.
	node := dbtype.Node{Props: map[string]any{
		"id":               "wi-x",
		"priorityComputed": int64(1),
		"radius":           int64(0),
	}}
	item := WorkItemFromNode(node)
	if item.Priority.Computed != 1.0 || item.Radius != 0.0 {
		t.Errorf("computed = %v radius = %v", item.Priority.Computed, item.Radius)
	}
}

func TestDecodeMetadata(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]any
	}{
		{"empty string", "", nil},
		{"empty object", "{}", nil},
		{"unparsable", "{not json", nil},
		{"wrong shape", `[1,2]`, nil},
		{"populated", `{"k":"v"}`, map[string]any{"k": "v"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeMetadata(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("decodeMetadata(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestEdgeFromRelationship(t *testing.T) {
	rel := dbtype.Relationship{
		Type: "DEPENDS_ON",
		Props: map[string]any{
			"id":        "ed-xyz",
			"sourceId":  "wi-a",
			"targetId":  "wi-b",
			"weight":    0.7,
			"metadata":  `{"reason":"api contract"}`,
			"createdAt": "2026-01-02T03:04:05Z",
		},
	}
	edge := EdgeFromRelationship(rel)
	if edge.ID != "ed-xyz" || edge.SourceID != "wi-a" || edge.TargetID != "wi-b" {
		t.Errorf("endpoints = %+v", edge)
	}
	if edge.Type != EdgeDependsOn || edge.Weight != 0.7 {
		t.Errorf("type/weight = %s / %v", edge.Type, edge.Weight)
	}
	if edge.Metadata["reason"] != "api contract" {
		t.Errorf("metadata = %v", edge.Metadata)
	}
}

func TestGraphFromNode(t *testing.T) {
	node := dbtype.Node{Props: map[string]any{
		"id":            "gr-root",
		"name":          "Platform",
		"type":          "PROJECT",
		"status":        "ACTIVE",
		"settings":      `{"visibility":"internal"}`,
		"nodeCount":     int64(12),
		"edgeCount":     int64(7),
		"parentGraphId": "gr-parent",
	}}
	g := GraphFromNode(node)
	if g.ID != "gr-root" || g.Name != "Platform" {
		t.Errorf("identity = %q / %q", g.ID, g.Name)
	}
	if g.Type != GraphProject || g.Status != GraphStatusActive {
		t.Errorf("type/status = %s / %s", g.Type, g.Status)
	}
	if g.NodeCount != 12 || g.EdgeCount != 7 {
		t.Errorf("counts = %d / %d", g.NodeCount, g.EdgeCount)
	}
	if g.ParentGraphID != "gr-parent" {
		t.Errorf("parent = %q", g.ParentGraphID)
	}
}

func TestNodeListValue_SkipsNulls(t *testing.T) {
	rec := &neo4j.Record{
		Keys: []string{"contributors"},
		Values: []any{[]any{
			dbtype.Node{Props: map[string]any{"id": "alice"}},
			nil,
			dbtype.Node{Props: map[string]any{"id": "bob"}},
		}},
	}
	nodes := NodeListValue(rec, "contributors")
	if len(nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(nodes))
	}
	if nodes[0].Props["id"] != "alice" || nodes[1].Props["id"] != "bob" {
		t.Errorf("nodes = %v", nodes)
	}
}

func TestNodeValue_MissingColumn(t *testing.T) {
	rec := &neo4j.Record{Keys: []string{"n"}, Values: []any{nil}}
	if _, ok := NodeValue(rec, "n"); ok {
		t.Error("a null column must not report a node")
	}
	if _, ok := NodeValue(rec, "absent"); ok {
		t.Error("a missing column must not report a node")
	}
}
