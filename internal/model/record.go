package model

import (
	"encoding/json"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// Property keys used on stored nodes and relationships. Timestamps are
// stored as RFC3339 strings rather than native datetimes so they survive
// round trips through JSON tool payloads unchanged.
const (
	PropID                 = "id"
	PropTitle              = "title"
	PropDescription        = "description"
	PropType               = "type"
	PropStatus             = "status"
	PropPriorityExecutive  = "priorityExecutive"
	PropPriorityIndividual = "priorityIndividual"
	PropPriorityCommunity  = "priorityCommunity"
	PropPriorityComputed   = "priorityComputed"
	PropRadius             = "radius"
	PropMetadata           = "metadata"
	PropCreatedAt          = "createdAt"
	PropUpdatedAt          = "updatedAt"
)

// WorkItemFromNode maps a stored Neo4j node onto a WorkItem. The
// metadata property is deserialized from its stored JSON form back to
// structured data; an unparsable blob is returned as nil rather than
// failing the whole read.
func WorkItemFromNode(n dbtype.Node) *WorkItem {
	props := n.Props
	return &WorkItem{
		ID:          propString(props, PropID),
		Title:       propString(props, PropTitle),
		Description: propString(props, PropDescription),
		Type:        NodeType(propString(props, PropType)),
		Status:      NodeStatus(propString(props, PropStatus)),
		Priority: Priority{
			Executive:  propFloat(props, PropPriorityExecutive),
			Individual: propFloat(props, PropPriorityIndividual),
			Community:  propFloat(props, PropPriorityCommunity),
			Computed:   propFloat(props, PropPriorityComputed),
		},
		Radius:    propFloat(props, PropRadius),
		Metadata:  decodeMetadata(propString(props, PropMetadata)),
		CreatedAt: propString(props, PropCreatedAt),
		UpdatedAt: propString(props, PropUpdatedAt),
	}
}

// EdgeFromRelationship maps a stored relationship onto an Edge. The
// endpoint IDs are carried as relationship properties because element
// IDs are storage-internal.
func EdgeFromRelationship(r dbtype.Relationship) *Edge {
	props := r.Props
	return &Edge{
		ID:        propString(props, PropID),
		SourceID:  propString(props, "sourceId"),
		TargetID:  propString(props, "targetId"),
		Type:      EdgeType(r.Type),
		Weight:    propFloat(props, "weight"),
		Metadata:  decodeMetadata(propString(props, PropMetadata)),
		CreatedAt: propString(props, PropCreatedAt),
	}
}

// GraphFromNode maps a stored Neo4j node onto a Graph container.
func GraphFromNode(n dbtype.Node) *Graph {
	props := n.Props
	return &Graph{
		ID:            propString(props, PropID),
		Name:          propString(props, "name"),
		Type:          GraphType(propString(props, PropType)),
		Status:        GraphStatus(propString(props, PropStatus)),
		Settings:      decodeMetadata(propString(props, "settings")),
		NodeCount:     int(propInt(props, "nodeCount")),
		EdgeCount:     int(propInt(props, "edgeCount")),
		ParentGraphID: propString(props, "parentGraphId"),
		ArchivedAt:    propString(props, "archivedAt"),
		ArchiveReason: propString(props, "archiveReason"),
		CreatedAt:     propString(props, PropCreatedAt),
		UpdatedAt:     propString(props, PropUpdatedAt),
	}
}

// NodeValue extracts a dbtype.Node from a record column.
func NodeValue(rec *neo4j.Record, key string) (dbtype.Node, bool) {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return dbtype.Node{}, false
	}
	n, ok := v.(dbtype.Node)
	return n, ok
}

// NodeListValue extracts a list of dbtype.Node from a record column,
// skipping nulls produced by OPTIONAL MATCH.
func NodeListValue(rec *neo4j.Record, key string) []dbtype.Node {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	nodes := make([]dbtype.Node, 0, len(list))
	for _, item := range list {
		if n, ok := item.(dbtype.Node); ok {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func propString(props map[string]any, key string) string {
	if s, ok := props[key].(string); ok {
		return s
	}
	return ""
}

func propFloat(props map[string]any, key string) float64 {
	switch v := props[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

func propInt(props map[string]any, key string) int64 {
	switch v := props[key].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return 0
}

func decodeMetadata(raw string) map[string]any {
	if raw == "" || raw == "{}" {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil
	}
	if len(m) == 0 {
		return nil
	}
	return m
}
