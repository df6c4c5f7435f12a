// Package model defines the work-graph domain types: work items, typed
// edges, contributors, and graph containers, plus the closed enum sets
// the rest of the engine validates against.
package model

import "time"

// Now returns the timestamp format stored on all entities.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ─── Enums ───────────────────────────────────────────────────────────────────

// NodeType classifies a work item.
type NodeType string

const (
	TypeOutcome    NodeType = "OUTCOME"
	TypeEpic       NodeType = "EPIC"
	TypeInitiative NodeType = "INITIATIVE"
	TypeStory      NodeType = "STORY"
	TypeTask       NodeType = "TASK"
	TypeBug        NodeType = "BUG"
	TypeFeature    NodeType = "FEATURE"
	TypeMilestone  NodeType = "MILESTONE"
)

// DefaultNodeType is used when a caller supplies an unknown type.
const DefaultNodeType = TypeTask

// NodeStatus tracks a work item's lifecycle.
type NodeStatus string

const (
	StatusProposed   NodeStatus = "PROPOSED"
	StatusPlanned    NodeStatus = "PLANNED"
	StatusInProgress NodeStatus = "IN_PROGRESS"
	StatusBlocked    NodeStatus = "BLOCKED"
	StatusCompleted  NodeStatus = "COMPLETED"
	StatusArchived   NodeStatus = "ARCHIVED"
)

// DefaultNodeStatus is used when a caller supplies an unknown status.
const DefaultNodeStatus = StatusProposed

// EdgeType classifies a directed relationship between two work items.
type EdgeType string

const (
	EdgeDependsOn EdgeType = "DEPENDS_ON"
	EdgeBlocks    EdgeType = "BLOCKS"
	EdgeEnables   EdgeType = "ENABLES"
	EdgeRelatesTo EdgeType = "RELATES_TO"
	EdgeContains  EdgeType = "CONTAINS"
	EdgePartOf    EdgeType = "PART_OF"
)

// GraphType classifies a graph container.
type GraphType string

const (
	GraphProject   GraphType = "PROJECT"
	GraphWorkspace GraphType = "WORKSPACE"
	GraphSubgraph  GraphType = "SUBGRAPH"
	GraphTemplate  GraphType = "TEMPLATE"
)

// GraphStatus tracks a graph container's lifecycle.
type GraphStatus string

const (
	GraphStatusActive   GraphStatus = "ACTIVE"
	GraphStatusArchived GraphStatus = "ARCHIVED"
	GraphStatusDraft    GraphStatus = "DRAFT"
)

var nodeTypes = map[NodeType]bool{
	TypeOutcome: true, TypeEpic: true, TypeInitiative: true, TypeStory: true,
	TypeTask: true, TypeBug: true, TypeFeature: true, TypeMilestone: true,
}

var nodeStatuses = map[NodeStatus]bool{
	StatusProposed: true, StatusPlanned: true, StatusInProgress: true,
	StatusBlocked: true, StatusCompleted: true, StatusArchived: true,
}

var edgeTypes = map[EdgeType]bool{
	EdgeDependsOn: true, EdgeBlocks: true, EdgeEnables: true,
	EdgeRelatesTo: true, EdgeContains: true, EdgePartOf: true,
}

var graphTypes = map[GraphType]bool{
	GraphProject: true, GraphWorkspace: true, GraphSubgraph: true, GraphTemplate: true,
}

// ValidNodeType reports whether t is in the closed node type set.
func ValidNodeType(t NodeType) bool { return nodeTypes[t] }

// ValidNodeStatus reports whether s is in the closed status set.
func ValidNodeStatus(s NodeStatus) bool { return nodeStatuses[s] }

// ValidEdgeType reports whether t is in the closed edge type set.
func ValidEdgeType(t EdgeType) bool { return edgeTypes[t] }

// ValidGraphType reports whether t is in the closed graph type set.
func ValidGraphType(t GraphType) bool { return graphTypes[t] }

// ─── Types ───────────────────────────────────────────────────────────────────

// Priority holds the three independent priority inputs and the derived
// composite score. Each component is in [0,1].
type Priority struct {
	Executive  float64 `json:"executive"`
	Individual float64 `json:"individual"`
	Community  float64 `json:"community"`
	Computed   float64 `json:"computed"`
}

// WorkItem is the primary node type: a task, epic, feature, etc.
// Radius is a derived layout distance (1 − computed priority) consumed
// by visualization frontends, not a ranking concern.
type WorkItem struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description,omitempty"`
	Type         NodeType       `json:"type"`
	Status       NodeStatus     `json:"status"`
	Priority     Priority       `json:"priority"`
	Radius       float64        `json:"radius"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Contributors []string       `json:"contributors,omitempty"`
	CreatedAt    string         `json:"created_at"`
	UpdatedAt    string         `json:"updated_at"`
}

// Edge is a typed, directed relationship between two work items.
type Edge struct {
	ID        string         `json:"id"`
	SourceID  string         `json:"source_id"`
	TargetID  string         `json:"target_id"`
	Type      EdgeType       `json:"type"`
	Weight    float64        `json:"weight"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt string         `json:"created_at"`
}

// Contributor is a person or agent related to work items. Contributors
// are created lazily (upserted) when a work item first references them.
type Contributor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Graph is a container/project entity that owns work items.
type Graph struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Type          GraphType   `json:"type"`
	Status        GraphStatus `json:"status"`
	Settings      map[string]any `json:"settings,omitempty"`
	NodeCount     int         `json:"node_count"`
	EdgeCount     int         `json:"edge_count"`
	ParentGraphID string      `json:"parent_graph_id,omitempty"`
	ArchivedAt    string      `json:"archived_at,omitempty"`
	ArchiveReason string      `json:"archive_reason,omitempty"`
	CreatedAt     string      `json:"created_at"`
	UpdatedAt     string      `json:"updated_at"`
}
