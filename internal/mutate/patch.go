package mutate

import (
	"strings"

	"github.com/calperry/workgraph/internal/config"
	"github.com/calperry/workgraph/internal/graph"
	"github.com/calperry/workgraph/internal/model"
	"github.com/calperry/workgraph/internal/sanitize"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// NodePatch is a typed partial update: nil pointers mean "leave the
// field untouched". Metadata and contributor replacement carry explicit
// presence flags because their zero values are meaningful.
type NodePatch struct {
	Title       *string
	Description *string
	Type        *string
	Status      *string

	Metadata    map[string]any
	MetadataSet bool

	ContributorIDs  []string
	ContributorsSet bool
}

// setClause resolves the patch into a SET clause touching only the
// fields that are present. updatedAt is always included.
func (p NodePatch) setClause(limits config.Limits) (string, map[string]any, error) {
	parts := []string{"n.updatedAt = $now"}
	params := map[string]any{}

	if p.Title != nil {
		title := sanitize.String(*p.Title, limits.MaxTitleLength)
		if title == "" {
			return "", nil, graph.Invalidf("title cannot be empty")
		}
		parts = append(parts, "n.title = $title")
		params["title"] = title
	}
	if p.Description != nil {
		parts = append(parts, "n.description = $description")
		params["description"] = sanitize.String(*p.Description, limits.MaxDescriptionLength)
	}
	if p.Type != nil {
		parts = append(parts, "n.type = $type")
		params["type"] = string(sanitize.NodeType(*p.Type))
	}
	if p.Status != nil {
		parts = append(parts, "n.status = $status")
		params["status"] = string(sanitize.NodeStatus(*p.Status))
	}
	if p.MetadataSet {
		metadata, err := sanitize.Metadata(p.Metadata, limits.MaxMetadataBytes)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, "n.metadata = $metadata")
		params["metadata"] = metadata
	}

	return strings.Join(parts, ", "), params, nil
}

func mustNode(rec *neo4j.Record) dbtype.Node {
	n, _ := model.NodeValue(rec, "n")
	return n
}
