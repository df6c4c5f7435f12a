package mutate

import (
	"context"
	"fmt"

	"github.com/calperry/workgraph/internal/graph"
	"github.com/calperry/workgraph/internal/model"
	"github.com/calperry/workgraph/internal/sanitize"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"go.uber.org/zap"
)

// CreateEdgeParams is the input for CreateEdge. Weight defaults to 1.0
// when nil; a nil Metadata leaves an existing edge's metadata alone on
// upsert.
type CreateEdgeParams struct {
	SourceID string
	TargetID string
	Type     string
	Weight   *float64
	Metadata map[string]any
}

// CreateEdge creates a typed, directed relationship between two
// existing work items. Creation is an idempotent upsert keyed on
// (source, target, type): repeating the call merges properties instead
// of duplicating the edge.
func (e *Executor) CreateEdge(ctx context.Context, p CreateEdgeParams) (*model.Edge, error) {
	sourceID, err := sanitize.NodeID(p.SourceID)
	if err != nil {
		return nil, err
	}
	targetID, err := sanitize.NodeID(p.TargetID)
	if err != nil {
		return nil, err
	}
	if sourceID == targetID {
		return nil, graph.Invalidf("edge endpoints must differ")
	}
	edgeType, err := sanitize.EdgeType(p.Type)
	if err != nil {
		return nil, err
	}

	if err := e.ensureEndpoints(ctx, sourceID, targetID); err != nil {
		return nil, err
	}

	id, err := sanitize.NewEdgeID()
	if err != nil {
		return nil, err
	}
	weight := 1.0
	if p.Weight != nil {
		weight = *p.Weight
	}
	metadata, err := sanitize.Metadata(p.Metadata, e.limits.MaxMetadataBytes)
	if err != nil {
		return nil, err
	}

	onMatch := ""
	if p.Weight != nil {
		onMatch += "e.weight = $weight"
	}
	if p.Metadata != nil {
		if onMatch != "" {
			onMatch += ", "
		}
		onMatch += "e.metadata = $metadata"
	}
	if onMatch != "" {
		onMatch = "ON MATCH SET " + onMatch + "\n"
	}

	// The relationship type is interpolated, never parameterized —
	// Cypher does not allow parameterized types. sanitize.EdgeType has
	// already pinned it to the closed set.
	query := fmt.Sprintf(`
		MATCH (a:WorkItem {id: $sourceId})
		MATCH (b:WorkItem {id: $targetId})
		MERGE (a)-[e:%s]->(b)
		ON CREATE SET
			e.id = $id, e.sourceId = $sourceId, e.targetId = $targetId,
			e.weight = $weight, e.metadata = $metadata, e.createdAt = $now
		%sRETURN e, e.id = $id AS created`, edgeType, onMatch)

	records, err := e.run.Run(ctx, query, map[string]any{
		"sourceId": sourceID, "targetId": targetID,
		"id": id, "weight": weight, "metadata": metadata, "now": now(),
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, graph.Storagef(nil, "edge merge returned no relationship")
	}

	rec := records[0]
	created := false
	if v, ok := rec.Get("created"); ok {
		created, _ = v.(bool)
	}
	if created {
		// Keep the owning graph's edge counter in step when both
		// endpoints live in the same container.
		_, err = e.run.Run(ctx, `
			MATCH (g:Graph)-[:CONTAINS]->(:WorkItem {id: $sourceId})
			MATCH (g)-[:CONTAINS]->(:WorkItem {id: $targetId})
			SET g.edgeCount = coalesce(g.edgeCount, 0) + 1`,
			map[string]any{"sourceId": sourceID, "targetId": targetID})
		if err != nil {
			return nil, err
		}
	}

	var rel dbtype.Relationship
	if v, ok := rec.Get("e"); ok {
		rel, _ = v.(dbtype.Relationship)
	}
	edge := model.EdgeFromRelationship(rel)

	e.log.Info("edge upserted",
		zap.String("source", sourceID),
		zap.String("target", targetID),
		zap.String("type", string(edgeType)),
		zap.Bool("created", created),
	)
	return edge, nil
}

// DeleteEdge removes the relationship matching (source, target, type).
func (e *Executor) DeleteEdge(ctx context.Context, sourceID, targetID, edgeType string) error {
	src, err := sanitize.NodeID(sourceID)
	if err != nil {
		return err
	}
	tgt, err := sanitize.NodeID(targetID)
	if err != nil {
		return err
	}
	et, err := sanitize.EdgeType(edgeType)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		MATCH (a:WorkItem {id: $sourceId})-[e:%s]->(b:WorkItem {id: $targetId})
		DELETE e
		RETURN count(e) AS deleted`, et)

	records, err := e.run.Run(ctx, query, map[string]any{"sourceId": src, "targetId": tgt})
	if err != nil {
		return err
	}
	deleted := 0
	if len(records) > 0 {
		deleted = int(graph.IntValue(records[0], "deleted"))
	}
	if deleted == 0 {
		return graph.NotFoundf("edge %s-[%s]->%s not found", src, et, tgt)
	}

	_, err = e.run.Run(ctx, `
		MATCH (g:Graph)-[:CONTAINS]->(:WorkItem {id: $sourceId})
		MATCH (g)-[:CONTAINS]->(:WorkItem {id: $targetId})
		SET g.edgeCount = CASE WHEN coalesce(g.edgeCount, 0) > 0 THEN g.edgeCount - 1 ELSE 0 END`,
		map[string]any{"sourceId": src, "targetId": tgt})
	if err != nil {
		return err
	}

	e.log.Info("edge deleted",
		zap.String("source", src),
		zap.String("target", tgt),
		zap.String("type", string(et)),
	)
	return nil
}

// ensureEndpoints verifies both endpoints exist before any mutation,
// naming the missing one in the error.
func (e *Executor) ensureEndpoints(ctx context.Context, sourceID, targetID string) error {
	records, err := e.run.Run(ctx, `
		OPTIONAL MATCH (a:WorkItem {id: $sourceId})
		OPTIONAL MATCH (b:WorkItem {id: $targetId})
		RETURN a.id AS source, b.id AS target`,
		map[string]any{"sourceId": sourceID, "targetId": targetID})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return graph.NotFoundf("nodes %s and %s not found", sourceID, targetID)
	}
	rec := records[0]
	if graph.StringValue(rec, "source") == "" {
		return graph.NotFoundf("source node %s not found", sourceID)
	}
	if graph.StringValue(rec, "target") == "" {
		return graph.NotFoundf("target node %s not found", targetID)
	}
	return nil
}
