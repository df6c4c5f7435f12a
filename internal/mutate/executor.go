// Package mutate implements single-entity create/update/delete for work
// items, edges, and graph containers, including the lazy contributor
// upsert-and-link path. All writes go through a graph.Runner, so the
// same executor works against an auto-commit client or inside one
// explicit transaction (the bulk coordinator's mode).
package mutate

import (
	"context"
	"strings"

	"github.com/calperry/workgraph/internal/config"
	"github.com/calperry/workgraph/internal/graph"
	"github.com/calperry/workgraph/internal/model"
	"github.com/calperry/workgraph/internal/sanitize"
	"go.uber.org/zap"
)

// Executor performs graph mutations.
type Executor struct {
	run    graph.Runner
	limits config.Limits
	log    *zap.Logger
}

// New creates an executor over the given runner.
func New(run graph.Runner, limits config.Limits, log *zap.Logger) *Executor {
	return &Executor{run: run, limits: limits, log: log}
}

// WithRunner returns a copy of the executor bound to a different runner.
// The bulk coordinator uses this to route mutations through one open
// transaction.
func (e *Executor) WithRunner(run graph.Runner) *Executor {
	return &Executor{run: run, limits: e.limits, log: e.log}
}

// now aliases the shared timestamp helper for brevity in queries.
func now() string {
	return model.Now()
}

// CreateNodeParams is the input for CreateNode. ID is optional; when
// empty a unique one is generated.
type CreateNodeParams struct {
	ID             string
	Title          string
	Description    string
	Type           string
	Status         string
	Metadata       map[string]any
	ContributorIDs []string
	GraphID        string
}

// CreateNode sanitizes and persists a new work item with zeroed
// priority fields and the default unit-radius layout position, then
// upserts and links each referenced contributor.
func (e *Executor) CreateNode(ctx context.Context, p CreateNodeParams) (*model.WorkItem, error) {
	title := sanitize.String(p.Title, e.limits.MaxTitleLength)
	if title == "" {
		return nil, graph.Invalidf("title is required")
	}
	description := sanitize.String(p.Description, e.limits.MaxDescriptionLength)
	nodeType := sanitize.NodeType(p.Type)
	status := sanitize.NodeStatus(p.Status)

	metadata, err := sanitize.Metadata(p.Metadata, e.limits.MaxMetadataBytes)
	if err != nil {
		return nil, err
	}

	if len(p.ContributorIDs) > e.limits.MaxContributors {
		return nil, graph.Invalidf("contributor count %d exceeds limit %d",
			len(p.ContributorIDs), e.limits.MaxContributors)
	}
	contributors := make([]string, 0, len(p.ContributorIDs))
	for _, raw := range p.ContributorIDs {
		id, err := sanitize.NodeID(raw)
		if err != nil {
			return nil, err
		}
		contributors = append(contributors, id)
	}

	id := strings.TrimSpace(p.ID)
	if id != "" {
		if id, err = sanitize.NodeID(id); err != nil {
			return nil, err
		}
		if err := e.ensureIDFree(ctx, id); err != nil {
			return nil, err
		}
	} else {
		if id, err = sanitize.NewNodeID(); err != nil {
			return nil, err
		}
	}

	if p.GraphID != "" {
		if err := e.ensureGraphExists(ctx, p.GraphID); err != nil {
			return nil, err
		}
	}

	ts := now()
	records, err := e.run.Run(ctx, `
		CREATE (n:WorkItem {
			id: $id, title: $title, description: $description,
			type: $type, status: $status,
			priorityExecutive: 0.0, priorityIndividual: 0.0,
			priorityCommunity: 0.0, priorityComputed: 0.0,
			radius: 1.0,
			metadata: $metadata,
			createdAt: $now, updatedAt: $now
		})
		RETURN n`,
		map[string]any{
			"id": id, "title": title, "description": description,
			"type": string(nodeType), "status": string(status),
			"metadata": metadata, "now": ts,
		})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, graph.Storagef(nil, "create returned no node for %s", id)
	}

	if p.GraphID != "" {
		if err := e.linkToGraph(ctx, p.GraphID, id, ts); err != nil {
			return nil, err
		}
	}

	for _, contributorID := range contributors {
		if err := e.linkContributor(ctx, id, contributorID, ts); err != nil {
			return nil, err
		}
	}

	node, _ := model.NodeValue(records[0], "n")
	item := model.WorkItemFromNode(node)
	item.Contributors = contributors

	e.log.Info("node created",
		zap.String("id", id),
		zap.String("type", string(nodeType)),
		zap.Int("contributors", len(contributors)),
	)
	return item, nil
}

// ensureIDFree rejects caller-supplied IDs that already exist.
func (e *Executor) ensureIDFree(ctx context.Context, id string) error {
	records, err := e.run.Run(ctx,
		"MATCH (n:WorkItem {id: $id}) RETURN n.id AS id", map[string]any{"id": id})
	if err != nil {
		return err
	}
	if len(records) > 0 {
		return graph.Conflictf("node id %s already exists", id)
	}
	return nil
}

func (e *Executor) ensureGraphExists(ctx context.Context, graphID string) error {
	records, err := e.run.Run(ctx,
		"MATCH (g:Graph {id: $graphId}) RETURN g.id AS id", map[string]any{"graphId": graphID})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return graph.NotFoundf("graph %s not found", graphID)
	}
	return nil
}

func (e *Executor) linkToGraph(ctx context.Context, graphID, nodeID, ts string) error {
	_, err := e.run.Run(ctx, `
		MATCH (g:Graph {id: $graphId})
		MATCH (n:WorkItem {id: $nodeId})
		MERGE (g)-[:CONTAINS]->(n)
		SET g.nodeCount = coalesce(g.nodeCount, 0) + 1, g.updatedAt = $now`,
		map[string]any{"graphId": graphID, "nodeId": nodeID, "now": ts})
	return err
}

// linkContributor lazily upserts the contributor and links it to the
// node. The MERGE keeps repeated links idempotent.
func (e *Executor) linkContributor(ctx context.Context, nodeID, contributorID, ts string) error {
	_, err := e.run.Run(ctx, `
		MATCH (n:WorkItem {id: $nodeId})
		MERGE (c:Contributor {id: $contributorId})
		ON CREATE SET c.name = $contributorId, c.createdAt = $now
		MERGE (c)-[:CONTRIBUTES_TO]->(n)`,
		map[string]any{"nodeId": nodeID, "contributorId": contributorID, "now": ts})
	return err
}

// UpdateNode applies a partial update: only the fields present in the
// patch are written, and updatedAt always refreshes. When the patch
// carries contributors, the full link set is replaced rather than
// diffed.
func (e *Executor) UpdateNode(ctx context.Context, nodeID string, patch NodePatch) (*model.WorkItem, error) {
	id, err := sanitize.NodeID(nodeID)
	if err != nil {
		return nil, err
	}

	ts := now()
	clause, params, err := patch.setClause(e.limits)
	if err != nil {
		return nil, err
	}
	params["nodeId"] = id
	params["now"] = ts

	records, err := e.run.Run(ctx,
		"MATCH (n:WorkItem {id: $nodeId})\nSET "+clause+"\nRETURN n", params)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, graph.NotFoundf("node %s not found", id)
	}

	item := model.WorkItemFromNode(mustNode(records[0]))

	if patch.ContributorsSet {
		contributors, err := e.replaceContributors(ctx, id, patch.ContributorIDs, ts)
		if err != nil {
			return nil, err
		}
		item.Contributors = contributors
	}

	e.log.Info("node updated", zap.String("id", id))
	return item, nil
}

// replaceContributors deletes every contributor link and recreates the
// set from scratch (delete-all-then-recreate, not a diff).
func (e *Executor) replaceContributors(ctx context.Context, nodeID string, contributorIDs []string, ts string) ([]string, error) {
	if len(contributorIDs) > e.limits.MaxContributors {
		return nil, graph.Invalidf("contributor count %d exceeds limit %d",
			len(contributorIDs), e.limits.MaxContributors)
	}

	_, err := e.run.Run(ctx, `
		MATCH (:Contributor)-[r:CONTRIBUTES_TO]->(n:WorkItem {id: $nodeId})
		DELETE r`,
		map[string]any{"nodeId": nodeID})
	if err != nil {
		return nil, err
	}

	linked := make([]string, 0, len(contributorIDs))
	for _, raw := range contributorIDs {
		contributorID, err := sanitize.NodeID(raw)
		if err != nil {
			return nil, err
		}
		if err := e.linkContributor(ctx, nodeID, contributorID, ts); err != nil {
			return nil, err
		}
		linked = append(linked, contributorID)
	}
	return linked, nil
}

// DeleteResult reports the impact of a node deletion.
type DeleteResult struct {
	NodeID               string `json:"node_id"`
	RelationshipsRemoved int    `json:"relationships_removed"`
}

// DeleteNode counts incident relationships for the impact report, then
// removes the node and all incident relationships in one atomic query.
func (e *Executor) DeleteNode(ctx context.Context, nodeID string) (*DeleteResult, error) {
	id, err := sanitize.NodeID(nodeID)
	if err != nil {
		return nil, err
	}

	// Keep the owning graph's counter in step before the node goes.
	_, err = e.run.Run(ctx, `
		MATCH (g:Graph)-[:CONTAINS]->(n:WorkItem {id: $nodeId})
		SET g.nodeCount = CASE WHEN coalesce(g.nodeCount, 0) > 0 THEN g.nodeCount - 1 ELSE 0 END`,
		map[string]any{"nodeId": id})
	if err != nil {
		return nil, err
	}

	records, err := e.run.Run(ctx, `
		MATCH (n:WorkItem {id: $nodeId})
		OPTIONAL MATCH (n)-[r]-()
		WITH n, count(r) AS relCount
		DETACH DELETE n
		RETURN relCount`,
		map[string]any{"nodeId": id})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, graph.NotFoundf("node %s not found", id)
	}

	removed := int(graph.IntValue(records[0], "relCount"))
	e.log.Info("node deleted", zap.String("id", id), zap.Int("relationships", removed))
	return &DeleteResult{NodeID: id, RelationshipsRemoved: removed}, nil
}
