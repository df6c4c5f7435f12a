package mutate

import (
	"context"
	"strings"

	"github.com/calperry/workgraph/internal/graph"
	"github.com/calperry/workgraph/internal/model"
	"github.com/calperry/workgraph/internal/sanitize"
	"go.uber.org/zap"
)

// CreateGraphParams is the input for CreateGraph.
type CreateGraphParams struct {
	Name          string
	Type          string
	Settings      map[string]any
	ParentGraphID string
}

// CreateGraph persists a new graph container with zeroed counters.
func (e *Executor) CreateGraph(ctx context.Context, p CreateGraphParams) (*model.Graph, error) {
	name := sanitize.String(p.Name, e.limits.MaxTitleLength)
	if name == "" {
		return nil, graph.Invalidf("graph name is required")
	}

	graphType := model.GraphProject
	if t := strings.TrimSpace(p.Type); t != "" {
		graphType = model.GraphType(strings.ToUpper(t))
		if !model.ValidGraphType(graphType) {
			return nil, graph.Invalidf("unknown graph type %q", p.Type)
		}
	}

	settings, err := sanitize.Metadata(p.Settings, e.limits.MaxMetadataBytes)
	if err != nil {
		return nil, err
	}

	if p.ParentGraphID != "" {
		if err := e.ensureGraphExists(ctx, p.ParentGraphID); err != nil {
			return nil, err
		}
	}

	id, err := sanitize.NewGraphID()
	if err != nil {
		return nil, err
	}

	ts := now()
	records, err := e.run.Run(ctx, `
		CREATE (g:Graph {
			id: $id, name: $name, type: $type, status: 'ACTIVE',
			settings: $settings, nodeCount: 0, edgeCount: 0,
			parentGraphId: $parentGraphId,
			createdAt: $now, updatedAt: $now
		})
		RETURN g`,
		map[string]any{
			"id": id, "name": name, "type": string(graphType),
			"settings": settings, "parentGraphId": p.ParentGraphID, "now": ts,
		})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, graph.Storagef(nil, "create returned no graph for %s", id)
	}

	if p.ParentGraphID != "" {
		_, err = e.run.Run(ctx, `
			MATCH (g:Graph {id: $id})
			MATCH (p:Graph {id: $parentId})
			MERGE (g)-[:CHILD_OF]->(p)`,
			map[string]any{"id": id, "parentId": p.ParentGraphID})
		if err != nil {
			return nil, err
		}
	}

	n, _ := model.NodeValue(records[0], "g")
	e.log.Info("graph created", zap.String("id", id), zap.String("type", string(graphType)))
	return model.GraphFromNode(n), nil
}

// ListGraphs returns graph containers, optionally filtered by status.
func (e *Executor) ListGraphs(ctx context.Context, status string) ([]*model.Graph, error) {
	query := "MATCH (g:Graph)\nRETURN g ORDER BY g.createdAt DESC"
	params := map[string]any{}
	if s := strings.TrimSpace(status); s != "" {
		query = "MATCH (g:Graph)\nWHERE g.status = $status\nRETURN g ORDER BY g.createdAt DESC"
		params["status"] = strings.ToUpper(s)
	}

	records, err := e.run.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	graphs := make([]*model.Graph, 0, len(records))
	for _, rec := range records {
		if n, ok := model.NodeValue(rec, "g"); ok {
			graphs = append(graphs, model.GraphFromNode(n))
		}
	}
	return graphs, nil
}

// GraphPatch is a typed partial update for graph containers.
type GraphPatch struct {
	Name          *string
	Settings      map[string]any
	SettingsSet   bool
	ParentGraphID *string // empty string detaches from the parent
}

// UpdateGraph applies a partial update. Re-parenting walks the proposed
// parent's ancestry first and rejects any link that would close a
// parent/child cycle.
func (e *Executor) UpdateGraph(ctx context.Context, graphID string, patch GraphPatch) (*model.Graph, error) {
	id, err := sanitize.NodeID(graphID)
	if err != nil {
		return nil, err
	}

	parts := []string{"g.updatedAt = $now"}
	params := map[string]any{"graphId": id, "now": now()}

	if patch.Name != nil {
		name := sanitize.String(*patch.Name, e.limits.MaxTitleLength)
		if name == "" {
			return nil, graph.Invalidf("graph name cannot be empty")
		}
		parts = append(parts, "g.name = $name")
		params["name"] = name
	}
	if patch.SettingsSet {
		settings, err := sanitize.Metadata(patch.Settings, e.limits.MaxMetadataBytes)
		if err != nil {
			return nil, err
		}
		parts = append(parts, "g.settings = $settings")
		params["settings"] = settings
	}
	if patch.ParentGraphID != nil {
		parentID := strings.TrimSpace(*patch.ParentGraphID)
		if parentID != "" {
			if err := e.ensureAcyclicParent(ctx, id, parentID); err != nil {
				return nil, err
			}
		}
		parts = append(parts, "g.parentGraphId = $parentGraphId")
		params["parentGraphId"] = parentID
	}

	records, err := e.run.Run(ctx,
		"MATCH (g:Graph {id: $graphId})\nSET "+strings.Join(parts, ", ")+"\nRETURN g", params)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, graph.NotFoundf("graph %s not found", id)
	}

	if patch.ParentGraphID != nil {
		if err := e.relinkParent(ctx, id, strings.TrimSpace(*patch.ParentGraphID)); err != nil {
			return nil, err
		}
	}

	n, _ := model.NodeValue(records[0], "g")
	e.log.Info("graph updated", zap.String("id", id))
	return model.GraphFromNode(n), nil
}

// ensureAcyclicParent walks the candidate parent's ancestry chain and
// rejects the link if the graph itself appears in it.
func (e *Executor) ensureAcyclicParent(ctx context.Context, graphID, parentID string) error {
	if graphID == parentID {
		return graph.Invalidf("graph %s cannot be its own parent", graphID)
	}

	records, err := e.run.Run(ctx, `
		MATCH (p:Graph {id: $parentId})
		OPTIONAL MATCH (p)-[:CHILD_OF*0..]->(anc:Graph)
		RETURN collect(DISTINCT anc.id) AS ancestors`,
		map[string]any{"parentId": parentID})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return graph.NotFoundf("graph %s not found", parentID)
	}
	for _, ancestor := range graph.StringSliceValue(records[0], "ancestors") {
		if ancestor == graphID {
			return graph.Invalidf("linking graph %s under %s would create a cycle", graphID, parentID)
		}
	}
	return nil
}

func (e *Executor) relinkParent(ctx context.Context, graphID, parentID string) error {
	_, err := e.run.Run(ctx, `
		MATCH (g:Graph {id: $graphId})-[r:CHILD_OF]->(:Graph)
		DELETE r`,
		map[string]any{"graphId": graphID})
	if err != nil {
		return err
	}
	if parentID == "" {
		return nil
	}
	_, err = e.run.Run(ctx, `
		MATCH (g:Graph {id: $graphId})
		MATCH (p:Graph {id: $parentId})
		MERGE (g)-[:CHILD_OF]->(p)`,
		map[string]any{"graphId": graphID, "parentId": parentID})
	return err
}

// ArchiveGraph soft-deletes a graph: status, timestamp, and reason.
func (e *Executor) ArchiveGraph(ctx context.Context, graphID, reason string) (*model.Graph, error) {
	id, err := sanitize.NodeID(graphID)
	if err != nil {
		return nil, err
	}

	records, err := e.run.Run(ctx, `
		MATCH (g:Graph {id: $graphId})
		SET g.status = 'ARCHIVED', g.archivedAt = $now,
		    g.archiveReason = $reason, g.updatedAt = $now
		RETURN g`,
		map[string]any{"graphId": id, "now": now(), "reason": sanitize.String(reason, e.limits.MaxDescriptionLength)})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, graph.NotFoundf("graph %s not found", id)
	}

	n, _ := model.NodeValue(records[0], "g")
	e.log.Info("graph archived", zap.String("id", id))
	return model.GraphFromNode(n), nil
}

// DeleteGraphResult reports the impact of a hard graph deletion.
type DeleteGraphResult struct {
	GraphID      string `json:"graph_id"`
	NodesDeleted int    `json:"nodes_deleted"`
}

// DeleteGraph hard-deletes a graph container. A graph that still owns
// work items is only deleted with force=true, which removes the owned
// items and their relationships as well.
func (e *Executor) DeleteGraph(ctx context.Context, graphID string, force bool) (*DeleteGraphResult, error) {
	id, err := sanitize.NodeID(graphID)
	if err != nil {
		return nil, err
	}

	records, err := e.run.Run(ctx, `
		MATCH (g:Graph {id: $graphId})
		OPTIONAL MATCH (g)-[:CONTAINS]->(n:WorkItem)
		RETURN g.id AS id, count(n) AS owned`,
		map[string]any{"graphId": id})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, graph.NotFoundf("graph %s not found", id)
	}

	owned := int(graph.IntValue(records[0], "owned"))
	if owned > 0 && !force {
		return nil, graph.Invalidf(
			"graph %s still owns %d work items; use force=true to delete them", id, owned)
	}

	_, err = e.run.Run(ctx, `
		MATCH (g:Graph {id: $graphId})
		OPTIONAL MATCH (g)-[:CONTAINS]->(n:WorkItem)
		DETACH DELETE n, g`,
		map[string]any{"graphId": id})
	if err != nil {
		return nil, err
	}

	e.log.Info("graph deleted", zap.String("id", id), zap.Int("nodes_deleted", owned))
	return &DeleteGraphResult{GraphID: id, NodesDeleted: owned}, nil
}
