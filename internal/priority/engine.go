// Package priority computes and persists work item priority scores.
//
// Each item carries three independent priority components, set by
// different stakeholders. The computed score is their fixed weighted
// blend, and the visual radius shrinks as the score grows:
//
//	computed = 0.4*executive + 0.3*individual + 0.3*community
//	radius   = 1 - computed
//
// All components live in [0, 1]; out-of-range inputs are rejected, not
// clamped, so a caller mistake never silently skews a score.
package priority

import (
	"context"

	"github.com/calperry/workgraph/internal/graph"
	"github.com/calperry/workgraph/internal/model"
	"github.com/calperry/workgraph/internal/sanitize"
	"go.uber.org/zap"
)

// Blend weights. They sum to 1 so computed stays in [0, 1].
const (
	WeightExecutive  = 0.4
	WeightIndividual = 0.3
	WeightCommunity  = 0.3
)

// Compute returns the weighted blend of the three components.
func Compute(executive, individual, community float64) float64 {
	return WeightExecutive*executive + WeightIndividual*individual + WeightCommunity*community
}

// Radius converts a computed score to a rendering radius. High priority
// items draw tight, low priority items draw wide.
func Radius(computed float64) float64 {
	return 1 - computed
}

// Update carries the components a caller wants to change. Nil means
// keep the stored value.
type Update struct {
	NodeID     string
	Executive  *float64
	Individual *float64
	Community  *float64
}

// Engine reads stored components, merges updates, and writes back the
// recomputed score and radius.
type Engine struct {
	run graph.Runner
	log *zap.Logger
}

func New(run graph.Runner, log *zap.Logger) *Engine {
	return &Engine{run: run, log: log.Named("priority")}
}

// UpdateOne applies a single priority update and returns the node with
// its recomputed score. Components not present in the update keep their
// stored values.
func (e *Engine) UpdateOne(ctx context.Context, u Update) (*model.WorkItem, error) {
	id, err := sanitize.NodeID(u.NodeID)
	if err != nil {
		return nil, err
	}

	records, err := e.run.Run(ctx,
		"MATCH (n:WorkItem {id: $nodeId}) RETURN n", map[string]any{"nodeId": id})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, graph.NotFoundf("node %s not found", id)
	}
	node, ok := model.NodeValue(records[0], "n")
	if !ok {
		return nil, graph.Storagef(nil, "node %s returned no value", id)
	}
	current := model.WorkItemFromNode(node)

	executive, err := mergeComponent("executive", current.Priority.Executive, u.Executive)
	if err != nil {
		return nil, err
	}
	individual, err := mergeComponent("individual", current.Priority.Individual, u.Individual)
	if err != nil {
		return nil, err
	}
	community, err := mergeComponent("community", current.Priority.Community, u.Community)
	if err != nil {
		return nil, err
	}

	computed := Compute(executive, individual, community)
	records, err = e.run.Run(ctx, `
		MATCH (n:WorkItem {id: $nodeId})
		SET n.priorityExecutive = $executive,
		    n.priorityIndividual = $individual,
		    n.priorityCommunity = $community,
		    n.priorityComputed = $computed,
		    n.radius = $radius,
		    n.updatedAt = $now
		RETURN n`,
		map[string]any{
			"nodeId": id, "executive": executive, "individual": individual,
			"community": community, "computed": computed,
			"radius": Radius(computed), "now": model.Now(),
		})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, graph.NotFoundf("node %s not found", id)
	}

	node, _ = model.NodeValue(records[0], "n")
	e.log.Info("priority updated",
		zap.String("id", id), zap.Float64("computed", computed))
	return model.WorkItemFromNode(node), nil
}

// BatchResult reports one item's outcome in a batch update.
type BatchResult struct {
	NodeID   string  `json:"node_id"`
	Computed float64 `json:"computed,omitempty"`
	Radius   float64 `json:"radius,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// BatchReport aggregates a batch of priority updates.
type BatchReport struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Results   []BatchResult `json:"results"`
}

// UpdateMany applies each update independently. A failed item is
// reported and skipped; it never aborts the rest of the batch.
func (e *Engine) UpdateMany(ctx context.Context, updates []Update) *BatchReport {
	report := &BatchReport{Total: len(updates), Results: make([]BatchResult, 0, len(updates))}
	for _, u := range updates {
		item, err := e.UpdateOne(ctx, u)
		if err != nil {
			report.Failed++
			report.Results = append(report.Results, BatchResult{NodeID: u.NodeID, Error: err.Error()})
			continue
		}
		report.Succeeded++
		report.Results = append(report.Results, BatchResult{
			NodeID:   item.ID,
			Computed: item.Priority.Computed,
			Radius:   item.Radius,
		})
	}
	return report
}

func mergeComponent(name string, stored float64, update *float64) (float64, error) {
	if update == nil {
		return stored, nil
	}
	v, err := sanitize.Priority(*update)
	if err != nil {
		return 0, graph.Invalidf("%s priority: %v", name, err)
	}
	return v, nil
}
