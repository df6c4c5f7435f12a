// Package analytics derives graph-level insight from the stored work
// graph: an overall health score, bottleneck detection, and
// per-contributor workload analysis. The queries collect raw counts;
// all scoring and classification is done in pure functions so the
// thresholds are testable without a store.
package analytics

import (
	"context"
	"sort"

	"github.com/calperry/workgraph/internal/graph"
	"github.com/calperry/workgraph/internal/model"
	"go.uber.org/zap"
)

// DefaultBottleneckThreshold is the dependent count above which a node
// is considered a bottleneck when the caller does not supply one.
const DefaultBottleneckThreshold = 3

// Engine runs analytics queries against the graph.
type Engine struct {
	read graph.Runner
	log  *zap.Logger
}

func New(read graph.Runner, log *zap.Logger) *Engine {
	return &Engine{read: read, log: log.Named("analytics")}
}

// nodeStats collects per-node dependency counts in one round trip.
// DEPENDS_ON points from the dependent to its dependency, so incoming
// edges are dependents and outgoing edges are dependencies.
func (e *Engine) nodeStats(ctx context.Context, graphID string) ([]NodeStats, error) {
	match := "MATCH (n:WorkItem)"
	params := map[string]any{}
	if graphID != "" {
		match = "MATCH (:Graph {id: $graphId})-[:CONTAINS]->(n:WorkItem)"
		params["graphId"] = graphID
	}

	records, err := e.read.Run(ctx, match+`
		OPTIONAL MATCH (waiting:WorkItem)-[:DEPENDS_ON]->(n)
		OPTIONAL MATCH (n)-[:DEPENDS_ON]->(needed:WorkItem)
		RETURN n.id AS id, n.title AS title, n.status AS status,
		       coalesce(n.priorityComputed, 0.0) AS computed,
		       count(DISTINCT waiting) AS dependents,
		       count(DISTINCT needed) AS dependencies`,
		params)
	if err != nil {
		return nil, err
	}

	stats := make([]NodeStats, 0, len(records))
	for _, rec := range records {
		stats = append(stats, NodeStats{
			ID:           graph.StringValue(rec, "id"),
			Title:        graph.StringValue(rec, "title"),
			Status:       model.NodeStatus(graph.StringValue(rec, "status")),
			Computed:     graph.FloatValue(rec, "computed"),
			Dependents:   int(graph.IntValue(rec, "dependents")),
			Dependencies: int(graph.IntValue(rec, "dependencies")),
		})
	}
	return stats, nil
}

// GraphHealth scores the overall graph structure. An empty graphID
// scores the whole store.
func (e *Engine) GraphHealth(ctx context.Context, graphID string) (*HealthReport, error) {
	stats, err := e.nodeStats(ctx, graphID)
	if err != nil {
		return nil, err
	}

	bottlenecks := 0
	for _, n := range stats {
		if n.Dependents > DefaultBottleneckThreshold {
			bottlenecks++
		}
	}

	report := HealthScore(stats, bottlenecks)
	e.log.Info("graph health computed",
		zap.Float64("score", report.Score), zap.Int("nodes", report.NodeCount))
	return &report, nil
}

// DetectBottlenecks returns the nodes more than threshold items wait
// on, most severe first. threshold<=0 uses the default.
func (e *Engine) DetectBottlenecks(ctx context.Context, graphID string, threshold int) ([]Bottleneck, error) {
	if threshold <= 0 {
		threshold = DefaultBottleneckThreshold
	}
	stats, err := e.nodeStats(ctx, graphID)
	if err != nil {
		return nil, err
	}

	bottlenecks := make([]Bottleneck, 0)
	for _, n := range stats {
		if n.Dependents <= threshold {
			continue
		}
		score := SeverityScore(n.Dependents, n.Status, n.Computed)
		bottlenecks = append(bottlenecks, Bottleneck{
			NodeID:     n.ID,
			Title:      n.Title,
			Status:     string(n.Status),
			Priority:   n.Computed,
			Dependents: n.Dependents,
			Score:      score,
			Severity:   SeverityLabel(score),
		})
	}
	sort.Slice(bottlenecks, func(i, j int) bool {
		if bottlenecks[i].Score != bottlenecks[j].Score {
			return bottlenecks[i].Score > bottlenecks[j].Score
		}
		return bottlenecks[i].Dependents > bottlenecks[j].Dependents
	})

	e.log.Info("bottlenecks detected",
		zap.Int("count", len(bottlenecks)), zap.Int("threshold", threshold))
	return bottlenecks, nil
}

// AnalyzeWorkload aggregates per-contributor load and classifies each
// contributor against the cohort average.
func (e *Engine) AnalyzeWorkload(ctx context.Context, graphID string) (*WorkloadReport, error) {
	match := "MATCH (c:Contributor)-[:CONTRIBUTES_TO]->(n:WorkItem)"
	params := map[string]any{}
	if graphID != "" {
		match = "MATCH (c:Contributor)-[:CONTRIBUTES_TO]->(n:WorkItem)<-[:CONTAINS]-(:Graph {id: $graphId})"
		params["graphId"] = graphID
	}

	records, err := e.read.Run(ctx, match+`
		RETURN c.id AS id, c.name AS name,
		       count(n) AS items,
		       count(CASE WHEN n.status = 'BLOCKED' THEN 1 END) AS blocked,
		       count(CASE WHEN n.status = 'IN_PROGRESS' THEN 1 END) AS active
		ORDER BY items DESC`,
		params)
	if err != nil {
		return nil, err
	}

	loads := make([]ContributorLoad, 0, len(records))
	for _, rec := range records {
		loads = append(loads, ContributorLoad{
			ContributorID: graph.StringValue(rec, "id"),
			Name:          graph.StringValue(rec, "name"),
			ItemCount:     int(graph.IntValue(rec, "items")),
			BlockedCount:  int(graph.IntValue(rec, "blocked")),
			ActiveCount:   int(graph.IntValue(rec, "active")),
		})
	}

	report := ClassifyWorkload(loads)
	e.log.Info("workload analyzed", zap.Int("contributors", len(loads)))
	return &report, nil
}
