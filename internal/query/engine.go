package query

import (
	"context"

	"github.com/calperry/workgraph/internal/graph"
	"github.com/calperry/workgraph/internal/model"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Engine executes browse plans against the storage collaborator and
// shapes the records into response payloads.
type Engine struct {
	read graph.Runner
	log  *zap.Logger
}

// New creates a query engine over a read runner.
func New(read graph.Runner, log *zap.Logger) *Engine {
	return &Engine{read: read, log: log}
}

// Result is the shaped output of a browse call. Nodes and Pagination
// are set for paginated types; Dependencies for the dependencies type.
type Result struct {
	Nodes        []*model.WorkItem `json:"nodes,omitempty"`
	Pagination   *PageInfo         `json:"pagination,omitempty"`
	Dependencies *DependencyView   `json:"dependencies,omitempty"`
}

// DependencyView is the single-node dependency lookup: the node plus
// its outgoing and incoming DEPENDS_ON neighbors.
type DependencyView struct {
	Node       *model.WorkItem   `json:"node"`
	DependsOn  []*model.WorkItem `json:"depends_on"`
	Dependents []*model.WorkItem `json:"dependents"`
}

// Browse builds and runs the plan for req. For paginated types the main
// and count queries execute as two reads sharing one predicate.
func (e *Engine) Browse(ctx context.Context, req Request) (*Result, error) {
	plan, err := Build(req)
	if err != nil {
		return nil, err
	}

	records, err := e.read.Run(ctx, plan.Query, plan.Params)
	if err != nil {
		return nil, err
	}

	if !plan.Paginated() {
		return e.dependencyResult(req, records)
	}

	nodes := make([]*model.WorkItem, 0, len(records))
	for _, rec := range records {
		if n, ok := model.NodeValue(rec, "n"); ok {
			nodes = append(nodes, model.WorkItemFromNode(n))
		}
	}

	countRecords, err := e.read.Run(ctx, plan.CountQuery, plan.Params)
	if err != nil {
		return nil, err
	}
	total := 0
	if len(countRecords) > 0 {
		total = int(graph.IntValue(countRecords[0], "total"))
	}

	page, err := Paginate(total, req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}

	e.log.Debug("browse executed",
		zap.String("query_type", string(req.Type)),
		zap.Int("returned", len(nodes)),
		zap.Int("total", total),
	)

	return &Result{Nodes: nodes, Pagination: &page}, nil
}

func (e *Engine) dependencyResult(req Request, records []*neo4j.Record) (*Result, error) {
	if len(records) == 0 {
		return nil, graph.NotFoundf("node %s not found", req.NodeID)
	}
	rec := records[0]

	root, ok := model.NodeValue(rec, "n")
	if !ok {
		return nil, graph.NotFoundf("node %s not found", req.NodeID)
	}

	view := &DependencyView{
		Node:       model.WorkItemFromNode(root),
		DependsOn:  []*model.WorkItem{},
		Dependents: []*model.WorkItem{},
	}
	for _, n := range model.NodeListValue(rec, "dependencies") {
		view.DependsOn = append(view.DependsOn, model.WorkItemFromNode(n))
	}
	for _, n := range model.NodeListValue(rec, "dependents") {
		view.Dependents = append(view.Dependents, model.WorkItemFromNode(n))
	}

	return &Result{Dependencies: view}, nil
}
