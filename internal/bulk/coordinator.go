// Package bulk executes ordered batches of heterogeneous graph
// mutations, either independently or inside one explicit store
// transaction with optional rollback on first failure.
package bulk

import (
	"context"
	"encoding/json"

	"github.com/calperry/workgraph/internal/config"
	"github.com/calperry/workgraph/internal/graph"
	"github.com/calperry/workgraph/internal/mutate"
	"github.com/calperry/workgraph/internal/sanitize"
	"go.uber.org/zap"
)

// Operation types accepted in a batch.
const (
	OpCreateNode = "create_node"
	OpUpdateNode = "update_node"
	OpCreateEdge = "create_edge"
	OpDeleteEdge = "delete_edge"
)

// Operation is one entry in a batch. Params carry the operation's
// arguments in the same shape the single-operation tools accept.
type Operation struct {
	Type   string         `json:"type"`
	Params map[string]any `json:"params"`
}

// Request is a batch of operations plus its execution policy.
type Request struct {
	Operations      []Operation
	Transaction     bool
	RollbackOnError bool
}

// OpResult reports one operation's outcome.
type OpResult struct {
	Index  int    `json:"index"`
	Type   string `json:"type"`
	ID     string `json:"id,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Report aggregates a batch execution.
type Report struct {
	Total      int        `json:"total"`
	Succeeded  int        `json:"succeeded"`
	Failed     int        `json:"failed"`
	RolledBack bool       `json:"rolled_back,omitempty"`
	BestEffort bool       `json:"best_effort,omitempty"`
	Results    []OpResult `json:"results"`
}

// Tx is the slice of a store transaction the coordinator drives.
type Tx interface {
	graph.Runner
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	Close(ctx context.Context)
}

// Store runs auto-commit statements and opens explicit transactions.
type Store interface {
	graph.Runner
	Begin(ctx context.Context) (Tx, error)
}

// ClientStore adapts *graph.Client to the Store interface.
type ClientStore struct {
	*graph.Client
}

func (s ClientStore) Begin(ctx context.Context) (Tx, error) {
	return s.Client.BeginTx(ctx)
}

// Coordinator validates, routes, and executes operation batches.
type Coordinator struct {
	store  Store
	exec   *mutate.Executor
	limits config.Limits
	log    *zap.Logger
}

func New(store Store, exec *mutate.Executor, limits config.Limits, log *zap.Logger) *Coordinator {
	return &Coordinator{store: store, exec: exec, limits: limits, log: log.Named("bulk")}
}

// Execute runs the batch. Pre-flight checks (batch size, payload size,
// caller-supplied ID collisions) fail the whole call before any
// mutation runs; per-operation failures are reported in the result
// list.
func (c *Coordinator) Execute(ctx context.Context, req Request) (*Report, error) {
	if err := sanitize.ValidateBulkOperation(len(req.Operations), c.limits.MaxBulkOperations); err != nil {
		return nil, err
	}
	if err := sanitize.ValidateMemoryUsage(req.Operations, c.limits.MaxPayloadMB); err != nil {
		return nil, err
	}
	if err := c.checkIDCollisions(req.Operations); err != nil {
		return nil, err
	}

	if req.Transaction {
		return c.executeTransactional(ctx, req)
	}
	return c.executeIndependent(ctx, req), nil
}

// checkIDCollisions scans caller-supplied create_node IDs for mutual
// duplicates. Collisions with stored nodes are left to the per-op
// conflict check; this guards the batch against colliding with itself.
func (c *Coordinator) checkIDCollisions(ops []Operation) error {
	ids := make([]string, 0, len(ops))
	for _, op := range ops {
		if op.Type != OpCreateNode {
			continue
		}
		if id, ok := op.Params["id"].(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	if dupes := sanitize.DetectIDCollisions(ids); len(dupes) > 0 {
		return graph.Invalidf("duplicate node ids in batch: %v", dupes)
	}
	return nil
}

func (c *Coordinator) executeIndependent(ctx context.Context, req Request) *Report {
	report := &Report{Total: len(req.Operations)}
	for i, op := range req.Operations {
		report.add(c.apply(ctx, c.exec, i, op))
	}
	c.log.Info("batch executed",
		zap.Int("total", report.Total), zap.Int("failed", report.Failed))
	return report
}

func (c *Coordinator) executeTransactional(ctx context.Context, req Request) (*Report, error) {
	tx, err := c.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Close(ctx)

	exec := c.exec.WithRunner(tx)
	report := &Report{Total: len(req.Operations)}
	for i, op := range req.Operations {
		res := c.apply(ctx, exec, i, op)
		report.add(res)
		if res.Error != "" && req.RollbackOnError {
			if err := tx.Rollback(ctx); err != nil {
				return nil, graph.Storagef(err, "rollback failed after operation %d", i)
			}
			report.RolledBack = true
			c.log.Warn("batch rolled back",
				zap.Int("failed_at", i), zap.String("op", op.Type))
			return report, nil
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, graph.Storagef(err, "commit failed")
	}
	// A committed transaction can still carry recorded failures when
	// rollback_on_error is off; callers must read this as best-effort.
	report.BestEffort = report.Failed > 0
	c.log.Info("batch committed",
		zap.Int("total", report.Total), zap.Int("failed", report.Failed))
	return report, nil
}

func (c *Coordinator) apply(ctx context.Context, exec *mutate.Executor, index int, op Operation) OpResult {
	res := OpResult{Index: index, Type: op.Type, Status: "ok"}

	var id string
	var err error
	switch op.Type {
	case OpCreateNode:
		var p createNodeOp
		if err = decode(op.Params, &p); err == nil {
			node, cerr := exec.CreateNode(ctx, mutate.CreateNodeParams{
				ID:             p.ID,
				Title:          p.Title,
				Description:    p.Description,
				Type:           p.Type,
				Status:         p.Status,
				Metadata:       p.Metadata,
				ContributorIDs: p.ContributorIDs,
				GraphID:        p.GraphID,
			})
			if cerr == nil {
				id = node.ID
			}
			err = cerr
		}
	case OpUpdateNode:
		var p updateNodeOp
		if err = decode(op.Params, &p); err == nil {
			patch := mutate.NodePatch{
				Title:          p.Title,
				Description:    p.Description,
				Type:           p.Type,
				Status:         p.Status,
				Metadata:       p.Metadata,
				MetadataSet:    p.Metadata != nil,
				ContributorIDs: p.ContributorIDs,
			}
			patch.ContributorsSet = p.ContributorIDs != nil
			node, uerr := exec.UpdateNode(ctx, p.NodeID, patch)
			if uerr == nil {
				id = node.ID
			}
			err = uerr
		}
	case OpCreateEdge:
		var p createEdgeOp
		if err = decode(op.Params, &p); err == nil {
			edge, cerr := exec.CreateEdge(ctx, mutate.CreateEdgeParams{
				SourceID: p.SourceID,
				TargetID: p.TargetID,
				Type:     p.Type,
				Weight:   p.Weight,
				Metadata: p.Metadata,
			})
			if cerr == nil {
				id = edge.ID
			}
			err = cerr
		}
	case OpDeleteEdge:
		var p deleteEdgeOp
		if err = decode(op.Params, &p); err == nil {
			err = exec.DeleteEdge(ctx, p.SourceID, p.TargetID, p.Type)
		}
	default:
		err = graph.Invalidf("unknown operation type %q", op.Type)
	}

	if err != nil {
		res.Status = "error"
		res.Error = err.Error()
	}
	res.ID = id
	return res
}

func (r *Report) add(res OpResult) {
	if res.Error != "" {
		r.Failed++
	} else {
		r.Succeeded++
	}
	r.Results = append(r.Results, res)
}

// Per-operation parameter shapes. They mirror the single-operation tool
// arguments so a batch entry reads the same as the standalone call.
type createNodeOp struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Type           string         `json:"type"`
	Status         string         `json:"status"`
	Metadata       map[string]any `json:"metadata"`
	ContributorIDs []string       `json:"contributor_ids"`
	GraphID        string         `json:"graph_id"`
}

type updateNodeOp struct {
	NodeID         string         `json:"node_id"`
	Title          *string        `json:"title"`
	Description    *string        `json:"description"`
	Type           *string        `json:"type"`
	Status         *string        `json:"status"`
	Metadata       map[string]any `json:"metadata"`
	ContributorIDs []string       `json:"contributor_ids"`
}

type createEdgeOp struct {
	SourceID string         `json:"source_id"`
	TargetID string         `json:"target_id"`
	Type     string         `json:"type"`
	Weight   *float64       `json:"weight"`
	Metadata map[string]any `json:"metadata"`
}

type deleteEdgeOp struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	Type     string `json:"type"`
}

// decode maps loosely-typed tool parameters onto a typed operation
// shape via a JSON round trip.
func decode(params map[string]any, dst any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return graph.Invalidf("unreadable operation params: %v", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return graph.Invalidf("invalid operation params: %v", err)
	}
	return nil
}
