package bulk

import (
	"context"
	"strings"
	"testing"

	"github.com/calperry/workgraph/internal/config"
	"github.com/calperry/workgraph/internal/mutate"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"go.uber.org/zap"
)

// --- Test fakes ---

// fakeRunner replays canned record batches, one per Run call.
type fakeRunner struct {
	responses [][]*neo4j.Record
	queries   []string
}

func (f *fakeRunner) Run(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	f.queries = append(f.queries, query)
	if len(f.responses) == 0 {
		return nil, nil
	}
	batch := f.responses[0]
	f.responses = f.responses[1:]
	return batch, nil
}

type fakeTx struct {
	fakeRunner
	committed  bool
	rolledBack bool
	closed     bool
}

func (t *fakeTx) Commit(ctx context.Context) error   { t.committed = true; return nil }
func (t *fakeTx) Rollback(ctx context.Context) error { t.rolledBack = true; return nil }
func (t *fakeTx) Close(ctx context.Context)          { t.closed = true }

type fakeStore struct {
	fakeRunner
	tx *fakeTx
}

func (s *fakeStore) Begin(ctx context.Context) (Tx, error) { return s.tx, nil }

func createdNode(id string) []*neo4j.Record {
	return []*neo4j.Record{{
		Keys:   []string{"n"},
		Values: []any{dbtype.Node{Props: map[string]any{"id": id, "title": "t"}}},
	}}
}

func newCoordinator(store Store) *Coordinator {
	exec := mutate.New(store, config.DefaultLimits(), zap.NewNop())
	return New(store, exec, config.DefaultLimits(), zap.NewNop())
}

func createOp(title string) Operation {
	return Operation{Type: OpCreateNode, Params: map[string]any{"title": title}}
}

// --- Pre-flight checks ---

func TestExecute_EmptyBatchRejected(t *testing.T) {
	coord := newCoordinator(&fakeStore{})
	if _, err := coord.Execute(context.Background(), Request{}); err == nil {
		t.Error("an empty batch should fail fast")
	}
}

func TestExecute_BatchSizeLimit(t *testing.T) {
	coord := newCoordinator(&fakeStore{})

	ops := make([]Operation, config.DefaultLimits().MaxBulkOperations+1)
	for i := range ops {
		ops[i] = createOp("x")
	}
	if _, err := coord.Execute(context.Background(), Request{Operations: ops}); err == nil {
		t.Error("a batch over the operation limit should fail fast")
	}
}

func TestExecute_IDCollisionPreFlight(t *testing.T) {
	store := &fakeStore{}
	coord := newCoordinator(store)

	ops := []Operation{
		{Type: OpCreateNode, Params: map[string]any{"title": "a", "id": "wi-dup"}},
		{Type: OpCreateNode, Params: map[string]any{"title": "b", "id": "wi-dup"}},
	}
	_, err := coord.Execute(context.Background(), Request{Operations: ops})
	if err == nil {
		t.Fatal("mutually colliding caller IDs should be rejected before any mutation")
	}
	if !strings.Contains(err.Error(), "wi-dup") {
		t.Errorf("error should name the duplicate: %v", err)
	}
	if len(store.queries) != 0 {
		t.Error("pre-flight rejection must not touch the store")
	}
}

// --- Transactional mode ---

func TestExecute_RollbackOnError(t *testing.T) {
	// Five operations; the third has no title and fails. The first two
	// each create one node inside the transaction.
	tx := &fakeTx{fakeRunner: fakeRunner{responses: [][]*neo4j.Record{
		createdNode("wi-1"),
		createdNode("wi-2"),
	}}}
	store := &fakeStore{tx: tx}
	coord := newCoordinator(store)

	report, err := coord.Execute(context.Background(), Request{
		Operations:      []Operation{createOp("a"), createOp("b"), createOp(""), createOp("d"), createOp("e")},
		Transaction:     true,
		RollbackOnError: true,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !tx.rolledBack || tx.committed {
		t.Error("the transaction must be rolled back, not committed")
	}
	if !report.RolledBack {
		t.Error("the report must flag the rollback")
	}
	if report.Succeeded != 2 || report.Failed != 1 || len(report.Results) != 3 {
		t.Errorf("partial report = %+v", report)
	}
	if len(store.queries) != 0 {
		t.Error("transactional operations must run on the transaction, not auto-commit")
	}
}

func TestExecute_BestEffortCommit(t *testing.T) {
	tx := &fakeTx{fakeRunner: fakeRunner{responses: [][]*neo4j.Record{
		createdNode("wi-1"),
		createdNode("wi-3"),
	}}}
	coord := newCoordinator(&fakeStore{tx: tx})

	report, err := coord.Execute(context.Background(), Request{
		Operations:      []Operation{createOp("a"), createOp(""), createOp("c")},
		Transaction:     true,
		RollbackOnError: false,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !tx.committed || tx.rolledBack {
		t.Error("without rollback_on_error the transaction commits despite failures")
	}
	if !report.BestEffort {
		t.Error("a committed batch with failures must be flagged best-effort")
	}
	if report.Succeeded != 2 || report.Failed != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestExecute_CleanTransactionNotBestEffort(t *testing.T) {
	tx := &fakeTx{fakeRunner: fakeRunner{responses: [][]*neo4j.Record{
		createdNode("wi-1"),
	}}}
	coord := newCoordinator(&fakeStore{tx: tx})

	report, err := coord.Execute(context.Background(), Request{
		Operations:  []Operation{createOp("a")},
		Transaction: true,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if report.BestEffort {
		t.Error("a fully successful commit is not best-effort")
	}
	if !tx.closed {
		t.Error("the transaction session must be released")
	}
}

// --- Independent mode ---

func TestExecute_IndependentFailuresDoNotCascade(t *testing.T) {
	store := &fakeStore{fakeRunner: fakeRunner{responses: [][]*neo4j.Record{
		createdNode("wi-1"),
		createdNode("wi-3"),
	}}}
	coord := newCoordinator(store)

	report, err := coord.Execute(context.Background(), Request{
		Operations: []Operation{createOp("a"), createOp(""), createOp("c")},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if report.Total != 3 || report.Succeeded != 2 || report.Failed != 1 {
		t.Errorf("report = %+v", report)
	}
	if report.Results[1].Status != "error" || report.Results[2].Status != "ok" {
		t.Errorf("results = %+v", report.Results)
	}
	if report.Results[2].ID != "wi-3" {
		t.Errorf("successful results should carry the entity id: %+v", report.Results[2])
	}
}

func TestExecute_UnknownOperationType(t *testing.T) {
	store := &fakeStore{}
	coord := newCoordinator(store)

	report, err := coord.Execute(context.Background(), Request{
		Operations: []Operation{{Type: "rename_node", Params: map[string]any{}}},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if report.Failed != 1 || !strings.Contains(report.Results[0].Error, "rename_node") {
		t.Errorf("report = %+v", report)
	}
}
