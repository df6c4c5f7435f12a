package query

import (
	"context"
	"testing"

	"github.com/calperry/workgraph/internal/graph"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"go.uber.org/zap"
)

// fakeRunner replays canned record batches, one per Run call, and
// captures the queries it saw.
type fakeRunner struct {
	responses [][]*neo4j.Record
	queries   []string
	err       error
}

func (f *fakeRunner) Run(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return nil, nil
	}
	batch := f.responses[0]
	f.responses = f.responses[1:]
	return batch, nil
}

func record(keys []string, values ...any) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}

func itemNode(id, title string) dbtype.Node {
	return dbtype.Node{Props: map[string]any{
		"id":     id,
		"title":  title,
		"type":   "TASK",
		"status": "PROPOSED",
	}}
}

func TestBrowse_Paginated(t *testing.T) {
	run := &fakeRunner{responses: [][]*neo4j.Record{
		{
			record([]string{"n"}, itemNode("wi-1", "First")),
			record([]string{"n"}, itemNode("wi-2", "Second")),
		},
		{record([]string{"total"}, int64(23))},
	}}
	engine := New(run, zap.NewNop())

	result, err := engine.Browse(context.Background(), Request{Type: AllNodes, Limit: 10, Offset: 0})
	if err != nil {
		t.Fatalf("Browse: %v", err)
	}
	if len(result.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(result.Nodes))
	}
	if result.Nodes[0].ID != "wi-1" || result.Nodes[1].Title != "Second" {
		t.Errorf("nodes = %+v", result.Nodes)
	}
	if result.Pagination == nil {
		t.Fatal("paginated browse must carry page metadata")
	}
	if result.Pagination.TotalCount != 23 || result.Pagination.TotalPages != 3 || !result.Pagination.HasNextPage {
		t.Errorf("pagination = %+v", result.Pagination)
	}
	if len(run.queries) != 2 {
		t.Errorf("expected main + count queries, saw %d", len(run.queries))
	}
}

func TestBrowse_Dependencies(t *testing.T) {
	rec := record(
		[]string{"n", "dependencies", "dependents"},
		itemNode("wi-1", "Root"),
		[]any{itemNode("wi-2", "Needed")},
		[]any{itemNode("wi-3", "Waiting"), itemNode("wi-4", "Also waiting")},
	)
	run := &fakeRunner{responses: [][]*neo4j.Record{{rec}}}
	engine := New(run, zap.NewNop())

	result, err := engine.Browse(context.Background(), Request{Type: Dependencies, NodeID: "wi-1"})
	if err != nil {
		t.Fatalf("Browse: %v", err)
	}
	deps := result.Dependencies
	if deps == nil {
		t.Fatal("dependencies browse must return a dependency view")
	}
	if deps.Node.ID != "wi-1" || len(deps.DependsOn) != 1 || len(deps.Dependents) != 2 {
		t.Errorf("view = %+v", deps)
	}
	if len(run.queries) != 1 {
		t.Errorf("dependencies should be a single round trip, saw %d queries", len(run.queries))
	}
}

func TestBrowse_DependenciesNotFound(t *testing.T) {
	engine := New(&fakeRunner{}, zap.NewNop())

	_, err := engine.Browse(context.Background(), Request{Type: Dependencies, NodeID: "wi-missing"})
	if err == nil {
		t.Fatal("expected not-found error")
	}
	if !graph.IsNotFound(err) {
		t.Errorf("error kind = %v, want not-found", graph.Kind(err))
	}
}

func TestBrowse_InvalidRequestRunsNoQuery(t *testing.T) {
	run := &fakeRunner{}
	engine := New(run, zap.NewNop())

	if _, err := engine.Browse(context.Background(), Request{Type: ByType, Limit: 10}); err == nil {
		t.Fatal("expected validation error")
	}
	if len(run.queries) != 0 {
		t.Error("invalid requests must not reach the store")
	}
}
