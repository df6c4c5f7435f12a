package priority

import (
	"context"
	"math"
	"testing"

	"github.com/calperry/workgraph/internal/graph"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"go.uber.org/zap"
)

type fakeRunner struct {
	responses [][]*neo4j.Record
	params    []map[string]any
}

func (f *fakeRunner) Run(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	f.params = append(f.params, params)
	if len(f.responses) == 0 {
		return nil, nil
	}
	batch := f.responses[0]
	f.responses = f.responses[1:]
	return batch, nil
}

func itemRecord(props map[string]any) *neo4j.Record {
	return &neo4j.Record{Keys: []string{"n"}, Values: []any{dbtype.Node{Props: props}}}
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestCompute(t *testing.T) {
	tests := []struct {
		executive, individual, community, want float64
	}{
		{0, 0, 0, 0},
		{1, 1, 1, 1},
		{1, 0, 0, 0.4},
		{0, 1, 0, 0.3},
		{0, 0, 1, 0.3},
		{0.5, 0.5, 0.5, 0.5},
		{0.8, 0.2, 0.6, 0.56},
	}
	for _, tt := range tests {
		if got := Compute(tt.executive, tt.individual, tt.community); !almostEqual(got, tt.want) {
			t.Errorf("Compute(%g, %g, %g) = %g, want %g",
				tt.executive, tt.individual, tt.community, got, tt.want)
		}
	}
}

func TestRadius(t *testing.T) {
	if got := Radius(0); got != 1 {
		t.Errorf("Radius(0) = %g, want 1", got)
	}
	if got := Radius(0.56); !almostEqual(got, 0.44) {
		t.Errorf("Radius(0.56) = %g, want 0.44", got)
	}
}

func TestUpdateOne_MergesStoredComponents(t *testing.T) {
	run := &fakeRunner{responses: [][]*neo4j.Record{
		{itemRecord(map[string]any{
			"id":                 "wi-1",
			"priorityExecutive":  0.8,
			"priorityIndividual": 0.2,
			"priorityCommunity":  0.0,
		})},
		{itemRecord(map[string]any{
			"id":                 "wi-1",
			"priorityExecutive":  0.8,
			"priorityIndividual": 0.2,
			"priorityCommunity":  0.6,
			"priorityComputed":   0.56,
			"radius":             0.44,
		})},
	}}
	engine := New(run, zap.NewNop())

	community := 0.6
	item, err := engine.UpdateOne(context.Background(), Update{NodeID: "wi-1", Community: &community})
	if err != nil {
		t.Fatalf("UpdateOne: %v", err)
	}
	if !almostEqual(item.Priority.Computed, 0.56) {
		t.Errorf("computed = %g, want 0.56", item.Priority.Computed)
	}

	// The write carries the merged components and the derived fields.
	written := run.params[1]
	if !almostEqual(written["executive"].(float64), 0.8) || !almostEqual(written["community"].(float64), 0.6) {
		t.Errorf("written params = %v", written)
	}
	if !almostEqual(written["computed"].(float64), Compute(0.8, 0.2, 0.6)) {
		t.Errorf("computed param = %v", written["computed"])
	}
	if !almostEqual(written["radius"].(float64), 1-0.56) {
		t.Errorf("radius param = %v", written["radius"])
	}
}

func TestUpdateOne_RejectsOutOfRange(t *testing.T) {
	run := &fakeRunner{responses: [][]*neo4j.Record{
		{itemRecord(map[string]any{"id": "wi-1"})},
	}}
	engine := New(run, zap.NewNop())

	bad := 1.5
	_, err := engine.UpdateOne(context.Background(), Update{NodeID: "wi-1", Executive: &bad})
	if err == nil {
		t.Fatal("out-of-range component should be rejected, never clamped")
	}
	if !graph.IsValidation(err) {
		t.Errorf("error kind = %v, want validation", graph.Kind(err))
	}
	if len(run.params) != 1 {
		t.Error("no write may happen after a rejected component")
	}
}

func TestUpdateOne_NotFound(t *testing.T) {
	engine := New(&fakeRunner{}, zap.NewNop())

	v := 0.5
	_, err := engine.UpdateOne(context.Background(), Update{NodeID: "wi-missing", Executive: &v})
	if !graph.IsNotFound(err) {
		t.Errorf("error = %v, want not-found", err)
	}
}

func TestUpdateMany_IndependentFailures(t *testing.T) {
	run := &fakeRunner{responses: [][]*neo4j.Record{
		// wi-1 read + write.
		{itemRecord(map[string]any{"id": "wi-1"})},
		{itemRecord(map[string]any{"id": "wi-1", "priorityComputed": 0.4, "radius": 0.6})},
		// wi-missing read comes back empty; no write follows.
		{},
		// wi-3 read + write.
		{itemRecord(map[string]any{"id": "wi-3"})},
		{itemRecord(map[string]any{"id": "wi-3", "priorityComputed": 0.3, "radius": 0.7})},
	}}
	engine := New(run, zap.NewNop())

	one := 1.0
	report := engine.UpdateMany(context.Background(), []Update{
		{NodeID: "wi-1", Executive: &one},
		{NodeID: "wi-missing", Executive: &one},
		{NodeID: "wi-3", Individual: &one},
	})

	if report.Total != 3 || report.Succeeded != 2 || report.Failed != 1 {
		t.Fatalf("report = %+v", report)
	}
	if report.Results[1].Error == "" {
		t.Error("the missing item must carry its error")
	}
	if report.Results[2].NodeID != "wi-3" {
		t.Error("a failure must not abort the remaining updates")
	}
}

// The stored computed value always equals the blend of the components
// actually persisted.
func TestUpdateOne_FormulaInvariant(t *testing.T) {
	for _, c := range []struct{ e, i, cm float64 }{
		{0, 0, 0}, {1, 1, 1}, {0.25, 0.5, 0.75}, {0.9, 0.1, 0.3},
	} {
		run := &fakeRunner{responses: [][]*neo4j.Record{
			{itemRecord(map[string]any{"id": "wi-1"})},
			{itemRecord(map[string]any{"id": "wi-1"})},
		}}
		engine := New(run, zap.NewNop())

		e, i, cm := c.e, c.i, c.cm
		if _, err := engine.UpdateOne(context.Background(), Update{
			NodeID: "wi-1", Executive: &e, Individual: &i, Community: &cm,
		}); err != nil {
			t.Fatalf("UpdateOne(%v): %v", c, err)
		}

		written := run.params[1]
		want := 0.4*c.e + 0.3*c.i + 0.3*c.cm
		if !almostEqual(written["computed"].(float64), want) {
			t.Errorf("computed = %v, want %g", written["computed"], want)
		}
		if !almostEqual(written["radius"].(float64), 1-want) {
			t.Errorf("radius = %v, want %g", written["radius"], 1-want)
		}
	}
}
