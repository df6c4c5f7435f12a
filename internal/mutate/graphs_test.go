package mutate

import (
	"context"
	"strings"
	"testing"

	"github.com/calperry/workgraph/internal/graph"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

func graphNode(props map[string]any) *neo4j.Record {
	return record([]string{"g"}, dbtype.Node{Props: props})
}

func TestCreateGraph(t *testing.T) {
	run := &fakeRunner{responses: [][]*neo4j.Record{
		{graphNode(map[string]any{
			"id": "gr-1", "name": "Q3 Roadmap", "type": "PROJECT", "status": "ACTIVE",
			"nodeCount": int64(0), "edgeCount": int64(0),
		})},
	}}
	exec := newExecutor(run)

	g, err := exec.CreateGraph(context.Background(), CreateGraphParams{Name: "Q3 Roadmap"})
	if err != nil {
		t.Fatalf("CreateGraph: %v", err)
	}
	if g.Status != "ACTIVE" || g.Type != "PROJECT" {
		t.Errorf("new graph defaults = %+v", g)
	}
	if g.NodeCount != 0 || g.EdgeCount != 0 {
		t.Errorf("counters should start at zero: %+v", g)
	}

	id, _ := run.params[0]["id"].(string)
	if !strings.HasPrefix(id, "gr-") {
		t.Errorf("graph id %q should carry the gr- prefix", id)
	}
}

func TestCreateGraph_Validation(t *testing.T) {
	exec := newExecutor(&fakeRunner{})
	ctx := context.Background()

	if _, err := exec.CreateGraph(ctx, CreateGraphParams{Name: "  "}); err == nil {
		t.Error("empty name should be rejected")
	}
	if _, err := exec.CreateGraph(ctx, CreateGraphParams{Name: "X", Type: "GALAXY"}); err == nil {
		t.Error("unknown graph type should be rejected")
	}
}

func TestListGraphs_StatusFilter(t *testing.T) {
	run := &fakeRunner{responses: [][]*neo4j.Record{
		{graphNode(map[string]any{"id": "gr-1", "status": "ARCHIVED"})},
	}}
	exec := newExecutor(run)

	graphs, err := exec.ListGraphs(context.Background(), "archived")
	if err != nil {
		t.Fatalf("ListGraphs: %v", err)
	}
	if len(graphs) != 1 || graphs[0].ID != "gr-1" {
		t.Errorf("graphs = %+v", graphs)
	}
	if run.params[0]["status"] != "ARCHIVED" {
		t.Errorf("status filter should be normalized, got %v", run.params[0])
	}
}

func TestUpdateGraph_CycleRejected(t *testing.T) {
	// The candidate parent's ancestry chain contains the graph itself.
	run := &fakeRunner{responses: [][]*neo4j.Record{
		{record([]string{"ancestors"}, []any{"gr-parent", "gr-child"})},
	}}
	exec := newExecutor(run)

	parent := "gr-parent"
	_, err := exec.UpdateGraph(context.Background(), "gr-child", GraphPatch{ParentGraphID: &parent})
	if err == nil {
		t.Fatal("cycle-closing parent link should be rejected")
	}
	if !graph.IsValidation(err) || !strings.Contains(err.Error(), "cycle") {
		t.Errorf("error = %v, want cycle validation error", err)
	}
}

func TestUpdateGraph_SelfParentRejected(t *testing.T) {
	exec := newExecutor(&fakeRunner{})

	self := "gr-1"
	if _, err := exec.UpdateGraph(context.Background(), "gr-1", GraphPatch{ParentGraphID: &self}); err == nil {
		t.Error("a graph cannot be its own parent")
	}
}

func TestUpdateGraph_Reparent(t *testing.T) {
	run := &fakeRunner{responses: [][]*neo4j.Record{
		{record([]string{"ancestors"}, []any{"gr-parent"})},
		{graphNode(map[string]any{"id": "gr-child", "parentGraphId": "gr-parent"})},
		{}, // old link delete
		{}, // new link merge
	}}
	exec := newExecutor(run)

	parent := "gr-parent"
	g, err := exec.UpdateGraph(context.Background(), "gr-child", GraphPatch{ParentGraphID: &parent})
	if err != nil {
		t.Fatalf("UpdateGraph: %v", err)
	}
	if g.ParentGraphID != "gr-parent" {
		t.Errorf("parent = %q", g.ParentGraphID)
	}
	if !run.sawQuery("MERGE (g)-[:CHILD_OF]->(p)") {
		t.Error("re-parenting should relink CHILD_OF")
	}
}

func TestArchiveGraph(t *testing.T) {
	run := &fakeRunner{responses: [][]*neo4j.Record{
		{graphNode(map[string]any{
			"id": "gr-1", "status": "ARCHIVED",
			"archivedAt": "2026-08-29T10:00:00Z", "archiveReason": "superseded",
		})},
	}}
	exec := newExecutor(run)

	g, err := exec.ArchiveGraph(context.Background(), "gr-1", "superseded")
	if err != nil {
		t.Fatalf("ArchiveGraph: %v", err)
	}
	if g.Status != "ARCHIVED" || g.ArchiveReason != "superseded" {
		t.Errorf("graph = %+v", g)
	}
}

func TestDeleteGraph_RequiresForce(t *testing.T) {
	run := &fakeRunner{responses: [][]*neo4j.Record{
		{record([]string{"id", "owned"}, "gr-1", int64(4))},
	}}
	exec := newExecutor(run)

	_, err := exec.DeleteGraph(context.Background(), "gr-1", false)
	if err == nil {
		t.Fatal("deleting a populated graph without force should fail")
	}
	if !strings.Contains(err.Error(), "force=true") {
		t.Errorf("error should point at force=true: %v", err)
	}
	if len(run.queries) != 1 {
		t.Error("nothing may be deleted when the call fails")
	}
}

func TestDeleteGraph_Force(t *testing.T) {
	run := &fakeRunner{responses: [][]*neo4j.Record{
		{record([]string{"id", "owned"}, "gr-1", int64(4))},
		{}, // delete
	}}
	exec := newExecutor(run)

	result, err := exec.DeleteGraph(context.Background(), "gr-1", true)
	if err != nil {
		t.Fatalf("DeleteGraph: %v", err)
	}
	if result.NodesDeleted != 4 {
		t.Errorf("nodes deleted = %d, want 4", result.NodesDeleted)
	}
	if !run.sawQuery("DETACH DELETE n, g") {
		t.Error("force delete should remove the graph and its owned items")
	}
}

func TestDeleteGraph_EmptyWithoutForce(t *testing.T) {
	run := &fakeRunner{responses: [][]*neo4j.Record{
		{record([]string{"id", "owned"}, "gr-1", int64(0))},
		{}, // delete
	}}
	exec := newExecutor(run)

	result, err := exec.DeleteGraph(context.Background(), "gr-1", false)
	if err != nil {
		t.Fatalf("DeleteGraph: %v", err)
	}
	if result.NodesDeleted != 0 {
		t.Errorf("nodes deleted = %d, want 0", result.NodesDeleted)
	}
}
