package tools

import (
	"context"

	"github.com/calperry/workgraph/internal/mutate"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── create_graph ────────────────────────────────────────────────────────────

// CreateGraphTool handles the create_graph MCP tool.
type CreateGraphTool struct {
	exec *mutate.Executor
}

// NewCreateGraphTool creates a CreateGraphTool over the mutation executor.
func NewCreateGraphTool(exec *mutate.Executor) *CreateGraphTool {
	return &CreateGraphTool{exec: exec}
}

// Definition returns the MCP tool definition for create_graph.
func (t *CreateGraphTool) Definition() mcp.Tool {
	return mcp.NewTool("create_graph",
		mcp.WithDescription(
			"Create a graph container for grouping work items. Containers can "+
				"nest under a parent graph to form a hierarchy.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Display name for the graph"),
		),
		mcp.WithString("type",
			mcp.Description("Graph type: PROJECT, WORKSPACE, SUBGRAPH, TEMPLATE (default: PROJECT)"),
		),
		mcp.WithObject("settings",
			mcp.Description("Arbitrary graph settings"),
		),
		mcp.WithString("parent_graph_id",
			mcp.Description("Parent graph to nest this one under"),
		),
	)
}

// Handle processes the create_graph tool call.
func (t *CreateGraphTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}

	g, err := t.exec.CreateGraph(ctx, mutate.CreateGraphParams{
		Name:          name,
		Type:          req.GetString("type", ""),
		Settings:      mapArg(req, "settings"),
		ParentGraphID: req.GetString("parent_graph_id", ""),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(g), nil
}

// ─── list_graphs ─────────────────────────────────────────────────────────────

// ListGraphsTool handles the list_graphs MCP tool.
type ListGraphsTool struct {
	exec *mutate.Executor
}

// NewListGraphsTool creates a ListGraphsTool over the mutation executor.
func NewListGraphsTool(exec *mutate.Executor) *ListGraphsTool {
	return &ListGraphsTool{exec: exec}
}

// Definition returns the MCP tool definition for list_graphs.
func (t *ListGraphsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_graphs",
		mcp.WithDescription(
			"List graph containers with their node and edge counts, newest "+
				"first, optionally filtered by status.",
		),
		mcp.WithString("status",
			mcp.Description("Status filter: ACTIVE, ARCHIVED, DRAFT"),
		),
	)
}

// Handle processes the list_graphs tool call.
func (t *ListGraphsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	graphs, err := t.exec.ListGraphs(ctx, req.GetString("status", ""))
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(map[string]any{
		"count":  len(graphs),
		"graphs": graphs,
	}), nil
}

// ─── update_graph ────────────────────────────────────────────────────────────

// UpdateGraphTool handles the update_graph MCP tool.
type UpdateGraphTool struct {
	exec *mutate.Executor
}

// NewUpdateGraphTool creates an UpdateGraphTool over the mutation executor.
func NewUpdateGraphTool(exec *mutate.Executor) *UpdateGraphTool {
	return &UpdateGraphTool{exec: exec}
}

// Definition returns the MCP tool definition for update_graph.
func (t *UpdateGraphTool) Definition() mcp.Tool {
	return mcp.NewTool("update_graph",
		mcp.WithDescription(
			"Partially update a graph container. Re-parenting is validated "+
				"against the existing hierarchy: a parent link that would close "+
				"a cycle is rejected. Pass an empty parent_graph_id to detach.",
		),
		mcp.WithString("graph_id",
			mcp.Required(),
			mcp.Description("ID of the graph to update"),
		),
		mcp.WithString("name",
			mcp.Description("New display name"),
		),
		mcp.WithObject("settings",
			mcp.Description("Replacement settings object"),
		),
		mcp.WithString("parent_graph_id",
			mcp.Description("New parent graph; empty string detaches"),
		),
	)
}

// Handle processes the update_graph tool call.
func (t *UpdateGraphTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	graphID := req.GetString("graph_id", "")
	if graphID == "" {
		return mcp.NewToolResultError("'graph_id' is required"), nil
	}

	patch := mutate.GraphPatch{
		Name:          optionalString(req, "name"),
		ParentGraphID: optionalString(req, "parent_graph_id"),
	}
	if s := mapArg(req, "settings"); s != nil {
		patch.Settings = s
		patch.SettingsSet = true
	}

	g, err := t.exec.UpdateGraph(ctx, graphID, patch)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(g), nil
}

// ─── archive_graph ───────────────────────────────────────────────────────────

// ArchiveGraphTool handles the archive_graph MCP tool.
type ArchiveGraphTool struct {
	exec *mutate.Executor
}

// NewArchiveGraphTool creates an ArchiveGraphTool over the mutation executor.
func NewArchiveGraphTool(exec *mutate.Executor) *ArchiveGraphTool {
	return &ArchiveGraphTool{exec: exec}
}

// Definition returns the MCP tool definition for archive_graph.
func (t *ArchiveGraphTool) Definition() mcp.Tool {
	return mcp.NewTool("archive_graph",
		mcp.WithDescription(
			"Soft-delete a graph container: marks it ARCHIVED with a timestamp "+
				"and optional reason. The graph and its work items stay in the "+
				"store.",
		),
		mcp.WithString("graph_id",
			mcp.Required(),
			mcp.Description("ID of the graph to archive"),
		),
		mcp.WithString("reason",
			mcp.Description("Why the graph is being archived"),
		),
	)
}

// Handle processes the archive_graph tool call.
func (t *ArchiveGraphTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	graphID := req.GetString("graph_id", "")
	if graphID == "" {
		return mcp.NewToolResultError("'graph_id' is required"), nil
	}

	g, err := t.exec.ArchiveGraph(ctx, graphID, req.GetString("reason", ""))
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(g), nil
}

// ─── delete_graph ────────────────────────────────────────────────────────────

// DeleteGraphTool handles the delete_graph MCP tool.
type DeleteGraphTool struct {
	exec *mutate.Executor
}

// NewDeleteGraphTool creates a DeleteGraphTool over the mutation executor.
func NewDeleteGraphTool(exec *mutate.Executor) *DeleteGraphTool {
	return &DeleteGraphTool{exec: exec}
}

// Definition returns the MCP tool definition for delete_graph.
func (t *DeleteGraphTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_graph",
		mcp.WithDescription(
			"Hard-delete a graph container. A graph that still owns work items "+
				"is only deleted with force=true, which removes the owned items "+
				"and their relationships too.",
		),
		mcp.WithString("graph_id",
			mcp.Required(),
			mcp.Description("ID of the graph to delete"),
		),
		mcp.WithBoolean("force",
			mcp.Description("Also delete the work items the graph owns (default: false)"),
		),
	)
}

// Handle processes the delete_graph tool call.
func (t *DeleteGraphTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	graphID := req.GetString("graph_id", "")
	if graphID == "" {
		return mcp.NewToolResultError("'graph_id' is required"), nil
	}

	result, err := t.exec.DeleteGraph(ctx, graphID, boolArg(req, "force", false))
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(result), nil
}
