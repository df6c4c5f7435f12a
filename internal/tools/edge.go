package tools

import (
	"context"

	"github.com/calperry/workgraph/internal/mutate"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── create_edge ─────────────────────────────────────────────────────────────

// CreateEdgeTool handles the create_edge MCP tool.
type CreateEdgeTool struct {
	exec *mutate.Executor
}

// NewCreateEdgeTool creates a CreateEdgeTool over the mutation executor.
func NewCreateEdgeTool(exec *mutate.Executor) *CreateEdgeTool {
	return &CreateEdgeTool{exec: exec}
}

// Definition returns the MCP tool definition for create_edge.
func (t *CreateEdgeTool) Definition() mcp.Tool {
	return mcp.NewTool("create_edge",
		mcp.WithDescription(
			"Create a typed directed relationship between two work items. "+
				"Creating the same (source, target, type) twice is idempotent: "+
				"the existing edge is updated, not duplicated.",
		),
		mcp.WithString("source_id",
			mcp.Required(),
			mcp.Description("ID of the source work item"),
		),
		mcp.WithString("target_id",
			mcp.Required(),
			mcp.Description("ID of the target work item"),
		),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Edge type: DEPENDS_ON, BLOCKS, ENABLES, RELATES_TO, CONTAINS, PART_OF"),
		),
		mcp.WithNumber("weight",
			mcp.Description("Edge weight (default: 1.0)"),
		),
		mcp.WithObject("metadata",
			mcp.Description("Arbitrary key/value metadata"),
		),
	)
}

// Handle processes the create_edge tool call.
func (t *CreateEdgeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceID := req.GetString("source_id", "")
	targetID := req.GetString("target_id", "")
	edgeType := req.GetString("type", "")
	if sourceID == "" || targetID == "" {
		return mcp.NewToolResultError("'source_id' and 'target_id' are required"), nil
	}
	if edgeType == "" {
		return mcp.NewToolResultError("'type' is required"), nil
	}

	params := mutate.CreateEdgeParams{
		SourceID: sourceID,
		TargetID: targetID,
		Type:     edgeType,
		Metadata: mapArg(req, "metadata"),
	}
	if w, ok := floatArg(req, "weight"); ok {
		params.Weight = &w
	}

	edge, err := t.exec.CreateEdge(ctx, params)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(edge), nil
}

// ─── delete_edge ─────────────────────────────────────────────────────────────

// DeleteEdgeTool handles the delete_edge MCP tool.
type DeleteEdgeTool struct {
	exec *mutate.Executor
}

// NewDeleteEdgeTool creates a DeleteEdgeTool over the mutation executor.
func NewDeleteEdgeTool(exec *mutate.Executor) *DeleteEdgeTool {
	return &DeleteEdgeTool{exec: exec}
}

// Definition returns the MCP tool definition for delete_edge.
func (t *DeleteEdgeTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_edge",
		mcp.WithDescription(
			"Delete the relationship of the given type between two work items.",
		),
		mcp.WithString("source_id",
			mcp.Required(),
			mcp.Description("ID of the source work item"),
		),
		mcp.WithString("target_id",
			mcp.Required(),
			mcp.Description("ID of the target work item"),
		),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Edge type to remove"),
		),
	)
}

// Handle processes the delete_edge tool call.
func (t *DeleteEdgeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceID := req.GetString("source_id", "")
	targetID := req.GetString("target_id", "")
	edgeType := req.GetString("type", "")
	if sourceID == "" || targetID == "" || edgeType == "" {
		return mcp.NewToolResultError("'source_id', 'target_id' and 'type' are required"), nil
	}

	if err := t.exec.DeleteEdge(ctx, sourceID, targetID, edgeType); err != nil {
		return errorResult(err), nil
	}
	return jsonResult(map[string]any{
		"source_id": sourceID,
		"target_id": targetID,
		"type":      edgeType,
		"deleted":   true,
	}), nil
}
