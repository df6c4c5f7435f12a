package tools

import (
	"context"

	"github.com/calperry/workgraph/internal/mutate"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── create_node ─────────────────────────────────────────────────────────────

// CreateNodeTool handles the create_node MCP tool.
type CreateNodeTool struct {
	exec *mutate.Executor
}

// NewCreateNodeTool creates a CreateNodeTool over the mutation executor.
func NewCreateNodeTool(exec *mutate.Executor) *CreateNodeTool {
	return &CreateNodeTool{exec: exec}
}

// Definition returns the MCP tool definition for create_node.
func (t *CreateNodeTool) Definition() mcp.Tool {
	return mcp.NewTool("create_node",
		mcp.WithDescription(
			"Create a work item. New items start as PROPOSED with all priority "+
				"components at 0 and radius 1.0. Contributors are upserted and "+
				"linked lazily; an optional graph_id places the item in a graph "+
				"container.",
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short title for the work item"),
		),
		mcp.WithString("description",
			mcp.Description("Longer free-form description"),
		),
		mcp.WithString("type",
			mcp.Description("Node type: OUTCOME, EPIC, INITIATIVE, STORY, TASK, BUG, FEATURE, MILESTONE (default: TASK)"),
		),
		mcp.WithString("status",
			mcp.Description("Initial status (default: PROPOSED)"),
		),
		mcp.WithString("id",
			mcp.Description("Caller-supplied ID; generated when omitted"),
		),
		mcp.WithObject("metadata",
			mcp.Description("Arbitrary key/value metadata"),
		),
		mcp.WithArray("contributor_ids",
			mcp.Description("Contributor IDs to link to the new item"),
		),
		mcp.WithString("graph_id",
			mcp.Description("Graph container to place the item in"),
		),
	)
}

// Handle processes the create_node tool call.
func (t *CreateNodeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	if title == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}

	contributors, _ := stringSliceArg(req, "contributor_ids")
	node, err := t.exec.CreateNode(ctx, mutate.CreateNodeParams{
		ID:             req.GetString("id", ""),
		Title:          title,
		Description:    req.GetString("description", ""),
		Type:           req.GetString("type", ""),
		Status:         req.GetString("status", ""),
		Metadata:       mapArg(req, "metadata"),
		ContributorIDs: contributors,
		GraphID:        req.GetString("graph_id", ""),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(node), nil
}

// ─── update_node ─────────────────────────────────────────────────────────────

// UpdateNodeTool handles the update_node MCP tool.
type UpdateNodeTool struct {
	exec *mutate.Executor
}

// NewUpdateNodeTool creates an UpdateNodeTool over the mutation executor.
func NewUpdateNodeTool(exec *mutate.Executor) *UpdateNodeTool {
	return &UpdateNodeTool{exec: exec}
}

// Definition returns the MCP tool definition for update_node.
func (t *UpdateNodeTool) Definition() mcp.Tool {
	return mcp.NewTool("update_node",
		mcp.WithDescription(
			"Partially update a work item. Only the fields present in the call "+
				"are touched; updatedAt is always refreshed. Passing "+
				"contributor_ids replaces the full contributor set.",
		),
		mcp.WithString("node_id",
			mcp.Required(),
			mcp.Description("ID of the work item to update"),
		),
		mcp.WithString("title",
			mcp.Description("New title (must be non-empty)"),
		),
		mcp.WithString("description",
			mcp.Description("New description"),
		),
		mcp.WithString("type",
			mcp.Description("New node type"),
		),
		mcp.WithString("status",
			mcp.Description("New status"),
		),
		mcp.WithObject("metadata",
			mcp.Description("Replacement metadata object"),
		),
		mcp.WithArray("contributor_ids",
			mcp.Description("Replacement contributor ID list"),
		),
	)
}

// Handle processes the update_node tool call.
func (t *UpdateNodeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nodeID := req.GetString("node_id", "")
	if nodeID == "" {
		return mcp.NewToolResultError("'node_id' is required"), nil
	}

	patch := mutate.NodePatch{
		Title:       optionalString(req, "title"),
		Description: optionalString(req, "description"),
		Type:        optionalString(req, "type"),
		Status:      optionalString(req, "status"),
	}
	if m := mapArg(req, "metadata"); m != nil {
		patch.Metadata = m
		patch.MetadataSet = true
	}
	if ids, ok := stringSliceArg(req, "contributor_ids"); ok {
		patch.ContributorIDs = ids
		patch.ContributorsSet = true
	}

	node, err := t.exec.UpdateNode(ctx, nodeID, patch)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(node), nil
}

// ─── delete_node ─────────────────────────────────────────────────────────────

// DeleteNodeTool handles the delete_node MCP tool.
type DeleteNodeTool struct {
	exec *mutate.Executor
}

// NewDeleteNodeTool creates a DeleteNodeTool over the mutation executor.
func NewDeleteNodeTool(exec *mutate.Executor) *DeleteNodeTool {
	return &DeleteNodeTool{exec: exec}
}

// Definition returns the MCP tool definition for delete_node.
func (t *DeleteNodeTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_node",
		mcp.WithDescription(
			"Delete a work item and all of its relationships. Reports how many "+
				"relationships were removed with it.",
		),
		mcp.WithString("node_id",
			mcp.Required(),
			mcp.Description("ID of the work item to delete"),
		),
	)
}

// Handle processes the delete_node tool call.
func (t *DeleteNodeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nodeID := req.GetString("node_id", "")
	if nodeID == "" {
		return mcp.NewToolResultError("'node_id' is required"), nil
	}

	result, err := t.exec.DeleteNode(ctx, nodeID)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(result), nil
}
