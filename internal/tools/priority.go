package tools

import (
	"context"

	"github.com/calperry/workgraph/internal/priority"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── update_priorities ───────────────────────────────────────────────────────

// UpdatePrioritiesTool handles the update_priorities MCP tool.
type UpdatePrioritiesTool struct {
	engine *priority.Engine
}

// NewUpdatePrioritiesTool creates an UpdatePrioritiesTool over the
// priority engine.
func NewUpdatePrioritiesTool(engine *priority.Engine) *UpdatePrioritiesTool {
	return &UpdatePrioritiesTool{engine: engine}
}

// Definition returns the MCP tool definition for update_priorities.
func (t *UpdatePrioritiesTool) Definition() mcp.Tool {
	return mcp.NewTool("update_priorities",
		mcp.WithDescription(
			"Update a work item's priority components. Each component must be "+
				"in [0, 1]; out-of-range values are rejected. Omitted components "+
				"keep their stored values. The computed score is "+
				"0.4*executive + 0.3*individual + 0.3*community and the radius "+
				"is 1 - computed.",
		),
		mcp.WithString("node_id",
			mcp.Required(),
			mcp.Description("ID of the work item"),
		),
		mcp.WithNumber("executive",
			mcp.Description("Executive priority component in [0, 1]"),
		),
		mcp.WithNumber("individual",
			mcp.Description("Individual priority component in [0, 1]"),
		),
		mcp.WithNumber("community",
			mcp.Description("Community priority component in [0, 1]"),
		),
	)
}

// Handle processes the update_priorities tool call.
func (t *UpdatePrioritiesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nodeID := req.GetString("node_id", "")
	if nodeID == "" {
		return mcp.NewToolResultError("'node_id' is required"), nil
	}

	node, err := t.engine.UpdateOne(ctx, priorityUpdate(req, nodeID))
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(node), nil
}

// ─── bulk_update_priorities ──────────────────────────────────────────────────

// BulkUpdatePrioritiesTool handles the bulk_update_priorities MCP tool.
type BulkUpdatePrioritiesTool struct {
	engine *priority.Engine
}

// NewBulkUpdatePrioritiesTool creates a BulkUpdatePrioritiesTool over
// the priority engine.
func NewBulkUpdatePrioritiesTool(engine *priority.Engine) *BulkUpdatePrioritiesTool {
	return &BulkUpdatePrioritiesTool{engine: engine}
}

// Definition returns the MCP tool definition for bulk_update_priorities.
func (t *BulkUpdatePrioritiesTool) Definition() mcp.Tool {
	return mcp.NewTool("bulk_update_priorities",
		mcp.WithDescription(
			"Update priority components for many work items at once. Items are "+
				"updated independently: a failed item is reported and skipped, "+
				"never aborting the rest. The validation contract matches "+
				"update_priorities exactly (reject out-of-range, never clamp).",
		),
		mcp.WithArray("updates",
			mcp.Required(),
			mcp.Description("List of {node_id, executive?, individual?, community?} objects"),
		),
	)
}

// Handle processes the bulk_update_priorities tool call.
func (t *BulkUpdatePrioritiesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawUpdates, ok := req.GetArguments()["updates"].([]any)
	if !ok || len(rawUpdates) == 0 {
		return mcp.NewToolResultError("'updates' is required and must be a non-empty array"), nil
	}

	updates := make([]priority.Update, 0, len(rawUpdates))
	for _, raw := range rawUpdates {
		entry, ok := raw.(map[string]any)
		if !ok {
			return mcp.NewToolResultError("each update must be an object with a 'node_id'"), nil
		}
		u := priority.Update{}
		u.NodeID, _ = entry["node_id"].(string)
		if v, ok := entry["executive"].(float64); ok {
			u.Executive = &v
		}
		if v, ok := entry["individual"].(float64); ok {
			u.Individual = &v
		}
		if v, ok := entry["community"].(float64); ok {
			u.Community = &v
		}
		updates = append(updates, u)
	}

	return jsonResult(t.engine.UpdateMany(ctx, updates)), nil
}

// priorityUpdate reads the three optional components off a single-item
// request.
func priorityUpdate(req mcp.CallToolRequest, nodeID string) priority.Update {
	u := priority.Update{NodeID: nodeID}
	if v, ok := floatArg(req, "executive"); ok {
		u.Executive = &v
	}
	if v, ok := floatArg(req, "individual"); ok {
		u.Individual = &v
	}
	if v, ok := floatArg(req, "community"); ok {
		u.Community = &v
	}
	return u
}
