package tools

import (
	"context"

	"github.com/calperry/workgraph/internal/bulk"
	"github.com/mark3labs/mcp-go/mcp"
)

// BulkOperationsTool handles the bulk_operations MCP tool.
type BulkOperationsTool struct {
	coord *bulk.Coordinator
}

// NewBulkOperationsTool creates a BulkOperationsTool over the
// coordinator.
func NewBulkOperationsTool(coord *bulk.Coordinator) *BulkOperationsTool {
	return &BulkOperationsTool{coord: coord}
}

// Definition returns the MCP tool definition for bulk_operations.
func (t *BulkOperationsTool) Definition() mcp.Tool {
	return mcp.NewTool("bulk_operations",
		mcp.WithDescription(
			"Execute an ordered batch of operations (create_node, update_node, "+
				"create_edge, delete_edge). With transaction=true the batch runs "+
				"inside one store transaction; rollback_on_error=true undoes "+
				"everything on the first failure, otherwise the transaction "+
				"commits with failures recorded as best-effort. Without a "+
				"transaction each operation runs independently.",
		),
		mcp.WithArray("operations",
			mcp.Required(),
			mcp.Description("Operation list; each entry has 'type' and 'params'"),
		),
		mcp.WithBoolean("transaction",
			mcp.Description("Run all operations in one transaction (default: false)"),
		),
		mcp.WithBoolean("rollback_on_error",
			mcp.Description("Roll back the transaction on the first failure (default: true)"),
		),
	)
}

// Handle processes the bulk_operations tool call.
func (t *BulkOperationsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawOps, ok := req.GetArguments()["operations"].([]any)
	if !ok || len(rawOps) == 0 {
		return mcp.NewToolResultError("'operations' is required and must be a non-empty array"), nil
	}

	ops := make([]bulk.Operation, 0, len(rawOps))
	for _, raw := range rawOps {
		entry, ok := raw.(map[string]any)
		if !ok {
			return mcp.NewToolResultError("each operation must be an object with 'type' and 'params'"), nil
		}
		opType, _ := entry["type"].(string)
		params, _ := entry["params"].(map[string]any)
		ops = append(ops, bulk.Operation{Type: opType, Params: params})
	}

	report, err := t.coord.Execute(ctx, bulk.Request{
		Operations:      ops,
		Transaction:     boolArg(req, "transaction", false),
		RollbackOnError: boolArg(req, "rollback_on_error", true),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(report), nil
}
