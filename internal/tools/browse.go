package tools

import (
	"context"

	"github.com/calperry/workgraph/internal/query"
	"github.com/mark3labs/mcp-go/mcp"
)

// BrowseGraphTool handles the browse_graph MCP tool.
type BrowseGraphTool struct {
	engine *query.Engine
}

// NewBrowseGraphTool creates a BrowseGraphTool over the query engine.
func NewBrowseGraphTool(engine *query.Engine) *BrowseGraphTool {
	return &BrowseGraphTool{engine: engine}
}

// Definition returns the MCP tool definition for browse_graph.
func (t *BrowseGraphTool) Definition() mcp.Tool {
	return mcp.NewTool("browse_graph",
		mcp.WithDescription(
			"Query the work graph. Supports listing all nodes, filtering by type, "+
				"status, contributor, or minimum priority, full dependency lookups "+
				"for a single node, and case-insensitive text search over titles "+
				"and descriptions. Paginated queries return page metadata.",
		),
		mcp.WithString("query_type",
			mcp.Required(),
			mcp.Description("One of: all_nodes, by_type, by_status, by_contributor, by_priority, dependencies, search"),
		),
		mcp.WithString("node_type",
			mcp.Description("Node type filter, required for by_type (e.g. TASK, BUG, EPIC)"),
		),
		mcp.WithString("status",
			mcp.Description("Status filter, required for by_status (e.g. PROPOSED, IN_PROGRESS)"),
		),
		mcp.WithString("contributor_id",
			mcp.Description("Contributor ID, required for by_contributor"),
		),
		mcp.WithNumber("min_priority",
			mcp.Description("Minimum computed priority for by_priority (default: 0)"),
		),
		mcp.WithString("node_id",
			mcp.Description("Node ID, required for dependencies"),
		),
		mcp.WithString("search_term",
			mcp.Description("Search text, required for search"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Page size (default: 50)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Number of results to skip (default: 0)"),
		),
	)
}

// Handle processes the browse_graph tool call.
func (t *BrowseGraphTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	queryType := req.GetString("query_type", "")
	if queryType == "" {
		return mcp.NewToolResultError("'query_type' is required"), nil
	}

	minPriority, _ := floatArg(req, "min_priority")
	result, err := t.engine.Browse(ctx, query.Request{
		Type:          query.Type(queryType),
		NodeType:      req.GetString("node_type", ""),
		Status:        req.GetString("status", ""),
		ContributorID: req.GetString("contributor_id", ""),
		MinPriority:   minPriority,
		NodeID:        req.GetString("node_id", ""),
		SearchTerm:    req.GetString("search_term", ""),
		Limit:         intArg(req, "limit", query.DefaultLimit),
		Offset:        intArg(req, "offset", 0),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(result), nil
}
