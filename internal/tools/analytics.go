package tools

import (
	"context"

	"github.com/calperry/workgraph/internal/analytics"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── graph_health ────────────────────────────────────────────────────────────

// GraphHealthTool handles the graph_health MCP tool.
type GraphHealthTool struct {
	engine *analytics.Engine
}

// NewGraphHealthTool creates a GraphHealthTool over the analytics engine.
func NewGraphHealthTool(engine *analytics.Engine) *GraphHealthTool {
	return &GraphHealthTool{engine: engine}
}

// Definition returns the MCP tool definition for graph_health.
func (t *GraphHealthTool) Definition() mcp.Tool {
	return mcp.NewTool("graph_health",
		mcp.WithDescription(
			"Score the overall health of the work graph from its structure: "+
				"priority spread, heavy-dependency ratio, and bottleneck count. "+
				"Returns a score in [0, 1] plus recommendations for each "+
				"threshold that was crossed.",
		),
		mcp.WithString("graph_id",
			mcp.Description("Restrict the analysis to one graph container"),
		),
	)
}

// Handle processes the graph_health tool call.
func (t *GraphHealthTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := t.engine.GraphHealth(ctx, req.GetString("graph_id", ""))
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(report), nil
}

// ─── detect_bottlenecks ──────────────────────────────────────────────────────

// DetectBottlenecksTool handles the detect_bottlenecks MCP tool.
type DetectBottlenecksTool struct {
	engine *analytics.Engine
}

// NewDetectBottlenecksTool creates a DetectBottlenecksTool over the
// analytics engine.
func NewDetectBottlenecksTool(engine *analytics.Engine) *DetectBottlenecksTool {
	return &DetectBottlenecksTool{engine: engine}
}

// Definition returns the MCP tool definition for detect_bottlenecks.
func (t *DetectBottlenecksTool) Definition() mcp.Tool {
	return mcp.NewTool("detect_bottlenecks",
		mcp.WithDescription(
			"Find work items that many other items depend on. Severity "+
				"combines the dependent count, the item's status, and its "+
				"computed priority into low/medium/high/critical, most severe "+
				"first.",
		),
		mcp.WithString("graph_id",
			mcp.Description("Restrict the analysis to one graph container"),
		),
		mcp.WithNumber("threshold",
			mcp.Description("Dependent count above which an item is a bottleneck (default: 3)"),
		),
	)
}

// Handle processes the detect_bottlenecks tool call.
func (t *DetectBottlenecksTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bottlenecks, err := t.engine.DetectBottlenecks(ctx,
		req.GetString("graph_id", ""),
		intArg(req, "threshold", 0),
	)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(map[string]any{
		"count":       len(bottlenecks),
		"bottlenecks": bottlenecks,
	}), nil
}

// ─── analyze_workload ────────────────────────────────────────────────────────

// AnalyzeWorkloadTool handles the analyze_workload MCP tool.
type AnalyzeWorkloadTool struct {
	engine *analytics.Engine
}

// NewAnalyzeWorkloadTool creates an AnalyzeWorkloadTool over the
// analytics engine.
func NewAnalyzeWorkloadTool(engine *analytics.Engine) *AnalyzeWorkloadTool {
	return &AnalyzeWorkloadTool{engine: engine}
}

// Definition returns the MCP tool definition for analyze_workload.
func (t *AnalyzeWorkloadTool) Definition() mcp.Tool {
	return mcp.NewTool("analyze_workload",
		mcp.WithDescription(
			"Aggregate per-contributor item counts and blocked ratios, "+
				"classify each contributor as overloaded, balanced, or "+
				"underutilized against the cohort average, and recommend "+
				"redistribution when both extremes coexist.",
		),
		mcp.WithString("graph_id",
			mcp.Description("Restrict the analysis to one graph container"),
		),
	)
}

// Handle processes the analyze_workload tool call.
func (t *AnalyzeWorkloadTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := t.engine.AnalyzeWorkload(ctx, req.GetString("graph_id", ""))
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(report), nil
}
