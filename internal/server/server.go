// Package server wires all components and creates the MCP server
// instance.
//
// This is the composition root: it connects the storage client, builds
// the engines, and injects them into the tool handlers. No business
// logic lives here — only wiring.
package server

import (
	"context"
	"fmt"

	"github.com/calperry/workgraph/internal/analytics"
	"github.com/calperry/workgraph/internal/bulk"
	"github.com/calperry/workgraph/internal/config"
	"github.com/calperry/workgraph/internal/graph"
	"github.com/calperry/workgraph/internal/metrics"
	"github.com/calperry/workgraph/internal/mutate"
	"github.com/calperry/workgraph/internal/priority"
	"github.com/calperry/workgraph/internal/query"
	"github.com/calperry/workgraph/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Server bundles the MCP server with the shared infrastructure the
// operational sidecar needs access to.
type Server struct {
	MCP   *server.MCPServer
	Graph *graph.Client
	Usage *metrics.Store

	log *zap.Logger
}

// tool is the shape every handler in internal/tools satisfies.
type tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// New connects to the graph store, ensures its schema, and returns the
// fully wired server.
//
// The returned cleanup function closes the storage client and the
// usage database and must be called on shutdown (typically via defer).
// It is always non-nil and safe to call even if usage init failed.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*Server, func(), error) {
	client, err := graph.New(ctx, graph.Config{
		URI:      cfg.Neo4jURI,
		Username: cfg.Neo4jUsername,
		Password: cfg.Neo4jPassword,
		Database: cfg.Neo4jDatabase,
	}, log)
	if err != nil {
		return nil, noop, fmt.Errorf("connecting to graph store: %w", err)
	}
	if err := client.EnsureSchema(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, noop, fmt.Errorf("ensuring schema: %w", err)
	}

	// Usage metrics are an independent subsystem: if the local database
	// fails to open, tool calls still work, just uncounted.
	usage, usageErr := metrics.New(cfg.DataDir)
	if usageErr != nil {
		log.Warn("usage metrics disabled", zap.Error(usageErr))
		usage = nil
	}

	srv := &Server{Graph: client, Usage: usage, log: log}
	cleanup := func() {
		if usage != nil {
			if err := usage.Close(); err != nil {
				log.Warn("usage store close", zap.Error(err))
			}
		}
		if err := client.Close(context.Background()); err != nil {
			log.Warn("graph client close", zap.Error(err))
		}
	}

	// --- Build the engines ---

	queryEngine := query.New(client, log)
	executor := mutate.New(client, cfg.Limits, log)
	priorityEngine := priority.New(client, log)
	analyticsEngine := analytics.New(client, log)
	coordinator := bulk.New(bulk.ClientStore{Client: client}, executor, cfg.Limits, log)

	// --- Create the MCP server ---

	srv.MCP = server.NewMCPServer(
		"workgraph",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register tools ---

	srv.register(
		// Query
		tools.NewBrowseGraphTool(queryEngine),

		// Single-entity mutations
		tools.NewCreateNodeTool(executor),
		tools.NewUpdateNodeTool(executor),
		tools.NewDeleteNodeTool(executor),
		tools.NewCreateEdgeTool(executor),
		tools.NewDeleteEdgeTool(executor),

		// Batches
		tools.NewBulkOperationsTool(coordinator),

		// Priorities
		tools.NewUpdatePrioritiesTool(priorityEngine),
		tools.NewBulkUpdatePrioritiesTool(priorityEngine),

		// Analytics
		tools.NewGraphHealthTool(analyticsEngine),
		tools.NewDetectBottlenecksTool(analyticsEngine),
		tools.NewAnalyzeWorkloadTool(analyticsEngine),

		// Graph containers
		tools.NewCreateGraphTool(executor),
		tools.NewListGraphsTool(executor),
		tools.NewUpdateGraphTool(executor),
		tools.NewArchiveGraphTool(executor),
		tools.NewDeleteGraphTool(executor),
	)

	return srv, cleanup, nil
}

// register adds each tool with its handler wrapped in the usage
// counter.
func (s *Server) register(handlers ...tool) {
	for _, t := range handlers {
		def := t.Definition()
		s.MCP.AddTool(def, s.instrument(def.Name, t.Handle))
	}
}

// instrument counts calls and caller-visible errors per tool. Counting
// failures are logged and swallowed; they never fail the call.
func (s *Server) instrument(name string, h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := h(ctx, req)
		if s.Usage != nil {
			isErr := err != nil || (result != nil && result.IsError)
			if rerr := s.Usage.Record(name, isErr); rerr != nil {
				s.log.Warn("usage record failed", zap.String("tool", name), zap.Error(rerr))
			}
		}
		return result, err
	}
}

// noop is the default cleanup when initialization fails early.
func noop() {}

func serverInstructions() string {
	return `workgraph is a graph query and analytics engine over a property
graph of work items.

Work items (tasks, bugs, epics, stories...) are nodes; typed directed
edges (DEPENDS_ON, BLOCKS, ENABLES...) connect them; contributors link
to the items they work on; graph containers group items into nestable
projects.

Start with browse_graph to explore. Use create_node/create_edge to
build the graph, update_priorities to rank work (three weighted
components blend into one computed score), and graph_health,
detect_bottlenecks, and analyze_workload to find structural problems.
bulk_operations batches mutations, optionally in one transaction.`
}
