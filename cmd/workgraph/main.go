// workgraph: Graph Query & Analytics Engine MCP Server
//
// Serves a property graph of work items (tasks, bugs, epics...) over
// the MCP stdio transport: typed browse queries with pagination,
// single and bulk mutations, weighted priority scoring, and structural
// analytics (health, bottlenecks, workload).
//
// Usage:
//
//	workgraph serve    # Start MCP server (stdio transport)
//	workgraph version  # Print the version
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calperry/workgraph/internal/config"
	"github.com/calperry/workgraph/internal/httpapi"
	wgserver "github.com/calperry/workgraph/internal/server"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("workgraph v%s\n", wgserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	// Logs go to stderr; stdout carries the MCP stdio transport.
	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cfg := config.FromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	srv, cleanup, err := wgserver.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Operational sidecar: /health and /status. Best-effort — a busy
	// port is logged, not fatal.
	if cfg.HTTPAddr != "" {
		api := httpapi.New(srv.Graph, srv.Usage, wgserver.Version, log)
		httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: api.Handler()}
		go func() {
			log.Info("http sidecar listening", zap.String("addr", cfg.HTTPAddr))
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Warn("http sidecar stopped", zap.Error(err))
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = httpSrv.Shutdown(shutdownCtx)
		}()
	}

	log.Info("serving MCP over stdio", zap.String("version", wgserver.Version))
	return server.ServeStdio(srv.MCP)
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `workgraph v%s — Graph Query & Analytics Engine MCP Server

Usage:
  workgraph serve      Start the MCP server (stdio transport)
  workgraph version    Print the version
  workgraph help       Show this help

Environment:
  NEO4J_URI                 Bolt URI (default: bolt://localhost:7687)
  NEO4J_USERNAME            Username (default: neo4j)
  NEO4J_PASSWORD            Password
  NEO4J_DATABASE            Database name (default: neo4j)
  WORKGRAPH_HTTP_ADDR       Health/status listen address (empty disables)
  WORKGRAPH_DATA_DIR        Local data directory (default: ~/.workgraph)
  WORKGRAPH_MAX_BULK_OPS    Bulk batch size limit (default: 100)
  WORKGRAPH_MAX_PAYLOAD_MB  Bulk payload size limit (default: 10)
`, wgserver.Version)
}
