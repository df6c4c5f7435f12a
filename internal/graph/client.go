// Package graph wraps the Neo4j storage collaborator behind a narrow
// contract: parameterized Cypher queries, explicit transactions with
// commit/rollback, and MERGE-based upserts. The engine adds no locking,
// retry, or isolation of its own — ordering between concurrent callers
// is entirely the store's responsibility.
package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Runner executes a single parameterized query and returns the collected
// records. Both the auto-commit client and an explicit transaction
// satisfy it, so mutation code runs unchanged in either mode.
type Runner interface {
	Run(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error)
}

// Config holds Neo4j connection settings.
type Config struct {
	URI      string
	Username string
	Password string
	Database string
}

// Client wraps a Neo4j driver with session management and schema setup.
type Client struct {
	driver neo4j.DriverWithContext
	db     string
	log    *zap.Logger
}

// New connects to Neo4j and verifies connectivity.
func New(ctx context.Context, cfg Config, log *zap.Logger) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("graph: create driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("graph: connect to %s: %w", cfg.URI, err)
	}
	return &Client{driver: driver, db: cfg.Database, log: log}, nil
}

// Close releases the underlying driver.
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// Ping verifies the store is reachable. Used by the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

// EnsureSchema creates the indexes the query engine relies on.
func (c *Client) EnsureSchema(ctx context.Context) error {
	indexes := []string{
		"CREATE INDEX work_item_id IF NOT EXISTS FOR (n:WorkItem) ON (n.id)",
		"CREATE INDEX work_item_type IF NOT EXISTS FOR (n:WorkItem) ON (n.type)",
		"CREATE INDEX work_item_status IF NOT EXISTS FOR (n:WorkItem) ON (n.status)",
		"CREATE INDEX work_item_priority IF NOT EXISTS FOR (n:WorkItem) ON (n.priorityComputed)",
		"CREATE INDEX contributor_id IF NOT EXISTS FOR (c:Contributor) ON (c.id)",
		"CREATE INDEX graph_id IF NOT EXISTS FOR (g:Graph) ON (g.id)",
	}
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.db})
	defer session.Close(ctx)

	for _, q := range indexes {
		if _, err := session.Run(ctx, q, nil); err != nil {
			return Storagef(err, "create index")
		}
	}
	return nil
}

// Read runs a query in a read session and collects the records.
func (c *Client) Read(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	return c.run(ctx, neo4j.AccessModeRead, query, params)
}

// Write runs a query in a write session and collects the records.
func (c *Client) Write(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	return c.run(ctx, neo4j.AccessModeWrite, query, params)
}

// Run satisfies Runner with write semantics, so a Client can stand in
// wherever a transaction would.
func (c *Client) Run(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	return c.Write(ctx, query, params)
}

func (c *Client) run(ctx context.Context, mode neo4j.AccessMode, query string, params map[string]any) ([]*neo4j.Record, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: c.db})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, Storagef(err, "run query")
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, Storagef(err, "collect records")
	}
	return records, nil
}

// BeginTx opens an explicit transaction. The caller must Commit or
// Rollback; Close is safe to defer in either case.
func (c *Client) BeginTx(ctx context.Context) (*Transaction, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite, DatabaseName: c.db})
	tx, err := session.BeginTransaction(ctx)
	if err != nil {
		session.Close(ctx)
		return nil, Storagef(err, "begin transaction")
	}
	return &Transaction{session: session, tx: tx}, nil
}

// Transaction is an explicit store transaction bound to one session.
type Transaction struct {
	session neo4j.SessionWithContext
	tx      neo4j.ExplicitTransaction
	done    bool
}

// Run executes a query inside the transaction.
func (t *Transaction) Run(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	result, err := t.tx.Run(ctx, query, params)
	if err != nil {
		return nil, Storagef(err, "run in transaction")
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, Storagef(err, "collect in transaction")
	}
	return records, nil
}

// Commit commits the transaction and releases its session.
func (t *Transaction) Commit(ctx context.Context) error {
	defer t.close(ctx)
	if err := t.tx.Commit(ctx); err != nil {
		return Storagef(err, "commit")
	}
	return nil
}

// Rollback aborts the transaction and releases its session.
func (t *Transaction) Rollback(ctx context.Context) error {
	defer t.close(ctx)
	if err := t.tx.Rollback(ctx); err != nil {
		return Storagef(err, "rollback")
	}
	return nil
}

// Close releases the session. No-op after Commit or Rollback.
func (t *Transaction) Close(ctx context.Context) {
	t.close(ctx)
}

func (t *Transaction) close(ctx context.Context) {
	if t.done {
		return
	}
	t.done = true
	t.session.Close(ctx)
}
