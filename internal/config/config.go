// Package config resolves server configuration from the environment
// with safe defaults. Operational guard rails (bulk op counts, payload
// sizes) are injectable limits here rather than constants buried in the
// engine.
package config

import (
	"os"
	"strconv"
)

// Limits are the policy knobs enforced by the engine.
type Limits struct {
	MaxTitleLength       int
	MaxDescriptionLength int
	MaxMetadataBytes     int
	MaxContributors      int
	MaxBulkOperations    int
	MaxPayloadMB         int
}

// DefaultLimits returns the standard guard-rail values.
func DefaultLimits() Limits {
	return Limits{
		MaxTitleLength:       500,
		MaxDescriptionLength: 2000,
		MaxMetadataBytes:     32 << 10,
		MaxContributors:      50,
		MaxBulkOperations:    100,
		MaxPayloadMB:         10,
	}
}

// Config holds the full server configuration.
type Config struct {
	Neo4jURI      string
	Neo4jUsername string
	Neo4jPassword string
	Neo4jDatabase string

	// HTTPAddr enables the health/status endpoints when non-empty.
	HTTPAddr string

	// DataDir holds the local usage-metrics database.
	DataDir string

	Limits Limits
}

// FromEnv builds a Config from environment variables, applying defaults
// for anything unset.
func FromEnv() Config {
	cfg := Config{
		Neo4jURI:      envOr("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUsername: envOr("NEO4J_USERNAME", "neo4j"),
		Neo4jPassword: os.Getenv("NEO4J_PASSWORD"),
		Neo4jDatabase: envOr("NEO4J_DATABASE", "neo4j"),
		HTTPAddr:      os.Getenv("WORKGRAPH_HTTP_ADDR"),
		DataDir:       envOr("WORKGRAPH_DATA_DIR", defaultDataDir()),
		Limits:        DefaultLimits(),
	}
	cfg.Limits.MaxBulkOperations = envInt("WORKGRAPH_MAX_BULK_OPS", cfg.Limits.MaxBulkOperations)
	cfg.Limits.MaxPayloadMB = envInt("WORKGRAPH_MAX_PAYLOAD_MB", cfg.Limits.MaxPayloadMB)
	return cfg
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".workgraph"
	}
	return home + "/.workgraph"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
