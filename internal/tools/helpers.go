// Package tools provides the MCP tool handlers for the work graph
// engine.
//
// Each tool handler follows the same pattern:
// - A struct with dependencies injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() processes the request and returns a result
//
// Every handler returns its payload as a JSON content block; failures
// come back as isError results rather than Go errors, so the transport
// never sees a handler error for a caller mistake.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// jsonResult serializes v into the tool response content block.
func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to serialize result: %v", err))
	}
	return mcp.NewToolResultText(string(raw))
}

// errorResult converts any failure into an isError payload. Validation,
// not-found, and storage failures all take this one path so callers can
// rely on a single error contract.
func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(err.Error())
}

// intArg extracts an integer argument, returning defaultVal if the key
// is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// boolArg extracts a boolean argument.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// floatArg extracts a float argument and whether it was present.
func floatArg(req mcp.CallToolRequest, key string) (float64, bool) {
	v, ok := req.GetArguments()[key].(float64)
	return v, ok
}

// optionalString returns a pointer to the argument's value when the key
// is present, nil when absent. Presence matters for partial updates:
// an empty string clears a field, a missing key leaves it alone.
func optionalString(req mcp.CallToolRequest, key string) *string {
	v, ok := req.GetArguments()[key]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

// mapArg extracts an object argument, nil when absent.
func mapArg(req mcp.CallToolRequest, key string) map[string]any {
	v, ok := req.GetArguments()[key].(map[string]any)
	if !ok {
		return nil
	}
	return v
}

// stringSliceArg extracts an array-of-strings argument and whether the
// key was present at all.
func stringSliceArg(req mcp.CallToolRequest, key string) ([]string, bool) {
	v, ok := req.GetArguments()[key].([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(v))
	for _, item := range v {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}
