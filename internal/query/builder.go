// Package query maps typed browse requests onto parameterized Cypher
// plans — a main result query plus, for every paginated type, a count
// query sharing the same predicate — and computes page metadata.
package query

import (
	"strings"

	"github.com/calperry/workgraph/internal/graph"
)

// Type selects which browse query to build.
type Type string

const (
	AllNodes      Type = "all_nodes"
	ByType        Type = "by_type"
	ByStatus      Type = "by_status"
	ByContributor Type = "by_contributor"
	ByPriority    Type = "by_priority"
	Dependencies  Type = "dependencies"
	Search        Type = "search"
)

// Request is the filter bag accompanying a query type selector.
type Request struct {
	Type          Type
	NodeType      string // required for by_type
	Status        string // required for by_status
	ContributorID string // required for by_contributor
	MinPriority   float64
	NodeID        string // required for dependencies
	SearchTerm    string // required for search
	Limit         int
	Offset        int
}

// Plan is an executable query pair. CountQuery is empty for the
// dependencies type, whose result set is bounded by fan-out rather
// than corpus size. Params are shared between both queries.
type Plan struct {
	Query      string
	CountQuery string
	Params     map[string]any
}

// Paginated reports whether the plan carries a count query.
func (p Plan) Paginated() bool { return p.CountQuery != "" }

// DefaultLimit is applied when a request carries no limit.
const DefaultLimit = 50

// Build validates the request's per-type required filters and produces
// its query plan. Limit and offset must already be resolved to positive
// and non-negative integers; a non-positive limit is rejected here so
// pagination math downstream never divides by zero.
func Build(req Request) (Plan, error) {
	if req.Type != Dependencies {
		if req.Limit <= 0 {
			return Plan{}, graph.Invalidf("limit must be positive, got %d", req.Limit)
		}
		if req.Offset < 0 {
			return Plan{}, graph.Invalidf("offset must be non-negative, got %d", req.Offset)
		}
	}

	switch req.Type {
	case AllNodes:
		return paginated("", nil, req), nil

	case ByType:
		if strings.TrimSpace(req.NodeType) == "" {
			return Plan{}, graph.Invalidf("query type %q requires the node_type filter", ByType)
		}
		return paginated("n.type = $nodeType", map[string]any{"nodeType": req.NodeType}, req), nil

	case ByStatus:
		if strings.TrimSpace(req.Status) == "" {
			return Plan{}, graph.Invalidf("query type %q requires the status filter", ByStatus)
		}
		return paginated("n.status = $status", map[string]any{"status": req.Status}, req), nil

	case ByContributor:
		if strings.TrimSpace(req.ContributorID) == "" {
			return Plan{}, graph.Invalidf("query type %q requires the contributor_id filter", ByContributor)
		}
		plan := Plan{
			Query: "MATCH (c:Contributor {id: $contributorId})-[:CONTRIBUTES_TO]->(n:WorkItem)\n" +
				"RETURN n ORDER BY n.createdAt DESC SKIP $offset LIMIT $limit",
			CountQuery: "MATCH (c:Contributor {id: $contributorId})-[:CONTRIBUTES_TO]->(n:WorkItem)\n" +
				"RETURN count(n) AS total",
			Params: map[string]any{
				"contributorId": req.ContributorID,
				"offset":        req.Offset,
				"limit":         req.Limit,
			},
		}
		return plan, nil

	case ByPriority:
		plan := paginated("n.priorityComputed >= $minPriority", map[string]any{"minPriority": req.MinPriority}, req)
		plan.Query = strings.Replace(plan.Query, "ORDER BY n.createdAt DESC", "ORDER BY n.priorityComputed DESC", 1)
		return plan, nil

	case Dependencies:
		if strings.TrimSpace(req.NodeID) == "" {
			return Plan{}, graph.Invalidf("query type %q requires the node_id filter", Dependencies)
		}
		// Single round trip: the node plus its outgoing and incoming
		// DEPENDS_ON neighbors. No pagination.
		plan := Plan{
			Query: "MATCH (n:WorkItem {id: $nodeId})\n" +
				"OPTIONAL MATCH (n)-[:DEPENDS_ON]->(dep:WorkItem)\n" +
				"OPTIONAL MATCH (dependent:WorkItem)-[:DEPENDS_ON]->(n)\n" +
				"RETURN n, collect(DISTINCT dep) AS dependencies, collect(DISTINCT dependent) AS dependents",
			Params: map[string]any{"nodeId": req.NodeID},
		}
		return plan, nil

	case Search:
		if strings.TrimSpace(req.SearchTerm) == "" {
			return Plan{}, graph.Invalidf("query type %q requires the search_term filter", Search)
		}
		predicate := "toLower(n.title) CONTAINS toLower($term) OR toLower(n.description) CONTAINS toLower($term)"
		return paginated(predicate, map[string]any{"term": req.SearchTerm}, req), nil

	default:
		return Plan{}, graph.Invalidf("unknown query type %q", req.Type)
	}
}

// paginated builds the standard WorkItem scan with an optional WHERE
// predicate, plus the count query over the same predicate.
func paginated(predicate string, params map[string]any, req Request) Plan {
	where := ""
	if predicate != "" {
		where = "WHERE " + predicate + "\n"
	}
	all := map[string]any{"offset": req.Offset, "limit": req.Limit}
	for k, v := range params {
		all[k] = v
	}
	return Plan{
		Query: "MATCH (n:WorkItem)\n" + where +
			"RETURN n ORDER BY n.createdAt DESC SKIP $offset LIMIT $limit",
		CountQuery: "MATCH (n:WorkItem)\n" + where + "RETURN count(n) AS total",
		Params:     all,
	}
}
