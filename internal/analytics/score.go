package analytics

import (
	"fmt"
	"math"

	"github.com/calperry/workgraph/internal/model"
)

// Health score penalties and their trigger thresholds.
const (
	priorityStdDevLimit   = 0.3
	priorityStdDevPenalty = 0.10

	heavyDependencyCount = 5
	heavyDepRatioLimit   = 0.2
	heavyDepPenalty      = 0.15

	bottleneckCountLimit = 5
	bottleneckPenalty    = 0.10
)

// NodeStats is the per-node slice of data the scoring functions need.
type NodeStats struct {
	ID           string
	Title        string
	Status       model.NodeStatus
	Computed     float64
	Dependents   int
	Dependencies int
}

// HealthReport is the graph health result.
type HealthReport struct {
	Score           float64  `json:"score"`
	NodeCount       int      `json:"node_count"`
	PriorityStdDev  float64  `json:"priority_std_dev"`
	HeavyDepRatio   float64  `json:"heavy_dependency_ratio"`
	BottleneckCount int      `json:"bottleneck_count"`
	Recommendations []string `json:"recommendations"`
}

// HealthScore computes the graph health score. Each crossed threshold
// subtracts its penalty and contributes one recommendation; the score
// never goes below zero.
func HealthScore(nodes []NodeStats, bottlenecks int) HealthReport {
	report := HealthReport{
		Score:           1.0,
		NodeCount:       len(nodes),
		BottleneckCount: bottlenecks,
		Recommendations: []string{},
	}
	if len(nodes) == 0 {
		report.Recommendations = append(report.Recommendations,
			"Graph is empty; add work items to begin tracking health.")
		return report
	}

	report.PriorityStdDev = priorityStdDev(nodes)
	if report.PriorityStdDev > priorityStdDevLimit {
		report.Score -= priorityStdDevPenalty
		report.Recommendations = append(report.Recommendations,
			fmt.Sprintf("Priority spread is high (stddev %.2f); re-balance priorities so work ranks consistently.", report.PriorityStdDev))
	}

	heavy := 0
	for _, n := range nodes {
		if n.Dependencies > heavyDependencyCount {
			heavy++
		}
	}
	report.HeavyDepRatio = float64(heavy) / float64(len(nodes))
	if report.HeavyDepRatio > heavyDepRatioLimit {
		report.Score -= heavyDepPenalty
		report.Recommendations = append(report.Recommendations,
			fmt.Sprintf("%.0f%% of items depend on more than %d others; split them into smaller pieces.", report.HeavyDepRatio*100, heavyDependencyCount))
	}

	if bottlenecks > bottleneckCountLimit {
		report.Score -= bottleneckPenalty
		report.Recommendations = append(report.Recommendations,
			fmt.Sprintf("%d bottleneck items detected; unblock or parallelize the most depended-upon work first.", bottlenecks))
	}

	if report.Score < 0 {
		report.Score = 0
	}
	if len(report.Recommendations) == 0 {
		report.Recommendations = append(report.Recommendations,
			"Graph structure looks healthy; no action needed.")
	}
	return report
}

func priorityStdDev(nodes []NodeStats) float64 {
	mean := 0.0
	for _, n := range nodes {
		mean += n.Computed
	}
	mean /= float64(len(nodes))

	variance := 0.0
	for _, n := range nodes {
		d := n.Computed - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(nodes)))
}

// Severity labels, in ascending order of urgency.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Bottleneck is one heavily-depended-upon node.
type Bottleneck struct {
	NodeID     string  `json:"node_id"`
	Title      string  `json:"title"`
	Status     string  `json:"status"`
	Priority   float64 `json:"priority"`
	Dependents int     `json:"dependents"`
	Score      int     `json:"score"`
	Severity   string  `json:"severity"`
}

// SeverityScore combines three independent signals into a point score:
// how many items wait on the node, whether its status suggests it is
// stuck, and how high its priority already is.
func SeverityScore(dependents int, status model.NodeStatus, priority float64) int {
	score := 0
	switch {
	case dependents > 15:
		score += 3
	case dependents > 10:
		score += 2
	case dependents > 5:
		score += 1
	}
	switch status {
	case model.StatusBlocked:
		score += 3
	case model.StatusProposed:
		score += 2
	case model.StatusInProgress:
		score += 1
	}
	switch {
	case priority > 0.8:
		score += 2
	case priority > 0.5:
		score += 1
	}
	return score
}

// SeverityLabel maps a point score onto its label.
func SeverityLabel(score int) string {
	switch {
	case score >= 7:
		return SeverityCritical
	case score >= 5:
		return SeverityHigh
	case score >= 3:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Workload classification labels.
const (
	LoadBalanced      = "balanced"
	LoadOverloaded    = "overloaded"
	LoadUnderutilized = "underutilized"
)

const (
	overloadRatio     = 1.5
	underutilizeRatio = 0.5
	blockedRatioLimit = 0.3
)

// ContributorLoad is one contributor's aggregate load.
type ContributorLoad struct {
	ContributorID  string  `json:"contributor_id"`
	Name           string  `json:"name,omitempty"`
	ItemCount      int     `json:"item_count"`
	BlockedCount   int     `json:"blocked_count"`
	ActiveCount    int     `json:"active_count"`
	BlockedRatio   float64 `json:"blocked_ratio"`
	LoadRatio      float64 `json:"load_ratio"`
	Classification string  `json:"classification"`
}

// WorkloadReport aggregates contributor loads across the cohort.
type WorkloadReport struct {
	Contributors    []ContributorLoad `json:"contributors"`
	AverageLoad     float64           `json:"average_load"`
	Recommendations []string          `json:"recommendations"`
}

// ClassifyWorkload labels each contributor against the cohort average
// and emits redistribution advice when overloaded and underutilized
// contributors coexist.
func ClassifyWorkload(loads []ContributorLoad) WorkloadReport {
	report := WorkloadReport{Contributors: loads, Recommendations: []string{}}
	if len(loads) == 0 {
		report.Recommendations = append(report.Recommendations,
			"No contributors are assigned to work items yet.")
		return report
	}

	total := 0
	for _, l := range loads {
		total += l.ItemCount
	}
	report.AverageLoad = float64(total) / float64(len(loads))

	var overloaded, underutilized []string
	for i := range loads {
		l := &report.Contributors[i]
		if l.ItemCount > 0 {
			l.BlockedRatio = float64(l.BlockedCount) / float64(l.ItemCount)
		}
		if report.AverageLoad > 0 {
			l.LoadRatio = float64(l.ItemCount) / report.AverageLoad
		}

		switch {
		case l.LoadRatio > overloadRatio || l.BlockedRatio > blockedRatioLimit:
			l.Classification = LoadOverloaded
			overloaded = append(overloaded, l.ContributorID)
		case l.LoadRatio < underutilizeRatio:
			l.Classification = LoadUnderutilized
			underutilized = append(underutilized, l.ContributorID)
		default:
			l.Classification = LoadBalanced
		}
	}

	if len(overloaded) > 0 && len(underutilized) > 0 {
		report.Recommendations = append(report.Recommendations,
			fmt.Sprintf("Redistribute work from %v to %v to balance load.", overloaded, underutilized))
	}
	for _, l := range report.Contributors {
		if l.Classification == LoadOverloaded && l.BlockedRatio > blockedRatioLimit {
			report.Recommendations = append(report.Recommendations,
				fmt.Sprintf("Contributor %s has %.0f%% of their items blocked; clear blockers before assigning more.", l.ContributorID, l.BlockedRatio*100))
		}
	}
	if len(report.Recommendations) == 0 {
		report.Recommendations = append(report.Recommendations,
			"Workload is balanced across contributors.")
	}
	return report
}
