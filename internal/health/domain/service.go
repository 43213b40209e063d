package domain

import (
	"fmt"
	"math"
)

const (
	// unhealthyThreshold is the unhealthy share, in percent, at which the
	// whole system is reported unhealthy.
	unhealthyThreshold = 30.0

	// criticalThreshold is the unhealthy share above which a critical issue
	// is raised.
	criticalThreshold = 50.0

	// stableBand is the change in healthy share, in percentage points, below
	// which a trend is considered stable.
	stableBand = 5.0
)

// Stats counts services by status. Percentages are in [0, 100].
type Stats struct {
	Total               int     `json:"total"`
	Healthy             int     `json:"healthy"`
	Unhealthy           int     `json:"unhealthy"`
	Degraded            int     `json:"degraded"`
	HealthyPercentage   float64 `json:"healthyPercentage"`
	UnhealthyPercentage float64 `json:"unhealthyPercentage"`
	DegradedPercentage  float64 `json:"degradedPercentage"`
}

// Evaluation is the detailed system verdict.
type Evaluation struct {
	OverallStatus   Status   `json:"overallStatus"`
	Stats           Stats    `json:"stats"`
	CriticalIssues  []string `json:"criticalIssues"`
	Recommendations []string `json:"recommendations"`
}

// TrendDirection describes how the healthy share moved between snapshots.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendStable    TrendDirection = "stable"
	TrendDegrading TrendDirection = "degrading"
)

// Trend compares two snapshots.
type Trend struct {
	Direction        TrendDirection `json:"trend"`
	ChangePercentage float64        `json:"changePercentage"`
	Summary          string         `json:"summary"`
}

// CalculateStats counts healths by status.
func CalculateStats(healths []*Health) Stats {
	total := len(healths)
	if total == 0 {
		return Stats{}
	}

	var s Stats
	s.Total = total
	for _, h := range healths {
		switch h.Status {
		case StatusHealthy:
			s.Healthy++
		case StatusUnhealthy:
			s.Unhealthy++
		case StatusDegraded:
			s.Degraded++
		}
	}

	s.HealthyPercentage = percent(s.Healthy, total)
	s.UnhealthyPercentage = percent(s.Unhealthy, total)
	s.DegradedPercentage = percent(s.Degraded, total)
	return s
}

// EvaluateSystemHealth reduces individual reports to one status. No data is
// unhealthy; any unhealthy or degraded service makes the system at least
// degraded, and an unhealthy share of 30% or more makes it unhealthy.
func EvaluateSystemHealth(healths []*Health) Status {
	if len(healths) == 0 {
		return StatusUnhealthy
	}

	stats := CalculateStats(healths)
	if stats.Unhealthy == 0 && stats.Degraded == 0 {
		return StatusHealthy
	}
	if stats.UnhealthyPercentage >= unhealthyThreshold {
		return StatusUnhealthy
	}
	return StatusDegraded
}

// EvaluateDetailed returns the overall status together with critical issues
// and operator recommendations.
func EvaluateDetailed(healths []*Health) Evaluation {
	overall := EvaluateSystemHealth(healths)
	stats := CalculateStats(healths)

	criticalIssues := []string{}
	recommendations := []string{}

	if stats.UnhealthyPercentage > criticalThreshold {
		criticalIssues = append(criticalIssues, "Over 50% of services are unhealthy")
	}
	if stats.Total == 0 {
		criticalIssues = append(criticalIssues, "No health data available")
	}

	if stats.Unhealthy > 0 {
		recommendations = append(recommendations, fmt.Sprintf("Investigate %d unhealthy service(s)", stats.Unhealthy))
	}
	if stats.Degraded > 0 {
		recommendations = append(recommendations, fmt.Sprintf("Monitor %d degraded service(s)", stats.Degraded))
	}
	if overall == StatusHealthy {
		recommendations = append(recommendations, "System is operating normally")
	}

	return Evaluation{
		OverallStatus:   overall,
		Stats:           stats,
		CriticalIssues:  criticalIssues,
		Recommendations: recommendations,
	}
}

// AnalyzeTrend compares the healthy share of current against previous.
func AnalyzeTrend(current, previous []*Health) Trend {
	change := CalculateStats(current).HealthyPercentage - CalculateStats(previous).HealthyPercentage

	switch {
	case math.Abs(change) < stableBand:
		return Trend{Direction: TrendStable, ChangePercentage: change, Summary: "System health remains stable"}
	case change > 0:
		return Trend{Direction: TrendImproving, ChangePercentage: change, Summary: fmt.Sprintf("System health improved by %.1f%%", change)}
	default:
		return Trend{Direction: TrendDegrading, ChangePercentage: change, Summary: fmt.Sprintf("System health degraded by %.1f%%", math.Abs(change))}
	}
}

func percent(n, total int) float64 {
	return float64(n) / float64(total) * 100
}
