package monitor

import (
	"fmt"
	"time"

	"github.com/deltasync/deltasync/internal/core/alerting"
	"github.com/deltasync/deltasync/internal/core/metrics"
)

// HealthStatus buckets the composite score for dashboards.
type HealthStatus string

const (
	StatusExcellent HealthStatus = "EXCELLENT"
	StatusGood      HealthStatus = "GOOD"
	StatusWarning   HealthStatus = "WARNING"
	StatusCritical  HealthStatus = "CRITICAL"
)

func statusFor(score float64) HealthStatus {
	switch {
	case score >= 90:
		return StatusExcellent
	case score >= 75:
		return StatusGood
	case score >= 50:
		return StatusWarning
	default:
		return StatusCritical
	}
}

// Report is the comprehensive health report exposed to dashboards.
type Report struct {
	Timestamp            time.Time                `json:"timestamp"`
	OverallHealthScore   float64                  `json:"overallHealthScore"`
	HealthStatus         HealthStatus             `json:"healthStatus"`
	Scores               metrics.HealthScore      `json:"scores"`
	SyncPerformanceTrend metrics.SyncTrend        `json:"syncPerformanceTrend"`
	ConflictAnalysis     metrics.ConflictAnalysis `json:"conflictAnalysis"`
	Recommendations      []string                 `json:"recommendations"`
	AlertingSummary      alerting.Summary         `json:"alertingSummary"`
}

// HealthReport renders the current state of the collector and alerting
// engine into one report.
func (c *Coordinator) HealthReport() Report {
	score := c.collector.Score()

	return Report{
		Timestamp:            time.Now(),
		OverallHealthScore:   score.Overall,
		HealthStatus:         statusFor(score.Overall),
		Scores:               score,
		SyncPerformanceTrend: c.collector.SyncPerformanceTrend(c.cfg.ReportWindowHours),
		ConflictAnalysis:     c.collector.ConflictAnalysis(c.cfg.ReportWindowHours),
		Recommendations:      recommendations(score),
		AlertingSummary:      c.alerts.Summarize(),
	}
}

// recommendations derives remediation hints from the weakest component
// scores.
func recommendations(score metrics.HealthScore) []string {
	recs := make([]string, 0, 4)

	if score.Sync < 80 {
		recs = append(recs, fmt.Sprintf(
			"sync reliability at %.0f/100: inspect failing peers and network paths", score.Sync))
	}
	if score.Conflict < 80 {
		recs = append(recs, fmt.Sprintf(
			"conflict resolution at %.0f/100: review unresolved conflicts and reduce manual interventions", score.Conflict))
	}
	if score.Performance < 80 {
		recs = append(recs, fmt.Sprintf(
			"performance impact at %.0f/100: consider longer sync intervals or the high-ratio codec", score.Performance))
	}
	if score.Consistency < 80 {
		recs = append(recs, fmt.Sprintf(
			"data consistency at %.0f/100: verify replica convergence", score.Consistency))
	}

	if len(recs) == 0 {
		recs = append(recs, "no action required")
	}
	return recs
}
