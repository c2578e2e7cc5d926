package alerting

import (
	"time"

	"github.com/deltasync/deltasync/internal/core/metrics"
)

// Default rule names.
const (
	RuleHighSyncFailureRate    = "high_sync_failure_rate"
	RulePerformanceDegradation = "performance_degradation"
	RuleLowDataConsistency     = "low_data_consistency"
	RuleHighConflictRate       = "high_conflict_rate"
)

// DefaultRules returns the preset threshold rules. Each ships enabled and
// can be overridden or removed per name.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: RuleHighSyncFailureRate,
			Predicate: func(s metrics.HealthSample) bool {
				total := s.FailedSyncs + s.SuccessfulSyncs
				return total > 0 && float64(s.FailedSyncs)/float64(total) > 0.2
			},
			Severity: SeverityHigh,
			Cooldown: 10 * time.Minute,
			Message:  "sync failure rate above 20%",
		},
		{
			Name: RulePerformanceDegradation,
			Predicate: func(s metrics.HealthSample) bool {
				return s.PerformanceImpactPercent > 25
			},
			Severity: SeverityMedium,
			Cooldown: 15 * time.Minute,
			Message:  "sync performance impact above 25%",
		},
		{
			Name: RuleLowDataConsistency,
			Predicate: func(s metrics.HealthSample) bool {
				return s.DataConsistencyScore < 0.9
			},
			Severity: SeverityHigh,
			Cooldown: 5 * time.Minute,
			Message:  "data consistency score below 0.9",
		},
		{
			Name: RuleHighConflictRate,
			Predicate: func(s metrics.HealthSample) bool {
				return s.ConflictsDetected > 20
			},
			Severity: SeverityMedium,
			Cooldown: 30 * time.Minute,
			Message:  "more than 20 conflicts detected",
		},
	}
}
