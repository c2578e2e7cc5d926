package metrics

import "time"

const (
	// Health score weighting per component.
	syncWeight        = 0.3
	conflictWeight    = 0.2
	performanceWeight = 0.3
	consistencyWeight = 0.2

	// Trailing inputs considered by the score.
	scoreSampleWindow   = 10
	conflictScoreWindow = time.Hour

	manualInterventionPenalty = 20.0
)

// Score computes the composite health score over the last ten health
// samples and the trailing hour of conflicts. With no samples at all the
// system is healthy by default and scores 100.
func (c *Collector) Score() HealthScore {
	samples := c.health.Last(scoreSampleWindow)
	if len(samples) == 0 {
		return HealthScore{Overall: 100, Sync: 100, Conflict: 100, Performance: 100, Consistency: 100}
	}

	score := HealthScore{
		Sync:        c.syncScore(samples),
		Conflict:    c.conflictScore(),
		Performance: c.performanceScore(samples),
		Consistency: c.consistencyScore(samples),
	}
	score.Overall = clampScore(
		syncWeight*score.Sync +
			conflictWeight*score.Conflict +
			performanceWeight*score.Performance +
			consistencyWeight*score.Consistency)
	return score
}

func (c *Collector) syncScore(samples []HealthSample) float64 {
	var successful, failed int64
	for _, s := range samples {
		successful += s.SuccessfulSyncs
		failed += s.FailedSyncs
	}
	if successful+failed == 0 {
		return 100
	}
	return float64(successful) / float64(successful+failed) * 100
}

func (c *Collector) conflictScore() float64 {
	cutoff := time.Now().Add(-conflictScoreWindow)

	var total, resolved, manual int
	for _, r := range c.ConflictRecords() {
		if r.DetectedAt.Before(cutoff) {
			continue
		}
		total++
		if r.ResolvedAt != nil {
			resolved++
		}
		if r.ManualIntervention {
			manual++
		}
	}

	if total == 0 {
		return 100
	}

	score := float64(resolved)/float64(total)*100 -
		float64(manual)/float64(total)*manualInterventionPenalty
	if score < 0 {
		return 0
	}
	return score
}

func (c *Collector) performanceScore(samples []HealthSample) float64 {
	var impact float64
	for _, s := range samples {
		impact += s.PerformanceImpactPercent
	}
	impact /= float64(len(samples))

	switch {
	case impact <= 5:
		return 100
	case impact <= 15:
		return 90
	case impact <= 30:
		return 75
	default:
		if score := 100 - impact; score > 50 {
			return score
		}
		return 50
	}
}

func (c *Collector) consistencyScore(samples []HealthSample) float64 {
	var total float64
	for _, s := range samples {
		total += s.DataConsistencyScore
	}
	return total / float64(len(samples)) * 100
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
