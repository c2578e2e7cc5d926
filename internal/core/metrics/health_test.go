package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deltasync/deltasync/internal/core/conflict"
)

func healthySample(successful, failed int64) HealthSample {
	return HealthSample{
		Timestamp:                time.Now(),
		SuccessfulSyncs:          successful,
		FailedSyncs:              failed,
		DataConsistencyScore:     1.0,
		PerformanceImpactPercent: 2,
	}
}

func TestScore_NoSamplesIsHealthyByDefault(t *testing.T) {
	c := newTestCollector()
	score := c.Score()
	assert.Equal(t, 100.0, score.Overall)
	assert.Equal(t, 100.0, score.Sync)
	assert.Equal(t, 100.0, score.Conflict)
}

func TestScore_SyncComponentFromTrailingSamples(t *testing.T) {
	c := newTestCollector()
	// Ten samples summing to 80 successful / 20 failed.
	for i := 0; i < 10; i++ {
		c.RecordHealthSample(healthySample(8, 2))
	}
	score := c.Score()
	assert.InDelta(t, 80.0, score.Sync, 1e-9)
}

func TestScore_AllFailedSyncsScoreZero(t *testing.T) {
	c := newTestCollector()
	for i := 0; i < 5; i++ {
		c.RecordHealthSample(healthySample(0, 10))
	}
	assert.Equal(t, 0.0, c.Score().Sync)
}

func TestScore_NoSyncsAtAllScoresHundred(t *testing.T) {
	c := newTestCollector()
	c.RecordHealthSample(healthySample(0, 0))
	assert.Equal(t, 100.0, c.Score().Sync)
}

func TestScore_UsesOnlyLastTenSamples(t *testing.T) {
	c := newTestCollector()
	// Old bad samples pushed out of the score window by ten good ones.
	for i := 0; i < 5; i++ {
		c.RecordHealthSample(healthySample(0, 10))
	}
	for i := 0; i < 10; i++ {
		c.RecordHealthSample(healthySample(10, 0))
	}
	assert.InDelta(t, 100.0, c.Score().Sync, 1e-9)
}

func TestScore_ConflictComponent(t *testing.T) {
	c := newTestCollector()
	c.RecordHealthSample(healthySample(1, 0))

	records := make([]conflict.Record, 4)
	for i := range records {
		records[i] = conflict.NewRecord("update-update", nil)
		c.RecordConflictDetected(records[i])
	}
	// 3 of 4 resolved, 1 of 4 manual: 75 - 5 = 70.
	require.NoError(t, c.RecordConflictResolved(records[0].ID, "merge", time.Millisecond, true, false))
	require.NoError(t, c.RecordConflictResolved(records[1].ID, "merge", time.Millisecond, true, false))
	require.NoError(t, c.RecordConflictResolved(records[2].ID, "manual", time.Millisecond, true, true))

	assert.InDelta(t, 70.0, c.Score().Conflict, 1e-9)
}

func TestScore_PerformanceBands(t *testing.T) {
	tests := []struct {
		impact float64
		want   float64
	}{
		{3, 100},
		{10, 90},
		{25, 75},
		{40, 60},
		{70, 50},
	}
	for _, tt := range tests {
		c := newTestCollector()
		c.RecordHealthSample(HealthSample{
			Timestamp:                time.Now(),
			DataConsistencyScore:     1.0,
			PerformanceImpactPercent: tt.impact,
		})
		assert.InDelta(t, tt.want, c.Score().Performance, 1e-9, "impact %v", tt.impact)
	}
}

func TestScore_OverallWeightingAndBounds(t *testing.T) {
	c := newTestCollector()
	for i := 0; i < 10; i++ {
		c.RecordHealthSample(HealthSample{
			Timestamp:                time.Now(),
			SuccessfulSyncs:          8,
			FailedSyncs:              2,
			DataConsistencyScore:     0.95,
			PerformanceImpactPercent: 10,
		})
	}

	score := c.Score()
	// 0.3*80 + 0.2*100 + 0.3*90 + 0.2*95 = 90
	assert.InDelta(t, 90.0, score.Overall, 1e-9)
	assert.GreaterOrEqual(t, score.Overall, 0.0)
	assert.LessOrEqual(t, score.Overall, 100.0)
}

func TestScore_AlwaysWithinBounds(t *testing.T) {
	c := newTestCollector()
	for i := 0; i < 10; i++ {
		c.RecordHealthSample(HealthSample{
			Timestamp:                time.Now(),
			FailedSyncs:              100,
			DataConsistencyScore:     0,
			PerformanceImpactPercent: 500,
		})
	}
	for i := 0; i < 20; i++ {
		r := conflict.NewRecord("t", nil)
		r.ManualIntervention = true
		c.RecordConflictDetected(r)
	}

	score := c.Score()
	assert.GreaterOrEqual(t, score.Overall, 0.0)
	assert.LessOrEqual(t, score.Overall, 100.0)
}
