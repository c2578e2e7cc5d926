package monitor

import (
	"context"
	"time"

	"github.com/deltasync/deltasync/internal/core/metrics"
	"github.com/deltasync/deltasync/internal/core/perf"
)

// AggregateHealthSource derives health samples from what has actually
// been recorded: sync attempts and performance samples over the trailing
// window. It is the default source when the replication engine does not
// install its own.
type AggregateHealthSource struct {
	collector *metrics.Collector
	monitor   *perf.Monitor
}

func NewAggregateHealthSource(collector *metrics.Collector, monitor *perf.Monitor) *AggregateHealthSource {
	return &AggregateHealthSource{collector: collector, monitor: monitor}
}

var _ HealthSource = (*AggregateHealthSource)(nil)

func (s *AggregateHealthSource) CollectHealthSample(_ context.Context) (metrics.HealthSample, error) {
	now := time.Now()
	cutoff := now.Add(-time.Hour)

	sample := metrics.HealthSample{
		Timestamp:            now,
		SyncStatus:           "idle",
		PartitionResilience:  1.0,
		DataConsistencyScore: 1.0,
	}

	peers := make(map[string]struct{})
	var durationTotal float64
	var attempts int64

	for _, a := range s.collector.SyncAttempts() {
		if a.Timestamp.Before(cutoff) {
			continue
		}
		attempts++
		peers[a.PeerID] = struct{}{}
		durationTotal += a.DurationMs
		if a.Success {
			sample.SuccessfulSyncs++
		} else {
			sample.FailedSyncs++
		}
		sample.TotalOperations += int64(a.OpsSent + a.OpsReceived)
	}

	sample.ActivePeers = len(peers)
	if attempts > 0 {
		sample.SyncStatus = "active"
		sample.AverageSyncTimeMs = durationTotal / float64(attempts)
	}

	for _, r := range s.collector.ConflictRecords() {
		if r.DetectedAt.Before(cutoff) {
			continue
		}
		sample.ConflictsDetected++
		if r.ResolvedAt != nil {
			sample.ConflictsResolved++
		}
	}

	// CPU cost of instrumented operations stands in for sync overhead.
	if summary := s.monitor.Summary(""); !summary.NoData {
		sample.PerformanceImpactPercent = summary.CPU.Avg
	}

	return sample, nil
}
