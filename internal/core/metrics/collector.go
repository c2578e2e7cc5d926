package metrics

import (
	"errors"
	sc "sync"
	"time"

	"github.com/deltasync/deltasync/internal/core/conflict"
	"github.com/deltasync/deltasync/internal/core/observability/log"
	"github.com/deltasync/deltasync/pkg/ring"
)

var ErrUnknownConflict = errors.New("unknown conflict id")

// Collector owns the bounded histories of health samples, sync attempts
// and conflict records, and answers aggregation queries over them. The
// record entry points are the ingestion interface for the replication
// engine: everything downstream (health score, trends, alerting) works
// only off what was recorded here.
type Collector struct {
	log log.Log

	health *ring.Buffer[HealthSample]
	syncs  *ring.Buffer[SyncAttempt]

	// Conflict records get one in-place mutation at resolution, so they
	// live in a mutex-guarded bounded slice rather than a value ring.
	mu        sc.Mutex
	conflicts []conflict.Record
	capacity  int
}

func NewCollector(cfg Config, logger log.Log) *Collector {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultConfig().HistorySize
	}
	return &Collector{
		log:      logger,
		health:   ring.New[HealthSample](cfg.HistorySize),
		syncs:    ring.New[SyncAttempt](cfg.HistorySize),
		capacity: cfg.HistorySize,
	}
}

func (c *Collector) RecordHealthSample(sample HealthSample) {
	c.health.Append(sample)
}

func (c *Collector) RecordSyncAttempt(attempt SyncAttempt) {
	c.syncs.Append(attempt)
}

func (c *Collector) RecordConflictDetected(record conflict.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.conflicts = append(c.conflicts, record)
	if len(c.conflicts) > c.capacity {
		c.conflicts = c.conflicts[len(c.conflicts)-c.capacity:]
	}
}

// RecordConflictResolved applies the one allowed mutation of a conflict
// record's lifecycle.
func (c *Collector) RecordConflictResolved(id, strategy string, duration time.Duration, success, manual bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.conflicts {
		if c.conflicts[i].ID != id {
			continue
		}
		now := time.Now()
		ms := float64(duration.Nanoseconds()) / 1e6
		c.conflicts[i].ResolvedAt = &now
		c.conflicts[i].ResolutionStrategy = strategy
		c.conflicts[i].ResolutionDurationMs = &ms
		c.conflicts[i].Success = success
		c.conflicts[i].ManualIntervention = manual
		return nil
	}
	return ErrUnknownConflict
}

func (c *Collector) HealthSamples() []HealthSample {
	return c.health.Snapshot()
}

func (c *Collector) SyncAttempts() []SyncAttempt {
	return c.syncs.Snapshot()
}

func (c *Collector) ConflictRecords() []conflict.Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]conflict.Record, len(c.conflicts))
	copy(out, c.conflicts)
	return out
}

// SyncPerformanceTrend aggregates attempts within the trailing window.
func (c *Collector) SyncPerformanceTrend(windowHours int) SyncTrend {
	cutoff := time.Now().Add(-time.Duration(windowHours) * time.Hour)
	trend := SyncTrend{WindowHours: windowHours}

	var successes int
	for _, a := range c.syncs.Snapshot() {
		if a.Timestamp.Before(cutoff) {
			continue
		}
		trend.TotalAttempts++
		if a.Success {
			successes++
		}
		trend.AverageDurationMs += a.DurationMs
		trend.TotalOpsSent += a.OpsSent
		trend.TotalOpsReceived += a.OpsReceived
		trend.TotalBandwidthBytes += a.BandwidthBytes
		trend.AverageCompressionRatio += a.CompressionRatio
	}

	if trend.TotalAttempts == 0 {
		return SyncTrend{WindowHours: windowHours, NoData: true}
	}

	n := float64(trend.TotalAttempts)
	trend.SuccessRate = float64(successes) / n
	trend.AverageDurationMs /= n
	trend.AverageCompressionRatio /= n
	return trend
}

// ConflictAnalysis aggregates conflict records within the trailing window.
func (c *Collector) ConflictAnalysis(windowHours int) ConflictAnalysis {
	cutoff := time.Now().Add(-time.Duration(windowHours) * time.Hour)

	analysis := ConflictAnalysis{
		WindowHours: windowHours,
		ByType:      make(map[string]int),
	}

	var resolved, manual int
	var resolutionMsTotal float64
	var resolutionCount int

	for _, r := range c.ConflictRecords() {
		if r.DetectedAt.Before(cutoff) {
			continue
		}
		analysis.TotalConflicts++
		analysis.ByType[r.Type]++
		if r.ResolvedAt != nil {
			resolved++
			if r.ResolutionDurationMs != nil {
				resolutionMsTotal += *r.ResolutionDurationMs
				resolutionCount++
			}
		}
		if r.ManualIntervention {
			manual++
		}
	}

	if analysis.TotalConflicts == 0 {
		return ConflictAnalysis{WindowHours: windowHours, ByType: map[string]int{}, NoData: true}
	}

	total := float64(analysis.TotalConflicts)
	analysis.ResolutionRate = float64(resolved) / total
	analysis.ManualInterventionRate = float64(manual) / total
	if resolutionCount > 0 {
		analysis.AverageResolutionMs = resolutionMsTotal / float64(resolutionCount)
	}
	return analysis
}
