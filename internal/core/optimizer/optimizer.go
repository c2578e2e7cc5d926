package optimizer

import (
	"context"
	sc "sync"
	"time"

	"github.com/deltasync/deltasync/internal/core/compression"
	"github.com/deltasync/deltasync/internal/core/conflict"
	"github.com/deltasync/deltasync/internal/core/metrics"
	"github.com/deltasync/deltasync/internal/core/observability/log"
	"github.com/deltasync/deltasync/internal/core/perf"
	"github.com/deltasync/deltasync/internal/core/schedule"
)

// Operation names used for instrumentation.
const (
	OpDeltaCompression = "delta_compression"
	OpPeerSync         = "peer_sync"
	OpConflictBatch    = "conflict_batch"
)

// Config aggregates the knobs of the owned components.
type Config struct {
	Enabled     bool                   `json:"enabled" yaml:"enabled"`
	Scheduler   schedule.Config        `json:"scheduler" yaml:"scheduler"`
	Conflicts   conflict.BatcherConfig `json:"conflicts" yaml:"conflicts"`
	Performance perf.Config            `json:"performance" yaml:"performance"`
}

func DefaultConfig() Config {
	return Config{
		Enabled:     true,
		Scheduler:   schedule.DefaultConfig(),
		Conflicts:   conflict.DefaultBatcherConfig(),
		Performance: perf.DefaultConfig(),
	}
}

// Optimizer is the facade the replication engine talks to. It exclusively
// owns one compressor, one lazy synchronizer, one conflict batcher and
// one performance monitor, and feeds outcomes into the shared metrics
// collector.
type Optimizer struct {
	log       log.Log
	cfg       Config
	collector *metrics.Collector

	compressor *compression.Compressor
	scheduler  *schedule.LazySynchronizer
	batcher    *conflict.Batcher
	monitor    *perf.Monitor

	mu      sc.Mutex
	started bool
}

// New builds the facade. syncFn is the replication engine's sync callback;
// resolvers carries its per-type conflict resolution callbacks.
func New(cfg Config, logger log.Log, collector *metrics.Collector, syncFn schedule.SyncFunc, resolvers *conflict.ResolverRegistry) *Optimizer {
	o := &Optimizer{
		log:       logger,
		cfg:       cfg,
		collector: collector,
	}

	o.compressor = compression.New(logger)
	o.monitor = perf.NewMonitor(cfg.Performance, logger)
	o.scheduler = schedule.NewLazySynchronizer(cfg.Scheduler, logger, o.instrumentedSync(syncFn))
	o.batcher = conflict.NewBatcher(cfg.Conflicts, logger, resolvers, o.onBatchResolved)

	return o
}

func (o *Optimizer) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.started || !o.cfg.Enabled {
		return nil
	}
	if err := o.scheduler.Start(); err != nil {
		return err
	}
	o.started = true
	o.log.Info("performance optimizer started")
	return nil
}

// Stop halts the scheduler and flushes any pending conflicts.
func (o *Optimizer) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.started {
		return
	}
	o.scheduler.Stop()
	o.batcher.Close()
	o.started = false
	o.log.Info("performance optimizer stopped")
}

// OptimizeDeltaForTransmission compresses an outgoing delta with the
// size-selected algorithm and instruments the pass.
func (o *Optimizer) OptimizeDeltaForTransmission(delta []byte) ([]byte, compression.Result, error) {
	algorithm := compression.SelectAlgorithm(len(delta))

	var encoded []byte
	var result compression.Result
	err := o.monitor.MeasureBytes(OpDeltaCompression, len(delta), func() error {
		var cerr error
		encoded, result, cerr = o.compressor.Compress(delta, algorithm)
		return cerr
	})
	if err != nil {
		return nil, compression.Result{}, err
	}
	return encoded, result, nil
}

// RestoreDelta is the inverse of OptimizeDeltaForTransmission for
// incoming payloads.
func (o *Optimizer) RestoreDelta(data []byte, algorithm compression.Algorithm) ([]byte, error) {
	return o.compressor.Decompress(data, algorithm)
}

// ScheduleOptimizedSync records peer activity and queues the peer at the
// priority its activity level suggests.
func (o *Optimizer) ScheduleOptimizedSync(peerID string, activityLevel int64) {
	o.scheduler.RecordActivity(peerID, activityLevel)
	o.scheduler.ScheduleSync(peerID, priorityForActivity(activityLevel))
}

// BatchConflictResolution registers a detected conflict for batched
// resolution.
func (o *Optimizer) BatchConflictResolution(record conflict.Record) {
	o.collector.RecordConflictDetected(record)
	o.batcher.Add(record)
}

// Monitor exposes the performance monitor for callers that instrument
// their own operations.
func (o *Optimizer) Monitor() *perf.Monitor {
	return o.monitor
}

// Status reports the facade's operational state.
type Status struct {
	Enabled              bool         `json:"enabled"`
	SchedulerActive      bool         `json:"schedulerActive"`
	MonitorActive        bool         `json:"monitorActive"`
	PerformanceSummary   perf.Summary `json:"performanceSummary"`
	QueueDepth           int          `json:"queueDepth"`
	PendingConflictCount int          `json:"pendingConflictCount"`
}

func (o *Optimizer) Status() Status {
	o.mu.Lock()
	started := o.started
	o.mu.Unlock()

	return Status{
		Enabled:              o.cfg.Enabled,
		SchedulerActive:      o.scheduler.Running(),
		MonitorActive:        started,
		PerformanceSummary:   o.monitor.Summary(""),
		QueueDepth:           o.scheduler.QueueDepth(),
		PendingConflictCount: o.batcher.PendingCount(),
	}
}

// instrumentedSync wraps the engine callback so every attempt is timed
// and recorded as a SyncAttempt. Failures are surfaced to the scheduler,
// which retries on the normal interval.
func (o *Optimizer) instrumentedSync(syncFn schedule.SyncFunc) schedule.SyncFunc {
	return func(ctx context.Context, peerID string) error {
		start := time.Now()
		err := o.monitor.Measure(OpPeerSync, func() error {
			return syncFn(ctx, peerID)
		})

		attempt := metrics.SyncAttempt{
			PeerID:     peerID,
			DurationMs: float64(time.Since(start).Nanoseconds()) / 1e6,
			Success:    err == nil,
			Timestamp:  time.Now(),
		}
		if err != nil {
			attempt.Error = err.Error()
		}
		o.collector.RecordSyncAttempt(attempt)
		return err
	}
}

// onBatchResolved feeds flush outcomes back into the collector, closing
// each record's lifecycle.
func (o *Optimizer) onBatchResolved(conflictType string, records []conflict.Record, res conflict.Resolution) {
	success := res.Err == nil
	perRecord := res.Duration
	if n := len(records); n > 0 {
		perRecord = res.Duration / time.Duration(n)
	}
	for _, r := range records {
		if err := o.collector.RecordConflictResolved(r.ID, res.Strategy, perRecord, success, res.Manual); err != nil {
			o.log.Debug("conflict record not tracked",
				log.String("id", r.ID),
				log.String("type", conflictType))
		}
	}
}

func priorityForActivity(activityLevel int64) schedule.Priority {
	switch {
	case activityLevel > 100:
		return schedule.PriorityHigh
	case activityLevel > 10:
		return schedule.PriorityNormal
	default:
		return schedule.PriorityLow
	}
}
