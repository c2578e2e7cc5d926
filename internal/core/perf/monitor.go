package perf

import (
	"sort"
	"time"

	"github.com/deltasync/deltasync/internal/core/observability/log"
	"github.com/deltasync/deltasync/pkg/ring"
)

// Sample is one instrumented operation. Immutable once recorded.
type Sample struct {
	Operation    string        `json:"operationType"`
	Latency      time.Duration `json:"-"`
	LatencyMs    float64       `json:"latencyMs"`
	MemoryMB     float64       `json:"memoryUsageMb"`
	CPUPercent   float64       `json:"cpuUsagePercent"`
	Timestamp    time.Time     `json:"timestamp"`
	Success      bool          `json:"success"`
	PayloadBytes int           `json:"payloadSizeBytes"`
}

// Config bounds the sample history.
type Config struct {
	HistorySize int `json:"history_size" yaml:"history_size"`
}

func DefaultConfig() Config {
	return Config{HistorySize: 1000}
}

// Monitor times operations and keeps a bounded sample history. Measure is
// safe for concurrent callers; the history ring carries its own lock.
type Monitor struct {
	log     log.Log
	probe   ResourceProbe
	history *ring.Buffer[Sample]
}

func NewMonitor(cfg Config, logger log.Log) *Monitor {
	return NewMonitorWithProbe(cfg, logger, runtimeProbe{})
}

func NewMonitorWithProbe(cfg Config, logger log.Log, probe ResourceProbe) *Monitor {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultConfig().HistorySize
	}
	if probe == nil {
		probe = runtimeProbe{}
	}
	return &Monitor{
		log:     logger,
		probe:   probe,
		history: ring.New[Sample](cfg.HistorySize),
	}
}

// Measure runs fn and records a sample for it. Failures are recorded and
// then propagated unchanged; a panicking fn is recorded as a failure
// before the panic continues.
func (m *Monitor) Measure(operation string, fn func() error) error {
	return m.MeasureBytes(operation, 0, fn)
}

// MeasureBytes is Measure with a known payload size attached to the
// sample.
func (m *Monitor) MeasureBytes(operation string, payloadBytes int, fn func() error) (err error) {
	start := time.Now()
	cpuStart := m.probe.CPUTime()

	defer func() {
		r := recover()
		elapsed := time.Since(start)

		cpuPercent := 0.0
		if elapsed > 0 {
			cpuPercent = float64(m.probe.CPUTime()-cpuStart) / float64(elapsed) * 100
		}
		if cpuPercent < 0 {
			cpuPercent = 0
		}

		m.history.Append(Sample{
			Operation:    operation,
			Latency:      elapsed,
			LatencyMs:    float64(elapsed.Nanoseconds()) / 1e6,
			MemoryMB:     m.probe.MemoryMB(),
			CPUPercent:   cpuPercent,
			Timestamp:    time.Now(),
			Success:      err == nil && r == nil,
			PayloadBytes: payloadBytes,
		})

		if err != nil {
			m.log.Debug("measured operation failed",
				log.String("operation", operation),
				log.Err(err))
		}
		if r != nil {
			panic(r)
		}
	}()

	return fn()
}

// Samples returns the recorded history, oldest first.
func (m *Monitor) Samples() []Sample {
	return m.history.Snapshot()
}

// Summary aggregates the history for one operation type, or for all
// operations when operation is empty. Count zero means no data; no
// statistic divides by zero.
func (m *Monitor) Summary(operation string) Summary {
	samples := m.history.Snapshot()
	filtered := samples[:0:0]
	for _, s := range samples {
		if operation == "" || s.Operation == operation {
			filtered = append(filtered, s)
		}
	}

	if len(filtered) == 0 {
		return Summary{Operation: operation, NoData: true}
	}

	summary := Summary{
		Operation: operation,
		Count:     len(filtered),
	}

	latencies := make([]float64, 0, len(filtered))
	successes := 0
	summary.Latency.MinMs = filtered[0].LatencyMs

	for _, s := range filtered {
		if s.Success {
			successes++
		}
		latencies = append(latencies, s.LatencyMs)
		summary.Latency.AvgMs += s.LatencyMs
		if s.LatencyMs < summary.Latency.MinMs {
			summary.Latency.MinMs = s.LatencyMs
		}
		if s.LatencyMs > summary.Latency.MaxMs {
			summary.Latency.MaxMs = s.LatencyMs
		}
		summary.Memory.Avg += s.MemoryMB
		if s.MemoryMB > summary.Memory.Peak {
			summary.Memory.Peak = s.MemoryMB
		}
		summary.CPU.Avg += s.CPUPercent
		if s.CPUPercent > summary.CPU.Peak {
			summary.CPU.Peak = s.CPUPercent
		}
	}

	n := float64(len(filtered))
	summary.SuccessRate = float64(successes) / n
	summary.Latency.AvgMs /= n
	summary.Memory.Avg /= n
	summary.CPU.Avg /= n
	summary.Latency.P95Ms = percentile(latencies, 0.95)

	return summary
}

// Summary holds aggregate statistics over recorded samples.
type Summary struct {
	Operation   string       `json:"operationType,omitempty"`
	Count       int          `json:"count"`
	SuccessRate float64      `json:"successRate"`
	Latency     LatencyStats `json:"latency"`
	Memory      GaugeStats   `json:"memory"`
	CPU         GaugeStats   `json:"cpu"`
	NoData      bool         `json:"noData,omitempty"`
}

type LatencyStats struct {
	AvgMs float64 `json:"avgMs"`
	MinMs float64 `json:"minMs"`
	MaxMs float64 `json:"maxMs"`
	P95Ms float64 `json:"p95Ms"`
}

type GaugeStats struct {
	Avg  float64 `json:"avg"`
	Peak float64 `json:"peak"`
}

func percentile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	idx := int(float64(len(sorted))*q+0.5) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
