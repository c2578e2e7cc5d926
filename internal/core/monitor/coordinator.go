package monitor

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/deltasync/deltasync/internal/core/alerting"
	"github.com/deltasync/deltasync/internal/core/metrics"
	"github.com/deltasync/deltasync/internal/core/observability/log"
	"github.com/deltasync/deltasync/pkg/worker"
)

// HealthSource produces one health sample per monitoring tick. The
// replication engine supplies the real implementation; this subsystem
// only aggregates what the source reports.
type HealthSource interface {
	CollectHealthSample(ctx context.Context) (metrics.HealthSample, error)
}

// Config controls the sampling loop.
type Config struct {
	SampleInterval time.Duration `json:"sample_interval" yaml:"sample_interval"`
	StopTimeout    time.Duration `json:"stop_timeout" yaml:"stop_timeout"`
	// ReportWindowHours bounds the trend/analysis windows in reports.
	ReportWindowHours int `json:"report_window_hours" yaml:"report_window_hours"`
}

func DefaultConfig() Config {
	return Config{
		SampleInterval:    30 * time.Second,
		StopTimeout:       5 * time.Second,
		ReportWindowHours: 24,
	}
}

// UnmarshalYAML accepts durations in the "30s"/"1m" form.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		SampleInterval    string `yaml:"sample_interval"`
		StopTimeout       string `yaml:"stop_timeout"`
		ReportWindowHours int    `yaml:"report_window_hours"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.SampleInterval != "" {
		d, err := time.ParseDuration(raw.SampleInterval)
		if err != nil {
			return fmt.Errorf("monitoring sample_interval: %w", err)
		}
		c.SampleInterval = d
	}
	if raw.StopTimeout != "" {
		d, err := time.ParseDuration(raw.StopTimeout)
		if err != nil {
			return fmt.Errorf("monitoring stop_timeout: %w", err)
		}
		c.StopTimeout = d
	}
	if raw.ReportWindowHours > 0 {
		c.ReportWindowHours = raw.ReportWindowHours
	}
	return nil
}

// Coordinator owns the metrics collector and alerting engine, drives the
// periodic sampling loop and renders health reports.
type Coordinator struct {
	log       log.Log
	cfg       Config
	collector *metrics.Collector
	alerts    *alerting.Engine
	source    HealthSource

	runner *worker.Runner
}

func NewCoordinator(cfg Config, logger log.Log, collector *metrics.Collector, alerts *alerting.Engine, source HealthSource) *Coordinator {
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = DefaultConfig().SampleInterval
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = DefaultConfig().StopTimeout
	}
	if cfg.ReportWindowHours <= 0 {
		cfg.ReportWindowHours = DefaultConfig().ReportWindowHours
	}
	return &Coordinator{
		log:       logger,
		cfg:       cfg,
		collector: collector,
		alerts:    alerts,
		source:    source,
		runner:    worker.NewRunner("monitoring-coordinator"),
	}
}

func (c *Coordinator) Collector() *metrics.Collector {
	return c.collector
}

func (c *Coordinator) Alerts() *alerting.Engine {
	return c.alerts
}

func (c *Coordinator) Start() error {
	return c.runner.Start(c.loop)
}

func (c *Coordinator) Stop() {
	if !c.runner.Stop(c.cfg.StopTimeout) {
		c.log.Warn("monitoring loop did not stop in time, abandoning")
	}
}

func (c *Coordinator) Running() bool {
	return c.runner.Running()
}

func (c *Coordinator) loop(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.SampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

// tick collects one sample, records it and evaluates the alert rules.
// A failing source skips the tick and the loop continues.
func (c *Coordinator) tick(ctx context.Context) {
	sample, err := c.source.CollectHealthSample(ctx)
	if err != nil {
		c.log.Warn("health sample collection failed, skipping tick", log.Err(err))
		return
	}
	c.collector.RecordHealthSample(sample)
	c.alerts.CheckAlerts(sample)
}
