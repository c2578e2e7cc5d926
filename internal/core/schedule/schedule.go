package schedule

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Priority weighs how aggressively a peer is synchronized.
type Priority uint8

const (
	PriorityCritical Priority = iota
	PriorityHigh
	PriorityNormal
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}

func (p Priority) factor() float64 {
	switch p {
	case PriorityCritical:
		return 0.1
	case PriorityHigh:
		return 0.5
	case PriorityLow:
		return 2.0
	default:
		return 1.0
	}
}

// SyncFunc executes one sync attempt with a peer. Supplied by the
// replication engine; the scheduler only decides when to call it.
type SyncFunc func(ctx context.Context, peerID string) error

const (
	baseInterval = 60 * time.Second
	minInterval  = time.Second
	maxInterval  = time.Hour
)

// ComputeInterval derives the adaptive sync interval for a peer from its
// accumulated activity and priority. The result is always within
// [1s, 3600s].
func ComputeInterval(activityCount int64, priority Priority) time.Duration {
	interval := baseInterval
	switch {
	case activityCount > 100:
		interval /= 4
	case activityCount > 10:
		interval /= 2
	case activityCount < 5:
		interval *= 2
	}

	interval = time.Duration(float64(interval) * priority.factor())

	if interval < minInterval {
		return minInterval
	}
	if interval > maxInterval {
		return maxInterval
	}
	return interval
}

// Config holds the scheduler knobs that are not fixed by the interval
// algorithm itself.
type Config struct {
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`
	StopTimeout  time.Duration `json:"stop_timeout" yaml:"stop_timeout"`
}

func DefaultConfig() Config {
	return Config{
		PollInterval: time.Second,
		StopTimeout:  5 * time.Second,
	}
}

// UnmarshalYAML accepts durations in the "1s"/"500ms" form.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		PollInterval string `yaml:"poll_interval"`
		StopTimeout  string `yaml:"stop_timeout"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	var err error
	if c.PollInterval, err = parseDuration(raw.PollInterval, c.PollInterval); err != nil {
		return fmt.Errorf("scheduler poll_interval: %w", err)
	}
	if c.StopTimeout, err = parseDuration(raw.StopTimeout, c.StopTimeout); err != nil {
		return fmt.Errorf("scheduler stop_timeout: %w", err)
	}
	return nil
}

func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	return time.ParseDuration(s)
}
