package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/deltasync/deltasync/internal/core/alerting"
	"github.com/deltasync/deltasync/internal/core/metrics"
	"github.com/deltasync/deltasync/internal/core/monitor"
	"github.com/deltasync/deltasync/internal/core/optimizer"
)

// Config aggregates every component's settings. Zero or missing values
// fall back to the component defaults at construction time.
type Config struct {
	LogLevel string `json:"log_level" yaml:"log_level"`

	Optimizer  optimizer.Config `json:"optimizer" yaml:"optimizer"`
	Metrics    metrics.Config   `json:"metrics" yaml:"metrics"`
	Alerting   alerting.Config  `json:"alerting" yaml:"alerting"`
	Monitoring monitor.Config   `json:"monitoring" yaml:"monitoring"`
	Server     ServerConfig     `json:"server" yaml:"server"`

	// StopTimeout bounds how long shutdown waits for each worker.
	StopTimeout time.Duration `json:"stop_timeout" yaml:"stop_timeout"`
}

type ServerConfig struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
}

func Default() Config {
	return Config{
		LogLevel:    "info",
		Optimizer:   optimizer.DefaultConfig(),
		Metrics:     metrics.DefaultConfig(),
		Alerting:    alerting.DefaultConfig(),
		Monitoring:  monitor.DefaultConfig(),
		Server:      ServerConfig{Host: "127.0.0.1", Port: 8640},
		StopTimeout: 5 * time.Second,
	}
}

// UnmarshalYAML accepts the shutdown timeout in the "5s" form and keeps
// defaults for keys the file omits.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	raw := struct {
		LogLevel    string           `yaml:"log_level"`
		Optimizer   optimizer.Config `yaml:"optimizer"`
		Metrics     metrics.Config   `yaml:"metrics"`
		Alerting    alerting.Config  `yaml:"alerting"`
		Monitoring  monitor.Config   `yaml:"monitoring"`
		Server      ServerConfig     `yaml:"server"`
		StopTimeout string           `yaml:"stop_timeout"`
	}{
		LogLevel:   c.LogLevel,
		Optimizer:  c.Optimizer,
		Metrics:    c.Metrics,
		Alerting:   c.Alerting,
		Monitoring: c.Monitoring,
		Server:     c.Server,
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.LogLevel != "" {
		c.LogLevel = raw.LogLevel
	}
	c.Optimizer = raw.Optimizer
	c.Metrics = raw.Metrics
	c.Alerting = raw.Alerting
	c.Monitoring = raw.Monitoring
	if raw.Server.Host != "" {
		c.Server.Host = raw.Server.Host
	}
	if raw.Server.Port != 0 {
		c.Server.Port = raw.Server.Port
	}
	if raw.StopTimeout != "" {
		d, err := time.ParseDuration(raw.StopTimeout)
		if err != nil {
			return fmt.Errorf("stop_timeout: %w", err)
		}
		c.StopTimeout = d
	}
	return nil
}

// Load reads a yaml config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
