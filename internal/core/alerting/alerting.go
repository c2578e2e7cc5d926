package alerting

import (
	"errors"
	"fmt"
	sc "sync"
	"time"

	"github.com/google/uuid"

	"github.com/deltasync/deltasync/internal/core/metrics"
	"github.com/deltasync/deltasync/internal/core/observability/log"
	"github.com/deltasync/deltasync/pkg/ring"
)

var ErrUnknownRule = errors.New("unknown alert rule")

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Predicate decides whether a rule fires for a given health sample.
type Predicate func(sample metrics.HealthSample) bool

// Rule is static alerting configuration. Name is the unique key;
// re-registering a name replaces the rule.
type Rule struct {
	Name      string
	Predicate Predicate
	Severity  Severity
	Cooldown  time.Duration
	Message   string
}

// Alert is one rule firing outside its cooldown window.
type Alert struct {
	ID        string               `json:"id"`
	Timestamp time.Time            `json:"timestamp"`
	RuleName  string               `json:"ruleName"`
	Severity  Severity             `json:"severity"`
	Sample    metrics.HealthSample `json:"sample"`
	Message   string               `json:"message"`
}

// Handler consumes dispatched alerts. Handlers run isolated: one
// panicking handler never blocks the others or future alerts.
type Handler func(alert Alert)

// Config bounds the alert history.
type Config struct {
	HistorySize int `json:"history_size" yaml:"history_size"`
}

func DefaultConfig() Config {
	return Config{HistorySize: 1000}
}

// Engine evaluates threshold rules against health samples and dispatches
// alerts with per-rule cooldown tracking.
type Engine struct {
	log log.Log

	mu        sc.Mutex
	rules     map[string]Rule
	lastFired map[string]time.Time
	handlers  []Handler

	history *ring.Buffer[Alert]
}

// NewEngine builds an engine preloaded with the default rules; each can
// be replaced or removed independently.
func NewEngine(cfg Config, logger log.Log) *Engine {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultConfig().HistorySize
	}
	e := &Engine{
		log:       logger,
		rules:     make(map[string]Rule),
		lastFired: make(map[string]time.Time),
		history:   ring.New[Alert](cfg.HistorySize),
	}
	for _, rule := range DefaultRules() {
		e.rules[rule.Name] = rule
	}
	return e
}

// AddRule registers a rule, replacing any existing rule with that name.
func (e *Engine) AddRule(name string, predicate Predicate, severity Severity, cooldown time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules[name] = Rule{
		Name:      name,
		Predicate: predicate,
		Severity:  severity,
		Cooldown:  cooldown,
	}
	delete(e.lastFired, name)
}

func (e *Engine) RemoveRule(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.rules[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRule, name)
	}
	delete(e.rules, name)
	delete(e.lastFired, name)
	return nil
}

func (e *Engine) RuleNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, 0, len(e.rules))
	for name := range e.rules {
		names = append(names, name)
	}
	return names
}

func (e *Engine) RegisterHandler(handler Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
}

// CheckAlerts evaluates every rule against the sample and dispatches an
// alert for each rule that fires outside its cooldown window. The fired
// alerts are also returned for callers that want them synchronously.
func (e *Engine) CheckAlerts(sample metrics.HealthSample) []Alert {
	now := time.Now()

	e.mu.Lock()
	var fired []Alert
	for name, rule := range e.rules {
		if !rule.Predicate(sample) {
			continue
		}
		if last, ok := e.lastFired[name]; ok && now.Sub(last) < rule.Cooldown {
			continue
		}
		e.lastFired[name] = now

		message := rule.Message
		if message == "" {
			message = fmt.Sprintf("alert rule %q fired", name)
		}
		fired = append(fired, Alert{
			ID:        uuid.NewString(),
			Timestamp: now,
			RuleName:  name,
			Severity:  rule.Severity,
			Sample:    sample,
			Message:   message,
		})
	}
	handlers := make([]Handler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.Unlock()

	for _, alert := range fired {
		e.history.Append(alert)
		e.log.Warn("alert fired",
			log.String("rule", alert.RuleName),
			log.String("severity", string(alert.Severity)))
		for _, handler := range handlers {
			e.dispatch(handler, alert)
		}
	}
	return fired
}

func (e *Engine) dispatch(handler Handler, alert Alert) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("alert handler panicked",
				log.String("rule", alert.RuleName),
				log.Any("panic", r))
		}
	}()
	handler(alert)
}

// History returns dispatched alerts, oldest first.
func (e *Engine) History() []Alert {
	return e.history.Snapshot()
}

// Summary describes recent alerting activity for the health report.
type Summary struct {
	TotalAlerts   int              `json:"totalAlerts"`
	ActiveRules   int              `json:"activeRules"`
	BySeverity    map[Severity]int `json:"bySeverity"`
	LastAlertTime *time.Time       `json:"lastAlertTime,omitempty"`
}

func (e *Engine) Summarize() Summary {
	alerts := e.history.Snapshot()

	summary := Summary{
		TotalAlerts: len(alerts),
		BySeverity:  make(map[Severity]int),
	}
	for _, a := range alerts {
		summary.BySeverity[a.Severity]++
	}
	if len(alerts) > 0 {
		last := alerts[len(alerts)-1].Timestamp
		summary.LastAlertTime = &last
	}

	e.mu.Lock()
	summary.ActiveRules = len(e.rules)
	e.mu.Unlock()
	return summary
}

// LogHandler returns a handler that reports alerts through the logger.
func LogHandler(logger log.Log) Handler {
	return func(alert Alert) {
		logger.Warn("replication health alert",
			log.String("rule", alert.RuleName),
			log.String("severity", string(alert.Severity)),
			log.String("message", alert.Message),
			log.Time("sampledAt", alert.Sample.Timestamp))
	}
}
