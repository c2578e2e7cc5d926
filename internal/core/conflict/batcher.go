package conflict

import (
	"context"
	"fmt"
	"sort"
	sc "sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/deltasync/deltasync/internal/core/observability/log"
)

// BatcherConfig controls batch accumulation.
type BatcherConfig struct {
	BatchSize    int           `json:"batch_size" yaml:"batch_size"`
	FlushTimeout time.Duration `json:"flush_timeout" yaml:"flush_timeout"`
}

func DefaultBatcherConfig() BatcherConfig {
	return BatcherConfig{
		BatchSize:    10,
		FlushTimeout: 5 * time.Second,
	}
}

// UnmarshalYAML accepts the flush timeout in the "5s"/"500ms" form.
func (c *BatcherConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		BatchSize    int    `yaml:"batch_size"`
		FlushTimeout string `yaml:"flush_timeout"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.BatchSize > 0 {
		c.BatchSize = raw.BatchSize
	}
	if raw.FlushTimeout != "" {
		d, err := time.ParseDuration(raw.FlushTimeout)
		if err != nil {
			return fmt.Errorf("conflicts flush_timeout: %w", err)
		}
		c.FlushTimeout = d
	}
	return nil
}

// FlushFunc receives one resolved group per call: the conflict type, the
// records ordered by detection time, and the resolution outcome.
type FlushFunc func(conflictType string, records []Record, res Resolution)

// Batcher accumulates detected conflicts and flushes them as grouped
// batches, either when the batch fills or when the deadline timer fires.
// Flush is idempotent behind an empty-check, and the timer is cancelled
// under the same lock that snapshots the batch, so exactly one flush
// happens per logical batch regardless of which trigger wins. Each batch
// carries a generation number; a deadline timer that fired but lost the
// lock race to a size-triggered flush holds a stale generation and is a
// no-op, so it can never cut the following batch's timeout short.
type Batcher struct {
	log       log.Log
	cfg       BatcherConfig
	resolvers *ResolverRegistry
	onFlush   FlushFunc

	mu      sc.Mutex
	pending []Record
	timer   *time.Timer
	gen     uint64
}

func NewBatcher(cfg BatcherConfig, logger log.Log, resolvers *ResolverRegistry, onFlush FlushFunc) *Batcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatcherConfig().BatchSize
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = DefaultBatcherConfig().FlushTimeout
	}
	return &Batcher{
		log:       logger,
		cfg:       cfg,
		resolvers: resolvers,
		onFlush:   onFlush,
	}
}

// Add appends a detected conflict. The first record of a batch arms the
// one-shot deadline timer; filling the batch flushes synchronously before
// Add returns.
func (b *Batcher) Add(record Record) {
	b.mu.Lock()
	b.pending = append(b.pending, record)
	if len(b.pending) == 1 {
		gen := b.gen
		b.timer = time.AfterFunc(b.cfg.FlushTimeout, func() { b.flushGen(gen) })
	}
	full := len(b.pending) >= b.cfg.BatchSize
	b.mu.Unlock()

	if full {
		b.Flush()
	}
}

// PendingCount reports the number of unflushed conflicts.
func (b *Batcher) PendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Flush resolves everything pending. A no-op when nothing is pending, so
// the size-triggered and timeout-triggered paths cannot both process the
// same batch.
func (b *Batcher) Flush() {
	b.mu.Lock()
	if len(b.pending) == 0 {
		b.mu.Unlock()
		return
	}
	snapshot := b.takeLocked()
	b.mu.Unlock()

	b.resolve(snapshot)
}

// flushGen is the deadline timer's entry point: it flushes only the
// batch generation the timer was armed for.
func (b *Batcher) flushGen(gen uint64) {
	b.mu.Lock()
	if gen != b.gen || len(b.pending) == 0 {
		b.mu.Unlock()
		return
	}
	snapshot := b.takeLocked()
	b.mu.Unlock()

	b.resolve(snapshot)
}

// takeLocked snapshots and clears the batch, cancels the timer and
// advances the generation. Caller holds the lock.
func (b *Batcher) takeLocked() []Record {
	snapshot := b.pending
	b.pending = nil
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.gen++
	return snapshot
}

// Close flushes any remainder.
func (b *Batcher) Close() {
	b.Flush()
}

func (b *Batcher) resolve(records []Record) {
	groups := make(map[string][]Record)
	for _, r := range records {
		groups[r.Type] = append(groups[r.Type], r)
	}

	types := make([]string, 0, len(groups))
	for t := range groups {
		types = append(types, t)
	}
	sort.Strings(types)

	for _, conflictType := range types {
		group := groups[conflictType]
		sort.Slice(group, func(i, j int) bool {
			return group[i].DetectedAt.Before(group[j].DetectedAt)
		})

		res := b.resolvers.Resolve(context.Background(), conflictType, group)
		if res.Err != nil {
			b.log.Warn("conflict batch resolution failed",
				log.String("type", conflictType),
				log.Int("records", len(group)),
				log.Err(res.Err))
		} else {
			b.log.Debug("conflict batch resolved",
				log.String("type", conflictType),
				log.Int("records", len(group)),
				log.String("strategy", res.Strategy))
		}

		if b.onFlush != nil {
			b.onFlush(conflictType, group, res)
		}
	}
}
