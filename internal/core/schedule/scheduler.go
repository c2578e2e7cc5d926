package schedule

import (
	"context"
	sc "sync"
	"time"

	"github.com/deltasync/deltasync/internal/core/observability/log"
	"github.com/deltasync/deltasync/pkg/sequence"
	"github.com/deltasync/deltasync/pkg/worker"
)

// LazySynchronizer defers per-peer sync attempts on adaptive intervals.
// Foreground callers record activity and schedule peers; a single poll
// loop pops due entries and invokes the sync callback. The activity map,
// scheduled set and due-time queue are the only state shared between the
// two sides and all sit behind the same mutex.
//
// Invariant: a peer has at most one queue entry. Re-scheduling an
// already-queued peer only updates its priority; the entry keeps its due
// time and the queue depth does not grow.
type LazySynchronizer struct {
	log    log.Log
	cfg    Config
	syncFn SyncFunc

	mu        sc.Mutex
	activity  map[string]int64
	scheduled map[string]Priority
	queue     *sequence.MinQueue[string]

	runner *worker.Runner
}

func NewLazySynchronizer(cfg Config, logger log.Log, syncFn SyncFunc) *LazySynchronizer {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = DefaultConfig().StopTimeout
	}
	return &LazySynchronizer{
		log:       logger,
		cfg:       cfg,
		syncFn:    syncFn,
		activity:  make(map[string]int64),
		scheduled: make(map[string]Priority),
		queue:     sequence.NewMinQueue[string](),
		runner:    worker.NewRunner("lazy-synchronizer"),
	}
}

// RecordActivity accumulates observed mutations for a peer. Counters are
// reset after the next completed sync with that peer.
func (s *LazySynchronizer) RecordActivity(peerID string, n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activity[peerID] += n
}

// ScheduleSync queues a sync attempt for the peer at its adaptive
// interval. A peer that is already queued gets its priority updated
// instead of a second entry; the pending attempt keeps its due time.
func (s *LazySynchronizer) ScheduleSync(peerID string, priority Priority) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.scheduled[peerID]; ok {
		s.scheduled[peerID] = priority
		s.log.Debug("sync already scheduled, priority updated",
			log.String("peer", peerID),
			log.String("priority", priority.String()))
		return
	}
	s.scheduled[peerID] = priority

	interval := ComputeInterval(s.activity[peerID], priority)
	due := time.Now().Add(interval)
	s.queue.Enqueue(peerID, due.UnixNano())

	s.log.Debug("sync scheduled",
		log.String("peer", peerID),
		log.String("priority", priority.String()),
		log.Duration("interval", interval))
}

// QueueDepth reports the number of pending scheduled attempts.
func (s *LazySynchronizer) QueueDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

func (s *LazySynchronizer) Start() error {
	return s.runner.Start(s.loop)
}

// Stop signals the poll loop and waits for it with a bounded timeout.
func (s *LazySynchronizer) Stop() {
	if !s.runner.Stop(s.cfg.StopTimeout) {
		s.log.Warn("scheduler loop did not stop in time, abandoning")
	}
}

func (s *LazySynchronizer) Running() bool {
	return s.runner.Running()
}

func (s *LazySynchronizer) loop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, peerID := range s.popDue(time.Now()) {
				s.runSync(ctx, peerID)
			}
		}
	}
}

// popDue removes and returns every peer whose due time has passed.
func (s *LazySynchronizer) popDue(now time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []string
	for {
		_, dueAt, ok := s.queue.Peek()
		if !ok || dueAt > now.UnixNano() {
			break
		}
		peerID, _ := s.queue.Dequeue()
		due = append(due, peerID)
	}
	return due
}

// runSync executes one attempt. On completion, success or failure, the
// peer's activity counter resets and the peer is re-queued once at its
// recomputed interval and current priority, so failed attempts retry on
// the normal cadence.
func (s *LazySynchronizer) runSync(ctx context.Context, peerID string) {
	if err := s.syncFn(ctx, peerID); err != nil {
		s.log.Warn("sync attempt failed",
			log.String("peer", peerID),
			log.Err(err))
	}

	s.mu.Lock()
	s.activity[peerID] = 0
	if priority, ok := s.scheduled[peerID]; ok {
		interval := ComputeInterval(0, priority)
		s.queue.Enqueue(peerID, time.Now().Add(interval).UnixNano())
	}
	s.mu.Unlock()
}
