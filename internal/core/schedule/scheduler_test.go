package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deltasync/deltasync/internal/core/observability/log"
)

func TestComputeInterval(t *testing.T) {
	tests := []struct {
		name     string
		activity int64
		priority Priority
		want     time.Duration
	}{
		{"idle normal doubles", 0, PriorityNormal, 120 * time.Second},
		{"idle low doubles twice", 0, PriorityLow, 240 * time.Second},
		{"moderate activity halves", 50, PriorityNormal, 30 * time.Second},
		{"hot peer quarters", 200, PriorityNormal, 15 * time.Second},
		{"hot critical peer", 200, PriorityCritical, 1500 * time.Millisecond},
		{"steady activity keeps base", 7, PriorityNormal, 60 * time.Second},
		{"high priority halves base", 7, PriorityHigh, 30 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeInterval(tt.activity, tt.priority))
		})
	}
}

func TestComputeInterval_AlwaysWithinBounds(t *testing.T) {
	activities := []int64{-10, 0, 1, 4, 5, 10, 11, 100, 101, 1 << 40}
	priorities := []Priority{PriorityCritical, PriorityHigh, PriorityNormal, PriorityLow}

	for _, a := range activities {
		for _, p := range priorities {
			got := ComputeInterval(a, p)
			assert.GreaterOrEqual(t, got, time.Second, "activity=%d priority=%s", a, p)
			assert.LessOrEqual(t, got, time.Hour, "activity=%d priority=%s", a, p)
		}
	}
}

func TestLazySynchronizer_ScheduleAndPopDue(t *testing.T) {
	s := NewLazySynchronizer(DefaultConfig(), log.NewNop(), func(context.Context, string) error {
		return nil
	})

	s.RecordActivity("peer-a", 200)
	s.ScheduleSync("peer-a", PriorityCritical)
	s.ScheduleSync("peer-b", PriorityLow)
	assert.Equal(t, 2, s.QueueDepth())

	// Nothing is due yet.
	assert.Empty(t, s.popDue(time.Now()))
	assert.Equal(t, 2, s.QueueDepth())

	// Far in the future everything is due, hot critical peer first.
	due := s.popDue(time.Now().Add(2 * time.Hour))
	require.Len(t, due, 2)
	assert.Equal(t, "peer-a", due[0])
	assert.Equal(t, "peer-b", due[1])
	assert.Equal(t, 0, s.QueueDepth())
}

func TestLazySynchronizer_RescheduleSamePeerKeepsOneEntry(t *testing.T) {
	s := NewLazySynchronizer(DefaultConfig(), log.NewNop(), func(context.Context, string) error {
		return nil
	})

	s.RecordActivity("peer-a", 200)
	for i := 0; i < 5; i++ {
		s.ScheduleSync("peer-a", PriorityCritical)
	}
	assert.Equal(t, 1, s.QueueDepth())

	// Re-scheduling only updates the priority of the pending attempt.
	s.ScheduleSync("peer-a", PriorityLow)
	assert.Equal(t, 1, s.QueueDepth())
	s.mu.Lock()
	assert.Equal(t, PriorityLow, s.scheduled["peer-a"])
	s.mu.Unlock()

	// A full pop/run cycle re-queues the peer exactly once.
	due := s.popDue(time.Now().Add(2 * time.Hour))
	require.Len(t, due, 1)
	s.runSync(context.Background(), due[0])
	assert.Equal(t, 1, s.QueueDepth())
}

func TestLazySynchronizer_LoopInvokesCallbackAndResetsActivity(t *testing.T) {
	var calls atomic.Int64
	cfg := Config{PollInterval: 50 * time.Millisecond, StopTimeout: time.Second}
	s := NewLazySynchronizer(cfg, log.NewNop(), func(_ context.Context, peerID string) error {
		calls.Add(1)
		return nil
	})

	s.RecordActivity("peer-a", 500)
	s.ScheduleSync("peer-a", PriorityCritical) // 1.5s interval at this activity

	require.NoError(t, s.Start())
	defer s.Stop()
	assert.True(t, s.Running())

	require.Eventually(t, func() bool {
		return calls.Load() >= 1
	}, 5*time.Second, 50*time.Millisecond)

	s.mu.Lock()
	activity := s.activity["peer-a"]
	depth := s.queue.Len()
	s.mu.Unlock()

	assert.Equal(t, int64(0), activity)
	// The peer was rescheduled after completion.
	assert.GreaterOrEqual(t, depth, 1)
}

func TestLazySynchronizer_FailedSyncStillReschedules(t *testing.T) {
	var calls atomic.Int64
	cfg := Config{PollInterval: 20 * time.Millisecond, StopTimeout: time.Second}
	s := NewLazySynchronizer(cfg, log.NewNop(), func(context.Context, string) error {
		calls.Add(1)
		return assert.AnError
	})

	s.RecordActivity("peer-a", 500)
	s.ScheduleSync("peer-a", PriorityCritical)

	require.NoError(t, s.Start())
	defer s.Stop()

	require.Eventually(t, func() bool {
		return calls.Load() >= 1
	}, 5*time.Second, 20*time.Millisecond)

	assert.GreaterOrEqual(t, s.QueueDepth(), 1)
}
