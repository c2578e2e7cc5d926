package conflict

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoResolver = errors.New("no resolver registered for conflict type")
)

// Record tracks one detected conflict through its lifecycle: created at
// detection, mutated exactly once at resolution, never touched again.
type Record struct {
	ID                   string     `json:"conflictId"`
	Type                 string     `json:"conflictType"`
	DetectedAt           time.Time  `json:"detectedAt"`
	ResolvedAt           *time.Time `json:"resolvedAt,omitempty"`
	ResolutionStrategy   string     `json:"resolutionStrategy,omitempty"`
	InvolvedPeers        []string   `json:"involvedPeers"`
	ResolutionDurationMs *float64   `json:"resolutionDurationMs,omitempty"`
	Success              bool       `json:"success"`
	ManualIntervention   bool       `json:"manualIntervention"`
}

// NewRecord creates a detection-time record for a conflict between peers.
func NewRecord(conflictType string, involvedPeers []string) Record {
	return Record{
		ID:            uuid.NewString(),
		Type:          conflictType,
		DetectedAt:    time.Now(),
		InvolvedPeers: involvedPeers,
	}
}

// ResolverFunc resolves one group of same-type conflicts, ordered by
// detection time. It returns the strategy applied. Resolution semantics
// belong to the replication engine; this subsystem only batches and
// dispatches.
type ResolverFunc func(ctx context.Context, records []Record) (strategy string, err error)

// Resolution is the outcome of dispatching one group to its resolver.
type Resolution struct {
	Strategy string
	Duration time.Duration
	Err      error
	// Manual marks groups nobody could resolve automatically.
	Manual bool
}
