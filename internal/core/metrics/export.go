package metrics

import (
	"encoding/json"
	"time"

	"github.com/deltasync/deltasync/internal/core/conflict"
)

// Export is the dashboard export contract. Downstream consumers depend on
// this schema field-for-field; do not rename keys.
type Export struct {
	ExportTimestamp time.Time         `json:"exportTimestamp"`
	TimeRangeHours  int               `json:"timeRangeHours"`
	HealthSamples   []HealthSample    `json:"healthSamples"`
	SyncAttempts    []SyncAttempt     `json:"syncAttempts"`
	ConflictRecords []conflict.Record `json:"conflictRecords"`
	Summary         ExportSummary     `json:"summary"`
}

type ExportSummary struct {
	HealthSamples   int `json:"healthSamples"`
	SyncAttempts    int `json:"syncAttempts"`
	ConflictRecords int `json:"conflictRecords"`
}

// Export gathers everything recorded within the trailing window.
func (c *Collector) Export(windowHours int) Export {
	cutoff := time.Now().Add(-time.Duration(windowHours) * time.Hour)

	out := Export{
		ExportTimestamp: time.Now(),
		TimeRangeHours:  windowHours,
		HealthSamples:   make([]HealthSample, 0),
		SyncAttempts:    make([]SyncAttempt, 0),
		ConflictRecords: make([]conflict.Record, 0),
	}

	for _, s := range c.health.Snapshot() {
		if !s.Timestamp.Before(cutoff) {
			out.HealthSamples = append(out.HealthSamples, s)
		}
	}
	for _, a := range c.syncs.Snapshot() {
		if !a.Timestamp.Before(cutoff) {
			out.SyncAttempts = append(out.SyncAttempts, a)
		}
	}
	for _, r := range c.ConflictRecords() {
		if !r.DetectedAt.Before(cutoff) {
			out.ConflictRecords = append(out.ConflictRecords, r)
		}
	}

	out.Summary = ExportSummary{
		HealthSamples:   len(out.HealthSamples),
		SyncAttempts:    len(out.SyncAttempts),
		ConflictRecords: len(out.ConflictRecords),
	}
	return out
}

// ExportJSON renders the export contract as JSON.
func (c *Collector) ExportJSON(windowHours int) ([]byte, error) {
	return json.Marshal(c.Export(windowHours))
}
