package metrics

import (
	"time"
)

// HealthSample is one monitoring-tick snapshot of replication health.
type HealthSample struct {
	Timestamp                time.Time `json:"timestamp"`
	SyncStatus               string    `json:"syncStatus"`
	ActivePeers              int       `json:"activePeers"`
	TotalOperations          int64     `json:"totalOperations"`
	SuccessfulSyncs          int64     `json:"successfulSyncs"`
	FailedSyncs              int64     `json:"failedSyncs"`
	ConflictsDetected        int64     `json:"conflictsDetected"`
	ConflictsResolved        int64     `json:"conflictsResolved"`
	AverageSyncTimeMs        float64   `json:"averageSyncTimeMs"`
	PartitionResilience      float64   `json:"partitionResilience"`
	DataConsistencyScore     float64   `json:"dataConsistencyScore"`
	PerformanceImpactPercent float64   `json:"performanceImpactPercent"`
}

// SyncAttempt is the outcome of one completed sync attempt with a peer.
type SyncAttempt struct {
	PeerID           string    `json:"peerId"`
	DurationMs       float64   `json:"durationMs"`
	OpsSent          int       `json:"opsSent"`
	OpsReceived      int       `json:"opsReceived"`
	BandwidthBytes   int64     `json:"bandwidthBytes"`
	CompressionRatio float64   `json:"compressionRatio"`
	Success          bool      `json:"success"`
	Timestamp        time.Time `json:"timestamp"`
	Error            string    `json:"error,omitempty"`
}

// Config bounds the collector's histories.
type Config struct {
	HistorySize int `json:"history_size" yaml:"history_size"`
}

func DefaultConfig() Config {
	return Config{HistorySize: 1000}
}

// SyncTrend aggregates sync attempts over a trailing window. NoData marks
// an empty window.
type SyncTrend struct {
	WindowHours             int     `json:"windowHours"`
	TotalAttempts           int     `json:"totalAttempts"`
	SuccessRate             float64 `json:"successRate"`
	AverageDurationMs       float64 `json:"averageDurationMs"`
	TotalOpsSent            int     `json:"totalOpsSent"`
	TotalOpsReceived        int     `json:"totalOpsReceived"`
	TotalBandwidthBytes     int64   `json:"totalBandwidthBytes"`
	AverageCompressionRatio float64 `json:"averageCompressionRatio"`
	NoData                  bool    `json:"noData,omitempty"`
}

// ConflictAnalysis aggregates conflict records over a trailing window.
type ConflictAnalysis struct {
	WindowHours            int            `json:"windowHours"`
	TotalConflicts         int            `json:"totalConflicts"`
	ByType                 map[string]int `json:"byType"`
	ResolutionRate         float64        `json:"resolutionRate"`
	AverageResolutionMs    float64        `json:"averageResolutionMs"`
	ManualInterventionRate float64        `json:"manualInterventionRate"`
	NoData                 bool           `json:"noData,omitempty"`
}

// HealthScore is the composite score with its components, all in [0,100].
type HealthScore struct {
	Overall     float64 `json:"overall"`
	Sync        float64 `json:"sync"`
	Conflict    float64 `json:"conflict"`
	Performance float64 `json:"performance"`
	Consistency float64 `json:"consistency"`
}
