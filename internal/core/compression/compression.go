package compression

import (
	"errors"
	"time"
)

// Algorithm identifies the codec applied to a delta payload before
// transmission.
type Algorithm string

const (
	AlgorithmNone      Algorithm = "none"
	AlgorithmFast      Algorithm = "fast"
	AlgorithmHighRatio Algorithm = "high-ratio"
)

// Size thresholds for algorithm selection, in bytes.
const (
	fastThreshold      = 1024
	highRatioThreshold = 10240
)

var (
	ErrUnknownAlgorithm = errors.New("unknown compression algorithm")
	ErrNoCodecAvailable = errors.New("no compression codec available")
)

// Result describes a single compression pass. Ratio is original size over
// compressed size and is exactly 1.0 when no codec was applied.
type Result struct {
	OriginalSize   int           `json:"originalSize"`
	CompressedSize int           `json:"compressedSize"`
	Ratio          float64       `json:"compressionRatio"`
	Duration       time.Duration `json:"-"`
	DurationMs     float64       `json:"compressionTimeMs"`
	Algorithm      Algorithm     `json:"algorithm"`
	Checksum       uint64        `json:"checksum"`
}

// SelectAlgorithm chooses a codec purely from the payload size: small
// payloads are not worth compressing, mid-sized payloads favour speed,
// large payloads favour ratio.
func SelectAlgorithm(payloadSize int) Algorithm {
	switch {
	case payloadSize < fastThreshold:
		return AlgorithmNone
	case payloadSize < highRatioThreshold:
		return AlgorithmFast
	default:
		return AlgorithmHighRatio
	}
}
