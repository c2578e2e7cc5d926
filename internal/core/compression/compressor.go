package compression

import (
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/deltasync/deltasync/internal/core/observability/log"
)

// Compressor applies the selected codec to outgoing delta payloads. When a
// codec is unavailable at runtime it degrades to the next-best available
// one and records the algorithm actually used, never the requested one.
type Compressor struct {
	log    log.Log
	codecs map[Algorithm]codec
}

func New(logger log.Log) *Compressor {
	return &Compressor{
		log: logger,
		codecs: map[Algorithm]codec{
			AlgorithmNone:      noneCodec{},
			AlgorithmFast:      snappyCodec{},
			AlgorithmHighRatio: newZstdCodec(),
		},
	}
}

// fallbackOrder lists degradation chains per requested algorithm. The
// identity codec terminates every chain, so resolution cannot fail.
var fallbackOrder = map[Algorithm][]Algorithm{
	AlgorithmNone:      {AlgorithmNone},
	AlgorithmFast:      {AlgorithmFast, AlgorithmHighRatio, AlgorithmNone},
	AlgorithmHighRatio: {AlgorithmHighRatio, AlgorithmFast, AlgorithmNone},
}

func (c *Compressor) resolve(requested Algorithm) (Algorithm, codec, error) {
	chain, ok := fallbackOrder[requested]
	if !ok {
		return "", nil, ErrUnknownAlgorithm
	}
	for _, algo := range chain {
		if cd := c.codecs[algo]; cd != nil && cd.Available() {
			if algo != requested {
				c.log.Warn("compression codec unavailable, degrading",
					log.String("requested", string(requested)),
					log.String("actual", string(algo)))
			}
			return algo, cd, nil
		}
	}
	return "", nil, ErrNoCodecAvailable
}

// Compress encodes payload with the requested algorithm (or its fallback)
// and returns the encoded bytes together with a Result describing the pass.
func (c *Compressor) Compress(payload []byte, requested Algorithm) ([]byte, Result, error) {
	algo, cd, err := c.resolve(requested)
	if err != nil {
		return nil, Result{}, err
	}

	start := time.Now()
	encoded, err := cd.Encode(payload)
	if err != nil {
		return nil, Result{}, err
	}
	elapsed := time.Since(start)

	result := Result{
		OriginalSize:   len(payload),
		CompressedSize: len(encoded),
		Ratio:          ratio(len(payload), len(encoded), algo),
		Duration:       elapsed,
		DurationMs:     float64(elapsed.Nanoseconds()) / 1e6,
		Algorithm:      algo,
		Checksum:       xxhash.Sum64(payload),
	}
	return encoded, result, nil
}

// Decompress is the exact inverse of Compress for every algorithm,
// including the identity one.
func (c *Compressor) Decompress(data []byte, algo Algorithm) ([]byte, error) {
	cd, ok := c.codecs[algo]
	if !ok {
		return nil, ErrUnknownAlgorithm
	}
	if !cd.Available() {
		return nil, ErrNoCodecAvailable
	}
	return cd.Decode(data)
}

// Checksum returns the integrity hash recorded in Result.Checksum so
// callers can verify a decompressed payload.
func Checksum(payload []byte) uint64 {
	return xxhash.Sum64(payload)
}

func ratio(original, compressed int, algo Algorithm) float64 {
	if algo == AlgorithmNone || compressed == 0 {
		return 1.0
	}
	r := float64(original) / float64(compressed)
	if r < 1.0 {
		// Incompressible payload: the codec framing can exceed the input.
		return 1.0
	}
	return r
}
