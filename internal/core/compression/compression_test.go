package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deltasync/deltasync/internal/core/observability/log"
)

func TestSelectAlgorithm(t *testing.T) {
	tests := []struct {
		size int
		want Algorithm
	}{
		{0, AlgorithmNone},
		{500, AlgorithmNone},
		{1023, AlgorithmNone},
		{1024, AlgorithmFast},
		{5000, AlgorithmFast},
		{10239, AlgorithmFast},
		{10240, AlgorithmHighRatio},
		{50000, AlgorithmHighRatio},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SelectAlgorithm(tt.size), "size %d", tt.size)
	}
}

func TestCompressor_RoundTripAllAlgorithms(t *testing.T) {
	c := New(log.NewNop())
	payload := bytes.Repeat([]byte("sync delta payload "), 600)

	for _, algo := range []Algorithm{AlgorithmNone, AlgorithmFast, AlgorithmHighRatio} {
		t.Run(string(algo), func(t *testing.T) {
			encoded, result, err := c.Compress(payload, algo)
			require.NoError(t, err)
			assert.Equal(t, algo, result.Algorithm)
			assert.Equal(t, len(payload), result.OriginalSize)
			assert.Equal(t, len(encoded), result.CompressedSize)
			assert.GreaterOrEqual(t, result.Ratio, 1.0)
			assert.Equal(t, Checksum(payload), result.Checksum)

			decoded, err := c.Decompress(encoded, result.Algorithm)
			require.NoError(t, err)
			assert.Equal(t, payload, decoded)
		})
	}
}

func TestCompressor_NoneKeepsPayloadAndRatioOne(t *testing.T) {
	c := New(log.NewNop())
	payload := make([]byte, 500)

	encoded, result, err := c.Compress(payload, SelectAlgorithm(len(payload)))
	require.NoError(t, err)
	assert.Equal(t, AlgorithmNone, result.Algorithm)
	assert.Equal(t, 1.0, result.Ratio)
	assert.Equal(t, payload, encoded)
}

type unavailableCodec struct{}

func (unavailableCodec) Encode([]byte) ([]byte, error) { return nil, ErrNoCodecAvailable }
func (unavailableCodec) Decode([]byte) ([]byte, error) { return nil, ErrNoCodecAvailable }
func (unavailableCodec) Available() bool               { return false }

func TestCompressor_DegradesWhenCodecUnavailable(t *testing.T) {
	c := New(log.NewNop())
	c.codecs[AlgorithmFast] = unavailableCodec{}

	payload := bytes.Repeat([]byte("abcd"), 1024)
	encoded, result, err := c.Compress(payload, AlgorithmFast)
	require.NoError(t, err)

	// The result must report the codec actually used.
	assert.Equal(t, AlgorithmHighRatio, result.Algorithm)

	decoded, err := c.Decompress(encoded, result.Algorithm)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestCompressor_DegradesToIdentityWhenNothingAvailable(t *testing.T) {
	c := New(log.NewNop())
	c.codecs[AlgorithmFast] = unavailableCodec{}
	c.codecs[AlgorithmHighRatio] = unavailableCodec{}

	payload := bytes.Repeat([]byte("x"), 2048)
	encoded, result, err := c.Compress(payload, AlgorithmHighRatio)
	require.NoError(t, err)
	assert.Equal(t, AlgorithmNone, result.Algorithm)
	assert.Equal(t, 1.0, result.Ratio)
	assert.Equal(t, payload, encoded)
}

func TestCompressor_UnknownAlgorithm(t *testing.T) {
	c := New(log.NewNop())
	_, _, err := c.Compress([]byte("data"), Algorithm("lzma"))
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)

	_, err = c.Decompress([]byte("data"), Algorithm("lzma"))
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestCompressor_EmptyPayload(t *testing.T) {
	c := New(log.NewNop())
	for _, algo := range []Algorithm{AlgorithmNone, AlgorithmFast, AlgorithmHighRatio} {
		encoded, result, err := c.Compress(nil, algo)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.Ratio, 1.0)

		decoded, err := c.Decompress(encoded, result.Algorithm)
		require.NoError(t, err)
		assert.Empty(t, decoded)
	}
}
