package compression

import (
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// codec is a byte-level compressor. Encode and Decode must be exact
// inverses. Available reports whether the codec can be used at runtime.
type codec interface {
	Encode(src []byte) ([]byte, error)
	Decode(src []byte) ([]byte, error)
	Available() bool
}

type noneCodec struct{}

func (noneCodec) Encode(src []byte) ([]byte, error) {
	out := make([]byte, len(src))
	copy(out, src)
	return out, nil
}

func (noneCodec) Decode(src []byte) ([]byte, error) {
	out := make([]byte, len(src))
	copy(out, src)
	return out, nil
}

func (noneCodec) Available() bool { return true }

type snappyCodec struct{}

func (snappyCodec) Encode(src []byte) ([]byte, error) {
	return snappy.Encode(nil, src), nil
}

func (snappyCodec) Decode(src []byte) ([]byte, error) {
	return snappy.Decode(nil, src)
}

func (snappyCodec) Available() bool { return true }

// zstdCodec shares one encoder/decoder pair; EncodeAll and DecodeAll are
// safe for concurrent use.
type zstdCodec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func newZstdCodec() *zstdCodec {
	c := &zstdCodec{}
	if enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression)); err == nil {
		c.encoder = enc
	}
	if dec, err := zstd.NewReader(nil); err == nil {
		c.decoder = dec
	}
	return c
}

func (c *zstdCodec) Encode(src []byte) ([]byte, error) {
	if c.encoder == nil {
		return nil, ErrNoCodecAvailable
	}
	return c.encoder.EncodeAll(src, nil), nil
}

func (c *zstdCodec) Decode(src []byte) ([]byte, error) {
	if c.decoder == nil {
		return nil, ErrNoCodecAvailable
	}
	return c.decoder.DecodeAll(src, nil)
}

func (c *zstdCodec) Available() bool {
	return c.encoder != nil && c.decoder != nil
}
