package archive

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Shared codecs. EncodeAll/DecodeAll on these are safe for concurrent
// use; the per-resource lock above this layer serializes anyway.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil)
	if err != nil {
		panic(fmt.Sprintf("archive: init zstd encoder: %v", err))
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic(fmt.Sprintf("archive: init zstd decoder: %v", err))
	}
}

// compress encodes data with the given method. It may return a
// different method than requested: lz4 falls back to none when the
// block is incompressible, so the stored method always matches the
// stored bytes.
func compress(method Compression, data []byte) ([]byte, Compression, error) {
	switch method {
	case CompressionNone:
		return data, CompressionNone, nil

	case CompressionLZ4:
		var c lz4.Compressor
		dst := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := c.CompressBlock(data, dst)
		if err != nil {
			return nil, 0, fmt.Errorf("lz4 compress: %w", err)
		}
		if n == 0 || n >= len(data) {
			// Incompressible block; store raw.
			return data, CompressionNone, nil
		}
		return dst[:n], CompressionLZ4, nil

	case CompressionZstd:
		return zstdEncoder.EncodeAll(data, make([]byte, 0, len(data)/2)), CompressionZstd, nil

	default:
		return nil, 0, fmt.Errorf("unknown compression method %d", method)
	}
}

// decompress decodes stored bytes back to the original content.
// uncompressedSize comes from the index and bounds the output.
func decompress(method Compression, data []byte, uncompressedSize int64) ([]byte, error) {
	switch method {
	case CompressionNone:
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil

	case CompressionLZ4:
		dst := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(data, dst)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if int64(n) != uncompressedSize {
			return nil, fmt.Errorf("lz4 decompress: size mismatch: got %d, index says %d", n, uncompressedSize)
		}
		return dst, nil

	case CompressionZstd:
		out, err := zstdDecoder.DecodeAll(data, make([]byte, 0, uncompressedSize))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if int64(len(out)) != uncompressedSize {
			return nil, fmt.Errorf("zstd decompress: size mismatch: got %d, index says %d", len(out), uncompressedSize)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unknown compression method %d", method)
	}
}
