package archive

import (
	"errors"
	"fmt"
)

const (
	// magic opens every archive file.
	magic = "ENGRAM1\x00"

	// footerMagic closes every archive file; the 8 bytes before it hold
	// the index length as a little-endian uint64.
	footerMagic = "ENGIDX1\x00"

	// footerSize is the fixed trailer: index length + footer magic.
	footerSize = 16

	// ManifestPath is the well-known path of the manifest entry.
	ManifestPath = "manifest.json"
)

// Compression identifies a per-entry codec.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionLZ4  Compression = 1
	CompressionZstd Compression = 2
)

// String returns the wire name of the compression method.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression maps a wire name back to a Compression.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression method %q", s)
	}
}

// Entry describes one stored file. Offsets are relative to the start of
// the archive file.
type Entry struct {
	Path             string      `json:"path"`
	Offset           int64       `json:"offset"`
	CompressedSize   int64       `json:"compressedSize"`
	UncompressedSize int64       `json:"uncompressedSize"`
	Compression      Compression `json:"compression"`
	ModifiedTime     int64       `json:"modifiedTime"`
	CRC32            uint32      `json:"crc32"`
}

// ErrNotFound marks a lookup for a path the archive does not contain.
var ErrNotFound = errors.New("entry not found")

// ErrNoManifest marks an archive without a manifest entry.
var ErrNoManifest = errors.New("manifest.json not found in archive")

// ErrFinalized marks writer use after Finalize.
var ErrFinalized = errors.New("writer already finalized")
