package archive

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"os"
	"time"
)

// zstdThreshold is the size at which AddFile defaults to zstd; smaller
// entries are stored raw since the frame overhead dominates.
const zstdThreshold = 128

// Writer builds a new archive file. It transitions from active to
// finalized exactly once; every operation after Finalize fails with
// ErrFinalized.
//
// Writer is not safe for concurrent use; the facade layers serialize
// access to it.
type Writer struct {
	f         *os.File
	path      string
	entries   []Entry
	offset    int64
	finalized bool
}

// Create starts a new archive at path, truncating any existing file.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	if _, err := f.Write([]byte(magic)); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("write archive header: %w", err)
	}
	return &Writer{f: f, path: path, offset: int64(len(magic))}, nil
}

// AddFile stores data under path with the default compression policy:
// zstd for entries of zstdThreshold bytes or more, raw below that.
func (w *Writer) AddFile(path string, data []byte) error {
	method := CompressionNone
	if len(data) >= zstdThreshold {
		method = CompressionZstd
	}
	return w.AddFileWithCompression(path, data, method)
}

// AddFileWithCompression stores data under path with an explicit
// compression method. Duplicate paths are rejected.
func (w *Writer) AddFileWithCompression(path string, data []byte, method Compression) error {
	return w.add(path, data, method, time.Now().Unix())
}

// AddFileFromDisk stores the contents of diskPath under archivePath,
// carrying the file's modification time into the entry.
func (w *Writer) AddFileFromDisk(archivePath, diskPath string) error {
	if w.finalized {
		return ErrFinalized
	}
	data, err := os.ReadFile(diskPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", diskPath, err)
	}
	info, err := os.Stat(diskPath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", diskPath, err)
	}

	method := CompressionNone
	if len(data) >= zstdThreshold {
		method = CompressionZstd
	}
	return w.add(archivePath, data, method, info.ModTime().Unix())
}

// AddManifest stores manifest JSON under the well-known manifest path.
// The caller validates and canonicalizes the document first.
func (w *Writer) AddManifest(manifestJSON []byte) error {
	return w.add(ManifestPath, manifestJSON, CompressionNone, time.Now().Unix())
}

func (w *Writer) add(path string, data []byte, method Compression, mtime int64) error {
	if w.finalized {
		return ErrFinalized
	}
	if path == "" {
		return fmt.Errorf("entry path cannot be empty")
	}
	for _, e := range w.entries {
		if e.Path == path {
			return fmt.Errorf("duplicate entry path: %s", path)
		}
	}

	stored, actual, err := compress(method, data)
	if err != nil {
		return fmt.Errorf("compress %s: %w", path, err)
	}

	if _, err := w.f.Write(stored); err != nil {
		return fmt.Errorf("write entry %s: %w", path, err)
	}

	w.entries = append(w.entries, Entry{
		Path:             path,
		Offset:           w.offset,
		CompressedSize:   int64(len(stored)),
		UncompressedSize: int64(len(data)),
		Compression:      actual,
		ModifiedTime:     mtime,
		CRC32:            crc32.ChecksumIEEE(data),
	})
	w.offset += int64(len(stored))
	return nil
}

// Finalize writes the index and footer and closes the file. It may be
// called exactly once; later calls (and later Add*) fail.
func (w *Writer) Finalize() error {
	if w.finalized {
		return ErrFinalized
	}
	w.finalized = true

	index, err := json.Marshal(w.entries)
	if err != nil {
		w.f.Close()
		return fmt.Errorf("marshal index: %w", err)
	}

	footer := make([]byte, footerSize)
	binary.LittleEndian.PutUint64(footer[:8], uint64(len(index)))
	copy(footer[8:], footerMagic)

	if _, err := w.f.Write(index); err != nil {
		w.f.Close()
		return fmt.Errorf("write index: %w", err)
	}
	if _, err := w.f.Write(footer); err != nil {
		w.f.Close()
		return fmt.Errorf("write footer: %w", err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}

// Finalized reports whether Finalize has run.
func (w *Writer) Finalized() bool {
	return w.finalized
}
