package engram

import (
	"fmt"

	"github.com/engramdb/engram/internal/archive"
	"github.com/engramdb/engram/internal/manifest"
	"github.com/engramdb/engram/internal/value"
)

// Writer builds a new archive. It is not safe for concurrent use; an
// archive is built by one goroutine and sealed with Finalize. Using a
// writer after Finalize returns ErrFinalized.
type Writer struct {
	w *archive.Writer
}

// NewWriter creates an archive at path, truncating any existing file.
func NewWriter(path string) (*Writer, error) {
	var w *Writer
	err := guarded(func() error {
		aw, err := archive.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create archive: %w", err)
		}
		w = &Writer{w: aw}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// AddFile adds an entry, choosing the compression method by content
// size.
func (w *Writer) AddFile(path string, data []byte) error {
	return guarded(func() error {
		return w.w.AddFile(path, data)
	})
}

// AddFileWithCompression adds an entry with an explicit compression
// method: "none", "lz4", or "zstd".
func (w *Writer) AddFileWithCompression(path string, data []byte, compression string) error {
	return guarded(func() error {
		method, err := archive.ParseCompression(compression)
		if err != nil {
			return err
		}
		return w.w.AddFileWithCompression(path, data, method)
	})
}

// AddFileFromDisk adds the file at diskPath under archivePath,
// preserving its modification time.
func (w *Writer) AddFileFromDisk(archivePath, diskPath string) error {
	return guarded(func() error {
		return w.w.AddFileFromDisk(archivePath, diskPath)
	})
}

// AddManifest validates jsonText against the manifest schema and
// stores its canonical form as the archive's manifest entry.
func (w *Writer) AddManifest(jsonText string) error {
	return guarded(func() error {
		if err := manifest.Validate([]byte(jsonText)); err != nil {
			return fmt.Errorf("invalid manifest: %w", err)
		}
		v, err := value.Parse([]byte(jsonText))
		if err != nil {
			return fmt.Errorf("invalid manifest: %w", err)
		}
		canonical, err := value.MarshalCanonical(v)
		if err != nil {
			return fmt.Errorf("failed to canonicalize manifest: %w", err)
		}
		return w.w.AddManifest(canonical)
	})
}

// Finalize writes the index and seals the archive. No entries can be
// added afterwards.
func (w *Writer) Finalize() error {
	return guarded(func() error {
		return w.w.Finalize()
	})
}
