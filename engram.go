// Package engram reads .eng archives: read-only compressed bundles of
// files, an optional JSON manifest, and optionally an embedded SQLite
// database.
//
// Archive and Database values are safe for concurrent use. Operations
// on one value are serialized; a panic inside the core never escapes a
// method, it surfaces as ErrInternal and poisons the value so later
// calls report ErrPoisoned instead of reading torn state.
//
// For a flat, handle-based presentation of the same operations (the
// shape a foreign binding layer wants) see the ffi package.
package engram

import (
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/engramdb/engram/internal/archive"
	"github.com/engramdb/engram/internal/boundary"
	"github.com/engramdb/engram/internal/value"
	"github.com/engramdb/engram/internal/vfs"
)

// EntryMetadata describes one archive entry.
type EntryMetadata struct {
	Path             string
	UncompressedSize int64
	CompressedSize   int64
	Compression      string
	ModifiedTime     int64
	CRC32            uint32
}

// Archive is an open read-only archive.
type Archive struct {
	res  *boundary.Resource[*archive.Reader]
	path string
}

// Open opens the archive at path.
func Open(path string) (*Archive, error) {
	var a *Archive
	err := guarded(func() error {
		r, err := archive.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		a = &Archive{
			res:  boundary.NewResource(r, func(r *archive.Reader) error { return r.Close() }),
			path: path,
		}
		Logger().Debug("archive opened", zap.String("path", path))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Close releases the archive. Open databases derived from it keep
// working. Closing twice returns ErrClosed.
func (a *Archive) Close() error {
	return guarded(func() error {
		return a.res.Release()
	})
}

// EntryCount returns the number of entries.
func (a *Archive) EntryCount() (int, error) {
	var n int
	err := guarded(func() error {
		return a.res.With(func(r *archive.Reader) error {
			n = r.EntryCount()
			return nil
		})
	})
	return n, err
}

// Contains reports whether the archive holds an entry at path.
func (a *Archive) Contains(path string) (bool, error) {
	var ok bool
	err := guarded(func() error {
		return a.res.With(func(r *archive.Reader) error {
			ok = r.Contains(path)
			return nil
		})
	})
	return ok, err
}

// ListFiles returns every entry path in index order.
func (a *Archive) ListFiles() ([]string, error) {
	var paths []string
	err := guarded(func() error {
		return a.res.With(func(r *archive.Reader) error {
			paths = r.ListFiles()
			return nil
		})
	})
	return paths, err
}

// ListPrefix returns the entry paths starting with prefix, preserving
// their relative order.
func (a *Archive) ListPrefix(prefix string) ([]string, error) {
	var paths []string
	err := guarded(func() error {
		return a.res.With(func(r *archive.Reader) error {
			paths = r.ListPrefix(prefix)
			return nil
		})
	})
	return paths, err
}

// Metadata returns the metadata of the entry at path.
func (a *Archive) Metadata(path string) (*EntryMetadata, error) {
	var meta *EntryMetadata
	err := guarded(func() error {
		return a.res.With(func(r *archive.Reader) error {
			e, ok := r.Entry(path)
			if !ok {
				return fmt.Errorf("entry not found: %s", path)
			}
			meta = &EntryMetadata{
				Path:             e.Path,
				UncompressedSize: e.UncompressedSize,
				CompressedSize:   e.CompressedSize,
				Compression:      e.Compression.String(),
				ModifiedTime:     e.ModifiedTime,
				CRC32:            e.CRC32,
			}
			return nil
		})
	})
	return meta, err
}

// ReadFile returns the content of the entry at path.
func (a *Archive) ReadFile(path string) ([]byte, error) {
	var data []byte
	err := guarded(func() error {
		return a.res.With(func(r *archive.Reader) error {
			var err error
			data, err = r.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			return nil
		})
	})
	return data, err
}

// ReadText returns the content of the entry at path as text. The
// content must be valid UTF-8.
func (a *Archive) ReadText(path string) (string, error) {
	data, err := a.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("entry %s is not valid UTF-8 text", path)
	}
	return string(data), nil
}

// ReadJSON parses the entry at path as JSON and returns its
// re-serialization with sorted object keys.
func (a *Archive) ReadJSON(path string) (string, error) {
	data, err := a.ReadFile(path)
	if err != nil {
		return "", err
	}
	v, err := value.Parse(data)
	if err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}
	text, err := value.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to serialize JSON: %w", err)
	}
	return string(text), nil
}

// Manifest returns the archive's manifest as re-serialized JSON text.
// An archive without a manifest entry is an error.
func (a *Archive) Manifest() (string, error) {
	var raw []byte
	err := guarded(func() error {
		return a.res.With(func(r *archive.Reader) error {
			var err error
			raw, err = r.ReadManifest()
			if err != nil {
				return fmt.Errorf("failed to read manifest: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return "", err
	}
	v, err := value.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid manifest JSON: %w", err)
	}
	text, err := value.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to serialize manifest: %w", err)
	}
	return string(text), nil
}

// OpenDatabase opens the database entry at dbPath within this
// archive's scope. A dbPath the archive does not contain starts empty.
// The returned Database does not depend on the archive staying open.
func (a *Archive) OpenDatabase(dbPath string) (*Database, error) {
	var d *Database
	err := guarded(func() error {
		// The scope derives from the path, but opening through a closed
		// archive is still a misuse; the lock check rejects it.
		return a.res.With(func(*archive.Reader) error {
			conn, err := vfs.OpenDatabase(a.path, dbPath)
			if err != nil {
				return err
			}
			d = &Database{
				res: boundary.NewResource(conn, func(c *vfs.Conn) error { return c.Close() }),
			}
			Logger().Debug("database opened", zap.String("path", dbPath))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}
