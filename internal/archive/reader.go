package archive

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"os"
	"strings"
)

// Reader provides read access to an archive. The entry index is loaded
// up front; file contents are read on demand with ReadAt, so a Reader
// holds one open file descriptor until Close.
//
// Reader methods are not individually synchronized; the boundary layer
// serializes access through its resource lock.
type Reader struct {
	f       *os.File
	path    string
	entries []Entry
	byPath  map[string]int
	paths   []string
}

// Open reads and verifies the archive at path.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	r, err := load(f, path)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

func load(f *os.File, path string) (*Reader, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}
	size := info.Size()
	if size < int64(len(magic))+footerSize {
		return nil, fmt.Errorf("corrupt archive: file too small (%d bytes)", size)
	}

	head := make([]byte, len(magic))
	if _, err := f.ReadAt(head, 0); err != nil {
		return nil, fmt.Errorf("read archive header: %w", err)
	}
	if !bytes.Equal(head, []byte(magic)) {
		return nil, fmt.Errorf("corrupt archive: bad magic")
	}

	footer := make([]byte, footerSize)
	if _, err := f.ReadAt(footer, size-footerSize); err != nil {
		return nil, fmt.Errorf("read archive footer: %w", err)
	}
	if !bytes.Equal(footer[8:], []byte(footerMagic)) {
		return nil, fmt.Errorf("corrupt archive: bad footer magic")
	}

	indexLen := int64(binary.LittleEndian.Uint64(footer[:8]))
	indexOff := size - footerSize - indexLen
	if indexLen < 0 || indexOff < int64(len(magic)) {
		return nil, fmt.Errorf("corrupt archive: index length %d out of range", indexLen)
	}

	indexData := make([]byte, indexLen)
	if _, err := f.ReadAt(indexData, indexOff); err != nil {
		return nil, fmt.Errorf("read archive index: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(indexData, &entries); err != nil {
		return nil, fmt.Errorf("corrupt archive: parse index: %w", err)
	}

	byPath := make(map[string]int, len(entries))
	paths := make([]string, len(entries))
	for i, e := range entries {
		if e.Offset < int64(len(magic)) || e.Offset+e.CompressedSize > indexOff {
			return nil, fmt.Errorf("corrupt archive: entry %s out of bounds", e.Path)
		}
		byPath[e.Path] = i
		paths[i] = e.Path
	}

	return &Reader{f: f, path: path, entries: entries, byPath: byPath, paths: paths}, nil
}

// Close releases the underlying file descriptor.
func (r *Reader) Close() error {
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}

// Path returns the archive's source path.
func (r *Reader) Path() string {
	return r.path
}

// EntryCount returns the number of entries in the archive.
func (r *Reader) EntryCount() int {
	return len(r.entries)
}

// ListFiles returns every entry path in index order.
func (r *Reader) ListFiles() []string {
	out := make([]string, len(r.paths))
	copy(out, r.paths)
	return out
}

// ListPrefix returns the entry paths starting with prefix, preserving
// their relative index order.
func (r *Reader) ListPrefix(prefix string) []string {
	var out []string
	for _, p := range r.paths {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	return out
}

// Contains reports whether the archive holds an entry at path.
func (r *Reader) Contains(path string) bool {
	_, ok := r.byPath[path]
	return ok
}

// Entry returns the index record for path.
func (r *Reader) Entry(path string) (Entry, bool) {
	i, ok := r.byPath[path]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// ReadFile decompresses and returns the content stored at path,
// verifying its CRC32 against the index.
func (r *Reader) ReadFile(path string) ([]byte, error) {
	i, ok := r.byPath[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	e := r.entries[i]

	stored := make([]byte, e.CompressedSize)
	if _, err := r.f.ReadAt(stored, e.Offset); err != nil {
		return nil, fmt.Errorf("read entry %s: %w", path, err)
	}

	data, err := decompress(e.Compression, stored, e.UncompressedSize)
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", path, err)
	}

	if sum := crc32.ChecksumIEEE(data); sum != e.CRC32 {
		return nil, fmt.Errorf("entry %s: crc mismatch: got %08x, index says %08x", path, sum, e.CRC32)
	}
	return data, nil
}

// ReadManifest returns the raw manifest bytes, or ErrNoManifest when
// the archive has no manifest entry.
func (r *Reader) ReadManifest() ([]byte, error) {
	if !r.Contains(ManifestPath) {
		return nil, ErrNoManifest
	}
	return r.ReadFile(ManifestPath)
}
