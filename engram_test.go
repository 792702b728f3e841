package engram

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.eng")

	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.AddFile("data/a.txt", []byte("hello")))
	require.NoError(t, w.AddFile("data/b.txt", []byte("world")))
	require.NoError(t, w.AddManifest(`{"version": 1, "name": "fixture"}`))
	require.NoError(t, w.Finalize())

	return path
}

func TestOpenReadClose(t *testing.T) {
	a, err := Open(writeFixture(t))
	require.NoError(t, err)

	n, err := a.EntryCount()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	text, err := a.ReadText("data/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	data, err := a.ReadFile("data/b.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("world"), data)

	require.NoError(t, a.Close())
}

func TestOpenNonexistent(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.eng"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open archive")
}

func TestUseAfterClose(t *testing.T) {
	a, err := Open(writeFixture(t))
	require.NoError(t, err)
	require.NoError(t, a.Close())

	_, err = a.EntryCount()
	assert.ErrorIs(t, err, ErrClosed)

	_, err = a.ReadFile("data/a.txt")
	assert.ErrorIs(t, err, ErrClosed)

	assert.ErrorIs(t, a.Close(), ErrClosed)
}

func TestListAndContains(t *testing.T) {
	a, err := Open(writeFixture(t))
	require.NoError(t, err)
	defer a.Close()

	paths, err := a.ListFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"data/a.txt", "data/b.txt", "manifest.json"}, paths)

	prefixed, err := a.ListPrefix("data/")
	require.NoError(t, err)
	assert.Equal(t, []string{"data/a.txt", "data/b.txt"}, prefixed)

	ok, err := a.Contains("data/a.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.Contains("absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMetadata(t *testing.T) {
	a, err := Open(writeFixture(t))
	require.NoError(t, err)
	defer a.Close()

	meta, err := a.Metadata("data/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "data/a.txt", meta.Path)
	assert.Equal(t, int64(5), meta.UncompressedSize)
	assert.Equal(t, "none", meta.Compression)
	assert.NotZero(t, meta.CRC32)

	_, err = a.Metadata("absent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry not found")
}

func TestManifestCanonicalized(t *testing.T) {
	a, err := Open(writeFixture(t))
	require.NoError(t, err)
	defer a.Close()

	// AddManifest stored the canonical form: sorted keys, no spaces.
	m, err := a.Manifest()
	require.NoError(t, err)
	assert.Equal(t, `{"name":"fixture","version":1}`, m)
}

func TestManifestMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.eng")
	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.AddFile("x", []byte("y")))
	require.NoError(t, w.Finalize())

	a, err := Open(path)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Manifest()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest.json not found")
}

func TestReadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "json.eng")
	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.AddFile("doc.json", []byte(`{"z": true, "a": [1.5, "x"]}`)))
	require.NoError(t, w.AddFile("bad.json", []byte("nope{")))
	require.NoError(t, w.Finalize())

	a, err := Open(path)
	require.NoError(t, err)
	defer a.Close()

	out, err := a.ReadJSON("doc.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":[1.5,"x"],"z":true}`, out)

	_, err = a.ReadJSON("bad.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestReadTextRejectsBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bin.eng")
	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.AddFile("blob", []byte{0xc3, 0x28}))
	require.NoError(t, w.Finalize())

	a, err := Open(path)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.ReadText("blob")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid UTF-8")
}

func TestWriterValidatesManifest(t *testing.T) {
	w, err := NewWriter(filepath.Join(t.TempDir(), "m.eng"))
	require.NoError(t, err)

	err = w.AddManifest(`{"version": 0}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid manifest")

	err = w.AddManifest(`not json`)
	require.Error(t, err)

	require.NoError(t, w.AddManifest(`{"version": 2}`))
	require.NoError(t, w.Finalize())
}

func TestWriterExplicitCompression(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.eng")
	w, err := NewWriter(path)
	require.NoError(t, err)

	big := make([]byte, 4096)
	for i := range big {
		big[i] = byte('a' + i%4)
	}
	require.NoError(t, w.AddFileWithCompression("z.bin", big, "zstd"))
	require.Error(t, w.AddFileWithCompression("q.bin", big, "brotli"))
	require.NoError(t, w.Finalize())

	a, err := Open(path)
	require.NoError(t, err)
	defer a.Close()

	meta, err := a.Metadata("z.bin")
	require.NoError(t, err)
	assert.Equal(t, "zstd", meta.Compression)
	assert.Less(t, meta.CompressedSize, meta.UncompressedSize)

	data, err := a.ReadFile("z.bin")
	require.NoError(t, err)
	assert.Equal(t, big, data)
}

func TestWriterAfterFinalize(t *testing.T) {
	w, err := NewWriter(filepath.Join(t.TempDir(), "f.eng"))
	require.NoError(t, err)
	require.NoError(t, w.AddFile("a", []byte("x")))
	require.NoError(t, w.Finalize())

	assert.ErrorIs(t, w.AddFile("b", []byte("y")), ErrFinalized)
	assert.ErrorIs(t, w.AddFileFromDisk("c", "d"), ErrFinalized)
	assert.ErrorIs(t, w.AddManifest(`{"version": 1}`), ErrFinalized)
	assert.ErrorIs(t, w.Finalize(), ErrFinalized)
}

func TestWriterContainsFaults(t *testing.T) {
	// A zero-value Writer has no backing file; the methods must surface
	// the misuse as ErrInternal, never as a raw panic.
	var w Writer
	assert.ErrorIs(t, w.AddFile("a", []byte("x")), ErrInternal)
	assert.ErrorIs(t, w.AddManifest(`{"version": 1}`), ErrInternal)
	assert.ErrorIs(t, w.Finalize(), ErrInternal)
}

func TestDatabaseQueryExecute(t *testing.T) {
	a, err := Open(writeFixture(t))
	require.NoError(t, err)
	defer a.Close()

	db, err := a.OpenDatabase("db/main.db")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Execute("CREATE TABLE t (name TEXT, n INTEGER)", "")
	require.NoError(t, err)

	affected, err := db.Execute("INSERT INTO t VALUES (?, ?)", `["alpha", 1]`)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	rows, err := db.Query("SELECT name, n FROM t", "")
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"alpha","n":1}]`, rows)

	_, err = db.Query("SELECT 1", "not json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse params")
}

func TestDatabaseOutlivesArchive(t *testing.T) {
	a, err := Open(writeFixture(t))
	require.NoError(t, err)

	db, err := a.OpenDatabase("scratch.db")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, a.Close())

	_, err = db.Execute("CREATE TABLE alive (ok INTEGER)", "")
	require.NoError(t, err)
}

func TestOpenDatabaseAfterArchiveClose(t *testing.T) {
	a, err := Open(writeFixture(t))
	require.NoError(t, err)
	require.NoError(t, a.Close())

	db, err := a.OpenDatabase("late.db")
	assert.Nil(t, db)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestDatabaseUseAfterClose(t *testing.T) {
	a, err := Open(writeFixture(t))
	require.NoError(t, err)
	defer a.Close()

	db, err := a.OpenDatabase("x.db")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = db.Query("SELECT 1", "")
	assert.True(t, errors.Is(err, ErrClosed))
}
