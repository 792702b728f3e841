package vfs

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engramdb/engram/internal/archive"
)

// buildArchiveWithDB packs a real SQLite database file into an archive
// and returns the archive path.
func buildArchiveWithDB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	dbFile := filepath.Join(dir, "app.db")
	db, err := sql.Open("sqlite3", dbFile)
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE kv(k TEXT, v TEXT); INSERT INTO kv VALUES ('greeting','hello')")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	dbBytes, err := os.ReadFile(dbFile)
	require.NoError(t, err)

	archPath := filepath.Join(dir, "bundle.eng")
	w, err := archive.Create(archPath)
	require.NoError(t, err)
	require.NoError(t, w.AddFile("db/app.db", dbBytes))
	require.NoError(t, w.Finalize())
	return archPath
}

func TestOpenDatabaseFromArchive(t *testing.T) {
	archPath := buildArchiveWithDB(t)

	conn, err := OpenDatabase(archPath, "db/app.db")
	require.NoError(t, err)
	defer conn.Close()

	var v string
	err = conn.DB.QueryRow("SELECT v FROM kv WHERE k = 'greeting'").Scan(&v)
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
}

func TestOpenDatabaseMissingEntryStartsEmpty(t *testing.T) {
	archPath := buildArchiveWithDB(t)

	conn, err := OpenDatabase(archPath, "scratch.db")
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.DB.Exec("CREATE TABLE t(x INTEGER)")
	require.NoError(t, err)
	_, err = conn.DB.Exec("INSERT INTO t VALUES (5)")
	require.NoError(t, err)

	var x int
	require.NoError(t, conn.DB.QueryRow("SELECT x FROM t").Scan(&x))
	assert.Equal(t, 5, x)
}

func TestOpenDatabaseBadArchivePath(t *testing.T) {
	_, err := OpenDatabase(filepath.Join(t.TempDir(), "missing.eng"), "app.db")
	assert.ErrorContains(t, err, "failed to open database")
}

func TestConnectionIndependentOfArchive(t *testing.T) {
	// The scope is derived from the archive's path at open time; the
	// connection keeps working without any live archive reader.
	archPath := buildArchiveWithDB(t)

	conn, err := OpenDatabase(archPath, "db/app.db")
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, os.Remove(archPath))

	var n int
	require.NoError(t, conn.DB.QueryRow("SELECT count(*) FROM kv").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestCloseRemovesInstanceDir(t *testing.T) {
	archPath := buildArchiveWithDB(t)

	conn, err := OpenDatabase(archPath, "db/app.db")
	require.NoError(t, err)

	dir := conn.dir
	_, err = os.Stat(dir)
	require.NoError(t, err)

	require.NoError(t, conn.Close())
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}
