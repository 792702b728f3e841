package ffi

import (
	"errors"
	"sync"

	"github.com/engramdb/engram/internal/archive"
	"github.com/engramdb/engram/internal/boundary"
	"github.com/engramdb/engram/internal/vfs"
)

// ArchiveHandle is an opaque token for an open archive. The zero value
// is never issued.
type ArchiveHandle uint64

// DatabaseHandle is an opaque token for an open database connection.
// The zero value is never issued.
type DatabaseHandle uint64

var errInvalidArchiveHandle = errors.New("invalid archive handle")
var errInvalidDatabaseHandle = errors.New("invalid database handle")

// archiveState pairs the shared reader resource with the path the
// archive was opened from. Deriving a database scope uses the path,
// never the reader's in-memory state.
type archiveState struct {
	res  *boundary.Resource[*archive.Reader]
	path string
}

type databaseState struct {
	res *boundary.Resource[*vfs.Conn]
}

var archives = struct {
	mu   sync.Mutex
	next ArchiveHandle
	m    map[ArchiveHandle]*archiveState
}{m: make(map[ArchiveHandle]*archiveState)}

var databases = struct {
	mu   sync.Mutex
	next DatabaseHandle
	m    map[DatabaseHandle]*databaseState
}{m: make(map[DatabaseHandle]*databaseState)}

func insertArchive(st *archiveState) ArchiveHandle {
	archives.mu.Lock()
	defer archives.mu.Unlock()
	archives.next++
	h := archives.next
	archives.m[h] = st
	return h
}

func lookupArchive(h ArchiveHandle) (*archiveState, error) {
	archives.mu.Lock()
	defer archives.mu.Unlock()
	st, ok := archives.m[h]
	if !ok {
		return nil, errInvalidArchiveHandle
	}
	return st, nil
}

func removeArchive(h ArchiveHandle) *archiveState {
	archives.mu.Lock()
	defer archives.mu.Unlock()
	st := archives.m[h]
	delete(archives.m, h)
	return st
}

func insertDatabase(st *databaseState) DatabaseHandle {
	databases.mu.Lock()
	defer databases.mu.Unlock()
	databases.next++
	h := databases.next
	databases.m[h] = st
	return h
}

func lookupDatabase(h DatabaseHandle) (*databaseState, error) {
	databases.mu.Lock()
	defer databases.mu.Unlock()
	st, ok := databases.m[h]
	if !ok {
		return nil, errInvalidDatabaseHandle
	}
	return st, nil
}

func removeDatabase(h DatabaseHandle) *databaseState {
	databases.mu.Lock()
	defer databases.mu.Unlock()
	st := databases.m[h]
	delete(databases.m, h)
	return st
}
