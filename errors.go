package engram

import (
	"errors"

	"github.com/engramdb/engram/internal/archive"
	"github.com/engramdb/engram/internal/boundary"
)

// ErrInternal is returned when an operation faulted inside the core.
// The original panic is contained; no detail beyond this sentinel
// crosses the surface.
var ErrInternal = boundary.ErrInternalFault

// ErrClosed is returned when an archive or database is used after
// Close.
var ErrClosed = errors.New("handle is closed")

// ErrPoisoned is returned when the underlying resource's lock was
// poisoned by an earlier fault.
var ErrPoisoned = boundary.ErrPoisoned

// ErrFinalized is returned when a Writer is used after Finalize.
var ErrFinalized = archive.ErrFinalized

// guarded runs fn inside the fault guard and translates boundary
// sentinels into this package's vocabulary.
func guarded(fn func() error) error {
	status, err := boundary.Guard(fn)
	if status == boundary.StatusFault {
		return ErrInternal
	}
	if errors.Is(err, boundary.ErrReleased) {
		return ErrClosed
	}
	return err
}
