package engram

import (
	"fmt"

	"github.com/engramdb/engram/internal/archive"
)

// Future is the result of an asynchronous read. Wait may be called any
// number of times from any goroutine; every call returns the same
// outcome.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) resolve(val T, err error) {
	f.val = val
	f.err = err
	close(f.done)
}

// Wait blocks until the operation completes and returns its result.
func (f *Future[T]) Wait() (T, error) {
	<-f.done
	return f.val, f.err
}

// ReadFileAsync reads the entry at path off the calling goroutine.
func (a *Archive) ReadFileAsync(path string) *Future[[]byte] {
	f := newFuture[[]byte]()
	go func() {
		data, err := a.ReadFile(path)
		f.resolve(data, err)
	}()
	return f
}

// ReadFilesAsync reads several entries off the calling goroutine. The
// results arrive in the order of paths, and all reads happen under a
// single lock acquisition, so no other operation interleaves between
// them. Any failing path fails the whole batch.
func (a *Archive) ReadFilesAsync(paths []string) *Future[[][]byte] {
	f := newFuture[[][]byte]()
	go func() {
		var contents [][]byte
		err := guarded(func() error {
			return a.res.With(func(r *archive.Reader) error {
				contents = make([][]byte, 0, len(paths))
				for _, p := range paths {
					data, err := r.ReadFile(p)
					if err != nil {
						return fmt.Errorf("failed to read file %s: %w", p, err)
					}
					contents = append(contents, data)
				}
				return nil
			})
		})
		if err != nil {
			contents = nil
		}
		f.resolve(contents, err)
	}()
	return f
}
