package boundary

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceWith(t *testing.T) {
	res := NewResource(42, nil)

	var seen int
	err := res.With(func(v int) error {
		seen = v
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, seen)
}

func TestResourcePoisonedAfterPanic(t *testing.T) {
	res := NewResource("state", nil)

	// A panic inside With poisons the resource and propagates; Guard
	// contains it the way an entry point would.
	status, err := Guard(func() error {
		return res.With(func(string) error { panic("corrupted mid-operation") })
	})
	assert.Equal(t, StatusFault, status)
	assert.ErrorIs(t, err, ErrInternalFault)
	assert.True(t, res.Poisoned())

	// Every later access reports the poisoning as a normal failure.
	err = res.With(func(string) error { return nil })
	assert.ErrorIs(t, err, ErrPoisoned)

	// It never silently succeeds again.
	err = res.With(func(string) error { return nil })
	assert.ErrorIs(t, err, ErrPoisoned)
}

func TestResourceReleaseRunsCloserOnce(t *testing.T) {
	closed := 0
	res := NewResource(1, func(int) error {
		closed++
		return nil
	})

	require.NoError(t, res.Release())
	assert.Equal(t, 1, closed)

	assert.ErrorIs(t, res.Release(), ErrReleased)
	assert.Equal(t, 1, closed)
}

func TestResourceRetainDefersClose(t *testing.T) {
	closed := 0
	res := NewResource(1, func(int) error {
		closed++
		return nil
	})

	res.Retain()
	require.NoError(t, res.Release())
	assert.Equal(t, 0, closed, "closer must not run while references remain")

	require.NoError(t, res.Release())
	assert.Equal(t, 1, closed)
}

func TestResourceWithAfterRelease(t *testing.T) {
	res := NewResource(1, nil)
	require.NoError(t, res.Release())

	err := res.With(func(int) error { return nil })
	assert.ErrorIs(t, err, ErrReleased)
}

func TestResourceCloserError(t *testing.T) {
	wantErr := errors.New("close failed")
	res := NewResource(1, func(int) error { return wantErr })

	assert.ErrorIs(t, res.Release(), wantErr)
}

func TestResourceSerializesAccess(t *testing.T) {
	res := NewResource(&[]int{}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = res.With(func(s *[]int) error {
				// Append twice; interleaving would tear the pairs apart.
				*s = append(*s, n)
				*s = append(*s, n)
				return nil
			})
		}(i)
	}
	wg.Wait()

	var pairs [][]int
	_ = res.With(func(s *[]int) error {
		require.Len(t, *s, 16)
		for i := 0; i < len(*s); i += 2 {
			pairs = append(pairs, []int{(*s)[i], (*s)[i+1]})
		}
		return nil
	})
	for _, p := range pairs {
		assert.Equal(t, p[0], p[1], "operations must observe a total order")
	}
}
