package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type thing struct {
	n          int
	dirty      bool
	resets     int
	panicReset bool
}

func (t *thing) Reset() {
	if t.panicReset {
		panic("reset failed")
	}
	t.dirty = false
	t.resets++
}

func newTestPool(t *testing.T, capacity int) *Pool[*thing] {
	t.Helper()
	n := 0
	p, err := New(capacity, func() *thing {
		n++
		return &thing{n: n}
	})
	require.NoError(t, err)
	return p
}

func TestNewRejectsBadArgs(t *testing.T) {
	_, err := New(0, func() int { return 0 })
	assert.Error(t, err)

	_, err = New(-1, func() int { return 0 })
	assert.Error(t, err)

	_, err = New[int](3, nil)
	assert.Error(t, err)
}

func TestAcquireUntilExhausted(t *testing.T) {
	p := newTestPool(t, 2)

	l1, err := p.Acquire()
	require.NoError(t, err)
	l2, err := p.Acquire()
	require.NoError(t, err)

	assert.True(t, p.Empty())
	assert.Equal(t, 0, p.Size())

	_, err = p.Acquire()
	require.ErrorIs(t, err, ErrExhausted)

	// Returning one lease makes acquisition possible again.
	l1.Release()
	assert.Equal(t, 1, p.Size())

	l3, err := p.Acquire()
	require.NoError(t, err)
	assert.NotNil(t, l3)

	l2.Release()
	l3.Release()
	assert.Equal(t, 2, p.Size())
}

func TestReleaseRestoresSize(t *testing.T) {
	p := newTestPool(t, 3)
	before := p.Size()

	l, err := p.Acquire()
	require.NoError(t, err)
	assert.Equal(t, before-1, p.Size())

	l.Release()
	assert.Equal(t, before, p.Size())
}

func TestReleaseIsIdempotent(t *testing.T) {
	p := newTestPool(t, 1)

	l, err := p.Acquire()
	require.NoError(t, err)

	l.Release()
	l.Release()
	require.NoError(t, l.Close())

	assert.Equal(t, 1, p.Size())
	assert.True(t, l.Released())
	assert.Equal(t, uint64(1), p.Stats().Returned)
}

func TestResetHappensOnReturn(t *testing.T) {
	p := newTestPool(t, 1)

	l, err := p.Acquire()
	require.NoError(t, err)
	l.Value().dirty = true
	l.Release()

	// The next acquirer must never see the previous lease's state.
	l2, err := p.Acquire()
	require.NoError(t, err)
	assert.False(t, l2.Value().dirty)
	assert.Equal(t, 1, l2.Value().resets)
}

func TestLIFOOrder(t *testing.T) {
	p := newTestPool(t, 3)

	l1, _ := p.Acquire()
	l2, _ := p.Acquire()
	first := l1.Value()
	l2.Release()
	l1.Release()

	// Most recently returned comes back first.
	l3, err := p.Acquire()
	require.NoError(t, err)
	assert.Same(t, first, l3.Value())
}

func TestPanickingResetDiscardsObject(t *testing.T) {
	p := newTestPool(t, 2)

	l, err := p.Acquire()
	require.NoError(t, err)
	l.Value().panicReset = true

	assert.NotPanics(t, func() { l.Release() })

	// The broken object is gone; capacity is unchanged.
	assert.Equal(t, 1, p.Size())
	assert.Equal(t, 2, p.Cap())
	assert.Equal(t, uint64(1), p.Stats().Discarded)
}

type proto struct {
	label string
}

func (p *proto) Clone() *proto {
	return &proto{label: p.label}
}

func TestNewFromPrototype(t *testing.T) {
	p, err := NewFromPrototype(2, &proto{label: "base"})
	require.NoError(t, err)

	l1, err := p.Acquire()
	require.NoError(t, err)
	l2, err := p.Acquire()
	require.NoError(t, err)

	assert.Equal(t, "base", l1.Value().label)
	assert.Equal(t, "base", l2.Value().label)
	assert.NotSame(t, l1.Value(), l2.Value())
}

func TestConcurrentAcquireRelease(t *testing.T) {
	p := newTestPool(t, 4)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l, err := p.Acquire()
				if err != nil {
					continue // exhausted under contention, fine
				}
				l.Release()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 4, p.Size())
	st := p.Stats()
	assert.Equal(t, st.Acquired, st.Returned)
}
