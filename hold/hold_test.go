package hold

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResource struct {
	live     bool
	releases int
	fail     bool
}

func (f *fakeResource) Releasable() bool { return f.live }

func (f *fakeResource) Release() error {
	if f.fail {
		return errors.New("release failed")
	}
	f.releases++
	f.live = false
	return nil
}

func TestOwnReleasesExactlyOnce(t *testing.T) {
	r := &fakeResource{live: true}

	o, err := Own(r)
	require.NoError(t, err)

	o.Close()
	o.Close() // second close is a no-op

	assert.Equal(t, 1, r.releases)
	assert.False(t, r.Releasable())
}

func TestOwnInvalidResource(t *testing.T) {
	o, err := Own(&fakeResource{live: false})
	require.ErrorIs(t, err, ErrInvalidResource)
	assert.Nil(t, o)

	o, err = Own(nil)
	require.ErrorIs(t, err, ErrInvalidResource)
	assert.Nil(t, o)
}

func TestOwnerTransfer(t *testing.T) {
	r := &fakeResource{live: true}

	o, err := Own(r)
	require.NoError(t, err)

	n := o.Transfer()
	assert.Nil(t, o.Resource())
	assert.Same(t, r, n.Resource())

	// The emptied owner must not release.
	o.Close()
	assert.Equal(t, 0, r.releases)

	n.Close()
	assert.Equal(t, 1, r.releases)
}

func TestOwnerCloseFailureIsFatal(t *testing.T) {
	r := &fakeResource{live: true, fail: true}
	o, err := Own(r)
	require.NoError(t, err)

	assert.Panics(t, func() { o.Close() })
}

func TestGuardReleasesLiveResource(t *testing.T) {
	r := &fakeResource{live: true}

	g := Defer(r)
	g.Close()
	g.Close()

	assert.Equal(t, 1, r.releases)
}

func TestGuardSkipsReleasedResource(t *testing.T) {
	r := &fakeResource{live: true}

	g := Defer(r)
	require.NoError(t, r.Release()) // released elsewhere before scope exit
	g.Close()

	assert.Equal(t, 1, r.releases)
}

func TestGuardNilResource(t *testing.T) {
	g := Defer(nil)
	assert.NotPanics(t, func() { g.Close() })
}

func TestGuardCloseFailureIsFatal(t *testing.T) {
	r := &fakeResource{live: true, fail: true}
	g := Defer(r)

	assert.Panics(t, func() { g.Close() })
}
