// Package hold binds the lifetime of a releasable resource to a scope.
//
// An Owner takes sole ownership of a resource and releases it exactly once
// when the scope ends. A Guard refers to a resource it does not own and
// releases it on scope exit only if nobody else already has. Both are
// move-only: copying is rejected by go vet, and ownership moves between
// Owners only via Transfer.
package hold

import "errors"

// ErrInvalidResource is returned by Own when the supplied resource is not in
// a releasable state.
var ErrInvalidResource = errors.New("hold: resource is not releasable")

// Resource is anything with a blocking release operation. Releasable reports
// whether the resource still needs releasing; Release performs the release
// and may block until the underlying work concludes (e.g. a worker join).
type Resource interface {
	Releasable() bool
	Release() error
}

// noCopy makes go vet's copylocks check flag any copy of the embedding type.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
