package hold

import "fmt"

// Owner is the sole owner of one Resource. Close releases the resource
// unconditionally and must run on every exit path:
//
//	w := worker.Start(task)
//	o, err := hold.Own(w)
//	if err != nil {
//		return err
//	}
//	defer o.Close()
//
// An Owner must not be copied; two owners for one resource could race to
// release it. go vet rejects copies, and Transfer is the only way to move
// ownership.
type Owner struct {
	noCopy noCopy
	res    Resource
}

// Own transfers ownership of r to a new Owner. It fails with
// ErrInvalidResource if r is nil or no longer releasable, leaving nothing
// behind that needs closing.
func Own(r Resource) (*Owner, error) {
	if r == nil || !r.Releasable() {
		return nil, ErrInvalidResource
	}
	return &Owner{res: r}, nil
}

// Resource returns the owned resource, or nil after Close or Transfer.
func (o *Owner) Resource() Resource {
	return o.res
}

// Transfer moves ownership to a new Owner. The receiver is left empty;
// closing it afterwards is a no-op.
func (o *Owner) Transfer() *Owner {
	n := &Owner{res: o.res}
	o.res = nil
	return n
}

// Close releases the owned resource, blocking until the release completes.
// It releases at most once across the whole ownership chain. A failed
// release at scope exit has no caller to report to and leaves the resource
// in an undefined state, so it panics.
func (o *Owner) Close() {
	r := o.res
	if r == nil {
		return
	}
	o.res = nil
	if err := r.Release(); err != nil {
		panic(fmt.Sprintf("hold: release failed during scope exit: %v", err))
	}
}
