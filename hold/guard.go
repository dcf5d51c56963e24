package hold

import "fmt"

// Guard refers to a Resource owned elsewhere and releases it on scope exit
// only if it is still releasable. Unlike Owner it tolerates the resource
// having been released by another code path in the meantime:
//
//	w := worker.Start(task)
//	g := hold.Defer(w)
//	defer g.Close()
//	...
//	w.Join() // fine; the guard sees Releasable() == false and does nothing
//
// The releasable check and the release are not one atomic step. The guard
// adds no synchronization: callers must ensure release is not invoked
// concurrently from two places.
type Guard struct {
	noCopy noCopy
	res    Resource
}

// Defer binds a guard to r without validating it. A nil or already-released
// resource simply makes Close a no-op.
func Defer(r Resource) *Guard {
	return &Guard{res: r}
}

// Close releases the resource if it still needs releasing. Idempotent on the
// guard itself. Panics if the release fails, matching Owner.Close.
func (g *Guard) Close() {
	r := g.res
	g.res = nil
	if r == nil || !r.Releasable() {
		return
	}
	if err := r.Release(); err != nil {
		panic(fmt.Sprintf("hold: release failed during scope exit: %v", err))
	}
}
