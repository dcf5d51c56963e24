// Package worker wraps concurrently running work behind joinable handles.
// A Worker is a goroutine with an explicit Join; a Proc is a subprocess on a
// pseudo-terminal. Both satisfy hold.Resource, so hold.Own gives scoped
// join-on-exit and hold.Defer gives join-only-if-unjoined.
package worker

import "sync"

// Worker runs a function on its own goroutine and exposes the join as a
// blocking release operation.
type Worker struct {
	done chan struct{}

	mu     sync.Mutex
	joined bool

	panicked any
}

// Start launches fn on a new goroutine and returns its handle. A panic in fn
// is captured and re-raised in the goroutine that calls Join.
func Start(fn func()) *Worker {
	w := &Worker{done: make(chan struct{})}
	go func() {
		defer close(w.done)
		defer func() {
			if r := recover(); r != nil {
				w.panicked = r
			}
		}()
		fn()
	}()
	return w
}

// Join blocks until the worker's function returns, then marks the worker
// joined. If the function panicked, the first Join re-raises that panic.
func (w *Worker) Join() {
	<-w.done

	w.mu.Lock()
	first := !w.joined
	w.joined = true
	w.mu.Unlock()

	if first && w.panicked != nil {
		panic(w.panicked)
	}
}

// Joinable reports whether the worker still needs joining.
func (w *Worker) Joinable() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.joined
}

// Releasable implements hold.Resource.
func (w *Worker) Releasable() bool { return w.Joinable() }

// Release implements hold.Resource by joining the worker.
func (w *Worker) Release() error {
	w.Join()
	return nil
}
