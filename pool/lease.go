package pool

import "sync"

// Lease is a temporary exclusive handle on one pooled object. The object
// goes back to the pool when the lease is released; Close makes that work
// with defer on every exit path:
//
//	l, err := p.Acquire()
//	if err != nil {
//		return err
//	}
//	defer l.Close()
//	use(l.Value())
type Lease[T any] struct {
	pool     *Pool[T]
	obj      T
	mu       sync.Mutex
	released bool
}

// Value returns the leased object. The zero value after release.
func (l *Lease[T]) Value() T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.obj
}

// Release returns the object to the pool. Safe to call more than once;
// only the first call has effect.
func (l *Lease[T]) Release() {
	l.mu.Lock()
	if l.released {
		l.mu.Unlock()
		return
	}
	l.released = true
	obj := l.obj
	var zero T
	l.obj = zero
	l.mu.Unlock()

	l.pool.put(obj)
}

// Released reports whether the lease has been returned.
func (l *Lease[T]) Released() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.released
}

// Close releases the lease. The error is always nil; it exists so a Lease
// satisfies io.Closer and reads naturally in a defer.
func (l *Lease[T]) Close() error {
	l.Release()
	return nil
}
