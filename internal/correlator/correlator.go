// Package correlator pairs a single callback-style completion with the
// resolve/reject pair awaiting it. It is the resumption primitive used by
// every promise-returning call into the callback-based map SDK.
package correlator

import "sync"

// Correlator holds at most one pending resolve/reject pair. Begin overwrites
// any previously registered pair without notifying it: the SDK delegates
// carry no request token, so a second request in the same category orphans
// the first caller. Callers enforce one in-flight request per category.
type Correlator[T any] struct {
	mu      sync.Mutex
	resolve func(T)
	reject  func(code, message string)
}

// New creates an idle correlator.
func New[T any]() *Correlator[T] {
	return &Correlator[T]{}
}

// Begin registers the continuation pair for the next completion.
func (c *Correlator[T]) Begin(resolve func(T), reject func(code, message string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolve = resolve
	c.reject = reject
}

// FinishSuccess delivers a value to the pending resolve continuation, if
// any, and clears both continuations. A completion with nothing pending is
// a no-op, so duplicate delegate notifications are swallowed.
func (c *Correlator[T]) FinishSuccess(value T) {
	c.mu.Lock()
	resolve := c.resolve
	c.resolve = nil
	c.reject = nil
	c.mu.Unlock()

	if resolve != nil {
		resolve(value)
	}
}

// FinishFailure delivers an error to the pending reject continuation, if
// any, and clears both continuations.
func (c *Correlator[T]) FinishFailure(code, message string) {
	c.mu.Lock()
	reject := c.reject
	c.resolve = nil
	c.reject = nil
	c.mu.Unlock()

	if reject != nil {
		reject(code, message)
	}
}

// IsPending reports whether a continuation pair is registered.
func (c *Correlator[T]) IsPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolve != nil || c.reject != nil
}
