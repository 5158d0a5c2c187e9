//go:build debug

package channel

// New creates the debug stream: unbuffered, ignoring size, so a host that
// stops draining is caught as dropped sends instead of hidden backlog.
func New[T any](size int) Channel[T] {
	return NewUnbuffered[T]()
}
