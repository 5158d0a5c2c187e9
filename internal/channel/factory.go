//go:build !debug

package channel

// New creates the production stream: buffered, so native callbacks never
// wait on the host.
func New[T any](size int) Channel[T] {
	return NewBuffered[T](size)
}
