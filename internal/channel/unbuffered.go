package channel

// Unbuffered is a rendezvous stream: Send blocks until a receiver takes the
// value, which surfaces slow consumers immediately in debug builds.
type Unbuffered[T any] struct {
	ch chan T
}

// NewUnbuffered creates a rendezvous stream.
func NewUnbuffered[T any]() *Unbuffered[T] {
	return &Unbuffered[T]{ch: make(chan T)}
}

// Send delivers a value, blocking until it is received.
func (u *Unbuffered[T]) Send(v T) {
	u.ch <- v
}

// TrySend delivers a value only if a receiver is already waiting.
func (u *Unbuffered[T]) TrySend(v T) bool {
	select {
	case u.ch <- v:
		return true
	default:
		return false
	}
}

// Receive returns the receive-only channel.
func (u *Unbuffered[T]) Receive() <-chan T {
	return u.ch
}

// Len always returns 0; nothing is ever waiting inside a rendezvous.
func (u *Unbuffered[T]) Len() int {
	return 0
}

// Close closes the stream.
func (u *Unbuffered[T]) Close() {
	close(u.ch)
}
