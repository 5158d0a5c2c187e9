package channel

// Buffered is a buffered stream. Send blocks once the buffer fills;
// TrySend never does.
type Buffered[T any] struct {
	ch chan T
}

// NewBuffered creates a buffered stream with the given capacity.
func NewBuffered[T any](size int) *Buffered[T] {
	return &Buffered[T]{ch: make(chan T, size)}
}

// Send delivers a value, blocking while the buffer is full.
func (b *Buffered[T]) Send(v T) {
	b.ch <- v
}

// TrySend delivers a value only if buffer space is free.
func (b *Buffered[T]) TrySend(v T) bool {
	select {
	case b.ch <- v:
		return true
	default:
		return false
	}
}

// Receive returns the receive-only channel.
func (b *Buffered[T]) Receive() <-chan T {
	return b.ch
}

// Len returns the number of values waiting in the buffer.
func (b *Buffered[T]) Len() int {
	return len(b.ch)
}

// Close closes the stream.
func (b *Buffered[T]) Close() {
	close(b.ch)
}
