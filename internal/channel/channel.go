// Package channel provides the generic stream primitives carrying the
// bridge's outbound traffic: native events toward the host and queued
// command settlements. Producers run on the native callback thread, so the
// write side offers a non-blocking send for drop-on-full policies.
package channel

// Receiver is the host-facing read side of a stream.
type Receiver[T any] interface {
	Receive() <-chan T
	Len() int
}

// Sender is the write side. Send blocks when the stream is full; TrySend
// reports failure instead, leaving the caller free to drop.
type Sender[T any] interface {
	Send(T)
	TrySend(T) bool
}

// Channel combines read and write access.
type Channel[T any] interface {
	Receiver[T]
	Sender[T]
	Close()
}
