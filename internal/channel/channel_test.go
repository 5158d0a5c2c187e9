package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedTrySendDropsWhenFull(t *testing.T) {
	ch := NewBuffered[int](2)

	assert.True(t, ch.TrySend(1))
	assert.True(t, ch.TrySend(2))
	assert.False(t, ch.TrySend(3), "full buffer drops instead of blocking")
	assert.Equal(t, 2, ch.Len())

	assert.Equal(t, 1, <-ch.Receive())
	assert.True(t, ch.TrySend(4), "drained space accepts again")
}

func TestBufferedCloseEndsReceive(t *testing.T) {
	ch := NewBuffered[string](1)
	ch.Send("last")
	ch.Close()

	v, ok := <-ch.Receive()
	require.True(t, ok)
	assert.Equal(t, "last", v)

	_, ok = <-ch.Receive()
	assert.False(t, ok)
}

func TestUnbufferedTrySendNeedsWaitingReceiver(t *testing.T) {
	ch := NewUnbuffered[int]()
	assert.False(t, ch.TrySend(1), "no receiver waiting")

	ready := make(chan struct{})
	got := make(chan int)
	go func() {
		close(ready)
		got <- <-ch.Receive()
	}()
	<-ready

	for !ch.TrySend(42) {
	}
	assert.Equal(t, 42, <-got)
	assert.Equal(t, 0, ch.Len())
}
