package correlator

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelator_SuccessDeliveredOnce(t *testing.T) {
	c := New[int]()

	var got []int
	c.Begin(
		func(v int) { got = append(got, v) },
		func(code, message string) { t.Fatalf("unexpected reject: %s %s", code, message) },
	)

	c.FinishSuccess(42)
	c.FinishSuccess(99)
	c.FinishFailure("1", "late failure")

	require.Len(t, got, 1, "only the first completion may be observed")
	assert.Equal(t, 42, got[0])
}

func TestCorrelator_FailureDeliveredOnce(t *testing.T) {
	c := New[string]()

	var codes []string
	c.Begin(
		func(string) { t.Fatal("unexpected resolve") },
		func(code, message string) { codes = append(codes, code) },
	)

	c.FinishFailure("E_TEST", "boom")
	c.FinishFailure("E_TEST", "boom again")
	c.FinishSuccess("late value")

	require.Len(t, codes, 1)
	assert.Equal(t, "E_TEST", codes[0])
}

func TestCorrelator_FinishWithoutBeginIsNoOp(t *testing.T) {
	c := New[int]()

	assert.NotPanics(t, func() {
		c.FinishSuccess(1)
		c.FinishFailure("1", "nothing pending")
	})
	assert.False(t, c.IsPending())
}

func TestCorrelator_BeginOverwritesPendingPair(t *testing.T) {
	c := New[int]()

	firstResolved := false
	c.Begin(func(int) { firstResolved = true }, func(string, string) {})

	var second []int
	c.Begin(func(v int) { second = append(second, v) }, func(string, string) {})

	c.FinishSuccess(7)

	// The first caller is orphaned, never notified.
	assert.False(t, firstResolved)
	require.Len(t, second, 1)
	assert.Equal(t, 7, second[0])
}

func TestCorrelator_IsPending(t *testing.T) {
	c := New[int]()
	assert.False(t, c.IsPending())

	c.Begin(func(int) {}, func(string, string) {})
	assert.True(t, c.IsPending())

	c.FinishSuccess(0)
	assert.False(t, c.IsPending())
}

func TestCorrelator_ConcurrentFinishSettlesExactlyOnce(t *testing.T) {
	c := New[int]()

	var mu sync.Mutex
	settled := 0
	c.Begin(
		func(int) { mu.Lock(); settled++; mu.Unlock() },
		func(string, string) { mu.Lock(); settled++; mu.Unlock() },
	)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); c.FinishSuccess(1) }()
		go func() { defer wg.Done(); c.FinishFailure("1", "race") }()
	}
	wg.Wait()

	assert.Equal(t, 1, settled)
}
