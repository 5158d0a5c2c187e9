package searchcache

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	s, err := New(db, ttl, zerolog.Nop())
	require.NoError(t, err)
	return s
}

func TestLookupMiss(t *testing.T) {
	s := newTestStore(t, time.Hour)

	_, ok := s.Lookup("driving", "deadbeef")
	assert.False(t, ok)
}

func TestStoreAndLookup(t *testing.T) {
	s := newTestStore(t, time.Hour)

	s.Store("driving", "deadbeef", []byte(`{"success":true}`))

	payload, ok := s.Lookup("driving", "deadbeef")
	require.True(t, ok)
	assert.JSONEq(t, `{"success":true}`, string(payload))
}

func TestCategoriesAreIsolated(t *testing.T) {
	s := newTestStore(t, time.Hour)

	s.Store("driving", "samekey", []byte(`{"mode":"driving"}`))
	s.Store("walking", "samekey", []byte(`{"mode":"walking"}`))

	payload, ok := s.Lookup("walking", "samekey")
	require.True(t, ok)
	assert.JSONEq(t, `{"mode":"walking"}`, string(payload))
}

func TestUpsertReplacesPayload(t *testing.T) {
	s := newTestStore(t, time.Hour)

	s.Store("geocode", "k", []byte(`{"count":1}`))
	s.Store("geocode", "k", []byte(`{"count":2}`))

	payload, ok := s.Lookup("geocode", "k")
	require.True(t, ok)
	assert.JSONEq(t, `{"count":2}`, string(payload))

	var n int64
	require.NoError(t, s.db.Model(&CachedResponse{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestExpiredEntriesAreAbsent(t *testing.T) {
	s := newTestStore(t, time.Hour)

	s.Store("driving", "stale", []byte(`{}`))

	// Jump the clock past the TTL.
	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, ok := s.Lookup("driving", "stale")
	assert.False(t, ok)
}

func TestPrune(t *testing.T) {
	s := newTestStore(t, time.Hour)

	s.Store("driving", "stale", []byte(`{}`))
	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	s.Store("driving", "fresh", []byte(`{}`))

	removed, err := s.Prune()
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, ok := s.Lookup("driving", "fresh")
	assert.True(t, ok)
}
