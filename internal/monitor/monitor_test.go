package monitor

import (
	"image"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanshu/mapbridge/internal/imageloader"
	"github.com/shanshu/mapbridge/internal/model/core"
	"github.com/shanshu/mapbridge/internal/surface"
	"github.com/shanshu/mapbridge/internal/surface/memsurface"
)

func TestSample(t *testing.T) {
	cache := imageloader.NewLRUCache(1 << 20)
	cache.Add("pin", image.NewNRGBA(image.Rect(0, 0, 4, 4)))
	cache.Get("pin")
	cache.Get("missing")

	surf := memsurface.New()
	surf.SetViewFactory(func(*surface.Annotation) *surface.AnnotationView {
		return &surface.AnnotationView{}
	})
	surf.AddAnnotations([]*surface.Annotation{
		{ID: "a1", Coordinate: core.Coordinate{Latitude: 1, Longitude: 2}},
		{ID: "a2", Coordinate: core.Coordinate{Latitude: 3, Longitude: 4}},
	})

	s := NewService(Dependencies{
		Cache:   cache,
		Surface: surf,
		Backlog: func() int { return 3 },
		Logger:  zerolog.Nop(),
	})

	st := s.Sample()
	assert.Equal(t, uint64(1), st.CacheHits)
	assert.Equal(t, uint64(1), st.CacheMisses)
	assert.Equal(t, 1, st.CacheEntries)
	assert.Equal(t, int64(64), st.CacheBytes, "4x4 NRGBA")
	assert.Equal(t, 2, st.Annotations)
	assert.Equal(t, 0, st.Overlays)
	assert.Equal(t, 3, st.EventBacklog)
	assert.False(t, st.Time.IsZero())
}

func TestSampleAfterDispose(t *testing.T) {
	surf := memsurface.New()
	surf.Dispose()

	s := NewService(Dependencies{Surface: surf, Logger: zerolog.Nop()})
	st := s.Sample()
	assert.Zero(t, st.Annotations, "a dead surface is not sampled")
}

func TestStartStop(t *testing.T) {
	s := NewService(Dependencies{
		Logger:   zerolog.Nop(),
		Interval: 10 * time.Millisecond,
	})

	s.Start()
	require.Eventually(t, s.IsRunning, time.Second, 5*time.Millisecond)

	s.Start() // second start is a no-op
	s.Stop()
	require.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 5*time.Millisecond)
}
