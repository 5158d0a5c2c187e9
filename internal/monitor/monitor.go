// Package monitor periodically samples bridge runtime stats and ships
// them to InfluxDB.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/shanshu/mapbridge/internal/imageloader"
	"github.com/shanshu/mapbridge/internal/influx"
	"github.com/shanshu/mapbridge/internal/surface"
)

// Dependencies holds everything the monitor samples and writes to.
type Dependencies struct {
	Cache    *imageloader.LRUCache
	Surface  surface.Surface
	Backlog  func() int // outbound events waiting to be drained
	Influx   *influx.Manager
	Logger   zerolog.Logger
	Interval time.Duration
}

// Service runs the sampling loop.
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
}

// NewService creates a monitor service. Interval defaults to one second.
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = time.Second
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning reports whether the sampling loop is active.
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Sample captures the current bridge stats.
func (s *Service) Sample() Stats {
	st := Stats{Time: time.Now()}

	if s.deps.Cache != nil {
		cs := s.deps.Cache.Stats()
		st.CacheHits = cs.Hits
		st.CacheMisses = cs.Misses
		st.CacheBytes = cs.Bytes
		st.CacheEntries = cs.Entries
	}
	if s.deps.Surface != nil && s.deps.Surface.Live() {
		st.Annotations = len(s.deps.Surface.Annotations())
		st.Overlays = len(s.deps.Surface.Overlays())
		st.ZoomLevel = s.deps.Surface.ZoomLevel()
	}
	if s.deps.Backlog != nil {
		st.EventBacklog = s.deps.Backlog()
	}
	return st
}

// Stats is one monitoring sample.
type Stats struct {
	Time         time.Time
	CacheHits    uint64
	CacheMisses  uint64
	CacheBytes   int64
	CacheEntries int
	Annotations  int
	Overlays     int
	ZoomLevel    float64
	EventBacklog int
}

func (s *Service) write(st Stats) {
	if s.deps.Influx == nil {
		return
	}
	point := influx.NewPoint(
		"bridge_status",
		nil,
		map[string]any{
			"cache_hits":    st.CacheHits,
			"cache_misses":  st.CacheMisses,
			"cache_bytes":   st.CacheBytes,
			"cache_entries": st.CacheEntries,
			"annotations":   st.Annotations,
			"overlays":      st.Overlays,
			"zoom_level":    st.ZoomLevel,
			"event_backlog": st.EventBacklog,
		},
		st.Time,
	)
	if err := s.deps.Influx.WritePoint(context.Background(), influx.BucketBridgeStats, point); err != nil {
		s.deps.Logger.Error().Err(err).Msg("Error writing bridge stats")
	}
}

// Start launches the sampling goroutine. Starting a running service is a
// no-op.
func (s *Service) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		s.deps.Logger.Debug().Msg("Starting bridge status monitor")
		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.write(s.Sample())
			}
		}
	}()
}

// Stop halts the sampling loop.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		close(s.stopChan)
	}
}
