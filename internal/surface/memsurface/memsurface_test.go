package memsurface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanshu/mapbridge/internal/model/core"
	"github.com/shanshu/mapbridge/internal/surface"
)

type recordingDelegate struct {
	loaded   int
	regions  []core.Region
	zooms    []float64
	tapped   []string
	selected []string
	points   []core.Point
}

func (d *recordingDelegate) DidFinishLoading()                { d.loaded++ }
func (d *recordingDelegate) RegionChanged(r core.Region)      { d.regions = append(d.regions, r) }
func (d *recordingDelegate) ZoomChanged(level float64)        { d.zooms = append(d.zooms, level) }
func (d *recordingDelegate) AnnotationSelected(a *surface.Annotation) {
	d.selected = append(d.selected, a.ID)
}
func (d *recordingDelegate) AnnotationTapped(a *surface.Annotation, at core.Point) {
	d.tapped = append(d.tapped, a.ID)
	d.points = append(d.points, at)
}

func ann(id string, lat, lon float64) *surface.Annotation {
	return &surface.Annotation{ID: id, Coordinate: core.Coordinate{Latitude: lat, Longitude: lon}}
}

func TestAddRemoveAnnotations(t *testing.T) {
	s := New()
	s.SetViewFactory(func(a *surface.Annotation) *surface.AnnotationView {
		return &surface.AnnotationView{ReuseID: surface.ReusePin}
	})

	a, b := ann("a", 31.2, 121.4), ann("b", 39.9, 116.4)
	s.AddAnnotations([]*surface.Annotation{a, b})

	require.Len(t, s.Annotations(), 2)
	require.NotNil(t, s.ViewFor(a))

	s.RemoveAnnotations([]*surface.Annotation{a})
	assert.Len(t, s.Annotations(), 1)
	assert.Nil(t, s.ViewFor(a))

	// The removed annotation's view went back to the reuse pool.
	recycled := s.DequeueReusableView(surface.ReusePin)
	assert.NotNil(t, recycled)
	assert.Nil(t, s.DequeueReusableView(surface.ReusePin))
}

func TestDisposeMakesMutationsNoOps(t *testing.T) {
	s := New()
	s.Dispose()

	assert.False(t, s.Live())
	s.AddAnnotations([]*surface.Annotation{ann("a", 1, 2)})
	assert.Empty(t, s.Annotations())

	s.AddOverlay(&surface.Overlay{Title: "segment-0"})
	assert.Empty(t, s.Overlays())
}

func TestDelegateCallbacks(t *testing.T) {
	s := New()
	d := &recordingDelegate{}
	s.SetDelegate(d)

	s.FinishLoading()
	s.SetZoomLevel(12, false)
	s.SetCenter(core.Coordinate{Latitude: 31.2, Longitude: 121.4}, false)

	assert.Equal(t, 1, d.loaded)
	require.Len(t, d.zooms, 1)
	assert.Equal(t, 12.0, d.zooms[0])
	require.Len(t, d.regions, 1)
	assert.Equal(t, 31.2, d.regions[0].Center.Latitude)
}

func TestZoomClamping(t *testing.T) {
	s := New()
	s.SetMinZoomLevel(5)
	s.SetMaxZoomLevel(15)

	s.SetZoomLevel(2, false)
	assert.Equal(t, 5.0, s.ZoomLevel())

	s.SetZoomLevel(20, false)
	assert.Equal(t, 15.0, s.ZoomLevel())
}

func TestTapReportsProjectedPoint(t *testing.T) {
	s := New()
	d := &recordingDelegate{}
	s.SetDelegate(d)

	center := core.Coordinate{Latitude: 31.2, Longitude: 121.4}
	s.SetRegion(core.Region{Center: center}, false)
	s.AddAnnotations([]*surface.Annotation{ann("hit", 31.2, 121.4)})

	s.Tap("hit")
	s.Tap("missing")

	require.Equal(t, []string{"hit"}, d.tapped)
	// An annotation at the region center projects to the viewport center.
	assert.InDelta(t, s.Width/2, d.points[0].X, 0.01)
	assert.InDelta(t, s.Height/2, d.points[0].Y, 0.01)
}

func TestProjectOffsetDirection(t *testing.T) {
	s := New()
	s.SetRegion(core.Region{Center: core.Coordinate{Latitude: 31.2, Longitude: 121.4}}, false)

	east := s.Project(core.Coordinate{Latitude: 31.2, Longitude: 121.5})
	north := s.Project(core.Coordinate{Latitude: 31.3, Longitude: 121.4})

	assert.Greater(t, east.X, s.Width/2)
	assert.Less(t, north.Y, s.Height/2, "north is up, so Y decreases")
}

func TestSelectAnnotation(t *testing.T) {
	s := New()
	d := &recordingDelegate{}
	s.SetDelegate(d)

	a := ann("sel", 30, 120)
	s.AddAnnotations([]*surface.Annotation{a})
	s.SelectAnnotation(a, true)

	assert.Same(t, a, s.Selected())
	assert.Equal(t, []string{"sel"}, d.selected)
}

func TestOverlayLifecycle(t *testing.T) {
	s := New()
	s.SetRendererFactory(func(o *surface.Overlay) *surface.OverlayRenderer {
		return &surface.OverlayRenderer{LineWidth: 4}
	})

	o := &surface.Overlay{Title: "segment-0"}
	s.AddOverlay(o)

	require.Len(t, s.Overlays(), 1)
	require.NotNil(t, s.RendererFor(o))

	s.RemoveOverlays([]*surface.Overlay{o})
	assert.Empty(t, s.Overlays())
	assert.Nil(t, s.RendererFor(o))
}
