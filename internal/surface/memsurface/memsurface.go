// Package memsurface is an in-memory map surface used by tests and the demo
// CLI. It tracks annotations, views and overlays exactly as the bridge
// mutates them and projects coordinates through Web Mercator, but renders
// nothing.
package memsurface

import (
	"math"
	"sync"

	"github.com/shanshu/mapbridge/internal/geo"
	"github.com/shanshu/mapbridge/internal/model/core"
	"github.com/shanshu/mapbridge/internal/surface"
)

const mercatorWorldMeters = 40075016.685578488

// Surface implements surface.Surface in memory.
type Surface struct {
	mu sync.Mutex

	live        bool
	annotations []*surface.Annotation
	views       map[*surface.Annotation]*surface.AnnotationView
	overlays    []*surface.Overlay
	renderers   map[*surface.Overlay]*surface.OverlayRenderer
	pool        *surface.ViewPool

	viewFactory     surface.ViewFactory
	rendererFactory surface.RendererFactory
	delegate        surface.Delegate

	region           core.Region
	limitRegion      core.Region
	zoom             float64
	minZoom, maxZoom float64
	mapType          core.MapType
	language         string
	customStyle      core.CustomStyle
	showUserLocation bool
	trackingMode     core.UserTrackingMode
	selected         *surface.Annotation

	// Viewport size in screen points, used by Project.
	Width, Height float64
}

// New creates a live surface with a default viewport.
func New() *Surface {
	return &Surface{
		live:      true,
		views:     make(map[*surface.Annotation]*surface.AnnotationView),
		renderers: make(map[*surface.Overlay]*surface.OverlayRenderer),
		pool:      surface.NewViewPool(),
		zoom:      10,
		minZoom:   3,
		maxZoom:   19,
		Width:     375,
		Height:    667,
	}
}

// SetViewFactory installs the view materializer.
func (s *Surface) SetViewFactory(f surface.ViewFactory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewFactory = f
}

// SetRendererFactory installs the overlay renderer materializer.
func (s *Surface) SetRendererFactory(f surface.RendererFactory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rendererFactory = f
}

// SetDelegate installs the native-callback receiver.
func (s *Surface) SetDelegate(d surface.Delegate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delegate = d
}

// AddAnnotations adds the batch and materializes a view for each entry
// through the installed factory, as the native SDK does when annotations
// come on screen.
func (s *Surface) AddAnnotations(items []*surface.Annotation) {
	s.mu.Lock()
	if !s.live {
		s.mu.Unlock()
		return
	}
	s.annotations = append(s.annotations, items...)
	factory := s.viewFactory
	s.mu.Unlock()

	if factory == nil {
		return
	}
	for _, a := range items {
		v := factory(a)
		s.mu.Lock()
		if s.live && v != nil {
			s.views[a] = v
		}
		s.mu.Unlock()
	}
}

// RemoveAnnotations removes the batch and recycles their views.
func (s *Surface) RemoveAnnotations(items []*surface.Annotation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live {
		return
	}
	drop := make(map[*surface.Annotation]bool, len(items))
	for _, a := range items {
		drop[a] = true
	}
	kept := s.annotations[:0]
	for _, a := range s.annotations {
		if drop[a] {
			if v, ok := s.views[a]; ok {
				s.pool.Enqueue(v)
				delete(s.views, a)
			}
			if s.selected == a {
				s.selected = nil
			}
			continue
		}
		kept = append(kept, a)
	}
	s.annotations = kept
}

// Annotations returns the currently added annotations.
func (s *Surface) Annotations() []*surface.Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*surface.Annotation, len(s.annotations))
	copy(out, s.annotations)
	return out
}

// ViewFor returns the materialized view for an annotation, if any.
func (s *Surface) ViewFor(a *surface.Annotation) *surface.AnnotationView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.views[a]
}

// DequeueReusableView hands out a recycled view for the reuse identifier.
func (s *Surface) DequeueReusableView(reuseID string) *surface.AnnotationView {
	return s.pool.Dequeue(reuseID)
}

// SelectAnnotation marks an annotation selected and notifies the delegate.
func (s *Surface) SelectAnnotation(a *surface.Annotation, animated bool) {
	s.mu.Lock()
	if !s.live {
		s.mu.Unlock()
		return
	}
	s.selected = a
	d := s.delegate
	s.mu.Unlock()

	if d != nil && a != nil {
		d.AnnotationSelected(a)
	}
}

// Selected returns the currently selected annotation, if any.
func (s *Surface) Selected() *surface.Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// AddOverlay adds an overlay and immediately asks the renderer factory to
// furnish its renderer, as the native SDK does when the overlay is drawn.
func (s *Surface) AddOverlay(o *surface.Overlay) {
	s.mu.Lock()
	if !s.live {
		s.mu.Unlock()
		return
	}
	s.overlays = append(s.overlays, o)
	factory := s.rendererFactory
	s.mu.Unlock()

	if factory == nil {
		return
	}
	if r := factory(o); r != nil {
		s.mu.Lock()
		if s.live {
			s.renderers[o] = r
		}
		s.mu.Unlock()
	}
}

// RemoveOverlays removes the batch.
func (s *Surface) RemoveOverlays(items []*surface.Overlay) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live {
		return
	}
	drop := make(map[*surface.Overlay]bool, len(items))
	for _, o := range items {
		drop[o] = true
	}
	kept := s.overlays[:0]
	for _, o := range s.overlays {
		if drop[o] {
			delete(s.renderers, o)
			continue
		}
		kept = append(kept, o)
	}
	s.overlays = kept
}

// Overlays returns the currently added overlays.
func (s *Surface) Overlays() []*surface.Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*surface.Overlay, len(s.overlays))
	copy(out, s.overlays)
	return out
}

// RendererFor returns the renderer furnished for an overlay, if any.
func (s *Surface) RendererFor(o *surface.Overlay) *surface.OverlayRenderer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderers[o]
}

// SetCenter moves the region center and fires the region-changed callback.
func (s *Surface) SetCenter(c core.Coordinate, animated bool) {
	s.mu.Lock()
	if !s.live {
		s.mu.Unlock()
		return
	}
	s.region.Center = c
	region := s.region
	d := s.delegate
	s.mu.Unlock()

	if d != nil {
		d.RegionChanged(region)
	}
}

// SetRegion replaces the visible region and fires the region-changed
// callback.
func (s *Surface) SetRegion(r core.Region, animated bool) {
	s.mu.Lock()
	if !s.live {
		s.mu.Unlock()
		return
	}
	s.region = r
	d := s.delegate
	s.mu.Unlock()

	if d != nil {
		d.RegionChanged(r)
	}
}

// SetLimitRegion constrains panning.
func (s *Surface) SetLimitRegion(r core.Region) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live {
		s.limitRegion = r
	}
}

// Region returns the visible region.
func (s *Surface) Region() core.Region {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.region
}

// SetZoomLevel clamps to the min/max bounds and fires the zoom callback.
func (s *Surface) SetZoomLevel(level float64, animated bool) {
	s.mu.Lock()
	if !s.live {
		s.mu.Unlock()
		return
	}
	s.zoom = math.Min(math.Max(level, s.minZoom), s.maxZoom)
	zoom := s.zoom
	d := s.delegate
	s.mu.Unlock()

	if d != nil {
		d.ZoomChanged(zoom)
	}
}

// ZoomLevel returns the current zoom.
func (s *Surface) ZoomLevel() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom
}

// SetMinZoomLevel sets the lower zoom bound.
func (s *Surface) SetMinZoomLevel(level float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live {
		s.minZoom = level
	}
}

// SetMaxZoomLevel sets the upper zoom bound.
func (s *Surface) SetMaxZoomLevel(level float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live {
		s.maxZoom = level
	}
}

// SetMapType selects the base style.
func (s *Surface) SetMapType(t core.MapType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live {
		s.mapType = t
	}
}

// MapType returns the base style.
func (s *Surface) MapType() core.MapType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mapType
}

// SetLanguage selects the label language.
func (s *Surface) SetLanguage(lang string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live {
		s.language = lang
	}
}

// Language returns the label language.
func (s *Surface) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// SetCustomStyle applies a vendor custom style blob.
func (s *Surface) SetCustomStyle(style core.CustomStyle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live {
		s.customStyle = style
	}
}

// SetShowUserLocation toggles the user location layer.
func (s *Surface) SetShowUserLocation(show bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live {
		s.showUserLocation = show
	}
}

// SetUserTrackingMode selects how the camera follows the user.
func (s *Surface) SetUserTrackingMode(mode core.UserTrackingMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live {
		s.trackingMode = mode
	}
}

// Project converts a coordinate to screen points relative to the viewport,
// through Web Mercator at the current zoom.
func (s *Surface) Project(c core.Coordinate) core.Point {
	s.mu.Lock()
	center := s.region.Center
	zoom := s.zoom
	w, h := s.Width, s.Height
	s.mu.Unlock()

	scale := 256 * math.Exp2(zoom) / mercatorWorldMeters
	cx, cy := geo.Mercator(center)
	px, py := geo.Mercator(c)
	return core.Point{
		X: (px-cx)*scale + w/2,
		Y: (cy-py)*scale + h/2,
	}
}

// FinishLoading simulates the native map-loaded callback.
func (s *Surface) FinishLoading() {
	s.mu.Lock()
	d := s.delegate
	live := s.live
	s.mu.Unlock()
	if live && d != nil {
		d.DidFinishLoading()
	}
}

// Tap simulates a user tap on the annotation with the given identity.
func (s *Surface) Tap(id string) {
	s.mu.Lock()
	var target *surface.Annotation
	for _, a := range s.annotations {
		if a.ID == id {
			target = a
			break
		}
	}
	d := s.delegate
	live := s.live
	s.mu.Unlock()

	if !live || d == nil || target == nil {
		return
	}
	d.AnnotationTapped(target, s.Project(target.Coordinate))
}

// Live reports whether the surface is still usable.
func (s *Surface) Live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

// Dispose tears the surface down; every subsequent mutation is a no-op.
func (s *Surface) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live = false
	s.annotations = nil
	s.overlays = nil
	s.views = make(map[*surface.Annotation]*surface.AnnotationView)
	s.renderers = make(map[*surface.Overlay]*surface.OverlayRenderer)
	s.selected = nil
	s.pool.Clear()
}
