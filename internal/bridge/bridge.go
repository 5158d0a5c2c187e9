// Package bridge ties the map surface, the reconcilers and the search
// stack together behind one handle. Prop updates fan out to the
// reconcilers, imperative calls go straight to the surface, and native
// callbacks come back out as typed events on a buffered channel.
package bridge

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/shanshu/mapbridge/internal/annotation"
	"github.com/shanshu/mapbridge/internal/channel"
	"github.com/shanshu/mapbridge/internal/imageloader"
	"github.com/shanshu/mapbridge/internal/location"
	"github.com/shanshu/mapbridge/internal/marker"
	"github.com/shanshu/mapbridge/internal/model/core"
	"github.com/shanshu/mapbridge/internal/polyline"
	"github.com/shanshu/mapbridge/internal/search"
	"github.com/shanshu/mapbridge/internal/surface"
)

// Outbound event names, matching the host-side callback vocabulary.
const (
	EventLoad             = "onLoad"
	EventZoom             = "onZoom"
	EventRegionChanged    = "onRegionChanged"
	EventTapMarker        = "onTapMarker"
	EventSelectAnnotation = "onSelectAnnotation"
)

const eventBufferSize = 64

// Event is one outbound native callback. Payload holds the event's typed
// payload struct.
type Event struct {
	Name      string
	Payload   any
	Timestamp time.Time
}

// LoadPayload accompanies EventLoad.
type LoadPayload struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ZoomPayload accompanies EventZoom.
type ZoomPayload struct {
	ZoomLevel float64 `json:"zoomLevel"`
}

// RegionPayload accompanies EventRegionChanged.
type RegionPayload struct {
	Center core.Coordinate `json:"center"`
	Span   core.RegionSpan `json:"span"`
}

// TapMarkerPayload accompanies EventTapMarker. Point is the tap location
// projected into the surface's screen space.
type TapMarkerPayload struct {
	ID    string     `json:"id"`
	Point core.Point `json:"point"`
}

// SelectAnnotationPayload accompanies EventSelectAnnotation.
type SelectAnnotationPayload struct {
	ID string `json:"id"`
}

// Bridge owns one map surface and everything mounted on it.
type Bridge struct {
	surf        surface.Surface
	markers     *marker.Reconciler
	annotations *annotation.Reconciler
	polylines   *polyline.Reconciler
	searches    *search.Coordinator
	locations   *location.Manager
	log         zerolog.Logger

	events channel.Channel[Event]

	initialRegionApplied bool
}

// New mounts the three reconcilers on the surface and installs the bridge
// as its delegate and composite view factory. searches and locations may be
// nil; the corresponding calls then reject immediately.
func New(surf surface.Surface, loader *imageloader.Loader, searches *search.Coordinator, locations *location.Manager, log zerolog.Logger) *Bridge {
	b := &Bridge{
		surf:      surf,
		searches:  searches,
		locations: locations,
		log:       log,
		events:    channel.New[Event](eventBufferSize),
	}

	// Each reconciler installs its own factory on construction; the
	// composite installed afterwards dispatches between them.
	b.markers = marker.New(surf, loader, log)
	b.annotations = annotation.New(surf, loader, log)
	b.polylines = polyline.New(surf, loader, log)

	surf.SetViewFactory(b.materializeView)
	surf.SetDelegate(b)
	return b
}

// Events is the outbound event stream. Hosts drain it; when the buffer
// fills, further events are dropped.
func (b *Bridge) Events() channel.Receiver[Event] {
	return b.events
}

// materializeView routes view furnishing to whichever reconciler owns the
// annotation. Marker handles carry richer per-marker styling; everything
// else is an annotation rendered from its style template.
func (b *Bridge) materializeView(a *surface.Annotation) *surface.AnnotationView {
	if _, ok := b.markers.Owns(a); ok {
		return b.markers.MaterializeView(a)
	}
	return b.annotations.MaterializeView(a)
}

// Prop fan-out.

func (b *Bridge) SetMarkers(ctx context.Context, markers []core.Marker) {
	b.markers.SetMarkers(ctx, markers)
}

func (b *Bridge) SetAnnotationStyles(ctx context.Context, styles []core.AnnotationStyle) {
	b.annotations.SetStyles(ctx, styles)
}

func (b *Bridge) SetAnnotations(annotations []core.Annotation) {
	b.annotations.SetAnnotations(annotations)
}

func (b *Bridge) SetSelectedAnnotationID(id string) {
	b.annotations.SetSelectedAnnotationID(id)
}

func (b *Bridge) SetPolylines(ctx context.Context, polylines []core.Polyline) {
	b.polylines.SetPolylines(ctx, polylines)
}

// SetInitialRegion applies the region exactly once; later calls are
// ignored so a re-render cannot snap the camera back.
func (b *Bridge) SetInitialRegion(r core.Region) {
	if b.initialRegionApplied {
		return
	}
	b.initialRegionApplied = true
	b.surf.SetRegion(r, false)
}

func (b *Bridge) SetRegion(r core.Region, animated bool) {
	b.surf.SetRegion(r, animated)
}

func (b *Bridge) SetLimitRegion(r core.Region) {
	b.surf.SetLimitRegion(r)
}

func (b *Bridge) SetCenter(c core.Coordinate, animated bool) {
	b.surf.SetCenter(c, animated)
}

func (b *Bridge) SetZoomLevel(level float64, animated bool) {
	b.surf.SetZoomLevel(level, animated)
}

func (b *Bridge) SetMinZoomLevel(level float64) {
	b.surf.SetMinZoomLevel(level)
}

func (b *Bridge) SetMaxZoomLevel(level float64) {
	b.surf.SetMaxZoomLevel(level)
}

func (b *Bridge) SetMapType(t core.MapType) {
	b.surf.SetMapType(t)
}

func (b *Bridge) SetLanguage(lang string) {
	b.surf.SetLanguage(lang)
}

func (b *Bridge) SetCustomStyle(s core.CustomStyle) {
	b.surf.SetCustomStyle(s)
}

func (b *Bridge) SetShowUserLocation(show bool) {
	b.surf.SetShowUserLocation(show)
}

func (b *Bridge) SetUserTrackingMode(mode core.UserTrackingMode) {
	b.surf.SetUserTrackingMode(mode)
}

// RequestLocation asks the platform location manager for a single fix.
func (b *Bridge) RequestLocation(resolve func(core.Location), reject func(code, message string)) {
	if b.locations == nil {
		reject(location.CodeManagerNotInitialized, "location manager not configured")
		return
	}
	b.locations.RequestLocation(resolve, reject)
}

// Search delegation. A bridge built without a coordinator rejects every
// search with the fixed not-initialized code.

func (b *Bridge) searchReady(reject func(code, message string)) bool {
	if b.searches == nil {
		reject(search.CodeDelegateNotInitialized, "search coordinator not configured")
		return false
	}
	return true
}

func (b *Bridge) SearchInputTips(opts core.InputTipsOptions, resolve func(core.InputTipsResult), reject func(code, message string)) {
	if b.searchReady(reject) {
		b.searches.SearchInputTips(opts, resolve, reject)
	}
}

func (b *Bridge) SearchGeocode(opts core.GeocodeOptions, resolve func(core.GeocodeResult), reject func(code, message string)) {
	if b.searchReady(reject) {
		b.searches.SearchGeocode(opts, resolve, reject)
	}
}

func (b *Bridge) SearchReGeocode(opts core.ReGeocodeOptions, resolve func(core.ReGeocodeResult), reject func(code, message string)) {
	if b.searchReady(reject) {
		b.searches.SearchReGeocode(opts, resolve, reject)
	}
}

func (b *Bridge) SearchDrivingRoute(opts core.DrivingRouteOptions, resolve func(core.RouteResult), reject func(code, message string)) {
	if b.searchReady(reject) {
		b.searches.SearchDrivingRoute(opts, resolve, reject)
	}
}

func (b *Bridge) SearchWalkingRoute(opts core.WalkingRouteOptions, resolve func(core.RouteResult), reject func(code, message string)) {
	if b.searchReady(reject) {
		b.searches.SearchWalkingRoute(opts, resolve, reject)
	}
}

func (b *Bridge) SearchRidingRoute(opts core.RidingRouteOptions, resolve func(core.RouteResult), reject func(code, message string)) {
	if b.searchReady(reject) {
		b.searches.SearchRidingRoute(opts, resolve, reject)
	}
}

func (b *Bridge) SearchTransitRoute(opts core.TransitRouteOptions, resolve func(core.RouteResult), reject func(code, message string)) {
	if b.searchReady(reject) {
		b.searches.SearchTransitRoute(opts, resolve, reject)
	}
}

// Native delegate callbacks.

func (b *Bridge) DidFinishLoading() {
	b.emit(EventLoad, LoadPayload{Message: "loaded", Timestamp: time.Now()})
}

func (b *Bridge) RegionChanged(region core.Region) {
	b.emit(EventRegionChanged, RegionPayload{Center: region.Center, Span: region.Span})
}

func (b *Bridge) ZoomChanged(level float64) {
	b.emit(EventZoom, ZoomPayload{ZoomLevel: level})
}

func (b *Bridge) AnnotationTapped(a *surface.Annotation, at core.Point) {
	id, ok := b.markers.Owns(a)
	if !ok {
		return
	}
	b.emit(EventTapMarker, TapMarkerPayload{ID: id, Point: at})
}

func (b *Bridge) AnnotationSelected(a *surface.Annotation) {
	if a == nil {
		return
	}
	b.emit(EventSelectAnnotation, SelectAnnotationPayload{ID: a.ID})
}

func (b *Bridge) emit(name string, payload any) {
	if !b.events.TrySend(Event{Name: name, Payload: payload, Timestamp: time.Now()}) {
		b.log.Warn().Str("event", name).Msg("event buffer full, dropping")
	}
}

// Wait blocks until every in-flight asynchronous resolution has settled.
func (b *Bridge) Wait() {
	b.markers.Wait()
	b.annotations.Wait()
	b.polylines.Wait()
}

// Dispose tears the bridge down: the surface goes dead first so late
// asynchronous completions no-op, then the event channel closes.
func (b *Bridge) Dispose() {
	b.surf.Dispose()
	b.Wait()
	b.events.Close()
}
