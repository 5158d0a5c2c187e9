// Package surface defines the narrow contract between the bridge and the
// opaque native map SDK: batch annotation/overlay mutation, view
// materialization with reuse pools, camera control and screen projection.
package surface

import (
	"image"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/shanshu/mapbridge/internal/model/core"
)

// Annotation is the native annotation handle. Only identity, coordinate and
// the callout texts are fixed at construction; richer attributes are applied
// to the materialized view.
type Annotation struct {
	ID         string
	Coordinate core.Coordinate
	Title      *string
	Subtitle   *string
}

// Reuse identifiers for the two view kinds. Views are recycled across
// unrelated annotations by reuse identifier, so every dequeue must reapply
// the complete style field set.
const (
	ReuseImageText = "ImageTextAnnotationView"
	ReusePin       = "PinAnnotationView"
)

// AnnotationView is the native view backing an annotation. Mutations are
// applied in place by the reconcilers.
type AnnotationView struct {
	ReuseID string

	Text     string
	Image    image.Image
	ImageURL string

	ZIndex            int
	CenterOffset      core.Point
	CalloutOffset     core.Point
	TextOffset        core.Point
	Enabled           bool
	Highlighted       bool
	CanShowCallout    bool
	Draggable         bool
	CanAdjustPosition bool
	PinColor          int
	TextStyle         *core.TextStyle
}

// SetImage swaps the displayed bitmap, recording the reference it came
// from. A swap whose reference already matches is a no-op; the recorded
// reference is what the stale-load guard compares against.
func (v *AnnotationView) SetImage(img image.Image, url string) {
	if v.ImageURL == url {
		return
	}
	v.Image = img
	v.ImageURL = url
}

// Overlay is the native polyline overlay handle. The title slot carries the
// reconciler's synthetic identifier; the SDK offers no other stable slot.
type Overlay struct {
	Title string
	Line  geom.LineString
}

// OverlayRenderer receives the style application for one overlay.
type OverlayRenderer struct {
	FillColor        *string
	StrokeColor      *string
	LineWidth        float64
	LineJoinType     int
	LineCapType      int
	MiterLimit       float64
	LineDashType     int
	ReducePoint      bool
	Is3DArrowLine    bool
	SideColor        *string
	Interactive      bool
	HitTestInset     float64
	ShowRangeEnabled bool
	ShowRange        core.PathShowRange
	StrokeImage      image.Image
}

// ViewFactory materializes (or recycles) a view for an annotation. The
// marker reconciler installs one; the surface invokes it whenever a view is
// furnished.
type ViewFactory func(a *Annotation) *AnnotationView

// RendererFactory furnishes the renderer for an overlay when it is first
// drawn.
type RendererFactory func(o *Overlay) *OverlayRenderer

// Delegate receives native callbacks from the surface.
type Delegate interface {
	DidFinishLoading()
	RegionChanged(region core.Region)
	ZoomChanged(level float64)
	AnnotationTapped(a *Annotation, at core.Point)
	AnnotationSelected(a *Annotation)
}

// Surface is the mutable native map handle. Reconcilers hold it non-owning;
// after Dispose every mutation becomes a silent no-op.
type Surface interface {
	// Batch annotation mutation. Per-item calls are deliberately absent:
	// removals and insertions are applied in two batched calls to avoid
	// redundant layout passes.
	AddAnnotations(items []*Annotation)
	RemoveAnnotations(items []*Annotation)
	Annotations() []*Annotation
	ViewFor(a *Annotation) *AnnotationView
	// DequeueReusableView returns a recycled view for the reuse identifier,
	// or nil when the caller must construct a fresh one.
	DequeueReusableView(reuseID string) *AnnotationView
	SelectAnnotation(a *Annotation, animated bool)

	AddOverlay(o *Overlay)
	RemoveOverlays(items []*Overlay)
	Overlays() []*Overlay

	SetViewFactory(f ViewFactory)
	SetRendererFactory(f RendererFactory)
	SetDelegate(d Delegate)

	SetCenter(c core.Coordinate, animated bool)
	SetRegion(r core.Region, animated bool)
	SetLimitRegion(r core.Region)
	Region() core.Region
	SetZoomLevel(level float64, animated bool)
	ZoomLevel() float64
	SetMinZoomLevel(level float64)
	SetMaxZoomLevel(level float64)
	SetMapType(t core.MapType)
	SetLanguage(lang string)
	SetCustomStyle(s core.CustomStyle)
	SetShowUserLocation(show bool)
	SetUserTrackingMode(mode core.UserTrackingMode)

	// Project converts a coordinate to a point in the surface's own screen
	// space.
	Project(c core.Coordinate) core.Point

	Live() bool
	Dispose()
}
