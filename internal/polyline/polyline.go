// Package polyline replaces the full polyline overlay set on every update.
// The native rendering callback only receives the bare overlay, so styles
// are recovered through a side table keyed by a synthetic per-update
// identifier carried in the overlay's title slot.
package polyline

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/shanshu/mapbridge/internal/geo"
	"github.com/shanshu/mapbridge/internal/imageloader"
	"github.com/shanshu/mapbridge/internal/model/core"
	"github.com/shanshu/mapbridge/internal/surface"
)

// Reconciler owns the overlay set and the syntheticId -> style side table.
// No diffing: polyline sets change wholesale (a freshly computed route),
// so replace-on-write is simpler and cheap enough.
type Reconciler struct {
	mu     sync.Mutex
	surf   surface.Surface
	loader *imageloader.Loader
	log    zerolog.Logger

	overlays []*surface.Overlay
	styles   map[string]core.PolylineStyle
	// base context for texture fetches of the current overlay set;
	// cancelling it abandons any still-pending resolution
	ctx context.Context

	textures sync.WaitGroup
}

// New creates a reconciler bound to a surface and installs its renderer
// factory on it.
func New(surf surface.Surface, loader *imageloader.Loader, log zerolog.Logger) *Reconciler {
	r := &Reconciler{
		surf:   surf,
		loader: loader,
		log:    log.With().Str("component", "polyline").Logger(),
		styles: make(map[string]core.PolylineStyle),
	}
	surf.SetRendererFactory(r.FurnishRenderer)
	return r
}

// SetPolylines removes every tracked overlay, clears the style table, and
// adds the incoming set under fresh synthetic identifiers.
func (r *Reconciler) SetPolylines(ctx context.Context, polylines []core.Polyline) {
	if !r.surf.Live() {
		return
	}

	r.mu.Lock()
	r.ctx = ctx
	stale := r.overlays
	r.overlays = make([]*surface.Overlay, 0, len(polylines))
	r.styles = make(map[string]core.PolylineStyle, len(polylines))

	fresh := make([]*surface.Overlay, 0, len(polylines))
	for i, p := range polylines {
		id := fmt.Sprintf("segment-%d", i)
		line, err := geo.LineString(p.Coordinates)
		if err != nil {
			r.log.Warn().Str("id", id).Err(err).Msg("skipping degenerate polyline")
			continue
		}
		o := &surface.Overlay{Title: id, Line: line}
		r.styles[id] = p.Style
		r.overlays = append(r.overlays, o)
		fresh = append(fresh, o)
	}
	r.mu.Unlock()

	if len(stale) > 0 {
		r.surf.RemoveOverlays(stale)
	}
	for _, o := range fresh {
		r.surf.AddOverlay(o)
	}
}

// StyleFor looks up the style for an overlay by its synthetic identifier.
// Returns false for overlays foreign to this reconciler.
func (r *Reconciler) StyleFor(o *surface.Overlay) (core.PolylineStyle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.styles[o.Title]
	return s, ok
}

// FurnishRenderer builds the renderer for an overlay, applying every style
// field present. The texture image, if any, resolves asynchronously and is
// applied once ready; the line may visibly update after initial render.
func (r *Reconciler) FurnishRenderer(o *surface.Overlay) *surface.OverlayRenderer {
	style, ok := r.StyleFor(o)
	if !ok {
		return nil
	}

	rd := &surface.OverlayRenderer{
		FillColor:   style.FillColor,
		StrokeColor: style.StrokeColor,
		LineWidth:   f64Or(style.LineWidth, 1),
		MiterLimit:  f64Or(style.MiterLimit, 0),
		SideColor:   style.SideColor,
	}
	if style.LineJoinType != nil {
		rd.LineJoinType = *style.LineJoinType
	}
	if style.LineCapType != nil {
		rd.LineCapType = *style.LineCapType
	}
	if style.LineDashType != nil {
		rd.LineDashType = *style.LineDashType
	}
	if style.ReducePoint != nil {
		rd.ReducePoint = *style.ReducePoint
	}
	if style.Is3DArrowLine != nil {
		rd.Is3DArrowLine = *style.Is3DArrowLine
	}
	if style.Interactive != nil {
		rd.Interactive = *style.Interactive
	}
	if style.HitTestInset != nil {
		rd.HitTestInset = *style.HitTestInset
	}
	if style.ShowRangeEnabled != nil {
		rd.ShowRangeEnabled = *style.ShowRangeEnabled
	}
	if style.PathShowRange != nil {
		rd.ShowRange = *style.PathShowRange
	}
	if style.FillColor != nil {
		if _, err := geo.ParseHexColor(*style.FillColor); err != nil {
			r.log.Warn().Str("fillColor", *style.FillColor).Msg("unparseable fill color")
		}
	}
	if style.StrokeColor != nil {
		if _, err := geo.ParseHexColor(*style.StrokeColor); err != nil {
			r.log.Warn().Str("strokeColor", *style.StrokeColor).Msg("unparseable stroke color")
		}
	}

	if style.TextureImage != nil {
		r.attachTexture(rd, *style.TextureImage)
	}
	return rd
}

func (r *Reconciler) attachTexture(rd *surface.OverlayRenderer, ref string) {
	r.mu.Lock()
	ctx := r.ctx
	r.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	r.textures.Add(1)
	go func() {
		defer r.textures.Done()
		img, ok := r.loader.Resolve(ctx, ref)
		if !ok {
			return
		}
		r.mu.Lock()
		defer r.mu.Unlock()
		if !r.surf.Live() {
			return
		}
		rd.StrokeImage = img
	}()
}

// Wait blocks until every in-flight texture resolution has settled.
func (r *Reconciler) Wait() {
	r.textures.Wait()
}

func f64Or(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
