// Package marker incrementally reconciles declarative marker lists against
// the live native annotation set. Unchanged markers are left untouched,
// changed markers are mutated in place, and image swaps happen
// asynchronously without blocking structural updates.
package marker

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/shanshu/mapbridge/internal/imageloader"
	"github.com/shanshu/mapbridge/internal/model/core"
	"github.com/shanshu/mapbridge/internal/surface"
)

// Reconciler diffs incoming marker lists by id and drives the native
// surface. It holds the surface non-owning: once the surface reports not
// live, every mutation degrades to a no-op.
type Reconciler struct {
	mu      sync.Mutex
	surf    surface.Surface
	loader  *imageloader.Loader
	log     zerolog.Logger
	prev    map[string]core.Marker
	handles map[string]*surface.Annotation

	// pending image loads, used by tests to join on async completion
	loads sync.WaitGroup
}

// New creates a reconciler bound to a surface and installs its view
// materializer on it.
func New(surf surface.Surface, loader *imageloader.Loader, log zerolog.Logger) *Reconciler {
	r := &Reconciler{
		surf:    surf,
		loader:  loader,
		log:     log.With().Str("component", "marker").Logger(),
		prev:    make(map[string]core.Marker),
		handles: make(map[string]*surface.Annotation),
	}
	surf.SetViewFactory(r.MaterializeView)
	return r
}

// changes records which fields of a marker differ from its previous
// descriptor. Image is tracked separately because an image change triggers
// an asynchronous resolve instead of a synchronous mutation.
type changes struct {
	coordinate bool
	texts      bool
	image      bool
	style      bool
}

func (c changes) any() bool {
	return c.coordinate || c.texts || c.image || c.style
}

func diff(old, next core.Marker) changes {
	var c changes
	c.coordinate = old.Coordinate != next.Coordinate
	c.texts = !core.EqualStr(old.Title, next.Title) || !core.EqualStr(old.Subtitle, next.Subtitle)
	c.image = old.ImageURL() != next.ImageURL()
	c.style = !core.EqualInt(old.ZIndex, next.ZIndex) ||
		!core.EqualPoint(old.CenterOffset, next.CenterOffset) ||
		!core.EqualPoint(old.CalloutOffset, next.CalloutOffset) ||
		!core.EqualPoint(old.TextOffset, next.TextOffset) ||
		!core.EqualBool(old.Enabled, next.Enabled) ||
		!core.EqualBool(old.Highlighted, next.Highlighted) ||
		!core.EqualBool(old.CanShowCallout, next.CanShowCallout) ||
		!core.EqualBool(old.Draggable, next.Draggable) ||
		!core.EqualBool(old.CanAdjustPosition, next.CanAdjustPosition) ||
		!old.TextStyle.Equal(next.TextStyle) ||
		!core.EqualInt(old.PinColor, next.PinColor)
	return c
}

// SetMarkers reconciles the incoming list against the previously applied
// one. Removals and insertions are applied in two batched surface calls;
// markers present in both lists with identical fields are not touched.
func (r *Reconciler) SetMarkers(ctx context.Context, markers []core.Marker) {
	if !r.surf.Live() {
		return
	}

	r.mu.Lock()
	incoming := make(map[string]core.Marker, len(markers))
	var adds []*surface.Annotation
	type imageJob struct {
		id    string
		image core.MarkerImage
	}
	var jobs []imageJob

	for _, m := range markers {
		incoming[m.ID] = m
		old, existed := r.prev[m.ID]
		if !existed {
			a := &surface.Annotation{
				ID:         m.ID,
				Coordinate: m.Coordinate,
				Title:      m.Title,
				Subtitle:   m.Subtitle,
			}
			r.handles[m.ID] = a
			adds = append(adds, a)
			continue
		}
		c := diff(old, m)
		if !c.any() {
			continue
		}
		h := r.handles[m.ID]
		if h == nil {
			continue
		}
		if c.coordinate {
			h.Coordinate = m.Coordinate
		}
		if c.texts {
			h.Title = m.Title
			h.Subtitle = m.Subtitle
		}
		if v := r.surf.ViewFor(h); v != nil && c.style {
			applyStyle(v, m)
		}
		if c.image && m.Image != nil {
			jobs = append(jobs, imageJob{id: m.ID, image: *m.Image})
		}
	}

	var removals []*surface.Annotation
	for id, h := range r.handles {
		if _, ok := incoming[id]; !ok {
			removals = append(removals, h)
			delete(r.handles, id)
		}
	}
	r.prev = incoming
	r.mu.Unlock()

	if len(removals) > 0 {
		r.surf.RemoveAnnotations(removals)
	}
	if len(adds) > 0 {
		r.surf.AddAnnotations(adds)
	}
	for _, j := range jobs {
		r.attachImage(ctx, j.id, j.image)
	}
}

// attachImage resolves an image off the reconciling path and swaps it in
// once ready. A completion whose reference no longer matches the marker's
// current image is discarded, so an out-of-order load cannot clobber a
// newer state.
func (r *Reconciler) attachImage(ctx context.Context, id string, img core.MarkerImage) {
	r.loads.Add(1)
	go func() {
		defer r.loads.Done()
		resolved, ok := r.loader.ResolveSized(ctx, img.URL, img.Size)
		if !ok {
			return
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		current, exists := r.prev[id]
		if !exists || current.ImageURL() != img.URL {
			r.log.Debug().Str("id", id).Str("url", img.URL).Msg("discarding stale image load")
			return
		}
		if !r.surf.Live() {
			return
		}
		h := r.handles[id]
		if h == nil {
			return
		}
		if v := r.surf.ViewFor(h); v != nil {
			v.SetImage(resolved, img.URL)
		}
	}()
}

// Wait blocks until every in-flight image load has settled.
func (r *Reconciler) Wait() {
	r.loads.Wait()
}

// MaterializeView furnishes (or recycles) a view for an annotation the
// surface is about to display. Views are recycled across unrelated markers
// by reuse identifier, so the complete style set is reapplied every time.
func (r *Reconciler) MaterializeView(a *surface.Annotation) *surface.AnnotationView {
	r.mu.Lock()
	m, ok := r.prev[a.ID]
	r.mu.Unlock()
	if !ok {
		return nil
	}

	reuseID := surface.ReusePin
	if m.Image != nil {
		reuseID = surface.ReuseImageText
	}
	v := r.surf.DequeueReusableView(reuseID)
	if v == nil {
		v = &surface.AnnotationView{ReuseID: reuseID}
	}
	applyStyle(v, m)
	if m.Image != nil {
		r.attachImage(context.Background(), m.ID, *m.Image)
	}
	return v
}

// applyStyle writes every style field onto the view. Recycled views keep
// their previous state, so partial application would leak style across
// unrelated markers.
func applyStyle(v *surface.AnnotationView, m core.Marker) {
	v.Text = strOr(m.Title, "")
	v.ZIndex = intOr(m.ZIndex, 0)
	v.CenterOffset = pointOr(m.CenterOffset)
	v.CalloutOffset = pointOr(m.CalloutOffset)
	v.TextOffset = pointOr(m.TextOffset)
	v.Enabled = boolOr(m.Enabled, true)
	v.Highlighted = boolOr(m.Highlighted, false)
	v.CanShowCallout = boolOr(m.CanShowCallout, false)
	v.Draggable = boolOr(m.Draggable, false)
	v.CanAdjustPosition = boolOr(m.CanAdjustPosition, false)
	v.PinColor = intOr(m.PinColor, 0)
	v.TextStyle = m.TextStyle
	if m.Image == nil {
		v.SetImage(nil, "")
	}
}

// Owns reports whether the annotation handle belongs to this reconciler,
// resolving a tapped handle back to its marker id.
func (r *Reconciler) Owns(a *surface.Annotation) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.handles[a.ID]; ok && h == a {
		return a.ID, true
	}
	return "", false
}

func strOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func pointOr(p *core.Point) core.Point {
	if p == nil {
		return core.Point{}
	}
	return *p
}
