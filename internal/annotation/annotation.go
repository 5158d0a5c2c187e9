// Package annotation renders style-templated annotations. Rendering is
// gated on two independent readiness conditions: the style set (whose
// images resolve asynchronously) and the annotation list itself. Every
// render is a full replace; annotation counts are map-overlay scale, not
// list-view scale.
package annotation

import (
	"context"
	"image"
	"sync"

	"github.com/rs/zerolog"

	"github.com/shanshu/mapbridge/internal/imageloader"
	"github.com/shanshu/mapbridge/internal/model/core"
	"github.com/shanshu/mapbridge/internal/surface"
)

// Reconciler gates annotation rendering on style-image readiness and fully
// re-renders whenever both inputs are present.
type Reconciler struct {
	mu     sync.Mutex
	surf   surface.Surface
	loader *imageloader.Loader
	log    zerolog.Logger

	styles      []core.AnnotationStyle
	images      map[string]image.Image
	annotations []core.Annotation
	selectedID  string

	stylesReady      bool
	annotationsReady bool

	// generation guards against a stale ResolveMany completion marking
	// styles ready after a newer SetStyles call replaced them.
	generation uint64

	rendered map[string]*surface.Annotation
	prebuilt map[*surface.Annotation]*surface.AnnotationView

	resolves sync.WaitGroup
}

// New creates a reconciler bound to a surface.
func New(surf surface.Surface, loader *imageloader.Loader, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		surf:     surf,
		loader:   loader,
		log:      log.With().Str("component", "annotation").Logger(),
		images:   make(map[string]image.Image),
		rendered: make(map[string]*surface.Annotation),
		prebuilt: make(map[*surface.Annotation]*surface.AnnotationView),
	}
}

// MaterializeView returns the pre-built view for one of this reconciler's
// handles, or nil for a foreign annotation. Annotation views are fully
// determined by their style template at render time, so nothing is resolved
// here.
func (r *Reconciler) MaterializeView(a *surface.Annotation) *surface.AnnotationView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prebuilt[a]
}

// SetStyles resolves every style's image concurrently, then marks styles
// ready and attempts a render. A second call while a resolution is in
// flight supersedes it: the superseded completion is dropped.
func (r *Reconciler) SetStyles(ctx context.Context, styles []core.AnnotationStyle) {
	r.mu.Lock()
	r.generation++
	gen := r.generation
	r.styles = styles
	r.stylesReady = false
	r.mu.Unlock()

	refs := make([]string, len(styles))
	for i, s := range styles {
		refs[i] = s.Image.URL
	}

	r.resolves.Add(1)
	go func() {
		defer r.resolves.Done()
		resolved := r.loader.ResolveMany(ctx, refs)

		r.mu.Lock()
		if gen != r.generation {
			r.mu.Unlock()
			r.log.Debug().Uint64("generation", gen).Msg("dropping superseded style resolution")
			return
		}
		r.images = make(map[string]image.Image, len(styles))
		for i, s := range styles {
			if resolved[i] == nil {
				r.log.Warn().Str("styleId", s.ID).Str("url", s.Image.URL).Msg("style image unresolved")
				continue
			}
			r.images[s.ID] = sized(resolved[i], s.Image.Size)
		}
		r.stylesReady = true
		plan := r.planRenderLocked()
		r.mu.Unlock()
		r.apply(plan)
	}()
}

// SetAnnotations replaces the annotation list and attempts a render
// immediately; it has no asynchronous dependency of its own.
func (r *Reconciler) SetAnnotations(annotations []core.Annotation) {
	r.mu.Lock()
	r.annotations = annotations
	r.annotationsReady = true
	plan := r.planRenderLocked()
	r.mu.Unlock()
	r.apply(plan)
}

// SetSelectedAnnotationID records which annotation to select after render
// and, when already rendered, selects it right away.
func (r *Reconciler) SetSelectedAnnotationID(id string) {
	r.mu.Lock()
	r.selectedID = id
	h := r.rendered[id]
	r.mu.Unlock()
	if h != nil {
		r.surf.SelectAnnotation(h, true)
	}
}

// Wait blocks until every in-flight style resolution has settled.
func (r *Reconciler) Wait() {
	r.resolves.Wait()
}

// renderPlan is the batched surface mutation computed under the lock and
// applied outside it, so the surface's view-factory callback can re-enter
// the reconciler.
type renderPlan struct {
	render   bool
	removals []*surface.Annotation
	adds     []*surface.Annotation
	selects  []*surface.Annotation
}

// planRenderLocked performs the full-replace computation. No-op unless both
// readiness flags are set. Annotations referencing an unknown styleId are
// skipped, not an error.
func (r *Reconciler) planRenderLocked() renderPlan {
	if !r.stylesReady || !r.annotationsReady || !r.surf.Live() {
		return renderPlan{}
	}

	plan := renderPlan{render: true}
	for _, h := range r.rendered {
		plan.removals = append(plan.removals, h)
	}
	r.rendered = make(map[string]*surface.Annotation, len(r.annotations))
	r.prebuilt = make(map[*surface.Annotation]*surface.AnnotationView, len(r.annotations))

	styleByID := make(map[string]core.AnnotationStyle, len(r.styles))
	for _, s := range r.styles {
		styleByID[s.ID] = s
	}

	for _, a := range r.annotations {
		style, ok := styleByID[a.StyleID]
		if !ok {
			continue
		}
		h := &surface.Annotation{
			ID:         a.ID,
			Coordinate: a.Coordinate,
			Title:      a.Title,
		}
		r.rendered[a.ID] = h
		r.prebuilt[h] = r.buildView(a, style)
		plan.adds = append(plan.adds, h)

		if a.Selected != nil && *a.Selected {
			plan.selects = append(plan.selects, h)
		}
	}
	if h, ok := r.rendered[r.selectedID]; ok {
		plan.selects = append(plan.selects, h)
	}
	return plan
}

func (r *Reconciler) apply(plan renderPlan) {
	if !plan.render {
		return
	}
	if len(plan.removals) > 0 {
		r.surf.RemoveAnnotations(plan.removals)
	}
	if len(plan.adds) > 0 {
		r.surf.AddAnnotations(plan.adds)
	}
	for _, h := range plan.selects {
		r.surf.SelectAnnotation(h, true)
	}
}

// buildView constructs the view carrying the resolved style bitmap. The
// complete style field set is written every time; views may be recycled
// across unrelated annotations.
func (r *Reconciler) buildView(a core.Annotation, style core.AnnotationStyle) *surface.AnnotationView {
	v := r.surf.DequeueReusableView(surface.ReuseImageText)
	if v == nil {
		v = &surface.AnnotationView{ReuseID: surface.ReuseImageText}
	}
	v.Text = ""
	if a.Title != nil {
		v.Text = *a.Title
	}
	v.ZIndex = 0
	if style.ZIndex != nil {
		v.ZIndex = *style.ZIndex
	}
	v.CenterOffset = core.Point{}
	if style.CenterOffset != nil {
		v.CenterOffset = *style.CenterOffset
	}
	v.CalloutOffset = core.Point{}
	v.TextOffset = core.Point{}
	v.Enabled = style.Enabled == nil || *style.Enabled
	v.Highlighted = false
	v.CanShowCallout = false
	v.Draggable = false
	v.CanAdjustPosition = false
	v.PinColor = 0
	v.TextStyle = style.TextStyle
	v.SetImage(r.images[style.ID], style.Image.URL)
	return v
}

func sized(img image.Image, size core.Size) image.Image {
	if size.Width <= 0 || size.Height <= 0 {
		return img
	}
	return imageloader.Resized(img, size)
}
