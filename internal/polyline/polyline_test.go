package polyline

import (
	"context"
	"image"
	"net/http"
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

func newTestReconciler(t *testing.T) (*Reconciler, *memsurface.Surface) {
	t.Helper()
	surf := memsurface.New()
	loader := imageloader.New(
		imageloader.NewLRUCache(1<<20),
		&http.Client{Timeout: 5 * time.Second},
		zerolog.Nop(),
	)
	loader.RegisterBundleImage("arrow-texture", image.NewNRGBA(image.Rect(0, 0, 8, 8)))
	return New(surf, loader, zerolog.Nop()), surf
}

func line(style core.PolylineStyle, coords ...core.Coordinate) core.Polyline {
	return core.Polyline{Coordinates: coords, Style: style}
}

func coords(pairs ...float64) []core.Coordinate {
	out := make([]core.Coordinate, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, core.Coordinate{Longitude: pairs[i], Latitude: pairs[i+1]})
	}
	return out
}

func strp(s string) *string   { return &s }
func f64p(f float64) *float64 { return &f }

func TestSetPolylines_FullReplace(t *testing.T) {
	r, surf := newTestReconciler(t)

	first := []core.Polyline{
		line(core.PolylineStyle{StrokeColor: strp("#ff0000")}, coords(121.4, 31.2, 121.5, 31.3)...),
		line(core.PolylineStyle{StrokeColor: strp("#00ff00")}, coords(116.4, 39.9, 116.5, 40.0)...),
	}
	r.SetPolylines(context.Background(), first)
	require.Len(t, surf.Overlays(), 2)

	second := []core.Polyline{
		line(core.PolylineStyle{StrokeColor: strp("#0000ff"), LineWidth: f64p(6)}, coords(113.2, 23.1, 113.3, 23.2)...),
	}
	r.SetPolylines(context.Background(), second)

	overlays := surf.Overlays()
	require.Len(t, overlays, 1, "no leftover overlays from the previous set")
	style, ok := r.StyleFor(overlays[0])
	require.True(t, ok)
	assert.Equal(t, "#0000ff", *style.StrokeColor)
}

func TestSyntheticIdentifiers(t *testing.T) {
	r, surf := newTestReconciler(t)

	r.SetPolylines(context.Background(), []core.Polyline{
		line(core.PolylineStyle{}, coords(1, 1, 2, 2)...),
		line(core.PolylineStyle{}, coords(3, 3, 4, 4)...),
	})

	overlays := surf.Overlays()
	require.Len(t, overlays, 2)
	assert.Equal(t, "segment-0", overlays[0].Title)
	assert.Equal(t, "segment-1", overlays[1].Title)
}

func TestStyleFor_ForeignOverlay(t *testing.T) {
	r, _ := newTestReconciler(t)

	r.SetPolylines(context.Background(), []core.Polyline{line(core.PolylineStyle{}, coords(1, 1, 2, 2)...)})

	_, ok := r.StyleFor(&surface.Overlay{Title: "injected-by-someone-else"})
	assert.False(t, ok)
}

func TestFurnishRenderer_AppliesStyleFields(t *testing.T) {
	r, surf := newTestReconciler(t)

	arrow := true
	dash := 2
	inset := 10.0
	r.SetPolylines(context.Background(), []core.Polyline{
		line(core.PolylineStyle{
			StrokeColor:   strp("#112233"),
			LineWidth:     f64p(8),
			Is3DArrowLine: &arrow,
			LineDashType:  &dash,
			HitTestInset:  &inset,
			PathShowRange: &core.PathShowRange{Begin: 0.2, End: 0.8},
		}, coords(121.4, 31.2, 121.5, 31.3)...),
	})

	rd := surf.RendererFor(surf.Overlays()[0])
	require.NotNil(t, rd)
	assert.Equal(t, "#112233", *rd.StrokeColor)
	assert.Equal(t, 8.0, rd.LineWidth)
	assert.True(t, rd.Is3DArrowLine)
	assert.Equal(t, 2, rd.LineDashType)
	assert.Equal(t, 10.0, rd.HitTestInset)
	assert.Equal(t, 0.2, rd.ShowRange.Begin)
}

func TestFurnishRenderer_Defaults(t *testing.T) {
	r, surf := newTestReconciler(t)

	r.SetPolylines(context.Background(), []core.Polyline{line(core.PolylineStyle{}, coords(1, 1, 2, 2)...)})

	rd := surf.RendererFor(surf.Overlays()[0])
	require.NotNil(t, rd)
	assert.Equal(t, 1.0, rd.LineWidth)
	assert.False(t, rd.Interactive)
}

func TestFurnishRenderer_TextureResolvesAsynchronously(t *testing.T) {
	r, surf := newTestReconciler(t)

	r.SetPolylines(context.Background(), []core.Polyline{
		line(core.PolylineStyle{TextureImage: strp("arrow-texture")}, coords(1, 1, 2, 2)...),
	})
	r.Wait()

	rd := surf.RendererFor(surf.Overlays()[0])
	require.NotNil(t, rd)
	assert.NotNil(t, rd.StrokeImage)
}

func TestOverlayGeometry(t *testing.T) {
	r, surf := newTestReconciler(t)

	r.SetPolylines(context.Background(), []core.Polyline{
		line(core.PolylineStyle{}, coords(121.47, 31.23, 116.40, 39.90)...),
	})

	ls := surf.Overlays()[0].Line
	seq := ls.Coordinates()
	require.Equal(t, 2, seq.Length())
	assert.Equal(t, 121.47, seq.GetXY(0).X)
	assert.Equal(t, 31.23, seq.GetXY(0).Y)
}

func TestSetPolylines_DisposedSurfaceIsNoOp(t *testing.T) {
	r, surf := newTestReconciler(t)
	surf.Dispose()

	r.SetPolylines(context.Background(), []core.Polyline{line(core.PolylineStyle{}, coords(1, 1, 2, 2)...)})
	assert.Empty(t, surf.Overlays())
}
