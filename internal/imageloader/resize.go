package imageloader

import (
	"context"
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/shanshu/mapbridge/internal/model/core"
)

// Resized scales img to the given size in screen points. A non-positive
// dimension returns the image unchanged.
func Resized(img image.Image, size core.Size) image.Image {
	if img == nil {
		return nil
	}
	w, h := int(size.Width), int(size.Height)
	if w <= 0 || h <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

// ResolveSized resolves ref and scales the result to size. The cache holds
// the original decode; scaling is cheap relative to fetch+decode.
func (l *Loader) ResolveSized(ctx context.Context, ref string, size core.Size) (image.Image, bool) {
	img, ok := l.Resolve(ctx, ref)
	if !ok {
		return nil, false
	}
	return Resized(img, size), true
}
