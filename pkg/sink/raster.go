package sink

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strconv"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/matzehuels/morphtree/pkg/engine"
	"github.com/matzehuels/morphtree/pkg/layout"
)

// Raster draws the frame into an RGBA image at the configured size. The
// scene is painted at supersample times the size and scaled down with
// Catmull-Rom filtering.
func Raster(s *layout.Set, f *engine.Frame, opts ...Option) (image.Image, error) {
	r := newRenderer(opts...)
	ss := r.supersample

	big := r.view
	big.Width *= ss
	big.Height *= ss

	dc := gg.NewContext(big.Width, big.Height)
	bg, err := parseHex(r.background)
	if err != nil {
		return nil, err
	}
	dc.SetRGB(bg[0], bg[1], bg[2])
	dc.Clear()

	for _, d := range Project(s, f, big) {
		c, err := parseHex(d.Color)
		if err != nil {
			return nil, fmt.Errorf("entity %d: %w", d.ID, err)
		}
		dc.SetRGBA(c[0], c[1], c[2], d.Opacity)
		dc.DrawCircle(d.X, d.Y, d.Radius)
		dc.Fill()
	}

	if r.status && f.Status != "" {
		dc.SetRGB(1, 0.84, 0)
		dc.DrawStringAnchored(f.Status, float64(big.Width)/2, float64(big.Height)-16*float64(ss), 0.5, 0)
	}

	if ss == 1 {
		return dc.Image(), nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.view.Width, r.view.Height))
	src := dc.Image()
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// RenderPNG rasterizes the frame as PNG.
func RenderPNG(s *layout.Set, f *engine.Frame, opts ...Option) ([]byte, error) {
	img, err := Raster(s, f, opts...)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderWebP rasterizes the frame as lossless WebP.
func RenderWebP(s *layout.Set, f *engine.Frame, opts ...Option) ([]byte, error) {
	img, err := Raster(s, f, opts...)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, img, nil); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

// parseHex converts #RGB or #RRGGBB to unit RGB components.
func parseHex(s string) ([3]float64, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return [3]float64{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return [3]float64{}, fmt.Errorf("invalid colour %q", s)
	}
	return [3]float64{
		float64(v>>16&0xff) / 255,
		float64(v>>8&0xff) / 255,
		float64(v&0xff) / 255,
	}, nil
}
