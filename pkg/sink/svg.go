package sink

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/morphtree/pkg/engine"
	"github.com/matzehuels/morphtree/pkg/layout"
)

// Option configures the snapshot renderers.
type Option func(*renderer)

type renderer struct {
	view        View
	background  string
	status      bool
	supersample int
}

// WithSize sets the canvas size in pixels.
func WithSize(w, h int) Option {
	return func(r *renderer) { r.view.Width, r.view.Height = w, h }
}

// WithUnits sets how many world units span the canvas height.
func WithUnits(u float64) Option { return func(r *renderer) { r.view.Units = u } }

// WithBackground sets the canvas colour as #RRGGBB.
func WithBackground(c string) Option { return func(r *renderer) { r.background = c } }

// WithoutRibbon omits the halo strands.
func WithoutRibbon() Option { return func(r *renderer) { r.view.Ribbon = false } }

// WithStatus writes the frame's status hint along the bottom edge.
func WithStatus() Option { return func(r *renderer) { r.status = true } }

// MaxRasterPixels bounds the painted area of a raster snapshot, supersampling
// included. Large canvases are painted at a lower factor, down to 1.
const MaxRasterPixels = 4096 * 4096

// WithSupersample sets the raster oversampling factor (default 2). SVG
// output ignores it.
func WithSupersample(n int) Option { return func(r *renderer) { r.supersample = n } }

func newRenderer(opts ...Option) renderer {
	r := renderer{view: DefaultView(), background: DefaultBackground, supersample: 2}
	for _, opt := range opts {
		opt(&r)
	}
	r.view.setDefaults()
	if r.supersample < 1 {
		r.supersample = 1
	}
	area := r.view.Width * r.view.Height
	for r.supersample > 1 && area*r.supersample*r.supersample > MaxRasterPixels {
		r.supersample--
	}
	return r
}

// RenderSVG draws an orthographic snapshot of the frame.
func RenderSVG(s *layout.Set, f *engine.Frame, opts ...Option) []byte {
	r := newRenderer(opts...)
	w, h := r.view.Width, r.view.Height

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n", w, h, w, h)
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", r.background)

	fmt.Fprintf(&buf, `  <g data-seq="%d" data-current="%.4f">`+"\n", f.Seq, f.Current)
	for _, d := range Project(s, f, r.view) {
		renderDot(&buf, d)
	}
	buf.WriteString("  </g>\n")

	if r.status {
		fmt.Fprintf(&buf, `  <text x="%d" y="%d" text-anchor="middle" font-family="sans-serif" font-size="14" fill="#FFD700">%s</text>`+"\n",
			w/2, h-16, html.EscapeString(f.Status))
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderDot(buf *bytes.Buffer, d Dot) {
	class := "strand"
	if !d.Strand {
		class = d.Cat.String()
	}
	if d.Opacity < 1 {
		fmt.Fprintf(buf, `    <circle class="%s" cx="%.1f" cy="%.1f" r="%.2f" fill="%s" fill-opacity="%.2f"/>`+"\n",
			class, d.X, d.Y, d.Radius, d.Color, d.Opacity)
		return
	}
	fmt.Fprintf(buf, `    <circle class="%s" cx="%.1f" cy="%.1f" r="%.2f" fill="%s"/>`+"\n",
		class, d.X, d.Y, d.Radius, d.Color)
}
