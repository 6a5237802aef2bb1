package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/morphtree/pkg/engine"
	"github.com/matzehuels/morphtree/pkg/errors"
	"github.com/matzehuels/morphtree/pkg/layout"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatWebP = "webp"
)

// Formats lists every supported format.
var Formats = []string{FormatJSON, FormatSVG, FormatPNG, FormatWebP}

// ContentTypes maps formats to MIME types.
var ContentTypes = map[string]string{
	FormatJSON: "application/json",
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatWebP: "image/webp",
}

// ValidateFormat checks that format is one of [Formats].
func ValidateFormat(format string) error {
	if slices.Contains(Formats, format) {
		return nil
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want %s)", format, strings.Join(Formats, ", "))
}

// Render produces the frame in the named format. JSON output includes
// transforms and ignores snapshot options.
func Render(format string, s *layout.Set, f *engine.Frame, opts ...Option) ([]byte, error) {
	switch format {
	case FormatJSON:
		return RenderJSON(s, f, WithJSONTransforms())
	case FormatSVG:
		return RenderSVG(s, f, opts...), nil
	case FormatPNG:
		return RenderPNG(s, f, opts...)
	case FormatWebP:
		return RenderWebP(s, f, opts...)
	}
	return nil, ValidateFormat(format)
}

// Writer is an [engine.Sink] that writes every Every-th frame to Dir as
// frame-<seq>.<format>.
type Writer struct {
	Dir    string
	Format string
	Every  uint64
	Set    *layout.Set
	Opts   []Option

	written int
}

// Consume renders and writes f when its sequence number is due.
func (w *Writer) Consume(ctx context.Context, f *engine.Frame) error {
	every := w.Every
	if every == 0 {
		every = 1
	}
	if f.Seq%every != 0 {
		return nil
	}
	data, err := Render(w.Format, w.Set, f, w.Opts...)
	if err != nil {
		return err
	}
	path := filepath.Join(w.Dir, fmt.Sprintf("frame-%06d.%s", f.Seq, w.Format))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	w.written++
	return nil
}

// Written returns how many files were written.
func (w *Writer) Written() int { return w.written }

var _ engine.Sink = (*Writer)(nil)
