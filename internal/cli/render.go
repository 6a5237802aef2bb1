package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/morphtree/pkg/cache"
	"github.com/matzehuels/morphtree/pkg/engine"
	"github.com/matzehuels/morphtree/pkg/sink"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	sim     simOpts
	output  string   // base path; the format is appended as extension
	formats []string // svg, png, webp, json
	width   int
	height  int
	status  bool // print the status line into raster/SVG output
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{output: appName}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the tree after a gesture sequence to SVG, PNG, WebP or JSON",
		Long: `Run a gesture sequence headless and render the final frame.

Snapshots are cached by layout and morph state, so rendering the same
sequence twice reads the artifact from the cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			for _, f := range opts.formats {
				if err := sink.ValidateFormat(f); err != nil {
					return err
				}
			}
			return c.runRender(cmd.Context(), opts)
		},
	}

	opts.sim.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output base path")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output formats, comma-separated: svg, png, webp, json (default: svg)")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	cmd.Flags().IntVar(&opts.width, "width", 0, "image width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", 0, "image height in pixels")
	cmd.Flags().BoolVar(&opts.status, "status", false, "draw the status line")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, opts renderOpts) error {
	opts.sim.flags.Width = opts.width
	opts.sim.flags.Height = opts.height

	sim, err := c.prepare(ctx, opts.sim)
	if err != nil {
		return err
	}
	if err := sim.run(ctx, opts.sim, nil); err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	f := sim.eng.Latest()
	set := sim.eng.Set()

	store, err := c.newCache(ctx, sim.cfg)
	if err != nil || opts.sim.flags.NoCache {
		store = cache.NewNullCache()
	}
	defer store.Close()

	keyer := c.newKeyer()
	layoutHash := cache.Hash([]byte(keyer.LayoutKey(engine.LayoutKeyOpts(set.Options))))

	snapOpts := snapshotOpts(sim.cfg)
	if opts.status {
		snapOpts = append(snapOpts, sink.WithStatus())
	}

	var paths []string
	for _, format := range opts.formats {
		key := keyer.ArtifactKey(layoutHash, cache.ArtifactKeyOpts{
			Format:  format,
			Width:   sim.cfg.Render.Width,
			Height:  sim.cfg.Render.Height,
			Current: f.Current,
			Elapsed: f.Elapsed,
			Style:   artifactStyle(sim.source, opts.status),
		})

		data, hit, err := store.Get(ctx, key)
		if err != nil {
			c.Logger.Debug("artifact cache read failed", "error", err)
		}
		if !hit {
			if data, err = sink.Render(format, set, f, snapOpts...); err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			if err := store.Set(ctx, key, data, sim.cfg.Cache.TTL.Duration); err != nil {
				c.Logger.Debug("artifact cache write failed", "error", err)
			}
		}

		path := renderPath(opts.output, format, len(opts.formats) > 1)
		if err := writeFile(path, data); err != nil {
			return err
		}
		c.Logger.Debug("rendered", "format", format, "cached", hit, "bytes", len(data))
		paths = append(paths, path)
	}

	prog.done("rendered", "formats", len(paths))
	printSuccess("Rendered after %d ticks from %s", sim.ticks, sim.source)
	printKeyValue("Status", f.Status)
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// artifactStyle tells cached snapshots of different sources apart even when
// they end in the same morph state.
func artifactStyle(source string, status bool) string {
	if status {
		return source + "+status"
	}
	return source
}

// renderPath builds the output file path. A base that already carries the
// format extension is used as is for single-format output.
func renderPath(base, format string, multi bool) string {
	ext := "." + format
	if !multi && strings.EqualFold(filepath.Ext(base), ext) {
		return base
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
