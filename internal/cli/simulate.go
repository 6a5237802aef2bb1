package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/morphtree/pkg/config"
	"github.com/matzehuels/morphtree/pkg/engine"
	"github.com/matzehuels/morphtree/pkg/gesture"
	"github.com/matzehuels/morphtree/pkg/sink"
)

// simOpts holds the flags shared by simulate and render.
type simOpts struct {
	flags  config.Flags
	source sourceFlags
	ticks  int
	settle int
}

func (o *simOpts) register(cmd *cobra.Command) {
	layoutFlags(cmd, &o.flags)
	o.source.register(cmd)
	cmd.Flags().IntVar(&o.ticks, "ticks", 0, "number of frames to run (default: until the source ends, then --settle more)")
	cmd.Flags().IntVar(&o.settle, "settle", 90, "frames to keep running after the source ends")
}

// simulation is a headless run: an engine wired to a finite gesture source.
type simulation struct {
	cfg     config.Config
	eng     *engine.Engine
	sampler *gesture.Sampler
	cached  bool
	source  string
	ticks   int
}

// prepare builds the layout, the engine and the selected gesture source.
func (c *CLI) prepare(ctx context.Context, o simOpts) (*simulation, error) {
	cfg, err := c.loadConfig(o.flags)
	if err != nil {
		return nil, err
	}
	set, cached, err := c.loadLayout(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build layout: %w", err)
	}
	tracker, desc, err := c.tracker(ctx, cfg, o.source)
	if err != nil {
		return nil, err
	}

	eng := c.newEngine(set, cfg)
	return &simulation{
		cfg:     cfg,
		eng:     eng,
		sampler: c.newSampler(tracker, eng, cfg),
		cached:  cached,
		source:  desc,
	}, nil
}

// run steps the engine in lockstep with the source, handing frames to out
// (which may be nil).
func (s *simulation) run(ctx context.Context, o simOpts, out engine.Sink) error {
	spinner := newSpinner(ctx, "Simulating...")
	spinner.Start()
	defer spinner.Stop()

	fps := uint64(s.cfg.Engine.FPS)
	progressSink := engine.SinkFunc(func(ctx context.Context, f *engine.Frame) error {
		if f.Seq%fps == 0 {
			spinner.Update("Simulating... %.0fs  current %.3f", f.Elapsed, f.Current)
		}
		if out == nil {
			return nil
		}
		return out.Consume(ctx, f)
	})

	n, err := engine.Simulate(ctx, s.eng, s.sampler, progressSink, engine.SimOptions{Ticks: o.ticks, Settle: o.settle})
	s.ticks = n
	if err != nil {
		return err
	}
	loggerFromContext(ctx).Debug("simulation finished", "ticks", n, "source", s.source)
	return nil
}

// snapshotOpts converts the [render] section into renderer options.
func snapshotOpts(cfg config.Config) []sink.Option {
	return []sink.Option{
		sink.WithSize(cfg.Render.Width, cfg.Render.Height),
		sink.WithSupersample(cfg.Render.Supersample),
		sink.WithBackground(cfg.Render.Background),
	}
}

// simulateCommand creates the simulate command.
func (c *CLI) simulateCommand() *cobra.Command {
	var (
		o      simOpts
		outDir string
		every  uint64
		format string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the engine headless against a gesture script or trace",
		Long: `Run the engine without a display. Gestures come from --script or
--trace; without either a short open-then-closed demo runs.

Scripts are comma-separated steps "kind[@x/y]:count", where kind is open,
closed or none, x/y is the hand position in [0,1] and count the number of
samples. Example: "open@0.2/0.5:30,open@0.8/0.5:30,closed:90".

With --out every --every-th frame is written to a directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sink.ValidateFormat(format); err != nil {
				return err
			}
			return c.runSimulate(cmd.Context(), o, outDir, every, format, asJSON)
		},
	}

	o.register(cmd)
	cmd.Flags().StringVar(&outDir, "out", "", "write frames to this directory")
	cmd.Flags().Uint64Var(&every, "every", 10, "with --out, write every n-th frame")
	cmd.Flags().StringVarP(&format, "format", "f", sink.FormatSVG, "frame format: svg, png, webp, json")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the final frame as JSON")

	return cmd
}

func (c *CLI) runSimulate(ctx context.Context, o simOpts, outDir string, every uint64, format string, asJSON bool) error {
	sim, err := c.prepare(ctx, o)
	if err != nil {
		return err
	}

	var writer *sink.Writer
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", outDir, err)
		}
		writer = &sink.Writer{
			Dir:    outDir,
			Format: format,
			Every:  every,
			Set:    sim.eng.Set(),
			Opts:   snapshotOpts(sim.cfg),
		}
	}

	prog := newProgress(c.Logger)
	var out engine.Sink
	if writer != nil {
		out = writer
	}
	if err := sim.run(ctx, o, out); err != nil {
		return err
	}
	f := sim.eng.Latest()

	if asJSON {
		data, err := sink.RenderJSON(sim.eng.Set(), f)
		if err != nil {
			return err
		}
		_, err = stdout.Write(append(data, '\n'))
		return err
	}

	prog.done("simulated", "ticks", sim.ticks)
	printSuccess("Simulated %d ticks from %s", sim.ticks, sim.source)
	printLayoutStats(sim.eng.Set(), sim.cached)
	printNewline()
	printFrame(f)
	if writer != nil {
		printNewline()
		printInfo("%d frames written", writer.Written())
		printFile(outDir)
	}
	return nil
}
