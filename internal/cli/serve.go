package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/morphtree/pkg/config"
	"github.com/matzehuels/morphtree/pkg/engine"
	"github.com/matzehuels/morphtree/pkg/errors"
	"github.com/matzehuels/morphtree/pkg/gesture"
	"github.com/matzehuels/morphtree/pkg/server"
	"github.com/matzehuels/morphtree/pkg/trace"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags  config.Flags
		record string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the engine and accept hand landmarks over HTTP",
		Long: `Run the engine in real time and serve it over HTTP.

A browser-side hand tracker posts landmarks to /v1/landmarks. The morph
state, the latest frame and rendered snapshots are available under /v1.

With --record every sampled hand is kept and saved as a trace on shutdown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), flags, record)
		},
	}

	layoutFlags(cmd, &flags)
	cmd.Flags().StringVar(&flags.Addr, "addr", "", "listen address (default 127.0.0.1:8080)")
	cmd.Flags().IntVar(&flags.FPS, "fps", 0, "frame rate (default 60)")
	cmd.Flags().StringVar(&record, "record", "", "record the session as a named trace")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, flags config.Flags, record string) error {
	if record != "" {
		if err := errors.ValidateName(record); err != nil {
			return err
		}
	}
	cfg, err := c.loadConfig(flags)
	if err != nil {
		return err
	}

	set, cached, err := c.loadLayout(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build layout: %w", err)
	}
	printLayoutStats(set, cached)

	latest := gesture.NewLatestTracker()
	var (
		tracker  gesture.Tracker = latest
		recorder *trace.Recorder
	)
	if record != "" {
		recorder = trace.NewRecorder(latest, trace.New(record, cfg.Gesture.Interval.Duration))
		tracker = recorder
	}

	var traces trace.Store
	if store, err := c.newTraceStore(ctx, cfg); err != nil {
		c.Logger.Warn("trace store unavailable", "error", err)
	} else {
		traces = store
		defer store.Close()
	}

	eng := c.newEngine(set, cfg)
	sampler := c.newSampler(tracker, eng, cfg)
	srv := server.New(eng, latest, server.Options{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout.Duration,
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Duration,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		Snapshot:        snapshotOpts(cfg),
		Traces:          traces,
		Logger:          c.Logger,
	})

	printInfo("Serving on http://%s", srv.Addr())
	printNextStep("Post landmarks to", "http://"+srv.Addr()+"/v1/landmarks")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return engine.RunWithSampler(gctx, eng, sampler, nil)
	})
	g.Go(func() error {
		return srv.ListenAndServe(gctx)
	})
	err = g.Wait()

	if recorder != nil {
		if serr := c.saveTrace(context.WithoutCancel(ctx), cfg, recorder.Trace()); serr != nil {
			c.Logger.Error("save trace", "error", serr)
		}
	}
	return err
}
