package cli

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/matzehuels/morphtree/pkg/observability"
)

// benchHooks counts engine and cache events during a benchmark run.
type benchHooks struct {
	observability.NoopCacheHooks

	ticks     atomic.Int64
	tickNanos atomic.Int64
	classify  atomic.Int64
	layoutNs  atomic.Int64
	hits      atomic.Int64
	misses    atomic.Int64
}

func (h *benchHooks) OnLayoutBuilt(_ context.Context, _, _ int, _ uint64, d time.Duration) {
	h.layoutNs.Add(int64(d))
}

func (h *benchHooks) OnClassify(context.Context, bool, float64) { h.classify.Add(1) }

func (h *benchHooks) OnTick(_ context.Context, _ uint64, _ float64, d time.Duration) {
	h.ticks.Add(1)
	h.tickNanos.Add(int64(d))
}

func (h *benchHooks) OnCacheHit(context.Context, string)  { h.hits.Add(1) }
func (h *benchHooks) OnCacheMiss(context.Context, string) { h.misses.Add(1) }

// meanTick returns the average engine time per tick.
func (h *benchHooks) meanTick() time.Duration {
	n := h.ticks.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(h.tickNanos.Load() / n)
}

var (
	_ observability.EngineHooks = (*benchHooks)(nil)
	_ observability.CacheHooks  = (*benchHooks)(nil)
)

// benchCommand creates the bench command.
func (c *CLI) benchCommand() *cobra.Command {
	var (
		o          simOpts
		profileDir string
		memProfile bool
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure engine tick cost over a headless run",
		Long: `Run a headless simulation and report per-tick engine time.

With --profile-dir a CPU profile (or with --mem a heap profile) is written
there for 'go tool pprof'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBench(cmd.Context(), o, profileDir, memProfile)
		},
	}

	o.register(cmd)
	cmd.Flags().StringVar(&profileDir, "profile-dir", "", "write a pprof profile to this directory")
	cmd.Flags().BoolVar(&memProfile, "mem", false, "with --profile-dir, profile memory instead of CPU")

	return cmd
}

func (c *CLI) runBench(ctx context.Context, o simOpts, profileDir string, memProfile bool) error {
	if o.ticks <= 0 {
		o.ticks = 600
	}

	hooks := &benchHooks{}
	observability.SetEngineHooks(hooks)
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	sim, err := c.prepare(ctx, o)
	if err != nil {
		return err
	}

	if profileDir != "" {
		mode := profile.CPUProfile
		if memProfile {
			mode = profile.MemProfile
		}
		defer profile.Start(mode, profile.ProfilePath(profileDir), profile.Quiet, profile.NoShutdownHook).Stop()
	}

	start := time.Now()
	if err := sim.run(ctx, o, nil); err != nil {
		return err
	}
	wall := time.Since(start)

	set := sim.eng.Set()
	printSuccess("Ran %d ticks in %s", sim.ticks, wall.Round(time.Millisecond))
	printLayoutStats(set, sim.cached)
	printNewline()
	printKeyValue("entities", StyleNumber.Render(fmt.Sprint(set.Len())))
	printKeyValue("per tick", hooks.meanTick().String())
	if sim.ticks > 0 {
		printKeyValue("wall/tick", (wall / time.Duration(sim.ticks)).String())
		budget := time.Second / time.Duration(sim.eng.FPS())
		printKeyValue("budget", fmt.Sprintf("%s (%.0f%% used)", budget,
			100*float64(hooks.meanTick())/float64(budget)))
	}
	printKeyValue("samples", fmt.Sprint(hooks.classify.Load()))
	if d := hooks.layoutNs.Load(); d > 0 {
		printKeyValue("layout", time.Duration(d).Round(time.Microsecond).String())
	}
	printKeyValue("cache", fmt.Sprintf("%d hit, %d miss", hooks.hits.Load(), hooks.misses.Load()))
	if profileDir != "" {
		printFile(profileDir)
	}
	return nil
}
