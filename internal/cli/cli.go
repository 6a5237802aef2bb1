package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/morphtree/pkg/buildinfo"
	"github.com/matzehuels/morphtree/pkg/cache"
	"github.com/matzehuels/morphtree/pkg/config"
	"github.com/matzehuels/morphtree/pkg/engine"
	"github.com/matzehuels/morphtree/pkg/gesture"
	"github.com/matzehuels/morphtree/pkg/layout"
	"github.com/matzehuels/morphtree/pkg/morph"
	"github.com/matzehuels/morphtree/pkg/trace"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogError = log.ErrorLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	profile    string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Morphtree turns hand gestures into a morphing particle tree",
		Long: `Morphtree drives a procedural Christmas tree of particles, ornaments and
photo frames with hand gestures. A pinch re-forms the tree, an open hand
scatters it, and moving the hand steers the scattered cloud.

Gestures come from a browser hand tracker posting landmarks to 'morphtree serve',
from recorded traces, or from scripts such as "open:60,closed@0.2/0.5:120".`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ~/.config/morphtree/config.toml)")
	root.PersistentFlags().StringVar(&c.profile, "profile", "", "cache key scope, for keeping several setups apart")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.simulateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.traceCommand())
	root.AddCommand(c.benchCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the config file and applies flag overrides.
func (c *CLI) loadConfig(flags config.Flags) (config.Config, error) {
	cfg, path, err := config.LoadOrDefault(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	cfg.Resolve(flags)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// layoutFlags registers the layout count flags shared by several commands.
func layoutFlags(cmd *cobra.Command, f *config.Flags) {
	cmd.Flags().Uint64Var(&f.Seed, "seed", 0, "layout seed (default from config, 42)")
	cmd.Flags().IntVar(&f.Foliage, "foliage", 0, "number of foliage particles")
	cmd.Flags().IntVar(&f.Ornaments, "ornaments", 0, "number of ornaments")
	cmd.Flags().IntVar(&f.Photos, "photos", 0, "number of photo frames")
	cmd.Flags().IntVar(&f.Strands, "strands", 0, "number of halo strands")
	cmd.Flags().BoolVar(&f.NoCache, "no-cache", false, "disable the layout cache")
}

// =============================================================================
// Backends
// =============================================================================

func (c *CLI) newCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisConfig{URL: cfg.Cache.RedisURL, Prefix: cfg.Cache.Prefix})
	}
	if cfg.Cache.Dir == "" {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(cfg.Cache.Dir)
}

func (c *CLI) newKeyer() cache.Keyer {
	if c.profile == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), "profile:"+c.profile+":")
}

func (c *CLI) newTraceStore(ctx context.Context, cfg config.Config) (trace.Store, error) {
	if cfg.Trace.Backend == "mongo" {
		return trace.NewMongoStore(ctx, trace.MongoConfig{
			URI:        cfg.Trace.MongoURI,
			Database:   cfg.Trace.Database,
			Collection: cfg.Trace.Collection,
		})
	}
	return trace.NewFileStore(cfg.Trace.Dir)
}

// loadLayout builds or fetches the configured layout.
func (c *CLI) loadLayout(ctx context.Context, cfg config.Config) (*layout.Set, bool, error) {
	store, err := c.newCache(ctx, cfg)
	if err != nil {
		c.Logger.Warn("cache unavailable, building without it", "error", err)
		store = cache.NewNullCache()
	}
	defer store.Close()

	loader := &engine.LayoutLoader{
		Cache:  store,
		Keyer:  c.newKeyer(),
		TTL:    cfg.Cache.TTL.Duration,
		Logger: c.Logger,
	}
	return loader.Load(ctx, cfg.LayoutOptions())
}

// newEngine wires a state and an engine over set.
func (c *CLI) newEngine(set *layout.Set, cfg config.Config) *engine.Engine {
	opts := cfg.EngineOptions()
	opts.Logger = c.Logger
	return engine.New(set, morph.NewState(cfg.MorphOptions()), opts)
}

// newSampler wires a sampler for tracker into eng's state.
func (c *CLI) newSampler(tracker gesture.Tracker, eng *engine.Engine, cfg config.Config) *gesture.Sampler {
	opts := cfg.SamplerOptions()
	opts.Logger = c.Logger
	return gesture.NewSampler(tracker, eng.State(), opts)
}

// =============================================================================
// Gesture Sources
// =============================================================================

// sourceFlags selects a finite gesture source for headless commands.
type sourceFlags struct {
	script string
	trace  string
	loop   bool
}

func (s *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.script, "script", "s", "", `gesture script, e.g. "open:60,closed@0.5/0.5:120"`)
	cmd.Flags().StringVar(&s.trace, "trace", "", "replay a recorded trace by name or ID")
	cmd.Flags().BoolVar(&s.loop, "loop", false, "replay the trace endlessly (needs --ticks)")
}

// tracker opens the selected source. With neither flag set it returns an
// open-then-closed demo script.
func (c *CLI) tracker(ctx context.Context, cfg config.Config, s sourceFlags) (gesture.Tracker, string, error) {
	if s.script != "" && s.trace != "" {
		return nil, "", fmt.Errorf("--script and --trace are mutually exclusive")
	}
	if s.trace != "" {
		store, err := c.newTraceStore(ctx, cfg)
		if err != nil {
			return nil, "", err
		}
		defer store.Close()
		t, err := store.Load(ctx, s.trace)
		if err != nil {
			return nil, "", err
		}
		return t.Tracker(s.loop), "trace " + t.Name, nil
	}

	src := s.script
	if src == "" {
		src = defaultScript
	}
	script, err := gesture.ParseScript(src)
	if err != nil {
		return nil, "", err
	}
	return gesture.NewScriptTracker(script), "script " + script.String(), nil
}

// defaultScript scatters the tree for two seconds and re-forms it.
const defaultScript = "open:60,closed:60"

// =============================================================================
// Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{"svg"}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// stdout is where command results are written; tests replace it.
var stdout io.Writer = os.Stdout
