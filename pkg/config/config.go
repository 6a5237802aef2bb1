// Package config loads morphtree settings from a TOML file.
//
// [Default] is the single source of truth for every default value. A config
// file only needs the keys it changes; unknown keys are rejected so typos do
// not silently fall back to defaults. CLI flags are applied last through
// [Config.Resolve].
//
//	[layout]
//	seed = 7
//	ornaments = 600
//
//	[gesture]
//	interval = "50ms"
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/morphtree/pkg/blend"
	"github.com/matzehuels/morphtree/pkg/engine"
	"github.com/matzehuels/morphtree/pkg/errors"
	"github.com/matzehuels/morphtree/pkg/gesture"
	"github.com/matzehuels/morphtree/pkg/layout"
	"github.com/matzehuels/morphtree/pkg/morph"
)

// AppName names the config, cache and data directories.
const AppName = "morphtree"

// FileName is the default config file name inside the config directory.
const FileName = "config.toml"

// Duration is a time.Duration written as a Go duration string ("33ms").
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config is the complete settings tree.
type Config struct {
	Engine  Engine  `toml:"engine"`
	Gesture Gesture `toml:"gesture"`
	Layout  Layout  `toml:"layout"`
	Blend   Blend   `toml:"blend"`
	Render  Render  `toml:"render"`
	Cache   Cache   `toml:"cache"`
	Trace   Trace   `toml:"trace"`
	Server  Server  `toml:"server"`
}

// Engine configures the frame loop and morph state.
type Engine struct {
	FPS             int     `toml:"fps"`
	Alpha           float64 `toml:"alpha"`
	FormedThreshold float64 `toml:"formed_threshold"`
	AutoRotateSpeed float64 `toml:"auto_rotate_speed"`
}

// Gesture configures classification and sampling.
type Gesture struct {
	PinchThreshold float64  `toml:"pinch_threshold"`
	Interval       Duration `toml:"interval"`
}

// Layout selects layout counts and seed.
type Layout struct {
	Seed      uint64 `toml:"seed"`
	Foliage   int    `toml:"foliage"`
	Ornaments int    `toml:"ornaments"`
	Photos    int    `toml:"photos"`
	Strands   int    `toml:"strands"`
	Topper    bool   `toml:"topper"`
}

// Blend tunes per-category follow rates and lag.
type Blend struct {
	OrnamentFollow float64 `toml:"ornament_follow"`
	TopperFollow   float64 `toml:"topper_follow"`
	PhotoFollow    float64 `toml:"photo_follow"`
	LagStep        float64 `toml:"lag_step"`
	LagPeriod      int     `toml:"lag_period"`
}

// Render configures snapshot export.
type Render struct {
	Format      string `toml:"format"`
	Width       int    `toml:"width"`
	Height      int    `toml:"height"`
	Supersample int    `toml:"supersample"`
	Background  string `toml:"background"`
}

// Cache selects the layout/artifact cache backend.
type Cache struct {
	// Backend is "file", "redis" or "none".
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	Prefix   string   `toml:"prefix"`
	TTL      Duration `toml:"ttl"`
}

// Trace selects where gesture recordings are stored.
type Trace struct {
	// Backend is "file" or "mongo".
	Backend    string `toml:"backend"`
	Dir        string `toml:"dir"`
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Server configures the HTTP transport.
type Server struct {
	Addr            string   `toml:"addr"`
	ReadTimeout     Duration `toml:"read_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	MaxBodyBytes    int64    `toml:"max_body_bytes"`
}

// Default returns the built-in configuration.
func Default() Config {
	lo := layout.DefaultOptions()
	return Config{
		Engine: Engine{
			FPS:             engine.DefaultFPS,
			Alpha:           morph.AlphaForming,
			FormedThreshold: morph.FormedThreshold,
			AutoRotateSpeed: engine.DefaultAutoRotateSpeed,
		},
		Gesture: Gesture{
			PinchThreshold: gesture.DefaultPinchThreshold,
			Interval:       Duration{gesture.DefaultInterval},
		},
		Layout: Layout{
			Seed:      lo.Seed,
			Foliage:   lo.Foliage,
			Ornaments: lo.Ornaments,
			Photos:    lo.Photos,
			Strands:   lo.Strands,
			Topper:    lo.Topper,
		},
		Blend: Blend{
			OrnamentFollow: blend.DefaultOrnamentRule.Follow,
			TopperFollow:   blend.DefaultTopperRule.Follow,
			PhotoFollow:    blend.DefaultPhotoRule.Follow,
			LagStep:        blend.LagStep,
			LagPeriod:      blend.LagPeriod,
		},
		Render: Render{
			Format:      "svg",
			Width:       800,
			Height:      800,
			Supersample: 2,
			Background:  "#05070d",
		},
		Cache: Cache{
			Backend: "file",
			Prefix:  AppName + ":",
			TTL:     Duration{7 * 24 * time.Hour},
		},
		Trace: Trace{
			Backend:    "file",
			Database:   AppName,
			Collection: "traces",
		},
		Server: Server{
			Addr:            "127.0.0.1:8080",
			ReadTimeout:     Duration{10 * time.Second},
			ShutdownTimeout: Duration{5 * time.Second},
			MaxBodyBytes:    64 << 10,
		},
	}
}

// Load reads path over the defaults. Keys absent from the file keep their
// default values; unknown keys are an error.
func Load(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOrDefault loads path when it exists and returns the defaults when it
// does not. An empty path checks the default location.
func LoadOrDefault(path string) (Config, string, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Default(), "", nil
		}
		path = p
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return Default(), "", nil
		}
	}
	cfg, err := Load(path)
	return cfg, path, err
}

// Write encodes c as TOML.
func (c Config) Write(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Validate checks every value that has a constrained range.
func (c Config) Validate() error {
	if c.Engine.FPS < 1 || c.Engine.FPS > 1000 {
		return errors.New(errors.ErrCodeInvalidConfig, "engine.fps must be in [1, 1000] (got %d)", c.Engine.FPS)
	}
	rates := []struct {
		what string
		v    float64
	}{
		{"engine.alpha", c.Engine.Alpha},
		{"blend.ornament_follow", c.Blend.OrnamentFollow},
		{"blend.topper_follow", c.Blend.TopperFollow},
		{"blend.photo_follow", c.Blend.PhotoFollow},
	}
	for _, r := range rates {
		if err := errors.ValidateRate(r.what, r.v); err != nil {
			return err
		}
	}
	if err := errors.ValidateUnit("engine.formed_threshold", c.Engine.FormedThreshold); err != nil {
		return err
	}
	if err := errors.ValidateUnit("gesture.pinch_threshold", c.Gesture.PinchThreshold); err != nil {
		return err
	}
	if err := errors.ValidateUnit("blend.lag_step", c.Blend.LagStep); err != nil {
		return err
	}
	if c.Blend.LagPeriod < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "blend.lag_period must be positive")
	}
	if c.Gesture.Interval.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "gesture.interval must be positive")
	}
	if err := c.LayoutOptions().Validate(); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case "file", "none":
	case "redis":
		if err := errors.ValidateURL(c.Cache.RedisURL, "redis", "rediss"); err != nil {
			return err
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be file, redis or none (got %q)", c.Cache.Backend)
	}
	switch c.Trace.Backend {
	case "file":
	case "mongo":
		if err := errors.ValidateURL(c.Trace.MongoURI, "mongodb", "mongodb+srv"); err != nil {
			return err
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "trace.backend must be file or mongo (got %q)", c.Trace.Backend)
	}
	if c.Render.Width < 1 || c.Render.Height < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "render size must be positive")
	}
	if c.Render.Supersample < 1 || c.Render.Supersample > 4 {
		return errors.New(errors.ErrCodeInvalidConfig, "render.supersample must be in [1, 4]")
	}
	return nil
}

// =============================================================================
// Conversions
// =============================================================================

// LayoutOptions converts the [layout] section.
func (c Config) LayoutOptions() layout.Options {
	return layout.Options{
		Seed:      c.Layout.Seed,
		Foliage:   c.Layout.Foliage,
		Ornaments: c.Layout.Ornaments,
		Photos:    c.Layout.Photos,
		Strands:   c.Layout.Strands,
		Topper:    c.Layout.Topper,
	}
}

// MorphOptions converts the [engine] section into state options.
func (c Config) MorphOptions() morph.Options {
	return morph.Options{
		Alpha:           c.Engine.Alpha,
		FormedThreshold: c.Engine.FormedThreshold,
	}
}

// EngineOptions converts the [engine] and [blend] sections.
func (c Config) EngineOptions() engine.Options {
	ornament := blend.DefaultOrnamentRule
	ornament.Follow = c.Blend.OrnamentFollow
	ornament.LagStep = c.Blend.LagStep
	ornament.LagPeriod = c.Blend.LagPeriod

	topper := blend.DefaultTopperRule
	topper.Follow = c.Blend.TopperFollow

	photo := blend.DefaultPhotoRule
	photo.Follow = c.Blend.PhotoFollow

	return engine.Options{
		FPS:             c.Engine.FPS,
		AutoRotateSpeed: c.Engine.AutoRotateSpeed,
		Rules: map[layout.Category]blend.Rule{
			layout.Sphere: ornament,
			layout.Box:    ornament,
			layout.Gem:    ornament,
			layout.Topper: topper,
			layout.Photo:  photo,
		},
	}
}

// SamplerOptions converts the [gesture] section.
func (c Config) SamplerOptions() gesture.SamplerOptions {
	return gesture.SamplerOptions{
		Interval:   c.Gesture.Interval.Duration,
		Classifier: &gesture.Classifier{PinchThreshold: c.Gesture.PinchThreshold},
	}
}

// =============================================================================
// Flags
// =============================================================================

// Flags holds CLI flag values that override config file settings.
// Zero values leave the file value in place.
type Flags struct {
	Seed      uint64
	Foliage   int
	Ornaments int
	Photos    int
	Strands   int
	FPS       int
	Alpha     float64
	NoCache   bool
	CacheDir  string
	TraceDir  string
	Addr      string
	Format    string
	Width     int
	Height    int
}

// Resolve applies flags and fills paths that are still empty.
func (c *Config) Resolve(f Flags) {
	if f.Seed != 0 {
		c.Layout.Seed = f.Seed
	}
	if f.Foliage > 0 {
		c.Layout.Foliage = f.Foliage
	}
	if f.Ornaments > 0 {
		c.Layout.Ornaments = f.Ornaments
	}
	if f.Photos > 0 {
		c.Layout.Photos = f.Photos
	}
	if f.Strands > 0 {
		c.Layout.Strands = f.Strands
	}
	if f.FPS > 0 {
		c.Engine.FPS = f.FPS
	}
	if f.Alpha > 0 {
		c.Engine.Alpha = f.Alpha
	}
	if f.NoCache {
		c.Cache.Backend = "none"
	}
	if f.CacheDir != "" {
		c.Cache.Dir = f.CacheDir
	}
	if f.TraceDir != "" {
		c.Trace.Dir = f.TraceDir
	}
	if f.Addr != "" {
		c.Server.Addr = f.Addr
	}
	if f.Format != "" {
		c.Render.Format = f.Format
	}
	if f.Width > 0 {
		c.Render.Width = f.Width
	}
	if f.Height > 0 {
		c.Render.Height = f.Height
	}

	if c.Cache.Dir == "" {
		if dir, err := CacheDir(); err == nil {
			c.Cache.Dir = dir
		}
	}
	if c.Trace.Dir == "" {
		if dir, err := DataDir(); err == nil {
			c.Trace.Dir = filepath.Join(dir, "traces")
		}
	}
}

// =============================================================================
// Paths
// =============================================================================

// DefaultPath returns the config file location (~/.config/morphtree/config.toml).
func DefaultPath() (string, error) {
	dir, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// CacheDir returns the cache directory (~/.cache/morphtree).
func CacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// DataDir returns the data directory (~/.local/share/morphtree).
func DataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, AppName), nil
}
