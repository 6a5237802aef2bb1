package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/morphtree/pkg/cache"
	"github.com/matzehuels/morphtree/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout and snapshot cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheStatsCommand())

	return cmd
}

// openCache opens the configured backend for maintenance. A disabled cache
// yields a nil cache and no error.
func (c *CLI) openCache(ctx context.Context) (cache.Cache, config.Config, error) {
	cfg, err := c.loadConfig(config.Flags{})
	if err != nil {
		return nil, cfg, err
	}
	if cfg.Cache.Backend == "none" {
		return nil, cfg, nil
	}
	store, err := c.newCache(ctx, cfg)
	if err != nil {
		return nil, cfg, fmt.Errorf("open cache: %w", err)
	}
	return store, cfg, nil
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached layout and snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, cfg, err := c.openCache(ctx)
			if err != nil {
				return err
			}
			if store == nil {
				printInfo("Cache is disabled")
				return nil
			}
			defer store.Close()

			var n int
			switch s := store.(type) {
			case *cache.FileCache:
				n, err = s.Clear()
			case *cache.RedisCache:
				n, err = s.Clear(ctx)
			default:
				printInfo("Nothing to clear")
				return nil
			}
			if err != nil {
				return err
			}

			printSuccess("Cleared %d cached entries", n)
			printDetail("Backend: %s", cacheLocation(cfg))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(config.Flags{})
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, cacheLocation(cfg))
			return nil
		},
	}
}

// cacheStatsCommand creates the "cache stats" subcommand.
func (c *CLI) cacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show how much the file cache holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := c.openCache(cmd.Context())
			if err != nil {
				return err
			}
			if store == nil {
				printInfo("Cache is disabled")
				return nil
			}
			defer store.Close()

			fc, ok := store.(*cache.FileCache)
			if !ok {
				printInfo("Stats are only kept for the file cache")
				printDetail("Backend: %s", cacheLocation(cfg))
				return nil
			}
			entries, size, err := fc.Stats()
			if err != nil {
				return err
			}
			printKeyValue("directory", fc.Dir())
			printKeyValue("entries", StyleNumber.Render(fmt.Sprint(entries)))
			printKeyValue("size", formatBytes(size))
			return nil
		},
	}
}

// cacheLocation describes where the configured cache lives.
func cacheLocation(cfg config.Config) string {
	switch cfg.Cache.Backend {
	case "redis":
		return "redis " + cfg.Cache.Prefix + "*"
	case "none":
		return "disabled"
	}
	return cfg.Cache.Dir
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
