package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/morphtree/pkg/config"
	"github.com/matzehuels/morphtree/pkg/errors"
	"github.com/matzehuels/morphtree/pkg/layout"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  config.Flags
		output string
		fresh  bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Build a layout and write it as JSON",
		Long: `Build the tree layout: foliage particles in a cone, ornaments on its
surface, the star topper, photo frames on a spiral and the halo strands.
Every entity carries a formed and a dispersed position.

Layouts depend only on their seed and counts, so they are cached locally
and rebuilt instantly on later runs. Use --fresh for a random seed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fresh {
				flags.Seed = layout.FreshSeed()
			}
			return c.runLayout(cmd.Context(), flags, output)
		},
	}

	layoutFlags(cmd, &flags)
	cmd.Flags().StringVarP(&output, "output", "o", "layout.json", `output file ("-" for stdout)`)
	cmd.Flags().BoolVar(&fresh, "fresh", false, "use a random seed")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, flags config.Flags, output string) error {
	cfg, err := c.loadConfig(flags)
	if err != nil {
		return err
	}

	spinner := newSpinner(ctx, "Building layout...")
	spinner.Start()
	set, cached, err := c.loadLayout(ctx, cfg)
	spinner.Stop()
	if err != nil {
		return fmt.Errorf("build layout: %w", err)
	}

	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	if output == "-" {
		_, err := stdout.Write(append(data, '\n'))
		return err
	}
	if err := errors.ValidatePath(output); err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Layout built (seed %d)", set.Seed)
	printFile(output)
	printLayoutStats(set, cached)
	printNewline()
	printNextStep("Render", fmt.Sprintf("%s render --seed %d", appName, set.Seed))
	return nil
}
