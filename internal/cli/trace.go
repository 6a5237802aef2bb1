package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/morphtree/pkg/config"
	morpherrors "github.com/matzehuels/morphtree/pkg/errors"
	"github.com/matzehuels/morphtree/pkg/gesture"
	"github.com/matzehuels/morphtree/pkg/trace"
)

// traceCommand creates the trace management command.
func (c *CLI) traceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Record, list and replay gesture traces",
		Long: `Manage recorded gesture traces.

Traces are sequences of hand samples. They are recorded live with
'serve --record' or 'preview --record', or from a script with
'trace record'. Replay one with 'simulate --trace NAME'.`,
	}

	cmd.AddCommand(c.traceRecordCommand())
	cmd.AddCommand(c.traceListCommand())
	cmd.AddCommand(c.traceShowCommand())
	cmd.AddCommand(c.traceDeleteCommand())

	return cmd
}

// traceRecordCommand creates the "trace record" subcommand.
func (c *CLI) traceRecordCommand() *cobra.Command {
	var script string

	cmd := &cobra.Command{
		Use:   "record NAME",
		Short: "Record a gesture script as a trace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTraceRecord(cmd.Context(), args[0], script)
		},
	}

	cmd.Flags().StringVarP(&script, "script", "s", "", `gesture script, e.g. "open@0.2/0.5:30,closed:60" (required)`)
	_ = cmd.MarkFlagRequired("script")

	return cmd
}

func (c *CLI) runTraceRecord(ctx context.Context, name, src string) error {
	if err := morpherrors.ValidateName(name); err != nil {
		return err
	}
	cfg, err := c.loadConfig(config.Flags{})
	if err != nil {
		return err
	}
	s, err := gesture.ParseScript(src)
	if err != nil {
		return err
	}

	rec := trace.NewRecorder(gesture.NewScriptTracker(s), trace.New(name, cfg.Gesture.Interval.Duration))
	if err := drain(ctx, rec); err != nil {
		return err
	}
	return c.saveTrace(ctx, cfg, rec.Trace())
}

// drain reads a finite tracker until it is exhausted.
func drain(ctx context.Context, t gesture.Tracker) error {
	for {
		if _, err := t.Detect(ctx); err != nil {
			if errors.Is(err, gesture.ErrExhausted) {
				return nil
			}
			return err
		}
	}
}

// saveTrace stores t in the configured trace store. Empty traces are
// reported and skipped.
func (c *CLI) saveTrace(ctx context.Context, cfg config.Config, t *trace.Trace) error {
	if len(t.Frames) == 0 {
		printWarning("Nothing recorded, trace %q not saved", t.Name)
		return nil
	}
	store, err := c.newTraceStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Save(ctx, t); err != nil {
		return fmt.Errorf("save trace: %w", err)
	}
	c.Logger.Debug("trace saved", "id", t.ID, "frames", len(t.Frames))
	printSuccess("Saved trace %s (%d frames, %s)", t.Name, len(t.Frames), t.Duration().Round(time.Millisecond))
	printDetail("ID: %s", t.ID)
	printNextStep("Replay it with", "morphtree simulate --trace "+t.Name)
	return nil
}

// traceListCommand creates the "trace list" subcommand.
func (c *CLI) traceListCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recorded traces",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withTraceStore(cmd.Context(), func(ctx context.Context, store trace.Store) error {
				list, err := store.List(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(list)
				}
				if len(list) == 0 {
					printInfo("No traces recorded")
					return nil
				}
				fmt.Fprintln(stdout, traceTable(list))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

// traceTable renders summaries as a bordered table.
func traceTable(list []trace.Summary) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	rows := make([][]string, len(list))
	for i, s := range list {
		rows[i] = []string{
			s.Name,
			shortID(s.ID),
			fmt.Sprint(s.Frames),
			s.Duration().Round(time.Millisecond).String(),
			s.CreatedAt.Local().Format("2006-01-02 15:04"),
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Name", "ID", "Frames", "Length", "Recorded").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 1 || col == 4 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// traceShowCommand creates the "trace show" subcommand.
func (c *CLI) traceShowCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:               "show NAME|ID",
		Short:             "Show a trace and its gesture timeline",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeTraceNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withTraceStore(cmd.Context(), func(ctx context.Context, store trace.Store) error {
				t, err := store.Load(ctx, args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(t)
				}
				printTrace(t)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full trace as JSON")
	return cmd
}

func printTrace(t *trace.Trace) {
	printKeyValue("name", t.Name)
	printKeyValue("id", t.ID)
	printKeyValue("recorded", t.CreatedAt.Local().Format(time.RFC3339))
	printKeyValue("frames", StyleNumber.Render(fmt.Sprint(len(t.Frames))))
	printKeyValue("with hand", StyleNumber.Render(fmt.Sprint(t.Present())))
	printKeyValue("interval", t.Interval.String())
	printKeyValue("length", t.Duration().Round(time.Millisecond).String())
	printKeyValue("timeline", timeline(t.Frames))
}

// timeline summarises frames as runs of classified poses in script
// notation, e.g. "open:30,closed:60,none:5".
func timeline(frames []gesture.Hand) string {
	type run struct {
		kind gesture.Kind
		n    int
	}
	var runs []run
	for _, h := range frames {
		kind := gesture.KindNone
		if sig := gesture.Classify(h); sig.Active {
			kind = gesture.KindOpen
			if sig.Target > 0.5 {
				kind = gesture.KindClosed
			}
		}
		if len(runs) > 0 && runs[len(runs)-1].kind == kind {
			runs[len(runs)-1].n++
			continue
		}
		runs = append(runs, run{kind: kind, n: 1})
	}

	parts := make([]string, len(runs))
	for i, r := range runs {
		parts[i] = fmt.Sprintf("%s:%d", r.kind, r.n)
	}
	return strings.Join(parts, ",")
}

// traceDeleteCommand creates the "trace delete" subcommand.
func (c *CLI) traceDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "delete NAME|ID",
		Aliases:           []string{"rm"},
		Short:             "Delete a trace",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeTraceNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withTraceStore(cmd.Context(), func(ctx context.Context, store trace.Store) error {
				if err := store.Delete(ctx, args[0]); err != nil {
					return err
				}
				printSuccess("Deleted trace %s", args[0])
				return nil
			})
		},
	}
}

func (c *CLI) withTraceStore(ctx context.Context, fn func(context.Context, trace.Store) error) error {
	cfg, err := c.loadConfig(config.Flags{})
	if err != nil {
		return err
	}
	store, err := c.newTraceStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(ctx, store)
}

func writeJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = stdout.Write(append(data, '\n'))
	return err
}
