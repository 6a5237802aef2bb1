package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/morphtree/pkg/config"
	"github.com/matzehuels/morphtree/pkg/engine"
	"github.com/matzehuels/morphtree/pkg/errors"
	"github.com/matzehuels/morphtree/pkg/gesture"
	"github.com/matzehuels/morphtree/pkg/layout"
	"github.com/matzehuels/morphtree/pkg/sink"
	"github.com/matzehuels/morphtree/pkg/trace"
)

// Preview styles
var (
	previewGaugeStyle = lipgloss.NewStyle().Foreground(colorGold)
	previewHelpStyle  = lipgloss.NewStyle().Foreground(colorDim)
	previewPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim)
)

const (
	previewStep    = 0.05 // pointer movement per arrow key
	previewMinCols = 20
	previewMinRows = 8
	gaugeWidth     = 30
)

// previewGlyphs maps categories to terminal glyphs.
var previewGlyphs = map[layout.Category]rune{
	layout.Particle: '·',
	layout.Sphere:   'o',
	layout.Box:      '■',
	layout.Gem:      '◆',
	layout.Topper:   '★',
	layout.Photo:    '▣',
}

// =============================================================================
// PreviewModel - Interactive terminal preview
// =============================================================================

type previewTickMsg time.Time

// PreviewModel is the bubbletea model for the keyboard-driven preview.
// Keys pose a synthetic hand, which goes through the same sampler and
// classifier as a real tracker.
type PreviewModel struct {
	ctx      context.Context
	eng      *engine.Engine
	sampler  *gesture.Sampler
	tracker  *gesture.LatestTracker
	interval time.Duration
	every    int
	ticks    int

	kind gesture.Kind
	x, y float64

	frame  *engine.Frame
	width  int
	height int

	spring   harmonica.Spring
	gauge    float64
	gaugeVel float64

	styles map[string]lipgloss.Style
	err    error
}

// NewPreviewModel wires a model around an engine. The sampler must poll
// tracker.
func NewPreviewModel(ctx context.Context, eng *engine.Engine, sampler *gesture.Sampler, tracker *gesture.LatestTracker) PreviewModel {
	interval := eng.Interval()
	return PreviewModel{
		ctx:      ctx,
		eng:      eng,
		sampler:  sampler,
		tracker:  tracker,
		interval: interval,
		every:    max(1, int(sampler.Interval()/interval)),
		kind:     gesture.KindNone,
		x:        0.5,
		y:        0.5,
		width:    80,
		height:   24,
		spring:   harmonica.NewSpring(harmonica.FPS(eng.FPS()), 6.0, 0.7),
		styles:   make(map[string]lipgloss.Style),
	}
}

func (m PreviewModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return previewTickMsg(t) })
}

func (m PreviewModel) Init() tea.Cmd {
	m.pose()
	return m.tick()
}

// pose publishes the current key state as a synthetic hand.
func (m *PreviewModel) pose() {
	m.tracker.Set(gesture.SyntheticHand(m.kind, m.x, m.y))
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "o":
			m.kind = gesture.KindOpen
		case "c":
			m.kind = gesture.KindClosed
		case "n", " ":
			m.kind = gesture.KindNone
		case "left", "h":
			m.x = clampUnit(m.x - previewStep)
		case "right", "l":
			m.x = clampUnit(m.x + previewStep)
		case "up", "k":
			m.y = clampUnit(m.y - previewStep)
		case "down", "j":
			m.y = clampUnit(m.y + previewStep)
		case "]":
			m.eng.Focus().Next()
			return m, nil
		case "[":
			m.eng.Focus().Prev()
			return m, nil
		default:
			return m, nil
		}
		m.pose()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case previewTickMsg:
		if m.ticks%m.every == 0 {
			if _, err := m.sampler.SampleOnce(m.ctx); err != nil {
				m.err = err
				return m, tea.Quit
			}
		}
		m.ticks++
		m.frame = m.eng.Tick(m.interval)
		m.gauge, m.gaugeVel = m.spring.Update(m.gauge, m.gaugeVel, m.frame.Current)
		return m, m.tick()
	}
	return m, nil
}

func (m PreviewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Morphtree Preview"))
	b.WriteString("\n")
	b.WriteString(previewHelpStyle.Render("o open  c pinch  n/space no hand  ←↑↓→ move  [ ] photos  q quit"))
	b.WriteString("\n")

	if m.frame == nil {
		return b.String()
	}

	cols := max(previewMinCols, m.width-2)
	rows := max(previewMinRows, m.height-8)
	b.WriteString(previewPanelStyle.Render(m.scatter(cols, rows)))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

// scatter draws the projected frame into a cols×rows character grid.
// Terminal cells are about twice as tall as wide, so x is projected at half
// resolution and stretched.
func (m PreviewModel) scatter(cols, rows int) string {
	dots := sink.Project(m.eng.Set(), m.frame, sink.View{
		Width:  cols / 2,
		Height: rows,
		Units:  sink.DefaultViewHeight,
		Ribbon: true,
	})

	type cell struct {
		glyph rune
		color string
	}
	grid := make([][]cell, rows)
	for i := range grid {
		grid[i] = make([]cell, cols)
	}
	// Far to near, so nearer dots overwrite.
	for _, d := range dots {
		c, r := int(d.X*2), int(d.Y)
		if c < 0 || c >= cols || r < 0 || r >= rows {
			continue
		}
		g := previewGlyphs[d.Cat]
		if d.Strand {
			g = '~'
		}
		grid[r][c] = cell{glyph: g, color: d.Color}
	}

	var b strings.Builder
	for r, line := range grid {
		if r > 0 {
			b.WriteByte('\n')
		}
		for _, c := range line {
			if c.glyph == 0 {
				b.WriteByte(' ')
				continue
			}
			b.WriteString(m.style(c.color).Render(string(c.glyph)))
		}
	}
	return b.String()
}

func (m PreviewModel) style(color string) lipgloss.Style {
	s, ok := m.styles[color]
	if !ok {
		s = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
		m.styles[color] = s
	}
	return s
}

func (m PreviewModel) statusLine() string {
	f := m.frame
	filled := int(clampUnit(m.gauge) * gaugeWidth)
	gauge := previewGaugeStyle.Render(strings.Repeat("█", filled)) +
		StyleDim.Render(strings.Repeat("░", gaugeWidth-filled))

	focus := "-"
	if i, ok := m.eng.Focus().Index(); ok {
		focus = fmt.Sprint(i)
	}
	return fmt.Sprintf("%s %s  %s  %s %s  %s %s",
		gauge,
		StyleNumber.Render(fmt.Sprintf("%.2f", f.Current)),
		StyleValue.Render(f.Status),
		StyleDim.Render("hand"), StyleValue.Render(string(m.kind)),
		StyleDim.Render("photo"), StyleValue.Render(focus),
	)
}

func clampUnit(v float64) float64 {
	return min(1, max(0, v))
}

// =============================================================================
// Command
// =============================================================================

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		flags  config.Flags
		record string
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Drive the tree from the keyboard in the terminal",
		Long: `Open an interactive terminal view of the tree. Keys stand in for a hand:
'o' opens it, 'c' pinches, the arrow keys move it.

With --record the session is saved as a trace that 'simulate --trace'
and 'render --trace' can replay.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPreview(cmd.Context(), flags, record)
		},
	}

	layoutFlags(cmd, &flags)
	cmd.Flags().IntVar(&flags.FPS, "fps", 30, "frame rate")
	cmd.Flags().StringVar(&record, "record", "", "record the session as a named trace")

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, flags config.Flags, record string) error {
	if record != "" {
		if err := errors.ValidateName(record); err != nil {
			return err
		}
	}
	cfg, err := c.loadConfig(flags)
	if err != nil {
		return err
	}
	set, _, err := c.loadLayout(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build layout: %w", err)
	}

	latest := gesture.NewLatestTracker()
	var (
		tracker  gesture.Tracker = latest
		recorder *trace.Recorder
	)
	if record != "" {
		recorder = trace.NewRecorder(latest, trace.New(record, cfg.Gesture.Interval.Duration))
		tracker = recorder
	}

	eng := c.newEngine(set, cfg)
	sampler := c.newSampler(tracker, eng, cfg)

	// The log would tear the alternate screen.
	level := c.Logger.GetLevel()
	c.SetLogLevel(LogError)
	model := NewPreviewModel(ctx, eng, sampler, latest)
	final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	c.SetLogLevel(level)
	if err != nil {
		return err
	}
	if m, ok := final.(PreviewModel); ok && m.err != nil {
		return m.err
	}

	if recorder == nil {
		return nil
	}
	return c.saveTrace(ctx, cfg, recorder.Trace())
}
