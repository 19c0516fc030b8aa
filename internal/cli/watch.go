package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/wordcanvas/pkg/actions"
	"github.com/matzehuels/wordcanvas/pkg/canvas"
	"github.com/matzehuels/wordcanvas/pkg/pipeline"
	"github.com/matzehuels/wordcanvas/pkg/render/sink"
	"github.com/matzehuels/wordcanvas/pkg/scene"
)

// watchCommand creates the watch command that follows a live canvas.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		baseURL  string
		snapshot string
		interval time.Duration
		speed    float64
		plain    bool
	)

	cmd := &cobra.Command{
		Use:   "watch <canvas-id>",
		Short: "Follow a remote canvas as it is drawn",
		Long: `Follow a remote canvas as it is drawn.

The history is polled and every new action is replayed and revealed one
draw command at a time, paced per action and scaled by --speed. When the watch ends (q, ctrl+c or a terminal
action) the canvas is written to a snapshot file, <canvas-id>.png unless
--snapshot says otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.mergeOptions(pipeline.Options{Speed: speed})
			opts.CanvasID = args[0]
			if err := opts.ValidateForReplay(); err != nil {
				return err
			}
			if interval <= 0 {
				interval = c.Config.API.PollInterval
			}
			if snapshot == "" {
				snapshot = args[0] + ".png"
			}
			return c.runWatch(cmd.Context(), baseURL, snapshot, interval, opts, plain)
		},
	}

	cmd.Flags().StringVar(&baseURL, "api", "", "canvas server URL (default from config)")
	cmd.Flags().StringVarP(&snapshot, "snapshot", "o", "", "snapshot file written on exit (.png, .svg, .pdf, .json)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "poll interval (default from config)")
	cmd.Flags().Float64Var(&speed, "speed", 0, "drawing speed multiplier, larger is slower (default from config)")
	cmd.Flags().BoolVar(&plain, "plain", false, "log progress instead of the interactive view")

	return cmd
}

// runWatch drives a watcher, either through the bubbletea view or plain
// logging, and writes the snapshot once it stops.
func (c *CLI) runWatch(ctx context.Context, baseURL, snapshot string, interval time.Duration, opts pipeline.Options, plain bool) error {
	client, err := c.newClient(baseURL, nil)
	if err != nil {
		return err
	}
	meta, err := client.Metadata(ctx, opts.CanvasID)
	if err != nil {
		return err
	}
	pipeline.ApplyMetadata(&opts, meta)
	opts.SetReplayDefaults()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := newWatcher(opts)
	poller := canvas.NewPoller(client, opts.CanvasID,
		canvas.WithInterval(interval),
		canvas.WithPollerLogger(c.Logger))

	if plain {
		w.send = func(msg tea.Msg) { logWatchMsg(c, msg) }
		w.run(ctx, poller.Start(ctx))
		return writeSnapshot(w.state.Scene, snapshot)
	}

	p := tea.NewProgram(newWatchModel(opts.SceneName(), opts.Width, opts.Height), tea.WithContext(ctx))
	w.send = p.Send

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.run(ctx, poller.Start(ctx))
	}()
	_, runErr := p.Run()
	cancel()
	wg.Wait()
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return runErr
	}

	return writeSnapshot(w.state.Scene, snapshot)
}

// writeSnapshot renders sc in the format named by the extension of path.
func writeSnapshot(sc *scene.Scene, path string) error {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	data, err := sink.Render(sc, format, sink.Options{})
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	printSuccess("Snapshot written")
	printFile(path)
	return nil
}

func logWatchMsg(c *CLI, msg tea.Msg) {
	switch m := msg.(type) {
	case batchMsg:
		if m.err != nil {
			c.Logger.Warn("poll failed", "err", m.err)
			return
		}
		c.Logger.Info("new actions", "count", m.entries, "total", m.total)
	case drawnMsg:
		c.Logger.Debug(describeCommand(m.cmd))
	case endedMsg:
		c.Logger.Info("history ended")
	}
}

// =============================================================================
// Watcher - replays polled batches
// =============================================================================

// Messages sent from the watcher to the view.
type (
	batchMsg struct {
		entries int
		total   int
		stats   actions.Stats
		err     error
	}
	drawnMsg struct{ cmd scene.Command }
	endedMsg struct{}
)

// watcher replays batches into its own state and reveals the resulting
// commands through send. Only run touches the state until it returns.
type watcher struct {
	state *actions.State
	reg   *actions.Registry
	pace  func(action string) time.Duration
	send  func(tea.Msg)
}

// drawnSpan is the run of scene commands one entry drew.
type drawnSpan struct {
	action   string
	from, to int
}

func newWatcher(opts pipeline.Options) *watcher {
	s := actions.NewState(opts.Width, opts.Height, opts.Background)
	s.WordCloud = opts.WordCloud
	s.Logger = opts.Logger
	s.Scene.Name = opts.SceneName()
	return &watcher{
		state: s,
		reg:   actions.NewRegistry(),
		pace:  opts.RevealDelay,
		send:  func(tea.Msg) {},
	}
}

// run consumes batches until the channel closes, which happens when ctx
// ends or after a terminal action.
func (w *watcher) run(ctx context.Context, batches <-chan canvas.Batch) {
	total := 0
	for b := range batches {
		if b.Err != nil {
			w.send(batchMsg{err: b.Err, total: total})
			continue
		}
		spans := make([]drawnSpan, 0, len(b.Entries))
		for i, e := range b.Entries {
			from := w.state.Scene.Len()
			w.reg.Replay(w.state, b.Entries[i:i+1])
			spans = append(spans, drawnSpan{action: e.Action, from: from, to: w.state.Scene.Len()})
		}
		total = b.Offset + len(b.Entries)
		w.send(batchMsg{entries: len(b.Entries), total: total, stats: w.state.Stats})

		for _, sp := range spans {
			fresh := w.state.Scene.Commands[sp.from:sp.to]
			err := scene.Reveal(ctx, fresh, w.pace(sp.action), func(_ int, c scene.Command) error {
				w.send(drawnMsg{cmd: c})
				return nil
			})
			if err != nil {
				return
			}
		}
		if b.Done {
			w.send(endedMsg{})
		}
	}
}

// =============================================================================
// View
// =============================================================================

const recentLines = 12

var (
	watchBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// watchModel is the bubbletea model of the watch view.
type watchModel struct {
	name          string
	width, height float64
	total         int
	drawn         int
	stats         actions.Stats
	recent        []string
	err           error
	ended         bool
}

func newWatchModel(name string, width, height float64) watchModel {
	return watchModel{name: name, width: width, height: height}
}

func (m watchModel) Init() tea.Cmd { return nil }

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case batchMsg:
		m.err = msg.err
		if msg.err == nil {
			m.total = msg.total
			m.stats = msg.stats
		}
	case drawnMsg:
		m.drawn++
		m.recent = append(m.recent, describeCommand(msg.cmd))
		if len(m.recent) > recentLines {
			m.recent = m.recent[len(m.recent)-recentLines:]
		}
	case endedMsg:
		m.ended = true
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.name))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %.0f×%.0f", m.width, m.height)))
	b.WriteString("\n")

	stats := fmt.Sprintf("%d actions · %d drawn · %d skipped", m.total, m.drawn, m.stats.Skipped)
	if m.stats.WordsPlaced+m.stats.WordsDropped > 0 {
		stats += fmt.Sprintf(" · %d/%d words", m.stats.WordsPlaced, m.stats.WordsPlaced+m.stats.WordsDropped)
	}
	b.WriteString(StyleDim.Render(stats))
	b.WriteString("\n")

	body := StyleDim.Render("waiting for actions…")
	if len(m.recent) > 0 {
		body = strings.Join(m.recent, "\n")
	}
	b.WriteString(watchBoxStyle.Render(body))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(styleIconError.Render(iconError) + " " + m.err.Error() + "\n")
	case m.ended:
		b.WriteString(styleIconSuccess.Render(iconSuccess) + " history ended\n")
	}
	b.WriteString(StyleDim.Render("q quit and save snapshot"))
	return b.String()
}

// describeCommand returns a one-line summary of a draw command.
func describeCommand(c scene.Command) string {
	switch c := c.(type) {
	case scene.Fill:
		return fmt.Sprintf("fill     %s", c.Color)
	case scene.Clear:
		return "clear"
	case scene.Line:
		return fmt.Sprintf("line     (%.0f,%.0f) → (%.0f,%.0f) %s", c.X1, c.Y1, c.X2, c.Y2, c.Color)
	case scene.Circle:
		return fmt.Sprintf("circle   (%.0f,%.0f) r=%.0f %s", c.CX, c.CY, c.Radius, c.Color)
	case scene.Rect:
		return fmt.Sprintf("rect     (%.0f,%.0f) %.0f×%.0f %s", c.X, c.Y, c.W, c.H, c.Color)
	case scene.Text:
		return fmt.Sprintf("text     %q %.0fpx (%.0f,%.0f) %s", c.Text, c.Size, c.X, c.Y, c.Color)
	case scene.Point:
		return fmt.Sprintf("point    (%.0f,%.0f) %s", c.X, c.Y, c.Color)
	case scene.Arc:
		return fmt.Sprintf("arc      (%.0f,%.0f) r=%.0f %s", c.CX, c.CY, c.Radius, c.Color)
	case scene.Polygon:
		return fmt.Sprintf("polygon  %d points %s", len(c.Points), c.Color)
	case scene.Polyline:
		return fmt.Sprintf("polyline %d points %s", len(c.Points), c.Color)
	default:
		return string(c.Op())
	}
}
