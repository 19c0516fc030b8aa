package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/wordcanvas/pkg/actions"
	"github.com/matzehuels/wordcanvas/pkg/wordcloud"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // titles, numbers
	colorGreen  = lipgloss.Color("35")  // success, cache hits
	colorYellow = lipgloss.Color("220") // warnings
	colorRed    = lipgloss.Color("167") // errors
	colorBlue   = lipgloss.Color("75")  // commands
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // labels
	colorDim    = lipgloss.Color("240") // muted
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle renders headings and canvas names.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim renders muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue renders values next to labels.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning renders warning text.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = fg(colorGreen)
	styleIconError   = fg(colorRed)
	styleIconWarning = fg(colorYellow)
	styleIconInfo    = fg(colorGray)
	styleIconSpinner = fg(colorCyan)

	styleCached   = fg(colorGreen)
	styleComputed = fg(colorGray)
	styleCommand  = fg(colorBlue)
	styleKey      = fg(colorGray).Width(12)
)

func fg(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// stdout receives all status lines.
var stdout io.Writer = os.Stdout

func statusLine(icon string, iconStyle lipgloss.Style, msg string) {
	fmt.Fprintln(stdout, iconStyle.Render(icon)+" "+msg)
}

func printSuccess(format string, args ...any) {
	statusLine(iconSuccess, styleIconSuccess, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	statusLine(iconError, styleIconError, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	statusLine(iconWarning, styleIconWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	statusLine(iconInfo, styleIconInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented, muted line under a status line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints the path of a written file.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printKeyValue prints a label padded to a fixed column and its value.
func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// =============================================================================
// Stats Display
// =============================================================================

// printStats prints replay statistics on a single line.
func printStats(stats actions.Stats, commands int, cached bool) {
	parts := []string{fmt.Sprintf("%d commands", commands)}
	if stats.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", stats.Skipped))
	}
	if stats.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", stats.Failed))
	}
	if stats.WordsPlaced > 0 || stats.WordsDropped > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d words", stats.WordsPlaced, stats.WordsPlaced+stats.WordsDropped))
	}

	status := iconFresh
	statusStyle := styleComputed
	if cached {
		status = iconCached
		statusStyle = styleCached
	}

	sep := StyleDim.Render(" · ")
	fmt.Fprintln(stdout, "  "+StyleDim.Render(strings.Join(parts, " · "))+sep+statusStyle.Render(status))
}

// =============================================================================
// Tables
// =============================================================================

// wordTable renders placed words as a bordered table. Each text cell is
// tinted with the word's own color.
func wordTable(words []wordcloud.PlacedWord) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("#", "WORD", "SIZE", "X", "Y", "W", "H", "COLOR").
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return s.Bold(true).Foreground(colorGray)
			case col == 1 && row >= 0 && row < len(words) && words[row].Color != "":
				return s.Foreground(lipgloss.Color(words[row].Color))
			case col >= 2 && col <= 6:
				return s.Foreground(colorCyan).Align(lipgloss.Right)
			}
			return s
		})
	for i, w := range words {
		t.Row(
			fmt.Sprint(i+1),
			w.Text,
			fmt.Sprintf("%.1f", w.FontSize),
			fmt.Sprintf("%.0f", w.X),
			fmt.Sprintf("%.0f", w.Y),
			fmt.Sprintf("%.0f", w.Width),
			fmt.Sprintf("%.0f", w.Height),
			w.Color,
		)
	}
	return t.String()
}

// =============================================================================
// Commands & Next Steps
// =============================================================================

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}
