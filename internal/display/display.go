// Package display provides the human-facing output of jpc. It is kept apart
// from the structured logs, which go to stderr through zap.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/jean-pierre/jpc/internal/clock"
	"github.com/jean-pierre/jpc/internal/plan"
)

// Display handles all CLI output with visual hierarchy
type Display struct {
	theme     *Theme
	out       io.Writer
	termWidth int
	noColor   bool
	clock     clock.Clock
}

// NewWithOptions creates a Display writing to out
func NewWithOptions(out io.Writer, noColor bool) *Display {
	d := &Display{
		out:       out,
		termWidth: getTerminalWidth(),
		noColor:   noColor,
		clock:     clock.RealClock{},
	}
	if noColor {
		d.theme = NoColorTheme()
	} else {
		d.theme = DefaultTheme()
	}
	return d
}

// getTerminalWidth returns the terminal width, defaulting to 80
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < 40 {
		return 80
	}
	if width > 120 {
		return 120 // Cap at 120 for readability
	}
	return width
}

// Box prints lines inside a titled border
func (d *Display) Box(title string, lines ...string) {
	if len(lines) == 0 {
		return
	}

	width := d.termWidth - 2
	titleLen := len(title) + 3 // "─ TITLE "
	remainingWidth := width - titleLen
	if remainingWidth < 0 {
		remainingWidth = 0
	}

	topLine := BoxTopLeft + BoxHorizontal + " " + title + " " + strings.Repeat(BoxHorizontal, remainingWidth) + BoxTopRight
	fmt.Fprintln(d.out, d.theme.Border(topLine))

	for _, line := range lines {
		paddedLine := padRight(line, width-2)
		fmt.Fprintln(d.out, d.theme.Border(BoxVertical)+" "+d.theme.Text(paddedLine)+" "+d.theme.Border(BoxVertical))
	}

	bottomLine := BoxBottomLeft + strings.Repeat(BoxHorizontal, width) + BoxBottomRight
	fmt.Fprintln(d.out, d.theme.Border(bottomLine))
}

// Status prints a single timestamped status line
func (d *Display) Status(symbol, message string) {
	timestamp := d.clock.Now().Format("[15:04:05]")
	fmt.Fprintf(d.out, "%s %s %s\n",
		d.theme.Dim(timestamp),
		symbol,
		d.theme.Text(message))
}

// Success prints a success message with green checkmark
func (d *Display) Success(message string) {
	d.Status(d.theme.Success(SymbolSuccess), message)
}

// Warning prints a warning message with yellow triangle
func (d *Display) Warning(message string) {
	d.Status(d.theme.Warning(SymbolWarning), message)
}

// Info prints an info message with cyan label
func (d *Display) Info(label, message string) {
	d.Status(d.theme.Info(label+":"), message)
}

// DryRun lists the actions a plan would apply, numbered from 001.
func (d *Display) DryRun(p *plan.Plan) {
	fmt.Fprintf(d.out, "Would apply %d actions:\n", len(p.Actions))
	for i, a := range p.Actions {
		fmt.Fprintf(d.out, "%03d: %s\n", i+1, a.Label())
	}
}

// Applied prints the success summary of an apply.
func (d *Display) Applied(count int, backups []string) {
	fmt.Fprintf(d.out, "%s Applied %d actions.\n", d.theme.Success(SymbolSuccess), count)
	for _, b := range backups {
		fmt.Fprintf(d.out, "   %s %s\n", d.theme.Dim("backup:"), b)
	}
}

// ApplyFailed prints the failure summary of an apply.
func (d *Display) ApplyFailed(label string, err error, applied int) {
	fmt.Fprintf(d.out, "\n%s FAILED: %s\n", d.theme.Error(SymbolError), label)
	if err != nil {
		fmt.Fprintf(d.out, "   Error: %v\n", err)
	}
	fmt.Fprintf(d.out, "\nStopping. %d actions applied, 1 failed.\n", applied)
}

// Model prints model output with a left gutter.
func (d *Display) Model(text string) {
	gutter := d.theme.ModelGutter(GutterModel)
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		fmt.Fprintf(d.out, "%s %s\n", gutter, d.theme.ModelText(line))
	}
}

// Markdown renders text as terminal markdown. It falls back to the model
// gutter when colors are off or rendering fails.
func (d *Display) Markdown(text string) {
	if d.noColor {
		d.Model(text)
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(d.termWidth),
	)
	if err == nil {
		if rendered, err := r.Render(text); err == nil {
			fmt.Fprint(d.out, rendered)
			return
		}
	}
	d.Model(text)
}

// padRight pads a string to the specified width
func padRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}
