package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/mozhi-it/LAN-Transfer/internal/types"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"} // Dark green / Bright green
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"} // Dark red / Bright red
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"} // Dark goldenrod / Yellow
	colorBlue   = lipgloss.AdaptiveColor{Light: "#00008b", Dark: "#5f87ff"} // Dark blue / Blue
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"} // Dark gray / Light gray
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"} // Dark cyan / Cyan
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleSender = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	styleBanner = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#005f87"))
)

// frame accumulates the lines of one full-screen repaint
type frame struct {
	width int
	lines []string
}

func newFrame(width int) *frame {
	return &frame{width: width}
}

// line appends one line, cut to the frame width
func (f *frame) line(s string) {
	f.lines = append(f.lines, ansi.Truncate(s, f.width, "…"))
}

func (f *frame) linef(format string, args ...any) {
	f.line(fmt.Sprintf(format, args...))
}

func (f *frame) blank() {
	f.lines = append(f.lines, "")
}

// String renders the frame preceded by the clear-screen sequence
func (f *frame) String() string {
	var b strings.Builder
	b.WriteString(ansi.CursorHomePosition)
	b.WriteString(ansi.EraseEntireScreen)
	for _, l := range f.lines {
		b.WriteString(l)
		b.WriteString("\r\n")
	}
	return b.String()
}

// renderList draws a list window. Marked rows get a check, the cursor row
// is highlighted.
func renderList(f *frame, l *SelectableList, height int) {
	if l.Len() == 0 {
		f.line(styleWarning.Render("  (empty)"))
		return
	}
	start, end := l.Window(height)
	if start > 0 {
		f.line(styleSubtle.Render(fmt.Sprintf("  ↑ %d more", start)))
	}
	for i := start; i < end; i++ {
		label := l.items[i].Label
		mark := ""
		if l.multi {
			mark = "[ ] "
			if l.IsSelected(i) {
				mark = "[x] "
			}
		}
		if i == l.cursor {
			f.line(styleSelected.Render("> " + mark + label))
		} else {
			f.line("  " + mark + label)
		}
	}
	if end < l.Len() {
		f.line(styleSubtle.Render(fmt.Sprintf("  ↓ %d more", l.Len()-end)))
	}
}

// renderMessage draws one chat line: [HH:MM:SS] sender: content
func renderMessage(m types.Message, mine bool) string {
	sender := m.Sender
	if mine {
		sender += " (me)"
	}
	return fmt.Sprintf("%s %s: %s",
		styleSubtle.Render("["+m.Clock()+"]"),
		styleSender.Render(sender),
		m.Content)
}

// fileLabel lays out a file record in fixed columns
func fileLabel(rec types.FileRecord, nameWidth int) string {
	name := runewidth.Truncate(rec.Name, nameWidth, "…")
	return fmt.Sprintf("%s  %9s  %s", runewidth.FillRight(name, nameWidth), rec.Size, rec.Timestamp)
}

// progressBar renders "[#####-----]  50%  1.0 MB / 2.0 MB"
func progressBar(done, total int64, width int) string {
	if total <= 0 {
		return types.FormatSize(done)
	}
	done = min(done, total)
	filled := int(int64(width) * done / total)
	pct := int(100 * done / total)
	return fmt.Sprintf("[%s%s] %3d%%  %s / %s",
		strings.Repeat("#", filled),
		strings.Repeat("-", width-filled),
		pct,
		types.FormatSize(done),
		types.FormatSize(total))
}

// renderStatus colors a status line by outcome
func renderStatus(s status) string {
	switch {
	case s.text == "":
		return ""
	case s.failed:
		return styleError.Render("✗ " + s.text)
	default:
		return styleSuccess.Render("✓ " + s.text)
	}
}

// helpLine joins "key action" pairs for the footer
func helpLine(pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, pairs[i]+" "+pairs[i+1])
	}
	return styleSubtle.Render(strings.Join(parts, "  |  "))
}
