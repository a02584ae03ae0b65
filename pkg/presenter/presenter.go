// Package presenter provides consistent CLI output functionality for user-facing messages,
// including success, error, warning, and informational output with color support and quiet mode.
package presenter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
)

// RunStats summarises a batch run such as skill generation or example validation
type RunStats struct {
	Succeeded int
	Failed    int
	Skipped   int
	Elapsed   time.Duration
}

// Total is the number of items the run looked at
func (s RunStats) Total() int {
	return s.Succeeded + s.Failed + s.Skipped
}

// Presenter defines the interface for consistent CLI output
type Presenter interface {
	Error(err error, context string)
	Success(message string)
	Warning(message string)
	Info(message string)
	Section(title string)
	Bullet(message string)
	Table(headers []string, rows [][]string)
	Stats(stats *RunStats)
	Separator()
	SetQuiet(quiet bool)
	IsQuiet() bool
}

// ColorMode represents different color output modes
type ColorMode int

const (
	// ColorAuto leaves color detection to fatih/color
	ColorAuto ColorMode = iota
	// ColorAlways forces colored output
	ColorAlways
	// ColorNever disables colored output
	ColorNever
)

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	successStyle = color.New(color.FgGreen, color.Bold)
	warningStyle = color.New(color.FgYellow, color.Bold)
	headerStyle  = color.New(color.Bold)
	statsStyle   = color.New(color.FgCyan, color.Bold)
	faintStyle   = color.New(color.Faint)
)

// TerminalPresenter implements Presenter for terminal output. Everything but
// errors goes to output and is suppressed in quiet mode.
type TerminalPresenter struct {
	output      io.Writer
	errorOutput io.Writer
	colorMode   ColorMode
	quiet       bool
}

// New creates a TerminalPresenter writing to stdout and stderr
func New() *TerminalPresenter {
	return NewWithOptions(os.Stdout, os.Stderr, detectColorMode())
}

// NewWithOptions creates a TerminalPresenter with custom writers and color mode
func NewWithOptions(output, errorOutput io.Writer, colorMode ColorMode) *TerminalPresenter {
	switch colorMode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	case ColorAuto:
	}
	return &TerminalPresenter{
		output:      output,
		errorOutput: errorOutput,
		colorMode:   colorMode,
	}
}

// detectColorMode honours NO_COLOR first, then SKILLCTL_COLOR
func detectColorMode() ColorMode {
	if os.Getenv("NO_COLOR") != "" {
		return ColorNever
	}
	switch os.Getenv("SKILLCTL_COLOR") {
	case "always", "force":
		return ColorAlways
	case "never", "off":
		return ColorNever
	default:
		return ColorAuto
	}
}

// say writes one line to output unless quiet; a nil style prints plain text
func (p *TerminalPresenter) say(style *color.Color, format string, args ...any) {
	if p.quiet {
		return
	}
	if style == nil {
		fmt.Fprintf(p.output, format+"\n", args...)
		return
	}
	style.Fprintf(p.output, format+"\n", args...)
}

// Error writes err to the error output, prefixed with context when given. Quiet mode does not apply.
func (p *TerminalPresenter) Error(err error, context string) {
	if err == nil {
		return
	}
	if context != "" {
		errorStyle.Fprintf(p.errorOutput, "[ERROR] %s: %v\n", context, err)
		return
	}
	errorStyle.Fprintf(p.errorOutput, "[ERROR] %v\n", err)
}

func (p *TerminalPresenter) Success(message string) { p.say(successStyle, "✓ %s", message) }

func (p *TerminalPresenter) Warning(message string) { p.say(warningStyle, "⚠ %s", message) }

func (p *TerminalPresenter) Info(message string) { p.say(nil, "%s", message) }

func (p *TerminalPresenter) Bullet(message string) { p.say(nil, "  • %s", message) }

// Section prints title underlined with dashes
func (p *TerminalPresenter) Section(title string) {
	p.say(headerStyle, "%s\n%s", title, strings.Repeat("-", len(title)))
}

// Separator prints a faint horizontal rule
func (p *TerminalPresenter) Separator() {
	p.say(faintStyle, "%s", strings.Repeat("-", 60))
}

// Table prints rows aligned in columns under headers
func (p *TerminalPresenter) Table(headers []string, rows [][]string) {
	if p.quiet {
		return
	}
	w := tabwriter.NewWriter(p.output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}

// Stats prints the counters and elapsed time of a run
func (p *TerminalPresenter) Stats(stats *RunStats) {
	if stats == nil {
		return
	}
	p.say(statsStyle, "[Run Stats] Succeeded: %d | Failed: %d | Skipped: %d | Total: %d",
		stats.Succeeded, stats.Failed, stats.Skipped, stats.Total())
	p.say(statsStyle, "[Elapsed] %s", FormatElapsed(stats.Elapsed))
}

func (p *TerminalPresenter) SetQuiet(quiet bool) { p.quiet = quiet }

func (p *TerminalPresenter) IsQuiet() bool { return p.quiet }

// FormatElapsed renders a duration as "Xh Ym Zs".
func FormatElapsed(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%dh %dm %ds", total/3600, (total%3600)/60, total%60)
}

var defaultPresenter Presenter = New()

// SetDefault replaces the presenter behind the package-level functions and
// returns the previous one
func SetDefault(p Presenter) Presenter {
	prev := defaultPresenter
	defaultPresenter = p
	return prev
}

// Error writes an error using the default presenter
func Error(err error, context string) { defaultPresenter.Error(err, context) }

// Success writes a success line using the default presenter
func Success(message string) { defaultPresenter.Success(message) }

// Warning writes a warning line using the default presenter
func Warning(message string) { defaultPresenter.Warning(message) }

// Info writes a plain line using the default presenter
func Info(message string) { defaultPresenter.Info(message) }

// Section writes a section header using the default presenter
func Section(title string) { defaultPresenter.Section(title) }

// Bullet writes a list item using the default presenter
func Bullet(message string) { defaultPresenter.Bullet(message) }

// Table writes aligned rows using the default presenter
func Table(headers []string, rows [][]string) { defaultPresenter.Table(headers, rows) }

// Stats writes run statistics using the default presenter
func Stats(stats *RunStats) { defaultPresenter.Stats(stats) }

// Separator writes a rule using the default presenter
func Separator() { defaultPresenter.Separator() }

// SetQuiet toggles quiet mode of the default presenter
func SetQuiet(quiet bool) { defaultPresenter.SetQuiet(quiet) }

// IsQuiet reports whether the default presenter is quiet
func IsQuiet() bool { return defaultPresenter.IsQuiet() }
