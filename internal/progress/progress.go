// Package progress provides progress indicators for long-running operations.
package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/Theomat/rusync/internal/logging"
	"github.com/Theomat/rusync/internal/ui"
)

// Mode controls whether a bar is rendered.
type Mode string

const (
	// ModeAuto shows the bar on interactive terminals only.
	ModeAuto Mode = "auto"
	// ModeAlways shows the bar unconditionally.
	ModeAlways Mode = "always"
	// ModeNever suppresses the bar.
	ModeNever Mode = "never"
)

// Bar wraps progressbar functionality with integration to rusync's UI and logging.
type Bar struct {
	bar     *progressbar.ProgressBar
	enabled bool
	desc    string
}

// Options configures the progress bar behavior.
type Options struct {
	// Max is the maximum value for the progress bar (total entries).
	Max int64
	// Description is the prefix text shown before the progress bar.
	Description string
	// Writer is the output destination. Defaults to os.Stderr.
	Writer io.Writer
	// Mode overrides terminal detection. Defaults to ModeAuto.
	Mode Mode
}

// DefaultOptions returns sensible defaults for CLI progress bars.
func DefaultOptions() Options {
	return Options{
		Max:         100,
		Description: "Syncing",
		Writer:      os.Stderr,
		Mode:        ModeAuto,
	}
}

// New creates a new progress bar with the given options.
// In auto mode the bar is only shown if:
//   - Colors are enabled (respects NO_COLOR and --no-color)
//   - Output is a terminal
//   - Not in debug mode (to avoid interfering with logs)
func New(opts Options) *Bar {
	if opts.Writer == nil {
		opts.Writer = os.Stderr
	}
	if opts.Mode == "" {
		opts.Mode = ModeAuto
	}

	enabled := shouldShowProgress(opts.Mode, opts.Writer)

	b := &Bar{
		enabled: enabled,
		desc:    opts.Description,
	}

	if !enabled {
		// Log start at debug level instead
		logging.Debug(fmt.Sprintf("%s started", opts.Description),
			logging.Count(int(opts.Max)))
		return b
	}

	b.bar = progressbar.NewOptions64(
		opts.Max,
		progressbar.OptionSetDescription(opts.Description),
		progressbar.OptionSetWriter(opts.Writer),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(15),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(opts.Writer, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionEnableColorCodes(ui.IsColorEnabled()),
	)

	return b
}

// Add increments the progress bar by n steps.
func (b *Bar) Add(n int) error {
	if !b.enabled {
		return nil
	}
	return b.bar.Add(n)
}

// Describe updates the progress bar description.
func (b *Bar) Describe(desc string) {
	b.desc = desc
	if !b.enabled {
		return
	}
	b.bar.Describe(desc)
}

// Finish completes the progress bar and logs completion.
func (b *Bar) Finish() error {
	if !b.enabled {
		logging.Debug(fmt.Sprintf("%s completed", b.desc))
		return nil
	}
	return b.bar.Finish()
}

// Clear removes the progress bar from the terminal.
func (b *Bar) Clear() error {
	if !b.enabled {
		return nil
	}
	return b.bar.Clear()
}

// Enabled reports whether the bar renders anything.
func (b *Bar) Enabled() bool {
	return b.enabled
}

// shouldShowProgress determines if progress bars should be displayed.
// Auto mode disables progress if:
//   - Not outputting to a terminal
//   - Colors are disabled (NO_COLOR, --no-color)
//   - Logger is at debug level (to avoid interfering with debug output)
func shouldShowProgress(mode Mode, w io.Writer) bool {
	switch mode {
	case ModeNever:
		return false
	case ModeAlways:
		return true
	}

	// Check if colors are enabled (respects NO_COLOR)
	if !ui.IsColorEnabled() {
		return false
	}

	// Check if we're outputting to a terminal
	if f, ok := w.(*os.File); ok {
		if !term.IsTerminal(int(f.Fd())) {
			return false
		}
	}

	// Disable progress if at debug level (avoid interfering with logs)
	ctx := context.Background()
	if logging.Default().Enabled(ctx, logging.LevelDebug) {
		return false
	}

	return true
}

// Simple creates a progress bar sized for a sync run without configuring
// options.
func Simple(max int64, description string) *Bar {
	return New(Options{
		Max:         max,
		Description: description,
		Writer:      os.Stderr,
		Mode:        ModeAuto,
	})
}
