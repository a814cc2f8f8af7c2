package binary

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// ProgressReporter receives download progress.
type ProgressReporter interface {
	// Start is called once with the expected size in bytes, or -1 when unknown.
	Start(total int64)
	// Add reports n more bytes written.
	Add(n int64)
	// Finish is called after the last chunk.
	Finish()
}

type nopProgress struct{}

func (nopProgress) Start(int64) {}
func (nopProgress) Add(int64)   {}
func (nopProgress) Finish()     {}

const (
	minBarWidth = 10
	maxBarWidth = 40
	// indeterminateStep is how many bytes pass between redraws when the
	// total size is unknown.
	indeterminateStep = 64 << 10
)

// ProgressBar draws a single-line progress bar on a terminal. On anything
// that is not a terminal it prints one summary line when the download
// finishes.
type ProgressBar struct {
	mu       sync.Mutex
	out      io.Writer
	label    string
	tty      bool
	width    int
	total    int64
	current  int64
	lastDraw int64
}

// NewProgressBar creates a progress bar writing to out.
func NewProgressBar(out io.Writer, label string) *ProgressBar {
	b := &ProgressBar{out: out, label: label, width: 80}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b.tty = true
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			b.width = w
		}
	}
	return b
}

func (b *ProgressBar) Start(total int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.total = total
	b.current = 0
	b.lastDraw = -1
	b.draw()
}

func (b *ProgressBar) Add(n int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current += n
	b.draw()
}

func (b *ProgressBar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tty {
		b.lastDraw = -1
		b.draw()
		fmt.Fprintln(b.out)
		return
	}
	fmt.Fprintf(b.out, "%s: downloaded %s\n", b.label, formatBytes(b.current))
}

// draw redraws the line when the visible state changed.
func (b *ProgressBar) draw() {
	if !b.tty {
		return
	}

	var mark int64
	if b.total > 0 {
		mark = b.current * 100 / b.total
	} else {
		mark = b.current / indeterminateStep
	}
	if mark == b.lastDraw {
		return
	}
	b.lastDraw = mark

	fmt.Fprint(b.out, "\r"+b.line())
}

func (b *ProgressBar) line() string {
	if b.total <= 0 {
		return fmt.Sprintf("%s %s", b.label, formatBytes(b.current))
	}

	pct := b.current * 100 / b.total
	if pct > 100 {
		pct = 100
	}
	suffix := fmt.Sprintf(" %3d%% %s/%s", pct, formatBytes(b.current), formatBytes(b.total))

	barWidth := b.width - len(b.label) - len(suffix) - 3
	if barWidth > maxBarWidth {
		barWidth = maxBarWidth
	}
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}

	filled := int(int64(barWidth) * pct / 100)
	bar := strings.Repeat("=", filled)
	if filled < barWidth {
		bar += ">" + strings.Repeat(" ", barWidth-filled-1)
	}
	return fmt.Sprintf("%s [%s]%s", b.label, bar, suffix)
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
