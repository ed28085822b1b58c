package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/mxpv/pcasts/pkg/fetch"
)

const (
	refreshInterval = 100 * time.Millisecond
	maxURLWidth     = 48
)

var (
	urlStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#A8DADC"))
	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#95E1A3"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

// progressRenderer draws in-flight requests of a batch on a terminal. It is
// the only reader of batch progress and redraws in place on every tick.
// Log output is routed through Write so log lines land above the drawing
// instead of being erased by the next redraw.
type progressRenderer struct {
	mu    sync.Mutex
	out   io.Writer
	bar   progress.Model
	lines int
	frame string
}

var (
	_ fetch.Monitor = (*progressRenderer)(nil)
	_ io.Writer     = (*progressRenderer)(nil)
)

// newProgressRenderer returns nil when f is not a terminal.
func newProgressRenderer(f *os.File) *progressRenderer {
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return nil
	}

	return &progressRenderer{
		out: f,
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
	}
}

func (r *progressRenderer) Track(batch *fetch.Batch) func() {
	finished := make(chan struct{})

	go func() {
		defer close(finished)

		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()

		for tick := 0; ; tick++ {
			select {
			case <-batch.Done():
				r.draw(r.render(batch, tick))
				r.release()
				return
			case <-ticker.C:
				r.draw(r.render(batch, tick))
			}
		}
	}()

	return func() {
		<-finished
	}
}

// Write prints p above the current drawing.
func (r *progressRenderer) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var buf strings.Builder
	r.clear(&buf)
	buf.Write(p)
	buf.WriteString(r.frame)

	if _, err := io.WriteString(r.out, buf.String()); err != nil {
		return 0, err
	}

	return len(p), nil
}

// draw replaces the previous drawing with frame.
func (r *progressRenderer) draw(frame string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var buf strings.Builder
	r.clear(&buf)
	buf.WriteString(frame)

	r.frame = frame
	r.lines = strings.Count(frame, "\n")
	_, _ = io.WriteString(r.out, buf.String())
}

// release leaves the last drawing on screen; later output goes below it.
func (r *progressRenderer) release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frame = ""
	r.lines = 0
}

func (r *progressRenderer) clear(buf *strings.Builder) {
	if r.lines > 0 {
		fmt.Fprintf(buf, "\x1b[%dA\x1b[J", r.lines)
	}
}

// render formats the current state of batch, one line per in-flight request
// followed by a summary line.
func (r *progressRenderer) render(batch *fetch.Batch, tick int) string {
	var (
		statuses = batch.Progress()
		buf      strings.Builder
		finished int
		failed   int
	)

	for _, status := range statuses {
		if status.Done {
			finished++
			if status.Kind != fetch.Success {
				failed++
			}
			continue
		}

		// Queued requests haven't reported anything yet.
		if status.Received == 0 && status.Indeterminate() {
			continue
		}

		buf.WriteString(r.line(status, tick))
		buf.WriteByte('\n')
	}

	summary := summaryStyle.Render(fmt.Sprintf("%d/%d done", finished, len(statuses)))
	if failed > 0 {
		summary += " " + failedStyle.Render(fmt.Sprintf("(%d failed)", failed))
	}
	buf.WriteString(summary)
	buf.WriteByte('\n')

	return buf.String()
}

func (r *progressRenderer) line(status fetch.Status, tick int) string {
	name := urlStyle.Render(shorten(status.URL, maxURLWidth))

	if status.Indeterminate() {
		frames := spinner.Dot.Frames
		return fmt.Sprintf("%s %s %s", frames[tick%len(frames)], formatBytes(status.Received), name)
	}

	var percent float64
	if status.Total > 0 {
		percent = float64(status.Received) / float64(status.Total)
	}

	return fmt.Sprintf("%s %s %s", r.bar.ViewAs(percent), formatBytes(status.Received), name)
}

func shorten(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}

	return "..." + string(runes[len(runes)-width+3:])
}
