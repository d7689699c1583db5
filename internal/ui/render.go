package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/cq/internal/exec"
)

// TimestampLayout prefixes lines when timestamps are on.
const TimestampLayout = "15:04:05"

// RenderOptions controls how events are printed.
type RenderOptions struct {
	Timestamps bool
}

// Renderer prints runner events to the terminal. Stderr lines go to errOut,
// everything else to out. It implements exec.Sink.
type Renderer struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	opts   RenderOptions
}

// NewRenderer creates a renderer. A nil errOut sends stderr lines to out.
func NewRenderer(out, errOut io.Writer, opts RenderOptions) *Renderer {
	if errOut == nil {
		errOut = out
	}
	return &Renderer{out: out, errOut: errOut, opts: opts}
}

// Emit implements exec.Sink.
func (r *Renderer) Emit(ev exec.Event) {
	line := FormatEvent(ev, r.opts)

	r.mu.Lock()
	defer r.mu.Unlock()
	w := r.out
	if ev.Kind == exec.Stderr {
		w = r.errOut
	}
	fmt.Fprintln(w, line)
}

// FormatEvent returns the styled line for ev, without a trailing newline.
func FormatEvent(ev exec.Event, opts RenderOptions) string {
	var text string
	switch ev.Kind {
	case exec.Stderr:
		text = ErrorStyle().Render(ev.Text)
	case exec.Marker:
		text = markerStyle(ev).Render(ev.Text)
	case exec.Status:
		text = WarningStyle().Render(SymbolWarning + " " + ev.Text)
	default:
		text = ev.Text
	}

	if opts.Timestamps && !ev.Time.IsZero() {
		return MutedStyle().Render("["+ev.Time.Format(TimestampLayout)+"]") + " " + text
	}
	return text
}

func markerStyle(ev exec.Event) lipgloss.Style {
	switch {
	case strings.HasPrefix(ev.Text, "> "):
		return InfoStyle().Bold(true)
	case strings.HasPrefix(ev.Text, "[exit "):
		if ev.ExitCode != 0 {
			return ErrorStyle()
		}
		return MutedStyle()
	case ev.Text == exec.MarkerCompleted:
		return SuccessStyle()
	case ev.Text == exec.MarkerCancelled:
		return WarningStyle()
	case ev.Text == exec.MarkerStoppedOnError, ev.Text == exec.MarkerFaulted:
		return ErrorStyle().Bold(true)
	default:
		return MutedStyle()
	}
}
