package exec

import (
	"sync"
	"time"
)

// EventKind identifies what an Event carries.
type EventKind int

const (
	// Stdout is one line of a command's standard output.
	Stdout EventKind = iota
	// Stderr is one line of a command's standard error.
	Stderr
	// Marker is a queue progress line: "> cmd", "[exit N]" or a terminal marker.
	Marker
	// Status is a runner notice such as a launch failure or a missing-command hint.
	Status
)

func (k EventKind) String() string {
	switch k {
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	case Marker:
		return "marker"
	case Status:
		return "status"
	default:
		return "unknown"
	}
}

// Event is one line of output or progress from a run.
type Event struct {
	Kind     EventKind
	Text     string
	ExitCode int // set on "[exit N]" markers
	Time     time.Time
	Session  string
}

// Sink receives events. Emit may be called from the goroutines that read a
// child's stdout and stderr, so implementations must be safe for concurrent use.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Event)

// Emit calls f(e).
func (f SinkFunc) Emit(e Event) { f(e) }

type discard struct{}

func (discard) Emit(Event) {}

// Discard is a Sink that drops everything.
var Discard Sink = discard{}

// Stream is a Sink backed by a bounded channel. Emit blocks while the buffer
// is full, so a slow reader slows the run rather than losing lines.
type Stream struct {
	ch     chan Event
	mu     sync.RWMutex
	closed bool
}

// NewStream creates a stream with the given buffer size.
func NewStream(buf int) *Stream {
	if buf < 0 {
		buf = 0
	}
	return &Stream{ch: make(chan Event, buf)}
}

// Emit sends e to the reader. Events emitted after Close are dropped.
func (s *Stream) Emit(e Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	s.ch <- e
}

// Events returns the receive side of the stream.
func (s *Stream) Events() <-chan Event {
	return s.ch
}

// Close ends the stream. Call it once the run has returned; the reader
// sees the channel close after draining buffered events.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}
