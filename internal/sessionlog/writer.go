// Package sessionlog appends executed command output to one log file per
// calendar day.
package sessionlog

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rileyhilliard/cq/internal/errors"
	"github.com/rileyhilliard/cq/internal/logger"
)

const (
	// DayLayout names daily log files: <dir>/2006-01-02.log
	DayLayout = "2006-01-02"
	// ErrorPrefix marks lines that came from a command's stderr.
	ErrorPrefix = "[ERR] "

	fileExt     = ".log"
	stampLayout = "15:04:05"
)

// Log is an append-only daily log. A nil *Log discards everything, so
// callers can pass one around without checking whether logging is enabled.
type Log struct {
	dir string
	now func() time.Time
	log logger.Logger

	mu sync.Mutex
}

// Option configures a Log.
type Option func(*Log)

// WithClock overrides the time source (tests pin the date and timestamp).
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// WithLogger sets where write failures are reported (at debug level).
func WithLogger(lg logger.Logger) Option {
	return func(l *Log) { l.log = lg }
}

// New creates a daily log rooted at dir. A leading ~ expands to the home
// directory. The directory is created on the first append.
func New(dir string, opts ...Option) (*Log, error) {
	expanded, err := expandHome(dir)
	if err != nil {
		return nil, err
	}
	if expanded == "" {
		return nil, errors.New(errors.ErrConfig,
			"No log directory configured",
			"Set 'logs.dir' in your .cq.yaml.")
	}

	l := &Log{
		dir: expanded,
		now: time.Now,
		log: logger.Noop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Dir returns the log directory.
func (l *Log) Dir() string {
	if l == nil {
		return ""
	}
	return l.dir
}

// Path returns the log file for the day containing t.
func (l *Log) Path(t time.Time) string {
	if l == nil {
		return ""
	}
	return filepath.Join(l.dir, t.Format(DayLayout)+fileExt)
}

// Today returns the path of today's log file.
func (l *Log) Today() string {
	if l == nil {
		return ""
	}
	return l.Path(l.now())
}

// Append writes "[HH:mm:ss] line" to today's file. Failures are swallowed:
// a full disk must never abort a running command.
func (l *Log) Append(line string) {
	if l == nil {
		return
	}
	if err := l.write(line); err != nil {
		l.log.Debug("session log append failed: %v", err)
	}
}

// AppendError writes a stderr line with the [ERR] prefix.
func (l *Log) AppendError(line string) {
	l.Append(ErrorPrefix + line)
}

func (l *Log) write(line string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(l.Path(now), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	// One Write per line keeps appends from separate processes whole.
	entry := "[" + now.Format(stampLayout) + "] " + line + "\n"
	if _, err := f.WriteString(entry); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(dir string) (string, error) {
	if len(dir) > 0 && dir[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Can't determine home directory",
				"Check your environment configuration.")
		}
		return filepath.Join(home, dir[1:]), nil
	}
	return dir, nil
}
