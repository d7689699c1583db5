package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/rileyhilliard/cq/internal/config"
	"github.com/rileyhilliard/cq/internal/exec"
	"github.com/rileyhilliard/cq/internal/logger"
	"github.com/rileyhilliard/cq/internal/sessionlog"
	"github.com/rileyhilliard/cq/internal/store"
	"github.com/rileyhilliard/cq/internal/ui"
)

// app is the state commands share once config is loaded.
type app struct {
	cfg   *config.Config
	store *store.Store
	log   logger.Logger
}

// Terminal checks, replaceable in tests.
var (
	stdinIsTerminal  = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
	stdoutIsTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
)

// newApp loads and validates config and opens the store.
func newApp(explicit string) (*app, error) {
	cfg, err := config.LoadOrDefault(explicit)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	log := logger.NewEnvLogger("[cq]")
	if cfg.Path != "" {
		log.Debug("using config %s", cfg.Path)
	}
	return &app{
		cfg:   cfg,
		store: store.Open(cfg.StoreDir, log),
		log:   log,
	}, nil
}

// loadApp is newApp plus the terminal color mode from output.color.
func loadApp() (*app, error) {
	a, err := newApp(configFlag)
	if err != nil {
		return nil, err
	}
	ui.SetColorMode(colorMode(a.cfg), stdoutIsTerminal())
	return a, nil
}

// colorMode is output.color, forced off by --no-color and --json.
func colorMode(cfg *config.Config) string {
	if noColorFlag || machineMode {
		return config.ColorNever
	}
	return cfg.Output.Color
}

// sessionLog opens the daily log and prunes files past logs.keep_days.
// It returns nil when logging is disabled or the directory is unusable;
// a run never fails because of its log.
func (a *app) sessionLog() *sessionlog.Log {
	if !a.cfg.Logs.Enabled {
		return nil
	}
	l, err := sessionlog.New(a.cfg.Logs.Dir, sessionlog.WithLogger(a.log))
	if err != nil {
		a.log.Debug("session log disabled: %v", err)
		return nil
	}
	removed, err := sessionlog.CleanByAge(l.Dir(), a.cfg.Logs.KeepDays, time.Now())
	if err != nil {
		a.log.Debug("log cleanup failed: %v", err)
	} else if len(removed) > 0 {
		a.log.Debug("removed %d old session logs", len(removed))
	}
	return l
}

// runner builds a runner for the configured shell and session log.
func (a *app) runner() *exec.Runner {
	return exec.NewRunner(
		exec.WithShell(a.cfg.Shell),
		exec.WithSessionLog(a.sessionLog()),
		exec.WithLogger(a.log),
	)
}

// runContext derives the context for a run. SIGINT and SIGTERM cancel it,
// which stops the active process tree. A positive timeout adds a deadline.
func runContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}
