package cli

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/cq/internal/errors"
	"github.com/rileyhilliard/cq/internal/sessionlog"
	"github.com/rileyhilliard/cq/internal/ui"
	"github.com/rileyhilliard/cq/internal/util"
)

// logsCmd implements the `cq logs` command for viewing and managing session logs.
var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View and manage daily session logs",
	Long: `Every run appends its output to <logs.dir>/YYYY-MM-DD.log, one
"[HH:MM:SS] line" entry per output line. Stderr lines are marked [ERR].

Commands:
  cq logs                   List log files
  cq logs show [date]       Print today's log, or the log for YYYY-MM-DD
  cq logs clean             Delete logs older than logs.keep_days
  cq logs clean --older 7d  Delete logs older than 7 days
  cq logs clean --all       Delete all logs`,
	Args: cobra.NoArgs,
	RunE: runLogsList,
}

var logsShowCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Print a day's log",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogsShow,
}

// logsCleanCmd implements the `cq logs clean` subcommand.
var logsCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete old log files",
	Args:  cobra.NoArgs,
	RunE:  runLogsClean,
}

var (
	logsCleanAll   bool
	logsCleanOlder string
)

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(logsShowCmd, logsCleanCmd)

	logsCleanCmd.Flags().BoolVar(&logsCleanAll, "all", false, "delete all log files")
	logsCleanCmd.Flags().StringVar(&logsCleanOlder, "older", "", "delete logs older than this (e.g., 7d, 48h)")
}

type logFileView struct {
	Name string    `json:"name"`
	Path string    `json:"path"`
	Day  time.Time `json:"day"`
	Size int64     `json:"size"`
}

// runLogsList displays the daily log files.
func runLogsList(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	dir := a.cfg.Logs.Dir

	files, err := sessionlog.List(dir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if machineMode {
		views := make([]logFileView, len(files))
		for i, f := range files {
			views[i] = logFileView{Name: f.Name(), Path: f.Path, Day: f.Day, Size: f.Size}
		}
		return WriteJSONSuccess(out, views)
	}

	if len(files) == 0 {
		fmt.Fprintln(out, "No session logs found.")
		fmt.Fprintf(out, "Logs are stored in: %s\n", dir)
		if !a.cfg.Logs.Enabled {
			fmt.Fprintln(out, ui.MutedStyle().Render("Logging is off (logs.enabled: false)."))
		}
		return nil
	}

	var total int64
	rows := make([][]string, len(files))
	for i, f := range files {
		total += f.Size
		rows[i] = []string{f.Name(), humanize.IBytes(uint64(f.Size)), humanize.Time(f.Day)}
	}
	fmt.Fprint(out, ui.RenderTable([]ui.TableColumn{{Title: "FILE"}, {Title: "SIZE"}, {Title: "DAY"}}, rows))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Total: %d files, %s in %s\n", len(files), humanize.IBytes(uint64(total)), dir)
	if a.cfg.Logs.KeepDays > 0 {
		fmt.Fprintln(out, ui.MutedStyle().Render(fmt.Sprintf("Retention: keep_days %d", a.cfg.Logs.KeepDays)))
	}
	return nil
}

func runLogsShow(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	day := time.Now()
	if len(args) == 1 {
		day, err = time.ParseInLocation(sessionlog.DayLayout, args[0], time.Local)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("'%s' isn't a date", args[0]),
				"Use YYYY-MM-DD, e.g. "+time.Now().Format(sessionlog.DayLayout))
		}
	}

	path := filepath.Join(a.cfg.Logs.Dir, day.Format(sessionlog.DayLayout)+".log")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New(errors.ErrNotFound,
				"No log for "+day.Format(sessionlog.DayLayout),
				"Run 'cq logs' to see which days have logs.")
		}
		return errors.WrapWithCode(err, errors.ErrExec, "Can't read "+path, "Check your permissions.")
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// runLogsClean removes old log files.
func runLogsClean(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	dir := a.cfg.Logs.Dir

	var removed []string
	switch {
	case logsCleanAll:
		removed, err = sessionlog.CleanAll(dir)
	case logsCleanOlder != "":
		d, perr := parseDurationWithDays(logsCleanOlder)
		if perr != nil || d <= 0 {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Invalid duration '%s'", logsCleanOlder),
				"Use format like '7d' for days or '48h' for hours.")
		}
		removed, err = sessionlog.CleanByAge(dir, int(math.Ceil(d.Hours()/24)), time.Now())
	default:
		if a.cfg.Logs.KeepDays <= 0 {
			printDone(cmd, "Retention is off (logs.keep_days: 0); nothing to clean.")
			return nil
		}
		removed, err = sessionlog.CleanByAge(dir, a.cfg.Logs.KeepDays, time.Now())
	}
	if err != nil {
		return err
	}

	if len(removed) == 0 {
		printDone(cmd, "No logs needed cleanup.")
		return nil
	}
	printDone(cmd, fmt.Sprintf("Deleted %d log %s.", len(removed), util.Plural(len(removed), "file")))
	return nil
}

// parseDurationWithDays parses a duration string that may include 'd' for days.
func parseDurationWithDays(s string) (time.Duration, error) {
	if len(s) > 0 && s[len(s)-1] == 'd' {
		var d int
		if _, err := fmt.Sscanf(s[:len(s)-1], "%d", &d); err != nil {
			return 0, err
		}
		return time.Duration(d) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
