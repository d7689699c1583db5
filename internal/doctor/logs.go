package doctor

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/rileyhilliard/cq/internal/config"
	"github.com/rileyhilliard/cq/internal/sessionlog"
)

// LogsDirCheck verifies the session log directory and reports its size.
type LogsDirCheck struct {
	Logs config.LogsConfig
}

func (c *LogsDirCheck) Name() string     { return "logs_dir" }
func (c *LogsDirCheck) Category() string { return CategoryLogs }

func (c *LogsDirCheck) Run() CheckResult {
	if !c.Logs.Enabled {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "Session logging is off",
		}
	}

	result := dirResult(c.Name(), c.Logs.Dir, "Log", "Set 'logs.dir' in .cq.yaml to a writable directory")
	if result.Status != StatusPass {
		return result
	}

	files, err := sessionlog.List(c.Logs.Dir)
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusWarn,
			Message: fmt.Sprintf("Can't list logs: %s", firstLine(err)),
		}
	}
	var total int64
	for _, f := range files {
		total += f.Size
	}
	retention := "kept forever"
	if c.Logs.KeepDays > 0 {
		retention = fmt.Sprintf("kept %d days", c.Logs.KeepDays)
	}
	result.Message = fmt.Sprintf("%d log file%s, %s in %s (%s)",
		len(files), pluralize(len(files)), humanize.IBytes(uint64(total)), c.Logs.Dir, retention)
	return result
}

func (c *LogsDirCheck) Fix() error {
	if !c.Logs.Enabled {
		return nil
	}
	return os.MkdirAll(c.Logs.Dir, 0755)
}

// NewLogsChecks creates the session log checks.
func NewLogsChecks(l config.LogsConfig) []Check {
	return []Check{&LogsDirCheck{Logs: l}}
}
