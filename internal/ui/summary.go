package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/cq/internal/exec"
	"github.com/rileyhilliard/cq/internal/util"
)

// RenderQueueSummary describes how a queue run ended. total is the number
// of items that were queued, so a cancelled run can say how far it got.
func RenderQueueSummary(res *exec.QueueResult, total int) string {
	if res == nil {
		return ""
	}

	ran := len(res.Items)
	elapsed := MutedStyle().Render(formatDuration(queueDuration(res)))

	var sb strings.Builder
	switch res.State {
	case exec.Cancelled:
		sb.WriteString(WarningStyle().Render(fmt.Sprintf("%s Cancelled after %d of %d %s", SymbolSkipped, ran, total, util.Plural(total, "command"))))
	case exec.StoppedOnError:
		last := res.Items[ran-1]
		sb.WriteString(ErrorStyle().Render(fmt.Sprintf("%s Stopped on error: %s exited %d", SymbolFail, last.Item.Friendly, last.ExitCode)))
	case exec.Faulted:
		last := res.Items[ran-1]
		sb.WriteString(ErrorStyle().Render(fmt.Sprintf("%s Couldn't start: %s", SymbolFail, last.Item.Friendly)))
	default:
		failed := res.Failed()
		if len(failed) == 0 {
			sb.WriteString(SuccessStyle().Render(fmt.Sprintf("%s %d %s completed", SymbolSuccess, ran, util.Plural(ran, "command"))))
			break
		}
		sb.WriteString(ErrorStyle().Render(fmt.Sprintf("%s %d of %d %s failed", SymbolFail, len(failed), ran, util.Plural(ran, "command"))))
		sb.WriteString(" " + elapsed + "\n")
		for _, f := range failed {
			status := fmt.Sprintf("exit %d", f.ExitCode)
			if f.Err != nil {
				status = "not started"
			}
			sb.WriteString(fmt.Sprintf("  line %d  %s  %s\n", f.Item.Line, f.Item.Friendly, MutedStyle().Render(status)))
		}
		return sb.String()
	}
	sb.WriteString(" " + elapsed + "\n")
	return sb.String()
}

func queueDuration(res *exec.QueueResult) time.Duration {
	if len(res.Items) == 0 {
		return 0
	}
	return res.Items[len(res.Items)-1].Finished.Sub(res.Items[0].Started)
}

func formatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("(%.2fs)", secs)
	}
	return fmt.Sprintf("(%.1fs)", secs)
}
