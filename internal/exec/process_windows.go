//go:build windows

package exec

import (
	"os"
	osexec "os/exec"
	"strconv"
	"strings"
	"syscall"
)

const shellFlag = "/C"

func defaultShell() []string {
	if comspec := os.Getenv("ComSpec"); comspec != "" {
		return []string{comspec, shellFlag}
	}
	return []string{"cmd.exe", shellFlag}
}

// prepare passes the command line through verbatim. cmd.exe does its own
// parsing and breaks on Go's argument escaping.
func prepare(cmd *osexec.Cmd, shell []string, command string) {
	parts := make([]string, 0, len(shell)+1)
	parts = append(parts, syscall.EscapeArg(shell[0]))
	parts = append(parts, shell[1:]...)
	parts = append(parts, command)
	cmd.SysProcAttr = &syscall.SysProcAttr{CmdLine: strings.Join(parts, " ")}
}

// killTree terminates the child and all of its descendants.
func killTree(cmd *osexec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	kill := osexec.Command("taskkill", "/T", "/F", "/PID", strconv.Itoa(cmd.Process.Pid))
	if err := kill.Run(); err != nil {
		return cmd.Process.Kill()
	}
	return nil
}
