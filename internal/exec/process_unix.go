//go:build !windows

package exec

import (
	"errors"
	"os"
	osexec "os/exec"
	"syscall"
)

// shellFlag is appended when the configured shell names only a binary.
const shellFlag = "-c"

func defaultShell() []string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return []string{sh, shellFlag}
	}
	return []string{"/bin/sh", shellFlag}
}

// prepare starts the child in its own process group so the whole tree can
// be signalled at once.
func prepare(cmd *osexec.Cmd, shell []string, command string) {
	cmd.Args = append(append([]string{}, shell...), command)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killTree sends SIGKILL to the child's process group.
func killTree(cmd *osexec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	if errors.Is(err, syscall.ESRCH) {
		return os.ErrProcessDone
	}
	if err != nil {
		// Group signalling failed; at least take down the shell.
		return cmd.Process.Kill()
	}
	return nil
}
