//go:build unix

// Package osutil provides platform-specific process handling used by the
// process runner, in particular process-group setup so that a timed-out
// installer and all of its children can be killed together.
package osutil

import (
	"os/exec"
	"syscall"
)

// SetProcessGroup configures the command to run in its own process group.
// This allows killing the entire process tree on timeout.
func SetProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// SetProcessGroupKill sets up a cancel function that kills the entire
// process group. Must be called after SetProcessGroup and before cmd.Start().
func SetProcessGroupKill(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
