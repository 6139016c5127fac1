//go:build !windows

package dev

import (
	"os/exec"
	"syscall"
)

// configureProcess places the toolchain in its own process group so that
// terminating it also takes down whatever it forked (npm forks everything).
func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// terminateProcess signals the toolchain's whole process group.
func terminateProcess(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	if pgid, err := syscall.Getpgid(cmd.Process.Pid); err == nil {
		return syscall.Kill(-pgid, syscall.SIGTERM)
	}
	return cmd.Process.Kill()
}
