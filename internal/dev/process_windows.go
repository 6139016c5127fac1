//go:build windows

package dev

import "os/exec"

// configureProcess is a no-op on Windows; there are no Unix process groups.
func configureProcess(cmd *exec.Cmd) {}

// terminateProcess kills the toolchain process. Grandchildren are not
// tracked; Windows jobs would be required for that.
func terminateProcess(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
