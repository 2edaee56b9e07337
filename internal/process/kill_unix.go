//go:build !windows

// Package process cleans up browser process trees.
package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group led by pid.
// A pid that leads no group is ignored.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
