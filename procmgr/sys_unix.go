//go:build unix

package procmgr

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// terminateSignal is the graceful-shutdown signal sent to child
// processes before the forceful-kill escalation.
func terminateSignal() os.Signal {
	return syscall.SIGTERM
}

// applyNice lowers pid's scheduling priority by delta (positive = lower
// priority), matching the "lower its scheduling priority" step of a fork
// (spec.md §4.3).
func applyNice(pid, delta int) error {
	cur, err := unix.Getpriority(unix.PRIO_PROCESS, pid)
	if err != nil {
		return err
	}
	// Getpriority returns 20-nice; translate back before adjusting.
	niceValue := 20 - cur + delta
	return unix.Setpriority(unix.PRIO_PROCESS, pid, niceValue)
}
