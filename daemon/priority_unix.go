//go:build unix

package daemon

import (
	"time"

	"golang.org/x/sys/unix"
)

// niceForInterval maps a loop interval onto a suggested nice-value
// adjustment (spec.md §4.5): tighter loops run closer to normal
// priority, loose ones are suggested to yield more.
func niceForInterval(interval time.Duration) int {
	switch {
	case interval <= 0:
		return 0
	case interval < time.Second:
		return 0
	case interval < 10*time.Second:
		return 2
	case interval < time.Minute:
		return 5
	default:
		return 10
	}
}

// applySelfNice applies niceForInterval's suggestion to this process,
// returning an error the caller should log (not treat as fatal) if the
// process lacks CAP_SYS_NICE / isn't privileged enough to lower it.
func applySelfNice(interval time.Duration) error {
	delta := niceForInterval(interval)
	if delta == 0 {
		return nil
	}
	cur, err := unix.Getpriority(unix.PRIO_PROCESS, 0)
	if err != nil {
		return err
	}
	return unix.Setpriority(unix.PRIO_PROCESS, 0, 20-cur+delta)
}
