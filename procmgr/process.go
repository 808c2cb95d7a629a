package procmgr

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// Process tracks one child process belonging to a group (worker pool
// alias).
type Process struct {
	PID              int
	Group            string
	StartTime        time.Time
	CurrentJobCallID int64
	MinTTL           time.Duration
	StopDeadline     time.Duration
}

// ExitStatus is the outcome of a reaped process.
type ExitStatus struct {
	ExitCode int
	Signaled bool
}

// Age returns how long the process has been running.
func (p *Process) Age() time.Duration {
	return time.Since(p.StartTime)
}

// Sample is a point-in-time resource reading for a Process.
type Sample struct {
	CPUPercent float64
	RSSBytes   uint64
}

// Sample reads p's current CPU/RSS usage via gopsutil. It only succeeds
// for a real OS process (execSpawner-backed); a goroutine-backed process
// has a synthetic pid with no corresponding /proc entry and Sample
// returns an error, which callers (e.g. a SIGUSR1 stats dump) should
// treat as "unavailable", not fatal.
func (p *Process) Sample(ctx context.Context) (Sample, error) {
	proc, err := process.NewProcessWithContext(ctx, int32(p.PID))
	if err != nil {
		return Sample{}, fmt.Errorf("procmgr: sample pid %d: %w", p.PID, err)
	}

	cpu, err := proc.CPUPercentWithContext(ctx)
	if err != nil {
		return Sample{}, fmt.Errorf("procmgr: sample pid %d cpu: %w", p.PID, err)
	}

	mem, err := proc.MemoryInfoWithContext(ctx)
	if err != nil {
		return Sample{}, fmt.Errorf("procmgr: sample pid %d memory: %w", p.PID, err)
	}

	return Sample{CPUPercent: cpu, RSSBytes: mem.RSS}, nil
}
