// Package procmgr creates, groups, tracks, and reaps child workers, and
// detects churn (processes that exit before their minimum time-to-live too
// often in a rolling window).
//
// The source system this is distilled from forks worker processes
// directly; a Go port generalizes "child" into the Spawner abstraction so
// the same tracking and churn-detection logic covers both a real OS
// process (os/exec, used by the daemon's ad-hoc task fork) and an
// in-process, panic-isolated goroutine (used by a Mediator's persistent
// worker pool). The supervision shape — spawn, reap, restart, circuit-
// breaker — follows worker.supervisor in this repository's worker
// package.
package procmgr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/joeycumines/go-catrate"
)

// ErrChurn is raised by Reap when more than the configured number of
// processes in a group have exited before their MinTTL within the rolling
// churn window — a sign of a runaway fork storm.
var ErrChurn = errors.New("procmgr: churn detected, recently forked processes are continuously failing")

// ChurnWindow is the rolling window spec.md §4.3 evaluates churn over.
const ChurnWindow = 120 * time.Second

// ChurnThreshold is the number of premature exits allowed within
// ChurnWindow before ErrChurn is raised.
const ChurnThreshold = 5

// Hooks lets the daemon observe fork/reap events without procmgr
// depending on the daemon's event bus.
type Hooks struct {
	OnFork func(p *Process)
	OnReap func(p *Process, status ExitStatus)
}

// reapResult is delivered on the manager's completion channel once a
// child finishes.
type reapResult struct {
	pid    int
	status ExitStatus
	err    error
}

// Manager creates, groups, and reaps children across worker pools.
type Manager struct {
	mu       sync.Mutex
	byPID    map[int]*Process
	byGroup  map[string]map[int]*Process
	spawners map[int]Spawner
	reaped   chan reapResult
	churn    *catrate.Limiter
	hooks    Hooks
	logger   *slog.Logger
}

// New constructs a Manager. hooks may have nil fields; a nil field is
// simply not invoked.
func New(logger *slog.Logger, hooks Hooks) *Manager {
	return &Manager{
		byPID:    make(map[int]*Process),
		byGroup:  make(map[string]map[int]*Process),
		spawners: make(map[int]Spawner),
		reaped:   make(chan reapResult, 64),
		churn:    catrate.NewLimiter(map[time.Duration]int{ChurnWindow: ChurnThreshold}),
		hooks:    hooks,
		logger:   logger.With(slog.String("component", "procmgr.Manager")),
	}
}

// Fork starts sp and places it into group. lowerNice, if non-zero, is
// applied as a best-effort scheduling-priority hint to a real OS process
// (ignored for goroutine-backed spawners); a failure to apply it is
// logged, not fatal. On success, dispatches hooks.OnFork and returns the
// tracked Process.
func (m *Manager) Fork(ctx context.Context, group string, sp Spawner, minTTL time.Duration, lowerNice int) (*Process, error) {
	pid, err := sp.Start()
	if err != nil {
		return nil, fmt.Errorf("procmgr: fork %s: %w", group, err)
	}

	if _, isFunc := sp.(*funcSpawner); lowerNice != 0 && !isFunc {
		if err := applyNice(pid, lowerNice); err != nil {
			m.logger.Warn("procmgr: could not apply nice value", slog.Int("pid", pid), slog.Any("error", err))
		}
	}

	p := &Process{
		PID:          pid,
		Group:        group,
		StartTime:    time.Now(),
		MinTTL:       minTTL,
		StopDeadline: 60 * time.Second,
	}

	m.mu.Lock()
	m.byPID[pid] = p
	if m.byGroup[group] == nil {
		m.byGroup[group] = make(map[int]*Process)
	}
	m.byGroup[group][pid] = p
	m.spawners[pid] = sp
	m.mu.Unlock()

	go m.waitAndReport(sp, pid)

	if m.hooks.OnFork != nil {
		m.hooks.OnFork(p)
	}

	return p, nil
}

func (m *Manager) waitAndReport(sp Spawner, pid int) {
	status, err := sp.Wait()
	m.reaped <- reapResult{pid: pid, status: status, err: err}
}

// Reap waits for one child to exit. If block is false and no child has
// exited, Reap returns (nil, ExitStatus{}, nil) immediately. On a reaped
// pid, the process is removed from its group, hooks.OnReap is dispatched,
// and churn detection runs: if the process exited before its MinTTL, the
// failure is recorded in a rolling ChurnWindow; more than ChurnThreshold
// such failures returns ErrChurn, which the caller (the daemon) must treat
// as fatal. Otherwise an error reported by the spawner's Wait (such as a
// recovered panic in a goroutine-backed spawner) is returned alongside
// the reaped process.
func (m *Manager) Reap(ctx context.Context, block bool) (*Process, ExitStatus, error) {
	var rr reapResult
	if block {
		select {
		case rr = <-m.reaped:
		case <-ctx.Done():
			return nil, ExitStatus{}, ctx.Err()
		}
	} else {
		select {
		case rr = <-m.reaped:
		default:
			return nil, ExitStatus{}, nil
		}
	}

	m.mu.Lock()
	p, ok := m.byPID[rr.pid]
	if ok {
		delete(m.byPID, rr.pid)
		delete(m.byGroup[p.Group], rr.pid)
		delete(m.spawners, rr.pid)
	}
	m.mu.Unlock()
	if !ok {
		return nil, rr.status, nil
	}

	if m.hooks.OnReap != nil {
		m.hooks.OnReap(p, rr.status)
	}

	if p.Age() < p.MinTTL {
		if _, allowed := m.churn.Allow(p.Group); !allowed {
			m.logger.Error("procmgr: churn threshold exceeded",
				slog.String("group", p.Group), slog.Int("pid", p.PID))
			return p, rr.status, ErrChurn
		}
	}

	return p, rr.status, rr.err
}

// Stop sends a graceful terminate signal to the process; if it has not
// exited within timeout, it is forcefully killed.
func (m *Manager) Stop(p *Process, timeout time.Duration) error {
	m.mu.Lock()
	sp, ok := m.spawners[p.PID]
	m.mu.Unlock()
	if !ok {
		return nil
	}

	if err := sp.Signal(); err != nil {
		m.logger.Warn("procmgr: terminate signal failed, killing", slog.Int("pid", p.PID), slog.Any("error", err))
		return sp.Kill()
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case rr := <-m.reaped:
			if rr.pid == p.PID {
				m.reaped <- rr // let Reap() observe it normally
				return nil
			}
			m.reaped <- rr
		case <-timer.C:
			return sp.Kill()
		}
	}
}

// Count returns the number of tracked processes in group, or across all
// groups if group is empty.
func (m *Manager) Count(group string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if group == "" {
		return len(m.byPID)
	}
	return len(m.byGroup[group])
}

// Processes returns a snapshot of the processes in group, or across all
// groups if group is empty.
func (m *Manager) Processes(group string) []*Process {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*Process
	if group == "" {
		for _, p := range m.byPID {
			out = append(out, p)
		}
		return out
	}
	for _, p := range m.byGroup[group] {
		out = append(out, p)
	}
	return out
}

// Process returns the tracked process for pid, if any.
func (m *Manager) Process(pid int) (*Process, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byPID[pid]
	return p, ok
}

// Shutdown stops and reaps every tracked process, looping until none
// remain. It is the teardown protocol invoked by the daemon on graceful
// shutdown.
func (m *Manager) Shutdown(ctx context.Context, timeout time.Duration) {
	for {
		procs := m.Processes("")
		if len(procs) == 0 {
			return
		}
		for _, p := range procs {
			if err := m.Stop(p, timeout); err != nil {
				m.logger.Warn("procmgr: stop failed during shutdown", slog.Int("pid", p.PID), slog.Any("error", err))
			}
		}
		if _, _, err := m.Reap(ctx, true); err != nil && !errors.Is(err, ErrChurn) {
			if ctx.Err() != nil {
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// Self returns the process id of the current process, used for
// diagnostics and as the sender pid stamped into envelopes.
func Self() int {
	return os.Getpid()
}
