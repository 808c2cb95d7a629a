// Package daemon implements the Daemon Event Loop: a periodic supervisor
// that hosts plug-ins and worker mediators, delivers process signals, and
// auto-restarts on drift or fatal error (spec.md §4.5).
//
// It is grounded on app.go's App.Run/App.Stop — layered startup/shutdown,
// os/signal-driven graceful termination, per-phase error aggregation —
// generalized from a one-shot service starter into a periodic tick loop
// with residual-sleep accounting and self-exec restart.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/petabytecl/godaemon/plugin"
	"github.com/petabytecl/godaemon/procmgr"
)

const adHocGroup = "ad-hoc"

// Pool is the subset of mediator.Mediator the Daemon hosts generically,
// so this package need not import mediator (mediator has no reason to
// depend on daemon either; the two are wired together by whatever
// constructs a Daemon).
type Pool interface {
	Alias() string
	CheckEnvironment() error
	// Attach marks the pool as owned by the daemon. When recoverMode is
	// true, the pool rehydrates its persistent shared store instead of
	// purging it (spec.md §4.4 "Crash recovery").
	Attach(ctx context.Context, recoverMode bool) error
	// Tick runs one supervisor iteration. A non-nil error means the pool
	// has hit an unrecoverable condition (spec.md §4.1/§7's transport
	// error-threshold escalation); the daemon treats it the same as
	// worker churn and begins a fatal shutdown.
	Tick(ctx context.Context) error
	GC()
	IsIdle() bool
}

// SetupFunc is the user hook run once at startup, after every plug-in and
// pool has been attached (spec.md §4.5 step 6).
type SetupFunc func(ctx context.Context) error

// ExecuteFunc is the user hook run once per tick, alongside the hosted
// pools' Tick calls (spec.md §4.5's `execute()`).
type ExecuteFunc func(ctx context.Context) error

// Daemon is the periodic supervisor described in spec.md §4.5.
type Daemon struct {
	cfg    Config
	procs  *procmgr.Manager
	events *eventBus
	stats  *statsRing
	logger *slog.Logger

	pools   []Pool
	plugins []plugin.Plugin

	otel *otelStats

	setupFn   SetupFunc
	executeFn ExecuteFunc

	locks     []plugin.Lock
	lockOwner string

	mu           sync.Mutex
	shuttingDown bool
	fatalErr     error
	startTime    time.Time

	sigCh chan os.Signal

	// runCancel/runDone back OnStart/OnStop (lifecycle.go) when a Daemon
	// is hosted inside a di-managed App rather than run directly.
	runCancel context.CancelFunc
	runDone   chan error
}

// New constructs a Daemon. procs is shared with every hosted Pool so
// ad-hoc Fork tasks and persistent worker pools are reaped by the same
// machinery (SPEC_FULL.md's resolution of spec.md's task-fork vs.
// persistent-worker Open Question).
func New(cfg Config, procs *procmgr.Manager, logger *slog.Logger, opts ...Option) *Daemon {
	logger = logger.With(slog.String("component", "daemon.Daemon"))
	d := &Daemon{
		cfg:    cfg,
		procs:  procs,
		events: newEventBus(logger),
		stats:  newStatsRing(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RegisterPool hosts pool, to be attached and ticked by the loop. Must be
// called before Run.
func (d *Daemon) RegisterPool(pool Pool) {
	d.pools = append(d.pools, pool)
}

// RegisterPlugin hosts plugin, set up in declared order and torn down in
// reverse. Must be called before Run.
func (d *Daemon) RegisterPlugin(p plugin.Plugin) {
	d.plugins = append(d.plugins, p)
}

// OnSetup registers the user setup hook (spec.md §4.5 step 6).
func (d *Daemon) OnSetup(fn SetupFunc) { d.setupFn = fn }

// OnExecute registers the per-tick user hook.
func (d *Daemon) OnExecute(fn ExecuteFunc) { d.executeFn = fn }

// On registers cb for kind, returning a Handle usable with Off.
func (d *Daemon) On(kind Kind, cb Callback) Handle { return d.events.On(kind, cb) }

// Off removes the callback identified by h.
func (d *Daemon) Off(h Handle) { d.events.Off(h) }

// Dispatch fans out a user-defined event to every ON_* listener for kind.
func (d *Daemon) Dispatch(kind Kind, args ...any) { d.events.Dispatch(kind, args...) }

// StatsMean returns the trimmed mean tick duration over the most recent n
// samples (spec.md §4.5's `stats_mean(n)`).
func (d *Daemon) StatsMean(n int) time.Duration { return d.stats.Mean(n) }

// Fork runs fn as an ad-hoc background task that exits on completion,
// distinct from a Pool's persistent worker pool (spec.md §4.5's `fork`).
// If rerunSetup is true, the user setup hook runs again inside the task
// before fn.
func (d *Daemon) Fork(ctx context.Context, fn func(ctx context.Context) error, rerunSetup bool) (*procmgr.Process, error) {
	task := fn
	if rerunSetup && d.setupFn != nil {
		setup := d.setupFn
		task = func(ctx context.Context) error {
			if err := setup(ctx); err != nil {
				return err
			}
			return fn(ctx)
		}
	}

	sp := procmgr.NewFuncSpawner(ctx, task)
	p, err := d.procs.Fork(ctx, adHocGroup, sp, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("daemon: fork: %w", err)
	}
	d.events.Dispatch(OnFork, p)
	return p, nil
}

// Run executes the full startup sequence (spec.md §4.5 steps 1-7) and
// then enters the tick loop until a shutdown signal, a fatal error, or
// ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	// Step 1 (construct mediators/plug-ins) is the caller's
	// responsibility via RegisterPool/RegisterPlugin before Run.

	// Step 2: check environment.
	for _, p := range d.plugins {
		if err := p.CheckEnvironment(ctx); err != nil {
			return fmt.Errorf("daemon: plugin %s environment check: %w", p.Name(), err)
		}
	}
	for _, pool := range d.pools {
		if err := pool.CheckEnvironment(); err != nil {
			return fmt.Errorf("daemon: pool %s environment check: %w", pool.Alias(), err)
		}
	}

	// Step 3: ON_INIT — any registered plug-in implementing plugin.Lock
	// acquires its lock here, before a pool can fork a single worker, so a
	// duplicate running instance is detected as early as possible
	// (spec.md §4.5 step 3, §4.7).
	d.events.Dispatch(OnInit)
	if err := d.acquireLocks(ctx); err != nil {
		return fmt.Errorf("daemon: duplicate instance detected: %w", err)
	}

	// Step 4: plug-in setup, declared order.
	for i, p := range d.plugins {
		if err := p.Setup(ctx); err != nil {
			d.releaseLocks(ctx)
			d.teardownPlugins(ctx, i-1)
			return fmt.Errorf("daemon: plugin %s setup: %w", p.Name(), err)
		}
	}

	// Step 5: mediator setup (may eagerly fork).
	for _, pool := range d.pools {
		if err := pool.Attach(ctx, d.cfg.Recover); err != nil {
			d.releaseLocks(ctx)
			d.teardownPlugins(ctx, len(d.plugins)-1)
			return fmt.Errorf("daemon: pool %s attach: %w", pool.Alias(), err)
		}
	}

	// Step 6: user setup.
	if d.setupFn != nil {
		if err := d.setupFn(ctx); err != nil {
			d.releaseLocks(ctx)
			d.teardownPlugins(ctx, len(d.plugins)-1)
			return fmt.Errorf("daemon: user setup: %w", err)
		}
	}

	if d.cfg.PIDFile != "" {
		if err := writePIDFile(d.cfg.PIDFile, os.Getpid()); err != nil {
			d.teardownPlugins(ctx, len(d.plugins)-1)
			return err
		}
	}

	if err := applySelfNice(d.cfg.LoopInterval); err != nil {
		d.logger.Info("daemon: could not apply suggested nice value", slog.Any("error", err))
	}

	// Step 7: log readiness, begin run.
	d.logger.Info("daemon ready", slog.Int("pools", len(d.pools)), slog.Int("plugins", len(d.plugins)),
		slog.Duration("loop_interval", d.cfg.LoopInterval))

	runErr := d.run(ctx)
	if fatal := d.takeFatalErr(); fatal != nil {
		return d.handleFatal(fatal)
	}
	return runErr
}

// handleFatal decides, once the tick loop has shut down because of a
// fatal error, whether to self-restart or propagate the failure. A
// restart is only attempted for a detached daemon that has been up for
// at least MinRestartUptime (spec.md §7); otherwise fatal is returned
// as-is, so the caller (cmd/daemon) exits with a non-zero status
// (spec.md §6).
func (d *Daemon) handleFatal(fatal error) error {
	if !d.cfg.Detached || time.Since(d.startTime) < d.cfg.minRestartUptime() {
		return fatal
	}

	d.logger.Error("daemon: fatal error after minimum uptime, attempting self-restart", slog.Any("error", fatal))
	if err := d.restartSelf(); err != nil {
		return fmt.Errorf("daemon: restart after fatal error failed: %w: %w", err, fatal)
	}
	return nil // unreachable on success: execSelf replaces the process
}

// lockTTLPadding is added to loop_interval when computing a Lock's TTL, so
// the lock outlives one full tick and a SIGUSR1/slow-tick delay without
// expiring under a still-live owner (spec.md §4.7).
const lockTTLPadding = 2 * time.Second

// acquireLocks calls Acquire on every registered plug-in implementing
// plugin.Lock, stopping and returning the first error (typically
// ErrLockHeld, meaning another instance is already running against the
// same lock). Successfully acquired locks are tracked so they can be
// released on rollback or at shutdown.
func (d *Daemon) acquireLocks(ctx context.Context) error {
	d.lockOwner = lockOwner()
	ttl := plugin.Duration((d.cfg.LoopInterval + lockTTLPadding).Milliseconds())

	for _, p := range d.plugins {
		lock, ok := p.(plugin.Lock)
		if !ok {
			continue
		}
		if err := lock.Acquire(ctx, d.lockOwner, ttl); err != nil {
			return fmt.Errorf("%s: %w", lock.Name(), err)
		}
		d.locks = append(d.locks, lock)
	}
	return nil
}

// releaseLocks gives up every lock acquireLocks took, in reverse order.
func (d *Daemon) releaseLocks(ctx context.Context) {
	for i := len(d.locks) - 1; i >= 0; i-- {
		if err := d.locks[i].Release(ctx, d.lockOwner); err != nil {
			d.logger.Error("daemon: lock release failed",
				slog.String("lock", d.locks[i].Name()), slog.Any("error", err))
		}
	}
	d.locks = nil
}

// lockOwner identifies this process to a Lock, unique enough across hosts
// and restarts to distinguish a live instance from a stale one.
func lockOwner() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return fmt.Sprintf("%s:%d", host, os.Getpid())
}

func (d *Daemon) teardownPlugins(ctx context.Context, fromIdx int) {
	for i := fromIdx; i >= 0; i-- {
		if err := d.plugins[i].Teardown(ctx); err != nil {
			d.logger.Error("daemon: plugin teardown failed during rollback",
				slog.String("plugin", d.plugins[i].Name()), slog.Any("error", err))
		}
	}
}

func (d *Daemon) run(ctx context.Context) error {
	d.sigCh = make(chan os.Signal, 8)
	notifySignals(d.sigCh)
	defer stopNotify(d.sigCh)

	d.startTime = time.Now()

	for {
		if d.isShuttingDown() || ctx.Err() != nil {
			return d.shutdownSequence(ctx)
		}

		select {
		case sig := <-d.sigCh:
			d.handleSignal(sig)
			continue
		default:
		}

		tickStart := time.Now()
		d.events.Dispatch(OnRun)

		if d.executeFn != nil {
			d.safeExecute(ctx)
		}

		allIdle := true
		for _, pool := range d.pools {
			if err := pool.Tick(ctx); err != nil {
				d.logger.Error("daemon: pool reported fatal error, beginning fatal shutdown",
					slog.String("pool", pool.Alias()), slog.Any("error", err))
				d.events.Dispatch(OnError, err)
				d.beginFatalShutdown(fmt.Errorf("%w: %w", ErrFatal, err))
				continue
			}
			pool.GC()
			if !pool.IsIdle() {
				allIdle = false
			}
		}
		if allIdle {
			d.events.Dispatch(OnIdle)
		}

		d.reapOnce(ctx)

		elapsed := time.Since(tickStart)
		d.checkTickBudget(elapsed)

		idle := d.residualSleep(ctx, elapsed)
		stat := tickStat{Duration: elapsed, Idle: idle}
		d.stats.Push(stat)
		d.otel.record(ctx, stat)

		if d.cfg.Detached && d.cfg.AutoRestartInterval > 0 && time.Since(d.startTime) >= d.cfg.AutoRestartInterval {
			d.logger.Info("daemon: auto-restart interval elapsed, restarting")
			return d.restartSelf()
		}
	}
}

func (d *Daemon) safeExecute(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("daemon: user execute panicked", slog.Any("panic", r))
			d.events.Dispatch(OnError, fmt.Errorf("daemon: execute panicked: %v", r))
		}
	}()
	if err := d.executeFn(ctx); err != nil {
		d.logger.Error("daemon: user execute returned error", slog.Any("error", err))
		d.events.Dispatch(OnError, err)
	}
}

func (d *Daemon) checkTickBudget(elapsed time.Duration) {
	if d.cfg.LoopInterval <= 0 {
		return
	}
	ratio := float64(elapsed) / float64(d.cfg.LoopInterval)
	switch {
	case ratio > 1:
		d.logger.Warn("daemon: tick exceeded loop_interval",
			slog.Duration("elapsed", elapsed), slog.Duration("loop_interval", d.cfg.LoopInterval))
	case ratio > 0.9:
		d.logger.Info("daemon: tick approaching loop_interval budget",
			slog.Duration("elapsed", elapsed), slog.Duration("loop_interval", d.cfg.LoopInterval))
	}
}

// tickOverrunYield is the fixed yield residualSleep takes in place of a
// (negative) residual sleep once a tick has overrun loop_interval, so the
// loop doesn't busy-spin while still surfacing the overrun in stats.
const tickOverrunYield = 2 * time.Millisecond

// residualSleep sleeps out the remainder of loop_interval after elapsed,
// waking early for a shutdown signal or SIGCONT (spec.md §4.5/§6); any
// other pending signal observed during the wait is handled immediately
// and does not extend the sleep past its own processing time. If the
// tick overran loop_interval, residual is replaced by a short yield and
// the returned duration is negative, recording the overrun in stats
// instead of a meaningless zero idle time.
func (d *Daemon) residualSleep(ctx context.Context, elapsed time.Duration) time.Duration {
	if d.cfg.LoopInterval <= 0 {
		return 0
	}
	residual := d.cfg.LoopInterval - elapsed
	if residual <= 0 {
		time.Sleep(tickOverrunYield)
		return residual
	}

	start := time.Now()
	timer := time.NewTimer(residual)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			return time.Since(start)
		case <-ctx.Done():
			return time.Since(start)
		case sig := <-d.sigCh:
			d.handleSignal(sig)
			if d.isShuttingDown() || isSigCont(sig) {
				return time.Since(start)
			}
		}
	}
}

func (d *Daemon) handleSignal(sig os.Signal) {
	switch {
	case isSigUSR1(sig):
		d.dumpStats()
	case isSigHUP(sig):
		d.logger.Info("daemon: SIGHUP received, restarting")
		if err := d.restartSelf(); err != nil {
			d.logger.Error("daemon: restart failed", slog.Any("error", err))
			d.events.Dispatch(OnError, err)
		}
	case isSigInt(sig):
		d.beginShutdown()
	case isSigCont(sig):
		// Wakes residualSleep early; no other action.
	default:
		d.events.Dispatch(OnSignal, sig)
	}
}

func (d *Daemon) dumpStats() {
	mean := d.stats.Mean(statsCapacity)
	d.logger.Info("daemon: stats dump", slog.Duration("mean_tick_duration", mean), slog.Int("pools", len(d.pools)))
}

func (d *Daemon) isShuttingDown() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shuttingDown
}

func (d *Daemon) beginShutdown() {
	d.mu.Lock()
	d.shuttingDown = true
	d.mu.Unlock()
}

// beginFatalShutdown begins shutdown the same way beginShutdown does, but
// also records err (first one wins) so Run can decide, after shutdown
// completes, whether to self-restart or propagate it as a failing exit
// (spec.md §6 "1 on unrecoverable fatal error", §7's uptime-gated
// self-restart).
func (d *Daemon) beginFatalShutdown(err error) {
	d.mu.Lock()
	d.shuttingDown = true
	if d.fatalErr == nil {
		d.fatalErr = err
	}
	d.mu.Unlock()
}

func (d *Daemon) takeFatalErr() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fatalErr
}

func (d *Daemon) reapOnce(ctx context.Context) {
	for {
		p, status, err := d.procs.Reap(ctx, false)
		if p == nil && err == nil {
			return
		}
		if p != nil {
			d.events.Dispatch(OnReap, p, status)
		}
		if err != nil {
			d.events.Dispatch(OnError, err)
			if errors.Is(err, procmgr.ErrChurn) {
				d.logger.Error("daemon: churn detected, beginning fatal shutdown")
				d.beginFatalShutdown(fmt.Errorf("%w: %w", ErrFatal, err))
				return
			}
		}
	}
}

func (d *Daemon) restartSelf() error {
	if d.cfg.PIDFile != "" {
		_ = removePIDFileIfMatching(d.cfg.PIDFile, os.Getpid())
	}
	return execSelf()
}

func (d *Daemon) shutdownSequence(ctx context.Context) error {
	d.logger.Info("daemon: shutting down")
	d.events.Dispatch(OnShutdown)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), d.cfg.shutdownTimeout())
	defer cancel()

	d.releaseLocks(shutdownCtx)
	d.teardownPlugins(shutdownCtx, len(d.plugins)-1)

	d.procs.Shutdown(shutdownCtx, d.cfg.workerStopDeadline())

	if d.cfg.PIDFile != "" {
		_ = removePIDFileIfMatching(d.cfg.PIDFile, os.Getpid())
	}

	d.logger.Info("daemon: shutdown complete")
	return nil
}
