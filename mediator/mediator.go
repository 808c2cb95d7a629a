// Package mediator implements the Worker Mediator: a named pool of
// persistent workers that execute user-defined methods asynchronously,
// with message-mediated call/return, bounded concurrency, timeouts,
// retries, and crash recovery of the call buffer.
//
// It is grounded on worker.Manager/worker.supervisor (pool registration,
// panic-recovery, circuit breaking) generalized from a fixed worker
// interface to a method registry dispatched over the transport package's
// envelope queues, and on worker.BackoffConfig's exponential delay for the
// transport's retry delay (jpillora/backoff).
package mediator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/petabytecl/godaemon/call"
	"github.com/petabytecl/godaemon/procmgr"
	"github.com/petabytecl/godaemon/transport"
)

// Handler is a user-defined operation exposed by a worker pool. It runs
// inside the worker, sandboxed by panic recovery; a returned error is
// logged and produces no return-ack, which the supervisor eventually
// observes as a timeout.
type Handler func(ctx context.Context, args []any) (any, error)

// Config is a Worker Pool's static configuration (spec.md §3).
type Config struct {
	Alias                string
	MaxWorkers           int
	TimeoutSeconds       float64
	SharedStoreSizeBytes int
	LoopInterval         time.Duration
}

// Mediator owns one named worker pool: a Transport endpoint, a Process
// Manager group, and the local call registry.
type Mediator struct {
	cfg      Config
	strategy ForkingStrategy

	transport *transport.Transport
	procs     *procmgr.Manager

	mu           sync.Mutex
	methods      map[string]Handler
	calls        map[int64]*call.Call
	runningCalls map[int64]int64 // call_id -> owning pid
	attached     bool

	onReturn  func(*call.Call)
	onTimeout func(*call.Call)

	nextCallID int64
	logger     *slog.Logger
}

// New constructs a Mediator. loopInterval is the daemon's tick interval,
// used to select the forking strategy at construction time (spec.md
// §4.4); it cannot change afterward.
func New(cfg Config, procs *procmgr.Manager, logger *slog.Logger) *Mediator {
	tOpts := []transport.Option{transport.WithQueueCapacity(cfg.SharedStoreSizeBytes/64 + 16)}
	if path, ok := persistPathFor(cfg.Alias); ok {
		tOpts = append(tOpts, transport.WithPersistPath(path))
	} else {
		logger.Warn("mediator: could not resolve executable path, shared store will not survive a restart",
			slog.String("pool", cfg.Alias))
	}

	m := &Mediator{
		cfg:          cfg,
		strategy:     StrategyForInterval(cfg.LoopInterval),
		transport:    transport.New(logger, tOpts...),
		procs:        procs,
		methods:      make(map[string]Handler),
		calls:        make(map[int64]*call.Call),
		runningCalls: make(map[int64]int64),
		logger:       logger.With(slog.String("component", "mediator.Mediator"), slog.String("pool", cfg.Alias)),
	}
	return m
}

// persistPathFor derives the shared store's on-disk location from the
// current executable path and alias via transport.PoolAddress, so a
// restarted supervisor recomputes the same path and, in --recover mode,
// reattaches to the same store (spec.md §4.4, §6). Returns ok=false if the
// executable path cannot be resolved, in which case the pool falls back to
// an in-memory-only store.
func persistPathFor(alias string) (path string, ok bool) {
	exe, err := os.Executable()
	if err != nil {
		return "", false
	}
	addr := transport.PoolAddress(exe, alias)
	return filepath.Join(os.TempDir(), fmt.Sprintf("godaemon-%x.store", addr)), true
}

// Register exposes method under name, callable via Call. Must be called
// before Attach.
func (m *Mediator) Register(name string, h Handler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attached {
		return ErrAlreadyAttached
	}
	m.methods[name] = h
	return nil
}

// OnReturn registers the callback invoked when a call completes
// successfully. Must be called before Attach.
func (m *Mediator) OnReturn(cb func(*call.Call)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attached {
		return ErrAlreadyAttached
	}
	m.onReturn = cb
	return nil
}

// OnTimeout registers the callback invoked when a call times out. Must be
// called before Attach.
func (m *Mediator) OnTimeout(cb func(*call.Call)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attached {
		return ErrAlreadyAttached
	}
	m.onTimeout = cb
	return nil
}

// Workers sets max_workers. Must be called before Attach.
func (m *Mediator) Workers(n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attached {
		return ErrAlreadyAttached
	}
	m.cfg.MaxWorkers = n
	return nil
}

// Timeout sets timeout_seconds. Must be called before Attach.
func (m *Mediator) Timeout(seconds float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attached {
		return ErrAlreadyAttached
	}
	m.cfg.TimeoutSeconds = seconds
	return nil
}

// Allocate sets shared_store_size_bytes. Must be called before Attach.
func (m *Mediator) Allocate(bytes int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attached {
		return ErrAlreadyAttached
	}
	m.cfg.SharedStoreSizeBytes = bytes
	return nil
}

// Alias returns the pool's unique name.
func (m *Mediator) Alias() string { return m.cfg.Alias }

// CheckEnvironment validates the pool's static configuration, run by the
// daemon before any plug-in or pool is set up (spec.md §4.5 step 2).
func (m *Mediator) CheckEnvironment() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg.Alias == "" {
		return fmt.Errorf("mediator: alias must not be empty")
	}
	if m.cfg.MaxWorkers <= 0 {
		return fmt.Errorf("mediator: %s: max_workers must be positive, got %d", m.cfg.Alias, m.cfg.MaxWorkers)
	}
	if m.cfg.TimeoutSeconds <= 0 {
		return fmt.Errorf("mediator: %s: timeout_seconds must be positive, got %f", m.cfg.Alias, m.cfg.TimeoutSeconds)
	}
	return nil
}

// Strategy returns the pool's forking strategy, fixed at construction.
func (m *Mediator) Strategy() ForkingStrategy { return m.strategy }

// Attach marks the pool as owned by the daemon; forking proceeds
// according to strategy (Eager forks max_workers immediately).
//
// If recoverMode is true, the pool rehydrates its persistent shared store
// instead of discarding it: every call found there is reconstructed and
// re-dispatched as UNCALLED, regardless of the status it held when the
// prior instance crashed (spec.md §4.4 "Crash recovery"). If recoverMode
// is false, any store left over from a prior instance at the same address
// is purged so the pool starts from a clean slate.
func (m *Mediator) Attach(ctx context.Context, recoverMode bool) error {
	m.mu.Lock()
	m.attached = true
	m.mu.Unlock()

	if recoverMode {
		m.rehydrate()
	} else {
		m.transport.Purge()
	}

	if m.strategy == Eager {
		return m.ensureWorkers(ctx, m.cfg.MaxWorkers)
	}
	return nil
}

// rehydrate reconstructs every call found in the persistent shared store
// and re-dispatches it as UNCALLED, as if freshly called. nextCallID is
// bumped past the highest id recovered so new calls never collide with a
// rehydrated one.
func (m *Mediator) rehydrate() {
	snaps := m.transport.Snapshots()
	if len(snaps) == 0 {
		return
	}

	for _, snap := range snaps {
		c := call.FromSnapshot(snap)
		if err := c.Transition(call.StatusUncalled); err != nil {
			m.logger.Error("rehydrate: could not reset recovered call to UNCALLED",
				slog.Int64("call_id", c.ID()), slog.Any("error", err))
			continue
		}

		m.mu.Lock()
		m.calls[c.ID()] = c
		m.mu.Unlock()
		bumpNextCallID(&m.nextCallID, c.ID())

		if m.putWithRetry(c) {
			_ = c.Transition(call.StatusCalled)
		} else {
			m.logger.Error("rehydrate: could not re-dispatch recovered call", slog.Int64("call_id", c.ID()))
		}
	}

	m.logger.Warn("rehydrate: recovered calls dispatched as UNCALLED", slog.Int("count", len(snaps)))
}

// bumpNextCallID atomically advances next past seen, so a recovered call
// id is never reused by a subsequently assigned one.
func bumpNextCallID(next *int64, seen int64) {
	for {
		cur := atomic.LoadInt64(next)
		if seen <= cur {
			return
		}
		if atomic.CompareAndSwapInt64(next, cur, seen) {
			return
		}
	}
}

// Call assigns a fresh call_id, constructs a Call with status UNCALLED,
// and publishes it. On success the call transitions to CALLED and the
// pool provisions workers per its strategy. On transport failure after
// the retry budget, the call's args are dropped and ErrCallFailed is
// returned with the (still valid) call_id.
func (m *Mediator) Call(ctx context.Context, method string, args ...any) (int64, error) {
	m.mu.Lock()
	_, known := m.methods[method]
	m.mu.Unlock()
	if !known {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}

	id := atomic.AddInt64(&m.nextCallID, 1)
	c := call.New(id, method, args)

	m.mu.Lock()
	m.calls[id] = c
	m.mu.Unlock()

	if !m.putWithRetry(c) {
		c.SetArgs(nil)
		return id, ErrCallFailed
	}

	if err := c.Transition(call.StatusCalled); err != nil {
		m.logger.Error("call: transition to CALLED failed", slog.Int64("call_id", id), slog.Any("error", err))
	}

	switch m.strategy {
	case Mixed:
		_ = m.ensureWorkers(ctx, m.cfg.MaxWorkers)
	case Lazy:
		if m.allWorkersOccupied() {
			_ = m.ensureWorkers(ctx, m.procs.Count(m.cfg.Alias)+1)
		}
	}

	return id, nil
}

// allWorkersOccupied reports whether the pool has no spare worker to pick
// up another call: either it has none yet (the bootstrap case) or every
// tracked worker already owns a running call. Used by the Lazy strategy
// to decide whether forking one more worker is warranted (spec.md §4.4:
// "fork one worker only when all existing workers are occupied").
func (m *Mediator) allWorkersOccupied() bool {
	have := m.procs.Count(m.cfg.Alias)
	if have == 0 {
		return true
	}
	m.mu.Lock()
	running := len(m.runningCalls)
	m.mu.Unlock()
	return running >= have
}

// Pool invokes the conventional "execute" method, the user-facing sugar
// described in spec.md §4.4.
func (m *Mediator) Pool(ctx context.Context, args ...any) (int64, error) {
	return m.Call(ctx, "execute", args...)
}

// Retry re-enqueues a prior call, preserving its identity.
func (m *Mediator) Retry(callID int64) error {
	m.mu.Lock()
	c, ok := m.calls[callID]
	m.mu.Unlock()
	if !ok {
		return ErrUnknownCall
	}

	if err := c.Retry(); err != nil {
		return err
	}
	if !m.putWithRetry(c) {
		c.SetArgs(nil)
		return ErrCallFailed
	}
	return c.Transition(call.StatusCalled)
}

// Status returns the current status of callID.
func (m *Mediator) Status(callID int64) (call.Status, error) {
	m.mu.Lock()
	c, ok := m.calls[callID]
	m.mu.Unlock()
	if !ok {
		return 0, ErrUnknownCall
	}
	return c.Status(), nil
}

// IsIdle reports whether the pool has spare capacity.
func (m *Mediator) IsIdle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg.MaxWorkers > len(m.runningCalls)
}

func (m *Mediator) putWithRetry(c *call.Call) bool {
	for try := 0; try < call.MaxRetries; try++ {
		if m.transport.Put(c, procmgr.Self()) {
			m.transport.ResetBackoff()
			return true
		}
		time.Sleep(m.transport.NextBackoff())
	}
	return false
}

// ensureWorkers forks workers until the pool has n, up to MaxWorkers.
func (m *Mediator) ensureWorkers(ctx context.Context, n int) error {
	if n > m.cfg.MaxWorkers {
		n = m.cfg.MaxWorkers
	}
	have := m.procs.Count(m.cfg.Alias)
	for have < n {
		sp := procmgr.NewFuncSpawner(ctx, m.runWorker)
		if _, err := m.procs.Fork(ctx, m.cfg.Alias, sp, workerMinTTL, niceDelta); err != nil {
			return fmt.Errorf("mediator: fork worker for %s: %w", m.cfg.Alias, err)
		}
		have++
	}
	return nil
}

// Tick runs one supervisor iteration: drain running-acks, drain
// return-acks, enforce timeouts, and maintain the pool (fork
// replacements if workers died but work remains). Order matches
// spec.md §5's ordering guarantee (running-acks fully drained before
// return-acks).
//
// Before any of that, Tick consults the transport's per-class error
// counters (spec.md §4.1, §7). A Corruption failure triggers an
// immediate recovery attempt: a diagnostic round-trip, and if that also
// fails, a snapshot/purge/rebuild of the store. Communication or
// Temporary classes exceeding their threshold are treated as
// unrecoverable at this layer and returned as a fatal error, which the
// daemon propagates as a non-zero exit (or a gated self-restart).
func (m *Mediator) Tick(ctx context.Context) error {
	if m.transport.Failing(transport.ErrorClassCorruption) {
		if err := m.recoverFromCorruption(); err != nil {
			return fmt.Errorf("%w: %s: corruption recovery failed: %w", transport.ErrFatal, m.cfg.Alias, err)
		}
	}
	if m.transport.Failing(transport.ErrorClassCommunication) {
		return fmt.Errorf("%w: %s: communication error threshold exceeded", transport.ErrFatal, m.cfg.Alias)
	}
	if m.transport.Failing(transport.ErrorClassTemporary) {
		return fmt.Errorf("%w: %s: temporary error threshold exceeded", transport.ErrFatal, m.cfg.Alias)
	}

	m.drainRunningAcks()
	m.drainReturnAcks()
	m.enforceTimeouts()
	m.maintainPool(ctx)
	return nil
}

// recoverFromCorruption implements spec.md §4.1/§7's corruption recovery
// procedure: a cheap diagnostic write-then-read round trip first; only if
// that also fails does it fall back to the expensive path of snapshotting
// every locally-known call, purging the store, and rebuilding it by
// re-publishing each still-active call as a retry. Returns an error only
// if the store remains unusable after the rebuild attempt.
func (m *Mediator) recoverFromCorruption() error {
	probe := call.New(-1, "__diagnostic__", nil)
	if err := m.transport.DiagnosticRoundTrip(probe); err == nil {
		m.transport.ResetErrorClass(transport.ErrorClassCorruption)
		return nil
	}

	m.logger.Error("tick: diagnostic round trip failed, rebuilding shared store", slog.String("pool", m.cfg.Alias))

	m.mu.Lock()
	candidates := make([]*call.Call, 0, len(m.calls))
	for _, c := range m.calls {
		if c.Status().Active() {
			candidates = append(candidates, c)
		}
	}
	m.mu.Unlock()

	m.transport.Purge()

	for _, c := range candidates {
		if err := c.Retry(); err != nil {
			_ = c.Transition(call.StatusCancelled)
			m.logger.Error("tick: call exhausted retries during corruption rebuild, cancelling",
				slog.Int64("call_id", c.ID()))
			continue
		}
		if !m.putWithRetry(c) {
			c.SetArgs(nil)
			continue
		}
		_ = c.Transition(call.StatusCalled)
	}

	if err := m.transport.DiagnosticRoundTrip(call.New(-1, "__diagnostic__", nil)); err != nil {
		return fmt.Errorf("store still unusable after rebuild: %w", err)
	}
	m.transport.ResetErrorClass(transport.ErrorClassCorruption)
	return nil
}

func (m *Mediator) drainRunningAcks() {
	for {
		env, ok := m.transport.Get(transport.QueueRunningAcks, false)
		if !ok {
			return
		}
		m.mu.Lock()
		c := m.calls[env.CallID]
		m.mu.Unlock()
		if c == nil {
			continue
		}
		if err := c.Transition(call.StatusRunning); err != nil {
			m.logger.Warn("tick: running-ack transition failed", slog.Int64("call_id", env.CallID), slog.Any("error", err))
			continue
		}
		c.SetOwningPID(env.SenderPID)
		m.mu.Lock()
		m.runningCalls[env.CallID] = int64(env.SenderPID)
		m.mu.Unlock()
	}
}

func (m *Mediator) drainReturnAcks() {
	for {
		env, ok := m.transport.Get(transport.QueueReturnAcks, false)
		if !ok {
			return
		}
		m.mu.Lock()
		c := m.calls[env.CallID]
		delete(m.runningCalls, env.CallID)
		m.mu.Unlock()
		if c == nil {
			continue
		}

		var snap call.Snapshot
		if fresh, err := m.transport.ReadPayload(env.CallID, env.Microtime, &snap); err == nil && fresh {
			c.SetReturn(snap.Return, snap.Size)
		}
		_ = c.Transition(call.StatusReturned)
		m.transport.RemoveStore(env.CallID)

		if m.onReturn != nil {
			m.safeInvokeCallback(m.onReturn, c)
		}
	}
}

func (m *Mediator) enforceTimeouts() {
	deadline := time.Duration(m.cfg.TimeoutSeconds * float64(time.Second))

	m.mu.Lock()
	var timedOut []int64
	for id := range m.runningCalls {
		c := m.calls[id]
		if c == nil {
			continue
		}
		if time.Since(c.TimeOf(call.StatusRunning)) > deadline {
			timedOut = append(timedOut, id)
		}
	}
	m.mu.Unlock()

	for _, id := range timedOut {
		m.mu.Lock()
		c := m.calls[id]
		pid := m.runningCalls[id]
		delete(m.runningCalls, id)
		m.mu.Unlock()
		if c == nil {
			continue
		}

		if p, ok := m.procs.Process(int(pid)); ok {
			_ = m.procs.Stop(p, 0)
		}
		_ = c.Transition(call.StatusTimeout)

		if m.onTimeout != nil {
			m.safeInvokeCallback(m.onTimeout, c)
		}
	}
}

func (m *Mediator) maintainPool(ctx context.Context) {
	pending := m.transport.State().PendingMessages
	have := m.procs.Count(m.cfg.Alias)
	if have == 0 && pending > 0 {
		_ = m.ensureWorkers(ctx, 1)
		return
	}
	if m.strategy == Lazy && pending > 0 && m.allWorkersOccupied() {
		_ = m.ensureWorkers(ctx, have+1)
	}
}

// safeInvokeCallback runs a user callback with panic recovery, so a
// buggy on_return/on_timeout handler cannot crash the daemon loop.
func (m *Mediator) safeInvokeCallback(cb func(*call.Call), c *call.Call) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("mediator: callback panicked", slog.Any("panic", r), slog.Int64("call_id", c.ID()))
		}
	}()
	cb(c)
}

// GC scans the local call registry: clears the payload of any inactive
// call not yet gc'd, and detects "dropped calls" — calls stuck in CALLED
// whose times[CALLED] predates the oldest in-flight call, implying they
// were never received by a worker. Dropped calls are retried up to
// call.MaxRetries; beyond that they are cancelled and logged.
func (m *Mediator) GC() {
	m.mu.Lock()
	oldestInFlight := time.Time{}
	for id := range m.runningCalls {
		c := m.calls[id]
		if c == nil {
			continue
		}
		t := c.TimeOf(call.StatusCalled)
		if oldestInFlight.IsZero() || t.Before(oldestInFlight) {
			oldestInFlight = t
		}
	}
	candidates := make([]*call.Call, 0, len(m.calls))
	for _, c := range m.calls {
		candidates = append(candidates, c)
	}
	m.mu.Unlock()

	for _, c := range candidates {
		if !c.Active() && !c.GCFlag() {
			_ = c.GC()
		}

		if c.Status() == call.StatusCalled && !oldestInFlight.IsZero() && c.TimeOf(call.StatusCalled).Before(oldestInFlight) {
			if err := c.Retry(); err != nil {
				_ = c.Transition(call.StatusCancelled)
				m.logger.Error("gc: dropped call exhausted retries, cancelling", slog.Int64("call_id", c.ID()))
				continue
			}
			if !m.putWithRetry(c) {
				c.SetArgs(nil)
				continue
			}
			_ = c.Transition(call.StatusCalled)
			m.logger.Warn("gc: re-queued dropped call", slog.Int64("call_id", c.ID()), slog.Int("retries", c.Retries()))
		}
	}
}

const (
	// workerMinTTL is the minimum time a freshly forked worker must
	// survive before its exit no longer counts toward churn detection
	// (spec.md §4.3); it is deliberately much shorter than the worker's
	// own self-recycle schedule (workerShortRuntime in worker.go) so a
	// routine recycle is never mistaken for a crash.
	workerMinTTL = 2 * time.Second
	niceDelta    = 0
)

// jitter returns a normally-distributed offset used to de-synchronize
// pool restarts (spec.md §4.4).
func jitter(spread time.Duration) time.Duration {
	return time.Duration(rand.NormFloat64() * float64(spread))
}
