package mediator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/petabytecl/godaemon/call"
	"github.com/petabytecl/godaemon/procmgr"
	"github.com/petabytecl/godaemon/transport"
)

// worker iteration tuning, per spec.md §4.4.
const (
	workerIdleSleep    = 50 * time.Millisecond
	workerGCChance     = 0.2
	workerMaxRuntime   = 30 * time.Minute
	workerRuntimeJit   = 5 * time.Minute
	workerShortRuntime = 5 * time.Minute
	workerMinCalls     = 25
	workerCallsJitter  = 10
)

// runWorker is the body a forked worker goroutine executes: it dequeues
// call envelopes from the worker inbox, validates freshness against the
// shared store, executes the registered Handler, and publishes the
// running/return acks. It recycles itself (returns nil, causing procmgr
// to reap it and the pool to fork a replacement) once it has run long
// enough or handled enough calls, to bound any single worker's memory
// growth — jittered to de-synchronize pool-wide restarts.
func (m *Mediator) runWorker(ctx context.Context) error {
	self, ok := procmgr.PIDFromContext(ctx)
	if !ok {
		self = procmgr.Self()
	}
	start := time.Now()
	handled := 0

	maxRuntime := workerMaxRuntime + jitter(workerRuntimeJit)
	minCallsToRecycle := workerMinCalls + rand.Intn(workerCallsJitter)

	iterations := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if shouldRecycle(start, handled, maxRuntime, minCallsToRecycle) {
			return nil
		}

		env, ok := m.transport.GetContext(ctx, transport.QueueWorkerInbox)
		if !ok {
			if ctx.Err() != nil {
				return nil
			}
			time.Sleep(workerIdleSleep)
			continue
		}

		m.handleEnvelope(ctx, env, self)
		handled++

		iterations++
		if iterations%5 == 0 && rand.Float64() < workerGCChance {
			m.GC()
		}

		time.Sleep(workerIdleSleep)
	}
}

func shouldRecycle(start time.Time, handled int, maxRuntime time.Duration, minCalls int) bool {
	age := time.Since(start)
	if age >= maxRuntime {
		return true
	}
	if age >= workerShortRuntime && handled >= minCalls {
		return true
	}
	return false
}

func (m *Mediator) handleEnvelope(ctx context.Context, env call.Envelope, selfPID int) {
	var snap call.Snapshot
	fresh, err := m.transport.ReadPayload(env.CallID, env.Microtime, &snap)
	if err != nil {
		m.logger.Warn("worker: store read failed", slog.Int64("call_id", env.CallID), slog.Any("error", err))
		return
	}

	m.mu.Lock()
	c := m.calls[env.CallID]
	handler, known := m.methods[snap.Method]
	m.mu.Unlock()
	if c == nil {
		return
	}

	if !fresh {
		_ = c.Transition(call.StatusCancelled)
		return
	}

	if err := c.Transition(call.StatusRunning); err != nil {
		return
	}
	c.SetOwningPID(selfPID)
	m.transport.Put(c, selfPID)

	if !known {
		m.logger.Error("worker: unknown method, skipping", slog.String("method", snap.Method), slog.Int64("call_id", env.CallID))
		return
	}

	ret, err := m.safeInvokeHandler(ctx, handler, snap.Args)
	if err != nil {
		m.logger.Error("worker: method returned error", slog.Int64("call_id", env.CallID), slog.Any("error", err))
		return
	}

	c.SetReturn(ret, estimateSize(ret))
	if err := c.Transition(call.StatusReturned); err != nil {
		return
	}
	m.transport.Put(c, selfPID)
}

// safeInvokeHandler runs a user method with panic recovery; a raised
// panic is logged and surfaced as an error, matching spec.md §4.4's
// failure semantics (no return-ack, the call eventually times out).
func (m *Mediator) safeInvokeHandler(ctx context.Context, h Handler, args []any) (ret any, err error) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("worker: method panicked", slog.Any("panic", r))
			err = fmt.Errorf("mediator: method panicked: %v", r)
		}
	}()
	return h(ctx, args)
}

func estimateSize(v any) int {
	if v == nil {
		return 0
	}
	return len(fmt.Sprint(v))
}
