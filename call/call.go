// Package call implements the Call entity: the unit of work exchanged
// between a supervisor and its worker pools, along with the status state
// machine that governs its lifecycle.
package call

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle stage of a Call. Statuses are ordered and,
// outside of an explicit retry, only move forward.
type Status int

// Call statuses, in the order they are legally reached.
const (
	StatusUncalled Status = 0
	StatusCalled   Status = 1
	StatusRunning  Status = 2
	StatusReturned Status = 3
	StatusCancelled Status = 4
	StatusTimeout   Status = 10
)

// String renders a Status for logs and error messages.
func (s Status) String() string {
	switch s {
	case StatusUncalled:
		return "UNCALLED"
	case StatusCalled:
		return "CALLED"
	case StatusRunning:
		return "RUNNING"
	case StatusReturned:
		return "RETURNED"
	case StatusCancelled:
		return "CANCELLED"
	case StatusTimeout:
		return "TIMEOUT"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Active reports whether a call in this status is still in flight.
func (s Status) Active() bool {
	return s != StatusTimeout && s != StatusReturned && s != StatusCancelled
}

// Sentinel errors returned by Call operations.
var (
	// ErrIllegalTransition is returned when a caller attempts to move a
	// Call's status backwards (other than the explicit UNCALLED reset
	// performed by Retry).
	ErrIllegalTransition = errors.New("call: illegal status transition")

	// ErrRetriesExhausted is returned by Retry once a call has already
	// been retried the maximum number of times; the caller must treat the
	// call as a permanent failure.
	ErrRetriesExhausted = errors.New("call: retries exhausted")

	// ErrActiveGC is returned by GC when invoked on a call that is still
	// active; only inactive calls may have their payload cleared.
	ErrActiveGC = errors.New("call: cannot gc an active call")

	// ErrUnknownMethod is returned when a pool is asked to invoke a method
	// name it does not expose.
	ErrUnknownMethod = errors.New("call: unknown method")
)

// MaxRetries is the number of times a Call may be retried before it is
// considered permanently failed (see §8 Testable Properties).
const MaxRetries = 3

// Envelope is the small, fixed-shape transport header carried on a queue.
// The bulk payload (Args/Return) travels separately, in the shared store,
// keyed by CallID.
type Envelope struct {
	CallID    int64
	Status    Status
	Microtime int64 // Unix nanoseconds, used to detect re-queues.
	SenderPID int
}

// Call is the central unit of work: an immutable identity, a mutable
// state/timestamp log, and a payload. All mutating methods are safe for
// concurrent use by a single supervisor goroutine; Call is not intended to
// be shared across pools.
type Call struct {
	mu sync.Mutex

	id            int64
	correlationID uuid.UUID
	method        string
	args          []any
	ret           any
	status        Status
	owningPID     int
	retries       int
	errs          int
	size          int
	gcFlag        bool
	times         [11]time.Time // indexed by Status; sparse, only valid entries set
	microtime     int64
}

// New constructs a fresh, UNCALLED call. Times[UNCALLED] is stamped
// immediately. A random correlation id is generated so the call can be
// traced through logs external to the numeric, supervisor-local call id.
func New(id int64, method string, args []any) *Call {
	c := &Call{
		id:            id,
		correlationID: uuid.New(),
		method:        method,
		args:          args,
		status:        StatusUncalled,
	}
	c.times[StatusUncalled] = time.Now()
	c.microtime = c.times[StatusUncalled].UnixNano()
	return c
}

// CorrelationID returns the call's external correlation id, stable for the
// life of the call and independent of the numeric id's supervisor-local
// scope (spec.md §9's sender-pid Open Question: kept for log correlation,
// never load-bearing in a state transition).
func (c *Call) CorrelationID() uuid.UUID {
	return c.correlationID
}

// ID returns the call's identity.
func (c *Call) ID() int64 {
	return c.id
}

// Method returns the name of the operation this call invokes.
func (c *Call) Method() string {
	return c.method
}

// Status returns the call's current status.
func (c *Call) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Active reports whether the call is still in flight.
func (c *Call) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status.Active()
}

// Args returns the call's arguments. Cleared after GC.
func (c *Call) Args() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.args
}

// SetArgs replaces the call's arguments. Used by the transport to drop
// payload on a failed send.
func (c *Call) SetArgs(args []any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.args = args
}

// Return returns the call's return value. Cleared after GC.
func (c *Call) Return() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ret
}

// SetReturn records the call's return value and size estimate.
func (c *Call) SetReturn(ret any, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ret = ret
	c.size = size
}

// OwningPID returns the pid of the worker currently executing this call,
// valid only while Status is RUNNING.
func (c *Call) OwningPID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.owningPID
}

// SetOwningPID records which worker process owns this call while RUNNING.
func (c *Call) SetOwningPID(pid int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.owningPID = pid
}

// Retries returns the number of times this call has been retried.
func (c *Call) Retries() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retries
}

// Errors returns the transient error counter accumulated by transport
// send failures.
func (c *Call) Errors() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errs
}

// IncrErrors bumps the transient error counter; called by the transport on
// a failed put.
func (c *Call) IncrErrors() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs++
	return c.errs
}

// GCFlag reports whether this call's payload has already been cleared.
func (c *Call) GCFlag() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gcFlag
}

// TimeOf returns the timestamp recorded for the given status, or the zero
// Time if that status was never reached.
func (c *Call) TimeOf(s Status) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.times[s]
}

// Microtime returns the timestamp (nanoseconds) stamped at the call's most
// recent transition; used by the transport to detect re-queued envelopes.
func (c *Call) Microtime() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.microtime
}

// Transition moves the call to a new status. It fails with
// ErrIllegalTransition if newStatus is less than the current status and
// greater than zero (UNCALLED); callers wanting to reset to UNCALLED must
// use Retry. On success, Times[newStatus] is stamped and the cached
// microtime used for re-queue detection is refreshed.
func (c *Call) Transition(newStatus Status) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if newStatus < c.status && newStatus > StatusUncalled {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, c.status, newStatus)
	}

	now := time.Now()
	c.status = newStatus
	c.times[newStatus] = now
	c.microtime = now.UnixNano()
	return nil
}

// Retry resets the call to UNCALLED, preserving its identity, and
// increments the retry counter. It fails with ErrRetriesExhausted once
// MaxRetries has already been reached; the caller must then treat the call
// as a permanent failure (typically transitioning it to CANCELLED).
func (c *Call) Retry() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.retries >= MaxRetries {
		return ErrRetriesExhausted
	}

	c.retries++
	c.errs = 0
	c.status = StatusUncalled
	now := time.Now()
	c.times[StatusUncalled] = now
	c.microtime = now.UnixNano()
	return nil
}

// Runtime returns how long the call has been (or was) running: the gap
// between RUNNING and RETURNED, or between RUNNING and now if it is still
// running.
func (c *Call) Runtime() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	running := c.times[StatusRunning]
	if running.IsZero() {
		return 0
	}
	if returned := c.times[StatusReturned]; !returned.IsZero() {
		return returned.Sub(running)
	}
	return time.Since(running)
}

// GC clears the call's heavy payload fields (Args, Return) and marks it
// gc'd. It fails with ErrActiveGC if the call is still active; GC is only
// ever permitted on an inactive call.
func (c *Call) GC() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status.Active() {
		return ErrActiveGC
	}

	c.args = nil
	c.ret = nil
	c.gcFlag = true
	return nil
}

// Header emits the transport envelope for this call's current status.
func (c *Call) Header(senderPID int) Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Envelope{
		CallID:    c.id,
		Status:    c.status,
		Microtime: c.microtime,
		SenderPID: senderPID,
	}
}
