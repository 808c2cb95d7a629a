// Package transport implements the call envelope queues and the
// content-addressed shared store that carry call traffic between a
// supervisor and its worker pools.
package transport

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/jpillora/backoff"

	"github.com/petabytecl/godaemon/call"
)

// QueueKind names one of the three typed queues a Transport multiplexes.
type QueueKind int

// Queue kinds, named after the status transition that populates them.
const (
	QueueWorkerInbox QueueKind = iota
	QueueRunningAcks
	QueueReturnAcks
)

func (k QueueKind) String() string {
	switch k {
	case QueueWorkerInbox:
		return "worker-inbox"
	case QueueRunningAcks:
		return "running-acks"
	case QueueReturnAcks:
		return "return-acks"
	default:
		return fmt.Sprintf("queue(%d)", int(k))
	}
}

// ErrorClass categorizes a transport-level failure for the purposes of
// per-role failure counters and the recovery policy applied.
type ErrorClass int

// Error classes, in ascending severity.
const (
	ErrorClassCommunication ErrorClass = iota
	ErrorClassTemporary
	ErrorClassCorruption
	ErrorClassCatchall
)

// ErrFatal is returned once a role's per-class error counter exceeds its
// configured threshold; the caller must treat the transport as unusable.
var ErrFatal = errors.New("transport: fatal error threshold exceeded")

// State reports the transport's current occupancy.
type State struct {
	PendingMessages int
	AllocatedBytes  int
}

// Thresholds configures how many consecutive errors of each class a role
// tolerates before the transport is considered fatally broken. Workers are
// expected to fail earlier than the supervisor (see spec §4.1).
type Thresholds struct {
	Communication int
	Temporary     int
	Corruption    int
}

// SupervisorThresholds is the default per-class error budget for the
// supervisor role.
func SupervisorThresholds() Thresholds {
	return Thresholds{Communication: 10, Temporary: 10, Corruption: 3}
}

// WorkerThresholds is the default per-class error budget for the worker
// role; workers fail faster so a wedged worker is recycled quickly.
func WorkerThresholds() Thresholds {
	return Thresholds{Communication: 3, Temporary: 3, Corruption: 1}
}

// storeEntry is one content-addressed slot in the shared store. Fields
// are exported so the store as a whole can be gob-encoded to its
// persistence file (see persistPath) without losing data — gob silently
// drops unexported struct fields.
type storeEntry struct {
	Data      []byte
	Microtime int64
}

// Transport multiplexes the three typed call-envelope queues and the
// content-addressed shared store described in spec.md §4.1. The reference
// implementation here is in-process (channels + a guarded map); any
// transport satisfying the same FIFO-per-queue and content-addressed
// contract may be substituted (see SPEC_FULL.md DESIGN.md).
type Transport struct {
	mu         sync.Mutex
	store      map[int64]storeEntry
	queues     map[QueueKind]chan call.Envelope
	queueCap   int
	thresholds Thresholds
	errCounts  map[ErrorClass]int
	bo         *backoff.Backoff
	logger     *slog.Logger

	// persistPath, when set, backs the store with a file so a restarted
	// supervisor process can reattach to the same content (spec.md §4.4
	// "Crash recovery"). Keyed off PoolAddress so independent pools never
	// collide. Empty means in-memory only: the store does not survive a
	// process restart.
	persistPath string

	closed bool
}

// Option configures a Transport at construction time.
type Option func(*Transport)

// WithQueueCapacity bounds each queue's buffer; a full queue surfaces as a
// put failure rather than unbounded growth (spec.md §9 design notes).
func WithQueueCapacity(n int) Option {
	return func(t *Transport) { t.queueCap = n }
}

// WithThresholds overrides the per-class error budget (supervisor vs.
// worker role).
func WithThresholds(th Thresholds) Option {
	return func(t *Transport) { t.thresholds = th }
}

// WithPersistPath backs the shared store with a file at path, loaded at
// construction and rewritten on every mutation, so a restarted process
// attaching to the same path (see PoolAddress) can recover the store's
// prior contents (spec.md §4.4 "Crash recovery"). Without this option the
// store is in-memory only and does not survive a process restart.
func WithPersistPath(path string) Option {
	return func(t *Transport) { t.persistPath = path }
}

// New constructs a Transport with empty queues. If WithPersistPath was
// given and the file exists, the store is loaded from it; otherwise the
// store starts empty.
func New(logger *slog.Logger, opts ...Option) *Transport {
	t := &Transport{
		store:      make(map[int64]storeEntry),
		queueCap:   1024,
		thresholds: SupervisorThresholds(),
		errCounts:  make(map[ErrorClass]int),
		bo: &backoff.Backoff{
			Min:    10 * time.Millisecond,
			Max:    2560 * time.Millisecond,
			Factor: 2,
		},
		logger: logger.With(slog.String("component", "transport.Transport")),
	}
	for _, o := range opts {
		o(t)
	}
	t.queues = map[QueueKind]chan call.Envelope{
		QueueWorkerInbox: make(chan call.Envelope, t.queueCap),
		QueueRunningAcks: make(chan call.Envelope, t.queueCap),
		QueueReturnAcks:  make(chan call.Envelope, t.queueCap),
	}
	if t.persistPath != "" {
		if err := t.loadStore(); err != nil {
			t.logger.Warn("transport: could not load persisted store, starting empty",
				slog.String("path", t.persistPath), slog.Any("error", err))
		}
	}
	return t
}

// loadStore populates t.store from t.persistPath, if the file exists.
func (t *Transport) loadStore() error {
	f, err := os.Open(t.persistPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	var stored map[int64]storeEntry
	if err := gob.NewDecoder(f).Decode(&stored); err != nil {
		return fmt.Errorf("decode persisted store: %w", err)
	}

	t.mu.Lock()
	t.store = stored
	t.mu.Unlock()
	return nil
}

// flushStore rewrites t.persistPath with the store's current contents.
// A no-op when no persistence path was configured. Failures are logged,
// not returned: persistence is best-effort and must never block the
// in-memory fast path a caller is waiting on.
func (t *Transport) flushStore() {
	if t.persistPath == "" {
		return
	}

	t.mu.Lock()
	snapshot := make(map[int64]storeEntry, len(t.store))
	for k, v := range t.store {
		snapshot[k] = v
	}
	t.mu.Unlock()

	tmp := t.persistPath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		t.logger.Error("transport: persist store: create temp file failed", slog.Any("error", err))
		return
	}
	if err := gob.NewEncoder(f).Encode(snapshot); err != nil {
		f.Close()
		t.logger.Error("transport: persist store: encode failed", slog.Any("error", err))
		return
	}
	if err := f.Close(); err != nil {
		t.logger.Error("transport: persist store: close failed", slog.Any("error", err))
		return
	}
	if err := os.Rename(tmp, t.persistPath); err != nil {
		t.logger.Error("transport: persist store: rename failed", slog.Any("error", err))
	}
}

func init() {
	// Args/Return travel as interface{} inside call.Snapshot; gob requires
	// concrete types routed through interface{} fields to be registered.
	// Callers with custom payload types must register them too.
	gob.Register(int(0))
	gob.Register(int64(0))
	gob.Register(float64(0))
	gob.Register(string(""))
	gob.Register(bool(false))
}

func queueFor(status call.Status) (QueueKind, bool) {
	switch status {
	case call.StatusUncalled:
		return QueueWorkerInbox, true
	case call.StatusRunning:
		return QueueRunningAcks, true
	case call.StatusReturned:
		return QueueReturnAcks, true
	default:
		return 0, false
	}
}

// Put publishes a call. If its status is UNCALLED or RETURNED, the full
// Call payload is written to the shared store first; the envelope is then
// enqueued on the queue selected by the status→queue mapping. Other
// statuses enqueue the envelope only. Put returns true on success; on
// failure it increments the call's transient error counter and returns
// false. The caller is expected to retry up to call.MaxRetries times.
func (t *Transport) Put(c *call.Call, senderPID int) bool {
	env := c.Header(senderPID)

	if c.Status() == call.StatusUncalled || c.Status() == call.StatusReturned {
		if err := t.writeStore(c); err != nil {
			t.recordError(ErrorClassCorruption)
			c.IncrErrors()
			t.logger.Error("put: store write failed", slog.Int64("call_id", c.ID()), slog.Any("error", err))
			return false
		}
	}

	qk, ok := queueFor(env.Status)
	if !ok {
		// Intermediate statuses (e.g. CANCELLED, TIMEOUT) are local-only
		// and never traverse the transport.
		return true
	}

	select {
	case t.queues[qk] <- env:
		return true
	default:
		t.recordError(ErrorClassTemporary)
		c.IncrErrors()
		t.logger.Warn("put: queue full", slog.String("queue", qk.String()), slog.Int64("call_id", c.ID()))
		return false
	}
}

// Get dequeues one envelope from the named queue. If block is true, Get
// waits until an envelope is available; otherwise it returns immediately
// with ok=false if the queue is empty.
//
// Get only returns the envelope for every queue kind; it does not read,
// compare or remove the payload in the shared store.
func (t *Transport) Get(qk QueueKind, block bool) (call.Envelope, bool) {
	ch := t.queues[qk]
	if block {
		env, ok := <-ch
		return env, ok
	}
	select {
	case env, ok := <-ch:
		return env, ok
	default:
		return call.Envelope{}, false
	}
}

// GetContext dequeues one envelope from qk, blocking until one arrives or
// ctx is cancelled (used by a worker's blocking wait on its inbox).
func (t *Transport) GetContext(ctx context.Context, qk QueueKind) (call.Envelope, bool) {
	select {
	case env, ok := <-t.queues[qk]:
		return env, ok
	case <-ctx.Done():
		return call.Envelope{}, false
	}
}

// ReadPayload fetches the shared-store entry for callID, decoding it into
// snap. It reports whether the entry's microtime matches expectMicrotime;
// a mismatch indicates the call was superseded by a newer Put (the
// envelope is stale and should be treated as CANCELLED).
func (t *Transport) ReadPayload(callID int64, expectMicrotime int64, snap *call.Snapshot) (fresh bool, err error) {
	t.mu.Lock()
	entry, ok := t.store[callID]
	t.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("transport: no store entry for call %d", callID)
	}

	dec := gob.NewDecoder(bytes.NewReader(entry.Data))
	if err := dec.Decode(snap); err != nil {
		t.recordError(ErrorClassCorruption)
		return false, fmt.Errorf("transport: decode call %d: %w", callID, err)
	}
	return entry.Microtime == expectMicrotime, nil
}

// RemoveStore deletes the shared-store entry for callID, used once a
// RETURNED payload has been consumed by the supervisor.
func (t *Transport) RemoveStore(callID int64) {
	t.mu.Lock()
	delete(t.store, callID)
	t.mu.Unlock()
	t.flushStore()
}

func (t *Transport) writeStore(c *call.Call) error {
	var buf bytes.Buffer
	snap := c.Snapshot()
	if err := gob.NewEncoder(&buf).Encode(&snap); err != nil {
		return fmt.Errorf("encode call %d: %w", c.ID(), err)
	}

	t.mu.Lock()
	t.store[c.ID()] = storeEntry{Data: buf.Bytes(), Microtime: c.Microtime()}
	t.mu.Unlock()
	t.flushStore()
	return nil
}

// Snapshots decodes every entry currently in the shared store, used by a
// supervisor attaching in recovery mode (spec.md §4.4) and by the
// corruption-recovery rebuild path (spec.md §4.1/§7). An entry that fails
// to decode is skipped and logged rather than aborting the whole scan,
// since a single corrupt record must not block recovering the rest.
func (t *Transport) Snapshots() []call.Snapshot {
	t.mu.Lock()
	entries := make(map[int64]storeEntry, len(t.store))
	for k, v := range t.store {
		entries[k] = v
	}
	t.mu.Unlock()

	snaps := make([]call.Snapshot, 0, len(entries))
	for id, e := range entries {
		var snap call.Snapshot
		if err := gob.NewDecoder(bytes.NewReader(e.Data)).Decode(&snap); err != nil {
			t.logger.Error("transport: could not decode stored call during scan",
				slog.Int64("call_id", id), slog.Any("error", err))
			continue
		}
		snaps = append(snaps, snap)
	}
	return snaps
}

// DiagnosticRoundTrip writes probe to the store and immediately reads it
// back, the first, cheap step of the corruption-recovery procedure
// (spec.md §4.1/§7) before its more expensive snapshot/rebuild fallback.
func (t *Transport) DiagnosticRoundTrip(probe *call.Call) error {
	if err := t.writeStore(probe); err != nil {
		return err
	}
	defer t.RemoveStore(probe.ID())

	var snap call.Snapshot
	_, err := t.ReadPayload(probe.ID(), probe.Microtime(), &snap)
	return err
}

// ResetErrorClass zeroes the error counter for class, used once a
// recovery procedure has restored normal operation for that class.
func (t *Transport) ResetErrorClass(class ErrorClass) {
	t.mu.Lock()
	t.errCounts[class] = 0
	t.mu.Unlock()
}

// State reports the transport's current occupancy across all queues and
// the shared store.
func (t *Transport) State() State {
	t.mu.Lock()
	n := 0
	for _, e := range t.store {
		n += len(e.Data)
	}
	t.mu.Unlock()

	pending := len(t.queues[QueueWorkerInbox]) + len(t.queues[QueueRunningAcks]) + len(t.queues[QueueReturnAcks])
	return State{PendingMessages: pending, AllocatedBytes: n}
}

// Purge destroys both the queues and the store (and, if persisted, the
// store's on-disk contents). Used when the supervisor gives up on a
// corrupted transport and needs a clean slate, or attaches fresh (not in
// recovery mode) to a pool address that may carry a stale store from a
// prior run.
func (t *Transport) Purge() {
	t.mu.Lock()
	t.store = make(map[int64]storeEntry)
	t.mu.Unlock()
	t.flushStore()

	for k := range t.queues {
		t.queues[k] = make(chan call.Envelope, t.queueCap)
	}
}

// GC removes shared-store entries whose local call is inactive and
// already gc'd.
func (t *Transport) GC(inactiveGCd func(callID int64) bool) {
	removed := false
	t.mu.Lock()
	for id := range t.store {
		if inactiveGCd(id) {
			delete(t.store, id)
			removed = true
		}
	}
	t.mu.Unlock()
	if removed {
		t.flushStore()
	}
}

// recordError bumps the per-class counter and logs an error once the
// configured threshold is exceeded; it does not panic or return an error.
// Callers detect the exceeded threshold via Failing.
func (t *Transport) recordError(class ErrorClass) {
	t.mu.Lock()
	t.errCounts[class]++
	n := t.errCounts[class]
	t.mu.Unlock()

	limit := t.classLimit(class)
	if limit > 0 && n > limit {
		t.logger.Error("transport: error threshold exceeded", slog.Int("class", int(class)), slog.Int("count", n))
	}
}

func (t *Transport) classLimit(class ErrorClass) int {
	switch class {
	case ErrorClassCommunication:
		return t.thresholds.Communication
	case ErrorClassTemporary:
		return t.thresholds.Temporary
	case ErrorClassCorruption:
		return t.thresholds.Corruption
	default:
		return 0
	}
}

// Failing reports whether the given error class has exceeded its
// configured threshold, i.e. whether the transport should now be
// considered fatally broken for this role.
func (t *Transport) Failing(class ErrorClass) bool {
	t.mu.Lock()
	n := t.errCounts[class]
	t.mu.Unlock()
	limit := t.classLimit(class)
	return limit > 0 && n > limit
}

// NextBackoff returns the next retry delay for a recoverable put/get
// failure, following delay·2^min(try,8) as specified in spec.md §4.1.
func (t *Transport) NextBackoff() time.Duration {
	return t.bo.Duration()
}

// ResetBackoff clears the accumulated backoff state after a successful
// reconnect.
func (t *Transport) ResetBackoff() {
	t.bo.Reset()
}
