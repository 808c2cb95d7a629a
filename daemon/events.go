package daemon

import (
	"log/slog"
	"sort"
	"sync"
)

// Kind identifies a built-in or user event, dispatched synchronously to
// every callback registered for it (spec.md §4.6).
type Kind int

// Built-in event kinds.
const (
	OnError Kind = iota
	OnSignal
	OnInit
	OnRun
	OnFork
	OnReap
	OnPIDChange
	OnIdle
	OnShutdown
)

func (k Kind) String() string {
	switch k {
	case OnError:
		return "ON_ERROR"
	case OnSignal:
		return "ON_SIGNAL"
	case OnInit:
		return "ON_INIT"
	case OnRun:
		return "ON_RUN"
	case OnFork:
		return "ON_FORK"
	case OnReap:
		return "ON_REAP"
	case OnPIDChange:
		return "ON_PIDCHANGE"
	case OnIdle:
		return "ON_IDLE"
	case OnShutdown:
		return "ON_SHUTDOWN"
	default:
		return "ON_USER"
	}
}

// Callback is a user-supplied event handler; args are whatever dispatch
// passes for that kind (e.g. the signal value for OnSignal, the error for
// OnError).
type Callback func(args ...any)

// Handle identifies one registered callback so it can be removed with Off.
type Handle struct {
	kind Kind
	slot int
}

// eventBus is the small, synchronous, kind-keyed callback registry
// described in spec.md §4.6. Unlike eventbus.EventBus (generic, type-
// routed, async, per-subscriber buffered channels) this dispatches
// in-line within the calling tick, because the daemon loop needs its
// ON_RUN/ON_FORK/etc. listeners to have completed before it proceeds —
// the same panic-recovery discipline as eventbus.EventBus.safeInvoke is
// kept, the delivery model is not.
type eventBus struct {
	mu       sync.Mutex
	handlers map[Kind]map[int]Callback
	nextSlot map[Kind]int
	logger   *slog.Logger
}

func newEventBus(logger *slog.Logger) *eventBus {
	return &eventBus{
		handlers: make(map[Kind]map[int]Callback),
		nextSlot: make(map[Kind]int),
		logger:   logger.With(slog.String("component", "daemon.eventBus")),
	}
}

// On registers cb for kind and returns a Handle usable with Off.
func (b *eventBus) On(kind Kind, cb Callback) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[kind] == nil {
		b.handlers[kind] = make(map[int]Callback)
	}
	slot := b.nextSlot[kind]
	b.nextSlot[kind]++
	b.handlers[kind][slot] = cb
	return Handle{kind: kind, slot: slot}
}

// Off removes exactly the callback identified by h.
func (b *eventBus) Off(h Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers[h.kind], h.slot)
}

// Dispatch fans out to every callback registered for kind, in slot order,
// each sandboxed by panic recovery so a broken listener cannot take down
// the loop.
func (b *eventBus) Dispatch(kind Kind, args ...any) {
	b.mu.Lock()
	cbs := make([]Callback, 0, len(b.handlers[kind]))
	slots := make([]int, 0, len(b.handlers[kind]))
	for slot := range b.handlers[kind] {
		slots = append(slots, slot)
	}
	sort.Ints(slots)
	for _, slot := range slots {
		cbs = append(cbs, b.handlers[kind][slot])
	}
	b.mu.Unlock()

	for _, cb := range cbs {
		b.safeInvoke(kind, cb, args)
	}
}

// DispatchOne calls exactly the callback identified by h, per spec.md
// §4.6's `dispatch((kind, slot))` form.
func (b *eventBus) DispatchOne(h Handle, args ...any) {
	b.mu.Lock()
	cb, ok := b.handlers[h.kind][h.slot]
	b.mu.Unlock()
	if !ok {
		return
	}
	b.safeInvoke(h.kind, cb, args)
}

func (b *eventBus) safeInvoke(kind Kind, cb Callback, args []any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event callback panicked", slog.String("kind", kind.String()), slog.Any("panic", r))
		}
	}()
	cb(args...)
}

