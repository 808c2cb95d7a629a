package plugin

import (
	"context"
	"sync"
	"time"
)

// memRegistry backs MemLock: a single, process-wide table of named locks.
// The source daemon's "shared-memory" variant used a System V shared
// memory segment so duplicate daemon *processes* could see the same lock
// table; this port's worker pools are goroutines inside one process (see
// SPEC_FULL.md / DESIGN.md), so the equivalent shared state is simply a
// package-level, mutex-guarded map — visible to every goroutine in this
// process without any IPC primitive.
var memRegistry = struct {
	mu      sync.Mutex
	entries map[string]memEntry
}{entries: make(map[string]memEntry)}

type memEntry struct {
	owner   string
	expires time.Time
}

// MemLock is the in-process ("shared-memory") Lock variant.
type MemLock struct {
	name string
}

var _ Lock = (*MemLock)(nil)

// NewMemLock constructs a MemLock keyed by name; distinct names are
// independent locks.
func NewMemLock(name string) *MemLock {
	return &MemLock{name: name}
}

func (l *MemLock) Name() string { return "plugin.MemLock(" + l.name + ")" }

func (l *MemLock) CheckEnvironment(context.Context) error { return nil }

func (l *MemLock) Setup(context.Context) error { return nil }

func (l *MemLock) Teardown(ctx context.Context) error { return nil }

func (l *MemLock) Acquire(_ context.Context, owner string, ttl Duration) error {
	memRegistry.mu.Lock()
	defer memRegistry.mu.Unlock()

	now := time.Now()
	if e, ok := memRegistry.entries[l.name]; ok && e.owner != owner && now.Before(e.expires) {
		return ErrLockHeld
	}
	memRegistry.entries[l.name] = memEntry{owner: owner, expires: now.Add(time.Duration(ttl) * time.Millisecond)}
	return nil
}

func (l *MemLock) Test(context.Context) (owner string, ok bool, err error) {
	memRegistry.mu.Lock()
	defer memRegistry.mu.Unlock()

	e, found := memRegistry.entries[l.name]
	if !found || !time.Now().Before(e.expires) {
		return "", false, nil
	}
	return e.owner, true, nil
}

func (l *MemLock) Release(_ context.Context, owner string) error {
	memRegistry.mu.Lock()
	defer memRegistry.mu.Unlock()

	e, ok := memRegistry.entries[l.name]
	if !ok {
		return nil
	}
	if e.owner != owner {
		return ErrNotOwner
	}
	delete(memRegistry.entries, l.name)
	return nil
}
