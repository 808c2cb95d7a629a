// Package plugin defines the Plugin and Lock extension interfaces the
// daemon hosts alongside its worker mediators (spec.md §4.7), plus a set
// of interchangeable concrete Lock variants.
package plugin

import (
	"context"
	"errors"
)

// Plugin is the minimal capability set the daemon hosts: setup/teardown
// around the daemon's own lifecycle, plus an environment check run before
// any mediator forks a worker.
type Plugin interface {
	// Name identifies the plugin in logs and error messages.
	Name() string
	// CheckEnvironment validates preconditions (files exist, config is
	// sane, a remote dependency is reachable); any error is fatal at
	// daemon init.
	CheckEnvironment(ctx context.Context) error
	// Setup runs once, after ON_INIT, in declared order.
	Setup(ctx context.Context) error
	// Teardown runs once, in reverse declared order, during shutdown.
	Teardown(ctx context.Context) error
}

// Lock extends Plugin with mutual-exclusion semantics: acquiring a named
// lock before the daemon's mediators start forking workers, so duplicate
// supervisor instances are detected early (spec.md §4.5 step 3).
type Lock interface {
	Plugin

	// Acquire takes the lock, stamping it with owner and a TTL of
	// ttl. Returns ErrLockHeld if another live owner already holds it.
	Acquire(ctx context.Context, owner string, ttl Duration) error
	// Test reports the current owner of the lock without acquiring it;
	// ok is false if the lock is free (expired or never held).
	Test(ctx context.Context) (owner string, ok bool, err error)
	// Release gives up the lock if owner currently holds it.
	Release(ctx context.Context, owner string) error
}

// Duration is a thin alias kept distinct from time.Duration at the
// interface boundary so Lock implementations stay free to interpret TTL
// against their own clock source (e.g. a remote cache's server time).
type Duration = int64 // milliseconds

// ErrLockHeld is returned by Acquire when the lock is currently held by a
// different, still-live owner.
var ErrLockHeld = errors.New("plugin: lock held by another owner")

// ErrNotOwner is returned by Release when owner does not hold the lock.
var ErrNotOwner = errors.New("plugin: release called by non-owner")
