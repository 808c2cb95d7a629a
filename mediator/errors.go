package mediator

import "errors"

// Sentinel errors for the mediator package.
var (
	// ErrUnknownMethod is returned by Call when the requested method was
	// never registered on this pool; fails immediately, before any IPC.
	ErrUnknownMethod = errors.New("mediator: unknown method")

	// ErrCallFailed is the sentinel failure value Call returns when the
	// transport could not accept the call after its retry budget; the
	// call's args have already been dropped to free memory.
	ErrCallFailed = errors.New("mediator: call failed, transport rejected after retries")

	// ErrAlreadyAttached is returned by the configuration setters
	// (Workers, Timeout, Allocate, OnReturn, OnTimeout) once the pool has
	// been attached to the daemon; they may only be called beforehand.
	ErrAlreadyAttached = errors.New("mediator: cannot reconfigure after attach")

	// ErrUnknownCall is returned by Retry and Status for a call_id the
	// pool has no record of.
	ErrUnknownCall = errors.New("mediator: unknown call id")
)
