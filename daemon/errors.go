package daemon

import "errors"

// ErrFatal marks a condition the daemon cannot recover from on its own
// (e.g. worker churn); Run returns an error wrapping ErrFatal once the
// uptime/detached gate in handleFatal decides a self-restart is not
// warranted, so the caller's exit code reflects the failure (spec.md §6,
// §7).
var ErrFatal = errors.New("daemon: fatal error, unrecoverable without a restart")
