//go:build unix

package daemon

import (
	"os"
	"os/signal"
	"syscall"
)

// notifySignals subscribes ch to every signal the daemon's built-in
// handling recognizes (spec.md §4.5/§6). SIGCHLD is deliberately never
// registered: the daemon reaps once per tick instead, which
// has the same effect as the source system's "SIGCHLD blocked during
// sleep" without needing an explicit block/unblock pair.
func notifySignals(ch chan<- os.Signal) {
	signal.Notify(ch,
		syscall.SIGUSR1,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGCONT,
	)
}

func stopNotify(ch chan<- os.Signal) {
	signal.Stop(ch)
}

func isSigUSR1(s os.Signal) bool { return s == syscall.SIGUSR1 }
func isSigHUP(s os.Signal) bool  { return s == syscall.SIGHUP }
func isSigInt(s os.Signal) bool  { return s == syscall.SIGINT || s == syscall.SIGTERM }
func isSigCont(s os.Signal) bool { return s == syscall.SIGCONT }

// execSelf replaces the current process image with a fresh copy of the
// running binary, the same arguments, and the same environment — spec.md
// §4.5's auto-restart and §4.5's SIGHUP restart both route through this.
// stdout/stderr are closed first so the exec'd child does not inherit a
// pipe the parent's caller is waiting to see closed.
func execSelf() error {
	path, err := os.Executable()
	if err != nil {
		return err
	}
	_ = os.Stdout.Close()
	_ = os.Stderr.Close()
	return syscall.Exec(path, os.Args, os.Environ())
}
