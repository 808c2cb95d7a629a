package daemon

import (
	"context"
	"time"
)

// startupGrace is how long OnStart waits to see whether Run fails during
// its startup sequence before reporting success to the container.
const startupGrace = 200 * time.Millisecond

// OnStart implements di.Starter, letting a Daemon be registered as a
// dependency-injected service whose startup order is computed alongside
// the rest of an application's services. Because Run blocks for the
// lifetime of the process, OnStart launches it in the background and
// only waits out startupGrace to surface an immediate startup failure
// (a failed plug-in CheckEnvironment, a failed Setup) synchronously.
func (d *Daemon) OnStart(parent context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())

	d.mu.Lock()
	d.runCancel = cancel
	d.runDone = make(chan error, 1)
	d.mu.Unlock()

	go func() {
		d.runDone <- d.Run(ctx)
	}()

	select {
	case err := <-d.runDone:
		// Run exited before the grace period elapsed: surface the
		// failure immediately and let OnStop's wait see the same value.
		d.runDone <- err
		return err
	case <-time.After(startupGrace):
		return nil
	case <-parent.Done():
		return parent.Err()
	}
}

// OnStop implements di.Stopper: it cancels the background Run loop and
// waits for it to finish its shutdown sequence, bounded by ctx.
func (d *Daemon) OnStop(ctx context.Context) error {
	d.mu.Lock()
	cancel := d.runCancel
	done := d.runDone
	d.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
