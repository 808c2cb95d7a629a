package plugin

import (
	"context"
	"errors"
	"fmt"

	"github.com/valkey-io/valkey-go"
)

// ValkeyLock is the distributed-cache Lock variant: a self-expiring key
// in a Valkey/Redis-protocol cache, so multiple supervisor hosts (not
// just multiple processes on one host) detect a duplicate instance.
type ValkeyLock struct {
	client valkey.Client
	key    string
}

var _ Lock = (*ValkeyLock)(nil)

// NewValkeyLock constructs a ValkeyLock keyed by key, using client.
// client is not closed by ValkeyLock; the caller owns its lifecycle.
func NewValkeyLock(client valkey.Client, key string) *ValkeyLock {
	return &ValkeyLock{client: client, key: key}
}

func (l *ValkeyLock) Name() string { return "plugin.ValkeyLock(" + l.key + ")" }

func (l *ValkeyLock) CheckEnvironment(ctx context.Context) error {
	return l.client.Do(ctx, l.client.B().Ping().Build()).Error()
}

func (l *ValkeyLock) Setup(context.Context) error { return nil }

func (l *ValkeyLock) Teardown(context.Context) error { return nil }

// Acquire sets key to owner with NX (only if absent) and a PX millisecond
// expiry, so a crashed owner's lock self-expires without anyone having to
// release it.
func (l *ValkeyLock) Acquire(ctx context.Context, owner string, ttl Duration) error {
	cmd := l.client.B().Set().Key(l.key).Value(owner).Nx().Px(int64(ttl)).Build()
	resp := l.client.Do(ctx, cmd)
	if err := resp.Error(); err != nil {
		if errors.Is(err, valkey.Nil) {
			return ErrLockHeld
		}
		return fmt.Errorf("plugin: valkey acquire %s: %w", l.key, err)
	}
	return nil
}

func (l *ValkeyLock) Test(ctx context.Context) (owner string, ok bool, err error) {
	resp := l.client.Do(ctx, l.client.B().Get().Key(l.key).Build())
	val, err := resp.ToString()
	if err != nil {
		if errors.Is(err, valkey.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("plugin: valkey test %s: %w", l.key, err)
	}
	return val, true, nil
}

func (l *ValkeyLock) Release(ctx context.Context, owner string) error {
	current, ok, err := l.Test(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if current != owner {
		return ErrNotOwner
	}
	return l.client.Do(ctx, l.client.B().Del().Key(l.key).Build()).Error()
}
