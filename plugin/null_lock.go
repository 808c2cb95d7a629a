package plugin

import "context"

// NullLock is always free and always succeeds; used in tests and for
// single-instance deployments where duplicate-instance detection is not
// worth the operational cost of a real lock backend.
type NullLock struct{}

var _ Lock = NullLock{}

// NewNullLock constructs a NullLock.
func NewNullLock() NullLock { return NullLock{} }

func (NullLock) Name() string { return "plugin.NullLock" }

func (NullLock) CheckEnvironment(context.Context) error { return nil }

func (NullLock) Setup(context.Context) error { return nil }

func (NullLock) Teardown(context.Context) error { return nil }

func (NullLock) Acquire(context.Context, string, Duration) error { return nil }

func (NullLock) Test(context.Context) (owner string, ok bool, err error) { return "", false, nil }

func (NullLock) Release(context.Context, string) error { return nil }
