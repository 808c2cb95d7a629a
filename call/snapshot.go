package call

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is the serializable, field-exported projection of a Call used
// by the transport's shared store. encoding/gob requires exported fields,
// and the store must not reach into Call's internal mutex-guarded state
// directly.
type Snapshot struct {
	ID            int64
	CorrelationID uuid.UUID
	Method        string
	Args          []any
	Return        any
	Status        Status
	OwningPID     int
	Retries       int
	Errors        int
	Size          int
	GCFlag        bool
	Times         [11]time.Time
	Microtime     int64
}

// Snapshot captures the call's current state for storage or transmission.
func (c *Call) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		ID:            c.id,
		CorrelationID: c.correlationID,
		Method:        c.method,
		Args:          c.args,
		Return:        c.ret,
		Status:        c.status,
		OwningPID:     c.owningPID,
		Retries:       c.retries,
		Errors:        c.errs,
		Size:          c.size,
		GCFlag:        c.gcFlag,
		Times:         c.times,
		Microtime:     c.microtime,
	}
}

// FromSnapshot rehydrates a Call from a previously captured Snapshot, used
// when a supervisor attaches to a shared store in recovery mode.
func FromSnapshot(s Snapshot) *Call {
	c := &Call{
		id:            s.ID,
		correlationID: s.CorrelationID,
		method:        s.Method,
		args:          s.Args,
		ret:           s.Return,
		status:        s.Status,
		owningPID:     s.OwningPID,
		retries:       s.Retries,
		errs:          s.Errors,
		size:          s.Size,
		gcFlag:        s.GCFlag,
		times:         s.Times,
		microtime:     s.Microtime,
	}
	return c
}
