package transport

import "hash/fnv"

// PoolAddress derives the deterministic identifier a worker pool's shared
// store and queues are keyed off, from the supervisor's executable path and
// the pool's alias (spec.md §6). Because it depends only on those two
// stable inputs, a restarted supervisor recomputes the same address and,
// in --recover mode, reattaches to the same resources instead of starting
// fresh ones.
func PoolAddress(execPath, alias string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(execPath))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(alias))
	return h.Sum64()
}
