package port

import (
	"sync/atomic"
)

// queueLock guards one shared device queue. It is a non-blocking
// test-and-set guard: the burst engine never waits on it, probing sibling
// queues round-robin instead. Hold time is bounded to one Send call.
type queueLock struct {
	v uint32
	_ [60]byte // keep sibling locks on separate cache lines
}

func (l *queueLock) tryAcquire() bool {
	return atomic.CompareAndSwapUint32(&l.v, 0, 1)
}

func (l *queueLock) release() {
	atomic.StoreUint32(&l.v, 0)
}
