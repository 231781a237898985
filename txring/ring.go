// Package txring implements the bounded transmit ring: a fixed-capacity
// circular buffer of packet descriptors staged for one device queue.
//
// head and tail are monotonically increasing counters, never wrapped;
// the physical slot of a counter is counter & mask. head >= tail and
// head - tail <= capacity hold for every reachable state.
package txring

import (
	binutils "github.com/jfoster/binary-utilities"
	"github.com/pkg/math"

	"github.com/packetio/dataplane/pktbuf"
)

// Limits and defaults.
const (
	MinCapacity     = 4
	DefaultCapacity = 1024
	MaxCapacity     = 65536
)

// AlignCapacity adjusts ring capacity to a power of two between minimum and
// maximum. Default capacity is used if input is zero or negative.
func AlignCapacity(capacity int) int {
	if capacity <= 0 {
		capacity = DefaultCapacity
	} else {
		capacity = int(binutils.NextPowerOfTwo(int64(capacity)))
	}
	return math.MinInt(math.MaxInt(MinCapacity, capacity), MaxCapacity)
}

// Ring is a transmit ring for one (device, queue) pair.
// It is owned by one worker; when device queues are shared across workers,
// the owning port serializes access with a queue lock.
type Ring struct {
	head  uint32
	tail  uint32
	mask  uint32
	slots []*pktbuf.Packet
}

// New creates a Ring. Capacity is aligned with AlignCapacity.
func New(capacity int) *Ring {
	capacity = AlignCapacity(capacity)
	return &Ring{
		mask:  uint32(capacity - 1),
		slots: make([]*pktbuf.Packet, capacity),
	}
}

// Capacity returns the ring capacity.
func (r *Ring) Capacity() int {
	return len(r.slots)
}

// Head returns the next-free-slot counter.
func (r *Ring) Head() uint32 {
	return r.head
}

// Tail returns the next-to-send counter.
func (r *Ring) Tail() uint32 {
	return r.tail
}

// CountInUse returns the number of pending packets.
func (r *Ring) CountInUse() int {
	return int(r.head - r.tail)
}

// CountAvailable returns free space.
func (r *Ring) CountAvailable() int {
	return len(r.slots) - r.CountInUse()
}

// Push appends one packet at head. The caller must have verified free
// space; pushing into a full ring is a core bug.
func (r *Ring) Push(pkt *pktbuf.Packet) {
	if r.CountAvailable() == 0 {
		panic("txring: push into full ring")
	}
	r.slots[r.head&r.mask] = pkt
	r.head++
}

// At returns the i-th pending packet, counting from tail.
func (r *Ring) At(i int) *pktbuf.Packet {
	return r.slots[(r.tail+uint32(i))&r.mask]
}

// PendingSlice returns the longest contiguous run of pending packets
// starting at tail. When the pending range wraps past the end of the
// slot array, only the first part is returned; after Advance consumes it,
// a second call yields the wrapped remainder.
func (r *Ring) PendingSlice() []*pktbuf.Packet {
	tailSlot := r.tail & r.mask
	n := r.head - r.tail
	if untilWrap := uint32(len(r.slots)) - tailSlot; n > untilWrap {
		n = untilWrap
	}
	return r.slots[tailSlot : tailSlot+n]
}

// Advance moves tail forward by n sent packets.
func (r *Ring) Advance(n int) {
	r.tail += uint32(n)
	if r.head-r.tail > uint32(len(r.slots)) {
		panic("txring: tail advanced past head")
	}
}

// Reset empties the ring and rewinds both counters, bounding counter
// growth. Only valid when fully drained or after pending packets have
// been dropped.
func (r *Ring) Reset() {
	r.head, r.tail = 0, 0
}
