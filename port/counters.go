package port

import (
	"fmt"
)

// Counters contains transmit path counters of one port.
type Counters struct {
	TxFrames uint64 // descriptors accepted by the device
	TxOctets uint64 // bytes accepted by the device
	TxBursts uint64 // transmit primitive invocations

	RingFull       uint64 // packets dropped because a batch would overflow the ring
	TxDropped      uint64 // pending packets dropped after an incomplete drain
	DeviceRejected uint64 // bursts rejected by the device with an error
	ReplicaFails   uint64 // fan-out copies lost to allocator exhaustion
}

func (cnt Counters) String() string {
	return fmt.Sprintf("TX %dfrm %db %dburst drop=(%dringfull %dpkt) %ddevrej %dreplfail",
		cnt.TxFrames, cnt.TxOctets, cnt.TxBursts, cnt.RingFull, cnt.TxDropped, cnt.DeviceRejected, cnt.ReplicaFails)
}

// counters is the per-worker shard. Each worker mutates only its own shard,
// so the hot path needs no synchronization.
type counters = Counters

// ReadCounters sums worker shards.
// Values are a consistent snapshot only while workers are idle.
func (p *Port) ReadCounters() (cnt Counters) {
	for i := range p.cnt {
		w := &p.cnt[i]
		cnt.TxFrames += w.TxFrames
		cnt.TxOctets += w.TxOctets
		cnt.TxBursts += w.TxBursts
		cnt.RingFull += w.RingFull
		cnt.TxDropped += w.TxDropped
		cnt.DeviceRejected += w.DeviceRejected
		cnt.ReplicaFails += w.ReplicaFails
	}
	return cnt
}

// ClearCounters resets all worker shards to zero.
func (p *Port) ClearCounters() {
	for i := range p.cnt {
		p.cnt[i] = counters{}
	}
}

// Pending returns the total backlog across worker rings.
func (p *Port) Pending() (n int) {
	for _, ring := range p.rings {
		n += ring.CountInUse()
	}
	return n
}
