package pktbuf

import (
	"fmt"
)

// PoolConfig configures a Pool.
type PoolConfig struct {
	// Capacity is the number of packets in the pool.
	// Default is 1023.
	Capacity int

	// Dataroom is the payload capacity of each segment, excluding headroom.
	// Default is DefaultDataroom.
	Dataroom int
}

func (cfg *PoolConfig) applyDefaults() {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 1023
	}
	if cfg.Dataroom <= 0 {
		cfg.Dataroom = DefaultDataroom
	}
}

// Pool is a packet allocator.
// Each worker owns its own Pool, so no method is safe for concurrent use.
type Pool struct {
	dataroom int
	capacity int
	free     []*Packet
}

// NewPool creates a Pool.
func NewPool(cfg PoolConfig) *Pool {
	cfg.applyDefaults()
	pool := &Pool{
		dataroom: cfg.Dataroom,
		capacity: cfg.Capacity,
		free:     make([]*Packet, cfg.Capacity),
	}
	for i := range pool.free {
		pkt := &Packet{}
		pkt.d.buf = make([]byte, Headroom+cfg.Dataroom)
		pkt.d.pool = pool
		pool.free[i] = pkt
	}
	return pool
}

// Dataroom returns the payload capacity of each segment.
func (pool *Pool) Dataroom() int {
	return pool.dataroom
}

// CountAvailable returns the number of packets available for allocation.
func (pool *Pool) CountAvailable() int {
	return len(pool.free)
}

// CountInUse returns the number of allocated packets.
func (pool *Pool) CountInUse() int {
	return pool.capacity - len(pool.free)
}

// Alloc takes one packet from the pool, reset to a single empty segment.
// Returns nil when the pool is exhausted; this is the non-fatal allocation
// failure the transmit path counts and absorbs.
func (pool *Pool) Alloc() *Packet {
	n := len(pool.free)
	if n == 0 {
		return nil
	}
	pkt := pool.free[n-1]
	pool.free = pool.free[:n-1]

	buf := pkt.d.buf
	pkt.d = Desc{DataOff: Headroom, NbSegs: 1, buf: buf, pool: pool}
	pkt.v = View{}
	return pkt
}

// Free returns a packet chain to its owning pool(s).
// Segments of one chain may come from different pools.
func Free(pkt *Packet) {
	d := &pkt.d
	for d != nil {
		next := d.next
		d.next = nil
		d.pool.free = append(d.pool.free, FromDesc(d))
		d = next
	}
}

func (pool *Pool) String() string {
	return fmt.Sprintf("Pool(%d/%d avail, dataroom %d)", len(pool.free), pool.capacity, pool.dataroom)
}
