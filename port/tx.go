package port

import (
	"go.uber.org/zap"

	"github.com/packetio/dataplane/pktbuf"
)

// TxBurst stages a batch of packets on the worker's transmit ring and
// drains the ring into the device. It returns the number of packets
// transmitted in this call, counting backlog retained from earlier calls.
//
// The batch is consumed: every packet is either transmitted, retained as
// backlog (flow control mode only), or freed. Packets marked for fan-out
// (View.Clones > 0) are replaced on the ring by that many independent
// copies, and the original is recycled at the end of the call.
func (p *Port) TxBurst(wk int, pkts []*pktbuf.Packet) int {
	if len(pkts) == 0 {
		return 0
	}
	if len(pkts) > MaxBurst {
		logger.Panic("batch exceeds MaxBurst", zap.Int("count", len(pkts)))
	}
	ring, pool, cnt := p.rings[wk], p.pools[wk], &p.cnt[wk]

	nOffered := 0
	for _, pkt := range pkts {
		if n := int(pkt.View().Clones); n > 0 {
			nOffered += n
		} else {
			nOffered++
		}
	}

	// Overflowing the ring is a sizing bug upstream, never backpressure:
	// reject the whole batch and leave the ring untouched.
	if ring.CountInUse()+nOffered > ring.Capacity() {
		cnt.RingFull += uint64(nOffered)
		logger.Warn("ring overflow, batch dropped",
			zap.String("port", p.name),
			zap.Int("worker", wk),
			zap.Int("pending", ring.CountInUse()),
			zap.Int("batch", nOffered),
		)
		for _, pkt := range pkts {
			pktbuf.Free(pkt)
		}
		return 0
	}

	for _, pkt := range pkts {
		v := pkt.View()
		if v.Clones > 0 {
			for i := 0; i < int(v.Clones); i++ {
				dup := pktbuf.Replicate(pkt, pool)
				if dup == nil {
					cnt.ReplicaFails++
					v.Flags |= pktbuf.FlagReplicaFailed
					continue
				}
				dup.View().Flags = v.Flags &^ pktbuf.FlagReplicaFailed
				dup.Reconcile()
				p.traceTx(wk, dup)
				ring.Push(dup)
			}
			// originals of replicated packets are recycled at end of call,
			// not freed inline, to keep allocator reentry off the hot path
			p.recycle[wk] = append(p.recycle[wk], pkt)
		} else {
			pkt.Reconcile()
			p.traceTx(wk, pkt)
			ring.Push(pkt)
		}
	}

	nOnRing := ring.CountInUse()
	nPending := 0
	if nOnRing > 0 {
		nPending = p.drain(wk, ring)
	}
	transmitted := nOnRing - nPending

	if p.flowctl != nil {
		if nPending > 0 {
			p.flowctl(p, nPending)
		} else {
			ring.Reset()
		}
	} else {
		// no flow control: the ring never carries backlog between calls
		if nPending > 0 {
			cnt.TxDropped += uint64(nPending)
			for i := 0; i < nPending; i++ {
				pktbuf.Free(ring.At(i))
			}
		}
		ring.Reset()
	}

	if rc := p.recycle[wk]; len(rc) > 0 {
		for _, orig := range rc {
			pktbuf.Free(orig)
		}
		p.recycle[wk] = rc[:0]
	}

	if ring.Head() < ring.Tail() {
		logger.Panic("ring head behind tail")
	}
	return transmitted
}

// Flush drains backlog retained on the worker's ring without enqueuing new
// packets, returning the count still pending. It is intended for a traffic
// manager probing whether a flowed-off port can be flowed on again.
func (p *Port) Flush(wk int) int {
	ring := p.rings[wk]
	if ring.CountInUse() == 0 {
		return 0
	}
	return p.drain(wk, ring)
}
