package port

import (
	"math"

	"go.uber.org/zap"

	"github.com/packetio/dataplane/txring"
)

// drain submits pending packets from a ring to the transmit primitive and
// returns the count still pending (0 = fully drained).
//
// Retry policy: without flow control, the unsent remainder is resubmitted
// until the ring is empty or a call accepts zero packets; the loop is
// bounded by saturation, and total work by the caller's end-of-call reset.
// With flow control, an incomplete burst returns immediately so the caller
// can apply backpressure, except that a fully accepted pre-wrap slice earns
// exactly one follow-up call for the wrapped remainder.
func (p *Port) drain(wk int, ring *txring.Ring) int {
	nPackets := ring.CountInUse()
	if nPackets <= 0 || nPackets > ring.Capacity() {
		logger.Panic("invalid pending count", zap.Int("count", nPackets))
	}
	cnt := &p.cnt[wk]

	nRetry := 0
	if p.flowctl == nil {
		nRetry = math.MaxInt32
	}

	queue := wk % p.nQueues
	for {
		slice := ring.PendingSlice()
		wrapped := len(slice) < nPackets

		if p.shared {
			// device has fewer queues than workers: take whichever sibling
			// queue is free instead of spinning on one
			for !p.locks[queue].tryAcquire() {
				queue = (queue + 1) % p.nQueues
			}
		}

		accepted, e := p.driver.Send(queue, slice)
		if p.shared {
			p.locks[queue].release()
		}
		cnt.TxBursts++

		if e != nil {
			cnt.DeviceRejected++
			logger.Warn("device rejected burst",
				zap.String("port", p.name),
				zap.Int("queue", queue),
				zap.Error(e),
			)
			return nPackets
		}

		for _, pkt := range slice[:accepted] {
			cnt.TxOctets += uint64(pkt.Desc().PktLen)
		}
		cnt.TxFrames += uint64(accepted)
		ring.Advance(accepted)
		nPackets -= accepted

		if wrapped {
			// one follow-up for the wrapped slice, and only if the pre-wrap
			// slice went out whole
			if accepted == len(slice) {
				nRetry = 1
			} else {
				nRetry = 0
			}
		}
		if accepted == 0 || nPackets == 0 || nRetry <= 0 {
			break
		}
		nRetry--
	}
	return nPackets
}
