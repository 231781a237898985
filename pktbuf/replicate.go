package pktbuf

// Replicate produces an independent deep copy of a packet chain, allocated
// from pool. The copy has the same total length, the same per-segment
// length layout, and the same leading metadata; its storage is fully
// decoupled from the original. Headroom bytes are copied along with the
// data, so header manipulation state carries over.
//
// Returns nil if the pool is exhausted mid-copy; partial allocations are
// released before returning, so a failed replication never leaks segments.
func Replicate(pkt *Packet, pool *Pool) *Packet {
	var first, prev *Packet
	nbSegs := pkt.d.NbSegs
	seg := &pkt.d
	for left := nbSegs; left > 0; left-- {
		if seg == nil {
			logger.Warn("segment chain shorter than NbSegs")
			if first != nil {
				Free(first)
			}
			return nil
		}

		np := pool.Alloc()
		if np == nil {
			if first != nil {
				Free(first)
			}
			return nil
		}

		if first == nil {
			first = np
			np.d.PktLen = pkt.d.PktLen
			np.d.NbSegs = pkt.d.NbSegs
			np.d.Port = pkt.d.Port
		} else {
			prev.d.next = &np.d
		}

		copyBytes := int(seg.DataOff) + int(seg.DataLen)
		if copyBytes > len(np.d.buf) {
			logger.Panic("segment larger than pool dataroom")
		}
		copy(np.d.buf[:copyBytes], seg.buf[:copyBytes])
		np.d.DataOff = seg.DataOff
		np.d.DataLen = seg.DataLen

		srcView := FromDesc(seg).v
		np.v = View{Offset: srcView.Offset, Length: srcView.Length}

		prev = np
		seg = seg.next
	}
	return first
}
