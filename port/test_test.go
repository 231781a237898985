package port_test

import (
	"github.com/packetio/dataplane/core/testenv"
	"github.com/packetio/dataplane/pktbuf"
)

var makeAR = testenv.MakeAR

// makePackets allocates n single-segment packets of the given length.
func makePackets(pool *pktbuf.Pool, n, length int) []*pktbuf.Packet {
	pkts := make([]*pktbuf.Packet, n)
	for i := range pkts {
		pkts[i] = pool.Alloc()
		if pkts[i] == nil {
			panic("pool exhausted in test setup")
		}
		data := make([]byte, length)
		testenv.RandBytes(data)
		pkts[i].Append(data)
	}
	return pkts
}
