package pktbuf_test

import (
	"testing"

	"github.com/packetio/dataplane/pktbuf"
)

func makeChain(pool *pktbuf.Pool, segLens ...int) *pktbuf.Packet {
	var first *pktbuf.Packet
	for _, n := range segLens {
		pkt := pool.Alloc()
		if pkt == nil {
			return nil
		}
		data := make([]byte, n)
		randBytes(data)
		pkt.Append(data)
		if first == nil {
			first = pkt
		} else {
			first.Chain(pkt)
		}
	}
	return first
}

func TestReplicateFidelity(t *testing.T) {
	assert, require := makeAR(t)

	pool := pktbuf.NewPool(pktbuf.PoolConfig{Capacity: 8, Dataroom: 512})
	orig := makeChain(pool, 100, 300, 60)
	require.NotNil(orig)
	orig.Desc().Port = 7

	copied := pktbuf.Replicate(orig, pool)
	require.NotNil(copied)

	od, cd := orig.Desc(), copied.Desc()
	assert.EqualValues(460, cd.PktLen)
	assert.EqualValues(3, cd.NbSegs)
	assert.EqualValues(7, cd.Port)
	for os, cs := od, cd; os != nil; os, cs = os.Next(), cs.Next() {
		require.NotNil(cs)
		assert.Equal(os.DataLen, cs.DataLen)
		assert.Equal(os.DataOff, cs.DataOff)
		assert.Equal(os.Bytes(), cs.Bytes())
	}

	// mutating the copy must not affect the original
	before := append([]byte{}, od.Bytes()...)
	cd.Bytes()[0] ^= 0xFF
	assert.Equal(before, od.Bytes())

	// freeing the copy must not affect the original
	pktbuf.Free(copied)
	assert.Equal(before, od.Bytes())
	assert.EqualValues(3, od.NbSegs)

	pktbuf.Free(orig)
	assert.Equal(8, pool.CountAvailable())
}

func TestReplicateExhaustion(t *testing.T) {
	assert, require := makeAR(t)

	// room for the original's two segments plus only one more packet
	pool := pktbuf.NewPool(pktbuf.PoolConfig{Capacity: 3, Dataroom: 128})
	orig := makeChain(pool, 50, 50)
	require.NotNil(orig)
	assert.Equal(1, pool.CountAvailable())

	// second segment allocation fails; the partial copy must be rolled back
	assert.Nil(pktbuf.Replicate(orig, pool))
	assert.Equal(1, pool.CountAvailable())

	pktbuf.Free(orig)
	assert.Equal(3, pool.CountAvailable())
}
