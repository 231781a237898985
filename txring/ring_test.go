package txring_test

import (
	"testing"

	"github.com/packetio/dataplane/core/testenv"
	"github.com/packetio/dataplane/pktbuf"
	"github.com/packetio/dataplane/txring"
)

var makeAR = testenv.MakeAR

func TestAlignCapacity(t *testing.T) {
	assert, _ := makeAR(t)

	assert.Equal(txring.DefaultCapacity, txring.AlignCapacity(0))
	assert.Equal(txring.DefaultCapacity, txring.AlignCapacity(-1))
	assert.Equal(txring.MinCapacity, txring.AlignCapacity(1))
	assert.Equal(16, txring.AlignCapacity(9))
	assert.Equal(256, txring.AlignCapacity(256))
	assert.Equal(txring.MaxCapacity, txring.AlignCapacity(txring.MaxCapacity+1))
}

func TestRingCounters(t *testing.T) {
	assert, require := makeAR(t)

	pool := pktbuf.NewPool(pktbuf.PoolConfig{Capacity: 32, Dataroom: 64})
	r := txring.New(16)
	assert.Equal(16, r.Capacity())
	assert.Equal(0, r.CountInUse())
	assert.Equal(16, r.CountAvailable())

	for i := 0; i < 10; i++ {
		pkt := pool.Alloc()
		require.NotNil(pkt)
		r.Push(pkt)
	}
	assert.Equal(10, r.CountInUse())
	assert.Equal(6, r.CountAvailable())
	assert.True(r.Head() >= r.Tail())

	assert.Len(r.PendingSlice(), 10)
	r.Advance(4)
	assert.Equal(6, r.CountInUse())
	assert.Len(r.PendingSlice(), 6)

	r.Advance(6)
	assert.Equal(0, r.CountInUse())
	r.Reset()
	assert.EqualValues(0, r.Head())
	assert.EqualValues(0, r.Tail())
}

func TestRingWraparound(t *testing.T) {
	assert, require := makeAR(t)

	pool := pktbuf.NewPool(pktbuf.PoolConfig{Capacity: 32, Dataroom: 64})
	r := txring.New(16)

	// move tail to 12 so a subsequent 8-packet burst wraps at the boundary
	for i := 0; i < 12; i++ {
		r.Push(pool.Alloc())
	}
	r.Advance(12)
	for i := 0; i < 8; i++ {
		pkt := pool.Alloc()
		require.NotNil(pkt)
		r.Push(pkt)
	}
	assert.EqualValues(20, r.Head())
	assert.EqualValues(12, r.Tail())
	assert.Equal(8, r.CountInUse())

	first := r.PendingSlice()
	assert.Len(first, 4) // slots [12,16)
	assert.Same(r.At(0), first[0])
	r.Advance(4)

	second := r.PendingSlice()
	assert.Len(second, 4) // slots [0,4)
	r.Advance(4)
	assert.Equal(0, r.CountInUse())
}

func TestRingFullPush(t *testing.T) {
	assert, _ := makeAR(t)

	pool := pktbuf.NewPool(pktbuf.PoolConfig{Capacity: 8, Dataroom: 64})
	r := txring.New(4)
	for i := 0; i < 4; i++ {
		r.Push(pool.Alloc())
	}
	assert.Panics(func() { r.Push(pool.Alloc()) })
}
